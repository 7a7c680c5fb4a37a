package cmd

import (
	"context"
	"fmt"
	"os"

	appcontainer "media-remuxer/application/container"
	"media-remuxer/domain/container"

	"github.com/spf13/cobra"
)

var (
	repackSourcePath string
	repackOutputPath string
	repackStartTime  string
	repackMode       string
)

var repackCmd = &cobra.Command{
	Use:   "repack",
	Short: "Rewrite a file starting from an offset",
	Long: `Repack a media file into the container named by the output extension,
starting from the given offset.

Modes:
  trim   drop everything before --start; output timestamps begin at zero
  shift  keep every packet; output timestamps begin at --start

--start accepts seconds (12.5) or HH:MM:SS[.fff]. An offset of zero is a
plain remux.

Example:
  media-remuxer repack --source input.mkv --output clip.mp4 --start 00:01:30
  media-remuxer repack --source seg-3.ts --output seg-3.mp4 --start 30 --mode shift`,
	RunE: runRepack,
}

func init() {
	rootCmd.AddCommand(repackCmd)
	repackCmd.Flags().StringVar(&repackSourcePath, "source", "", "Path to source media file (required)")
	repackCmd.Flags().StringVar(&repackOutputPath, "output", "", "Path to output file (required)")
	repackCmd.Flags().StringVar(&repackStartTime, "start", "0", "Start offset in seconds or HH:MM:SS[.fff]")
	repackCmd.Flags().StringVar(&repackMode, "mode", string(container.ModeTrim), "Repack mode: trim or shift")
	repackCmd.MarkFlagRequired("source")
	repackCmd.MarkFlagRequired("output")
}

func runRepack(cmd *cobra.Command, args []string) error {
	cfg, deps, err := productionDependencies()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg.FFmpeg.Timeout)
	defer cancel()

	return RunRepackWithDependencies(ctx, deps, repackSourcePath, repackOutputPath, repackStartTime, repackMode, os.Stdout)
}

// RunRepackWithDependencies runs the repack command with injected dependencies (for testing)
func RunRepackWithDependencies(
	ctx context.Context,
	deps Dependencies,
	sourcePath string,
	outputPath string,
	startTime string,
	mode string,
	output OutputWriter,
) error {
	m, err := container.ParseMode(mode)
	if err != nil {
		return err
	}

	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	fmt.Fprintf(output, "Repacking %s from %s (%s)...\n", sourcePath, startTime, m)

	result, err := deps.service().Repack(ctx, appcontainer.RepackInput{
		SourcePath: sourcePath,
		OutputPath: outputPath,
		StartTime:  startTime,
		Mode:       m,
	})
	if err != nil {
		return err
	}

	printResult(output, "repacked", result)
	return nil
}
