package cmd

import (
	"context"
	"fmt"
	"os"

	appcontainer "media-remuxer/application/container"

	"github.com/spf13/cobra"
)

var (
	remuxSourcePath string
	remuxOutputPath string
)

var remuxCmd = &cobra.Command{
	Use:   "remux",
	Short: "Copy every stream into a different container",
	Long: `Remux a media file into the container named by the output extension.
Streams are copied as is; nothing is re-encoded.

Supported output extensions: .mp4 .mov .m4a .m4s .mkv .webm .ts .flv

Example:
  media-remuxer remux --source recording.ts --output recording.mp4`,
	RunE: runRemux,
}

func init() {
	rootCmd.AddCommand(remuxCmd)
	remuxCmd.Flags().StringVar(&remuxSourcePath, "source", "", "Path to source media file (required)")
	remuxCmd.Flags().StringVar(&remuxOutputPath, "output", "", "Path to output file (required)")
	remuxCmd.MarkFlagRequired("source")
	remuxCmd.MarkFlagRequired("output")
}

func runRemux(cmd *cobra.Command, args []string) error {
	cfg, deps, err := productionDependencies()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg.FFmpeg.Timeout)
	defer cancel()

	return RunRemuxWithDependencies(ctx, deps, remuxSourcePath, remuxOutputPath, os.Stdout)
}

// RunRemuxWithDependencies runs the remux command with injected dependencies (for testing)
func RunRemuxWithDependencies(
	ctx context.Context,
	deps Dependencies,
	sourcePath string,
	outputPath string,
	output OutputWriter,
) error {
	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	fmt.Fprintf(output, "Remuxing %s...\n", sourcePath)

	result, err := deps.service().Remux(ctx, appcontainer.RemuxInput{
		SourcePath: sourcePath,
		OutputPath: outputPath,
	})
	if err != nil {
		return err
	}

	printResult(output, "remuxed", result)
	return nil
}
