package cmd

import (
	"context"
	"fmt"
	"os"

	"media-remuxer/domain/container"

	"github.com/spf13/cobra"
)

var (
	convertDir     string
	convertSegment string
	convertStart   string
	convertWorkers int
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert HLS segments into standalone MP4 files",
	Long: `Convert MPEG-TS segments (.ts) into <name>-converted.mp4 files
beside them. Timestamps are shifted, not trimmed, so players see each
converted segment at its place on the stream timeline.

With --dir every segment in the directory is converted; segment N starts
at --start plus the durations of segments before it. With --segment a
single file is converted starting at --start.

Segments that already have a converted file are skipped.

Example:
  media-remuxer convert --dir ./hls --workers 8
  media-remuxer convert --segment ./hls/seg-4.ts --start 40`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertDir, "dir", "", "Directory of segments to convert")
	convertCmd.Flags().StringVar(&convertSegment, "segment", "", "Single segment to convert")
	convertCmd.Flags().StringVar(&convertStart, "start", "0", "Timeline offset of the first segment")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 0, "Parallel conversions (default from config)")
	convertCmd.MarkFlagsMutuallyExclusive("dir", "segment")
	convertCmd.MarkFlagsOneRequired("dir", "segment")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, deps, err := productionDependencies()
	if err != nil {
		return err
	}
	if convertWorkers > 0 {
		deps.Workers = convertWorkers
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg.FFmpeg.Timeout)
	defer cancel()

	return RunConvertWithDependencies(ctx, deps, convertDir, convertSegment, convertStart, os.Stdout)
}

// RunConvertWithDependencies runs the convert command with injected dependencies (for testing)
func RunConvertWithDependencies(
	ctx context.Context,
	deps Dependencies,
	dir string,
	segment string,
	startTime string,
	output OutputWriter,
) error {
	if (dir == "") == (segment == "") {
		return fmt.Errorf("exactly one of --dir or --segment is required")
	}

	start, err := container.ParseOffset(startTime)
	if err != nil {
		return err
	}

	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	if segment != "" {
		fmt.Fprintf(output, "Converting %s from %s...\n", segment, start)
		result, err := deps.service().ConvertSegment(ctx, segment, start)
		if err != nil {
			return err
		}
		printResult(output, "converted", result)
		return nil
	}

	fmt.Fprintf(output, "Converting segments in %s...\n", dir)
	results, err := deps.batch().ConvertDir(ctx, dir, start)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(output, "No segments found.")
		return nil
	}

	converted := 0
	for _, r := range results {
		printResult(output, "converted", r)
		if !r.Cached {
			converted++
		}
	}
	fmt.Fprintf(output, "%d segments converted, %d already up to date\n", converted, len(results)-converted)
	return nil
}
