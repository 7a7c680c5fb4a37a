package cmd

import (
	"context"
	"fmt"
	"os"

	"media-remuxer/domain/container"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe FILE...",
	Short: "Print container metadata",
	Long: `Print the container format, duration and tracks of each file.

MP4 family and MPEG-TS files are read natively; other containers use ffprobe.

Example:
  media-remuxer probe recording.mp4 seg-0.ts`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	_, deps, err := productionDependencies()
	if err != nil {
		return err
	}
	return RunProbeWithDependencies(cmd.Context(), deps.Prober, args, os.Stdout)
}

// RunProbeWithDependencies runs the probe command with injected dependencies (for testing)
func RunProbeWithDependencies(
	ctx context.Context,
	prober container.Prober,
	paths []string,
	output OutputWriter,
) error {
	for _, path := range paths {
		info, err := prober.Probe(ctx, path)
		if err != nil {
			return fmt.Errorf("probe %s: %w", path, err)
		}

		fmt.Fprintf(output, "%s\n", path)
		fmt.Fprintf(output, "  format:   %s\n", info.Format)
		if info.HasDuration() {
			fmt.Fprintf(output, "  duration: %s\n", info.Duration)
		} else {
			fmt.Fprintf(output, "  duration: unknown\n")
		}
		if info.StartTime > 0 {
			fmt.Fprintf(output, "  start:    %s\n", info.StartTime)
		}
		for _, t := range info.Tracks {
			fmt.Fprintf(output, "  track %d:  %s %s\n", t.ID, t.Kind, t.Codec)
		}
	}
	return nil
}
