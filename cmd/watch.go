package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appcontainer "media-remuxer/application/container"
	"media-remuxer/domain/container"
	"media-remuxer/infrastructure/filesystem"
	"media-remuxer/infrastructure/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchDir   string
	watchStart string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert segments as they appear in a directory",
	Long: `Watch a directory and convert each new media segment into a
<name>-converted.mp4 file once it has finished being written.

Each segment starts where the previous one ended, beginning at --start.
Stop with Ctrl-C.

Example:
  media-remuxer watch --dir ./hls`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Directory to watch (required)")
	watchCmd.Flags().StringVar(&watchStart, "start", "0", "Timeline offset of the first segment")
	watchCmd.MarkFlagRequired("dir")
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, deps, err := productionDependencies()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder := filesystem.NewSegmentFinder(deps.Suffix)
	w, err := watch.New(watchDir, finder.IsSegment, watch.DefaultSettle, deps.logger())
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(os.Stdout, "Watching %s for segments...\n", watchDir)
	err = RunWatchWithDependencies(ctx, deps, w.Segments(), watchStart, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunWatchWithDependencies converts segments from the channel until it is
// closed or ctx is done (for testing)
func RunWatchWithDependencies(
	ctx context.Context,
	deps Dependencies,
	segments <-chan string,
	startTime string,
	output OutputWriter,
) error {
	start, err := container.ParseOffset(startTime)
	if err != nil {
		return err
	}

	if err := verifyTools(ctx, deps); err != nil {
		return err
	}

	log := deps.logger()
	return deps.batch().Follow(ctx, segments, start, func(path string, r *appcontainer.Result, err error) {
		if err != nil {
			log.Error("segment conversion failed", zap.String("segment", path), zap.Error(err))
			fmt.Fprintf(output, "Failed: %s: %v\n", path, err)
			return
		}
		printResult(output, "converted", r)
	})
}
