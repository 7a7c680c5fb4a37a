// Package remuxer exposes the two container operations as plain calls for
// host applications that do not want to wire services themselves:
//
//	ok := remuxer.Remux("in.ts", "out.mp4")
//	remuxer.Repack("seg.ts", "seg-converted.mp4", 12.0)
//
// Both delegate to ffmpeg stream copy; nothing is re-encoded.
package remuxer

import (
	"context"
	"strconv"
	"sync"

	appcontainer "media-remuxer/application/container"
	"media-remuxer/domain/container"
	"media-remuxer/infrastructure/ffmpeg"
	"media-remuxer/infrastructure/filesystem"
	"media-remuxer/infrastructure/probe"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	service *appcontainer.Service
	logger  = zap.NewNop()
)

// Default returns the service used by the package-level calls, building a
// production one on first use
func Default() *appcontainer.Service {
	mu.RLock()
	s := service
	mu.RUnlock()
	if s != nil {
		return s
	}

	mu.Lock()
	defer mu.Unlock()
	if service == nil {
		service = NewService(logger)
	}
	return service
}

// SetDefault replaces the service and logger used by the package-level calls.
// A nil logger discards output.
func SetDefault(s *appcontainer.Service, l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	service = s
	logger = l
}

// NewService builds a service backed by ffmpeg on $PATH with native probing
func NewService(l *zap.Logger) *appcontainer.Service {
	return appcontainer.NewService(
		ffmpeg.NewRemuxer(ffmpeg.WithLogger(l)),
		filesystem.NewChecker(),
		filesystem.NewStager(),
		appcontainer.WithProber(probe.NewChain(ffmpeg.NewProber(), l)),
		appcontainer.WithLogger(l),
	)
}

func currentLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Remux copies every stream of path into the container named by outPath's
// extension. It returns false on any failure, and no file is left at outPath.
func Remux(path, outPath string) bool {
	_, err := RemuxContext(context.Background(), path, outPath)
	return err == nil
}

// RemuxContext is Remux with cancellation and the error returned
func RemuxContext(ctx context.Context, path, outPath string) (*appcontainer.Result, error) {
	return Default().Remux(ctx, appcontainer.RemuxInput{
		SourcePath: path,
		OutputPath: outPath,
	})
}

// Repack rewrites path into outPath with timestamps shifted to begin at
// startTime seconds. It is best effort: failures are logged, not returned.
func Repack(path, outPath string, startTime float64) {
	if _, err := RepackContext(context.Background(), path, outPath, startTime, container.ModeShift); err != nil {
		currentLogger().Error("repack failed",
			zap.String("source", path),
			zap.String("output", outPath),
			zap.Float64("start_time", startTime),
			zap.Error(err),
		)
	}
}

// RepackContext is Repack with cancellation, an explicit mode and the error returned
func RepackContext(ctx context.Context, path, outPath string, startTime float64, mode container.Mode) (*appcontainer.Result, error) {
	return Default().Repack(ctx, appcontainer.RepackInput{
		SourcePath: path,
		OutputPath: outPath,
		StartTime:  strconv.FormatFloat(startTime, 'f', -1, 64),
		Mode:       mode,
	})
}
