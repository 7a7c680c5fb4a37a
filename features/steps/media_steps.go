//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"media-remuxer/cmd"
	"media-remuxer/domain/container"

	"github.com/cucumber/godog"
)

// mockRemuxer records calls and the ffmpeg arguments they would produce
type mockRemuxer struct {
	mu         sync.Mutex
	calls      []remuxCall
	shouldFail bool
	failError  error
	files      *mockFiles
}

type remuxCall struct {
	source  string
	tmpPath string
	start   float64
	mode    container.Mode
	args    []string
}

func (m *mockRemuxer) Remux(ctx context.Context, req *container.RemuxRequest, tmpPath string) error {
	return m.record(remuxCall{
		source:  req.SourcePath,
		tmpPath: tmpPath,
		args:    []string{"-i", req.SourcePath, "-map", "0", "-c", "copy", "-f", req.Format.Muxer(), "-y", tmpPath},
	})
}

func (m *mockRemuxer) Repack(ctx context.Context, req *container.RepackRequest, tmpPath string) error {
	args := []string{"-i", req.SourcePath}
	switch {
	case req.IsPlainCopy():
	case req.Mode == container.ModeShift:
		args = append(args, "-output_ts_offset", strconv.FormatFloat(req.Start.Seconds(), 'f', -1, 64))
	default:
		args = append([]string{"-ss", strconv.FormatFloat(req.Start.Seconds(), 'f', -1, 64)}, args...)
	}
	args = append(args, "-c", "copy", "-y", tmpPath)

	return m.record(remuxCall{
		source:  req.SourcePath,
		tmpPath: tmpPath,
		start:   req.Start.Seconds(),
		mode:    req.Mode,
		args:    args,
	})
}

func (m *mockRemuxer) record(call remuxCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return m.failError
	}
	m.calls = append(m.calls, call)
	m.files.add(call.tmpPath)
	return nil
}

// mockFiles simulates the file system for existence checks and staging
type mockFiles struct {
	mu       sync.Mutex
	existing map[string]bool
}

func (m *mockFiles) add(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existing[path] = true
}

func (m *mockFiles) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existing[path]
}

func (m *mockFiles) Stage(finalPath string) (string, error) {
	return filepath.Join(filepath.Dir(finalPath), "."+filepath.Base(finalPath)+".tmp"), nil
}

func (m *mockFiles) Commit(tmpPath, finalPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.existing, tmpPath)
	m.existing[finalPath] = true
	return nil
}

func (m *mockFiles) Discard(tmpPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.existing, tmpPath)
}

// mockProber returns per-path durations; unknown paths get one track and no duration
type mockProber struct {
	mu        sync.Mutex
	durations map[string]time.Duration
}

func (m *mockProber) Probe(ctx context.Context, path string) (*container.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &container.Info{
		Path:     path,
		Duration: m.durations[path],
		Tracks:   []container.Track{{ID: 1, Kind: container.TrackVideo, Codec: "h264"}},
	}, nil
}

// mockLister lists the segments registered in a scenario
type mockLister struct {
	segments []string
}

func (m *mockLister) ListSegments(dir string) ([]string, error) {
	var out []string
	for _, s := range m.segments {
		if filepath.Dir(s) == filepath.Clean(dir) {
			out = append(out, s)
		}
	}
	return out, nil
}

// mediaContext holds test state for remux, repack and convert scenarios
type mediaContext struct {
	remuxer *mockRemuxer
	files   *mockFiles
	prober  *mockProber
	lister  *mockLister
	output  *bytes.Buffer
	err     error
}

// SharedMediaContext is reset before each scenario via Before hook
var SharedMediaContext *mediaContext

func getMediaContext() *mediaContext {
	return SharedMediaContext
}

func (m *mediaContext) deps() cmd.Dependencies {
	return cmd.Dependencies{
		Remuxer:     m.remuxer,
		FileChecker: m.files,
		Stager:      m.files,
		Prober:      m.prober,
		Lister:      m.lister,
		Verify:      true,
		Workers:     2,
	}
}

func InitializeMediaScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		files := &mockFiles{existing: make(map[string]bool)}
		SharedMediaContext = &mediaContext{
			remuxer: &mockRemuxer{files: files},
			files:   files,
			prober:  &mockProber{durations: make(map[string]time.Duration)},
			lister:  &mockLister{},
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedMediaContext = nil
		return c, nil
	})

	ctx.Step(`^a media file at "([^"]*)"$`, aMediaFileAt)
	ctx.Step(`^a media file at "([^"]*)" lasting (\d+(?:\.\d+)?) seconds$`, aMediaFileAtLasting)
	ctx.Step(`^a segment at "([^"]*)" lasting (\d+(?:\.\d+)?) seconds$`, aSegmentAtLasting)
	ctx.Step(`^no media file exists at "([^"]*)"$`, noMediaFileExistsAt)
	ctx.Step(`^ffmpeg fails with "([^"]*)"$`, ffmpegFailsWith)
	ctx.Step(`^I remux "([^"]*)" to "([^"]*)"$`, iRemuxTo)
	ctx.Step(`^I repack "([^"]*)" to "([^"]*)" from "([^"]*)"$`, iRepackToFrom)
	ctx.Step(`^I repack "([^"]*)" to "([^"]*)" from "([^"]*)" in (trim|shift|\w+) mode$`, iRepackToFromInMode)
	ctx.Step(`^I convert the segments in "([^"]*)" starting at "([^"]*)"$`, iConvertTheSegmentsInStartingAt)
	ctx.Step(`^I convert the segment "([^"]*)" starting at "([^"]*)"$`, iConvertTheSegmentStartingAt)
	ctx.Step(`^I watch for the segments:$`, iWatchForTheSegments)
	ctx.Step(`^the file "([^"]*)" should exist$`, theFileShouldExist)
	ctx.Step(`^the file "([^"]*)" should not exist$`, theFileShouldNotExist)
	ctx.Step(`^ffmpeg should not have been called$`, ffmpegShouldNotHaveBeenCalled)
	ctx.Step(`^ffmpeg should have been called (\d+) times?$`, ffmpegShouldHaveBeenCalledTimes)
	ctx.Step(`^the ffmpeg call for "([^"]*)" should include arguments:$`, theFFmpegCallForShouldIncludeArguments)
	ctx.Step(`^the ffmpeg call for "([^"]*)" should not include "([^"]*)"$`, theFFmpegCallForShouldNotInclude)
	ctx.Step(`^"([^"]*)" should start at (\d+(?:\.\d+)?) seconds$`, shouldStartAtSeconds)
	ctx.Step(`^the command should succeed$`, theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, theCommandShouldFailWith)
	ctx.Step(`^the output should contain "([^"]*)"$`, theOutputShouldContain)
}

func parseSecs(s string) time.Duration {
	f, _ := strconv.ParseFloat(s, 64)
	return time.Duration(f * float64(time.Second))
}

func aMediaFileAt(path string) error {
	getMediaContext().files.add(path)
	return nil
}

func aMediaFileAtLasting(path, secs string) error {
	m := getMediaContext()
	m.files.add(path)
	m.prober.durations[path] = parseSecs(secs)
	return nil
}

func aSegmentAtLasting(path, secs string) error {
	m := getMediaContext()
	if err := aMediaFileAtLasting(path, secs); err != nil {
		return err
	}
	m.lister.segments = append(m.lister.segments, path)
	return nil
}

func noMediaFileExistsAt(path string) error {
	m := getMediaContext()
	m.files.mu.Lock()
	defer m.files.mu.Unlock()
	delete(m.files.existing, path)
	return nil
}

func ffmpegFailsWith(msg string) error {
	m := getMediaContext()
	m.remuxer.shouldFail = true
	m.remuxer.failError = fmt.Errorf("exit status 1: %s", msg)
	return nil
}

func iRemuxTo(src, out string) error {
	m := getMediaContext()
	m.err = cmd.RunRemuxWithDependencies(context.Background(), m.deps(), src, out, m.output)
	return nil
}

func iRepackToFrom(src, out, start string) error {
	return iRepackToFromInMode(src, out, start, "trim")
}

func iRepackToFromInMode(src, out, start, mode string) error {
	m := getMediaContext()
	m.err = cmd.RunRepackWithDependencies(context.Background(), m.deps(), src, out, start, mode, m.output)
	return nil
}

func iConvertTheSegmentsInStartingAt(dir, start string) error {
	m := getMediaContext()
	m.err = cmd.RunConvertWithDependencies(context.Background(), m.deps(), dir, "", start, m.output)
	return nil
}

func iConvertTheSegmentStartingAt(segment, start string) error {
	m := getMediaContext()
	m.err = cmd.RunConvertWithDependencies(context.Background(), m.deps(), "", segment, start, m.output)
	return nil
}

func iWatchForTheSegments(table *godog.Table) error {
	m := getMediaContext()

	segments := make(chan string, len(table.Rows))
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		segments <- row.Cells[0].Value
	}
	close(segments)

	m.err = cmd.RunWatchWithDependencies(context.Background(), m.deps(), segments, "0", m.output)
	return nil
}

func theFileShouldExist(path string) error {
	if !getMediaContext().files.Exists(path) {
		return fmt.Errorf("expected %s to exist", path)
	}
	return nil
}

func theFileShouldNotExist(path string) error {
	if getMediaContext().files.Exists(path) {
		return fmt.Errorf("expected %s not to exist", path)
	}
	return nil
}

func ffmpegShouldNotHaveBeenCalled() error {
	if n := len(getMediaContext().remuxer.calls); n != 0 {
		return fmt.Errorf("expected no ffmpeg calls, got %d", n)
	}
	return nil
}

func ffmpegShouldHaveBeenCalledTimes(n int) error {
	if got := len(getMediaContext().remuxer.calls); got != n {
		return fmt.Errorf("expected %d ffmpeg calls, got %d", n, got)
	}
	return nil
}

func callFor(source string) (*remuxCall, error) {
	m := getMediaContext()
	for i := range m.remuxer.calls {
		if m.remuxer.calls[i].source == source {
			return &m.remuxer.calls[i], nil
		}
	}
	return nil, fmt.Errorf("ffmpeg was not called for %s", source)
}

func theFFmpegCallForShouldIncludeArguments(source string, table *godog.Table) error {
	call, err := callFor(source)
	if err != nil {
		return err
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		expectedArg := row.Cells[0].Value
		found := false
		for _, arg := range call.args {
			if arg == expectedArg {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected argument %q not found in ffmpeg call: %v", expectedArg, call.args)
		}
	}
	return nil
}

func theFFmpegCallForShouldNotInclude(source, arg string) error {
	call, err := callFor(source)
	if err != nil {
		return err
	}
	for _, a := range call.args {
		if a == arg {
			return fmt.Errorf("unexpected argument %q in ffmpeg call: %v", arg, call.args)
		}
	}
	return nil
}

func shouldStartAtSeconds(source, secs string) error {
	call, err := callFor(source)
	if err != nil {
		return err
	}
	want, _ := strconv.ParseFloat(secs, 64)
	if call.start != want {
		return fmt.Errorf("expected %s to start at %v, got %v", source, want, call.start)
	}
	return nil
}

func theCommandShouldSucceed() error {
	if err := getMediaContext().err; err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func theCommandShouldFailWith(msg string) error {
	err := getMediaContext().err
	if err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, err)
	}
	return nil
}

func theOutputShouldContain(text string) error {
	out := getMediaContext().output.String()
	if !strings.Contains(out, text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, out)
	}
	return nil
}
