//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"media-remuxer/cmd"
	"media-remuxer/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

// confirmPrompts are the yes/no questions asked by setup
var confirmPrompts = map[string]bool{
	"faststart": true,
	"verify":    true,
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command accepting all defaults$`, testCtx.iRunTheSetupCommandAcceptingAllDefaults)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, testCtx.iRunTheSetupCommandWithConfirmationAndInputs)
	ctx.Step(`^I attempt to run the setup command with inputs:$`, testCtx.iAttemptToRunTheSetupCommandWithInputs)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have ffmpeg path "([^"]*)"$`, testCtx.theConfigShouldHaveFFmpegPath)
	ctx.Step(`^the config should have ffprobe path "([^"]*)"$`, testCtx.theConfigShouldHaveFFprobePath)
	ctx.Step(`^the config should have timeout "([^"]*)"$`, testCtx.theConfigShouldHaveTimeout)
	ctx.Step(`^the config should have (\d+) segment workers$`, testCtx.theConfigShouldHaveSegmentWorkers)
	ctx.Step(`^the config should have segment suffix "([^"]*)"$`, testCtx.theConfigShouldHaveSegmentSuffix)
	ctx.Step(`^the config should have faststart (enabled|disabled)$`, testCtx.theConfigShouldHaveFaststart)
	ctx.Step(`^the config should have log level "([^"]*)"$`, testCtx.theConfigShouldHaveLogLevel)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, testCtx.theSetupShouldFailWith)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `ffmpeg:
  path: "/opt/original/ffmpeg"
  probe_path: "/opt/original/ffprobe"
segments:
  workers: 2
  suffix: "-original"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, confirms := parseInputTable(table)
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, confirms), s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandAcceptingAllDefaults() error {
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(nil, nil), s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iAttemptToRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, confirms := parseInputTable(table)
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, confirms), s.configPath)
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(nil, []bool{confirm}), s.configPath)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmationAndInputs(confirmation string, table *godog.Table) error {
	confirm := strings.ToLower(confirmation) == "y"
	inputs, confirms := parseInputTable(table)

	// Prepend the overwrite confirmation
	allConfirms := append([]bool{confirm}, confirms...)
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, allConfirms), s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func parseInputTable(table *godog.Table) ([]string, []bool) {
	var inputs []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		if confirmPrompts[prompt] {
			confirms = append(confirms, strings.ToLower(value) == "y")
		} else {
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms
}

func (s *setupContext) load() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFFmpegPath(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.Path != expected {
		return fmt.Errorf("expected ffmpeg path %q, got %q", expected, cfg.FFmpeg.Path)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFFprobePath(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.ProbePath != expected {
		return fmt.Errorf("expected ffprobe path %q, got %q", expected, cfg.FFmpeg.ProbePath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveTimeout(expected string) error {
	want, err := time.ParseDuration(expected)
	if err != nil {
		return err
	}
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.Timeout != want {
		return fmt.Errorf("expected timeout %s, got %s", want, cfg.FFmpeg.Timeout)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveSegmentWorkers(expected string) error {
	want, _ := strconv.Atoi(expected)
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Segments.Workers != want {
		return fmt.Errorf("expected %d workers, got %d", want, cfg.Segments.Workers)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveSegmentSuffix(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Segments.Suffix != expected {
		return fmt.Errorf("expected suffix %q, got %q", expected, cfg.Segments.Suffix)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFaststart(state string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if want := state == "enabled"; cfg.Output.FastStart != want {
		return fmt.Errorf("expected faststart %s, got %v", state, cfg.Output.FastStart)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveLogLevel(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Logging.Level != expected {
		return fmt.Errorf("expected log level %q, got %q", expected, cfg.Logging.Level)
	}
	return nil
}

func (s *setupContext) theSetupShouldFailWith(msg string) error {
	if s.err == nil {
		return fmt.Errorf("expected setup to fail")
	}
	if !strings.Contains(s.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, s.err)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
