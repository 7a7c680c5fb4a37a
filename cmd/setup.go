package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"media-remuxer/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through locating ffmpeg and ffprobe, choosing how
outputs are written, and tuning segment conversion and logging.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "config/config.yaml"
	}
	return RunSetupWithPrompter(DefaultPrompter, path)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to media-remuxer setup!")
	fmt.Println()

	cfg := config.Default()

	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}

	if err := promptOutput(prompter, cfg); err != nil {
		return err
	}

	if err := promptSegments(prompter, cfg); err != nil {
		return err
	}

	if err := promptLogging(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Path to the ffmpeg executable?", cfg.FFmpeg.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path != "" {
		cfg.FFmpeg.Path = path
	}

	probePath, err := prompter.Input("Path to the ffprobe executable?", cfg.FFmpeg.ProbePath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if probePath != "" {
		cfg.FFmpeg.ProbePath = probePath
	}

	timeout, err := prompter.Input("Maximum time for one ffmpeg run?", cfg.FFmpeg.Timeout.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
		cfg.FFmpeg.Timeout = d
	}

	return nil
}

func promptOutput(prompter Prompter, cfg *config.Config) error {
	fastStart, err := prompter.Confirm("Move the MP4 index to the front of the file (faststart)?", cfg.Output.FastStart)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Output.FastStart = fastStart

	verify, err := prompter.Confirm("Probe each output before keeping it?", cfg.Output.Verify)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Output.Verify = verify

	return nil
}

func promptSegments(prompter Prompter, cfg *config.Config) error {
	workers, err := prompter.Input("Parallel segment conversions?", strconv.Itoa(cfg.Segments.Workers))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil || n < 1 {
			return fmt.Errorf("workers must be a positive number")
		}
		cfg.Segments.Workers = n
	}

	suffix, err := prompter.Input("Suffix for converted segment files?", cfg.Segments.Suffix)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if suffix != "" {
		cfg.Segments.Suffix = suffix
	}

	return nil
}

func promptLogging(prompter Prompter, cfg *config.Config) error {
	level, err := prompter.Input("Log level (debug, info, warn, error)?", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	return nil
}
