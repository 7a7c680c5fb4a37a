package cmd

import (
	"fmt"
	"os"

	"media-remuxer/infrastructure/config"
	"media-remuxer/infrastructure/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgErr   error
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "media-remuxer",
	Short: "Remux and repack media containers without re-encoding",
	Long: `media-remuxer rewrites media containers using ffmpeg stream copy:

  - Remux a file into a different container (ts -> mp4, mkv -> mov, ...)
  - Repack a file from a start offset, trimming or shifting timestamps
  - Convert HLS segments into standalone MP4 files on a shared timeline
  - Watch a segment directory and convert segments as they arrive

No stream is ever re-encoded.

Example:
  media-remuxer remux --source recording.ts --output recording.mp4`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Help and setup still work without a valid config
		cfg = nil
		return
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			cfg, cfgErr = nil, err
			return
		}
	}

	l, err := logging.New(cfg.Logging)
	if err != nil {
		cfg, cfgErr = nil, err
		return
	}
	logger = l
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
		}
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// GetLogger returns the logger built from the loaded configuration
func GetLogger() *zap.Logger {
	return logger
}
