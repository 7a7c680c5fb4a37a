package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. REMUXER_FFMPEG_PATH
const EnvPrefix = "REMUXER"

// Config represents the complete application configuration
type Config struct {
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Segments SegmentsConfig `yaml:"segments" mapstructure:"segments"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// FFmpegConfig locates the external media tools
type FFmpegConfig struct {
	Path      string        `yaml:"path" mapstructure:"path"`
	ProbePath string        `yaml:"probe_path" mapstructure:"probe_path"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls how outputs are written
type OutputConfig struct {
	FastStart bool `yaml:"faststart" mapstructure:"faststart"`
	Verify    bool `yaml:"verify" mapstructure:"verify"`
}

// SegmentsConfig controls batch segment conversion
type SegmentsConfig struct {
	Workers int    `yaml:"workers" mapstructure:"workers"`
	Suffix  string `yaml:"suffix" mapstructure:"suffix"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level    string `yaml:"level" mapstructure:"level"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			Path:      "ffmpeg",
			ProbePath: "ffprobe",
			Timeout:   10 * time.Minute,
		},
		Output: OutputConfig{
			FastStart: true,
			Verify:    true,
		},
		Segments: SegmentsConfig{
			Workers: 4,
			Suffix:  "-converted",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("ffmpeg.path", d.FFmpeg.Path)
	v.SetDefault("ffmpeg.probe_path", d.FFmpeg.ProbePath)
	v.SetDefault("ffmpeg.timeout", d.FFmpeg.Timeout)
	v.SetDefault("output.faststart", d.Output.FastStart)
	v.SetDefault("output.verify", d.Output.Verify)
	v.SetDefault("segments.workers", d.Segments.Workers)
	v.SetDefault("segments.suffix", d.Segments.Suffix)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
}

// Load reads the configuration from the YAML file at path, applying
// REMUXER_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration and fills in empty values
func (c *Config) Validate() error {
	if c.FFmpeg.Path == "" {
		c.FFmpeg.Path = "ffmpeg"
	}
	if c.FFmpeg.ProbePath == "" {
		c.FFmpeg.ProbePath = "ffprobe"
	}
	if c.FFmpeg.Timeout < 0 {
		return fmt.Errorf("ffmpeg.timeout must be non-negative")
	}
	if c.Segments.Workers < 0 {
		return fmt.Errorf("segments.workers must be non-negative")
	}
	if c.Segments.Workers == 0 {
		c.Segments.Workers = 1
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	c.Logging.Encoding = strings.ToLower(c.Logging.Encoding)
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "console"
	}
	if c.Logging.Encoding != "console" && c.Logging.Encoding != "json" {
		return fmt.Errorf("invalid log encoding: %s", c.Logging.Encoding)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	levels := []string{"debug", "info", "warn", "error"}
	for _, l := range levels {
		if level == l {
			return true
		}
	}
	return false
}
