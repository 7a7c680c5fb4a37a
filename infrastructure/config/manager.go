package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager reads and updates individual config settings
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Setting is a single dotted key and its current value
type Setting struct {
	Key   string
	Value string
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

func boolField(ptr func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not true or false", ErrInvalidValue, v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"ffmpeg.path":       stringField(func(c *Config) *string { return &c.FFmpeg.Path }),
	"ffmpeg.probe_path": stringField(func(c *Config) *string { return &c.FFmpeg.ProbePath }),
	"ffmpeg.timeout": {
		get: func(c *Config) string { return c.FFmpeg.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a duration", ErrInvalidValue, v)
			}
			c.FFmpeg.Timeout = d
			return nil
		},
	},
	"output.faststart": boolField(func(c *Config) *bool { return &c.Output.FastStart }),
	"output.verify":    boolField(func(c *Config) *bool { return &c.Output.Verify }),
	"segments.workers": {
		get: func(c *Config) string { return strconv.Itoa(c.Segments.Workers) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("%w: workers must be a positive number", ErrInvalidValue)
			}
			c.Segments.Workers = n
			return nil
		},
	},
	"segments.suffix":  stringField(func(c *Config) *string { return &c.Segments.Suffix }),
	"logging.level":    stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.encoding": stringField(func(c *Config) *string { return &c.Logging.Encoding }),
}

func lookup(key string) (field, string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	f, ok := fields[key]
	if !ok {
		return field{}, key, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f, key, nil
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns all settings sorted by key
func (m *ConfigManager) List() []Setting {
	keys := Keys()
	result := make([]Setting, 0, len(keys))
	for _, k := range keys {
		result = append(result, Setting{Key: k, Value: fields[k].get(m.config)})
	}
	return result
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	f, _, err := lookup(key)
	if err != nil {
		return "", err
	}
	return f.get(m.config), nil
}

// Set updates key and saves the config. The config is left untouched if the
// new value does not validate.
func (m *ConfigManager) Set(key, value string) error {
	f, _, err := lookup(key)
	if err != nil {
		return err
	}

	updated := *m.config
	if err := f.set(&updated, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

// Reset restores key to its default value and saves the config
func (m *ConfigManager) Reset(key string) error {
	f, k, err := lookup(key)
	if err != nil {
		return err
	}
	return m.Set(k, f.get(Default()))
}
