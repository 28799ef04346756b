// Package config loads the settings used to build and index DICOM file-sets.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/caio-sobreiro/dicomdir/dicom"
	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

// EnvPrefix prefixes the environment variables overriding file settings,
// for example DICOMDIR_MEDIA_ROOT.
const EnvPrefix = "DICOMDIR"

const maxFileSetIDLength = 16

// Config holds the file-set settings
type Config struct {
	// MediaRoot is the directory holding the file-set; the DICOMDIR is written there
	MediaRoot string `mapstructure:"media_root" yaml:"media_root"`
	// FileSetID is written to (0004,1130)
	FileSetID string `mapstructure:"file_set_id" yaml:"file_set_id"`
	// Workers bounds the number of files read concurrently while scanning
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Strict makes reading and building fail on hierarchy violations
	Strict bool `mapstructure:"strict" yaml:"strict"`
	// IndexPath is the SQLite index; empty disables indexing
	IndexPath string `mapstructure:"index_path" yaml:"index_path,omitempty"`
	// CharacterSet is written as Specific Character Set of the file-set
	// descriptor when set
	CharacterSet string `mapstructure:"character_set" yaml:"character_set,omitempty"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		MediaRoot: ".",
		Workers:   4,
		LogLevel:  "info",
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("media_root", def.MediaRoot)
	v.SetDefault("file_set_id", def.FileSetID)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("strict", def.Strict)
	v.SetDefault("index_path", def.IndexPath)
	v.SetDefault("character_set", def.CharacterSet)
	v.SetDefault("log_level", def.LogLevel)
	return v
}

// Load reads the YAML file at path, applies DICOMDIR_* environment overrides and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the settings
func (c *Config) Validate() error {
	if c.MediaRoot == "" {
		return fmt.Errorf("%w: media_root is empty", derrors.ErrInvalidConfig)
	}
	if len(c.FileSetID) > maxFileSetIDLength {
		return fmt.Errorf("%w: file_set_id %q longer than %d characters",
			derrors.ErrInvalidConfig, c.FileSetID, maxFileSetIDLength)
	}
	for _, r := range c.FileSetID {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == ' ') {
			return fmt.Errorf("%w: file_set_id %q contains %q",
				derrors.ErrInvalidConfig, c.FileSetID, r)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", derrors.ErrInvalidConfig, c.Workers)
	}
	if c.CharacterSet != "" {
		if _, err := dicom.LookupCharset(c.CharacterSet); err != nil {
			return fmt.Errorf("%w: character_set: %w", derrors.ErrInvalidConfig, err)
		}
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", derrors.ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at the configured level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
