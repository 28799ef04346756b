package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/caio-sobreiro/dicomdir/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dicomdir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("File", func(t *testing.T) {
		assert := assert.New(t)
		path := writeConfig(t, `
media_root: /media/cdrom
file_set_id: STUDY_CD
workers: 8
strict: true
index_path: /var/lib/dicomdir/index.db
character_set: ISO_IR 100
log_level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal("/media/cdrom", cfg.MediaRoot)
		assert.Equal("STUDY_CD", cfg.FileSetID)
		assert.Equal(8, cfg.Workers)
		assert.True(cfg.Strict)
		assert.Equal("/var/lib/dicomdir/index.db", cfg.IndexPath)
		assert.Equal("ISO_IR 100", cfg.CharacterSet)
		assert.Equal("debug", cfg.LogLevel)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		path := writeConfig(t, "workers: 2\nfile_set_id: FROM_FILE\n")
		t.Setenv("DICOMDIR_WORKERS", "6")
		t.Setenv("DICOMDIR_FILE_SET_ID", "FROM_ENV")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Workers)
		assert.Equal(t, "FROM_ENV", cfg.FileSetID)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Load(writeConfig(t, "workers: 0\n"))
		assert.ErrorIs(t, err, derrors.ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		valid  bool
	}{
		{"Default", func(c *Config) {}, true},
		{"FileSetID", func(c *Config) { c.FileSetID = "CT_2024 01" }, true},
		{"LowerCaseFileSetID", func(c *Config) { c.FileSetID = "study" }, false},
		{"LongFileSetID", func(c *Config) { c.FileSetID = strings.Repeat("A", 17) }, false},
		{"NoMediaRoot", func(c *Config) { c.MediaRoot = "" }, false},
		{"NoWorkers", func(c *Config) { c.Workers = 0 }, false},
		{"UnknownCharacterSet", func(c *Config) { c.CharacterSet = "KLINGON" }, false},
		{"KnownCharacterSet", func(c *Config) { c.CharacterSet = "ISO_IR 192" }, true},
		{"UnknownLogLevel", func(c *Config) { c.LogLevel = "chatty" }, false},
		{"WarnLogLevel", func(c *Config) { c.LogLevel = "WARN" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, derrors.ErrInvalidConfig)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.FileSetID = "SAVED"
	cfg.Workers = 3
	cfg.IndexPath = "index.db"

	path := filepath.Join(t.TempDir(), "conf", "dicomdir.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "warn"
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "records", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "records=3")
}
