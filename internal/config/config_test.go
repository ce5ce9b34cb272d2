package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RCHART_DATA_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "rchart.db", cfg.DBFile)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "fs", cfg.BackupDriver)
	assert.Equal(t, filepath.Join(dir, "backups"), cfg.BackupDir)
	assert.Equal(t, filepath.Join(dir, "rchart.db"), cfg.DBPath())
	require.NoError(t, cfg.Validate())
}

func TestLoad_DataDirFallsBackToUserConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	cfg, err := Load("")
	require.NoError(t, err)

	want, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, want, cfg.DataDir)
	assert.Equal(t, AppName, filepath.Base(cfg.DataDir))
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rchart.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
data_dir: /srv/rchart
db_file: clinic.db
log_level: debug
backup_driver: s3
backup_s3_bucket: chart-backups
backup_s3_path_style: true
`), 0o600))
	t.Setenv("RCHART_DB_FILE", "override.db")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "/srv/rchart", cfg.DataDir)
	assert.Equal(t, "override.db", cfg.DBFile, "env wins over file")
	assert.Equal(t, "s3", cfg.BackupDriver)
	assert.Equal(t, "chart-backups", cfg.BackupS3Bucket)
	assert.True(t, cfg.BackupS3PathStyle)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDBPath_Absolute(t *testing.T) {
	cfg := &Config{DataDir: "/data", DBFile: "/elsewhere/chart.db"}
	assert.Equal(t, "/elsewhere/chart.db", cfg.DBPath())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{DataDir: "/d", DBFile: "x.db", DBDriver: "sqlite", LogLevel: "info", LogFormat: "json", BackupDriver: "fs"}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"cgo driver", func(c *Config) { c.DBDriver = "sqlite3" }, ""},
		{"unknown driver", func(c *Config) { c.DBDriver = "postgres" }, "DB_DRIVER"},
		{"empty file", func(c *Config) { c.DBFile = "" }, "DB_FILE"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"bad backup driver", func(c *Config) { c.BackupDriver = "ftp" }, "BACKUP_DRIVER"},
		{"s3 without bucket", func(c *Config) { c.BackupDriver = "s3" }, "BACKUP_S3_BUCKET"},
		{"s3 with bucket", func(c *Config) { c.BackupDriver = "s3"; c.BackupS3Bucket = "b" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
