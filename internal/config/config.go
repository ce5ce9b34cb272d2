// Package config loads runtime settings from RCHART_* environment variables
// and an optional YAML file. Environment values win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading the environment.
const EnvPrefix = "RCHART"

// AppName names the per-user data directory.
const AppName = "rchart"

type Config struct {
	DataDir   string `mapstructure:"DATA_DIR"`
	DBFile    string `mapstructure:"DB_FILE"`
	DBKey     string `mapstructure:"DB_KEY"`
	DBDriver  string `mapstructure:"DB_DRIVER"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	BackupDriver      string `mapstructure:"BACKUP_DRIVER"`
	BackupDir         string `mapstructure:"BACKUP_DIR"`
	BackupS3Bucket    string `mapstructure:"BACKUP_S3_BUCKET"`
	BackupS3Region    string `mapstructure:"BACKUP_S3_REGION"`
	BackupS3Endpoint  string `mapstructure:"BACKUP_S3_ENDPOINT"`
	BackupS3PathStyle bool   `mapstructure:"BACKUP_S3_PATH_STYLE"`
}

var keys = []string{
	"DATA_DIR", "DB_FILE", "DB_KEY", "DB_DRIVER", "LOG_LEVEL", "LOG_FORMAT",
	"BACKUP_DRIVER", "BACKUP_DIR", "BACKUP_S3_BUCKET", "BACKUP_S3_REGION",
	"BACKUP_S3_ENDPOINT", "BACKUP_S3_PATH_STYLE",
}

// DefaultDataDir is the per-user application directory, for example
// ~/.config/rchart on Linux.
func DefaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Load reads configuration. file may be empty; when set it must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("DB_FILE", "rchart.db")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("BACKUP_DRIVER", "fs")
	v.SetDefault("BACKUP_S3_REGION", "us-east-1")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	}
	return cfg, nil
}

// DBPath is the database file location. An absolute DBFile is used as is.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Validate rejects settings no component can honor.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("DB_DRIVER must be \"sqlite\" or \"sqlite3\", got %q", c.DBDriver)
	}
	if c.DBFile == "" {
		return fmt.Errorf("DB_FILE must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be \"console\" or \"json\", got %q", c.LogFormat)
	}
	switch c.BackupDriver {
	case "fs":
	case "s3":
		if c.BackupS3Bucket == "" {
			return fmt.Errorf("BACKUP_S3_BUCKET is required when BACKUP_DRIVER is \"s3\"")
		}
	default:
		return fmt.Errorf("BACKUP_DRIVER must be \"fs\" or \"s3\", got %q", c.BackupDriver)
	}
	return nil
}
