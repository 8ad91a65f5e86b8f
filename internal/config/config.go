// Package config defines the ticklist configuration file.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dori/ticklist/internal/db"
	"github.com/dori/ticklist/internal/model"
	"github.com/dori/ticklist/internal/storage"
)

// Config represents the application configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.UI.Validate()
}

// AppConfig holds logging configuration. The TUI owns stdout, so logs go
// to LogFile; an empty LogFile discards them.
type AppConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	LogFile  string     `yaml:"log_file"`
}

// StorageConfig locates the local key-value store.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
	DBFile  string `yaml:"db_file"`
	Key     string `yaml:"key"`
}

// DBPath returns the SQLite file path.
func (c *StorageConfig) DBPath() string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.DBFile, validation.Required),
		validation.Field(&c.Key, validation.Required),
	)
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Theme       string `yaml:"theme"`
	StartFilter string `yaml:"start_filter"`
}

// Validate validates the UI configuration.
func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Theme, validation.Required, validation.In("nord", "dracula")),
		validation.Field(&c.StartFilter, validation.In(
			string(model.FilterAll), string(model.FilterActive), string(model.FilterCompleted))),
	)
}

// NotifyConfig controls desktop notices.
type NotifyConfig struct {
	Desktop bool `yaml:"desktop"`
}

// NewDefault returns a new Config with sensible default values.
func NewDefault() *Config {
	return &Config{
		App: AppConfig{
			LogLevel: slog.LevelInfo,
		},
		Storage: StorageConfig{
			DataDir: db.DefaultDataDir(),
			DBFile:  "ticklist.db",
			Key:     storage.DefaultKey,
		},
		UI: UIConfig{
			Theme:       "nord",
			StartFilter: string(model.FilterAll),
		},
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "ticklist", "config.yaml")
}
