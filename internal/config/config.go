// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"slices"
	"strings"

	"tasks-api/pkg/docstore"
)

// Default values.
const (
	DefaultListen     = ":3000"
	DefaultFile       = "task.json"
	DefaultSQLitePath = "tasks.db"
	DefaultDocument   = "tasks"
	DefaultS3Key      = "task.json"
	DefaultS3Region   = "us-east-1"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultConfigFile = "tasks.toml"
)

// Config holds the full configuration for the server.
type Config struct {
	Listen    string  `toml:"listen"`
	LogLevel  string  `toml:"log_level"`
	LogFormat string  `toml:"log_format"` // text, json, logfmt
	Storage   Storage `toml:"storage"`

	// File is the config file that was loaded, if any.
	File string `toml:"-"`
}

// Storage selects and configures the backing document.
type Storage struct {
	Driver     string `toml:"driver"` // fs, memory, s3, sqlite, postgres
	Init       bool   `toml:"init"`   // seed an empty document when missing
	File       string `toml:"file"`
	SQLitePath string `toml:"sqlite_path"`
	DSN        string `toml:"dsn"`
	Document   string `toml:"document"`
	S3         S3     `toml:"s3"`
}

// S3 configures the s3 driver.
type S3 struct {
	Bucket    string `toml:"bucket"`
	Key       string `toml:"key"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

func setDefaults(cfg *Config) {
	cfg.Listen = DefaultListen
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Storage = Storage{
		Driver:     string(docstore.DriverFilesystem),
		File:       DefaultFile,
		SQLitePath: DefaultSQLitePath,
		Document:   DefaultDocument,
		S3:         S3{Key: DefaultS3Key, Region: DefaultS3Region},
	}
}

// Default returns a Config holding only default values.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", c.LogFormat)
	}
	driver := docstore.Driver(c.Storage.Driver)
	if !slices.Contains(docstore.Drivers, driver) {
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	switch driver {
	case docstore.DriverFilesystem:
		if c.Storage.File == "" {
			return fmt.Errorf("storage.file required for fs driver")
		}
	case docstore.DriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket required for s3 driver")
		}
	case docstore.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn (or DATABASE_URL) required for postgres driver")
		}
	}
	return nil
}

// DocstoreOptions translates the storage settings for docstore.Open.
func (c *Config) DocstoreOptions() docstore.Options {
	return docstore.Options{
		Driver:     docstore.Driver(c.Storage.Driver),
		Path:       c.Storage.File,
		SQLitePath: c.Storage.SQLitePath,
		DSN:        c.Storage.DSN,
		Document:   c.Storage.Document,
		S3: docstore.S3Config{
			Bucket:    c.Storage.S3.Bucket,
			Key:       c.Storage.S3.Key,
			Region:    c.Storage.S3.Region,
			Endpoint:  c.Storage.S3.Endpoint,
			PathStyle: c.Storage.S3.PathStyle,
		},
	}
}
