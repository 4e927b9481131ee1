package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (-config flag, TASKS_CONFIG, or ./tasks.toml if present)
// 3. Environment variables
// 4. CLI flags
func Load(fset *flag.FlagSet, args []string) (*Config, error) {
	var (
		configFile = fset.String("config", "", "path to TOML config file")
		listen     = fset.String("listen", "", "listen address")
		logLevel   = fset.String("log-level", "", "log level: debug, info, warn, error")
		logFormat  = fset.String("log-format", "", "log format: text, json, logfmt")
		driver     = fset.String("storage", "", "storage driver: fs, memory, s3, sqlite, postgres")
		file       = fset.String("file", "", "task document path (fs driver)")
		sqlitePath = fset.String("sqlite", "", "database path (sqlite driver)")
		dsn        = fset.String("dsn", "", "postgres connection string (postgres driver)")
		initDoc    = fset.Bool("init", false, "create an empty task document when missing")
	)
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := Default()

	path, explicit := *configFile, *configFile != ""
	if !explicit {
		path = os.Getenv("TASKS_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigFile
	}
	if err := loadConfigFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else {
		cfg.File = path
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "storage":
			cfg.Storage.Driver = *driver
		case "file":
			cfg.Storage.File = *file
		case "sqlite":
			cfg.Storage.SQLitePath = *sqlitePath
		case "dsn":
			cfg.Storage.DSN = *dsn
		case "init":
			cfg.Storage.Init = *initDoc
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile decodes TOML from path into cfg. Unknown keys are an error.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Listen = ":" + v
	}
	if v := os.Getenv("TASKS_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("TASKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKS_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TASKS_FILE"); v != "" {
		cfg.Storage.File = v
	}
	if v := os.Getenv("TASKS_STORAGE_INIT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKS_STORAGE_INIT: %w", err)
		}
		cfg.Storage.Init = b
	}
	if v := os.Getenv("TASKS_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("TASKS_DOCUMENT"); v != "" {
		cfg.Storage.Document = v
	}
	if v := os.Getenv("TASKS_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("TASKS_S3_KEY"); v != "" {
		cfg.Storage.S3.Key = v
	}
	if v := os.Getenv("TASKS_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("TASKS_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("TASKS_S3_PATH_STYLE"); v != "" {
		cfg.Storage.S3.PathStyle = strings.EqualFold(v, "true")
	}
	return nil
}
