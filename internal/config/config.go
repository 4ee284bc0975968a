// Package config provides functionality for managing configuration options
// for the application using a YAML file, environment variables and
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr is the loopback address the local API listens on (ip:port).
	Addr string `yaml:"addr" env:"SERVER_ADDRESS" env-default:"127.0.0.1:8080"`

	// DatabaseDriver selects the database/sql driver: sqlite3, sqlite or postgres.
	DatabaseDriver string `yaml:"db_driver" env:"DB_DRIVER" env-default:"sqlite3"`

	// DatabaseDSN is the store file path or the connection string.
	DatabaseDSN string `yaml:"db_dsn" env:"DATABASE_DSN" env-default:"basetutor.db"`

	// HistoryCachePath is the JSON file backing the anonymous conversion cache.
	HistoryCachePath string `yaml:"history_cache" env:"HISTORY_CACHE" env-default:"history_cache.json"`

	// PasswordHasher names the digest used for new and existing passwords.
	PasswordHasher string `yaml:"password_hasher" env:"PASSWORD_HASHER" env-default:"sha256"`

	// LogLevel is a zap level name.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// HistoryRetention enables the history cleaner when positive.
	HistoryRetention time.Duration `yaml:"history_retention" env:"HISTORY_RETENTION" env-default:"0s"`

	// CleanerInterval is how often the history cleaner runs.
	CleanerInterval time.Duration `yaml:"cleaner_interval" env:"CLEANER_INTERVAL" env-default:"1h"`

	// Config is the path to the YAML config file.
	Config string `yaml:"-"`
}

// Parse builds Options from, in increasing precedence: defaults, the YAML
// config file, environment variables (a .env file in the working directory
// is loaded first) and explicitly set flags in args.
func Parse(name string, args []string) (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var flags Options
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.StringVar(&flags.Addr, "a", "", "run on ip:port server")
	fset.StringVar(&flags.DatabaseDriver, "driver", "", "database driver (sqlite3|sqlite|postgres)")
	fset.StringVar(&flags.DatabaseDSN, "d", "", "database file or DSN")
	fset.StringVar(&flags.HistoryCachePath, "history-cache", "", "path to history cache file")
	fset.StringVar(&flags.PasswordHasher, "hasher", "", "password hasher (sha256|bcrypt)")
	fset.StringVar(&flags.LogLevel, "log-level", "", "log level")
	fset.DurationVar(&flags.HistoryRetention, "history-retention", 0, "delete history older than this (0 disables)")
	fset.StringVar(&flags.Config, "config", "config.yaml", "path to config file")
	fset.StringVar(&flags.Config, "c", "config.yaml", "path to config file (shorthand)")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	configPath := flags.Config
	if env := os.Getenv("CONFIG"); env != "" {
		configPath = env
	}

	options := &Options{}
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, options); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(options); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	options.Config = configPath

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			options.Addr = flags.Addr
		case "driver":
			options.DatabaseDriver = flags.DatabaseDriver
		case "d":
			options.DatabaseDSN = flags.DatabaseDSN
		case "history-cache":
			options.HistoryCachePath = flags.HistoryCachePath
		case "hasher":
			options.PasswordHasher = flags.PasswordHasher
		case "log-level":
			options.LogLevel = flags.LogLevel
		case "history-retention":
			options.HistoryRetention = flags.HistoryRetention
		}
	})

	return options, nil
}
