package main

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// Config is read from the environment.
type Config struct {
	Addr             string `env:"ADDR" envDefault:":3000"`
	Store            string `env:"STORE" envDefault:"sqlite"`
	DatabaseURL      string `env:"DATABASE_URL"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"narrative.db"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	DefaultMaxLength int    `env:"DEFAULT_MAX_LENGTH" envDefault:"5"`
	MaxTrajectories  int    `env:"MAX_TRAJECTORIES" envDefault:"100000"`
	Workers          int    `env:"WORKERS" envDefault:"1"`
}

// loadConfig parses the process environment, or environ when it is non-nil,
// and validates the result.
func loadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns every problem with cfg joined into one error.
func (cfg Config) Validate() error {
	var errs []error
	switch cfg.Store {
	case "postgres":
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE is postgres"))
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORE is sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE %q is invalid; valid values: postgres, sqlite", cfg.Store))
	}
	if _, err := zap.ParseAtomicLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.DefaultMaxLength <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_MAX_LENGTH %d must be positive", cfg.DefaultMaxLength))
	}
	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS %d must be positive", cfg.Workers))
	}
	return errors.Join(errs...)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
