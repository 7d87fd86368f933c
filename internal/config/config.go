// Package config loads geofunc settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines geofunc configuration. Unset fields take the values in
// their default tags.
type Config struct {
	DBPath        string `yaml:"db_path" validate:"required"`
	SolverPath    string `yaml:"solver_path" default:"C:\\Program Files\\Seequent\\GeoStudio 2023.1" validate:"required"`
	SolverConsole bool   `yaml:"solver_console"`
	MetricsFile   string `yaml:"metrics_file,omitempty" validate:"omitempty,endswith=.prom"`
}

// DefaultPath returns $GEOFUNC_CONFIG or ~/.geofunc/config.yaml.
func DefaultPath() string {
	if env := os.Getenv("GEOFUNC_CONFIG"); env != "" {
		return env
	}
	return filepath.Join(homeDir(), ".geofunc", "config.yaml")
}

// Load reads the config at path. Values are applied in order: defaults, the
// YAML file (a missing file is not an error), then GEOFUNC_DB,
// GEOFUNC_SOLVER_PATH, GEOFUNC_SOLVER_CONSOLE and GEOFUNC_METRICS_FILE. Those
// variables may also come from a .env file in the working directory; the
// process environment wins over it.
func Load(path string) (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("config defaults: %w", err)
	}
	cfg.DBPath = filepath.Join(homeDir(), ".geofunc", "snapshots.db")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("GEOFUNC_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GEOFUNC_SOLVER_PATH"); v != "" {
		cfg.SolverPath = v
	}
	if v := os.Getenv("GEOFUNC_SOLVER_CONSOLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("GEOFUNC_SOLVER_CONSOLE: %w", err)
		}
		cfg.SolverConsole = b
	}
	if v := os.Getenv("GEOFUNC_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}

	cfg.SolverPath = strings.TrimRight(cfg.SolverPath, " \t\r\n")
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks required fields and that a metrics file carries the .prom
// suffix the textfile collector reads.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	return home
}
