package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverS3       = "s3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nested keys: FIELDMAP_STORE__DRIVER sets store.driver.
const EnvPrefix = "FIELDMAP_"

// Config holds runtime settings and flags.
type Config struct {
	Store   StoreConfig   `yaml:"store" koanf:"store"`
	History HistoryConfig `yaml:"history" koanf:"history"`
	UI      UIConfig      `yaml:"ui" koanf:"ui"`
	LogFile string        `yaml:"log_file" koanf:"log_file"`
}

type StoreConfig struct {
	Driver string   `yaml:"driver" koanf:"driver"`
	DSN    string   `yaml:"dsn" koanf:"dsn"`
	Path   string   `yaml:"path" koanf:"path"`
	S3     S3Config `yaml:"s3" koanf:"s3"`
	// Migrations is the golang-migrate source directory for postgres.
	Migrations string `yaml:"migrations" koanf:"migrations"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" koanf:"bucket"`
	Key             string `yaml:"key" koanf:"key"`
	Region          string `yaml:"region" koanf:"region"`
	Endpoint        string `yaml:"endpoint" koanf:"endpoint"`
	PathStyle       bool   `yaml:"path_style" koanf:"path_style"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" koanf:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" koanf:"secret_access_key"`
}

type HistoryConfig struct {
	// Limit caps undo depth; 0 keeps everything.
	Limit int `yaml:"limit" koanf:"limit"`
}

type UIConfig struct {
	Theme     string `yaml:"theme" koanf:"theme"`
	CellWidth int    `yaml:"cell_width" koanf:"cell_width"`
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:     DriverFile,
			Path:       "data/fieldmap.json",
			Migrations: "db/migrations",
			S3:         S3Config{Key: "fieldmap/data.json", Region: "us-east-1"},
		},
		UI:      UIConfig{Theme: "catppuccin", CellWidth: 2},
		LogFile: "fieldmap.log",
	}
}

// LoadConfig reads the YAML file at path when it exists, then overlays
// FIELDMAP_* environment variables on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validDrivers = map[string]bool{
	DriverFile:     true,
	DriverPostgres: true,
	DriverSQLite:   true,
	DriverS3:       true,
}

func (c *Config) Validate() error {
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store.driver %q: must be one of file, postgres, sqlite, s3", c.Store.Driver)
	}
	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s driver", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	case DriverS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("store.s3.bucket is required for the s3 driver")
		}
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must be non-negative")
	}
	if c.UI.CellWidth < 0 {
		return fmt.Errorf("ui.cell_width must be non-negative")
	}
	return nil
}
