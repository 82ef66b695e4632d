// Package config loads settings from defaults, an optional YAML file, a .env
// file and SEARCH_LAUNCHER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SEARCH_LAUNCHER_"

// Navigation modes.
const (
	NavigationAuto    = "auto"
	NavigationRelay   = "relay"
	NavigationDesktop = "desktop"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendKeyring  = "keyring"
	BackendPostgres = "postgres"
)

type Config struct {
	Addr        string  `yaml:"addr"`
	LogLevel    string  `yaml:"log_level"`
	Development bool    `yaml:"development"`
	Navigation  string  `yaml:"navigation"`
	Storage     Storage `yaml:"storage"`
	Search      Search  `yaml:"search"`
	Relay       Relay   `yaml:"relay"`
}

type Storage struct {
	Backend        string `yaml:"backend"`
	Dir            string `yaml:"dir"`
	DSN            string `yaml:"dsn"`
	Key            string `yaml:"key"`
	KeyringService string `yaml:"keyring_service"`
}

type Search struct {
	BaseURL string `yaml:"base_url"`
	Domain  string `yaml:"domain"`
}

type Relay struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DataDir returns ~/.search-launcher.
func DataDir() string {
	h, _ := os.UserHomeDir()
	return filepath.Join(h, ".search-launcher")
}

// DefaultFile returns ~/.search-launcher/config.yaml.
func DefaultFile() string {
	return filepath.Join(DataDir(), "config.yaml")
}

func Default() Config {
	return Config{
		Addr:       "127.0.0.1:8787",
		LogLevel:   "info",
		Navigation: NavigationAuto,
		Storage: Storage{
			Backend:        BackendFile,
			Dir:            DataDir(),
			Key:            "upworkSearchData",
			KeyringService: "search-launcher",
		},
		Search: Search{
			BaseURL: "https://www.upwork.com/nx/search/jobs/",
			Domain:  "upwork.com",
		},
		Relay: Relay{RequestTimeout: 5 * time.Second},
	}
}

// Load builds the configuration. A missing file at path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
			*dst = v
		}
	}
	str("ADDR", &cfg.Addr)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("NAVIGATION", &cfg.Navigation)
	str("STORAGE", &cfg.Storage.Backend)
	str("DATA_DIR", &cfg.Storage.Dir)
	str("DSN", &cfg.Storage.DSN)
	str("STORAGE_KEY", &cfg.Storage.Key)
	str("KEYRING_SERVICE", &cfg.Storage.KeyringService)
	str("SEARCH_BASE_URL", &cfg.Search.BaseURL)
	str("SEARCH_DOMAIN", &cfg.Search.Domain)

	if v := os.Getenv(envPrefix + "DEVELOPMENT"); v != "" {
		cfg.Development = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv(envPrefix + "RELAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sRELAY_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Relay.RequestTimeout = d
	}
	return nil
}

// Validate checks enumerations and required fields.
func (c Config) Validate() error {
	switch c.Navigation {
	case NavigationAuto, NavigationRelay, NavigationDesktop:
	default:
		return fmt.Errorf("unknown navigation mode %q", c.Navigation)
	}
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres backend")
		}
	case BackendMemory, BackendKeyring:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key must not be empty")
	}
	if c.Relay.RequestTimeout <= 0 {
		return errors.New("relay.request_timeout must be positive")
	}
	return nil
}
