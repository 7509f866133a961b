package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Web     WebConfig     `yaml:"web"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Logging LoggingConfig `yaml:"logging"`
}

type StoreConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type WebConfig struct {
	Port                   int `yaml:"port"`
	DefaultRefreshInterval int `yaml:"default_refresh_interval"`
	MinRefreshInterval     int `yaml:"min_refresh_interval"`
	MaxRefreshInterval     int `yaml:"max_refresh_interval"`
}

type FetchConfig struct {
	LogLimit     int `yaml:"log_limit"`
	HistoryLimit int `yaml:"history_limit"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the optional YAML config file, then overlays the store
// connection from the environment. A .env file is honored if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("DATABASE_KEY"); v != "" {
		cfg.Store.Key = v
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Web.DefaultRefreshInterval == 0 {
		cfg.Web.DefaultRefreshInterval = 15
	}
	if cfg.Web.MinRefreshInterval == 0 {
		cfg.Web.MinRefreshInterval = 5
	}
	if cfg.Web.MaxRefreshInterval == 0 {
		cfg.Web.MaxRefreshInterval = 120
	}
	if cfg.Fetch.LogLimit == 0 {
		cfg.Fetch.LogLimit = 200
	}
	if cfg.Fetch.HistoryLimit == 0 {
		cfg.Fetch.HistoryLimit = 200
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Store.URL == "" {
		return fmt.Errorf("store.url is required (set DATABASE_URL)")
	}
	if c.Store.IsPostgres() && c.Store.Key == "" {
		return fmt.Errorf("store.key is required (set DATABASE_KEY)")
	}
	if c.Web.MinRefreshInterval > c.Web.MaxRefreshInterval {
		return fmt.Errorf("web.min_refresh_interval %d exceeds max %d",
			c.Web.MinRefreshInterval, c.Web.MaxRefreshInterval)
	}
	return nil
}

func (s StoreConfig) IsPostgres() bool {
	return strings.HasPrefix(s.URL, "postgres://") || strings.HasPrefix(s.URL, "postgresql://")
}

// DSN builds the connection string handed to the driver. For Postgres the
// service key is injected as the password unless the URL already carries one.
func (s StoreConfig) DSN() string {
	if !s.IsPostgres() || s.Key == "" {
		return s.URL
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.User == nil {
		return s.URL
	}
	if _, has := u.User.Password(); has {
		return s.URL
	}
	u.User = url.UserPassword(u.User.Username(), s.Key)
	return u.String()
}

// URLPreview is the masked connection string shown in the debug sidebar.
func (s StoreConfig) URLPreview() string {
	preview := s.URL
	if u, err := url.Parse(s.URL); err == nil && u.User != nil {
		u.User = url.User(u.User.Username())
		preview = u.String()
	}
	if len(preview) > 60 {
		return preview[:60] + "…"
	}
	return preview
}
