// Package config loads vitrine settings from a YAML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/db"
)

// Relay modes for contact submissions.
const (
	RelayHTTP = "http"
	RelaySMTP = "smtp"
	RelayNone = "none"
)

// Config holds every vitrine setting. Zero values are filled by Load.
type Config struct {
	Site     SiteConfig    `yaml:"site"`
	Contact  ContactConfig `yaml:"contact"`
	Server   ServerConfig  `yaml:"server"`
	Database string        `yaml:"database,omitempty" env:"VITRINE_DB_PATH"`
	DevMode  bool          `yaml:"dev_mode,omitempty" env:"VITRINE_DEV_MODE"`
}

// SiteConfig says where the site's JSON data lives. Exactly one of URL and
// Dir is used; URL wins when both are set.
type SiteConfig struct {
	URL     string        `yaml:"url,omitempty" env:"VITRINE_SITE_URL"`
	Dir     string        `yaml:"dir,omitempty" env:"VITRINE_SITE_DIR"`
	Page    string        `yaml:"page,omitempty" env:"VITRINE_PAGE"`
	Timeout time.Duration `yaml:"timeout,omitempty" env:"VITRINE_HTTP_TIMEOUT"`
}

// ContactConfig selects and configures the contact relay.
type ContactConfig struct {
	Relay    string             `yaml:"relay,omitempty" env:"VITRINE_CONTACT_RELAY"`
	Endpoint string             `yaml:"endpoint,omitempty" env:"VITRINE_CONTACT_ENDPOINT"`
	SMTP     contact.SMTPConfig `yaml:"smtp,omitempty"`
}

// ServerConfig configures the HTTP API. URL is where CLI commands reach a
// running server.
type ServerConfig struct {
	URL            string   `yaml:"url,omitempty" env:"VITRINE_SERVER_URL"`
	Port           string   `yaml:"port,omitempty" env:"VITRINE_PORT"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" env:"VITRINE_ALLOWED_ORIGINS" envSeparator:","`
}

// DefaultPath returns the config file path: ~/.config/vitrine/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vitrine", "config.yaml"), nil
}

// Load reads the config file at path, applies environment overrides and
// fills defaults. An empty path means DefaultPath, and a missing default
// file is not an error. A missing file named explicitly is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return Config{}, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the settings used when no config file exists, with
// environment overrides applied.
func Defaults() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() error {
	if c.Site.URL == "" && c.Site.Dir == "" {
		c.Site.Dir = "."
	}
	if c.Site.Page == "" {
		c.Site.Page = "/"
	}
	if c.Site.Timeout == 0 {
		c.Site.Timeout = 30 * time.Second
	}
	if c.Contact.Relay == "" {
		c.Contact.Relay = RelayHTTP
	}
	if c.Contact.Endpoint == "" {
		c.Contact.Endpoint = contact.DefaultEndpoint
	}
	if c.Contact.SMTP.Port == "" {
		c.Contact.SMTP.Port = "587"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.URL == "" {
		c.Server.URL = "http://localhost:" + c.Server.Port
	}
	if c.Database == "" {
		p, err := db.DefaultPath()
		if err != nil {
			return err
		}
		c.Database = p
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Contact.Relay {
	case RelayHTTP, RelayNone:
	case RelaySMTP:
		if !c.Contact.SMTP.IsConfigured() {
			return fmt.Errorf("contact relay smtp needs smtp host, from and to")
		}
	default:
		return fmt.Errorf("unknown contact relay %q (want http, smtp or none)", c.Contact.Relay)
	}
	if c.Site.Timeout < 0 {
		return fmt.Errorf("site timeout must not be negative")
	}
	return nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
