package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mehmetsinc/timer-takimca/pkg/discovery"
	"github.com/mehmetsinc/timer-takimca/pkg/fetch"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
	"github.com/mehmetsinc/timer-takimca/pkg/kvstore"
)

// Config is the timer-web configuration as read from a YAML file.
type Config struct {
	Port      int             `yaml:"port"`
	LogLevel  string          `yaml:"logLevel"`
	Store     kvstore.Config  `yaml:"store"`
	Codec     string          `yaml:"codec"`
	Fetch     FetchConfig     `yaml:"fetch"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	MDNS      MDNSConfig      `yaml:"mdns"`
}

// FetchConfig configures downloads of remote background images.
type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"maxBytes"`
}

// RateLimitConfig limits image mutations per client.
type RateLimitConfig struct {
	// PerSecond is the sustained request rate. Zero disables limiting.
	PerSecond float64 `yaml:"perSecond"`
	Burst     int     `yaml:"burst"`
}

// MDNSConfig configures LAN advertising.
type MDNSConfig struct {
	// Name is the advertised instance name. Empty disables advertising.
	Name string `yaml:"name"`

	discovery.Config `yaml:",inline"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:     8080,
		LogLevel: "info",
		Store: kvstore.Config{
			Driver: kvstore.DriverSQLite,
			Path:   "./timer-web.db",
		},
		Codec: "json",
		Fetch: FetchConfig{
			Timeout:  fetch.DefaultTimeout,
			MaxBytes: fetch.DefaultMaxBytes,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 2,
			Burst:     10,
		},
		MDNS: MDNSConfig{Config: discovery.DefaultConfig()},
	}
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the server cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be 0-65535, got %d", c.Port))
	}
	switch c.Store.Driver {
	case kvstore.DriverMemory, kvstore.DriverFile, kvstore.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", kvstore.ErrUnknownDriver, c.Store.Driver))
	}
	if c.Store.Driver != kvstore.DriverMemory && c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store %s needs a path", c.Store.Driver))
	}
	if c.Store.Quota < 0 {
		errs = append(errs, fmt.Errorf("quota must not be negative, got %d", c.Store.Quota))
	}
	if _, err := imagecache.CodecByName(c.Codec); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.MDNS.Name != "" {
		if err := discovery.ValidateInstanceName(c.MDNS.Name); err != nil {
			errs = append(errs, fmt.Errorf("mdns name: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ServerConfig converts c into the server's settings.
func (c *Config) ServerConfig() ServerConfig {
	return ServerConfig{
		Port:      c.Port,
		Store:     c.Store,
		Codec:     c.Codec,
		Fetch:     c.Fetch,
		RateLimit: c.RateLimit,
	}
}
