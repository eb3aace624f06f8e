package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"
)

// DefaultEndpoint is the pubproxy.com plain-text API.
const DefaultEndpoint = "http://pubproxy.com/api/proxy"

type Config struct {
	Provider ProviderConfig `json:"provider"`
	Metrics  MetricsConfig  `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
}

type ProviderConfig struct {
	Endpoint         string `json:"endpoint"`
	ConnectTimeoutMs int    `json:"connect_timeout_ms"`
	ReadTimeoutMs    int    `json:"read_timeout_ms"`
	UserAgent        string `json:"user_agent"`
	MaxBodyBytes     int64  `json:"max_body_bytes"`
}

type MetricsConfig struct {
	Namespace string `json:"namespace"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "text" or "json"

	// AsyncQueueSize bounds the log dispatcher used by the non-blocking mode.
	AsyncQueueSize int `json:"async_queue_size"`
}

// Default returns a configuration with every field set to its default.
func Default() Config {
	var cfg Config
	cfg.setDefaults()
	return cfg
}

// Decode reads a JSON configuration, fills defaults for missing fields and
// validates the result.
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config JSON: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Provider.Endpoint == "" {
		c.Provider.Endpoint = DefaultEndpoint
	}
	if c.Provider.ConnectTimeoutMs == 0 {
		c.Provider.ConnectTimeoutMs = 5000
	}
	if c.Provider.ReadTimeoutMs == 0 {
		c.Provider.ReadTimeoutMs = 6000
	}
	if c.Provider.MaxBodyBytes == 0 {
		c.Provider.MaxBodyBytes = 64 * 1024
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "proxipy"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.AsyncQueueSize == 0 {
		c.Logging.AsyncQueueSize = 64
	}
}

// Validate checks configuration validity
func (c Config) Validate() error {
	u, err := url.Parse(c.Provider.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be 'http' or 'https'")
	}
	if c.Provider.ConnectTimeoutMs < 100 || c.Provider.ConnectTimeoutMs > 300000 {
		return fmt.Errorf("connect_timeout_ms must be between 100 and 300000")
	}
	if c.Provider.ReadTimeoutMs < 100 || c.Provider.ReadTimeoutMs > 300000 {
		return fmt.Errorf("read_timeout_ms must be between 100 and 300000")
	}
	if c.Provider.MaxBodyBytes < 1 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging format must be 'text' or 'json'")
	}
	if c.Logging.AsyncQueueSize < 1 {
		return fmt.Errorf("async_queue_size must be positive")
	}
	return nil
}

func (p ProviderConfig) ConnectTimeout() time.Duration {
	return time.Duration(p.ConnectTimeoutMs) * time.Millisecond
}

func (p ProviderConfig) ReadTimeout() time.Duration {
	return time.Duration(p.ReadTimeoutMs) * time.Millisecond
}
