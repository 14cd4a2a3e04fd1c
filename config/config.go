package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel    = "info"
	DefaultHTTPTimeout = 20 * time.Second
)

// Config is loaded once at startup and handed to whoever needs it.
// Secrets only ever come from the environment (or .env) and live in memory.
type Config struct {
	ExchangeID  string
	APIKey      string
	APISecret   string
	APIPassword string

	LogLevel    string
	HTTPTimeout time.Duration
	BaseURLs    map[string]string

	// Warnings collected while loading; logged by the caller once the
	// logger is configured.
	Warnings []string
}

type fileConfig struct {
	Exchange    string            `yaml:"exchange"`
	LogLevel    string            `yaml:"log_level"`
	HTTPTimeout string            `yaml:"http_timeout"`
	BaseURLs    map[string]string `yaml:"base_urls"`

	APIKey      string `yaml:"api_key"`
	APISecret   string `yaml:"api_secret"`
	APIPassword string `yaml:"api_password"`
}

// Load reads .env from the working directory if present, then the yaml file
// named by CART_CONFIG_FILE if set, then applies environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{
		LogLevel:    DefaultLogLevel,
		HTTPTimeout: DefaultHTTPTimeout,
		BaseURLs:    make(map[string]string),
	}

	if path, ok := lookup("CART_CONFIG_FILE"); ok && path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	getEnv := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}
	if v, ok := getEnv("EXCHANGE_ID"); ok {
		cfg.ExchangeID = v
	}
	if v, ok := getEnv("API_KEY"); ok {
		cfg.APIKey = v
	}
	if v, ok := getEnv("API_SECRET"); ok {
		cfg.APISecret = v
	}
	if v, ok := getEnv("API_PASSWORD"); ok {
		cfg.APIPassword = v
	}
	if v, ok := getEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnv("HTTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid HTTP_TIMEOUT %q", v)
		}
		cfg.HTTPTimeout = d
	}

	cfg.ExchangeID = strings.ToLower(strings.TrimSpace(cfg.ExchangeID))
	if cfg.HTTPTimeout <= 0 {
		return nil, errors.Errorf("http timeout must be positive, got %s", cfg.HTTPTimeout)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if fc.APIKey != "" || fc.APISecret != "" || fc.APIPassword != "" {
		c.Warnings = append(c.Warnings,
			"API secrets found in "+path+" were ignored; use API_KEY, API_SECRET and API_PASSWORD instead")
	}
	if fc.Exchange != "" {
		c.ExchangeID = fc.Exchange
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return errors.Wrapf(err, "invalid http_timeout %q", fc.HTTPTimeout)
		}
		c.HTTPTimeout = d
	}
	for k, v := range fc.BaseURLs {
		c.BaseURLs[strings.ToLower(k)] = v
	}
	return nil
}
