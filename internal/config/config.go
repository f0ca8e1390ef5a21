// Package config loads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the settings shared by the site server and the CLI.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	SiteAddr       string        `mapstructure:"site_addr"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	MongoURI       string        `mapstructure:"mongo_uri"`
	MongoDB        string        `mapstructure:"mongo_db"`
	SessionFile    string        `mapstructure:"session_file"`
	AuthRateLimit  int           `mapstructure:"auth_rate_limit"`
	AuthRateWindow time.Duration `mapstructure:"auth_rate_window"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

var defaults = map[string]any{
	"api_base_url":     "http://localhost:8080",
	"site_addr":        ":3000",
	"http_timeout":     10 * time.Second,
	"mongo_uri":        "",
	"mongo_db":         "transportease",
	"session_file":     "",
	"auth_rate_limit":  10,
	"auth_rate_window": time.Minute,
	"log_level":        "info",
	"log_format":       "text",
	"trusted_proxies":  []string{},
}

// New returns a viper instance with defaults and environment binding set
// up. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		// AutomaticEnv only covers keys viper already knows about; bind
		// explicitly so Unmarshal sees env-only values.
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	v.AutomaticEnv()
	return v
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; values already set win.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).WithField("file", f).Warn("Failed to load env file")
		}
	}
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q", c.APIBaseURL)
	}
	if c.HTTPTimeout < 0 {
		return errors.New("HTTP_TIMEOUT must not be negative")
	}
	if c.AuthRateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	if c.AuthRateWindow <= 0 {
		return errors.New("AUTH_RATE_WINDOW must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds a logrus logger from the log settings.
func (c *Config) NewLogger() *log.Logger {
	logger := log.New()
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}
