package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/bloodlink/internal/common"
)

// Config holds runtime settings for the bloodlink CLI.
type Config struct {
	APIBaseURL  string
	ChatBaseURL string
	DataFile    string
	LogLevel    string

	RequestTimeout       time.Duration
	ChatHandshakeTimeout time.Duration
	ChatFallbackDelay    time.Duration
	ChatReconnectDelay   time.Duration

	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = common.DefaultAPIBaseURL
	c.ChatBaseURL = common.DefaultChatBaseURL
	c.DataFile = "bloodlink.db"
	c.LogLevel = "info"
	c.RequestTimeout = 15 * time.Second
	c.ChatHandshakeTimeout = 10 * time.Second
	c.ChatFallbackDelay = 500 * time.Millisecond
	c.ChatReconnectDelay = 2 * time.Second
	c.BreakerFailures = 3
	c.BreakerOpenTimeout = 30 * time.Second
}

// Load builds a Config from defaults, an optional JSON file, .env and the
// environment, then the command-line flags in args (without the program
// name). Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, raw := range map[string]string{"API": c.APIBaseURL, "chat": c.ChatBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s URL %q", name, raw)
		}
	}
	if c.DataFile == "" {
		return errors.New("data file must not be empty")
	}
	return nil
}
