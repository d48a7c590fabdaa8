package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/bloodlink/internal/flagx"
	"github.com/dmitrijs2005/bloodlink/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "2s" or integer nanoseconds. Absent fields keep the
// value they had before the file was read.
type JSONConfig struct {
	APIBaseURL           string          `json:"api_url"`
	ChatBaseURL          string          `json:"chat_url"`
	DataFile             string          `json:"data_file"`
	LogLevel             string          `json:"log_level"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	ChatHandshakeTimeout *timex.Duration `json:"chat_handshake_timeout"`
	ChatFallbackDelay    *timex.Duration `json:"chat_fallback_delay"`
	ChatReconnectDelay   *timex.Duration `json:"chat_reconnect_delay"`
	BreakerFailures      *uint32         `json:"breaker_failures"`
	BreakerOpenTimeout   *timex.Duration `json:"breaker_open_timeout"`
}

// parseJSON overlays cfg with the file named by -c/-config or
// $BLOODLINK_CONFIG. No file means no changes.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.ChatBaseURL, jc.ChatBaseURL)
	setString(&cfg.DataFile, jc.DataFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.ChatHandshakeTimeout, jc.ChatHandshakeTimeout)
	setDuration(&cfg.ChatFallbackDelay, jc.ChatFallbackDelay)
	setDuration(&cfg.ChatReconnectDelay, jc.ChatReconnectDelay)
	setDuration(&cfg.BreakerOpenTimeout, jc.BreakerOpenTimeout)
	if jc.BreakerFailures != nil {
		cfg.BreakerFailures = *jc.BreakerFailures
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
