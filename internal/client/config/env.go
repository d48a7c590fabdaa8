package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DotEnvFile is loaded into the environment, if present, before the
// environment is read. Variables already set win over the file.
var DotEnvFile = ".env"

// envConfig maps environment variables. Unset variables leave the field
// as it was.
type envConfig struct {
	APIBaseURL     string        `env:"BLOODLINK_API_URL"`
	ChatBaseURL    string        `env:"BLOODLINK_CHAT_URL"`
	DataFile       string        `env:"BLOODLINK_DATA_FILE"`
	LogLevel       string        `env:"BLOODLINK_LOG_LEVEL"`
	RequestTimeout time.Duration `env:"BLOODLINK_REQUEST_TIMEOUT"`
}

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	ec := envConfig{
		APIBaseURL:     cfg.APIBaseURL,
		ChatBaseURL:    cfg.ChatBaseURL,
		DataFile:       cfg.DataFile,
		LogLevel:       cfg.LogLevel,
		RequestTimeout: cfg.RequestTimeout,
	}
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	cfg.APIBaseURL = ec.APIBaseURL
	cfg.ChatBaseURL = ec.ChatBaseURL
	cfg.DataFile = ec.DataFile
	cfg.LogLevel = ec.LogLevel
	cfg.RequestTimeout = ec.RequestTimeout
	return nil
}
