package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/weemen/vergeclient/pkg/log"
)

const (
	configDirPathEnv     = "VERGE_CONFIG_DIR"
	defaultConfigDirPath = "."
)

type TransportKind string

const (
	TransportHTTP      TransportKind = "http"
	TransportWebsocket TransportKind = "ws"
)

// Config is the vergecli configuration, read from the environment.
type Config struct {
	RPCURL      string        `env:"VERGE_RPC_URL" env-required:"true" validate:"required,url"`
	Transport   TransportKind `env:"VERGE_RPC_TRANSPORT" env-default:"http" validate:"oneof=http ws"`
	UserID      string        `env:"VERGE_RPC_USER_ID" validate:"omitempty,number"`
	Timeout     time.Duration `env:"VERGE_RPC_TIMEOUT" env-default:"30s" validate:"gt=0"`
	CallTimeout time.Duration `env:"VERGE_RPC_CALL_TIMEOUT" env-default:"60s" validate:"gt=0"`
	MetricsAddr string        `env:"VERGE_METRICS_ADDR" validate:"omitempty,hostname_port"`

	Log log.Config
}

// CorrelationID returns the configured user id, or nil when none is set.
func (c *Config) CorrelationID() (*uint64, error) {
	if c.UserID == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(c.UserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid VERGE_RPC_USER_ID: %w", err)
	}
	return &id, nil
}

// LoadConfig reads $VERGE_CONFIG_DIR/.env if present, then the environment.
func LoadConfig(lg log.Logger) (*Config, error) {
	lg = lg.WithName("config")

	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	configDotEnvPath := filepath.Join(configDirPath, ".env")
	if err := godotenv.Load(configDotEnvPath); err != nil {
		lg.Debug(".env file not loaded", "path", configDotEnvPath, "error", err)
	} else {
		lg.Debug("loaded .env file", "path", configDotEnvPath)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.CorrelationID(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
