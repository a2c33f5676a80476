package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/wagerledger/internal/config"
	"github.com/fastprodman/wagerledger/internal/infra/logging"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"`
	LogFile         string        `env:"APP_LOG_FILE,optional"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT,default=10s"`

	Postgres  config.PostgresConfig
	Ledger    config.LedgerConfig
	Token     config.TokenConfig
	RateLimit config.RateLimitConfig
	CORS      config.CORSConfig
}

func (c *apiConfig) validate() error {
	switch c.Ledger.Store {
	case config.StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PG_DSN is required for the %s store", config.StorePostgres)
		}
	case config.StoreMemory:
	default:
		return fmt.Errorf("unknown LEDGER_STORE %q", c.Ledger.Store)
	}

	if c.Token.Secret == "" {
		return fmt.Errorf("TOKEN_SECRET must not be empty")
	}

	if c.Ledger.ResumeInterval <= 0 {
		return fmt.Errorf("LEDGER_RESUME_INTERVAL must be positive")
	}

	return nil
}

func (c *apiConfig) logFile() logging.FileConfig {
	return logging.FileConfig{
		Path:       c.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
		Compress:   true,
	}
}
