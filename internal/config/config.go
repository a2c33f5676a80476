package config

import "time"

// PostgresConfig is required when the ledger is stored in Postgres.
type PostgresConfig struct {
	DSN             string        `env:"PG_DSN,optional"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS,optional"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS,optional"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME,optional"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME,optional"`
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// LedgerConfig selects the store and seeds the contract on first start.
type LedgerConfig struct {
	Store          string        `env:"LEDGER_STORE,default=postgres"`
	OwnerID        string        `env:"LEDGER_OWNER_ID,optional"`
	NftAccount     string        `env:"LEDGER_NFT_ACCOUNT,optional"`
	ResumeInterval time.Duration `env:"LEDGER_RESUME_INTERVAL,default=1m"`
}

// TokenConfig points at the fungible token collaborator. Secret signs outbound
// transfers and authenticates its callbacks.
type TokenConfig struct {
	Endpoint string        `env:"TOKEN_ENDPOINT"`
	Secret   string        `env:"TOKEN_SECRET"`
	Timeout  time.Duration `env:"TOKEN_TIMEOUT,default=10s"`
}

// RateLimitConfig bounds mutating requests per caller.
type RateLimitConfig struct {
	PerSecond float64 `env:"RATE_LIMIT_PER_SEC,default=5"`
	Burst     int64   `env:"RATE_LIMIT_BURST,default=20"`
}

// CORSConfig lists browser origins allowed to call the API. Empty disables CORS
// handling.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,optional"`
}
