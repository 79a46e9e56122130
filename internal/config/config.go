// Package config loads gateway configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for local development. The ledger URL has no default: a
// gateway pointed at the wrong ledger is worse than one that refuses to
// start.
const (
	DefaultListenAddr = ":8080"
	DefaultDBPath     = "./data/splitchain.db"
	DefaultDenom      = "uxion"
	DefaultTokenTTL   = 24 * time.Hour
	DefaultPriceFeed  = "https://api.coingecko.com/api/v3/simple/price?ids=xion-2&vs_currencies=usd"
	DefaultPriceAsset = "xion-2"
)

// Config holds everything the gateway needs to run.
type Config struct {
	// ListenAddr is the address the API server binds to.
	ListenAddr string
	// LedgerURL is the base URL of the ledger's HTTP facade. Required.
	LedgerURL string
	// Denom is the base currency denomination for settlements.
	Denom string
	// DBPath is the SQLite snapshot database location.
	DBPath string
	// JWTSecret signs session tokens. Required.
	JWTSecret string
	// TokenTTL is how long session tokens stay valid.
	TokenTTL time.Duration
	// PriceFeedURL and PriceAsset configure the fiat price lookup.
	PriceFeedURL string
	PriceAsset   string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables win over it.
func Load() (*Config, error) {
	// Ignore a missing .env; it is a dev convenience only.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", DefaultListenAddr),
		LedgerURL:    os.Getenv("LEDGER_URL"),
		Denom:        getEnv("LEDGER_DENOM", DefaultDenom),
		DBPath:       getEnv("DB_PATH", DefaultDBPath),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     DefaultTokenTTL,
		PriceFeedURL: getEnv("PRICE_FEED_URL", DefaultPriceFeed),
		PriceAsset:   getEnv("PRICE_ASSET", DefaultPriceAsset),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, errors.New("TOKEN_TTL must be a duration like 24h")
		}
		cfg.TokenTTL = d
	}

	if cfg.LedgerURL == "" {
		return nil, errors.New("LEDGER_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
