package config

import (
	"fmt"
	"os"
	"strings"
)

// Storage backend selectors.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config is centralized process configuration. Keep infra values here and
// pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string

	Storage     string
	DataDir     string
	PostgresDSN string

	EthRPCURL       string
	ContractAddress string

	// Admin bootstrap: seeded into an empty ledger on startup so the
	// admin-only operations have an in-core principal from day one.
	AdminUsername string
	AdminPassword string
	AdminAddress  string
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName:     envDefault("SERVICE_NAME", "agora"),
		HTTPPort:        envDefault("HTTP_PORT", "8080"),
		Storage:         envDefault("STORAGE_BACKEND", StorageFile),
		DataDir:         envDefault("DATA_DIR", "data"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		EthRPCURL:       envDefault("ETH_RPC_URL", "ws://localhost:8545"),
		ContractAddress: os.Getenv("ELECTION_CONTRACT"),
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminAddress:    os.Getenv("ADMIN_ADDRESS"),
	}

	switch cfg.Storage {
	case StorageFile, StoragePostgres:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage)
	}
	if cfg.Storage == StoragePostgres && strings.TrimSpace(cfg.PostgresDSN) == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required with STORAGE_BACKEND=postgres")
	}
	if strings.TrimSpace(cfg.ContractAddress) == "" {
		return Config{}, fmt.Errorf("ELECTION_CONTRACT is required")
	}
	return cfg, nil
}

func envDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
