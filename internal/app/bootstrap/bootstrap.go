package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	electionengine "agora/contexts/governance/election-engine"
	ethereumadapter "agora/contexts/governance/election-engine/adapters/ethereum"
	filestore "agora/contexts/governance/election-engine/adapters/file"
	postgresadapter "agora/contexts/governance/election-engine/adapters/postgres"
	"agora/contexts/governance/election-engine/domain/entities"
	"agora/contexts/governance/election-engine/ports"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root. Keep construction/wiring here so
// module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	gateway  *ethereumadapter.Gateway
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	gateway, err := ethereumadapter.New(cfg.EthRPCURL, cfg.ContractAddress, logger)
	if err != nil {
		return nil, err
	}

	var (
		ledger  ports.LedgerRepository
		winners ports.WinnersArchive
		pg      *db.Postgres
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			gateway.Close()
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(); err != nil {
			gateway.Close()
			_ = pg.Close()
			return nil, err
		}
		ledger, winners = repo, repo
	default:
		store, err := filestore.NewStore(cfg.DataDir)
		if err != nil {
			gateway.Close()
			return nil, err
		}
		ledger, winners = store, store
	}

	hub := messaging.NewHub(logger)
	module := electionengine.NewModule(electionengine.Dependencies{
		Ledger:    ledger,
		Winners:   winners,
		Gateway:   gateway,
		Broadcast: hub,
		Logger:    logger,
	})

	if err := seedAdmin(module, gateway, cfg, logger); err != nil {
		gateway.Close()
		if pg != nil {
			_ = pg.Close()
		}
		return nil, err
	}

	socket := module.NewSessionHandler(hub, logger)
	server := httpserver.New(module, socket, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		gateway:  gateway,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run() error {
	return a.server.Start()
}

func (a *APIApp) Close() {
	a.gateway.Close()
	if a.postgres != nil {
		_ = a.postgres.Close()
	}
}

// seedAdmin plants the configured admin record into an empty ledger so the
// admin-gated operations have a principal from the first boot.
func seedAdmin(module electionengine.Module, gateway ports.LedgerGateway, cfg config.Config, logger *slog.Logger) error {
	if strings.TrimSpace(cfg.AdminUsername) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, err := module.Engine.Ledger.Load(ctx)
	if err != nil {
		return err
	}
	if _, idx := snapshot.FindUser(cfg.AdminUsername); idx >= 0 {
		return nil
	}

	balance, err := gateway.GetBalance(ctx, cfg.AdminAddress)
	if err != nil {
		logger.Warn("admin balance fetch failed, seeding zero",
			"event", "bootstrap_admin_balance_failed",
			"module", "internal/app/bootstrap",
			"layer", "app",
			"error", err.Error(),
		)
	}
	snapshot.Users = append(snapshot.Users, entities.User{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		Role:         entities.RoleAdmin,
		EtherBalance: balance,
		Address:      cfg.AdminAddress,
	})
	if err := module.Engine.Ledger.Store(ctx, snapshot); err != nil {
		return err
	}
	logger.Info("admin account seeded",
		"event", "bootstrap_admin_seeded",
		"module", "internal/app/bootstrap",
		"layer", "app",
		"username", cfg.AdminUsername,
	)
	return nil
}

func normalizeAddr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
