package electionengine

import (
	"log/slog"

	"agora/contexts/governance/election-engine/adapters/memory"
	wsadapter "agora/contexts/governance/election-engine/adapters/ws"
	"agora/contexts/governance/election-engine/application/commands"
	"agora/contexts/governance/election-engine/application/queries"
	"agora/contexts/governance/election-engine/domain/entities"
	"agora/contexts/governance/election-engine/ports"
)

type Module struct {
	Engine  *commands.Engine
	Queries queries.Queries

	// Populated only by NewInMemoryModule.
	Store   *memory.Store
	Gateway *memory.Gateway
}

type Dependencies struct {
	Ledger    ports.LedgerRepository
	Winners   ports.WinnersArchive
	Gateway   ports.LedgerGateway
	Broadcast ports.Broadcaster
	Rand      ports.Rand
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	engine := &commands.Engine{
		Ledger:    deps.Ledger,
		Winners:   deps.Winners,
		Gateway:   deps.Gateway,
		Broadcast: deps.Broadcast,
		Rand:      deps.Rand,
		Logger:    deps.Logger,
	}
	return Module{
		Engine: engine,
		Queries: queries.Queries{
			Ledger:  deps.Ledger,
			Winners: deps.Winners,
			Gateway: deps.Gateway,
		},
	}
}

// NewInMemoryModule wires the engine against the in-memory store and gateway,
// for tests and local runs without a chain or database.
func NewInMemoryModule(seed entities.Snapshot, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	gateway := memory.NewGateway()
	module := NewModule(Dependencies{
		Ledger:  store,
		Winners: store,
		Gateway: gateway,
		Logger:  logger,
	})
	module.Store = store
	module.Gateway = gateway
	return module
}

// NewSessionHandler builds the websocket handler for this module.
func (m Module) NewSessionHandler(hub wsadapter.Subscriber, logger *slog.Logger) *wsadapter.Handler {
	return wsadapter.NewHandler(m.Engine, m.Queries, hub, logger)
}
