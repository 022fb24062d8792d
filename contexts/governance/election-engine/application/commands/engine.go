package commands

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/contexts/governance/election-engine/ports"
	"agora/internal/shared/events"
)

// Engine is the single writer for the election ledger. Every command holds
// the mutation lock across its whole read → gateway call → mutate → persist
// span, so the suspension at the external ledger cannot interleave two
// writers and produce a lost update. Gateway failure aborts before any local
// mutation.
type Engine struct {
	Ledger    ports.LedgerRepository
	Winners   ports.WinnersArchive
	Gateway   ports.LedgerGateway
	Broadcast ports.Broadcaster
	Rand      ports.Rand
	Logger    *slog.Logger

	mu sync.Mutex
}

func (e *Engine) load(ctx context.Context) (entities.Snapshot, error) {
	snapshot, err := e.Ledger.Load(ctx)
	if err != nil {
		return entities.Snapshot{}, domainerrors.Persistence(err)
	}
	return snapshot, nil
}

func (e *Engine) store(ctx context.Context, snapshot entities.Snapshot) error {
	if err := e.Ledger.Store(ctx, snapshot); err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

// publish is fire-and-forget: a failed or dropped notification never fails
// the command that produced it.
func (e *Engine) publish(ctx context.Context, event events.Envelope) {
	if e.Broadcast == nil {
		return
	}
	if err := e.Broadcast.Publish(ctx, event); err != nil {
		application.ResolveLogger(e.Logger).Warn("notification publish failed",
			"event", "election_publish_failed",
			"module", "governance/election-engine",
			"layer", "application",
			"event_type", event.EventType,
			"error", err.Error(),
		)
	}
}

func (e *Engine) intn(n int) int {
	if e.Rand == nil {
		return rand.IntN(n)
	}
	return e.Rand.Intn(n)
}

func totalPledged(candidates []entities.User) decimal.Decimal {
	total := decimal.Zero
	for _, candidate := range candidates {
		total = total.Add(candidate.PledgedEther)
	}
	return total
}

// requireAdmin resolves the acting user and enforces the admin-only gate in
// the core rather than trusting the caller.
func requireAdmin(snapshot entities.Snapshot, actor string) (entities.User, error) {
	user, idx := snapshot.FindUser(actor)
	if idx < 0 || !user.IsAdmin() {
		return entities.User{}, domainerrors.ErrAdminOnly
	}
	return user, nil
}
