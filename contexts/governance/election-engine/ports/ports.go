package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"agora/contexts/governance/election-engine/domain/entities"
	"agora/internal/shared/events"
)

// LedgerRepository persists the whole election ledger as one document.
// Implementations must replace the stored snapshot atomically; a failed Store
// must leave the previous snapshot readable.
type LedgerRepository interface {
	Load(ctx context.Context) (entities.Snapshot, error)
	Store(ctx context.Context, snapshot entities.Snapshot) error
}

// WinnersArchive is the append-only winner history. It survives resets and
// deduplicates: appending a name already present is a no-op.
type WinnersArchive interface {
	Append(ctx context.Context, username string) error
	List(ctx context.Context) ([]string, error)
}

// LedgerGateway is the capability surface of the external blockchain-backed
// ledger. Every call is success/failure gated; a failed call is assumed to
// have had no effect, and the engine commits local state only after success.
type LedgerGateway interface {
	RegisterVoter(ctx context.Context, address string) error
	Pledge(ctx context.Context, address string, amount decimal.Decimal) error
	Vote(ctx context.Context, voterAddress string, candidateAddress string) error
	Transfer(ctx context.Context, adminAddress string, amount decimal.Decimal) error
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	IsKnownAccount(ctx context.Context, address string) (bool, error)
	IsValidAddress(address string) bool
}

// Broadcaster fans a notification out to connected clients, at most once,
// dropping rather than blocking on slow consumers.
type Broadcaster interface {
	Publish(ctx context.Context, event events.Envelope) error
}

// Rand supplies the tie-break draw; seedable in tests.
type Rand interface {
	Intn(n int) int
}
