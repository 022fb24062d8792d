package commands

import (
	"context"

	"github.com/shopspring/decimal"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
)

// TransferRemainder reconciles the unclaimed reward pool: the remaining
// pledged ether across all candidates is moved to the admin on the external
// ledger, then credited to the admin's cached balance. The persisted latch
// makes this at-most-once per cycle inside the core; only Reset reopens it.
func (e *Engine) TransferRemainder(ctx context.Context, actor string) (decimal.Decimal, error) {
	logger := application.ResolveLogger(e.Logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if _, err := requireAdmin(snapshot, actor); err != nil {
		return decimal.Zero, err
	}
	if snapshot.Stage != entities.StageResults {
		return decimal.Zero, domainerrors.ErrStageClosed
	}
	if snapshot.RemainderTransferred {
		return decimal.Zero, domainerrors.ErrAlreadyReconciled
	}
	admin, adminIdx := snapshot.Admin()
	if adminIdx < 0 {
		return decimal.Zero, domainerrors.ErrAdminNotFound
	}

	total := totalPledged(snapshot.Candidates())
	if err := e.Gateway.Transfer(ctx, admin.Address, total); err != nil {
		return decimal.Zero, domainerrors.External(err)
	}

	snapshot.Users[adminIdx].EtherBalance = snapshot.Users[adminIdx].EtherBalance.Add(total)
	snapshot.RemainderTransferred = true
	if err := e.store(ctx, snapshot); err != nil {
		return decimal.Zero, err
	}

	logger.Info("remainder transferred",
		"event", "election_remainder_transferred",
		"module", "governance/election-engine",
		"layer", "application",
		"admin", admin.Username,
		"amount", total.String(),
	)
	return total, nil
}
