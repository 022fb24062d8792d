package commands

import (
	"context"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/internal/shared/events"
)

// AdvanceStage moves the lifecycle one step forward, admin-only. Leaving
// Candidacy with exactly one declared candidate jumps straight to Results:
// the sole candidate wins by default and no voting round is held. Exactly one
// stageChanged notification is emitted either way.
func (e *Engine) AdvanceStage(ctx context.Context, actor string) (entities.Stage, error) {
	logger := application.ResolveLogger(e.Logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return "", err
	}
	if _, err := requireAdmin(snapshot, actor); err != nil {
		return "", err
	}

	next, ok := snapshot.Stage.Next(len(snapshot.Candidates()))
	if !ok {
		return "", domainerrors.ErrStageExhausted
	}
	snapshot.Stage = next
	if err := e.store(ctx, snapshot); err != nil {
		return "", err
	}

	logger.Info("stage advanced",
		"event", "election_stage_advanced",
		"module", "governance/election-engine",
		"layer", "application",
		"stage", string(next),
	)
	e.publish(ctx, events.New(events.TypeStageChanged, "election", string(next), next))
	return next, nil
}

// Reset wipes the cycle: non-admin records are deleted, surviving admins lose
// any candidacy flag, the stage returns to Registration, and the remainder
// latch reopens. The winners archive is deliberately untouched.
func (e *Engine) Reset(ctx context.Context, actor string) error {
	logger := application.ResolveLogger(e.Logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return err
	}
	if _, err := requireAdmin(snapshot, actor); err != nil {
		return err
	}

	var survivors []entities.User
	for _, user := range snapshot.Users {
		if !user.IsAdmin() {
			continue
		}
		user.Candidacy = false
		survivors = append(survivors, user)
	}
	snapshot.Users = survivors
	snapshot.Stage = entities.StageRegistration
	snapshot.RemainderTransferred = false
	if err := e.store(ctx, snapshot); err != nil {
		return err
	}

	logger.Info("elections reset",
		"event", "election_reset",
		"module", "governance/election-engine",
		"layer", "application",
		"surviving_users", len(survivors),
	)
	return nil
}
