package commands

import (
	"context"

	"github.com/shopspring/decimal"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/internal/shared/events"
)

// centiStake is the per-voter unit of the minimum stake formula.
var centiStake = decimal.New(1, -2)

// DeclareCommand stakes a reward pool and turns the user into a candidate.
// RequiredStake is caller-supplied, computed from the voter population
// (0.01 × voters − 0.01); queries.RequiredStake exposes the same value.
type DeclareCommand struct {
	Username      string
	RequiredStake decimal.Decimal
	Pledge        decimal.Decimal
}

type DeclareResult struct {
	Candidate    entities.User
	Candidates   []entities.User
	TotalPledged decimal.Decimal
}

func (e *Engine) Declare(ctx context.Context, cmd DeclareCommand) (DeclareResult, error) {
	logger := application.ResolveLogger(e.Logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return DeclareResult{}, err
	}
	user, idx := snapshot.FindUser(cmd.Username)
	if idx < 0 {
		return DeclareResult{}, domainerrors.ErrUserNotFound
	}
	if user.Candidacy {
		return DeclareResult{}, domainerrors.ErrAlreadyCandidate
	}
	if !cmd.Pledge.IsPositive() {
		return DeclareResult{}, domainerrors.ErrNonPositivePledge
	}
	if cmd.Pledge.LessThan(cmd.RequiredStake) {
		return DeclareResult{}, domainerrors.ErrPledgeBelowMinimum
	}
	if cmd.Pledge.GreaterThan(user.EtherBalance) {
		return DeclareResult{}, domainerrors.ErrInsufficientBalance
	}

	// Paid transaction: the stake moves on the external ledger first, the
	// local mutation is committed only once it has.
	if err := e.Gateway.Pledge(ctx, user.Address, cmd.Pledge); err != nil {
		return DeclareResult{}, domainerrors.External(err)
	}

	user.PledgedEther = user.PledgedEther.Add(cmd.Pledge)
	user.EtherBalance = user.EtherBalance.Sub(cmd.Pledge)
	user.Measure = measureFor(cmd.Pledge, cmd.RequiredStake)
	user.Candidacy = true
	snapshot.Users[idx] = user
	if err := e.store(ctx, snapshot); err != nil {
		return DeclareResult{}, err
	}

	candidates := snapshot.Candidates()
	total := totalPledged(candidates)
	logger.Info("candidacy declared",
		"event", "election_candidacy_declared",
		"module", "governance/election-engine",
		"layer", "application",
		"username", user.Username,
		"pledge", cmd.Pledge.String(),
		"measure", user.Measure.String(),
	)
	e.publish(ctx, events.New(events.TypeNewCandidate, "candidates", user.Username, candidates))
	e.publish(ctx, events.New(events.TypeUpdatedEther, "candidates", user.Username, total))
	return DeclareResult{Candidate: user, Candidates: candidates, TotalPledged: total}, nil
}

// measureFor derives the per-vote reward unit: the pledge scaled by how far
// the minimum stake sits above one centi-ether, rounded to two places. A zero
// minimum (single-voter ledger) degenerates to the whole pledge per vote.
func measureFor(pledge decimal.Decimal, requiredStake decimal.Decimal) decimal.Decimal {
	divisor := requiredStake.Div(centiStake)
	if divisor.Sign() <= 0 {
		return pledge.Round(2)
	}
	return pledge.Div(divisor).Round(2)
}
