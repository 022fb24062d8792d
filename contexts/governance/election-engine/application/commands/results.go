package commands

import (
	"context"

	"github.com/shopspring/decimal"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/internal/shared/events"
)

// ResultsOutcome doubles as the electionResults broadcast payload.
type ResultsOutcome struct {
	Winner        entities.User   `json:"winner"`
	RemainingPool decimal.Decimal `json:"totalRemainingPledgedEther"`
}

// ComputeResults picks the winner via the tie-break cascade: most votes,
// then largest measure, then a uniform random draw among the remaining tied
// candidates. The winner is archived idempotently.
func (e *Engine) ComputeResults(ctx context.Context) (ResultsOutcome, error) {
	logger := application.ResolveLogger(e.Logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return ResultsOutcome{}, err
	}
	candidates := snapshot.Candidates()
	if len(candidates) == 0 {
		return ResultsOutcome{}, domainerrors.ErrNoCandidates
	}

	top := leadersByVotes(candidates)
	if len(top) > 1 {
		top = leadersByMeasure(top)
	}
	winner := top[0]
	if len(top) > 1 {
		winner = top[e.intn(len(top))]
	}

	if err := e.Winners.Append(ctx, winner.Username); err != nil {
		return ResultsOutcome{}, domainerrors.Persistence(err)
	}

	outcome := ResultsOutcome{
		Winner:        winner,
		RemainingPool: totalPledged(candidates),
	}
	logger.Info("election results computed",
		"event", "election_results_computed",
		"module", "governance/election-engine",
		"layer", "application",
		"winner", winner.Username,
		"remaining_pool", outcome.RemainingPool.String(),
	)
	e.publish(ctx, events.New(events.TypeElectionResults, "election", winner.Username, outcome))
	return outcome, nil
}

func leadersByVotes(candidates []entities.User) []entities.User {
	maxVotes := candidates[0].VotesReceived
	for _, candidate := range candidates[1:] {
		if candidate.VotesReceived > maxVotes {
			maxVotes = candidate.VotesReceived
		}
	}
	var top []entities.User
	for _, candidate := range candidates {
		if candidate.VotesReceived == maxVotes {
			top = append(top, candidate)
		}
	}
	return top
}

func leadersByMeasure(candidates []entities.User) []entities.User {
	maxMeasure := candidates[0].Measure
	for _, candidate := range candidates[1:] {
		if candidate.Measure.GreaterThan(maxMeasure) {
			maxMeasure = candidate.Measure
		}
	}
	var top []entities.User
	for _, candidate := range candidates {
		if candidate.Measure.Equal(maxMeasure) {
			top = append(top, candidate)
		}
	}
	return top
}
