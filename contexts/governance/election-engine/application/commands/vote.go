package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/internal/shared/events"
)

type VoteCommand struct {
	Voter     string
	Candidate string
}

type VoteResult struct {
	Message    string
	Reward     decimal.Decimal
	Candidates []entities.User
}

func (e *Engine) CastVote(ctx context.Context, cmd VoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(e.Logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return VoteResult{}, err
	}
	voter, voterIdx := snapshot.FindUser(cmd.Voter)
	if voterIdx < 0 {
		return VoteResult{}, domainerrors.ErrUserNotFound
	}
	candidate, candidateIdx := snapshot.FindUser(cmd.Candidate)
	if candidateIdx < 0 || !candidate.Candidacy {
		return VoteResult{}, domainerrors.ErrCandidateNotFound
	}
	if voter.HasVoted() {
		return VoteResult{}, domainerrors.ErrAlreadyVoted
	}
	if candidate.PoolExhausted() {
		return VoteResult{}, domainerrors.ErrPoolExhausted
	}

	if err := e.Gateway.Vote(ctx, voter.Address, candidate.Address); err != nil {
		return VoteResult{}, domainerrors.External(err)
	}

	// One-shot transfer of exactly one measure from pool to voter. Mutations
	// go through the slice so a self-vote touches a single record.
	measure := candidate.Measure
	snapshot.Users[voterIdx].VotedFor = candidate.Username
	snapshot.Users[voterIdx].EtherBalance = snapshot.Users[voterIdx].EtherBalance.Add(measure)
	snapshot.Users[candidateIdx].VotesReceived++
	snapshot.Users[candidateIdx].PledgedEther = snapshot.Users[candidateIdx].PledgedEther.Sub(measure)
	if err := e.store(ctx, snapshot); err != nil {
		return VoteResult{}, err
	}

	candidates := snapshot.Candidates()
	logger.Info("vote cast",
		"event", "election_vote_cast",
		"module", "governance/election-engine",
		"layer", "application",
		"voter", voter.Username,
		"candidate", candidate.Username,
		"reward", measure.String(),
	)
	e.publish(ctx, events.New(events.TypeCandidatesData, "candidates", candidate.Username, candidates))
	return VoteResult{
		Message:    fmt.Sprintf("You voted for %s and received %s Ether", candidate.Username, measure.String()),
		Reward:     measure,
		Candidates: candidates,
	}, nil
}
