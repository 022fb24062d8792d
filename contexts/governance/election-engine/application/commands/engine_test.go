package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	electionengine "agora/contexts/governance/election-engine"
	"agora/contexts/governance/election-engine/application/commands"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
)

func addr(i int) string {
	return fmt.Sprintf("0x%040d", i)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func seedModule(t *testing.T, seed entities.Snapshot, accounts int) electionengine.Module {
	t.Helper()
	module := electionengine.NewInMemoryModule(seed, nil)
	for i := 1; i <= accounts; i++ {
		module.Gateway.SeedAccount(addr(i), dec("100"))
	}
	return module
}

func register(t *testing.T, module electionengine.Module, username string, account int) entities.User {
	t.Helper()
	user, err := module.Engine.Register(context.Background(), commands.RegisterCommand{
		Username: username,
		Password: "secret",
		Address:  addr(account),
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{}, 3)

	user := register(t, module, "alice", 1)
	if !user.EtherBalance.Equal(dec("100")) {
		t.Fatalf("expected cached balance 100, got %s", user.EtherBalance)
	}
	if user.Role != entities.RoleNormal || user.Candidacy {
		t.Fatalf("unexpected fresh user state: %+v", user)
	}

	if _, err := module.Engine.Register(ctx, commands.RegisterCommand{
		Username: "alice", Password: "other", Address: addr(2),
	}); !errors.Is(err, domainerrors.ErrUsernameTaken) || !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected username conflict, got %v", err)
	}
	if _, err := module.Engine.Register(ctx, commands.RegisterCommand{
		Username: " ", Password: "x", Address: addr(2),
	}); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error for blank username, got %v", err)
	}
	if _, err := module.Engine.Register(ctx, commands.RegisterCommand{
		Username: "bob", Password: "x", Address: "not-an-address",
	}); !errors.Is(err, domainerrors.ErrMalformedAddress) {
		t.Fatalf("expected malformed address error, got %v", err)
	}
	if _, err := module.Engine.Register(ctx, commands.RegisterCommand{
		Username: "bob", Password: "x", Address: addr(9),
	}); !errors.Is(err, domainerrors.ErrUnknownAddress) {
		t.Fatalf("expected unknown account error, got %v", err)
	}

	if _, err := module.Engine.Login(ctx, "alice", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := module.Engine.Login(ctx, "alice", "wrong"); !errors.Is(err, domainerrors.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestRegisterGatewayFailureAborts(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{}, 1)
	module.Gateway.SetFail(errors.New("chain down"))

	if _, err := module.Engine.Register(ctx, commands.RegisterCommand{
		Username: "alice", Password: "secret", Address: addr(1),
	}); !errors.Is(err, domainerrors.ErrExternalLedger) {
		t.Fatalf("expected external ledger error, got %v", err)
	}
	count, err := module.Queries.TotalVoters(ctx)
	if err != nil {
		t.Fatalf("total voters failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no record after gateway failure, got %d", count)
	}
}

func TestDeclareCandidacyMeasure(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{}, 3)
	register(t, module, "alice", 1)
	register(t, module, "bob", 2)
	register(t, module, "carol", 3)

	stake, err := module.Queries.RequiredStake(ctx)
	if err != nil {
		t.Fatalf("required stake failed: %v", err)
	}
	if !stake.Equal(dec("0.02")) {
		t.Fatalf("expected required stake 0.02 for 3 voters, got %s", stake)
	}

	result, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "alice", RequiredStake: stake, Pledge: dec("0.02"),
	})
	if err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if !result.Candidate.Measure.Equal(dec("0.01")) {
		t.Fatalf("expected measure 0.01, got %s", result.Candidate.Measure)
	}
	if !result.Candidate.PledgedEther.Equal(dec("0.02")) {
		t.Fatalf("expected pledged 0.02, got %s", result.Candidate.PledgedEther)
	}
	if !result.Candidate.EtherBalance.Equal(dec("99.98")) {
		t.Fatalf("expected balance 99.98, got %s", result.Candidate.EtherBalance)
	}
	if !result.TotalPledged.Equal(dec("0.02")) {
		t.Fatalf("expected total pledged 0.02, got %s", result.TotalPledged)
	}

	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "alice", RequiredStake: stake, Pledge: dec("0.05"),
	}); !errors.Is(err, domainerrors.ErrAlreadyCandidate) {
		t.Fatalf("expected already-candidate conflict, got %v", err)
	}
	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "bob", RequiredStake: stake, Pledge: dec("0.01"),
	}); !errors.Is(err, domainerrors.ErrPledgeBelowMinimum) {
		t.Fatalf("expected below-minimum error, got %v", err)
	}
	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "bob", RequiredStake: stake, Pledge: dec("0"),
	}); !errors.Is(err, domainerrors.ErrNonPositivePledge) {
		t.Fatalf("expected non-positive pledge error, got %v", err)
	}
	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "bob", RequiredStake: stake, Pledge: dec("1000"),
	}); !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "nobody", RequiredStake: stake, Pledge: dec("0.02"),
	}); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestDeclareGatewayFailureAborts(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{}, 1)
	register(t, module, "alice", 1)
	module.Gateway.SetFail(errors.New("revert"))

	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "alice", RequiredStake: dec("0"), Pledge: dec("1"),
	}); !errors.Is(err, domainerrors.ErrExternalLedger) {
		t.Fatalf("expected external ledger error, got %v", err)
	}
	candidates, err := module.Queries.Candidates(ctx)
	if err != nil {
		t.Fatalf("candidates failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidate after gateway failure, got %d", len(candidates))
	}
}

func TestVoteDepletesPool(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{}, 4)
	register(t, module, "alice", 1)
	register(t, module, "bob", 2)
	register(t, module, "carol", 3)
	register(t, module, "dave", 4)

	// 4 voters → required stake 0.03; pledge 0.03 → measure 0.01.
	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "alice", RequiredStake: dec("0.03"), Pledge: dec("0.03"),
	}); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	for _, voter := range []string{"bob", "carol", "dave"} {
		result, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: voter, Candidate: "alice"})
		if err != nil {
			t.Fatalf("vote from %s failed: %v", voter, err)
		}
		if result.Message == "" {
			t.Fatalf("expected reward message for %s", voter)
		}
	}

	candidates, err := module.Queries.Candidates(ctx)
	if err != nil {
		t.Fatalf("candidates failed: %v", err)
	}
	if !candidates[0].PledgedEther.Equal(dec("0")) {
		t.Fatalf("expected exhausted pool, got %s", candidates[0].PledgedEther)
	}
	if candidates[0].VotesReceived != 3 {
		t.Fatalf("expected 3 votes, got %d", candidates[0].VotesReceived)
	}
	bobEther, err := module.Queries.UserEther(ctx, "bob")
	if err != nil {
		t.Fatalf("user ether failed: %v", err)
	}
	if !bobEther.Equal(dec("100.01")) {
		t.Fatalf("expected voter balance 100.01, got %s", bobEther)
	}

	// Pool is empty: alice voting for herself is rejected by the pool check.
	if _, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: "alice", Candidate: "alice"}); !errors.Is(err, domainerrors.ErrInsufficientPool) {
		t.Fatalf("expected insufficient pool, got %v", err)
	}
	// Repeat vote from a spent voter fails regardless of target.
	if _, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: "bob", Candidate: "alice"}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already-voted conflict, got %v", err)
	}
	if _, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: "ghost", Candidate: "alice"}); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected voter not found, got %v", err)
	}
	if _, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: "carol", Candidate: "bob"}); !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected candidate not found for non-candidate target, got %v", err)
	}
}

func TestVoteGatewayFailureAborts(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{}, 2)
	register(t, module, "alice", 1)
	register(t, module, "bob", 2)
	if _, err := module.Engine.Declare(ctx, commands.DeclareCommand{
		Username: "alice", RequiredStake: dec("0.01"), Pledge: dec("0.01"),
	}); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	module.Gateway.SetFail(errors.New("revert"))
	if _, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: "bob", Candidate: "alice"}); !errors.Is(err, domainerrors.ErrExternalLedger) {
		t.Fatalf("expected external ledger error, got %v", err)
	}
	module.Gateway.SetFail(nil)

	// The failed attempt left no trace; the same vote still goes through.
	if _, err := module.Engine.CastVote(ctx, commands.VoteCommand{Voter: "bob", Candidate: "alice"}); err != nil {
		t.Fatalf("vote after recovery failed: %v", err)
	}
}
