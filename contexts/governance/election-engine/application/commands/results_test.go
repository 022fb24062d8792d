package commands_test

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
)

// fixedRand always draws the same index.
type fixedRand struct{ n int }

func (r fixedRand) Intn(int) int { return r.n }

func candidate(username string, account int, votes int, measure string, pledged string) entities.User {
	return entities.User{
		Username:      username,
		Password:      "secret",
		Role:          entities.RoleNormal,
		Candidacy:     true,
		VotesReceived: votes,
		Measure:       dec(measure),
		PledgedEther:  dec(pledged),
		Address:       addr(account),
	}
}

func admin(account int) entities.User {
	return entities.User{
		Username: "overseer",
		Password: "secret",
		Role:     entities.RoleAdmin,
		Address:  addr(account),
	}
}

func TestComputeResultsVoteLeader(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageResults,
		Users: []entities.User{
			candidate("alice", 1, 5, "0.01", "0.02"),
			candidate("bob", 2, 3, "0.09", "0.10"),
		},
	}, 0)

	outcome, err := module.Engine.ComputeResults(ctx)
	if err != nil {
		t.Fatalf("compute results failed: %v", err)
	}
	if outcome.Winner.Username != "alice" {
		t.Fatalf("expected vote leader alice, got %s", outcome.Winner.Username)
	}
	if !outcome.RemainingPool.Equal(dec("0.12")) {
		t.Fatalf("expected remaining pool 0.12, got %s", outcome.RemainingPool)
	}
}

func TestComputeResultsMeasureTieBreak(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageResults,
		Users: []entities.User{
			candidate("alice", 1, 5, "0.01", "0.02"),
			candidate("bob", 2, 5, "0.03", "0.02"),
		},
	}, 0)

	outcome, err := module.Engine.ComputeResults(ctx)
	if err != nil {
		t.Fatalf("compute results failed: %v", err)
	}
	if outcome.Winner.Username != "bob" {
		t.Fatalf("expected measure tie-break winner bob, got %s", outcome.Winner.Username)
	}
}

func TestComputeResultsRandomTieBreak(t *testing.T) {
	ctx := context.Background()
	seed := entities.Snapshot{
		Stage: entities.StageResults,
		Users: []entities.User{
			candidate("alice", 1, 5, "0.02", "0.02"),
			candidate("bob", 2, 5, "0.02", "0.02"),
		},
	}

	for draw, want := range map[int]string{0: "alice", 1: "bob"} {
		module := seedModule(t, seed, 0)
		module.Engine.Rand = fixedRand{n: draw}
		outcome, err := module.Engine.ComputeResults(ctx)
		if err != nil {
			t.Fatalf("compute results failed: %v", err)
		}
		if outcome.Winner.Username != want {
			t.Fatalf("draw %d: expected %s, got %s", draw, want, outcome.Winner.Username)
		}
	}
}

func TestComputeResultsArchivesOnce(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageResults,
		Users: []entities.User{candidate("alice", 1, 5, "0.01", "0.02")},
	}, 0)

	for i := 0; i < 3; i++ {
		if _, err := module.Engine.ComputeResults(ctx); err != nil {
			t.Fatalf("compute results #%d failed: %v", i+1, err)
		}
	}
	winners, err := module.Queries.AllWinners(ctx)
	if err != nil {
		t.Fatalf("winners failed: %v", err)
	}
	if len(winners) != 1 || winners[0] != "alice" {
		t.Fatalf("expected single archived winner alice, got %v", winners)
	}
}

func TestComputeResultsNoCandidates(t *testing.T) {
	module := seedModule(t, entities.Snapshot{Stage: entities.StageResults}, 0)
	if _, err := module.Engine.ComputeResults(context.Background()); !errors.Is(err, domainerrors.ErrNoCandidates) {
		t.Fatalf("expected no-candidates error, got %v", err)
	}
}

func TestAdvanceStageFullLifecycle(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageRegistration,
		Users: []entities.User{
			admin(9),
			candidate("alice", 1, 0, "0.01", "0.02"),
			candidate("bob", 2, 0, "0.01", "0.02"),
		},
	}, 0)

	for _, want := range []entities.Stage{entities.StageCandidacy, entities.StageVoting, entities.StageResults} {
		stage, err := module.Engine.AdvanceStage(ctx, "overseer")
		if err != nil {
			t.Fatalf("advance to %s failed: %v", want, err)
		}
		if stage != want {
			t.Fatalf("expected stage %s, got %s", want, stage)
		}
	}
	if _, err := module.Engine.AdvanceStage(ctx, "overseer"); !errors.Is(err, domainerrors.ErrStageExhausted) {
		t.Fatalf("expected exhausted lifecycle, got %v", err)
	}
}

func TestAdvanceStageSingleCandidateShortcut(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageCandidacy,
		Users: []entities.User{
			admin(9),
			candidate("alice", 1, 0, "0.01", "0.02"),
		},
	}, 0)

	stage, err := module.Engine.AdvanceStage(ctx, "overseer")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if stage != entities.StageResults {
		t.Fatalf("expected shortcut to results with a single candidate, got %s", stage)
	}
}

func TestAdvanceStageAdminOnly(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageRegistration,
		Users: []entities.User{admin(9), candidate("alice", 1, 0, "0.01", "0.02")},
	}, 0)

	if _, err := module.Engine.AdvanceStage(ctx, "alice"); !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("expected admin-only for normal user, got %v", err)
	}
	if _, err := module.Engine.AdvanceStage(ctx, "ghost"); !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("expected admin-only for unknown actor, got %v", err)
	}
}

func TestResetKeepsAdminsAndArchive(t *testing.T) {
	ctx := context.Background()
	adminUser := admin(9)
	adminUser.Candidacy = true
	module := seedModule(t, entities.Snapshot{
		Stage:                entities.StageResults,
		RemainderTransferred: true,
		Users: []entities.User{
			adminUser,
			candidate("alice", 1, 5, "0.01", "0.02"),
			candidate("bob", 2, 3, "0.01", "0.02"),
		},
	}, 0)
	if _, err := module.Engine.ComputeResults(ctx); err != nil {
		t.Fatalf("compute results failed: %v", err)
	}

	if err := module.Engine.Reset(ctx, "alice"); !errors.Is(err, domainerrors.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := module.Engine.Reset(ctx, "overseer"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	snapshot, err := module.Store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(snapshot.Users) != 1 || !snapshot.Users[0].IsAdmin() {
		t.Fatalf("expected only the admin to survive, got %+v", snapshot.Users)
	}
	if snapshot.Users[0].Candidacy {
		t.Fatalf("expected surviving admin candidacy cleared")
	}
	if snapshot.Stage != entities.StageRegistration {
		t.Fatalf("expected stage back to registration, got %s", snapshot.Stage)
	}
	if snapshot.RemainderTransferred {
		t.Fatalf("expected remainder latch reopened")
	}
	winners, err := module.Queries.AllWinners(ctx)
	if err != nil {
		t.Fatalf("winners failed: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("expected the archive to survive reset, got %v", winners)
	}
}

func TestTransferRemainderAtMostOnce(t *testing.T) {
	ctx := context.Background()
	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageResults,
		Users: []entities.User{
			admin(9),
			candidate("alice", 1, 2, "0.01", "0.03"),
			candidate("bob", 2, 1, "0.01", "0.02"),
		},
	}, 0)

	total, err := module.Engine.TransferRemainder(ctx, "overseer")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if !total.Equal(dec("0.05")) {
		t.Fatalf("expected transferred total 0.05, got %s", total)
	}
	adminEther, err := module.Queries.UserEther(ctx, "overseer")
	if err != nil {
		t.Fatalf("user ether failed: %v", err)
	}
	if !adminEther.Equal(dec("0.05")) {
		t.Fatalf("expected admin credited 0.05, got %s", adminEther)
	}

	if _, err := module.Engine.TransferRemainder(ctx, "overseer"); !errors.Is(err, domainerrors.ErrAlreadyReconciled) {
		t.Fatalf("expected already-reconciled conflict, got %v", err)
	}
}

func TestTransferRemainderGuards(t *testing.T) {
	ctx := context.Background()

	module := seedModule(t, entities.Snapshot{
		Stage: entities.StageVoting,
		Users: []entities.User{admin(9), candidate("alice", 1, 0, "0.01", "0.02")},
	}, 0)
	if _, err := module.Engine.TransferRemainder(ctx, "overseer"); !errors.Is(err, domainerrors.ErrStageClosed) {
		t.Fatalf("expected stage-closed outside results, got %v", err)
	}
	if _, err := module.Engine.TransferRemainder(ctx, "alice"); !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("expected admin-only, got %v", err)
	}

	module = seedModule(t, entities.Snapshot{
		Stage: entities.StageResults,
		Users: []entities.User{admin(9), candidate("alice", 1, 0, "0.01", "0.02")},
	}, 0)
	module.Gateway.SetFail(errors.New("revert"))
	if _, err := module.Engine.TransferRemainder(ctx, "overseer"); !errors.Is(err, domainerrors.ErrExternalLedger) {
		t.Fatalf("expected external ledger error, got %v", err)
	}
	snapshot, err := module.Store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snapshot.RemainderTransferred {
		t.Fatalf("expected latch untouched after gateway failure")
	}
}
