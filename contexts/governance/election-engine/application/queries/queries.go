package queries

import (
	"context"

	"github.com/shopspring/decimal"

	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/contexts/governance/election-engine/ports"
)

var centiStake = decimal.New(1, -2)

// Queries are the read side of the engine. Each method reads one consistent
// snapshot; clients that missed broadcasts pull these on (re)connect.
type Queries struct {
	Ledger  ports.LedgerRepository
	Winners ports.WinnersArchive
	Gateway ports.LedgerGateway
}

func (q Queries) snapshot(ctx context.Context) (entities.Snapshot, error) {
	snapshot, err := q.Ledger.Load(ctx)
	if err != nil {
		return entities.Snapshot{}, domainerrors.Persistence(err)
	}
	return snapshot, nil
}

// Users lists the normal (non-admin) records.
func (q Queries) Users(ctx context.Context) ([]entities.User, error) {
	snapshot, err := q.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var users []entities.User
	for _, user := range snapshot.Users {
		if user.Role == entities.RoleNormal {
			users = append(users, user)
		}
	}
	return users, nil
}

func (q Queries) UserCount(ctx context.Context) (int, error) {
	users, err := q.Users(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// TotalVoters counts every record, admins included; it feeds the minimum
// stake formula.
func (q Queries) TotalVoters(ctx context.Context) (int, error) {
	snapshot, err := q.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(snapshot.Users), nil
}

func (q Queries) Candidates(ctx context.Context) ([]entities.User, error) {
	snapshot, err := q.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Candidates(), nil
}

func (q Queries) NumberOfCandidates(ctx context.Context) (int, error) {
	candidates, err := q.Candidates(ctx)
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

func (q Queries) TotalPledged(ctx context.Context) (decimal.Decimal, error) {
	candidates, err := q.Candidates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, candidate := range candidates {
		total = total.Add(candidate.PledgedEther)
	}
	return total, nil
}

// RequiredStake is the minimum candidate stake: 0.01 per registered voter,
// less one unit so the demo works with a single voter.
func (q Queries) RequiredStake(ctx context.Context) (decimal.Decimal, error) {
	voters, err := q.TotalVoters(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return centiStake.Mul(decimal.NewFromInt(int64(voters))).Sub(centiStake), nil
}

func (q Queries) AllWinners(ctx context.Context) ([]string, error) {
	winners, err := q.Winners.List(ctx)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return winners, nil
}

// Balance reads the live external-ledger balance for an address.
func (q Queries) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	if !q.Gateway.IsValidAddress(address) {
		return decimal.Zero, domainerrors.ErrMalformedAddress
	}
	balance, err := q.Gateway.GetBalance(ctx, address)
	if err != nil {
		return decimal.Zero, domainerrors.External(err)
	}
	return balance, nil
}

// UserEther reads the cached balance of a ledger record.
func (q Queries) UserEther(ctx context.Context, username string) (decimal.Decimal, error) {
	snapshot, err := q.snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	user, idx := snapshot.FindUser(username)
	if idx < 0 {
		return decimal.Zero, domainerrors.ErrUserNotFound
	}
	return user.EtherBalance, nil
}

func (q Queries) CurrentStage(ctx context.Context) (entities.Stage, error) {
	snapshot, err := q.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if !snapshot.Stage.Valid() {
		return entities.StageRegistration, nil
	}
	return snapshot.Stage, nil
}
