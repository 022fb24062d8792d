package commands

import (
	"context"
	"strings"

	application "agora/contexts/governance/election-engine/application"
	"agora/contexts/governance/election-engine/domain/entities"
	domainerrors "agora/contexts/governance/election-engine/domain/errors"
	"agora/internal/shared/events"
)

// RegisterCommand onboards a new voter. The address must be syntactically
// valid and belong to the external ledger's known-account set.
type RegisterCommand struct {
	Username string
	Password string
	Address  string
}

func (e *Engine) Register(ctx context.Context, cmd RegisterCommand) (entities.User, error) {
	logger := application.ResolveLogger(e.Logger)

	username := strings.TrimSpace(cmd.Username)
	password := strings.TrimSpace(cmd.Password)
	address := strings.TrimSpace(cmd.Address)
	if username == "" || password == "" || address == "" {
		return entities.User{}, domainerrors.ErrBlankField
	}
	if !e.Gateway.IsValidAddress(address) {
		return entities.User{}, domainerrors.ErrMalformedAddress
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.load(ctx)
	if err != nil {
		return entities.User{}, err
	}
	if _, idx := snapshot.FindUser(username); idx >= 0 {
		return entities.User{}, domainerrors.ErrUsernameTaken
	}

	known, err := e.Gateway.IsKnownAccount(ctx, address)
	if err != nil {
		return entities.User{}, domainerrors.External(err)
	}
	if !known {
		return entities.User{}, domainerrors.ErrUnknownAddress
	}
	if err := e.Gateway.RegisterVoter(ctx, address); err != nil {
		return entities.User{}, domainerrors.External(err)
	}
	balance, err := e.Gateway.GetBalance(ctx, address)
	if err != nil {
		return entities.User{}, domainerrors.External(err)
	}

	user := entities.User{
		Username:     username,
		Password:     password,
		Role:         entities.RoleNormal,
		EtherBalance: balance,
		Address:      address,
	}
	snapshot.Users = append(snapshot.Users, user)
	if err := e.store(ctx, snapshot); err != nil {
		return entities.User{}, err
	}

	logger.Info("voter registered",
		"event", "election_voter_registered",
		"module", "governance/election-engine",
		"layer", "application",
		"username", username,
		"address", address,
	)
	e.publish(ctx, events.New(events.TypeNewUserRegistered, "user", username, user))
	return user, nil
}

// Login is an exact-match credential lookup. Credentials are stored and
// compared in plaintext.
func (e *Engine) Login(ctx context.Context, username string, password string) (entities.User, error) {
	snapshot, err := e.load(ctx)
	if err != nil {
		return entities.User{}, err
	}
	for _, user := range snapshot.Users {
		if user.Username == username && user.Password == password {
			return user, nil
		}
	}
	return entities.User{}, domainerrors.ErrInvalidCredentials
}
