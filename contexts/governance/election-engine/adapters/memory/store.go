package memory

import (
	"context"
	"slices"
	"sync"

	"agora/contexts/governance/election-engine/domain/entities"
)

// Store keeps the ledger snapshot and winners archive in process memory.
// Used by tests and local runs; the file and postgres adapters are the
// durable backends.
type Store struct {
	mu       sync.RWMutex
	snapshot entities.Snapshot
	winners  []string
}

func NewStore(seed entities.Snapshot) *Store {
	if !seed.Stage.Valid() {
		seed.Stage = entities.StageRegistration
	}
	return &Store{snapshot: copySnapshot(seed)}
}

func (s *Store) Load(_ context.Context) (entities.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snapshot), nil
}

func (s *Store) Store(_ context.Context, snapshot entities.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = copySnapshot(snapshot)
	return nil
}

func (s *Store) Append(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.winners, username) {
		return nil
	}
	s.winners = append(s.winners, username)
	return nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.winners), nil
}

func copySnapshot(snapshot entities.Snapshot) entities.Snapshot {
	snapshot.Users = slices.Clone(snapshot.Users)
	return snapshot
}
