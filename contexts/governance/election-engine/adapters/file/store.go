package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"agora/contexts/governance/election-engine/domain/entities"
)

const (
	ledgerFile  = "db.json"
	winnersFile = "winnersDB.json"
)

// Store persists the ledger and winners archive as two indented JSON
// documents under one directory. Writes go to a temp file in the same
// directory and land via rename, so a crash mid-write never leaves a partial
// snapshot behind. Amounts serialize as exact decimal strings.
type Store struct {
	mu          sync.Mutex
	ledgerPath  string
	winnersPath string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		ledgerPath:  filepath.Join(dir, ledgerFile),
		winnersPath: filepath.Join(dir, winnersFile),
	}, nil
}

func (s *Store) Load(_ context.Context) (entities.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (entities.Snapshot, error) {
	raw, err := os.ReadFile(s.ledgerPath)
	if errors.Is(err, os.ErrNotExist) {
		return entities.EmptySnapshot(), nil
	}
	if err != nil {
		return entities.Snapshot{}, fmt.Errorf("read ledger snapshot: %w", err)
	}
	var snapshot entities.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return entities.Snapshot{}, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	if !snapshot.Stage.Valid() {
		snapshot.Stage = entities.StageRegistration
	}
	return snapshot, nil
}

func (s *Store) Store(_ context.Context, snapshot entities.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}
	return replaceFile(s.ledgerPath, raw)
}

func (s *Store) Append(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	winners, err := s.listLocked()
	if err != nil {
		return err
	}
	if slices.Contains(winners, username) {
		return nil
	}
	winners = append(winners, username)
	raw, err := json.MarshalIndent(winners, "", "  ")
	if err != nil {
		return fmt.Errorf("encode winners archive: %w", err)
	}
	return replaceFile(s.winnersPath, raw)
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Store) listLocked() ([]string, error) {
	raw, err := os.ReadFile(s.winnersPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read winners archive: %w", err)
	}
	var winners []string
	if err := json.Unmarshal(raw, &winners); err != nil {
		return nil, fmt.Errorf("decode winners archive: %w", err)
	}
	return winners, nil
}

// replaceFile is the atomic write: temp file in the target directory, then
// rename over the destination.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
