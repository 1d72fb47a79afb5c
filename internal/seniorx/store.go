package seniorx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

// SnapshotStore persists the embedded-session snapshot across restarts.
// A corrupt or unreadable snapshot is reported as absent, never as an error:
// losing the snapshot only costs a new handshake.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, bool, error)
	Save(ctx context.Context, snap domain.Snapshot) error
	Clear(ctx context.Context) error
}

// FileStore keeps the snapshot in a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed snapshot store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("snapshot path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the snapshot. A missing, unreadable, or corrupt file reports
// absent and removes the corrupt file so it is not parsed again.
func (s *FileStore) Load(_ context.Context) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Snapshot{}, false, nil
	}

	var snap domain.Snapshot
	if unmarshalErr := json.Unmarshal(data, &snap); unmarshalErr != nil || !snap.Valid() {
		_ = os.Remove(s.path)
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Save writes the snapshot atomically via a temp file rename.
func (s *FileStore) Save(_ context.Context, snap domain.Snapshot) error {
	if !snap.Valid() {
		return errors.New("refusing to save invalid snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if writeErr := os.WriteFile(tmp, data, 0o600); writeErr != nil {
		return fmt.Errorf("write snapshot: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, s.path); renameErr != nil {
		return fmt.Errorf("commit snapshot: %w", renameErr)
	}
	return nil
}

// Clear removes the snapshot. Clearing an absent snapshot is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

// MemStore is an in-memory SnapshotStore for tests and ephemeral deployments.
type MemStore struct {
	mu   sync.Mutex
	snap domain.Snapshot
	set  bool
}

// NewMemStore creates an empty in-memory snapshot store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load(_ context.Context) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set || !s.snap.Valid() {
		return domain.Snapshot{}, false, nil
	}
	return s.snap, true, nil
}

func (s *MemStore) Save(_ context.Context, snap domain.Snapshot) error {
	if !snap.Valid() {
		return errors.New("refusing to save invalid snapshot")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.set = true
	return nil
}

func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = domain.Snapshot{}
	s.set = false
	return nil
}
