package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// LocalSnapshotStore is the durable on-disk snapshot. Writes are
// synchronous and atomic (temp file + rename); this side is never
// debounced.
type LocalSnapshotStore struct {
	path   string
	logger *zap.Logger
}

func NewLocalSnapshotStore(path string, logger *zap.Logger) (*LocalSnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &LocalSnapshotStore{path: path, logger: logger}, nil
}

func (s *LocalSnapshotStore) Save(ps PersistedSession) error {
	data, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when none exists, the stored
// one is older than ttl, or it holds no cart lines. Snapshots that fail
// any check are deleted, not restored: there is nothing worth offering
// back to the customer.
func (s *LocalSnapshotStore) Load(ttl time.Duration) (*PersistedSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var ps PersistedSession
	if err := json.Unmarshal(data, &ps); err != nil {
		s.logger.Warn("corrupt session snapshot, discarding", zap.Error(err))
		return nil, s.Clear()
	}
	if ps.SchemaVersion != SchemaVersion {
		s.logger.Warn("snapshot schema mismatch, discarding",
			zap.Int("found", ps.SchemaVersion),
			zap.Int("want", SchemaVersion))
		return nil, s.Clear()
	}
	if ps.Stale(ttl, time.Now()) {
		s.logger.Info("stale session snapshot, discarding",
			zap.String("session_id", ps.SessionID),
			zap.Time("timestamp", ps.Timestamp))
		return nil, s.Clear()
	}
	if len(ps.Cart) == 0 {
		s.logger.Info("empty-cart snapshot, discarding",
			zap.String("session_id", ps.SessionID))
		return nil, s.Clear()
	}
	return &ps, nil
}

func (s *LocalSnapshotStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
