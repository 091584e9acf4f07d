// Package cache persists the raw closures payload and the derived closure
// records as flat JSON files. Staleness is judged from file modification
// time, so the cache survives process restarts, and all writes go through a
// temp-file-plus-rename so concurrent readers never observe a partial file.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/road-closures-service/internal/domain"
)

// ErrNotFound reports that a cache file is absent or unusable. Zero-byte and
// unparsable files are treated as absent.
var ErrNotFound = errors.New("cache entry not found")

// PayloadStore persists the raw upstream payload verbatim.
type PayloadStore struct {
	path   string
	maxAge time.Duration
	logger *slog.Logger
}

// NewPayloadStore creates a payload store at path with the given maximum age.
func NewPayloadStore(path string, maxAge time.Duration, logger *slog.Logger) *PayloadStore {
	return &PayloadStore{path: path, maxAge: maxAge, logger: logger}
}

// IsStale reports whether a fresh payload should be fetched: the file is
// missing, zero bytes (removed on detection), or older than the maximum age
// relative to now.
func (s *PayloadStore) IsStale(now time.Time) bool {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		s.logger.Warn("stat payload cache failed", "path", s.path, "error", err)
		return true
	}

	if info.Size() == 0 {
		// A crashed write can leave an empty file behind. Treat it as absent.
		s.logger.Warn("removing zero-byte payload cache", "path", s.path)
		if err := os.Remove(s.path); err != nil {
			s.logger.Warn("remove zero-byte payload cache failed", "path", s.path, "error", err)
		}
		return true
	}

	return info.ModTime().Before(now.Add(-s.maxAge))
}

// Load returns the last stored payload bytes, or ErrNotFound when the file
// is absent or empty.
func (s *PayloadStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read payload cache: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}

// Store overwrites the cached payload atomically.
func (s *PayloadStore) Store(payload []byte) error {
	if err := writeAtomic(s.path, payload); err != nil {
		return fmt.Errorf("store payload cache: %w", err)
	}
	return nil
}

// RecordStore persists the derived closure records. It carries no TTL of its
// own; its validity is delegated to the payload store's freshness decision.
type RecordStore struct {
	path string
}

// NewRecordStore creates a record store at path.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Load returns the cached records, or ErrNotFound when the file is absent,
// empty, or does not parse.
func (s *RecordStore) Load() ([]domain.ClosureRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record cache: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	var records []domain.ClosureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, ErrNotFound
	}
	return records, nil
}

// Store overwrites the cached records atomically.
func (s *RecordStore) Store(records []domain.ClosureRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("store record cache: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place, so a concurrent reader sees either the old or the new file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
