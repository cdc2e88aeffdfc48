// Package cas stores the fingerprint of each unit's last successful build.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore using a file-per-unit strategy.
// Each record lives at <cacheDir>/records/<sha256(path)>.json.
type Store struct {
	locks sync.Map // record filename -> *sync.Mutex
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the record for the unit path. It returns nil, nil when no record exists.
func (s *Store) Get(cacheDir, path string) (*domain.CacheRecord, error) {
	filename := s.getFilename(cacheDir, path)
	unlock := s.lock(filename)
	defer unlock()

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheRead.Error()), "path", path)
	}

	var record domain.CacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheCorrupt.Error()), "path", path)
	}
	if record.Path != path {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrCacheCorrupt, "record belongs to another unit"), "path", path), "recorded_path", record.Path)
	}

	return &record, nil
}

// Put stores the record, replacing any previous one for the same unit path.
// The record is written to a temporary file and renamed into place.
func (s *Store) Put(cacheDir string, record domain.CacheRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWrite.Error())
	}

	filename := s.getFilename(cacheDir, record.Path)
	unlock := s.lock(filename)
	defer unlock()

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWrite.Error()), "path", record.Path)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWrite.Error()), "path", record.Path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWrite.Error()), "path", record.Path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWrite.Error()), "path", record.Path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWrite.Error()), "path", record.Path)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWrite.Error()), "path", record.Path)
	}

	return nil
}

// Delete removes the record for the unit path. A missing record is not an error.
func (s *Store) Delete(cacheDir, path string) error {
	filename := s.getFilename(cacheDir, path)
	unlock := s.lock(filename)
	defer unlock()

	if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDelete.Error()), "path", path)
	}
	return nil
}

func (s *Store) lock(filename string) func() {
	v, _ := s.locks.LoadOrStore(filename, &sync.Mutex{})
	mu, _ := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Store) getFilename(cacheDir, path string) string {
	hash := sha256.Sum256([]byte(path))
	hexHash := hex.EncodeToString(hash[:])
	return filepath.Join(domain.RecordsPath(cacheDir), hexHash+".json")
}
