package ports

import "go.trai.ch/ecow/internal/core/domain"

// CacheStore persists the fingerprint of each unit's last successful build.
// Operations on the same unit path are serialized; different paths may proceed concurrently.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get retrieves the record for the unit path.
	// Returns nil, nil if there is none.
	Get(cacheDir, path string) (*domain.CacheRecord, error)

	// Put stores the record, replacing any previous one for the same path.
	Put(cacheDir string, record domain.CacheRecord) error

	// Delete removes the record for the unit path. A missing record is not an error.
	Delete(cacheDir, path string) error
}
