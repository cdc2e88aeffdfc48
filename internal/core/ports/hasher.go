package ports

import "go.trai.ch/ecow/internal/core/domain"

// Hasher computes unit fingerprints.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeFingerprint hashes the unit identity, the content of its resolved input
	// files and its children's fingerprints, in that order.
	ComputeFingerprint(in domain.FingerprintInput) (domain.Fingerprint, error)
}
