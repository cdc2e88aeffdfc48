package domain

import "time"

// Fingerprint is a content-derived hash of a unit's inputs.
type Fingerprint string

// CacheRecord is the persisted result of a unit's last successful build.
type CacheRecord struct {
	Path        string      `json:"path"`
	Fingerprint Fingerprint `json:"fingerprint"`
	Timestamp   time.Time   `json:"timestamp"`
}

// FingerprintInput is everything a unit's fingerprint is derived from.
type FingerprintInput struct {
	Kind Kind
	Name string
	// Signature is the action signature, empty for units without an action.
	Signature string
	// Files are the resolved input paths, sorted. Directories are walked.
	Files []string
	// Root is the directory paths in Files are hashed relative to.
	Root string
	// Ignores are base names skipped when walking directories in Files.
	// They are not part of the fingerprint.
	Ignores []string
	// Children are the children's fingerprints in insertion order.
	Children []Fingerprint
}
