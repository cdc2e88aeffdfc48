package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes unit fingerprints with XXHash.
type Hasher struct {
	walker  *Walker
	ignores []string
}

// NewHasher creates a new Hasher. Directories named in ignores are skipped
// when walking directory inputs.
func NewHasher(walker *Walker, ignores ...string) *Hasher {
	return &Hasher{walker: walker, ignores: ignores}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeFingerprint hashes the unit identity, its input files and its
// children's fingerprints, in that order.
func (h *Hasher) ComputeFingerprint(in domain.FingerprintInput) (domain.Fingerprint, error) {
	hasher := xxhash.New()

	h.hashIdentity(in, hasher)

	ignores := h.ignores
	if len(in.Ignores) > 0 {
		ignores = append(slices.Clip(h.ignores), in.Ignores...)
	}

	for _, path := range in.Files {
		if err := h.hashPath(path, in.Root, ignores, hasher); err != nil {
			return "", err
		}
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	for _, child := range in.Children {
		_, _ = hasher.WriteString(string(child))
		_, _ = hasher.Write([]byte{0})
	}

	return domain.Fingerprint(fmt.Sprintf("%016x", hasher.Sum64())), nil
}

func (h *Hasher) hashIdentity(in domain.FingerprintInput, hasher *xxhash.Digest) {
	_, _ = hasher.WriteString(in.Kind.String())
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(in.Name)
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(in.Signature)
	_, _ = hasher.Write([]byte{0})
}

func (h *Hasher) hashPath(path, root string, ignores []string, mainHasher io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}

	if !info.IsDir() {
		return h.hashFile(path, root, mainHasher)
	}

	for filePath := range h.walker.WalkFiles(path, ignores) {
		if err := h.hashFile(filePath, root, mainHasher); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hasher) hashFile(path, root string, mainHasher io.Writer) error {
	_, _ = mainHasher.Write([]byte(relativeTo(root, path)))
	_, _ = mainHasher.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}

func relativeTo(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
