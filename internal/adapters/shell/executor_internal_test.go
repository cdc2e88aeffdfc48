package shell

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnvironment(t *testing.T) {
	env := resolveEnvironment(
		[]string{"PATH=/usr/bin", "HOME=/home/ecow", "MALFORMED"},
		map[string]string{"HOME": "/tmp", "CC": "clang"},
	)
	slices.Sort(env)

	assert.Equal(t, []string{"CC=clang", "HOME=/tmp", "PATH=/usr/bin"}, env)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755)) //nolint:gosec // executable fixture
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("x"), 0o600))

	got, err := lookPath("tool", []string{"PATH=" + dir})
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = lookPath("data", []string{"PATH=" + dir})
	require.Error(t, err)

	_, err = lookPath("tool", []string{"HOME=/"})
	require.Error(t, err)
}
