package output_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")

	// The detected profile depends on the environment; only check it is valid.
	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestColorProfileFor_NonTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	assert.False(t, output.IsTerminal(&buf))
	assert.Equal(t, termenv.Ascii, output.ColorProfileFor(&buf))

	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // test cleanup

	assert.False(t, output.IsTerminal(f))
	assert.Equal(t, termenv.Ascii, output.ColorProfileFor(f))
}

func TestNew(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	out := output.New(&buf)
	assert.Equal(t, termenv.Ascii, out.Profile)

	_, _ = out.WriteString(out.String("test").Foreground(out.Color("#FF0000")).String())
	assert.Equal(t, "test", buf.String())
}

func TestNewWithProfile_Nil(t *testing.T) {
	// Should default to stderr, we just check it doesn't panic
	out := output.NewWithProfile(nil, output.ColorProfile)
	assert.NotNil(t, out)
}
