package domain_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/internal/core/domain"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Kind
		wantErr bool
	}{
		{in: "tool", want: domain.KindTool},
		{in: "Box", want: domain.KindBox},
		{in: " box ", want: domain.KindBox},
		{in: "library", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseKind(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_Text(t *testing.T) {
	var k domain.Kind
	require.NoError(t, k.UnmarshalText([]byte("tool")))
	assert.Equal(t, domain.KindTool, k)

	text, err := domain.KindBox.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "box", string(text))

	assert.Equal(t, "unknown", domain.Kind(0).String())
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "up-to-date", domain.StatusUpToDate.String())
	assert.Equal(t, "unknown", domain.Status(200).String())

	assert.False(t, domain.StatusUnbuilt.Terminal())
	assert.False(t, domain.StatusBuilding.Terminal())
	assert.True(t, domain.StatusCancelled.Terminal())

	assert.True(t, domain.StatusBuilt.Succeeded())
	assert.True(t, domain.StatusUpToDate.Succeeded())
	assert.False(t, domain.StatusFailed.Succeeded())
	assert.False(t, domain.StatusCancelled.Succeeded())
}

func TestReport(t *testing.T) {
	r := &domain.Report{
		Outcome: domain.OutcomeFailed,
		Units: []domain.UnitResult{
			{Path: "poc/poc", Status: domain.StatusFailed, Ran: true},
			{Path: "poc/lib", Status: domain.StatusBuilt, Ran: true},
			{Path: "poc", Status: domain.StatusFailed},
		},
	}

	assert.Equal(t, 2, r.ActionsRun())
	assert.Equal(t, 2, r.Count(domain.StatusFailed))
	assert.ErrorIs(t, r.Err(), domain.ErrBuildFailed)

	res, ok := r.Result("poc/lib")
	require.True(t, ok)
	assert.Equal(t, domain.StatusBuilt, res.Status)

	_, ok = r.Result("missing")
	assert.False(t, ok)

	r.Outcome = domain.OutcomeCancelled
	assert.ErrorIs(t, r.Err(), domain.ErrBuildCancelled)

	r.Outcome = domain.OutcomeSucceeded
	assert.NoError(t, r.Err())
}

func TestOptions(t *testing.T) {
	opts := domain.DefaultOptions()
	assert.Equal(t, domain.DefaultCacheDirName, opts.CacheDir)
	assert.Equal(t, runtime.NumCPU(), opts.Parallelism())
	assert.False(t, opts.FailFast)

	opts.Concurrency = 0
	assert.Equal(t, runtime.NumCPU(), opts.Parallelism())
	opts.Concurrency = 3
	assert.Equal(t, 3, opts.Parallelism())

	assert.Equal(t, filepath.Join("/work", ".ecow"), opts.ResolveCacheDir("/work"))
	opts.CacheDir = "/var/cache/ecow"
	assert.Equal(t, "/var/cache/ecow", opts.ResolveCacheDir("/work"))
	opts.CacheDir = ""
	assert.Equal(t, filepath.Join("/work", ".ecow"), opts.ResolveCacheDir("/work"))

	assert.Equal(t, filepath.Join("/work/.ecow", "records"), domain.RecordsPath("/work/.ecow"))
}
