package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ecow/internal/adapters/telemetry"
)

type flushRecorder struct {
	mu      sync.Mutex
	flushes []string
}

func (r *flushRecorder) record(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes = append(r.flushes, string(data))
}

func (r *flushRecorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.flushes...)
}

func TestBatchProcessor_SizeLimit(t *testing.T) {
	rec := &flushRecorder{}
	bp := telemetry.NewBatchProcessor(4, time.Hour, rec.record)

	_, err := bp.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Empty(t, rec.get())

	_, err = bp.Write([]byte("cdef"))
	require.NoError(t, err)
	assert.Equal(t, []string{"abcdef"}, rec.get())

	require.NoError(t, bp.Close())
}

func TestBatchProcessor_TimeLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &flushRecorder{}
		bp := telemetry.NewBatchProcessor(1024, 50*time.Millisecond, rec.record)
		defer bp.Close() //nolint:errcheck // test cleanup

		_, err := bp.Write([]byte("line\n"))
		require.NoError(t, err)

		time.Sleep(40 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, rec.get())

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"line\n"}, rec.get())
	})
}

func TestBatchProcessor_Close(t *testing.T) {
	rec := &flushRecorder{}
	bp := telemetry.NewBatchProcessor(0, 0, rec.record)

	_, err := bp.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())
	assert.Equal(t, []string{"tail"}, rec.get())

	_, err = bp.Write([]byte("late"))
	require.ErrorIs(t, err, telemetry.ErrBatcherClosed)

	require.NoError(t, bp.Close(), "closing twice is a no-op")
	bp.Flush()
	assert.Equal(t, []string{"tail"}, rec.get())
}
