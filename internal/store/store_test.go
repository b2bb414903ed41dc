package store

import (
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/geofix/internal/geo"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "geofix.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDiagnostics_FailureRoundTrip(t *testing.T) {
	repo := openTestStore(t).Diagnostics()

	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordFailure("q-1", errors.New("no receiver"), at))
	require.NoError(t, repo.RecordFailure("q-2", errors.New("stream reset"), at.Add(time.Minute)))

	got, err := repo.RecentFailures(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "q-2", got[0].QueryID)
	assert.Equal(t, "stream reset", got[0].Message)
	assert.Equal(t, "provider", got[0].Code)
	assert.Equal(t, at.Add(time.Minute), got[0].At())
	assert.Equal(t, "q-1", got[1].QueryID)
}

func TestDiagnostics_FixRoundTrip(t *testing.T) {
	repo := openTestStore(t).Diagnostics()

	sampleTime := time.Date(2026, 3, 14, 11, 59, 30, 0, time.UTC)
	resolvedAt := sampleTime.Add(12 * time.Second)
	sample := geo.Sample{Latitude: 48.8584, Longitude: 2.2945, AccuracyM: 42, Time: sampleTime}

	require.NoError(t, repo.RecordFix("q-1", sample, "fulfilled", resolvedAt))
	require.NoError(t, repo.RecordFix("q-2", geo.Sample{}, "rejected_out_of_time", resolvedAt.Add(time.Minute)))

	got, err := repo.RecentFixes(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "rejected_out_of_time", got[0].Outcome)
	assert.Zero(t, got[0].Latitude)

	assert.Equal(t, "q-1", got[1].QueryID)
	assert.Equal(t, 48.8584, got[1].Latitude)
	assert.Equal(t, 42.0, got[1].AccuracyM)
	assert.Equal(t, sampleTime, got[1].SampleTime())
	assert.Equal(t, resolvedAt, got[1].ResolvedAt())
}

func TestDiagnostics_LimitAndEmpty(t *testing.T) {
	repo := openTestStore(t).Diagnostics()

	failures, err := repo.RecentFailures(5)
	require.NoError(t, err)
	assert.Empty(t, failures)

	for i := range 5 {
		at := time.Date(2026, 3, 14, 12, i, 0, 0, time.UTC)
		require.NoError(t, repo.RecordFailure("q", errors.New("x"), at))
	}
	failures, err = repo.RecentFailures(3)
	require.NoError(t, err)
	assert.Len(t, failures, 3)
}

func TestCodeFor_NetworkErrors(t *testing.T) {
	opTimeout := &net.OpError{Op: "dial", Err: &timeoutErr{}}
	assert.Equal(t, "network_timeout", codeFor(opTimeout))
	assert.Equal(t, "network", codeFor(&net.OpError{Op: "read", Err: errors.New("reset")}))
	assert.Equal(t, "provider", codeFor(errors.New("anything else")))
}

// timeoutErr satisfies net.Error with Timeout() == true.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
