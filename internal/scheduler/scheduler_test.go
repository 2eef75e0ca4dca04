package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweeper struct {
	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakeSweeper) DeleteRecommendationsOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, f.err
}

func (f *fakeSweeper) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.cutoffs))
	copy(out, f.cutoffs)
	return out
}

func TestRunSweep_CutoffHonorsRetention(t *testing.T) {
	sweeper := &fakeSweeper{deleted: 3}
	s := New(sweeper, 30*24*time.Hour, 6, zap.NewNop())

	before := time.Now()
	s.runSweep(context.Background())

	calls := sweeper.calls()
	require.Len(t, calls, 1)

	expected := before.Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, calls[0], time.Minute)
}

func TestRunSweep_ErrorIsSwallowed(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	s := New(sweeper, 24*time.Hour, 6, zap.NewNop())

	// A failed sweep must not panic or stop the scheduler.
	s.runSweep(context.Background())
	assert.Len(t, sweeper.calls(), 1)
}

func TestStart_RunsImmediateSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, 24*time.Hour, 6, zap.NewNop())
	defer s.Stop()

	require.NoError(t, s.Start(context.Background()))

	// Startup kicks off one sweep without waiting for the first tick.
	assert.Eventually(t, func() bool {
		return len(sweeper.calls()) >= 1
	}, time.Second, 10*time.Millisecond)
}
