package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/batchclock/internal/metrics"
	"github.com/bft-labs/batchclock/pkg/batch"
	"github.com/bft-labs/batchclock/pkg/log"
	"github.com/bft-labs/batchclock/pkg/state"
)

type memRepo struct {
	mu    sync.Mutex
	state state.State
	saves int
	err   error
}

func (r *memRepo) Load(ctx context.Context) (state.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.err
}

func (r *memRepo) Save(ctx context.Context, s state.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
	r.saves++
	return nil
}

func (r *memRepo) snapshot() state.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func startWatcher(t *testing.T, cfg Config) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return cancel, done
}

func nextTransition(t *testing.T, ch <-chan batch.Transition) batch.Transition {
	t.Helper()
	select {
	case tr := <-ch:
		return tr
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transition")
		return batch.Transition{}
	}
}

func TestWatcher_EmitsTransitionsInOrder(t *testing.T) {
	start := batch.ID(100).OrderCollectionStartTime().Add(10 * time.Second)
	fc := clockwork.NewFakeClockAt(start)
	events := make(chan batch.Transition, 16)
	repo := &memRepo{}

	cancel, done := startWatcher(t, Config{
		Logger:     log.NewNoopLogger(),
		Clock:      fc,
		Repository: repo,
		Handler: HandlerFunc(func(ctx context.Context, tr batch.Transition) {
			events <- tr
		}),
	})

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	// 10s into batch 100: the solving window of batch 99 closes 230s later.
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(230 * time.Second)
	tr := nextTransition(t, events)
	assert.Equal(t, batch.SolvingClosed, tr.Event)
	assert.Equal(t, batch.ID(99), tr.Batch)

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(60 * time.Second)
	tr = nextTransition(t, events)
	assert.Equal(t, batch.CollectionStarted, tr.Event)
	assert.Equal(t, batch.ID(101), tr.Batch)
	tr = nextTransition(t, events)
	assert.Equal(t, batch.SolvingStarted, tr.Event)
	assert.Equal(t, batch.ID(100), tr.Batch)
	assert.True(t, tr.At.Equal(batch.ID(100).SolveStartTime()))

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	cancel()
	require.NoError(t, <-done)

	s := repo.snapshot()
	assert.Equal(t, batch.ID(101), s.LastCollecting)
	assert.Equal(t, "solving_started", s.LastEvent)
}

func TestWatcher_CatchesUpAfterClockJump(t *testing.T) {
	start := batch.ID(100).OrderCollectionStartTime().Add(250 * time.Second)
	fc := clockwork.NewFakeClockAt(start)
	events := make(chan batch.Transition, 64)

	cancel, done := startWatcher(t, Config{
		Logger: log.NewNoopLogger(),
		Clock:  fc,
		Handler: HandlerFunc(func(ctx context.Context, tr batch.Transition) {
			events <- tr
		}),
	})
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	// Jump across two full slots at once.
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(2 * batch.Duration)

	want := []batch.Transition{
		{Event: batch.CollectionStarted, Batch: 101},
		{Event: batch.SolvingStarted, Batch: 100},
		{Event: batch.SolvingClosed, Batch: 100},
		{Event: batch.CollectionStarted, Batch: 102},
		{Event: batch.SolvingStarted, Batch: 101},
		{Event: batch.SolvingClosed, Batch: 101},
	}
	for i, w := range want {
		tr := nextTransition(t, events)
		assert.Equal(t, w.Event, tr.Event, "transition %d", i)
		assert.Equal(t, w.Batch, tr.Batch, "transition %d", i)
	}
}

func TestWatcher_ResumesFromPersistedState(t *testing.T) {
	start := batch.ID(100).OrderCollectionStartTime()
	repo := &memRepo{}
	repo.state.Resume(95, start.Add(-5*batch.Duration))
	fc := clockwork.NewFakeClockAt(start)

	cancel, done := startWatcher(t, Config{
		Logger:     log.NewNoopLogger(),
		Clock:      fc,
		Repository: repo,
	})

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	cancel()
	require.NoError(t, <-done)

	s := repo.snapshot()
	assert.Equal(t, batch.ID(100), s.LastCollecting)
	assert.Equal(t, state.EventResumed, s.LastEvent)
	assert.True(t, s.LastEventAt.Equal(start))
}

func TestWatcher_ReconcilesPersistedState(t *testing.T) {
	tests := []struct {
		name            string
		persisted       batch.ID
		wantMissed      float64
		wantRegressions float64
	}{
		{name: "previous batch", persisted: 99},
		{name: "missed batches", persisted: 95, wantMissed: 4},
		{name: "persisted ahead of clock", persisted: 105, wantRegressions: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := batch.ID(100).OrderCollectionStartTime().Add(30 * time.Second)
			repo := &memRepo{}
			repo.state.Resume(tt.persisted, start.Add(-time.Hour))
			fc := clockwork.NewFakeClockAt(start)

			missedBefore := testutil.ToFloat64(metrics.MissedBatches)
			regressionsBefore := testutil.ToFloat64(metrics.ClockRegressions)

			cancel, done := startWatcher(t, Config{
				Logger:     log.NewNoopLogger(),
				Clock:      fc,
				Repository: repo,
			})

			ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			require.NoError(t, fc.BlockUntilContext(ctx, 1))
			cancel()
			require.NoError(t, <-done)

			assert.Equal(t, tt.wantMissed, testutil.ToFloat64(metrics.MissedBatches)-missedBefore)
			assert.Equal(t, tt.wantRegressions, testutil.ToFloat64(metrics.ClockRegressions)-regressionsBefore)
			assert.Equal(t, float64(100), testutil.ToFloat64(metrics.CollectingBatch))
			assert.Equal(t, float64(99), testutil.ToFloat64(metrics.SolvingBatch))
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SolvingOpen))

			// The persisted batch follows the clock, also after a regression.
			assert.Equal(t, batch.ID(100), repo.snapshot().LastCollecting)
		})
	}
}

func TestWatcher_Errors(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	w, err := New(Config{
		Logger: log.NewNoopLogger(),
		Clock:  clockwork.NewFakeClockAt(batch.Epoch.Add(-time.Second)),
	})
	require.NoError(t, err)
	require.ErrorIs(t, w.Run(context.Background()), batch.ErrBeforeEpoch)

	loadErr := errors.New("disk gone")
	w, err = New(Config{
		Logger:     log.NewNoopLogger(),
		Clock:      clockwork.NewFakeClockAt(batch.Epoch),
		Repository: &memRepo{err: loadErr},
	})
	require.NoError(t, err)
	require.ErrorIs(t, w.Run(context.Background()), loadErr)
}

func TestGap(t *testing.T) {
	tests := []struct {
		name          string
		persisted     batch.ID
		current       batch.ID
		wantMissed    uint64
		wantRegressed bool
	}{
		{name: "same batch", persisted: 10, current: 10},
		{name: "next batch", persisted: 10, current: 11},
		{name: "missed three", persisted: 10, current: 14, wantMissed: 3},
		{name: "clock went back", persisted: 14, current: 10, wantRegressed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missed, regressed := Gap(tt.persisted, tt.current)
			assert.Equal(t, tt.wantMissed, missed)
			assert.Equal(t, tt.wantRegressed, regressed)
		})
	}
}
