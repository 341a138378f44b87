// Package watch follows the batch phase state machine in real time.
package watch

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/bft-labs/batchclock/internal/metrics"
	"github.com/bft-labs/batchclock/pkg/batch"
	"github.com/bft-labs/batchclock/pkg/log"
	"github.com/bft-labs/batchclock/pkg/state"
)

// Handler receives every phase transition in time order.
type Handler interface {
	OnTransition(ctx context.Context, tr batch.Transition)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, tr batch.Transition)

// OnTransition calls f.
func (f HandlerFunc) OnTransition(ctx context.Context, tr batch.Transition) {
	f(ctx, tr)
}

type Config struct {
	Logger log.Logger

	// Optional configuration.
	Clock      clockwork.Clock
	Repository state.Repository
	Handler    Handler
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Watcher sleeps until each phase transition and reports it.
type Watcher struct {
	cfg   Config
	clock *batch.Clock
	state state.State
}

// New creates a Watcher.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Watcher{cfg: cfg, clock: batch.NewClock(cfg.Clock)}, nil
}

// Run blocks until ctx is cancelled. It fails only if the clock reads before
// the epoch or the persisted state cannot be loaded.
func (w *Watcher) Run(ctx context.Context) error {
	snap, err := w.clock.Snapshot()
	if err != nil {
		return err
	}
	if err := w.resume(ctx, snap); err != nil {
		return err
	}

	last := snap.At
	for {
		wait := snap.Next.Sub(w.clock.Time())
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			w.cfg.Logger.Info("watcher stopped", log.Batch("collecting", snap.Collecting))
			return nil
		case <-w.cfg.Clock.After(wait):
		}

		now := w.clock.Time()
		trs, err := batch.Transitions(last, now)
		if err != nil {
			return err
		}
		for _, tr := range trs {
			w.handle(ctx, tr)
		}
		if len(trs) > 0 {
			w.save(ctx)
		}

		last = now
		if snap, err = batch.SnapshotAt(now); err != nil {
			return err
		}
	}
}

// resume reconciles the persisted state with the current snapshot.
func (w *Watcher) resume(ctx context.Context, snap batch.Snapshot) error {
	if w.cfg.Repository != nil {
		prev, err := w.cfg.Repository.Load(ctx)
		if err != nil {
			return err
		}
		if !prev.IsEmpty() {
			w.reconcile(prev, snap.Collecting)
		}
	}

	w.state.Resume(snap.Collecting, snap.At)
	w.save(ctx)

	metrics.CollectingBatch.Set(float64(snap.Collecting))
	if snap.HasSolving {
		metrics.SolvingBatch.Set(float64(snap.Solving))
	}
	metrics.SolvingOpen.Set(boolGauge(snap.SolvingOpen))

	fields := []log.Field{
		log.Batch("collecting", snap.Collecting),
		log.Time("next_transition", snap.Next),
	}
	if snap.HasSolving {
		fields = append(fields, log.Batch("solving", snap.Solving), log.Bool("solving_open", snap.SolvingOpen))
	}
	w.cfg.Logger.Info("watcher started", fields...)
	return nil
}

func (w *Watcher) reconcile(prev state.State, cur batch.ID) {
	missed, regressed := Gap(prev.LastCollecting, cur)
	switch {
	case regressed:
		metrics.ClockRegressions.Inc()
		w.cfg.Logger.Warn("clock regressed since last run",
			log.Batch("persisted", prev.LastCollecting),
			log.Batch("current", cur),
			log.Time("persisted_at", prev.LastEventAt),
		)
	case missed > 0:
		metrics.MissedBatches.Add(float64(missed))
		w.cfg.Logger.Warn("batches started while not running",
			log.Uint64("missed", missed),
			log.Batch("persisted", prev.LastCollecting),
			log.Batch("current", cur),
		)
	}
}

// Gap compares the last persisted collecting batch with the current one. It
// returns the number of batches in between, or regressed if the persisted one
// is ahead.
func Gap(persisted, current batch.ID) (missed uint64, regressed bool) {
	if persisted > current {
		return 0, true
	}
	if current-persisted <= 1 {
		return 0, false
	}
	return uint64(current - persisted - 1), false
}

func (w *Watcher) handle(ctx context.Context, tr batch.Transition) {
	metrics.Transitions.WithLabelValues(tr.Event.String()).Inc()
	switch tr.Event {
	case batch.CollectionStarted:
		metrics.CollectingBatch.Set(float64(tr.Batch))
	case batch.SolvingStarted:
		metrics.SolvingBatch.Set(float64(tr.Batch))
		metrics.SolvingOpen.Set(1)
	case batch.SolvingClosed:
		metrics.SolvingOpen.Set(0)
	}

	w.cfg.Logger.Info("phase transition",
		log.String("event", tr.Event.String()),
		log.Batch("batch", tr.Batch),
		log.Time("at", tr.At),
		log.Duration("lag", w.cfg.Clock.Since(tr.At)),
	)

	w.state.Observe(tr.Event, tr.Batch, tr.At)
	if w.cfg.Handler != nil {
		w.cfg.Handler.OnTransition(ctx, tr)
	}
}

// save persists the state. Failures are logged; the watcher keeps running.
func (w *Watcher) save(ctx context.Context) {
	if w.cfg.Repository == nil {
		return
	}
	if err := w.cfg.Repository.Save(ctx, w.state); err != nil {
		w.cfg.Logger.Error("failed to save state", log.Err(err))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
