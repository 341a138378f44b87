package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "batchclock_build_info",
		Help: "Build information of batchclock",
	}, []string{"version"})

	CollectingBatch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batchclock_collecting_batch", Help: "Batch currently collecting orders.",
	})
	SolvingBatch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batchclock_solving_batch", Help: "Batch whose solving phase started at the last slot boundary.",
	})
	SolvingOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batchclock_solving_open", Help: "1 while the solving window of the solving batch is open.",
	})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batchclock_transitions_total", Help: "Phase transitions observed.",
	}, []string{"event"})
	MissedBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchclock_missed_batches_total", Help: "Batches that started while the watcher was not running.",
	})
	ClockRegressions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchclock_clock_regressions_total", Help: "Starts where the persisted batch was ahead of the clock.",
	})
)
