package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type SweepMetrics struct {
	Runs             metrics.Counter
	SweptRequests    metrics.Counter
	AbstainsInjected metrics.Counter

	DurationSeconds metrics.Histogram
}

func (s *SweepMetrics) ObserveRun(swept int, seconds float64) {
	s.Runs.Add(1)
	s.SweptRequests.Add(float64(swept))
	s.DurationSeconds.Observe(seconds)
}

func PromSweepMetrics() *SweepMetrics {
	return &SweepMetrics{
		Runs: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SweepSubsystem,
			Name:      "runs_total",
			Help:      "Total number of deadline sweep runs.",
		}, []string{}),
		SweptRequests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SweepSubsystem,
			Name:      "swept_requests_total",
			Help:      "Total number of expired requests processed.",
		}, []string{}),
		AbstainsInjected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SweepSubsystem,
			Name:      "abstains_injected_total",
			Help:      "Total number of auto abstain votes injected.",
		}, []string{}),
		DurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: SweepSubsystem,
			Name:      "duration_seconds",
		}, []string{}),
	}
}

func NopSweepMetrics() *SweepMetrics {
	return &SweepMetrics{
		Runs:             discard.NewCounter(),
		SweptRequests:    discard.NewCounter(),
		AbstainsInjected: discard.NewCounter(),

		DurationSeconds: discard.NewHistogram(),
	}
}
