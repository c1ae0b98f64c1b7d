package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type EngineMetrics struct {
	ProjectsSubmitted metrics.Counter
	PanelsAssigned    metrics.Counter
	VotesCast         metrics.Counter
	Decisions         metrics.Counter

	InReview   metrics.Gauge
	Validators metrics.Gauge
}

func (e *EngineMetrics) CountVote(provenance string) {
	e.VotesCast.With("provenance", provenance).Add(1)
}

func (e *EngineMetrics) CountDecision(status string) {
	e.Decisions.With("status", status).Add(1)
}

func (e *EngineMetrics) SetValidators(num int) {
	e.Validators.Set(float64(num))
}

func PromEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		ProjectsSubmitted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "projects_submitted_total",
			Help:      "Total number of submitted projects.",
		}, []string{}),
		PanelsAssigned: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "panels_assigned_total",
			Help:      "Total number of assigned validator panels.",
		}, []string{}),
		VotesCast: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "votes_cast_total",
			Help:      "Total number of recorded votes.",
		}, []string{"provenance"}),
		Decisions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "decisions_total",
			Help:      "Total number of terminal decisions.",
		}, []string{"status"}),
		InReview: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "in_review",
			Help:      "Number of requests currently under review.",
		}, []string{}),
		Validators: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "validators",
			Help:      "Number of active validators.",
		}, []string{}),
	}
}

func NopEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		ProjectsSubmitted: discard.NewCounter(),
		PanelsAssigned:    discard.NewCounter(),
		VotesCast:         discard.NewCounter(),
		Decisions:         discard.NewCounter(),

		InReview:   discard.NewGauge(),
		Validators: discard.NewGauge(),
	}
}
