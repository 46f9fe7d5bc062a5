// Package metrics records radar runs as Prometheus metrics. Runs are batch
// jobs, so metrics are exported by writing a node-exporter textfile rather
// than serving an endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/promptradar/pkg/candidates"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/snapshots"
)

// Fetch outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeTimeout  = "timeout"
	OutcomeStatus   = "http_status"
	OutcomeTooShort = "too_short"
	OutcomeError    = "error"
)

// Metrics holds the radar's collectors.
type Metrics struct {
	registry *prometheus.Registry

	sourceFetches   *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	toolOutcomes    *prometheus.CounterVec
	changes         *prometheus.CounterVec
	lastRunTools    *prometheus.GaugeVec
	lastRunSeconds  prometheus.Gauge
	lastRunDuration prometheus.Gauge
}

// New registers the radar collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sourceFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptradar_source_evaluations_total",
				Help: "Source evaluations by source type and outcome",
			},
			[]string{"type", "outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptradar_source_evaluation_duration_seconds",
				Help:    "Duration of source fetch and evaluation in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"type"},
		),
		toolOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptradar_tool_outcomes_total",
				Help: "Tool reconciliations by resulting state",
			},
			[]string{"state"},
		),
		changes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptradar_changes_total",
				Help: "Detected prompt changes by tool",
			},
			[]string{"tool_id"},
		),
		lastRunTools: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "promptradar_last_run_tools",
				Help: "Tools per state in the most recent run",
			},
			[]string{"state"},
		),
		lastRunSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "promptradar_last_run_timestamp_seconds",
			Help: "Unix time the most recent run completed",
		}),
		lastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "promptradar_last_run_duration_seconds",
			Help: "Wall time of the most recent run",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvaluation records one source evaluation.
func (m *Metrics) ObserveEvaluation(c candidates.Candidate, elapsed time.Duration) {
	typ := c.Source.Type.String()
	m.sourceFetches.WithLabelValues(typ, Outcome(c.Err)).Inc()
	m.fetchDuration.WithLabelValues(typ).Observe(elapsed.Seconds())
}

// ObserveTool records the state a tool ended in.
func (m *Metrics) ObserveTool(entry snapshots.ToolEntry, change *snapshots.ChangeRecord) {
	m.toolOutcomes.WithLabelValues(string(entry.State())).Inc()
	if change != nil {
		m.changes.WithLabelValues(change.ToolID).Inc()
	}
}

// ObserveRun records the end of a run.
func (m *Metrics) ObserveRun(current *snapshots.Current, finished time.Time, elapsed time.Duration) {
	tally := current.Tally()
	m.lastRunTools.WithLabelValues(string(snapshots.StateResolved)).Set(float64(tally.Tracked - tally.Fallback - tally.Unavailable))
	m.lastRunTools.WithLabelValues(string(snapshots.StateFallback)).Set(float64(tally.Fallback))
	m.lastRunTools.WithLabelValues(string(snapshots.StateUnavailable)).Set(float64(tally.Unavailable))
	m.lastRunSeconds.Set(float64(finished.Unix()))
	m.lastRunDuration.Set(elapsed.Seconds())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Outcome classifies an evaluation error for labelling.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, errors.ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, errors.ErrSourceUnavailable):
		return OutcomeStatus
	case errors.Is(err, errors.ErrContentTooShort):
		return OutcomeTooShort
	default:
		return OutcomeError
	}
}
