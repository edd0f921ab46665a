// Package metrics collects Prometheus metrics for a bot run. The bot runs
// from cron rather than as a server, so metrics are exported through the
// node_exporter textfile collector instead of a scrape endpoint.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spiffcs/issuebot/internal/policy"
)

const namespace = "issuebot"

// Metrics holds the collectors for one process.
type Metrics struct {
	registry  *prometheus.Registry
	evaluated *prometheus.CounterVec
	mutations *prometheus.CounterVec
	failures  *prometheus.CounterVec
	lastRun   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_evaluated_total",
			Help:      "Issues evaluated, by run mode and resulting tier.",
		}, []string{"mode", "tier"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutations sent to the issue tracker, by operation and result.",
		}, []string{"operation", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issue_failures_total",
			Help:      "Issues that could not be fully processed, by run mode and failure kind.",
		}, []string{"mode", "kind"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run of each mode finished.",
		}, []string{"mode"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run of each mode.",
		}, []string{"mode"}),
	}

	m.registry.MustRegister(m.evaluated, m.mutations, m.failures, m.lastRun, m.duration)
	return m
}

// ObserveReport records the outcome of one engine run.
func (m *Metrics) ObserveReport(report policy.Report, took time.Duration, finished time.Time) {
	mode := string(report.Mode)
	for _, o := range report.Outcomes {
		m.evaluated.WithLabelValues(mode, string(o.Tier)).Inc()
		if o.Err != nil {
			m.failures.WithLabelValues(mode, policy.FailureKind(o.Err)).Inc()
		}
	}
	m.lastRun.WithLabelValues(mode).Set(float64(finished.Unix()))
	m.duration.WithLabelValues(mode).Set(took.Seconds())
}

// WriteTextfile writes every collected metric to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Instrument wraps a Mutator so every call is counted.
func (m *Metrics) Instrument(next policy.Mutator) policy.Mutator {
	return &instrumentedMutator{next: next, mutations: m.mutations}
}

type instrumentedMutator struct {
	next      policy.Mutator
	mutations *prometheus.CounterVec
}

func (i *instrumentedMutator) observe(op policy.Operation, err error) error {
	result := "success"
	if err != nil {
		result = "error"
	}
	i.mutations.WithLabelValues(string(op), result).Inc()
	return err
}

func (i *instrumentedMutator) AddComment(ctx context.Context, issueID, body string) error {
	return i.observe(policy.OpComment, i.next.AddComment(ctx, issueID, body))
}

func (i *instrumentedMutator) AddLabels(ctx context.Context, issueID string, labelIDs []string) error {
	return i.observe(policy.OpAddLabel, i.next.AddLabels(ctx, issueID, labelIDs))
}

func (i *instrumentedMutator) RemoveLabels(ctx context.Context, issueID string, labelIDs []string) error {
	return i.observe(policy.OpRemoveLabels, i.next.RemoveLabels(ctx, issueID, labelIDs))
}

func (i *instrumentedMutator) CloseIssue(ctx context.Context, issueID string) error {
	return i.observe(policy.OpClose, i.next.CloseIssue(ctx, issueID))
}
