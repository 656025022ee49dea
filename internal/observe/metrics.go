// Package observe provides the service's metrics: OpenTelemetry instruments
// exported to Prometheus, plus an HTTP middleware that records request
// durations and writes access logs.
//
// Tests should build [Metrics] with [NewMetrics] and their own
// [metric.MeterProvider] to avoid sharing state through the global provider.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/j0lvera/cbtbot"

// Metrics holds every instrument the service records. All fields are safe for
// concurrent use.
type Metrics struct {
	// Turns counts processed turns. Attributes: source, rule.
	Turns metric.Int64Counter

	// QuickActions counts quick-action triggers. Attribute: token.
	QuickActions metric.Int64Counter

	// Resets counts explicit transcript resets.
	Resets metric.Int64Counter

	// ReplyFailures counts turns whose reply had to be replaced by the
	// internal-error message.
	ReplyFailures metric.Int64Counter

	// ActiveSessions tracks live conversations held in memory.
	ActiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request latency. Attributes: method, route,
	// status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Turns, err = m.Int64Counter("cbtbot.turns",
		metric.WithDescription("Processed turns by input source and matched rule."),
	); err != nil {
		return nil, err
	}
	if met.QuickActions, err = m.Int64Counter("cbtbot.quick_actions",
		metric.WithDescription("Quick-action triggers by token."),
	); err != nil {
		return nil, err
	}
	if met.Resets, err = m.Int64Counter("cbtbot.resets",
		metric.WithDescription("Transcript resets."),
	); err != nil {
		return nil, err
	}
	if met.ReplyFailures, err = m.Int64Counter("cbtbot.reply.failures",
		metric.WithDescription("Turns answered with the internal-error reply."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("cbtbot.sessions.active",
		metric.WithDescription("Conversations currently held in memory."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("cbtbot.http.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordTurn counts one processed turn.
func (m *Metrics) RecordTurn(ctx context.Context, source, rule string) {
	m.Turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("rule", rule),
	))
}

// RecordQuickAction counts one quick-action trigger.
func (m *Metrics) RecordQuickAction(ctx context.Context, token string) {
	m.QuickActions.Add(ctx, 1, metric.WithAttributes(attribute.String("token", token)))
}

// RecordReset counts one reset.
func (m *Metrics) RecordReset(ctx context.Context) {
	m.Resets.Add(ctx, 1)
}

// RecordReplyFailure counts one failed reply.
func (m *Metrics) RecordReplyFailure(ctx context.Context) {
	m.ReplyFailures.Add(ctx, 1)
}

// SessionOpened increments the active sessions gauge.
func (m *Metrics) SessionOpened(ctx context.Context) {
	m.ActiveSessions.Add(ctx, 1)
}

// SessionClosed decrements the active sessions gauge.
func (m *Metrics) SessionClosed(ctx context.Context) {
	m.ActiveSessions.Add(ctx, -1)
}
