// Package observability has the OpenTelemetry instruments of the branch pipeline
// and the Prometheus endpoint that exposes them.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricBranchesAnalyzed = "branchspot.branches.analyzed.total"
	metricBranchDuration   = "branchspot.branch.duration.seconds"
	metricBranchesInflight = "branchspot.branches.inflight"
	metricRunsTotal        = "branchspot.runs.total"
	metricCacheLookups     = "branchspot.cache.lookups.total"

	attrDepth  = "depth"
	attrStatus = "status"
	attrResult = "result"

	// StatusOK marks a branch or run that completed normally.
	StatusOK = "ok"
	// StatusDegraded marks a branch that fell back to its basic record.
	StatusDegraded = "degraded"
	// StatusError marks a run that returned an error.
	StatusError = "error"
)

// durationBucketBoundaries suits per-branch git work, from a few ms to minutes.
var durationBucketBoundaries = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the instruments recorded by the analysis pipeline.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	branchesAnalyzed metric.Int64Counter
	branchDuration   metric.Float64Histogram
	inflight         metric.Int64UpDownCounter
	runs             metric.Int64Counter
	cacheLookups     metric.Int64Counter
}

// NewPipelineMetrics creates every pipeline instrument from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)
	pm := &PipelineMetrics{
		branchesAnalyzed: b.counter(metricBranchesAnalyzed, "Branches analyzed by depth and status", "{branch}"),
		branchDuration:   b.histogram(metricBranchDuration, "Per-branch analysis duration in seconds", "s", durationBucketBoundaries...),
		inflight:         b.upDownCounter(metricBranchesInflight, "Branch analyses currently running", "{branch}"),
		runs:             b.counter(metricRunsTotal, "Pipeline runs by status", "{run}"),
		cacheLookups:     b.counter(metricCacheLookups, "Branch cache lookups by result", "{lookup}"),
	}
	if b.err != nil {
		return nil, fmt.Errorf("pipeline metrics: %w", b.err)
	}
	return pm, nil
}

// BranchStarted marks one branch analysis as running.
func (pm *PipelineMetrics) BranchStarted(ctx context.Context) {
	if pm == nil {
		return
	}
	pm.inflight.Add(ctx, 1)
}

// BranchFinished records a completed branch analysis and releases its inflight slot.
func (pm *PipelineMetrics) BranchFinished(ctx context.Context, depth string, degraded bool, elapsed time.Duration) {
	if pm == nil {
		return
	}
	status := StatusOK
	if degraded {
		status = StatusDegraded
	}
	pm.inflight.Add(ctx, -1)
	pm.branchesAnalyzed.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrDepth, depth),
		attribute.String(attrStatus, status),
	))
	pm.branchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String(attrDepth, depth)))
}

// RecordRun counts one pipeline run.
func (pm *PipelineMetrics) RecordRun(ctx context.Context, err error) {
	if pm == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	pm.runs.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordCacheLookup counts one branch cache lookup as a hit or a miss.
func (pm *PipelineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if pm == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	pm.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

type metricsKey struct{}

// WithMetrics returns a context carrying the pipeline metrics.
func WithMetrics(ctx context.Context, pm *PipelineMetrics) context.Context {
	return context.WithValue(ctx, metricsKey{}, pm)
}

// FromContext returns the pipeline metrics of ctx, or nil when none are attached.
func FromContext(ctx context.Context) *PipelineMetrics {
	if pm, ok := ctx.Value(metricsKey{}).(*PipelineMetrics); ok {
		return pm
	}
	return nil
}
