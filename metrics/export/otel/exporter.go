package otel

import (
	"context"
	"errors"
	"fmt"

	credkit "github.com/credkit/credkit"
	"github.com/credkit/credkit/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() credkit.MetricsSnapshot
	AuditDropped() uint64
}

// verifyLatency holds the observable gauges backing the token verification
// latency histogram: one cumulative gauge per bucket bound plus the total
// sample count. OTel observable instruments cannot replay individual samples,
// so the pre-aggregated bucket counts are exposed directly.
type verifyLatency struct {
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter bridges a credential manager's counters, its verification
// latency histogram, and the audit drop counter into an OpenTelemetry meter
// via a single collection callback.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     map[credkit.MetricID]metric.Int64ObservableCounter
	latency      verifyLatency
	auditDropped metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, manager *credkit.Manager) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, manager)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[credkit.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}

	var observables []metric.Observable

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = ins
		observables = append(observables, ins)
	}

	latencyObservables, err := e.registerVerifyLatency(meter)
	if err != nil {
		return nil, err
	}
	observables = append(observables, latencyObservables...)

	e.auditDropped, err = meter.Int64ObservableCounter(
		"credkit_audit_dropped_total",
		metric.WithDescription("Audit events lost to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	observables = append(observables, e.auditDropped)

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	return e, nil
}

func (e *OTelExporter) registerVerifyLatency(meter metric.Meter) ([]metric.Observable, error) {
	def := internaldefs.VerifyLatencyDef
	observables := make([]metric.Observable, 0, len(e.latency.buckets)+1)

	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative count of token verifications at or below this latency bound."))
		if err != nil {
			return nil, fmt.Errorf("create latency bucket gauge %s: %w", name, err)
		}
		e.latency.buckets[i] = ins
		observables = append(observables, ins)
	}

	count, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription("Total token verifications with a recorded latency."))
	if err != nil {
		return nil, fmt.Errorf("create latency count gauge: %w", err)
	}
	e.latency.count = count

	return append(observables, count), nil
}

// observe is the collection callback: it snapshots the source once and feeds
// every registered instrument from that single consistent view.
func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for id, ins := range e.counters {
		observer.ObserveInt64(ins, int64(snapshot.Counters[id]))
	}

	cumulative := internaldefs.CumulativeBuckets(
		internaldefs.NormalizeBuckets(snapshot.Histograms[credkit.MetricVerifyLatency]),
	)
	for i, ins := range e.latency.buckets {
		observer.ObserveInt64(ins, int64(cumulative[i]))
	}
	observer.ObserveInt64(e.latency.count, int64(cumulative[len(cumulative)-1]))

	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
