package otel

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is what the exporter observes. *goGate.Engine satisfies it.
type MetricsSource interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	AuditDropped() uint64
}

// series is one engine counter observed under a fixed attribute value.
type series struct {
	id  goGate.MetricID
	opt metric.ObserveOption
}

// family is one OTel instrument fed by several engine counters, each
// under its own value of key.
type family struct {
	name, desc, key string
	members         []familyMember
}

type familyMember struct {
	id    goGate.MetricID
	value string
}

var families = []family{
	{
		name: "gogate.admission.decisions", desc: "Admission decisions by outcome.", key: "outcome",
		members: []familyMember{
			{goGate.MetricAdmissionAllowed, "allowed"},
			{goGate.MetricRateLimited, "rate_limited"},
			{goGate.MetricOriginRejected, "origin_rejected"},
			{goGate.MetricRateBackendDegraded, "degraded"},
		},
	},
	{
		name: "gogate.session.operations", desc: "Session lifecycle operations.", key: "operation",
		members: []familyMember{
			{goGate.MetricSessionCreated, "created"},
			{goGate.MetricSessionValidated, "validated"},
			{goGate.MetricSessionRejected, "rejected"},
			{goGate.MetricSessionPersistDue, "persist_due"},
			{goGate.MetricSessionReplaced, "replaced"},
			{goGate.MetricLogout, "logout"},
			{goGate.MetricLogoutAll, "logout_all"},
		},
	},
	{
		name: "gogate.session.evictions", desc: "Sessions removed by the store.", key: "cause",
		members: []familyMember{
			{goGate.MetricSessionEvictedIdle, "idle"},
			{goGate.MetricSessionEvictedExpired, "expired"},
			{goGate.MetricSessionEvictedConcurrency, "concurrency"},
			{goGate.MetricSessionEvictedAccount, "account_invalidated"},
		},
	},
	{
		name: "gogate.authorize.grants", desc: "Grant computations by result.", key: "result",
		members: []familyMember{
			{goGate.MetricAuthorize, "computed"},
			{goGate.MetricAuthorizeLookupFailure, "guest_fallback"},
		},
	},
	{
		name: "gogate.rate.windows_swept", desc: "Idle in-memory client windows removed.", key: "store",
		members: []familyMember{
			{goGate.MetricRateWindowsSwept, "memory"},
		},
	},
}

var latencies = []struct {
	id   goGate.MetricID
	name string
	desc string
}{
	{goGate.MetricAdmitLatency, "gogate.admission.latency", "Cumulative admission latency observations by upper bound in seconds."},
	{goGate.MetricValidateLatency, "gogate.session.validate.latency", "Cumulative session validation latency observations by upper bound in seconds."},
}

type observedFamily struct {
	instrument metric.Int64ObservableCounter
	series     []series
}

type observedLatency struct {
	id      goGate.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
	le      [goGate.HistogramBucketCount]metric.ObserveOption
}

// Exporter publishes engine counters as attribute-keyed OpenTelemetry
// instruments. One callback reads a snapshot per collection.
type Exporter struct {
	source       MetricsSource
	registration metric.Registration
	families     []observedFamily
	latencies    []observedLatency
	auditDropped metric.Int64ObservableCounter
}

// NewExporter registers instruments for engine on meter.
func NewExporter(meter metric.Meter, engine *goGate.Engine) (*Exporter, error) {
	return NewExporterFromSource(meter, engine)
}

// NewExporterFromSource registers instruments for any [MetricsSource].
func NewExporterFromSource(meter metric.Meter, source MetricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{source: source}
	var observables []metric.Observable

	for _, f := range families {
		ins, err := meter.Int64ObservableCounter(f.name, metric.WithDescription(f.desc))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", f.name, err)
		}
		of := observedFamily{instrument: ins}
		for _, m := range f.members {
			of.series = append(of.series, series{
				id:  m.id,
				opt: metric.WithAttributeSet(attribute.NewSet(attribute.String(f.key, m.value))),
			})
		}
		e.families = append(e.families, of)
		observables = append(observables, ins)
	}

	for _, l := range latencies {
		buckets, err := meter.Int64ObservableGauge(l.name+".buckets", metric.WithDescription(l.desc))
		if err != nil {
			return nil, fmt.Errorf("create gauge %s: %w", l.name, err)
		}
		count, err := meter.Int64ObservableGauge(l.name+".count", metric.WithDescription("Latency observations recorded."))
		if err != nil {
			return nil, fmt.Errorf("create gauge %s: %w", l.name, err)
		}
		ol := observedLatency{id: l.id, buckets: buckets, count: count}
		for i := range ol.le {
			ol.le[i] = metric.WithAttributeSet(attribute.NewSet(attribute.String("le", upperBound(i))))
		}
		e.latencies = append(e.latencies, ol)
		observables = append(observables, buckets, count)
	}

	dropped, err := meter.Int64ObservableCounter("gogate.audit.dropped",
		metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for _, f := range e.families {
		for _, s := range f.series {
			o.ObserveInt64(f.instrument, int64(snap.Counters[s.id]), s.opt)
		}
	}
	for _, l := range e.latencies {
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[l.id]))
		for i, n := range cum {
			o.ObserveInt64(l.buckets, int64(n), l.le[i])
		}
		o.ObserveInt64(l.count, int64(cum[len(cum)-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// upperBound renders bucket i's bound the way Prometheus renders le.
func upperBound(i int) string {
	if i >= len(internaldefs.HistogramBounds) {
		return "+Inf"
	}
	return strconv.FormatFloat(internaldefs.HistogramBounds[i], 'g', -1, 64)
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
