package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cycler"

// Prometheus implements every hook interface by recording Prometheus
// metrics.
type Prometheus struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationBytes    *prometheus.HistogramVec
	refs              *prometheus.CounterVec
	classes           *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec
	cacheWrites  *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus creates the metrics and registers them with reg.
// Registering twice with the same registerer fails.
func NewPrometheus(reg prometheus.Registerer) (p *Prometheus, err error) {
	// promauto panics on duplicate registration.
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	f := promauto.With(reg)

	return &Prometheus{
		// operations counts pipeline operations.
		// Labels: op, status (ok, error)
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "operations_total",
			Help:      "Pipeline operations by outcome",
		}, []string{"op", "status"}),

		operationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline operation latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"op"}),

		operationBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "output_bytes",
			Help:      "Size of operation results",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"op"}),

		// refs counts reference tokens seen while restoring graphs.
		// Labels: op, outcome (resolved, rejected)
		refs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "refs_total",
			Help:      "Reference tokens by outcome",
		}, []string{"op", "outcome"}),

		// classes counts class tags seen while restoring graphs.
		// Labels: op, outcome (resurrected, demoted)
		classes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "class_tags_total",
			Help:      "Class tags by outcome",
		}, []string{"op", "outcome"}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),

		cacheWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Cache writes by key type",
		}, []string{"key_type"}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}, nil
}

// Install registers p as the global pipeline, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func (p *Prometheus) OnOperationStart(context.Context, string, int) {}

func (p *Prometheus) OnOperationComplete(_ context.Context, op string, outputBytes int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.operations.WithLabelValues(op, status).Inc()
	p.operationDuration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		p.operationBytes.WithLabelValues(op).Observe(float64(outputBytes))
	}
}

func (p *Prometheus) OnRetrocycle(_ context.Context, op string, resolved, rejected, resurrected, demoted int) {
	p.refs.WithLabelValues(op, "resolved").Add(float64(resolved))
	p.refs.WithLabelValues(op, "rejected").Add(float64(rejected))
	p.classes.WithLabelValues(op, "resurrected").Add(float64(resurrected))
	p.classes.WithLabelValues(op, "demoted").Add(float64(demoted))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cacheWrites.WithLabelValues(keyType).Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
