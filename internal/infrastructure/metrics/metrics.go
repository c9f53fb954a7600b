package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
)

const namespace = "peerdns"

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ProbesTotal       *prometheus.CounterVec
	ProbeLatency      prometheus.Histogram
	ReachablePeers    prometheus.Gauge
	PublishedRecords  prometheus.Gauge
	RecordMutations   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationsFailed  *prometheus.CounterVec
	BackupsTotal      *prometheus.CounterVec
	LastSuccess       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ProbesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Peer probes by result",
			},
			[]string{"result"},
		),
		ProbeLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_latency_seconds",
				Help:      "Best TCP connect latency of reachable peers",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		ReachablePeers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reachable_peers",
				Help:      "Reachable peers in the last run",
			},
		),
		PublishedRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "published_records",
				Help:      "Managed records planned in the last run",
			},
		),
		RecordMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_mutations_total",
				Help:      "DNS record mutations by operation, type and result",
			},
			[]string{"op", "type", "result"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of run phases",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_failed_total",
				Help:      "Failed run phases",
			},
			[]string{"operation"},
		),
		BackupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backups_total",
				Help:      "Snapshot writes by result",
			},
			[]string{"result"},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last run without failures",
			},
		),
	}

	m.registry.MustRegister(
		m.ProbesTotal,
		m.ProbeLatency,
		m.ReachablePeers,
		m.PublishedRecords,
		m.RecordMutations,
		m.OperationDuration,
		m.OperationsFailed,
		m.BackupsTotal,
		m.LastSuccess,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveProbe(success bool, latency time.Duration) {
	if m == nil {
		return
	}
	if !success {
		m.ProbesTotal.WithLabelValues("unreachable").Inc()
		return
	}
	m.ProbesTotal.WithLabelValues("reachable").Inc()
	m.ProbeLatency.Observe(latency.Seconds())
}

func (m *Metrics) ObserveMutation(op, recordType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.RecordMutations.WithLabelValues(op, recordType, result).Inc()
}

func (m *Metrics) ObserveBackup(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.BackupsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.BackupsTotal.WithLabelValues("ok").Inc()
}

func (m *Metrics) SetPeerGauges(reachable, published int) {
	if m == nil {
		return
	}
	m.ReachablePeers.Set(float64(reachable))
	m.PublishedRecords.Set(float64(published))
}

func (m *Metrics) MarkSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.LastSuccess.Set(float64(at.Unix()))
}

// TimedOperation runs fn, logging and recording its duration under the operation label.
func (m *Metrics) TimedOperation(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	log := logger.FromContext(ctx).With("phase", operation)
	log.Debug("starting operation")

	err := fn()
	duration := time.Since(start)

	if m != nil {
		m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
		if err != nil {
			m.OperationsFailed.WithLabelValues(operation).Inc()
		}
	}

	if err != nil {
		log.Error("operation failed", "error", err, "duration", duration)
	} else {
		log.Debug("operation completed", "duration", duration)
	}
	return err
}

// WriteTextfile writes every collector in node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
