package utilities

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace string = "employees"

// Metrics records how the query engine executes requests
type Metrics interface {
	ObserveStrategy(strategy string)
	ObserveStage(stage string, elapsed time.Duration)
	ObserveCandidates(dimension string, n int)
	ObserveBatches(n int)
	Handler() http.Handler
}

type metrics struct {
	registry   *prometheus.Registry
	strategies *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	candidates *prometheus.HistogramVec
	batches    prometheus.Histogram
	config     struct {
		collectGo      bool
		collectProcess bool
	}
}

// NewMetrics uses its own registry so that multiple instances (e.g. in
// tests) don't collide on the default one
func NewMetrics() interface {
	Metrics
	Configure(envs map[string]string) error
} {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Employee queries by execution strategy.",
		}, []string{"strategy"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "stage_seconds",
			Help:      "Time spent in each stage of an employee query.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		candidates: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "candidates",
			Help:      "Size of the candidate set resolved per dimension.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}, []string{"dimension"}),
		batches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "query",
			Name:      "batches",
			Help:      "Number of batches issued to materialize an identifier set.",
			Buckets:   prometheus.LinearBuckets(1, 5, 8),
		}),
	}
	m.registry.MustRegister(m.strategies, m.stages, m.candidates, m.batches)
	return m
}

func (m *metrics) Configure(envs map[string]string) error {
	if s, ok := envs["METRICS_COLLECT_GO"]; ok {
		m.config.collectGo, _ = strconv.ParseBool(s)
	}
	if s, ok := envs["METRICS_COLLECT_PROCESS"]; ok {
		m.config.collectProcess, _ = strconv.ParseBool(s)
	}
	if m.config.collectGo {
		_ = m.registry.Register(collectors.NewGoCollector())
	}
	if m.config.collectProcess {
		_ = m.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return nil
}

func (m *metrics) ObserveStrategy(strategy string) {
	m.strategies.WithLabelValues(strategy).Inc()
}

func (m *metrics) ObserveStage(stage string, elapsed time.Duration) {
	m.stages.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *metrics) ObserveCandidates(dimension string, n int) {
	m.candidates.WithLabelValues(dimension).Observe(float64(n))
}

func (m *metrics) ObserveBatches(n int) {
	m.batches.Observe(float64(n))
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
