package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics publishes engine execution metrics to a Prometheus registry.
//
// Metrics exposed, all under the chatbot_engine namespace:
//
//	runs_total (counter):            completed runs by outcome
//	                                 (ok, error, canceled, max_steps)
//	run_duration_seconds (histogram): wall-clock duration per run
//	run_steps (histogram):            node executions per run
//	node_latency_seconds (histogram): node latency by node and status
//	node_failures_total (counter):    node errors and panics by node
//
// Expose them by serving promhttp for the registry the Metrics was
// registered with.
type Metrics struct {
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	runSteps     prometheus.Histogram
	nodeLatency  *prometheus.HistogramVec
	nodeFailures *prometheus.CounterVec
}

// NewMetrics creates and registers the engine metrics with reg. Pass
// prometheus.DefaultRegisterer for the global registry, or a private
// prometheus.NewRegistry() in tests. Registering twice on the same
// registry panics, so construct once per process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Completed workflow runs by outcome.",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a workflow run.",
			Buckets:   prometheus.DefBuckets,
		}),
		runSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "engine",
			Name:      "run_steps",
			Help:      "Node executions per workflow run.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13, 21},
		}),
		nodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chatbot",
			Subsystem: "engine",
			Name:      "node_latency_seconds",
			Help:      "Node execution latency by node and status.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"node", "status"}),
		nodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "engine",
			Name:      "node_failures_total",
			Help:      "Node executions that returned an error or panicked.",
		}, []string{"node"}),
	}
}

func (m *Metrics) observeRun(outcome string, steps int, d time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runSteps.Observe(float64(steps))
	m.runDuration.Observe(d.Seconds())
}

func (m *Metrics) observeNode(node, status string, d time.Duration) {
	m.nodeLatency.WithLabelValues(node, status).Observe(d.Seconds())
}

func (m *Metrics) nodeFailure(node string) {
	m.nodeFailures.WithLabelValues(node).Inc()
}
