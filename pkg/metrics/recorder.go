package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder handles metrics recording and exposure
type Recorder struct {
	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Simulation metrics
	runCounter         *prometheus.CounterVec
	runLatency         *prometheus.HistogramVec
	tupleLatency       prometheus.Histogram
	pathsCounter       prometheus.Counter
	valuationsCounter  prometheus.Counter
	centralMeanGauge   prometheus.Gauge
	publishCounter     *prometheus.CounterVec
	wsClientCountGauge prometheus.Gauge
}

// NewRecorder creates a recorder registered on the default Prometheus registry
func NewRecorder() *Recorder {
	return NewRecorderWith(prometheus.DefaultRegisterer)
}

// NewRecorderWith creates a recorder registered on reg
func NewRecorderWith(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		// API metrics
		apiRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_api_requests_total",
				Help: "The total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiLatencyHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_api_latency_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // From 1ms to ~16s
			},
			[]string{"method", "path"},
		),

		// Simulation metrics
		runCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_simulation_runs_total",
				Help: "The total number of simulation runs by outcome",
			},
			[]string{"status"},
		),
		runLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_simulation_run_seconds",
				Help:    "Simulation run latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // From 10ms to ~80s
			},
			[]string{"status"},
		),
		tupleLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mcp_simulation_tuple_seconds",
				Help:    "Time to simulate and value one (spot, vol, maturity) tuple",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
		),
		pathsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mcp_simulated_paths_total",
				Help: "The total number of simulated terminal prices",
			},
		),
		valuationsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mcp_payoff_valuations_total",
				Help: "The total number of payoff valuations",
			},
		),
		centralMeanGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mcp_central_terminal_mean",
				Help: "Mean terminal price of the central scenario of the last run",
			},
		),
		publishCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_result_publish_total",
				Help: "The total number of result publications by outcome",
			},
			[]string{"status"},
		),
		wsClientCountGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mcp_websocket_clients",
				Help: "Number of connected progress clients",
			},
		),
	}
}

// RecordAPIRequest records metrics for an API request
func (r *Recorder) RecordAPIRequest(method, path string, status int, latency time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordRun records the outcome and latency of a simulation run
func (r *Recorder) RecordRun(status string, latency time.Duration) {
	r.runCounter.WithLabelValues(status).Inc()
	r.runLatency.WithLabelValues(status).Observe(latency.Seconds())
}

// RecordTuple records one simulated tuple
func (r *Recorder) RecordTuple(paths, valuations int, latency time.Duration) {
	r.pathsCounter.Add(float64(paths))
	r.valuationsCounter.Add(float64(valuations))
	r.tupleLatency.Observe(latency.Seconds())
}

// RecordCentralMean records the central-scenario mean of the last run
func (r *Recorder) RecordCentralMean(mean float64) {
	r.centralMeanGauge.Set(mean)
}

// RecordPublish records a result publication attempt
func (r *Recorder) RecordPublish(status string) {
	r.publishCounter.WithLabelValues(status).Inc()
}

// RecordWebSocketClients records the current number of progress clients
func (r *Recorder) RecordWebSocketClients(count int) {
	r.wsClientCountGauge.Set(float64(count))
}
