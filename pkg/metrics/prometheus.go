// Package metrics provides Prometheus metrics for the pacer engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Click stream metrics
	clicksObserved      *prometheus.CounterVec
	clicksInjected      *prometheus.CounterVec
	injectionCancelled  *prometheus.CounterVec
	injectionDeferred   *prometheus.CounterVec
	injectionInfeasible *prometheus.CounterVec

	// Input boundary health
	eventsDropped    prometheus.Counter
	eventsOutOfOrder prometheus.Counter
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge

	// Control loop outputs
	cps               *prometheus.GaugeVec
	totalCPS          prometheus.Gauge
	multiplier        prometheus.Gauge
	multiplierUpdates prometheus.Counter
	damperPhase       prometheus.Gauge
	phaseTransitions  *prometheus.CounterVec
	tickDuration      prometheus.Histogram

	// HTTP ops surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pacer",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := []string{"trigger"}

	m.clicksObserved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clicks_observed_total",
		Help:      "Real press events accepted into the sliding window, per trigger",
	}, labels)

	m.clicksInjected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clicks_injected_total",
		Help:      "Synthetic press events emitted, per trigger",
	}, labels)

	m.injectionCancelled = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "injection_cancelled_total",
		Help:      "Scheduled synthetic presses cancelled before firing (trigger went inactive)",
	}, labels)

	m.injectionDeferred = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "injection_deferred_total",
		Help:      "Synthetic presses pushed past their due time by the emit-time ceiling guard",
	}, labels)

	m.injectionInfeasible = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "injection_infeasible_total",
		Help:      "Triggers whose injection was disabled because no compliant schedule exists",
	}, labels)

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "input_events_dropped_total",
		Help:      "Input events discarded by the bounded queue's drop-oldest overflow policy",
	})

	m.eventsOutOfOrder = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "input_events_out_of_order_total",
		Help:      "Input events rejected for carrying a non-monotonic timestamp",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "input_queue_size",
		Help:      "Current depth of the input event queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "input_queue_capacity",
		Help:      "Configured capacity of the input event queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "input_queue_utilization",
		Help:      "Queue depth as a fraction of capacity",
	})

	m.cps = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cps",
		Help:      "Instantaneous clicks per second, per trigger",
	}, labels)

	m.totalCPS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cps_total",
		Help:      "Instantaneous clicks per second across all triggers",
	})

	m.multiplier = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sensitivity_multiplier",
		Help:      "Current sensitivity multiplier produced by the damper",
	})

	m.multiplierUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sensitivity_updates_total",
		Help:      "Multiplier updates forwarded to the sensitivity sink",
	})

	m.damperPhase = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "damper_phase",
		Help:      "Current damper phase (0=idle 1=ramp_up 2=engaged 3=ramp_down)",
	})

	m.phaseTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "damper_transitions_total",
		Help:      "Damper phase transitions",
	}, []string{"from", "to"})

	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_duration_milliseconds",
		Help:      "Histogram of control tick duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests to the ops surface",
	}, []string{"method", "path", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "path"})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers backed by the global manager.

func RecordClickObserved(trigger string) { globalManager.clicksObserved.WithLabelValues(trigger).Inc() }
func RecordClickInjected(trigger string) { globalManager.clicksInjected.WithLabelValues(trigger).Inc() }

func RecordInjectionCancelled(trigger string) {
	globalManager.injectionCancelled.WithLabelValues(trigger).Inc()
}

func RecordInjectionDeferred(trigger string) {
	globalManager.injectionDeferred.WithLabelValues(trigger).Inc()
}

func RecordInjectionInfeasible(trigger string) {
	globalManager.injectionInfeasible.WithLabelValues(trigger).Inc()
}

func RecordEventDropped() { globalManager.eventsDropped.Inc() }
func RecordOutOfOrderEvent() { globalManager.eventsOutOfOrder.Inc() }

func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(frac float64) { globalManager.queueUtilization.Set(frac) }

func UpdateCPS(trigger string, cps float64) { globalManager.cps.WithLabelValues(trigger).Set(cps) }
func UpdateTotalCPS(cps float64) { globalManager.totalCPS.Set(cps) }

func UpdateMultiplier(m float64) { globalManager.multiplier.Set(m) }
func RecordMultiplierUpdate() { globalManager.multiplierUpdates.Inc() }
func UpdateDamperPhase(phase int) { globalManager.damperPhase.Set(float64(phase)) }

func RecordPhaseTransition(from, to string) {
	globalManager.phaseTransitions.WithLabelValues(from, to).Inc()
}

func RecordTickDuration(ms float64) { globalManager.tickDuration.Observe(ms) }

func RecordHTTPRequest(method, path, status string) {
	globalManager.httpRequests.WithLabelValues(method, path, status).Inc()
}

func RecordHTTPDuration(method, path string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(method, path).Observe(ms)
}
