package pevents

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// recorder is the internal instrumentation seam. Event and waitAggregate
// call it unconditionally; noopRecorder makes that free when metrics are
// disabled (the default), and Metrics implements it when they are not.
type recorder interface {
	eventCreated()
	eventClosed()
	setCalled(autoReset bool)
	waitObserved(mode string, result Result, elapsed time.Duration)
	aggregatesActive(delta int)
}

type noopRecorder struct{}

func (noopRecorder) eventCreated()                                            {}
func (noopRecorder) eventClosed()                                             {}
func (noopRecorder) setCalled(autoReset bool)                                 {}
func (noopRecorder) waitObserved(mode string, result Result, d time.Duration) {}
func (noopRecorder) aggregatesActive(delta int)                               {}

var defaultRecorder recorder = noopRecorder{}

// Metrics is a Prometheus-backed recorder for Event and multi-wait
// activity, unlike cloudflared's package-level promauto vectors: this
// package is a library, not a binary, so registration is explicit
// (Metrics.Register) rather than a side effect of importing the package.
type Metrics struct {
	eventsCreated         prometheus.Counter
	eventsClosed          prometheus.Counter
	setTotal              *prometheus.CounterVec
	waitTotal             *prometheus.CounterVec
	waitDuration          *prometheus.HistogramVec
	aggregatesActiveGauge prometheus.Gauge
}

// NewMetrics builds the Prometheus collectors for the given namespace
// without registering them; call Register to attach them to a Registerer.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pevents"
	}
	return &Metrics{
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_created_total",
			Help:      "Number of events created via NewEvent.",
		}),
		eventsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_closed_total",
			Help:      "Number of events closed via Close.",
		}),
		setTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "set_total",
			Help:      "Number of Set calls, by reset mode.",
		}, []string{"reset_mode"}),
		waitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wait_total",
			Help:      "Number of completed waits, by mode and result.",
		}, []string{"mode", "result"}),
		waitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wait_duration_seconds",
			Help:      "Latency of completed waits, by mode.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		aggregatesActiveGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregates_active",
			Help:      "Number of multi-wait aggregates currently live.",
		}),
	}
}

// Register attaches every collector to reg. Passing prometheus.DefaultRegisterer
// mirrors the pack's usual promauto-registered-at-init style, kept explicit
// here so importing this package never has global side effects.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.eventsCreated, m.eventsClosed, m.setTotal, m.waitTotal, m.waitDuration, m.aggregatesActiveGauge,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return wrapf(err, "register pevents metrics")
		}
	}
	return nil
}

func (m *Metrics) eventCreated() { m.eventsCreated.Inc() }
func (m *Metrics) eventClosed()  { m.eventsClosed.Inc() }

func (m *Metrics) setCalled(autoReset bool) {
	mode := "manual"
	if autoReset {
		mode = "auto"
	}
	m.setTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) waitObserved(mode string, result Result, elapsed time.Duration) {
	label := "timeout"
	if result == Success {
		label = "success"
	}
	m.waitTotal.WithLabelValues(mode, label).Inc()
	m.waitDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *Metrics) aggregatesActive(delta int) {
	if delta > 0 {
		m.aggregatesActiveGauge.Add(float64(delta))
	} else {
		m.aggregatesActiveGauge.Sub(float64(-delta))
	}
}
