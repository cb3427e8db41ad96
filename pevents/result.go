package pevents

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result is the outcome of a Wait or WaitForMultipleEvents call.
type Result int

const (
	// Success means the event (or, for wait-all, every event) was observed
	// signaled and, for auto-reset events, consumed.
	Success Result = iota
	// Timeout means the bounded wait elapsed before the wait mode's
	// condition was satisfied. It is not an error.
	Timeout
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Infinite is the timeout sentinel meaning "wait forever".
const Infinite = time.Duration(math.MaxInt64)

// Configure installs process-wide defaults for every Event and multi-wait
// created afterward: the adaptive spin-wait front-end's tuning, and, if
// cfg.Metrics.Enabled, Prometheus instrumentation registered against reg.
// Events already constructed keep their spin-wait tuning; the metrics
// recorder is package-wide, so it also records later activity on them.
// Individual Events may still override the spin-wait tuning via WithConfig.
//
// Like the teacher's SetLogger, Configure is meant to be called once, near
// process startup, before any Event is created concurrently; it is not
// synchronized against concurrent use for the same reason SetLogger isn't.
func Configure(cfg *Config, reg prometheus.Registerer) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	globalSpin = newSpinWaiter(cfg.SpinWait)

	if cfg.Metrics.Enabled {
		m := NewMetrics(cfg.Metrics.Namespace)
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if err := m.Register(reg); err != nil {
			return err
		}
		defaultRecorder = m
	}
	return nil
}

var globalSpin = disabledSpinWaiter

func defaultSpin() *spinWaiter {
	return globalSpin
}
