// Package gwmetrics exports the state of a [gwatchdog.Watchdog] as Prometheus metrics.
package gwmetrics

import (
	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gwdt"

// Metrics holds the collectors registered by [New].
// Mode and timeout are read from the watchdog at scrape time;
// faults are counted as they are handled.
type Metrics struct {
	faults *prometheus.CounterVec
}

// New registers the watchdog collectors on reg.
// It returns an error if any collector is already registered.
func New(reg prometheus.Registerer, w *gwatchdog.Watchdog) (*Metrics, error) {
	m := &Metrics{
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watchdog_faults_total",
				Help:      "Watchdog timeout faults handled, by the mode armed at expiry.",
			},
			[]string{"mode"},
		),
	}

	collectors := []prometheus.Collector{
		m.faults,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "watchdog_mode",
				Help:      "Current watchdog mode: 0 disabled, 1 notify, 2 reset.",
			},
			func() float64 { return float64(w.Mode()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "watchdog_timeout_seconds",
				Help:      "Configured watchdog timeout.",
			},
			w.Timeout,
		),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Export every mode label at zero.
	for _, mode := range []gwatchdog.Mode{gwatchdog.ModeNotifyOnly, gwatchdog.ModeResetOnTimeout} {
		m.faults.WithLabelValues(mode.String())
	}

	return m, nil
}

// ObserveFault counts f.
func (m *Metrics) ObserveFault(f gwatchdog.TimeoutFault) {
	m.faults.WithLabelValues(f.Mode.String()).Inc()
}
