package gwmetrics_test

import (
	"testing"

	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/gordian-engine/gwdt/gwatchdog/gwatchdogtest"
	"github.com/gordian-engine/gwdt/gwatchdog/gwmetrics"
	"github.com/gordian-engine/gwdt/internal/gtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newWatchdog(t *testing.T) *gwatchdog.Watchdog {
	t.Helper()

	w, err := gwatchdog.New(
		gtest.NewLogger(t), new(gwatchdogtest.Peripheral),
		gwatchdog.WithFaultSink(gwatchdog.NewFaultSlot()),
	)
	require.NoError(t, err)
	return w
}

// gathered maps metric name and optional mode label to value.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}

			switch {
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			}
		}
	}
	return out
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	w := newWatchdog(t)
	reg := prometheus.NewRegistry()

	m, err := gwmetrics.New(reg, w)
	require.NoError(t, err)

	require.Equal(t, map[string]float64{
		"gwdt_watchdog_mode":                0,
		"gwdt_watchdog_timeout_seconds":     gwatchdog.DefaultTimeout,
		"gwdt_watchdog_faults_total/notify": 0,
		"gwdt_watchdog_faults_total/reset":  0,
	}, gathered(t, reg))

	require.NoError(t, w.SetTimeout(1.5))
	require.NoError(t, w.SetMode(gwatchdog.ModeResetOnTimeout))
	m.ObserveFault(gwatchdog.TimeoutFault{Mode: gwatchdog.ModeNotifyOnly, Timeout: 1.5})
	m.ObserveFault(gwatchdog.TimeoutFault{Mode: gwatchdog.ModeNotifyOnly, Timeout: 1.5})

	got := gathered(t, reg)
	require.Equal(t, 2.0, got["gwdt_watchdog_mode"])
	require.Equal(t, 1.5, got["gwdt_watchdog_timeout_seconds"])
	require.Equal(t, 2.0, got["gwdt_watchdog_faults_total/notify"])
	require.Zero(t, got["gwdt_watchdog_faults_total/reset"])
}

func TestMetrics_duplicateRegistration(t *testing.T) {
	t.Parallel()

	w := newWatchdog(t)
	reg := prometheus.NewRegistry()

	_, err := gwmetrics.New(reg, w)
	require.NoError(t, err)

	_, err = gwmetrics.New(reg, w)
	require.Error(t, err)
}
