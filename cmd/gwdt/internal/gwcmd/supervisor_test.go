package gwcmd_test

import (
	"context"
	"testing"
	"time"

	"github.com/gordian-engine/gwdt/cmd/gwdt/internal/gwcmd"
	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/gordian-engine/gwdt/gwatchdog/gwatchdogtest"
	"github.com/gordian-engine/gwdt/gwatchdog/gwmetrics"
	"github.com/gordian-engine/gwdt/internal/gtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	W    *gwatchdog.Watchdog
	P    *gwatchdogtest.Peripheral
	Slot *gwatchdog.FaultSlot

	Resets chan struct{}

	Reg *prometheus.Registry
}

func newFixture(t *testing.T, rearm bool) fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	p := new(gwatchdogtest.Peripheral)
	slot := gwatchdog.NewFaultSlot()
	w, err := gwatchdog.New(
		gtest.NewLogger(t), p,
		gwatchdog.WithFaultSink(slot),
		gwatchdog.WithScheduler(slot),
	)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m, err := gwmetrics.New(reg, w)
	require.NoError(t, err)

	resets := make(chan struct{}, 1)
	s := gwcmd.NewSupervisor(ctx, gtest.NewLogger(t), gwcmd.SupervisorConfig{
		Watchdog: w,
		Faults:   slot,
		Resets:   resets,

		BootMode:     gwatchdog.ModeResetOnTimeout,
		RearmOnFault: rearm,

		Metrics: m,
	})
	t.Cleanup(func() {
		cancel()
		s.Wait()
	})

	return fixture{W: w, P: p, Slot: slot, Resets: resets, Reg: reg}
}

func TestSupervisor_consumesFault(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	require.NoError(t, f.W.SetMode(gwatchdog.ModeNotifyOnly))

	f.P.Expire()

	require.Eventually(t, func() bool {
		return notifyFaults(t, f.Reg) == 1
	}, time.Second, 10*time.Millisecond)
	_, ok := f.Slot.Take()
	require.False(t, ok)

	// Without rearm, the expiry left the watchdog disabled.
	require.Equal(t, gwatchdog.ModeDisabled, f.W.Mode())
	require.False(t, f.P.Armed())
}

func TestSupervisor_rearmOnFault(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	require.NoError(t, f.W.SetMode(gwatchdog.ModeNotifyOnly))

	f.P.Expire()

	require.Eventually(t, func() bool {
		return f.W.Mode() == gwatchdog.ModeNotifyOnly && f.P.Armed()
	}, time.Second, 10*time.Millisecond)
}

func TestSupervisor_bootsAfterReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)

	f.Resets <- struct{}{}

	require.Eventually(t, func() bool {
		return f.W.Mode() == gwatchdog.ModeResetOnTimeout
	}, time.Second, 10*time.Millisecond)

	_, panicOnExpiry := f.P.Programmed()
	require.True(t, panicOnExpiry)
}

func notifyFaults(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != "gwdt_watchdog_faults_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "mode" && lp.GetValue() == "notify" {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
