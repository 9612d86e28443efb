package gwatchdog_test

import (
	"context"
	"testing"
	"time"

	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/gordian-engine/gwdt/internal/gtest"
	"github.com/stretchr/testify/require"
)

func TestFeeder_feedsUntilCanceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.W.SetMode(gwatchdog.ModeResetOnTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fd := gwatchdog.NewFeeder(ctx, gtest.NewLogger(t), f.W, gwatchdog.FeederConfig{
		Interval: time.Millisecond,
		Jitter:   100 * time.Microsecond,
	})

	require.Eventually(t, func() bool {
		return f.P.Calls().Feed >= 3
	}, time.Duration(gtest.ScaleMs(500)), time.Millisecond)

	cancel()
	fd.Wait()

	// No more feeding once stopped.
	n := f.P.Calls().Feed
	gtest.Sleep(gtest.ScaleMs(10))
	require.Equal(t, n, f.P.Calls().Feed)
}

func TestNewFeeder_invalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []gwatchdog.FeederConfig{
		{},
		{Interval: -time.Second},
		{Interval: time.Second, Jitter: -time.Millisecond},
		{Interval: time.Second, Jitter: time.Second},
	} {
		require.Panics(t, func() {
			_ = gwatchdog.NewFeeder(context.Background(), gtest.NewLogger(t), nil, cfg)
		}, "config %#v", cfg)
	}
}
