package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gordian-engine/gwdt/internal/gtest"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T, args ...string) (*bytes.Buffer, func(context.Context) error) {
	t.Helper()

	root := NewRootCmd(gtest.NewLogger(t), new(slog.LevelVar))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	return &out, root.ExecuteContext
}

func TestModes(t *testing.T) {
	t.Parallel()

	out, exec := newTestRoot(t, "modes")
	require.NoError(t, exec(context.Background()))

	require.Equal(t, `disabled  watchdog not running
notify    report a timeout fault without resetting
reset     reset the device on timeout
`, out.String())
}

func TestRunSim_invalidFlags(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{name: "unknown mode", args: []string{"--mode", "explode"}},
		{name: "jitter too large", args: []string{"--feed-interval", "100ms", "--feed-jitter", "100ms"}},
		{name: "negative jitter", args: []string{"--feed-jitter", "-1ms"}},
		{name: "zero timeout", args: []string{"--timeout", "0"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"run-sim", "--http-addr", ""}, tc.args...)
			_, exec := newTestRoot(t, args...)

			// Each case fails before blocking on the context.
			require.Error(t, exec(context.Background()))
		})
	}
}

func TestRunSim_expiresUntilCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_, exec := newTestRoot(t,
		"run-sim",
		"--http-addr", "",
		"--timeout", "0.05",
		"--feed-interval", "0",
		"--rearm-on-fault",
	)

	require.NoError(t, exec(ctx))
}

func TestRunSim_envOverride(t *testing.T) {
	// Setenv forbids t.Parallel.
	t.Setenv("GWDT_MODE", "sideways")

	_, exec := newTestRoot(t, "run-sim", "--http-addr", "")
	require.Error(t, exec(context.Background()))
}
