// Only run these tests in debug mode.

//go:build debug

package gassert_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/gordian-engine/gwdt/gassert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_rules(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		in   string
		test func(t *testing.T, e *gassert.Environment)
	}{
		{
			name: "rootWildcard",
			in:   "*",
			test: func(t *testing.T, e *gassert.Environment) {
				require.True(t, e.Enabled("gwatchdog"))
				require.True(t, e.Enabled("gwatchdog.controller.armed_matches_mode"))
			},
		},
		{
			name: "rootedWildcard",
			in:   "gwatchdog.*",
			test: func(t *testing.T, e *gassert.Environment) {
				// The root of a wildcard is not itself a match.
				require.False(t, e.Enabled("gwatchdog"))

				require.True(t, e.Enabled("gwatchdog.controller"))
				require.True(t, e.Enabled("gwatchdog.controller.armed_matches_mode"))

				require.False(t, e.Enabled("gwsim.countdown"))
			},
		},
		{
			name: "exact",
			in:   "foo.bar,foo.quux",
			test: func(t *testing.T, e *gassert.Environment) {
				require.True(t, e.Enabled("foo.bar"))
				require.False(t, e.Enabled("foo.baz"))
				require.True(t, e.Enabled("foo.quux"))
				require.False(t, e.Enabled("foo.bar.baz"))
			},
		},
		{
			name: "wildcardWithExclusion",
			in:   "foo.*,!foo.baz",
			test: func(t *testing.T, e *gassert.Environment) {
				require.True(t, e.Enabled("foo.bar"))
				require.False(t, e.Enabled("foo.baz"))
				require.True(t, e.Enabled("foo.baz.quux"))
			},
		},
		{
			name: "empty",
			in:   "",
			test: func(t *testing.T, e *gassert.Environment) {
				require.False(t, e.Enabled("foo.bar"))
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e, err := gassert.EnvironmentFromString(tc.in)
			require.NoError(t, err)
			tc.test(t, e)
		})
	}
}

func TestEnvironmentFromString_errors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"foo..bar",
		"foo.*.bar",
		"f*o.bar",
		"!foo.*",
		"foo,,bar",
	} {
		e, err := gassert.EnvironmentFromString(input)
		require.Errorf(t, err, "input %q", input)
		require.Nil(t, e)
	}
}

func TestEnvironment_HandleAssertionFailure_panic(t *testing.T) {
	t.Parallel()

	e, err := gassert.EnvironmentFromString("*")
	require.NoError(t, err)

	require.Panics(t, func() {
		e.HandleAssertionFailure(errors.New("something bad"))
	})

	require.Panics(t, func() {
		e.HandleAssertionFailure(nil)
	})
}

func TestEnvironment_HandleAssertionFailure_log(t *testing.T) {
	t.Parallel()

	e, err := gassert.EnvironmentFromString("*")
	require.NoError(t, err)

	var buf bytes.Buffer
	e.OnlyLogFailures(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NotPanics(t, func() {
		e.HandleAssertionFailure(errors.New("something bad"))
	})
	require.Contains(t, buf.String(), "something bad")

	// Nil panics even in logging mode.
	require.Panics(t, func() {
		e.HandleAssertionFailure(nil)
	})
}
