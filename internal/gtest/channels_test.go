package gtest_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/gordian-engine/gwdt/internal/gtest"
	"github.com/stretchr/testify/require"
)

type fatalHelper struct {
	HelperCalled bool
	FatalMessage string
}

func (h *fatalHelper) Helper() {
	h.HelperCalled = true
}

func (h *fatalHelper) Fatalf(format string, args ...any) {
	h.FatalMessage = fmt.Sprintf(format, args...)
}

func TestReceiveOrTimeout(t *testing.T) {
	t.Run("receive within time", func(t *testing.T) {
		t.Parallel()

		ch := make(chan int)

		go func() {
			time.Sleep(5 * time.Millisecond)
			ch <- 1
		}()

		fh := new(fatalHelper)

		n := gtest.ReceiveOrTimeout(fh, ch, gtest.ScaleMs(1000))

		require.Equal(t, 1, n)

		require.True(t, fh.HelperCalled)
		require.Empty(t, fh.FatalMessage)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		ch := make(chan string)

		fh := new(fatalHelper)

		const ms = 5
		before := time.Now()
		require.Panics(t, func() {
			_ = gtest.ReceiveOrTimeout(fh, ch, gtest.ScaleMs(ms))
		})
		require.GreaterOrEqual(t, time.Since(before), ms*time.Millisecond)

		require.True(t, fh.HelperCalled)
		require.NotEmpty(t, fh.FatalMessage)
	})

	t.Run("fatal on nil channel", func(t *testing.T) {
		t.Parallel()

		var ch chan float64

		fh := new(fatalHelper)

		require.Panics(t, func() {
			// The helper must fail before the excessive timeout matters.
			_ = gtest.ReceiveOrTimeout(fh, ch, gtest.ScaleMs(1_000_000_000))
		})

		require.NotEmpty(t, fh.FatalMessage)
	})
}

func TestNotSending(t *testing.T) {
	t.Parallel()

	ch := make(chan int, 1)

	fh := new(fatalHelper)
	gtest.NotSending(fh, ch)
	require.Empty(t, fh.FatalMessage)

	ch <- 3
	gtest.NotSending(fh, ch)
	require.Contains(t, fh.FatalMessage, "got 3")
}

func TestNotSendingFor(t *testing.T) {
	t.Parallel()

	ch := make(chan int, 1)

	fh := new(fatalHelper)
	gtest.NotSendingFor(fh, ch, gtest.ScaleMs(5))
	require.Empty(t, fh.FatalMessage)

	ch <- 1
	require.Panics(t, func() {
		gtest.NotSendingFor(fh, ch, gtest.ScaleMs(1000))
	})
	require.NotEmpty(t, fh.FatalMessage)
}
