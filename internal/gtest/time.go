package gtest

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TimeFactor multiplies every test timeout produced by [ScaleMs].
// It is read from the GWDT_TEST_TIME_FACTOR environment variable,
// so a contended CI machine can run e.g. GWDT_TEST_TIME_FACTOR=3
// without any test changing.
var TimeFactor ScaledDuration = 1

func init() {
	f := os.Getenv("GWDT_TEST_TIME_FACTOR")
	if f == "" {
		return
	}

	n, err := strconv.Atoi(f)
	if err != nil {
		panic(fmt.Errorf(
			"failed to parse GWDT_TEST_TIME_FACTOR (%q) into an integer: %w",
			f, err,
		))
	}

	if n <= 0 {
		panic(fmt.Errorf("GWDT_TEST_TIME_FACTOR must be positive; got %d", n))
	}

	TimeFactor = ScaledDuration(n)
}

// ScaledDuration is a duration already multiplied by [TimeFactor].
// Helpers accept it instead of [time.Duration]
// so that tests cannot pass unscaled literal timeouts.
type ScaledDuration time.Duration

// ScaleMs returns ms milliseconds multiplied by [TimeFactor].
func ScaleMs(ms int64) ScaledDuration {
	return TimeFactor * ScaledDuration(ms) * ScaledDuration(time.Millisecond)
}

// Sleep sleeps for dur.
func Sleep(dur ScaledDuration) {
	time.Sleep(time.Duration(dur))
}
