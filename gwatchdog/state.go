package gwatchdog

import (
	"fmt"
	"math"
	"sync/atomic"
)

// DefaultTimeout is the timeout, in seconds, of a newly constructed [*Watchdog].
const DefaultTimeout = 5.0

// MaxTimeout is math.MaxUint32 milliseconds, expressed in seconds.
// Timeouts whose millisecond count exceeds math.MaxUint32 are rejected.
const MaxTimeout = float64(math.MaxUint32) / 1000

// config is the single watchdog configuration.
// Both fields are atomics so that readers, including the notifier,
// never observe a torn value.
// Writes to timeoutBits only happen under the mask.
type config struct {
	timeoutBits atomic.Uint64
	mode        atomic.Uint32
}

func (c *config) Timeout() float64 {
	return math.Float64frombits(c.timeoutBits.Load())
}

func (c *config) setTimeout(t float64) {
	c.timeoutBits.Store(math.Float64bits(t))
}

func (c *config) Mode() Mode {
	return Mode(c.mode.Load())
}

func (c *config) setMode(m Mode) {
	c.mode.Store(uint32(m))
}

// validateTimeout reports an [InvalidArgumentError]
// if t, in seconds, cannot be programmed into the peripheral.
func validateTimeout(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		return InvalidArgumentError{
			Name:   "timeout",
			Value:  t,
			Reason: "must be a positive, finite number of seconds",
		}
	}

	if t*1000 > math.MaxUint32 {
		return InvalidArgumentError{
			Name:   "timeout",
			Value:  t,
			Reason: fmt.Sprintf("must be <= %g seconds", MaxTimeout),
		}
	}

	return nil
}

// millis converts a validated timeout to whole milliseconds.
// Sub-millisecond timeouts round up to one millisecond.
func millis(t float64) uint32 {
	ms := t * 1000
	if ms < 1 {
		return 1
	}
	return uint32(ms)
}
