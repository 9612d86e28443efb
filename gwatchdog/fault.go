package gwatchdog

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// TimeoutFault is the signal queued by the [*Notifier] when the countdown expires.
// It implements error so that the consuming context can raise it directly.
type TimeoutFault struct {
	// The mode the watchdog was in when it expired.
	Mode Mode

	// The configured timeout, in seconds, at expiry.
	Timeout float64
}

func (f TimeoutFault) Error() string {
	return fmt.Sprintf("watchdog timeout after %gs (mode %s)", f.Timeout, f.Mode)
}

func (f TimeoutFault) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", f.Mode.String()),
		slog.Float64("timeout", f.Timeout),
	)
}

// FaultSlot is a single-slot [FaultSink] and [Scheduler].
//
// The notifier is the only writer and the scheduling context the only reader.
// A fault queued before the previous one was taken overwrites it,
// so the consumer observes at most one fault per [*FaultSlot.Take].
type FaultSlot struct {
	fault atomic.Pointer[TimeoutFault]

	// 1-buffered; a value present means the consumer has pending work.
	pending chan struct{}
}

func NewFaultSlot() *FaultSlot {
	return &FaultSlot{
		pending: make(chan struct{}, 1),
	}
}

// QueueFault stores f, replacing any fault not yet taken.
func (s *FaultSlot) QueueFault(f TimeoutFault) {
	s.fault.Store(&f)
}

// MarkPending signals [*FaultSlot.Pending] if the consumer is idle.
// It never blocks.
func (s *FaultSlot) MarkPending() {
	select {
	case s.pending <- struct{}{}:
	default:
		// Already pending.
	}
}

// Pending returns a channel that receives a value
// when a fault is queued while the consumer is idle.
// A receive from Pending should be followed by [*FaultSlot.Take].
func (s *FaultSlot) Pending() <-chan struct{} {
	return s.pending
}

// Take consumes the queued fault, if any.
func (s *FaultSlot) Take() (TimeoutFault, bool) {
	f := s.fault.Swap(nil)
	if f == nil {
		return TimeoutFault{}, false
	}
	return *f, true
}
