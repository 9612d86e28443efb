package gwatchdog

// Peripheral is the hardware abstraction over the watchdog timer.
//
// Methods other than TaskRemove and Feed are only called from the [*Watchdog]
// while it holds its critical section,
// so a Peripheral must never invoke its [ExpiryHandler] synchronously
// from inside one of its own methods.
// Expiry must be delivered from the peripheral's own goroutine, or equivalent.
type Peripheral interface {
	ISRSafe

	// Init arms the watchdog, or reprograms it in place if already armed.
	// The countdown restarts at the full timeoutMs.
	// When panicOnExpiry is set, expiry resets the device.
	Init(timeoutMs uint32, panicOnExpiry bool) error

	// Deinit fully powers down the watchdog.
	// Deinit is not safe to call from the expiry handler.
	Deinit() error

	// TaskAdd adds the calling system to the supervision set.
	TaskAdd() error

	// Feed resets the countdown to its configured timeout.
	Feed()

	// SetExpiryHandler registers the handler to call when the countdown expires.
	// The Watchdog calls this once, during [New].
	SetExpiryHandler(h ExpiryHandler)
}

// ISRSafe is the subset of peripheral operations
// that may be called from the expiry interrupt context.
type ISRSafe interface {
	// TaskRemove removes the calling system from the supervision set.
	// It must succeed before Deinit may be called.
	TaskRemove() error
}

// ExpiryHandler is called by a [Peripheral] when an armed countdown reaches zero.
// The handler is only given the [ISRSafe] capability.
type ExpiryHandler interface {
	HandleExpiry(isr ISRSafe)
}

// FaultSink receives the timeout fault signal.
// Only the latest fault is retained until consumption.
type FaultSink interface {
	QueueFault(f TimeoutFault)
}

// Scheduler is an optional cooperative scheduling layer
// that can be nudged to observe a pending fault promptly.
type Scheduler interface {
	MarkPending()
}
