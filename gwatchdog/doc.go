// Package gwatchdog provides a controller for the single system watchdog timer.
//
// A [*Watchdog] owns the watchdog configuration (a timeout in seconds and a [Mode])
// and translates configuration changes into arm, reprogram, and disarm sequences
// on a [Peripheral].
// While armed, the running system must call [*Watchdog.Feed] more often than the timeout.
// If feeding stops, the peripheral calls the [*Notifier] from its interrupt context.
// The notifier removes the system from the peripheral's supervision set,
// forces the mode to [ModeDisabled], and queues a [TimeoutFault]
// on the configured [FaultSink] for the normal execution context to observe.
//
// In [ModeResetOnTimeout], the peripheral resets the device on expiry,
// so the software state afterwards is irrelevant.
//
// Exactly one Watchdog should exist per process, constructed at startup
// and passed by reference to every call site.
package gwatchdog
