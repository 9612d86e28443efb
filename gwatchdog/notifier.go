package gwatchdog

import "log/slog"

// Notifier is the [ExpiryHandler] registered by [New] on the peripheral.
//
// It only performs operations that are safe in interrupt context:
// the supervision remove offered by [ISRSafe], an atomic store of the mode,
// and a push into the [FaultSink].
// It never fully deinitializes the peripheral.
type Notifier struct {
	log *slog.Logger

	mask *mask
	cfg  *config

	sink  FaultSink
	sched Scheduler
}

// HandleExpiry reconciles the watchdog state with an expired countdown
// and hands a [TimeoutFault] to the normal execution context.
func (n *Notifier) HandleExpiry(isr ISRSafe) {
	n.mask.Disable()
	defer n.mask.Restore()

	mode := n.cfg.Mode()
	if mode == ModeDisabled {
		// The controller disarmed the watchdog while this expiry was masked.
		n.log.Debug("Dropping expiry of disarmed watchdog")
		return
	}

	// Best effort; without a confirmed remove the mode is left alone.
	if err := isr.TaskRemove(); err != nil {
		n.log.Warn("Failed to remove task from watchdog supervision on expiry", "mode", mode, "err", err)
	} else {
		n.cfg.setMode(ModeDisabled)
	}

	n.sink.QueueFault(TimeoutFault{
		Mode:    mode,
		Timeout: n.cfg.Timeout(),
	})

	if n.sched != nil {
		n.sched.MarkPending()
	}
}
