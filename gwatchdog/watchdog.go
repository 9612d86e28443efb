package gwatchdog

import (
	"errors"
	"log/slog"
	"math"

	"github.com/gordian-engine/gwdt/gassert"
)

// Watchdog controls the single system watchdog.
//
// Mutating methods are serialized with each other and with the [*Notifier],
// so a Watchdog may be shared across goroutines.
// [*Watchdog.Timeout], [*Watchdog.Mode], and [*Watchdog.Feed] never block.
type Watchdog struct {
	log *slog.Logger

	p Peripheral

	mask mask
	cfg  config

	notifier *Notifier

	assertEnv gassert.Env
}

// New returns the Watchdog driving p, in [ModeDisabled].
// It registers the watchdog's [*Notifier] as p's expiry handler.
//
// The [WithFaultSink] option is required.
func New(log *slog.Logger, p Peripheral, opts ...Opt) (*Watchdog, error) {
	if p == nil {
		return nil, errors.New("gwatchdog.New: peripheral must not be nil")
	}

	s := settings{
		timeout: DefaultTimeout,
	}

	var err error
	for _, opt := range opts {
		err = errors.Join(err, opt(&s))
	}
	if err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	w := &Watchdog{
		log:       log,
		p:         p,
		assertEnv: s.assertEnv,
	}
	w.cfg.setTimeout(s.timeout)
	w.cfg.setMode(ModeDisabled)

	w.notifier = &Notifier{
		log:   log.With("sys", "notifier"),
		mask:  &w.mask,
		cfg:   &w.cfg,
		sink:  s.sink,
		sched: s.sched,
	}
	p.SetExpiryHandler(w.notifier)

	return w, nil
}

// Notifier returns the expiry handler registered on the peripheral.
func (w *Watchdog) Notifier() *Notifier {
	return w.notifier
}

// Timeout returns the configured timeout, in seconds.
func (w *Watchdog) Timeout() float64 {
	return w.cfg.Timeout()
}

// SetTimeout sets the timeout, in seconds.
//
// Setting the exact current value is a no-op and does not touch the peripheral.
// An out of range value returns an [InvalidArgumentError].
// If the watchdog is armed, the peripheral is reprogrammed with the new timeout
// under the current mode, restarting the countdown;
// if that fails, an [OutOfResourcesError] is returned and the old timeout is kept.
func (w *Watchdog) SetTimeout(t float64) error {
	w.mask.Disable()
	defer w.mask.Restore()

	prev := w.cfg.Timeout()
	if math.Float64bits(t) == math.Float64bits(prev) {
		return nil
	}

	if err := validateTimeout(t); err != nil {
		return err
	}

	mode := w.cfg.Mode()
	if mode.Armed() {
		if err := w.arm(t, mode); err != nil {
			return err
		}
	}

	w.cfg.setTimeout(t)
	w.log.Debug("Watchdog timeout changed", "prev", prev, "timeout", t, "mode", mode)
	return nil
}

// Mode returns the current mode.
func (w *Watchdog) Mode() Mode {
	return w.cfg.Mode()
}

// SetMode transitions the watchdog to m.
//
// Setting the current mode is a no-op.
// Arming, or switching between armed modes, programs the peripheral
// with the current timeout; on failure an [OutOfResourcesError] is returned
// and the mode is unchanged.
//
// Disarming only commits [ModeDisabled] if the peripheral confirms
// both the supervision remove and the deinitialization.
// Otherwise the watchdog stays in its armed mode and SetMode still returns nil;
// check [*Watchdog.Mode] (or use [*Watchdog.Deinit]) to observe the outcome.
func (w *Watchdog) SetMode(m Mode) error {
	if !m.Valid() {
		return InvalidArgumentError{
			Name:   "mode",
			Value:  uint32(m),
			Reason: "unknown mode",
		}
	}

	w.mask.Disable()
	defer w.mask.Restore()

	prev := w.cfg.Mode()
	if m == prev {
		return nil
	}

	switch m {
	case ModeDisabled:
		outcome, err := w.disarm()
		switch outcome {
		case disarmed:
			// Okay.
		case disarmRemoveFailed, disarmDeinitFailed:
			w.log.Warn(
				"Watchdog disarm did not complete; staying armed",
				"mode", prev, "outcome", outcome, "err", err,
			)
			return nil
		default:
			panic(errors.New("BUG: unhandled disarm outcome " + outcome.String()))
		}

	case ModeNotifyOnly, ModeResetOnTimeout:
		if err := w.arm(w.cfg.Timeout(), m); err != nil {
			return err
		}
	}

	w.cfg.setMode(m)
	w.log.Info("Watchdog mode changed", "prev", prev, "mode", m, "timeout", w.cfg.Timeout())

	invariantArmedMatchesMode(w.assertEnv, w.p, m)
	return nil
}

// Deinit disarms the watchdog, as SetMode(ModeDisabled) does,
// and reports whether the watchdog is disabled afterwards.
func (w *Watchdog) Deinit() bool {
	// SetMode never returns an error for ModeDisabled.
	_ = w.SetMode(ModeDisabled)
	return w.Mode() == ModeDisabled
}

// Feed resets the peripheral countdown to the full timeout.
// Feeding a disabled watchdog has no effect at the hardware level.
func (w *Watchdog) Feed() {
	w.p.Feed()
}

// arm programs the peripheral with timeout t under mode m.
// It must be called while holding the mask.
func (w *Watchdog) arm(t float64, m Mode) error {
	ms := millis(t)
	if err := w.p.Init(ms, m.PanicOnExpiry()); err != nil {
		w.log.Warn("Failed to initialize watchdog peripheral", "timeout_ms", ms, "mode", m, "err", err)
		return OutOfResourcesError{Err: err}
	}

	// Reprogramming an armed watchdog leaves the task subscribed,
	// so an add error is expected there and harmless elsewhere.
	if err := w.p.TaskAdd(); err != nil {
		w.log.Debug("Ignoring watchdog task add error", "err", err)
	}

	return nil
}

// disarmOutcome is the result of the disarm sequence.
// Only disarmed permits committing [ModeDisabled].
type disarmOutcome uint8

const (
	disarmed disarmOutcome = iota
	disarmRemoveFailed
	disarmDeinitFailed
)

func (o disarmOutcome) String() string {
	switch o {
	case disarmed:
		return "disarmed"
	case disarmRemoveFailed:
		return "remove_failed"
	case disarmDeinitFailed:
		return "deinit_failed"
	default:
		return "unknown"
	}
}

// disarm removes the task from supervision, then deinitializes the peripheral.
// It must be called while holding the mask.
func (w *Watchdog) disarm() (disarmOutcome, error) {
	if err := w.p.TaskRemove(); err != nil {
		return disarmRemoveFailed, HardwareError{Op: "task remove", Err: err}
	}

	if err := w.p.Deinit(); err != nil {
		return disarmDeinitFailed, HardwareError{Op: "deinit", Err: err}
	}

	return disarmed, nil
}
