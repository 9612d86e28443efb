package gwatchdog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Mode is the operating mode of the watchdog.
type Mode uint32

const (
	// ModeDisabled means the peripheral is not armed.
	ModeDisabled Mode = iota

	// ModeNotifyOnly arms the peripheral so that expiry
	// queues a [TimeoutFault] instead of resetting the device.
	ModeNotifyOnly

	// ModeResetOnTimeout arms the peripheral with panic-on-expiry set,
	// so that expiry performs a hard reset of the device.
	ModeResetOnTimeout
)

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeNotifyOnly:
		return "notify"
	case ModeResetOnTimeout:
		return "reset"
	default:
		return fmt.Sprintf("Mode(%d)", uint32(m))
	}
}

func (m Mode) LogValue() slog.Value {
	return slog.StringValue(m.String())
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m <= ModeResetOnTimeout
}

// Armed reports whether m requires the peripheral to be armed.
func (m Mode) Armed() bool {
	return m == ModeNotifyOnly || m == ModeResetOnTimeout
}

// PanicOnExpiry reports the hardware panic-on-expiry flag for m.
func (m Mode) PanicOnExpiry() bool {
	return m == ModeResetOnTimeout
}

// ParseMode parses a mode name, case-insensitively.
// Besides the names produced by [Mode.String],
// it accepts "none" for [ModeDisabled] and "raise" for [ModeNotifyOnly].
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "none":
		return ModeDisabled, nil
	case "notify", "raise":
		return ModeNotifyOnly, nil
	case "reset":
		return ModeResetOnTimeout, nil
	}

	return 0, InvalidArgumentError{
		Name:   "mode",
		Value:  s,
		Reason: "must be one of disabled, notify, or reset",
	}
}
