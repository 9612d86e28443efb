package gwatchdog

import (
	"errors"
	"fmt"
)

// InvalidArgumentError is returned when a value passed to the [*Watchdog]
// is outside its accepted range.
// No hardware call is made before this error is returned.
type InvalidArgumentError struct {
	Name   string
	Value  any
	Reason string
}

func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

// OutOfResourcesError indicates the peripheral could not be initialized,
// for instance because it is already in use or an allocation failed.
// The watchdog configuration is unchanged when this error is returned.
type OutOfResourcesError struct {
	Err error
}

func (e OutOfResourcesError) Error() string {
	return "watchdog peripheral could not be initialized: " + e.Err.Error()
}

func (e OutOfResourcesError) Unwrap() error {
	return e.Err
}

// HardwareError describes a step of the disarm sequence that did not complete.
// Disarm failures are absorbed by the controller and logged,
// so HardwareError is mostly seen in logs and in peripheral implementations.
type HardwareError struct {
	Op  string
	Err error
}

func (e HardwareError) Error() string {
	return "watchdog " + e.Op + " failed: " + e.Err.Error()
}

func (e HardwareError) Unwrap() error {
	return e.Err
}

// ErrNotSubscribed is returned by peripherals from TaskRemove
// when the caller is not in the supervision set.
var ErrNotSubscribed = errors.New("not in watchdog supervision set")

// ErrAlreadySubscribed is returned by peripherals from TaskAdd
// when the caller is already in the supervision set.
var ErrAlreadySubscribed = errors.New("already in watchdog supervision set")

// ErrNotInitialized is returned by peripherals from Deinit
// when the peripheral is not initialized.
var ErrNotInitialized = errors.New("watchdog peripheral not initialized")
