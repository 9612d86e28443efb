// Package gwlinux drives a Linux kernel watchdog device, such as /dev/watchdog,
// as a [gwatchdog.Peripheral].
//
// Kernel watchdogs reset the machine on expiry and have no way
// to notify userspace first, so only [gwatchdog.ModeResetOnTimeout] is supported.
// Arming in notify mode fails with [ErrNotifyUnsupported].
//
// The kernel countdown runs from the moment the device is opened.
// The supervision set is this process alone:
// Feed only pets the device while the task is subscribed.
package gwlinux

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gordian-engine/gwdt/gwatchdog"
)

// DefaultPath is the conventional path of the first kernel watchdog.
const DefaultPath = "/dev/watchdog"

// ErrNotifyUnsupported is returned from Init when panic-on-expiry is not set.
var ErrNotifyUnsupported = errors.New("kernel watchdog cannot notify without resetting")

var errStillSubscribed = errors.New("cannot close watchdog device with subscribed task")

// Device is a kernel watchdog device.
type Device struct {
	log  *slog.Logger
	path string

	mu sync.Mutex

	// Nil until the first successful Init.
	f          *os.File
	subscribed bool
}

var _ gwatchdog.Peripheral = (*Device)(nil)

// New returns a Device for the watchdog at path.
// The device is not opened until Init.
func New(log *slog.Logger, path string) *Device {
	return &Device{
		log:  log,
		path: path,
	}
}

// Init opens the device if needed, sets its timeout rounded up to whole seconds,
// and pets it so the countdown starts at the new timeout.
func (d *Device) Init(timeoutMs uint32, panicOnExpiry bool) error {
	if !panicOnExpiry {
		return ErrNotifyUnsupported
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	opened := false
	if d.f == nil {
		f, err := os.OpenFile(d.path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("failed to open watchdog device: %w", err)
		}
		d.f = f
		opened = true
	}

	secs := int((uint64(timeoutMs) + 999) / 1000)
	if err := setTimeout(d.f, secs); err != nil {
		if opened {
			// Leave the device as we found it.
			d.closeLocked()
		}
		return fmt.Errorf("failed to set watchdog timeout to %ds: %w", secs, err)
	}

	if err := keepalive(d.f); err != nil {
		d.log.Warn("Failed to pet watchdog after setting timeout", "err", err)
	}

	d.log.Info("Armed kernel watchdog", "path", d.path, "timeout_s", secs)
	return nil
}

// Deinit writes the magic close character and closes the device,
// which stops the kernel countdown on drivers without nowayout.
func (d *Device) Deinit() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil {
		return gwatchdog.ErrNotInitialized
	}
	if d.subscribed {
		return errStillSubscribed
	}

	return d.closeLocked()
}

func (d *Device) closeLocked() error {
	var err error
	if _, werr := d.f.Write([]byte("V")); werr != nil {
		err = fmt.Errorf("failed to write magic close: %w", werr)
	}
	err = errors.Join(err, d.f.Close())
	d.f = nil
	return err
}

func (d *Device) TaskAdd() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.subscribed {
		return gwatchdog.ErrAlreadySubscribed
	}
	d.subscribed = true
	return nil
}

func (d *Device) TaskRemove() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.subscribed {
		return gwatchdog.ErrNotSubscribed
	}
	d.subscribed = false
	return nil
}

func (d *Device) Feed() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.f == nil || !d.subscribed {
		return
	}

	if err := keepalive(d.f); err != nil {
		d.log.Warn("Failed to pet watchdog", "err", err)
	}
}

// SetExpiryHandler is a no-op: the kernel resets the machine
// without any notification reaching this process.
func (d *Device) SetExpiryHandler(gwatchdog.ExpiryHandler) {}

// Armed reports whether the device is open with the task subscribed.
func (d *Device) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.f != nil && d.subscribed
}
