// Package gwatchdogtest contains an in-memory [gwatchdog.Peripheral]
// for driving a [*gwatchdog.Watchdog] deterministically in tests.
package gwatchdogtest

import (
	"errors"
	"sync"

	"github.com/gordian-engine/gwdt/gwatchdog"
)

// Calls counts the calls made to each [*Peripheral] method,
// whether or not the call succeeded.
type Calls struct {
	Init, Deinit        int
	TaskAdd, TaskRemove int
	Feed                int
}

// Peripheral is a fake watchdog peripheral with no countdown of its own.
// Tests trigger expiry explicitly with [*Peripheral.Expire],
// and inject failures with the Fail methods.
//
// The zero value is ready to use.
type Peripheral struct {
	mu sync.Mutex

	initialized, subscribed bool

	timeoutMs     uint32
	panicOnExpiry bool

	handler gwatchdog.ExpiryHandler

	calls Calls

	initErr, deinitErr, removeErr error
}

var _ gwatchdog.Peripheral = (*Peripheral)(nil)

var errStillSubscribed = errors.New("tasks still subscribed to watchdog")

func (p *Peripheral) Init(timeoutMs uint32, panicOnExpiry bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.Init++
	if p.initErr != nil {
		return p.initErr
	}

	p.initialized = true
	p.timeoutMs = timeoutMs
	p.panicOnExpiry = panicOnExpiry
	return nil
}

func (p *Peripheral) Deinit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.Deinit++
	if p.deinitErr != nil {
		return p.deinitErr
	}
	if !p.initialized {
		return gwatchdog.ErrNotInitialized
	}
	if p.subscribed {
		return errStillSubscribed
	}

	p.initialized = false
	return nil
}

func (p *Peripheral) TaskAdd() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.TaskAdd++
	if p.subscribed {
		return gwatchdog.ErrAlreadySubscribed
	}
	p.subscribed = true
	return nil
}

func (p *Peripheral) TaskRemove() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.TaskRemove++
	if p.removeErr != nil {
		return p.removeErr
	}
	if !p.subscribed {
		return gwatchdog.ErrNotSubscribed
	}
	p.subscribed = false
	return nil
}

func (p *Peripheral) Feed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls.Feed++
}

func (p *Peripheral) SetExpiryHandler(h gwatchdog.ExpiryHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handler = h
}

// Expire simulates the countdown reaching zero
// by calling the registered handler on the calling goroutine.
// Expire panics if no handler was registered.
func (p *Peripheral) Expire() {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()

	if h == nil {
		panic(errors.New("BUG: Expire called before SetExpiryHandler"))
	}

	// The handler calls back into TaskRemove, so the lock must be released.
	h.HandleExpiry(p)
}

// Armed reports whether the countdown would be running:
// initialized, with the task subscribed.
func (p *Peripheral) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.initialized && p.subscribed
}

// Initialized reports whether the peripheral is initialized,
// regardless of the supervision set.
func (p *Peripheral) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.initialized
}

// Programmed returns the arguments of the last successful Init.
func (p *Peripheral) Programmed() (timeoutMs uint32, panicOnExpiry bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.timeoutMs, p.panicOnExpiry
}

// Calls returns a snapshot of the call counts.
func (p *Peripheral) Calls() Calls {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

// FailInit makes subsequent Init calls return err.
// A nil err restores normal behavior.
func (p *Peripheral) FailInit(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initErr = err
}

// FailDeinit makes subsequent Deinit calls return err.
// A nil err restores normal behavior.
func (p *Peripheral) FailDeinit(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.deinitErr = err
}

// FailTaskRemove makes subsequent TaskRemove calls return err,
// including the call made by the expiry handler.
// A nil err restores normal behavior.
func (p *Peripheral) FailTaskRemove(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeErr = err
}
