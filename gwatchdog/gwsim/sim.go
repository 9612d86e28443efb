// Package gwsim provides a software simulation of a task watchdog peripheral.
//
// The simulated countdown runs while the peripheral is initialized
// and the task is subscribed.
// Init, TaskAdd, and Feed restart the countdown at the full timeout.
// When the countdown reaches zero, the expiry handler is called
// from the countdown goroutine; if panic-on-expiry was set,
// the configured reset callback runs afterwards
// to stand in for a hard reset of the device.
//
// After an expiry the countdown stays stopped
// until it is fed or reprogrammed.
package gwsim

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gordian-engine/gwdt/gwatchdog"
)

// Config is the configuration for [New].
type Config struct {
	// OnReset, if set, is called after an expiry in panic-on-expiry mode.
	// It is called from the countdown goroutine.
	OnReset func()
}

// Peripheral is the simulated watchdog.
// All methods are safe for concurrent use.
type Peripheral struct {
	log *slog.Logger

	onReset func()

	mu sync.Mutex

	initialized, subscribed bool

	timeout       time.Duration
	panicOnExpiry bool

	// Incremented on every countdown restart or stop,
	// so a timer that fired late can tell it was superseded.
	epoch uint64
	timer *time.Timer

	handler gwatchdog.ExpiryHandler

	expiries, resets int
}

var _ gwatchdog.Peripheral = (*Peripheral)(nil)

var errStillSubscribed = errors.New("cannot deinitialize watchdog with subscribed tasks")

// New returns a simulated peripheral, not yet initialized.
func New(log *slog.Logger, cfg Config) *Peripheral {
	return &Peripheral{
		log:     log,
		onReset: cfg.OnReset,
	}
}

func (p *Peripheral) Init(timeoutMs uint32, panicOnExpiry bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initialized = true
	p.timeout = time.Duration(timeoutMs) * time.Millisecond
	p.panicOnExpiry = panicOnExpiry
	p.restart()

	p.log.Debug("Initialized simulated watchdog", "timeout_ms", timeoutMs, "panic_on_expiry", panicOnExpiry)
	return nil
}

func (p *Peripheral) Deinit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return gwatchdog.ErrNotInitialized
	}
	if p.subscribed {
		return errStillSubscribed
	}

	p.initialized = false
	p.restart()
	return nil
}

func (p *Peripheral) TaskAdd() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subscribed {
		return gwatchdog.ErrAlreadySubscribed
	}

	p.subscribed = true
	p.restart()
	return nil
}

func (p *Peripheral) TaskRemove() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.subscribed {
		return gwatchdog.ErrNotSubscribed
	}

	p.subscribed = false
	p.restart()
	return nil
}

func (p *Peripheral) Feed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized && p.subscribed {
		p.restart()
	}
}

func (p *Peripheral) SetExpiryHandler(h gwatchdog.ExpiryHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handler = h
}

// Armed reports whether the peripheral is initialized with the task subscribed.
// An expired countdown stays armed until the expiry handler removes the task.
func (p *Peripheral) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.initialized && p.subscribed
}

// Expiries reports how many times the countdown has expired.
func (p *Peripheral) Expiries() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.expiries
}

// Resets reports how many simulated device resets have happened.
func (p *Peripheral) Resets() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.resets
}

// restart stops any running countdown and,
// if initialized with a subscribed task, starts a new one.
// It must be called with p.mu held.
func (p *Peripheral) restart() {
	p.epoch++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	if !p.initialized || !p.subscribed {
		return
	}

	epoch := p.epoch
	p.timer = time.AfterFunc(p.timeout, func() {
		p.expire(epoch)
	})
}

func (p *Peripheral) expire(epoch uint64) {
	p.mu.Lock()
	if epoch != p.epoch {
		// Fed, reprogrammed, or stopped after the timer fired.
		p.mu.Unlock()
		return
	}

	p.timer = nil
	p.expiries++
	h := p.handler
	reset := p.panicOnExpiry
	if reset {
		p.resets++
	}
	p.mu.Unlock()

	p.log.Info("Simulated watchdog expired", "panic_on_expiry", reset)

	// The handler calls TaskRemove, so p.mu must not be held here.
	if h != nil {
		h.HandleExpiry(p)
	}

	if reset {
		p.log.Warn("Simulated device reset")
		if p.onReset != nil {
			p.onReset()
		}
	}
}
