package gwatchdog

import "sync"

// mask is the critical section shared by controller mutations and the [*Notifier].
//
// Holding the mask stands in for masking the watchdog expiry interrupt:
// an expiry that arrives while the mask is held is delivered after Restore,
// so the notifier never runs between "reprogram hardware" and "commit mode".
// Every section guarded by the mask is bounded and performs no I/O waits.
type mask struct {
	mu sync.Mutex
}

func (m *mask) Disable() {
	m.mu.Lock()
}

func (m *mask) Restore() {
	m.mu.Unlock()
}
