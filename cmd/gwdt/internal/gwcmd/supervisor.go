package gwcmd

import (
	"context"
	"log/slog"

	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/gordian-engine/gwdt/gwatchdog/gwmetrics"
)

// Supervisor is the normal-context side of a running watchdog.
// It reports queued timeout faults
// and boots the watchdog again after a simulated reset.
type Supervisor struct {
	log *slog.Logger

	done chan struct{}
}

type SupervisorConfig struct {
	Watchdog *gwatchdog.Watchdog
	Faults   *gwatchdog.FaultSlot

	// Signaled once per simulated device reset.
	// May be nil when the peripheral never resets in-process.
	Resets <-chan struct{}

	// Mode set on the watchdog after each reset.
	BootMode gwatchdog.Mode

	// Whether to re-enter the faulted mode after handling a notify-only fault.
	RearmOnFault bool

	// Optional.
	Metrics *gwmetrics.Metrics
}

func NewSupervisor(ctx context.Context, log *slog.Logger, cfg SupervisorConfig) *Supervisor {
	s := &Supervisor{
		log:  log,
		done: make(chan struct{}),
	}
	go s.background(ctx, cfg)
	return s
}

func (s *Supervisor) background(ctx context.Context, cfg SupervisorConfig) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopping due to context cancellation", "cause", context.Cause(ctx))
			return

		case <-cfg.Faults.Pending():
			f, ok := cfg.Faults.Take()
			if !ok {
				continue
			}
			s.log.Warn("Watchdog timed out", "fault", f)
			if cfg.Metrics != nil {
				cfg.Metrics.ObserveFault(f)
			}

			if f.Mode == gwatchdog.ModeNotifyOnly && cfg.RearmOnFault {
				s.setMode(cfg.Watchdog, f.Mode)
			}

		case <-cfg.Resets:
			s.log.Warn("Rebooting after watchdog reset", "boot_mode", cfg.BootMode)
			s.setMode(cfg.Watchdog, cfg.BootMode)
		}
	}
}

func (s *Supervisor) setMode(w *gwatchdog.Watchdog, m gwatchdog.Mode) {
	if err := w.SetMode(m); err != nil {
		s.log.Error("Failed to set watchdog mode", "mode", m, "err", err)
		return
	}
	s.log.Info("Watchdog armed", "mode", w.Mode(), "timeout", w.Timeout())
}

func (s *Supervisor) Wait() {
	<-s.done
}
