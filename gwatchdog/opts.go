package gwatchdog

import (
	"errors"

	"github.com/gordian-engine/gwdt/gassert"
)

// Opt is an option for [New].
type Opt func(*settings) error

type settings struct {
	timeout float64

	sink  FaultSink
	sched Scheduler

	assertEnv gassert.Env
}

func (s settings) validate() error {
	var err error

	if s.sink == nil {
		err = errors.Join(err, errors.New("no fault sink set (use WithFaultSink)"))
	}

	return err
}

// WithDefaultTimeout sets the initial timeout, in seconds,
// in place of [DefaultTimeout].
func WithDefaultTimeout(t float64) Opt {
	return func(s *settings) error {
		if err := validateTimeout(t); err != nil {
			return err
		}
		s.timeout = t
		return nil
	}
}

// WithFaultSink sets where the notifier queues timeout faults.
// This option is required.
func WithFaultSink(sink FaultSink) Opt {
	return func(s *settings) error {
		s.sink = sink
		return nil
	}
}

// WithScheduler sets the cooperative scheduler to nudge after queuing a fault.
// This option is optional; a [*FaultSlot] may serve as both sink and scheduler.
func WithScheduler(sched Scheduler) Opt {
	return func(s *settings) error {
		s.sched = sched
		return nil
	}
}

// WithAssertEnv sets the assertion environment.
// It only has an effect in builds with the "debug" tag.
func WithAssertEnv(env gassert.Env) Opt {
	return func(s *settings) error {
		s.assertEnv = env
		return nil
	}
}
