package gwatchdog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Feedable is the part of [*Watchdog] used by a [*Feeder].
type Feedable interface {
	Feed()
}

type FeederConfig struct {
	// The feeder calls Feed every Interval + [-Jitter, +Jitter) duration.
	// The jitter range is uniformly distributed.
	// Interval + Jitter must stay below the watchdog timeout
	// for the watchdog to never expire.
	Interval, Jitter time.Duration
}

func (c FeederConfig) validate() error {
	var err error

	if c.Interval <= 0 {
		err = errors.Join(err, errors.New("FeederConfig.Interval must be positive"))
	}

	if c.Jitter < 0 {
		err = errors.Join(err, errors.New("FeederConfig.Jitter must not be negative"))
	}

	if c.Jitter >= c.Interval {
		err = errors.Join(err, errors.New("FeederConfig.Jitter must be less than FeederConfig.Interval"))
	}

	return err
}

// Feeder feeds a watchdog on an interval from its own goroutine,
// until the context passed to [NewFeeder] is canceled.
type Feeder struct {
	done chan struct{}
}

// NewFeeder starts feeding w according to cfg.
// NewFeeder panics if cfg is invalid.
func NewFeeder(ctx context.Context, log *slog.Logger, w Feedable, cfg FeederConfig) *Feeder {
	if err := cfg.validate(); err != nil {
		panic(fmt.Errorf("gwatchdog.NewFeeder: FeederConfig is invalid: %w", err))
	}

	f := &Feeder{
		done: make(chan struct{}),
	}
	go f.run(ctx, log, w, cfg)
	return f
}

// Wait blocks until f's goroutine has stopped.
func (f *Feeder) Wait() {
	<-f.done
}

func (f *Feeder) run(ctx context.Context, log *slog.Logger, w Feedable, cfg FeederConfig) {
	defer close(f.done)

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	for {
		d := cfg.Interval
		if cfg.Jitter > 0 {
			d += time.Duration(rng.Int64N(int64(2*cfg.Jitter)) - int64(cfg.Jitter))
		}

		timer := time.NewTimer(d)

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Debug("Stopping feeder", "cause", context.Cause(ctx))
			return
		case <-timer.C:
			w.Feed()
		}
	}
}
