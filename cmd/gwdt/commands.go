package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/gordian-engine/gwdt/cmd/gwdt/internal/gwcmd"
	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/gordian-engine/gwdt/gwatchdog/gwhttp"
	"github.com/gordian-engine/gwdt/gwatchdog/gwlinux"
	"github.com/gordian-engine/gwdt/gwatchdog/gwmetrics"
	"github.com/gordian-engine/gwdt/gwatchdog/gwsim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the watchdog modes accepted by --mode",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range []struct {
				Mode gwatchdog.Mode
				Desc string
			}{
				{Mode: gwatchdog.ModeDisabled, Desc: "watchdog not running"},
				{Mode: gwatchdog.ModeNotifyOnly, Desc: "report a timeout fault without resetting"},
				{Mode: gwatchdog.ModeResetOnTimeout, Desc: "reset the device on timeout"},
			} {
				if _, err := fmt.Fprintf(out, "%-8s  %s\n", m.Mode, m.Desc); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func NewRunSimCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-sim",
		Short: "Run the watchdog against a simulated peripheral",
		Long: `Run the watchdog against a simulated peripheral.

A reset-mode expiry simulates a device reset:
the watchdog is booted again in the configured mode.
Stop feeding with --feed-interval=0 to watch it expire.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}

			mode, err := gwatchdog.ParseMode(v.GetString(flagMode))
			if err != nil {
				return err
			}

			resets := make(chan struct{}, 1)
			p := gwsim.New(log.With("sys", "sim"), gwsim.Config{
				OnReset: func() {
					select {
					case resets <- struct{}{}:
					default:
					}
				},
			})

			return run(cmd.Context(), log, v, p, runConfig{
				Mode:         mode,
				Resets:       resets,
				RearmOnFault: v.GetBool(flagRearm),
			})
		},
	}

	addFeedFlags(cmd.Flags())
	cmd.Flags().String(flagMode, gwatchdog.ModeNotifyOnly.String(), "watchdog mode (see the modes subcommand)")
	cmd.Flags().Bool(flagRearm, false, "re-enter notify mode after each notify-only timeout")

	return cmd
}

func NewRunLinuxCmd(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-linux",
		Short: "Run the watchdog against a Linux kernel watchdog device",
		Long: `Run the watchdog against a Linux kernel watchdog device.

The kernel resets the machine on expiry, so the watchdog always runs in reset mode.
Interrupting the command disarms the device cleanly.
Killing it any other way leaves the kernel countdown running.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}

			p := gwlinux.New(log.With("sys", "kernel"), v.GetString(flagDevice))

			return run(cmd.Context(), log, v, p, runConfig{
				Mode: gwatchdog.ModeResetOnTimeout,
			})
		},
	}

	addFeedFlags(cmd.Flags())
	cmd.Flags().String(flagDevice, gwlinux.DefaultPath, "path of the kernel watchdog device")

	return cmd
}

type runConfig struct {
	Mode         gwatchdog.Mode
	Resets       <-chan struct{}
	RearmOnFault bool
}

// run arms a watchdog on p and keeps it running until ctx is canceled,
// then disarms it.
func run(
	ctx context.Context,
	log *slog.Logger,
	v *viper.Viper,
	p gwatchdog.Peripheral,
	rc runConfig,
) error {
	feedCfg, feeding := feedConfig(v)
	if feeding && (feedCfg.Jitter < 0 || feedCfg.Jitter >= feedCfg.Interval) {
		return fmt.Errorf(
			"--%s (%s) must be at least zero and less than --%s (%s)",
			flagFeedJitter, feedCfg.Jitter, flagFeedInterval, feedCfg.Interval,
		)
	}

	slot := gwatchdog.NewFaultSlot()
	w, err := gwatchdog.New(
		log.With("sys", "watchdog"), p,
		gwatchdog.WithDefaultTimeout(v.GetFloat64(flagTimeout)),
		gwatchdog.WithFaultSink(slot),
		gwatchdog.WithScheduler(slot),
	)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := gwmetrics.New(reg, w)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := v.GetString(flagHTTPAddr); addr != "" {
		ln, err := (new(net.ListenConfig)).Listen(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen for HTTP: %w", err)
		}
		log.Info("Serving watchdog control", "addr", ln.Addr().String())

		h := gwhttp.NewServer(ctx, log.With("sys", "http"), gwhttp.ServerConfig{
			Listener: ln,
			Watchdog: w,
			Metrics:  reg,
		})
		defer h.Wait()
		defer cancel()
	}

	if err := w.SetMode(rc.Mode); err != nil {
		return fmt.Errorf("failed to arm watchdog: %w", err)
	}

	// Disarm once the feeder and supervisor have stopped.
	defer func() {
		if !w.Deinit() {
			log.Warn("Watchdog still armed at shutdown", "mode", w.Mode())
		}
	}()

	if feeding {
		f := gwatchdog.NewFeeder(ctx, log.With("sys", "feeder"), w, feedCfg)
		defer f.Wait()
		defer cancel()
	} else {
		log.Info("Feeding disabled; the watchdog will expire", "timeout", w.Timeout())
	}

	s := gwcmd.NewSupervisor(ctx, log.With("sys", "supervisor"), gwcmd.SupervisorConfig{
		Watchdog: w,
		Faults:   slot,
		Resets:   rc.Resets,

		BootMode:     rc.Mode,
		RearmOnFault: rc.RearmOnFault,

		Metrics: metrics,
	})
	defer s.Wait()

	<-ctx.Done()
	return nil
}
