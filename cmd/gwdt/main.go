// Command gwdt runs the watchdog controller
// against a simulated peripheral or a Linux kernel watchdog device.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	if err := mainE(); err != nil {
		os.Exit(1)
	}
}

func mainE() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	root := NewRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Info("Failure", "err", err)
		os.Stderr.Sync()
		return err
	}

	return nil
}

func NewRootCmd(log *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use: "gwdt SUBCOMMAND",

		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},

		Long: `gwdt arms a watchdog timer and keeps it fed.

Run against an in-process simulated peripheral with:
    $ gwdt run-sim --mode notify --timeout 2.5

or against the kernel watchdog, which can only reset the machine:
    $ gwdt run-linux --device /dev/watchdog --timeout 30

Every flag may also be set through a GWDT_ environment variable,
for example GWDT_FEED_INTERVAL=500ms.
`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug|info|warn|error)")

	rootCmd.AddCommand(
		NewModesCmd(),
		NewRunSimCmd(log),
		NewRunLinuxCmd(log),
	)

	return rootCmd
}
