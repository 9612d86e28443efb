package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gordian-engine/gwdt/gwatchdog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	flagTimeout      = "timeout"
	flagMode         = "mode"
	flagHTTPAddr     = "http-addr"
	flagFeedInterval = "feed-interval"
	flagFeedJitter   = "feed-jitter"
	flagRearm        = "rearm-on-fault"
	flagDevice       = "device"
)

// addFeedFlags registers the flags shared by the run commands.
func addFeedFlags(fs *pflag.FlagSet) {
	fs.Float64(flagTimeout, gwatchdog.DefaultTimeout, "watchdog timeout in seconds")
	fs.String(flagHTTPAddr, "127.0.0.1:9180", "listen address of the HTTP control surface; empty to disable")
	fs.Duration(flagFeedInterval, time.Second, "interval between feeds; zero to never feed")
	fs.Duration(flagFeedJitter, 100*time.Millisecond, "maximum random offset applied to each feed interval")
}

// newViper returns a viper instance reading fs, with GWDT_ environment overrides.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("GWDT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// feedConfig returns the feeder configuration from v,
// and false if feeding is turned off.
func feedConfig(v *viper.Viper) (gwatchdog.FeederConfig, bool) {
	cfg := gwatchdog.FeederConfig{
		Interval: v.GetDuration(flagFeedInterval),
		Jitter:   v.GetDuration(flagFeedJitter),
	}
	return cfg, cfg.Interval > 0
}
