package gtest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a *slog.Logger that writes through t.Log.
func NewLogger(t testing.TB) *slog.Logger {
	// Tests depend on gtest rather than on slogt directly.
	return slogt.New(t, slogt.Text())
}
