//go:build !debug

package gasserttest

import "github.com/gordian-engine/gwdt/gassert"

// DefaultEnv returns the no-op Env, in non-debug builds.
func DefaultEnv() gassert.Env {
	return gassert.Env{}
}
