//go:build debug

package gasserttest

import "github.com/gordian-engine/gwdt/gassert"

// DefaultEnv returns an assertion environment with every assertion enabled.
func DefaultEnv() gassert.Env {
	env, err := gassert.EnvironmentFromString("*")
	if err != nil {
		panic(err)
	}
	return env
}
