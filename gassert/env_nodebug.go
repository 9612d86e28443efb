//go:build !debug

package gassert

// Env is the assertion environment.
//
// Components supporting assertions accept a gassert.Env.
// In non-debug builds it is an empty struct with no methods,
// so code that evaluates assertions must itself be guarded
// by the "debug" build tag.
type Env struct{}
