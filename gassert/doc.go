// Package gassert provides runtime assertions that are compiled in
// only with the "debug" build tag.
//
// Checking every invariant on every call is too costly for production,
// but when a watchdog misbehaves, turning the checks on
// often points straight at the problem.
// Enabling assertions takes two steps:
// build with "go build -tags debug",
// then construct an [Env] with [EnvironmentFromString]
// (only available in debug builds) and pass it to the components,
// for instance with gwatchdog.WithAssertEnv.
//
// Rules are a comma-separated list of dot-separated paths:
//   - "*" enables every assertion.
//   - "foo.*" enables every assertion below foo, but not foo itself.
//   - "foo.bar" enables exactly that assertion.
//   - "!foo.bar" excludes an exact path from a wildcard rule.
//
// Wildcards may only appear as the final segment.
package gassert
