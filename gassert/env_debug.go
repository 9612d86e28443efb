//go:build debug

package gassert

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Env is an alias to *Environment in debug builds,
// and an empty struct otherwise.
type Env = *Environment

// Environment holds the rules deciding which assertions run.
// Its methods are safe for concurrent use
// once OnlyLogFailures, if used, has been called.
type Environment struct {
	// Wildcard rules, stored without the trailing "*".
	prefixes [][]string

	excludes [][]string
	exacts   [][]string

	// When set, failures are logged instead of panicking.
	log *slog.Logger
}

// EnvironmentFromString parses a comma-separated list of rules.
// The empty string produces an environment with nothing enabled.
func EnvironmentFromString(in string) (*Environment, error) {
	var e Environment
	if in == "" {
		return &e, nil
	}

	var err error
	for _, r := range strings.Split(in, ",") {
		err = errors.Join(err, e.addRule(strings.TrimSpace(r)))
	}
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (e *Environment) addRule(r string) error {
	if r == "" {
		return errors.New("empty assertion rule")
	}

	if strings.HasPrefix(r, "!") {
		x := r[1:]
		if strings.Contains(x, "*") {
			return fmt.Errorf("exclusion rule %q must not contain a wildcard", r)
		}
		parts, err := splitRule(x)
		if err != nil {
			return err
		}
		e.excludes = append(e.excludes, parts)
		return nil
	}

	if r == "*" {
		e.prefixes = append(e.prefixes, nil)
		return nil
	}

	if p, ok := strings.CutSuffix(r, ".*"); ok {
		if strings.Contains(p, "*") {
			return fmt.Errorf("rule %q may only have a wildcard as its final segment", r)
		}
		parts, err := splitRule(p)
		if err != nil {
			return err
		}
		e.prefixes = append(e.prefixes, parts)
		return nil
	}

	if strings.Contains(r, "*") {
		return fmt.Errorf("rule %q may only have a wildcard as its final segment", r)
	}

	parts, err := splitRule(r)
	if err != nil {
		return err
	}
	e.exacts = append(e.exacts, parts)
	return nil
}

func splitRule(r string) ([]string, error) {
	parts := strings.Split(r, ".")
	if slices.Contains(parts, "") {
		return nil, fmt.Errorf("rule %q has an empty segment", r)
	}
	return parts, nil
}

// OnlyLogFailures makes e log assertion failures at Error level to log,
// instead of panicking.
// It must be called before e is shared.
func (e *Environment) OnlyLogFailures(log *slog.Logger) {
	e.log = log
}

// HandleAssertionFailure panics with err,
// or only logs it if [*Environment.OnlyLogFailures] was called.
func (e *Environment) HandleAssertionFailure(err error) {
	if err == nil {
		panic(errors.New("BUG: HandleAssertionFailure called with nil error"))
	}

	if e.log == nil {
		panic(fmt.Errorf("assertion failure: %w", err))
	}

	e.log.Error("Assertion failure", "err", err)
}

// Enabled reports whether the assertion at the given path should run.
// Exclusions take precedence over wildcards.
func (e *Environment) Enabled(path string) bool {
	if len(e.prefixes) == 0 && len(e.exacts) == 0 {
		return false
	}

	parts := strings.Split(path, ".")

	for _, x := range e.excludes {
		if slices.Equal(x, parts) {
			return false
		}
	}

	for _, p := range e.prefixes {
		if len(p) < len(parts) && slices.Equal(p, parts[:len(p)]) {
			return true
		}
	}

	for _, x := range e.exacts {
		if slices.Equal(x, parts) {
			return true
		}
	}

	return false
}
