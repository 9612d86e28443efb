//go:build debug

package gwatchdog

import (
	"fmt"

	"github.com/gordian-engine/gwdt/gassert"
)

// invariantArmedMatchesMode asserts that a peripheral
// able to report its armed state agrees with the committed mode.
func invariantArmedMatchesMode(env gassert.Env, p Peripheral, m Mode) {
	if env == nil || !env.Enabled("gwatchdog.controller.armed_matches_mode") {
		return
	}

	a, ok := p.(interface{ Armed() bool })
	if !ok {
		return
	}

	if armed := a.Armed(); armed != m.Armed() {
		env.HandleAssertionFailure(fmt.Errorf(
			"peripheral reports armed=%t but committed mode is %s", armed, m,
		))
	}
}
