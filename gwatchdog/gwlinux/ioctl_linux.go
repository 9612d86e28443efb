//go:build linux

package gwlinux

import (
	"os"

	"golang.org/x/sys/unix"
)

func setTimeout(f *os.File, secs int) error {
	return unix.IoctlSetPointerInt(int(f.Fd()), unix.WDIOC_SETTIMEOUT, secs)
}

func keepalive(f *os.File) error {
	return unix.IoctlWatchdogKeepalive(int(f.Fd()))
}
