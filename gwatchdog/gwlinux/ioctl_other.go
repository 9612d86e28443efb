//go:build !linux

package gwlinux

import (
	"errors"
	"os"
)

func setTimeout(*os.File, int) error {
	return errors.ErrUnsupported
}

func keepalive(*os.File) error {
	return errors.ErrUnsupported
}
