//go:build windows

package utils

import (
	"errors"
	"os"
	"syscall"
)

// ERROR_NOT_SAME_DEVICE
const errNotSameDevice = syscall.Errno(17)

func isEXDEV(err error) bool {
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, errNotSameDevice)
}
