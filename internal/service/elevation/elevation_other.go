//go:build !windows

package elevation

import "errors"

// required always reports false: on non-Windows platforms the operator is
// expected to run the tool with sufficient permissions directly.
func required() bool {
	return false
}

// relaunch is never reached on non-Windows platforms.
func relaunch() error {
	return errors.New("privilege relaunch is not supported on this platform")
}
