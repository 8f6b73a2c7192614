//go:build windows

package elevation

import (
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// required reports whether the process lacks the elevated token needed to
// write under Program Files.
func required() bool {
	return !windows.GetCurrentProcessToken().IsElevated()
}

// relaunch starts the same binary with the same arguments through the
// "runas" verb, which triggers the UAC elevation prompt.
func relaunch() error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}

	verb, err := syscall.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}

	file, err := syscall.UTF16PtrFromString(executable)
	if err != nil {
		return err
	}

	args, err := syscall.UTF16PtrFromString(strings.Join(os.Args[1:], " "))
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	directory, err := syscall.UTF16PtrFromString(cwd)
	if err != nil {
		return err
	}

	return windows.ShellExecute(0, verb, file, args, directory, windows.SW_NORMAL)
}
