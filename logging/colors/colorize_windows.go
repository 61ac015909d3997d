//go:build windows
// +build windows

package colors

import (
	"os"

	"golang.org/x/sys/windows"
)

// EnableColor will make a kernel call to enable ANSI escape code processing on the stdout console. If the console
// does not support it, coloring stays disabled.
func EnableColor() {
	handle := windows.Handle(os.Stdout.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		enabled = false
		return
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		enabled = true
		return
	}
	enabled = windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
