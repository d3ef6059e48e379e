//go:build !windows

package cmd

import "golang.org/x/sys/unix"

// getTermWidthIoctl returns the width of the terminal on fd, or 0 if fd is
// not a terminal.
func getTermWidthIoctl(fd int) int {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0
	}
	return int(ws.Col)
}
