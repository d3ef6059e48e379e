//go:build windows

package cmd

// getTermWidthIoctl returns 0 on Windows; terminalWidth falls back to $COLUMNS.
func getTermWidthIoctl(int) int {
	return 0
}
