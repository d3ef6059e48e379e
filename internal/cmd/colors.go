package cmd

import (
	"os"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ANSI color codes for plain terminal output.
// applyColorMode clears them when colors are off.
var (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// colorMode is set by --color: auto, always or never.
var colorMode = "auto"

func enableColors() {
	colorRed = "\033[0;31m"
	colorGreen = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan = "\033[0;36m"
	colorDim = "\033[2m"
	colorBold = "\033[1m"
	colorReset = "\033[0m"
}

func disableColors() {
	colorRed = ""
	colorGreen = ""
	colorYellow = ""
	colorCyan = ""
	colorDim = ""
	colorBold = ""
	colorReset = ""
}

// applyColorMode sets the ANSI codes and the lipgloss profile used by the
// prompts and the command review.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "never":
		disableColors()
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if shouldDisableColors() || !term.IsTerminal(int(os.Stdout.Fd())) {
			disableColors()
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
		enableColors()
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}
}

func shouldDisableColors() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	if os.Getenv("TERM") == "dumb" {
		return true
	}

	if runtime.GOOS == "windows" {
		// Windows Terminal and newer emulators support ANSI
		if os.Getenv("WT_SESSION") != "" {
			return false
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false
		}
		// Disable by default on older Windows consoles
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}

// terminalWidth returns the width of stdout, then $COLUMNS, then 80.
func terminalWidth() int {
	if w := getTermWidthIoctl(int(os.Stdout.Fd())); w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return 80
}
