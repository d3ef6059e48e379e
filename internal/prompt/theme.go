package prompt

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// HelpMode controls when the navigation tip is shown.
type HelpMode string

const (
	HelpAuto   HelpMode = "auto"   // Until the cursor first leaves the top item
	HelpAlways HelpMode = "always" // On every render
	HelpNever  HelpMode = "never"
)

// ParseHelpMode validates a help mode string.
func ParseHelpMode(s string) (HelpMode, error) {
	switch HelpMode(s) {
	case HelpAuto, HelpAlways, HelpNever:
		return HelpMode(s), nil
	default:
		return "", fmt.Errorf("invalid help mode %q (must be auto, always, or never)", s)
	}
}

// Theme holds the glyphs and styles shared by every prompt.
type Theme struct {
	Cursor     string
	IdlePrefix string
	DonePrefix string
	HelpMode   HelpMode

	Prefix      lipgloss.Style
	Done        lipgloss.Style
	Message     lipgloss.Style
	Answer      lipgloss.Style
	Highlight   lipgloss.Style
	Match       lipgloss.Style
	SearchTerm  lipgloss.Style
	Description lipgloss.Style
	Disabled    lipgloss.Style
	Default     lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// DefaultTheme returns the standard prompt look.
func DefaultTheme() Theme {
	cyan := lipgloss.Color("6")
	return Theme{
		Cursor:     "❯",
		IdlePrefix: "?",
		DonePrefix: "✔",
		HelpMode:   HelpAuto,

		Prefix:      lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Done:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Message:     lipgloss.NewStyle().Bold(true),
		Answer:      lipgloss.NewStyle().Foreground(cyan),
		Highlight:   lipgloss.NewStyle().Foreground(cyan),
		Match:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		SearchTerm:  lipgloss.NewStyle().Foreground(cyan),
		Description: lipgloss.NewStyle().Foreground(cyan),
		Disabled:    lipgloss.NewStyle().Faint(true),
		Default:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (t Theme) errorText(msg string) string {
	return t.Error.Render("> " + msg)
}

func (t Theme) prefix(done bool) string {
	if done {
		return t.Done.Render(t.DonePrefix)
	}
	return t.Prefix.Render(t.IdlePrefix)
}

// paint is a single-argument renderer; lipgloss styles are adapted with stylePaint.
type paint func(string) string

func stylePaint(s lipgloss.Style) paint {
	return func(text string) string {
		if text == "" {
			return ""
		}
		return s.Render(text)
	}
}

func plain(text string) string { return text }
