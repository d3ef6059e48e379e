package prompt

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectConfig configures a select prompt over a fixed list of choices.
type SelectConfig[T any] struct {
	Message  string
	Choices  []Item[T]
	PageSize int
	Theme    *Theme
}

// SelectModel is the bubbletea model behind Select.
type SelectModel[T any] struct {
	cfg     SelectConfig[T]
	theme   Theme
	active  int
	done    bool
	aborted bool
	tipSeen bool
}

// NewSelect creates a select prompt model with the cursor on the first
// selectable choice.
func NewSelect[T any](cfg SelectConfig[T]) SelectModel[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	first, _ := bounds(cfg.Choices)
	return SelectModel[T]{cfg: cfg, theme: theme, active: first}
}

// Result returns the chosen value; ok is false if the prompt was aborted.
func (m SelectModel[T]) Result() (value T, ok bool) {
	if !m.done || m.aborted || m.active < 0 {
		return value, false
	}
	return m.cfg.Choices[m.active].Value, true
}

// Init implements tea.Model.
func (m SelectModel[T]) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SelectModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.done, m.aborted = true, true
		return m, tea.Quit
	case tea.KeyEnter:
		if m.active >= 0 {
			m.done = true
			return m, tea.Quit
		}
	case tea.KeyUp:
		m.active = step(m.cfg.Choices, m.active, -1)
	case tea.KeyDown:
		m.active = step(m.cfg.Choices, m.active, 1)
	}
	if m.active > 0 {
		m.tipSeen = true
	}
	return m, nil
}

// View implements tea.Model.
func (m SelectModel[T]) View() string {
	message := m.theme.Message.Render(m.cfg.Message)

	if m.done {
		if m.aborted {
			return joinNonEmpty(m.theme.prefix(false), message) + "\n"
		}
		answer := m.cfg.Choices[m.active].answer()
		return joinNonEmpty(m.theme.prefix(true), message, m.theme.Answer.Render(answer)) + "\n"
	}

	header := joinNonEmpty(m.theme.prefix(false), message)
	if m.theme.HelpMode == HelpAlways || (m.theme.HelpMode == HelpAuto && !m.tipSeen) {
		header += " " + m.theme.Help.Render("(Use arrow keys)")
	}

	var b strings.Builder
	b.WriteString(header + "\n")
	start, end := window(m.active, m.cfg.PageSize, len(m.cfg.Choices))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, renderItem(m.theme, m.cfg.Choices[i], i == m.active, ""))
	}
	b.WriteString(strings.Join(lines, "\n"))
	if m.active >= 0 {
		if desc := m.cfg.Choices[m.active].Description; desc != "" {
			b.WriteString("\n" + m.theme.Description.Render(desc))
		}
	}
	return b.String()
}
