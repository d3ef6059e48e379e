package prompt

import (
	"regexp"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var yesPattern = regexp.MustCompile(`(?i)^(y|yes)`)

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Theme   *Theme
}

// ConfirmModel is the bubbletea model behind Confirm.
type ConfirmModel struct {
	cfg     ConfirmConfig
	theme   Theme
	input   textinput.Model
	answer  bool
	done    bool
	aborted bool
}

// NewConfirm creates a yes/no prompt model.
func NewConfirm(cfg ConfirmConfig) ConfirmModel {
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	return ConfirmModel{cfg: cfg, theme: theme, input: ti}
}

// Result returns the answer; ok is false if the prompt was aborted.
func (m ConfirmModel) Result() (value, ok bool) {
	return m.answer, m.done && !m.aborted
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done, m.aborted = true, true
			return m, tea.Quit
		case tea.KeyEnter:
			m.answer = m.cfg.Default
			if v := m.input.Value(); v != "" {
				m.answer = yesPattern.MatchString(v)
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	message := m.theme.Message.Render(m.cfg.Message)
	if m.done {
		if m.aborted {
			return joinNonEmpty(m.theme.prefix(false), message) + "\n"
		}
		answer := "No"
		if m.answer {
			answer = "Yes"
		}
		return joinNonEmpty(m.theme.prefix(true), message, m.theme.Answer.Render(answer)) + "\n"
	}
	hint := "(y/N)"
	if m.cfg.Default {
		hint = "(Y/n)"
	}
	return joinNonEmpty(m.theme.prefix(false), message, m.theme.Default.Render(hint), m.input.View())
}
