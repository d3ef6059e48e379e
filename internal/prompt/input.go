package prompt

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages shown verbatim under the input line.
var (
	errRequired = errors.New("You must provide a value")       //nolint:staticcheck // ST1005: user-facing text
	errInvalid  = errors.New("You must provide a valid value") //nolint:staticcheck // ST1005: user-facing text
)

// InputConfig configures a free-text prompt.
type InputConfig struct {
	Message     string
	Description string // Shown under the input until a validation error replaces it
	Default     string // Used when the line is empty; Tab copies it into the line
	Required    bool
	Validate    func(string) error
	Theme       *Theme
}

// InputModel is the bubbletea model behind Input.
type InputModel struct {
	cfg          InputConfig
	theme        Theme
	input        textinput.Model
	defaultValue string
	errMsg       string
	answer       string
	done         bool
	aborted      bool
}

// NewInput creates a text input prompt model.
func NewInput(cfg InputConfig) InputModel {
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	return InputModel{cfg: cfg, theme: theme, input: ti, defaultValue: cfg.Default}
}

// Result returns the accepted answer; ok is false if the prompt was aborted.
func (m InputModel) Result() (value string, ok bool) {
	return m.answer, m.done && !m.aborted
}

// Init implements tea.Model.
func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	value := m.input.Value()
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.done, m.aborted = true, true
		return m, tea.Quit

	case tea.KeyEnter:
		answer := value
		if answer == "" {
			answer = m.defaultValue
		}
		if err := m.validate(answer); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.answer, m.done = answer, true
		return m, tea.Quit

	case tea.KeyBackspace:
		if value == "" {
			m.defaultValue = ""
			return m, nil
		}

	case tea.KeyTab:
		if value == "" {
			m.input.SetValue(m.defaultValue)
			m.input.CursorEnd()
			m.defaultValue = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.errMsg = ""
	return m, cmd
}

func (m InputModel) validate(answer string) error {
	if m.cfg.Required && answer == "" {
		return errRequired
	}
	if m.cfg.Validate == nil {
		return nil
	}
	if err := m.cfg.Validate(answer); err != nil {
		if err.Error() == "" {
			return errInvalid
		}
		return err
	}
	return nil
}

// View implements tea.Model.
func (m InputModel) View() string {
	message := m.theme.Message.Render(m.cfg.Message)
	if m.done {
		if m.aborted {
			return joinNonEmpty(m.theme.prefix(false), message) + "\n"
		}
		return joinNonEmpty(m.theme.prefix(true), message, m.theme.Answer.Render(m.answer)) + "\n"
	}

	var defaultStr string
	if m.defaultValue != "" && m.input.Value() == "" {
		defaultStr = m.theme.Default.Render("(" + m.defaultValue + ")")
	}
	line := joinNonEmpty(m.theme.prefix(false), message, defaultStr, m.input.View())

	below := m.theme.Help.Render(m.cfg.Description)
	if m.errMsg != "" {
		below = m.theme.errorText(m.errMsg)
	}
	if below == "" {
		return line
	}
	return line + "\n" + below
}

var portPattern = regexp.MustCompile(`^\d+$`)

// ValidatePort accepts decimal port numbers between 1 and 65535.
func ValidatePort(s string) error {
	s = strings.TrimSpace(s)
	if portPattern.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 65535 {
			return nil
		}
	}
	return errors.New("Invalid port number. Please enter a value between 1 and 65535.") //nolint:staticcheck // ST1005: user-facing text
}
