package prompt

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInput(cfg InputConfig) InputModel {
	m := NewInput(cfg)
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func sendInput(t *testing.T, m InputModel, msgs ...tea.Msg) (InputModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var res tea.Model
		res, cmd = m.Update(msg)
		im, ok := res.(InputModel)
		require.True(t, ok)
		m = im
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	tab       = tea.KeyMsg{Type: tea.KeyTab}
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
)

func TestInput_TypedValue(t *testing.T) {
	m := newTestInput(InputConfig{Message: "Enter the name:"})
	m, cmd := sendInput(t, m, runes("web"), enter)

	assert.True(t, isQuit(cmd))
	v, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, "web", v)
	assert.Equal(t, "✔ Enter the name: web\n", m.View())
}

func TestInput_EmptyLineUsesDefault(t *testing.T) {
	m := newTestInput(InputConfig{Message: "User", Default: "ec2-user"})
	m, _ = sendInput(t, m, enter)

	v, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, "ec2-user", v)
}

func TestInput_TabCopiesDefault(t *testing.T) {
	m := newTestInput(InputConfig{Message: "Port", Default: "22"})
	m, _ = sendInput(t, m, tab)
	assert.Equal(t, "22", m.input.Value())

	m, _ = sendInput(t, m, runes("0"), enter)
	v, _ := m.Result()
	assert.Equal(t, "220", v)
}

func TestInput_BackspaceOnEmptyClearsDefault(t *testing.T) {
	m := newTestInput(InputConfig{Message: "Name", Default: "web", Required: true})
	m, _ = sendInput(t, m, backspace)
	assert.NotContains(t, m.View(), "(web)")

	m, cmd := sendInput(t, m, enter)
	assert.Nil(t, cmd)
	_, ok := m.Result()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "> You must provide a value")
}

func TestInput_ValidationErrorShownUntilEdit(t *testing.T) {
	m := newTestInput(InputConfig{
		Message:     "Local port",
		Description: "Port on this machine",
		Validate:    ValidatePort,
	})
	m, _ = sendInput(t, m, runes("99999"), enter)

	view := m.View()
	assert.Contains(t, view, "> Invalid port number. Please enter a value between 1 and 65535.")
	assert.NotContains(t, view, "Port on this machine")

	m, _ = sendInput(t, m, backspace)
	assert.Contains(t, m.View(), "Port on this machine")

	m, cmd := sendInput(t, m, enter)
	assert.True(t, isQuit(cmd))
	v, _ := m.Result()
	assert.Equal(t, "9999", v)
}

func TestInput_EmptyValidationMessage(t *testing.T) {
	m := newTestInput(InputConfig{Validate: func(string) error { return errors.New("") }})
	m, _ = sendInput(t, m, runes("x"), enter)
	assert.Contains(t, m.View(), "> You must provide a valid value")
}

func TestInput_Abort(t *testing.T) {
	m := newTestInput(InputConfig{Message: "Name"})
	m, cmd := sendInput(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"1", true},
		{"22", true},
		{"65535", true},
		{" 8080 ", true},
		{"0", false},
		{"65536", false},
		{"-1", false},
		{"80a", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidatePort(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
