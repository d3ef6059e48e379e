package prompt

import (
	"context"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output so rendered text can be compared directly.
	lipgloss.SetColorProfile(termenv.Ascii)
}

// --- Mock source ---

type fetchCall struct {
	req Request
	ctx context.Context
}

type mockSource struct {
	mu      sync.Mutex
	results map[string][]Item[string]
	errs    map[string]error
	calls   []fetchCall
}

func (s *mockSource) Fetch(ctx context.Context, req Request) ([]Item[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fetchCall{req: req, ctx: ctx})
	if err := s.errs[req.Term]; err != nil {
		return nil, err
	}
	return s.results[req.Term], nil
}

func choices(values ...string) []Item[string] {
	items := make([]Item[string], len(values))
	for i, v := range values {
		items[i] = Item[string]{Value: v}
	}
	return items
}

func newTestSearch(src Source[string]) SearchModel[string] {
	return newTestSearchConfig(SearchConfig[string]{
		Message: "Pick one",
		Header:  "HEAD\n",
		Footer:  "\nFOOT\n",
		Source:  src,
	})
}

func newTestSearchConfig[T any](cfg SearchConfig[T]) SearchModel[T] {
	m := NewSearch(cfg)
	// A blinking cursor schedules timed commands on every edit.
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func update[T any](t *testing.T, m SearchModel[T], msg tea.Msg) (SearchModel[T], tea.Cmd) {
	t.Helper()
	res, cmd := m.Update(msg)
	sm, ok := res.(SearchModel[T])
	require.True(t, ok, "unexpected model type %T", res)
	return sm, cmd
}

// fetchMsgs runs cmd and returns the fetch results it produced, expanding batches.
func fetchMsgs[T any](cmd tea.Cmd) []fetchDoneMsg[T] {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []fetchDoneMsg[T]
		for _, c := range batch {
			out = append(out, fetchMsgs[T](c)...)
		}
		return out
	}
	if done, ok := msg.(fetchDoneMsg[T]); ok {
		return []fetchDoneMsg[T]{done}
	}
	return nil
}

// initAndLoad runs the Init -> fetch -> result cycle.
func initAndLoad[T any](t *testing.T, m SearchModel[T]) SearchModel[T] {
	t.Helper()
	m, cmd := update(t, m, initMsg{})
	require.Equal(t, statusSearching, m.status)
	msgs := fetchMsgs[T](cmd)
	require.Len(t, msgs, 1)
	m, _ = update(t, m, msgs[0])
	return m
}

// typeText feeds s as one rune key event and returns the fetch command.
func typeText[T any](t *testing.T, m SearchModel[T], s string) (SearchModel[T], tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// typeAndLoad types s and applies the resulting fetch.
func typeAndLoad[T any](t *testing.T, m SearchModel[T], s string) SearchModel[T] {
	t.Helper()
	m, cmd := typeText(t, m, s)
	msgs := fetchMsgs[T](cmd)
	require.Len(t, msgs, 1)
	m, _ = update(t, m, msgs[0])
	return m
}

func press[T any](t *testing.T, m SearchModel[T], keys ...tea.KeyType) SearchModel[T] {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, tea.KeyMsg{Type: k})
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
