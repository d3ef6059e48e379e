package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/ssm-commander/internal/table"
)

// --- State transition tests ---

func TestSearch_InitialState(t *testing.T) {
	m := newTestSearch(&mockSource{})
	assert.Equal(t, statusSearching, m.status)
	assert.Equal(t, "", m.term)
	assert.Equal(t, -1, m.active)
}

func TestSearch_InitFetchesWithEmptyTerm(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a", "b")}}
	m := initAndLoad(t, newTestSearch(src))

	require.Len(t, src.calls, 1)
	assert.Equal(t, "", src.calls[0].req.Term)
	assert.Equal(t, uint64(1), src.calls[0].req.RequestID)
	assert.Equal(t, statusPending, m.status)
	assert.Len(t, m.items, 2)
	assert.Equal(t, 0, m.activeIndex())
}

func TestSearch_TypingIssuesNewFetch(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{
		"":   choices("web", "db"),
		"db": choices("db"),
	}}
	m := initAndLoad(t, newTestSearch(src))

	m, cmd := typeText(t, m, "db")
	assert.Equal(t, "db", m.term)
	assert.Equal(t, statusSearching, m.status)

	msgs := fetchMsgs[string](cmd)
	require.Len(t, msgs, 1)
	m, _ = update(t, m, msgs[0])

	require.Len(t, src.calls, 2)
	assert.Equal(t, "db", src.calls[1].req.Term)
	assert.Equal(t, statusPending, m.status)
	assert.Equal(t, choices("db"), m.items)
}

func TestSearch_BackspaceRefetches(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{
		"":  choices("web", "db"),
		"d": choices("db"),
	}}
	m := initAndLoad(t, newTestSearch(src))
	m = typeAndLoad(t, m, "d")
	require.Len(t, m.items, 1)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	msgs := fetchMsgs[string](cmd)
	require.Len(t, msgs, 1)
	m, _ = update(t, m, msgs[0])

	assert.Equal(t, "", m.term)
	assert.Len(t, m.items, 2)
}

func TestSearch_ResultsResetCursor(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{
		"":  choices("a1", "a2", "a3"),
		"a": choices("a1", "a2", "a3"),
	}}
	m := initAndLoad(t, newTestSearch(src))
	m = press(t, m, tea.KeyDown, tea.KeyDown)
	require.Equal(t, 2, m.activeIndex())

	m = typeAndLoad(t, m, "a")
	assert.Equal(t, -1, m.active)
	assert.Equal(t, 0, m.activeIndex())
}

// --- Cancellation ---

func TestSearch_StaleResultIsDropped(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{
		"":   choices("alpha", "abacus", "beta"),
		"a":  choices("alpha", "abacus"),
		"ab": choices("abacus"),
	}}
	m := initAndLoad(t, newTestSearch(src))

	// "a" is issued first but resolves last.
	m, slowCmd := typeText(t, m, "a")
	m, fastCmd := typeText(t, m, "b")

	fast := fetchMsgs[string](fastCmd)
	require.Len(t, fast, 1)
	m, _ = update(t, m, fast[0])
	require.Equal(t, choices("abacus"), m.items)

	slow := fetchMsgs[string](slowCmd)
	require.Len(t, slow, 1)
	m, _ = update(t, m, slow[0])

	assert.Equal(t, choices("abacus"), m.items, "stale result must not replace newer one")
	assert.Equal(t, statusPending, m.status)
	assert.Equal(t, "ab", m.term)
}

func TestSearch_SupersededFetchContextIsCancelled(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{}}
	m := initAndLoad(t, newTestSearch(src))

	m, slowCmd := typeText(t, m, "a")
	_, _ = typeText(t, m, "b")

	// The stale fetch still runs but observes a cancelled context.
	slow := fetchMsgs[string](slowCmd)
	require.Len(t, slow, 1)
	assert.True(t, slow[0].cancelled)

	last := src.calls[len(src.calls)-1]
	assert.Equal(t, "a", last.req.Term)
	assert.ErrorIs(t, last.ctx.Err(), context.Canceled)
}

func TestSearch_LateResultFromCancelledContextDropped(t *testing.T) {
	m := newTestSearch(&mockSource{})
	m.requestID = 4
	m.status = statusSearching

	m, _ = update(t, m, fetchDoneMsg[string]{requestID: 4, items: choices("x"), cancelled: true})
	assert.Empty(t, m.items)
	assert.Equal(t, statusSearching, m.status)
}

// --- Navigation ---

func TestSearch_NavigationBoundaries(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("one", "two", "three")}}
	m := initAndLoad(t, newTestSearch(src))
	require.Equal(t, 0, m.activeIndex())

	m = press(t, m, tea.KeyUp)
	assert.Equal(t, 0, m.activeIndex(), "up from first selectable is a no-op")

	m = press(t, m, tea.KeyDown)
	assert.Equal(t, 1, m.activeIndex())
	m = press(t, m, tea.KeyDown)
	assert.Equal(t, 2, m.activeIndex())

	m = press(t, m, tea.KeyDown)
	assert.Equal(t, 2, m.activeIndex(), "down from last selectable is a no-op")
}

func TestSearch_SeparatorIsSkipped(t *testing.T) {
	items := []Item[string]{{Value: "c1"}, NewSeparator[string](""), {Value: "c2"}}
	src := &mockSource{results: map[string][]Item[string]{"": items}}
	m := initAndLoad(t, newTestSearch(src))

	m = press(t, m, tea.KeyDown)
	assert.Equal(t, 2, m.activeIndex())

	m = press(t, m, tea.KeyUp)
	assert.Equal(t, 0, m.activeIndex())
}

func TestSearch_LeadingNonSelectableItems(t *testing.T) {
	items := []Item[string]{
		NewSeparator[string]("group"),
		{Value: "off", Disabled: true},
		{Value: "c1"},
		{Value: "gone", DisabledReason: "(stopped)"},
		{Value: "c2"},
	}
	src := &mockSource{results: map[string][]Item[string]{"": items}}
	m := initAndLoad(t, newTestSearch(src))

	assert.Equal(t, 2, m.activeIndex())
	m = press(t, m, tea.KeyUp)
	assert.Equal(t, 2, m.activeIndex())
	m = press(t, m, tea.KeyDown)
	assert.Equal(t, 4, m.activeIndex())
	m = press(t, m, tea.KeyDown)
	assert.Equal(t, 4, m.activeIndex())
}

func TestSearch_NavigationIgnoredWhileSearching(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a", "b", "c")}}
	m := initAndLoad(t, newTestSearch(src))

	m, _ = typeText(t, m, "x")
	require.Equal(t, statusSearching, m.status)

	m = press(t, m, tea.KeyDown)
	assert.Equal(t, -1, m.active)
}

func TestSearch_TabDoesNotEditTerm(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a")}}
	m := initAndLoad(t, newTestSearch(src))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Nil(t, cmd)
	assert.Equal(t, "", m.term)
	assert.Len(t, src.calls, 1)
}

// --- Submit / abort ---

type instance struct {
	Name string
	ID   string
}

func (i *instance) Field(name string) string {
	switch name {
	case "Name":
		return i.Name
	case "Id":
		return i.ID
	}
	return ""
}

func TestSearch_EnterReturnsOriginalRecord(t *testing.T) {
	records := []*instance{{Name: "web-1", ID: "i-1"}, {Name: "db", ID: "i-22"}}
	tbl, err := table.Build([]string{"Name", "Id"}, records, nil)
	require.NoError(t, err)

	m := newTestSearchConfig(SearchConfig[*instance]{
		Message: "Select an EC2 instance",
		Header:  tbl.Header,
		Footer:  tbl.Footer,
		Source:  TableSource(tbl),
	})
	m = initAndLoad(t, m)
	m = press(t, m, tea.KeyDown)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, statusDone, m.status)

	v, ok := m.Result()
	require.True(t, ok)
	assert.Same(t, records[1], v)

	status, content := m.Render()
	assert.Contains(t, status, "✔")
	assert.Contains(t, status, "Select an EC2 instance")
	assert.Contains(t, status, "db (i-22)")
	assert.Empty(t, content)
}

func TestSearch_EnterWithoutCandidatesIsNoop(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{}}
	m := initAndLoad(t, newTestSearch(src))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, statusPending, m.status)
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestSearch_EscAborts(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a")}}
	m := initAndLoad(t, newTestSearch(src))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
	assert.True(t, m.Aborted())
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestSearch_CustomAnswerConverter(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": {{Value: "v", Name: "long name", Short: "short"}}}}
	m := newTestSearchConfig(SearchConfig[string]{
		Message:         "Pick",
		Source:          src,
		AnswerConverter: strings.ToUpper,
	})
	m = initAndLoad(t, m)
	m = press(t, m, tea.KeyEnter)

	status, _ := m.Render()
	assert.Contains(t, status, "SHORT")
}

// --- Errors and empty results ---

func TestSearch_SourceErrorReplacesList(t *testing.T) {
	src := &mockSource{
		results: map[string][]Item[string]{"": choices("a", "b"), "ok": choices("ok")},
		errs:    map[string]error{"x": errors.New("AccessDenied")},
	}
	m := initAndLoad(t, newTestSearch(src))
	m = typeAndLoad(t, m, "x")

	assert.Equal(t, statusPending, m.status)
	require.Error(t, m.err)

	_, content := m.Render()
	assert.Contains(t, content, "> AccessDenied")
	assert.NotContains(t, content, "No results found")
	assert.NotContains(t, content, "❯")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, statusPending, m.status)

	// Recovers on the next successful fetch.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = typeAndLoad(t, m, "ok")
	assert.NoError(t, m.err)
	_, content = m.Render()
	assert.NotContains(t, content, "AccessDenied")
	assert.Contains(t, content, "❯ ok")
}

func TestSearch_NoResultsMessage(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a")}}
	m := initAndLoad(t, newTestSearch(src))
	m = typeAndLoad(t, m, "zzz")

	_, content := m.Render()
	assert.Equal(t, "HEAD\n> No results found\nFOOT\n", content)
}

func TestSearch_NoResultsMessageNeedsTerm(t *testing.T) {
	m := initAndLoad(t, newTestSearch(&mockSource{}))

	_, content := m.Render()
	assert.Equal(t, "HEAD\n\nFOOT\n", content)
}

func TestSearch_DisplayStatesAreExclusive(t *testing.T) {
	src := &mockSource{
		results: map[string][]Item[string]{"": choices("a", "b")},
		errs:    map[string]error{"e": errors.New("boom")},
	}
	m := initAndLoad(t, newTestSearch(src))

	states := []SearchModel[string]{
		m,
		typeAndLoad(t, m, "e"),
		typeAndLoad(t, m, "q"),
	}
	for _, s := range states {
		_, content := s.Render()
		shown := 0
		for _, marker := range []string{"> boom", "> No results found", "❯ "} {
			if strings.Contains(content, marker) {
				shown++
			}
		}
		assert.LessOrEqual(t, shown, 1, content)
	}
}

// --- Rendering ---

func TestSearch_RenderPage(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("alpha", "beta", "gamma")}}
	m := initAndLoad(t, newTestSearch(src))
	m = press(t, m, tea.KeyDown)

	_, content := m.Render()
	assert.Equal(t, "HEAD\n  alpha\n❯ beta\n  gamma\nFOOT\n", content)
}

func TestSearch_RenderPaginates(t *testing.T) {
	values := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9"}
	src := &mockSource{results: map[string][]Item[string]{"": choices(values...)}}
	m := initAndLoad(t, newTestSearch(src))

	_, content := m.Render()
	assert.Contains(t, content, "r6")
	assert.NotContains(t, content, "r7")

	for i := 0; i < 9; i++ {
		m = press(t, m, tea.KeyDown)
	}
	_, content = m.Render()
	assert.Contains(t, content, "❯ r9")
	assert.Contains(t, content, "r3")
	assert.NotContains(t, content, "r2")
}

func TestSearch_RenderDisabledAndSeparator(t *testing.T) {
	items := []Item[string]{
		{Value: "web"},
		NewSeparator[string]("--"),
		{Value: "old", DisabledReason: "(terminated)"},
		{Value: "dev", Disabled: true},
	}
	src := &mockSource{results: map[string][]Item[string]{"": items}}
	m := initAndLoad(t, newTestSearch(src))

	_, content := m.Render()
	assert.Contains(t, content, "\n --\n")
	assert.Contains(t, content, "- old (terminated)")
	assert.Contains(t, content, "- dev (disabled)")
}

func TestSearch_RenderDescription(t *testing.T) {
	items := []Item[string]{{Value: "a", Description: "first"}, {Value: "b", Description: "second"}}
	src := &mockSource{results: map[string][]Item[string]{"": items}}
	m := initAndLoad(t, newTestSearch(src))

	_, content := m.Render()
	assert.True(t, strings.HasSuffix(content, "\nfirst"), content)

	m = press(t, m, tea.KeyDown)
	_, content = m.Render()
	assert.True(t, strings.HasSuffix(content, "\nsecond"), content)
}

func TestSearch_StatusLine(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a")}}
	m := initAndLoad(t, newTestSearch(src))

	status, _ := m.Render()
	assert.True(t, strings.HasPrefix(status, "? Pick one"), status)
}

func TestSearch_HelpTip(t *testing.T) {
	many := choices("r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7")
	few := choices("a", "b")

	t.Run("auto shows reveal tip until cursor moves", func(t *testing.T) {
		src := &mockSource{results: map[string][]Item[string]{"": many}}
		m := initAndLoad(t, newTestSearch(src))

		_, content := m.Render()
		assert.Contains(t, content, "FOOT\n\n(Use arrow keys to reveal more choices)")

		m = press(t, m, tea.KeyDown, tea.KeyUp)
		_, content = m.Render()
		assert.NotContains(t, content, "Use arrow keys")
	})

	t.Run("short tip when everything fits", func(t *testing.T) {
		src := &mockSource{results: map[string][]Item[string]{"": few}}
		m := initAndLoad(t, newTestSearch(src))

		_, content := m.Render()
		assert.True(t, strings.HasSuffix(content, "FOOT\n(Use arrow keys)"), content)
	})

	t.Run("always", func(t *testing.T) {
		theme := DefaultTheme()
		theme.HelpMode = HelpAlways
		src := &mockSource{results: map[string][]Item[string]{"": few}}
		m := initAndLoad(t, newTestSearchConfig(SearchConfig[string]{Message: "m", Source: src, Theme: &theme}))
		m = press(t, m, tea.KeyDown)

		_, content := m.Render()
		assert.Contains(t, content, "(Use arrow keys)")
	})

	t.Run("never", func(t *testing.T) {
		theme := DefaultTheme()
		theme.HelpMode = HelpNever
		src := &mockSource{results: map[string][]Item[string]{"": many}}
		m := initAndLoad(t, newTestSearchConfig(SearchConfig[string]{Message: "m", Source: src, Theme: &theme}))

		_, content := m.Render()
		assert.NotContains(t, content, "Use arrow keys")
	})

	t.Run("hidden while searching", func(t *testing.T) {
		src := &mockSource{results: map[string][]Item[string]{"": few}}
		m := initAndLoad(t, newTestSearch(src))
		m, _ = typeText(t, m, "a")

		_, content := m.Render()
		assert.NotContains(t, content, "Use arrow keys")
	})
}

func TestSearch_ViewJoinsStatusAndContent(t *testing.T) {
	src := &mockSource{results: map[string][]Item[string]{"": choices("a")}}
	m := initAndLoad(t, newTestSearch(src))

	status, content := m.Render()
	assert.Equal(t, status+"\n"+content, m.View())
}

func TestSearchTransitions(t *testing.T) {
	tests := []struct {
		from searchStatus
		ev   searchEvent
		to   searchStatus
		ok   bool
	}{
		{statusSearching, eventResults, statusPending, true},
		{statusSearching, eventFailed, statusPending, true},
		{statusSearching, eventQuery, statusSearching, true},
		{statusPending, eventQuery, statusSearching, true},
		{statusPending, eventSubmit, statusDone, true},
		{statusPending, eventResults, statusPending, false},
		{statusDone, eventQuery, statusDone, false},
		{statusDone, eventSubmit, statusDone, false},
	}
	for _, tt := range tests {
		m := SearchModel[string]{status: tt.from}
		ok := m.fire(tt.ev)
		assert.Equal(t, tt.ok, ok, "%v + %v", tt.from, tt.ev)
		assert.Equal(t, tt.to, m.status, "%v + %v", tt.from, tt.ev)
	}
}
