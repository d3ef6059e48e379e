package prompt

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPageSize is the number of candidate rows shown at once.
const DefaultPageSize = 7

// searchStatus is the lifecycle state of a search prompt.
type searchStatus int

const (
	statusSearching searchStatus = iota // A fetch is outstanding
	statusPending                       // Results (or an error) are on screen
	statusDone                          // A value was chosen or the prompt was aborted
)

// searchEvent drives transitions between search states.
type searchEvent int

const (
	eventQuery   searchEvent = iota // Term changed; a new fetch was issued
	eventResults                    // Latest fetch succeeded
	eventFailed                     // Latest fetch failed
	eventSubmit                     // Enter on a selectable item
	eventAbort                      // Esc / Ctrl+C
)

// searchTransitions lists every legal transition. Events missing from a
// state's row are ignored in that state.
var searchTransitions = map[searchStatus]map[searchEvent]searchStatus{
	statusSearching: {
		eventQuery:   statusSearching,
		eventResults: statusPending,
		eventFailed:  statusPending,
		eventSubmit:  statusDone,
		eventAbort:   statusDone,
	},
	statusPending: {
		eventQuery:  statusSearching,
		eventSubmit: statusDone,
		eventAbort:  statusDone,
	},
}

// SearchConfig configures a search prompt.
type SearchConfig[T any] struct {
	Message  string
	Header   string // Rendered above the candidates (e.g. table.Header)
	Footer   string // Rendered below the candidates (e.g. table.Footer)
	Source   Source[T]
	PageSize int // Defaults to DefaultPageSize
	Theme    *Theme

	// AnswerConverter maps the chosen row text to the confirmation shown
	// after selection. Defaults to DefaultAnswerConverter.
	AnswerConverter func(string) string
}

// fetchDoneMsg carries a completed Source.Fetch back into Update.
type fetchDoneMsg[T any] struct {
	requestID uint64
	items     []Item[T]
	err       error
	cancelled bool
}

// initMsg triggers the first fetch through Update so that the state change
// is captured by the runtime.
type initMsg struct{}

// SearchModel is the bubbletea model behind Search.
type SearchModel[T any] struct {
	cfg     SearchConfig[T]
	theme   Theme
	parent  context.Context
	input   textinput.Model
	spinner spinner.Model

	status  searchStatus
	term    string
	items   []Item[T]
	active  int // -1 until the user moves; resolves to the first selectable item
	err     error
	aborted bool
	tipSeen bool

	requestID   uint64
	cancelFetch context.CancelFunc

	chosen *Item[T]
}

// NewSearch creates a search prompt model.
func NewSearch[T any](cfg SearchConfig[T]) SearchModel[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.AnswerConverter == nil {
		cfg.AnswerConverter = DefaultAnswerConverter
	}
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.TextStyle = theme.SearchTerm
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Prefix))

	return SearchModel[T]{
		cfg:     cfg,
		theme:   theme,
		parent:  context.Background(),
		input:   ti,
		spinner: sp,
		status:  statusSearching,
		active:  -1,
	}
}

// WithContext sets the parent context for candidate fetches.
func (m SearchModel[T]) WithContext(ctx context.Context) SearchModel[T] {
	m.parent = ctx
	return m
}

// Result returns the chosen value; ok is false if nothing was chosen.
func (m SearchModel[T]) Result() (value T, ok bool) {
	if m.chosen == nil {
		return value, false
	}
	return m.chosen.Value, true
}

// Aborted reports whether the user cancelled the prompt.
func (m SearchModel[T]) Aborted() bool {
	return m.aborted
}

// Init implements tea.Model.
func (m SearchModel[T]) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, func() tea.Msg { return initMsg{} })
}

// Update implements tea.Model.
func (m SearchModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case initMsg:
		return m, m.startFetch()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fetchDoneMsg[T]:
		return m.handleFetchDone(msg), nil

	case spinner.TickMsg:
		if m.status == statusDone {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// fire applies ev to the state machine and reports whether it was legal.
func (m *SearchModel[T]) fire(ev searchEvent) bool {
	next, ok := searchTransitions[m.status][ev]
	if !ok {
		return false
	}
	m.status = next
	return true
}

func (m SearchModel[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.fire(eventAbort) {
			m.aborted = true
			m.cancelInflight()
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyEnter:
		item, ok := m.selected()
		if ok && m.fire(eventSubmit) {
			m.chosen = &item
			m.cancelInflight()
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		if m.status != statusPending || m.err != nil {
			return m, nil
		}
		offset := 1
		if msg.Type == tea.KeyUp {
			offset = -1
		}
		m.active = step(m.items, m.activeIndex(), offset)
		m.noteCursor()
		return m, nil

	case tea.KeyTab:
		return m, nil
	}

	if m.status == statusDone {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.term {
		m.term = v
		return m, tea.Batch(cmd, m.startFetch())
	}
	return m, cmd
}

// handleFetchDone applies a fetch result unless a newer request superseded it.
func (m SearchModel[T]) handleFetchDone(msg fetchDoneMsg[T]) SearchModel[T] {
	if msg.requestID != m.requestID || msg.cancelled {
		return m
	}
	m.cancelInflight()

	if msg.err != nil {
		if !m.fire(eventFailed) {
			return m
		}
		m.err = msg.err
		m.items = nil
		m.active = -1
		return m
	}

	if !m.fire(eventResults) {
		return m
	}
	m.err = nil
	m.items = msg.items
	m.active = -1
	m.noteCursor()
	return m
}

// startFetch cancels any in-flight fetch, bumps the request ID and returns
// a command that queries the source for the current term.
func (m *SearchModel[T]) startFetch() tea.Cmd {
	m.cancelInflight()
	m.requestID++
	m.fire(eventQuery)
	m.err = nil

	ctx, cancel := context.WithCancel(m.parent)
	m.cancelFetch = cancel

	req := Request{RequestID: m.requestID, Term: m.term}
	src := m.cfg.Source
	return func() tea.Msg {
		items, err := src.Fetch(ctx, req)
		return fetchDoneMsg[T]{
			requestID: req.RequestID,
			items:     items,
			err:       err,
			cancelled: ctx.Err() != nil,
		}
	}
}

func (m *SearchModel[T]) cancelInflight() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// noteCursor retires the auto help tip once the cursor leaves the top row.
func (m *SearchModel[T]) noteCursor() {
	if m.activeIndex() > 0 {
		m.tipSeen = true
	}
}

func (m SearchModel[T]) activeIndex() int {
	if m.active >= 0 {
		return m.active
	}
	first, _ := bounds(m.items)
	return first
}

func (m SearchModel[T]) selected() (Item[T], bool) {
	idx := m.activeIndex()
	if m.err != nil || idx < 0 || idx >= len(m.items) || !m.items[idx].Selectable() {
		return Item[T]{}, false
	}
	return m.items[idx], true
}

// View implements tea.Model.
func (m SearchModel[T]) View() string {
	status, content := m.Render()
	if content == "" {
		return status + "\n"
	}
	return status + "\n" + content
}

// Render returns the status line and the content block for the current state.
func (m SearchModel[T]) Render() (statusLine, content string) {
	message := m.theme.Message.Render(m.cfg.Message)

	if m.status == statusDone {
		if m.aborted {
			return joinNonEmpty(m.theme.prefix(false), message), ""
		}
		answer := m.cfg.AnswerConverter(m.chosen.answer())
		return joinNonEmpty(m.theme.prefix(true), message, m.theme.Answer.Render(answer)), ""
	}

	prefix := m.theme.prefix(false)
	if m.status == statusSearching {
		prefix = m.spinner.View()
	}
	statusLine = joinNonEmpty(prefix, message, m.input.View())

	var body string
	switch {
	case m.err != nil:
		body = m.theme.errorText(m.err.Error())
	case len(m.items) == 0 && m.term != "" && m.status == statusPending:
		body = m.theme.errorText("No results found")
	default:
		body = m.page()
	}

	var b strings.Builder
	b.WriteString(m.cfg.Header)
	b.WriteString(body)
	b.WriteString(m.cfg.Footer)
	b.WriteString(m.helpTip())
	if item, ok := m.selected(); ok && item.Description != "" {
		b.WriteString("\n" + m.theme.Description.Render(item.Description))
	}
	return statusLine, b.String()
}

func (m SearchModel[T]) helpTip() string {
	if m.status != statusPending || len(m.items) == 0 {
		return ""
	}
	switch m.theme.HelpMode {
	case HelpAlways:
	case HelpAuto:
		if m.tipSeen {
			return ""
		}
	default:
		return ""
	}
	if len(m.items) > m.cfg.PageSize {
		return "\n" + m.theme.Help.Render("(Use arrow keys to reveal more choices)")
	}
	return m.theme.Help.Render("(Use arrow keys)")
}

// page renders the visible window of candidates.
func (m SearchModel[T]) page() string {
	active := m.activeIndex()
	start, end := window(active, m.cfg.PageSize, len(m.items))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderItem(m.items[i], i == active))
	}
	return strings.Join(lines, "\n")
}

func (m SearchModel[T]) renderItem(item Item[T], isActive bool) string {
	return renderItem(m.theme, item, isActive, m.term)
}

func renderItem[T any](theme Theme, item Item[T], isActive bool, term string) string {
	if item.IsSeparator() {
		return " " + item.separator
	}
	line := item.line()
	if item.disabled() {
		reason := item.DisabledReason
		if reason == "" {
			reason = "(disabled)"
		}
		return theme.Disabled.Render("- " + line + " " + reason)
	}
	base, cursor := paint(plain), " "
	if isActive {
		base, cursor = stylePaint(theme.Highlight), theme.Cursor
	}
	return highlightMatches(cursor+" "+line, term, base, stylePaint(theme.Match))
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
