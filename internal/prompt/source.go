package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/runger/ssm-commander/internal/table"
)

// Source supplies candidates to a search prompt.
// Fetch is called once per search term change; ctx is cancelled as soon as a
// newer term supersedes the request, and results from a superseded request
// are discarded even if Fetch ignores ctx.
type Source[T any] interface {
	Fetch(ctx context.Context, req Request) ([]Item[T], error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context, req Request) ([]Item[T], error)

// Fetch implements Source.
func (f SourceFunc[T]) Fetch(ctx context.Context, req Request) ([]Item[T], error) {
	return f(ctx, req)
}

// Request describes one candidate fetch.
type Request struct {
	RequestID uint64 // Monotonically increasing, for stale response detection
	Term      string // Current search term; "" when nothing has been typed
}

// defaultSeparator mirrors a 14-cell horizontal rule.
var defaultSeparator = strings.Repeat("─", 14)

// Item is a candidate: either a choice carrying a value or a separator.
type Item[T any] struct {
	Value          T
	Name           string // Rendered line; falls back to the formatted Value
	Short          string // Answer text shown after selection
	Description    string // Shown under the list while the item is active
	Disabled       bool
	DisabledReason string // Implies Disabled

	separator string
	isSep     bool
}

// NewSeparator returns a non-selectable divider. An empty label uses a plain rule.
func NewSeparator[T any](label string) Item[T] {
	if label == "" {
		label = defaultSeparator
	}
	return Item[T]{separator: label, isSep: true}
}

// IsSeparator reports whether the item is a divider.
func (it Item[T]) IsSeparator() bool {
	return it.isSep
}

// Selectable reports whether the item can take the cursor.
func (it Item[T]) Selectable() bool {
	return !it.isSep && !it.disabled()
}

func (it Item[T]) disabled() bool {
	return it.Disabled || it.DisabledReason != ""
}

func (it Item[T]) line() string {
	if it.Name != "" {
		return it.Name
	}
	return fmt.Sprint(it.Value)
}

func (it Item[T]) answer() string {
	if it.Short != "" {
		return it.Short
	}
	return it.line()
}

// TableSource serves a rendered table's rows, filtered by raw substring match
// against each row's rendered line.
func TableSource[R table.Record](t table.Table[R]) Source[R] {
	return SourceFunc[R](func(ctx context.Context, req Request) ([]Item[R], error) {
		rows := t.Filter(req.Term)
		items := make([]Item[R], 0, len(rows))
		for _, r := range rows {
			items = append(items, Item[R]{Value: r.Value, Name: r.Line})
		}
		return items, nil
	})
}

// StringSource filters a fixed list of strings by substring.
func StringSource(values []string) Source[string] {
	return SourceFunc[string](func(ctx context.Context, req Request) ([]Item[string], error) {
		items := make([]Item[string], 0, len(values))
		for _, v := range values {
			if strings.Contains(v, req.Term) {
				items = append(items, Item[string]{Value: v})
			}
		}
		return items, nil
	})
}
