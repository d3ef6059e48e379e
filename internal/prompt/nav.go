package prompt

import (
	"fmt"
	"strings"

	"github.com/runger/ssm-commander/internal/table"
)

// bounds returns the first and last selectable indices, or -1, -1.
func bounds[T any](items []Item[T]) (first, last int) {
	first, last = -1, -1
	for i, it := range items {
		if !it.Selectable() {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last
}

// step moves from active to the next selectable item in direction offset
// (+1 or -1). Moving past the first or last selectable item is a no-op.
func step[T any](items []Item[T], active, offset int) int {
	first, last := bounds(items)
	if first < 0 || active < first || active > last {
		return active
	}
	if (offset < 0 && active == first) || (offset > 0 && active == last) {
		return active
	}
	next := active
	for {
		next += offset
		if items[next].Selectable() {
			return next
		}
	}
}

// window returns the [start, end) slice of a non-looping page of pageSize
// rows. The cursor moves freely in the first half of the list, then stays
// centred until the list end comes into view.
func window(active, pageSize, total int) (start, end int) {
	if pageSize <= 0 || total <= pageSize {
		return 0, total
	}
	if active < 0 {
		active = 0
	}
	middle := pageSize / 2
	var pos int
	switch {
	case active < middle:
		pos = active
	case active >= total-middle:
		pos = active + pageSize - total
	default:
		pos = middle
	}
	start = active - pos
	return start, start + pageSize
}

// highlightMatches renders every literal occurrence of term in match style
// and the text in between in base style.
func highlightMatches(text, term string, base, match paint) string {
	if term == "" {
		return base(text)
	}
	parts := strings.Split(text, term)
	for i, p := range parts {
		parts[i] = base(p)
	}
	return strings.Join(parts, match(term))
}

// DefaultAnswerConverter turns a rendered table row into "first (rest, ...)".
// Text without table delimiters is returned trimmed.
func DefaultAnswerConverter(answer string) string {
	parts := strings.Split(answer, table.Vertical)
	if len(parts) < 3 {
		return strings.TrimSpace(answer)
	}
	cells := parts[1 : len(parts)-1]
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	if len(cells) == 1 {
		return cells[0]
	}
	return fmt.Sprintf("%s (%s)", cells[0], strings.Join(cells[1:], ", "))
}
