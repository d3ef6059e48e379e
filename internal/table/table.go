// Package table renders records as a fixed-width, box-drawn table whose rows
// are pre-rendered strings that still carry the record they came from.
package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Vertical is the column delimiter used in header and body rows.
const Vertical = "│"

const (
	cellPadding = 1
	marginLeft  = "  "
)

// ErrLabelMismatch is returned when the header labels do not line up with the fields.
var ErrLabelMismatch = errors.New("table: header labels do not match fields")

// Border is the glyph set for one horizontal border line.
type Border struct {
	Left  string
	Mid   string
	Right string
	Fill  string
}

var (
	borderTop    = Border{Left: "┌", Mid: "┬", Right: "┐", Fill: "─"}
	borderHeader = Border{Left: "├", Mid: "┼", Right: "┤", Fill: "─"}
	borderBottom = Border{Left: "└", Mid: "┴", Right: "┘", Fill: "─"}
)

// Record is anything that can expose named display values.
// A missing field must yield "".
type Record interface {
	Field(name string) string
}

// Map is a Record backed by a plain map. Nil values render as "".
type Map map[string]any

// Field implements Record.
func (m Map) Field(name string) string {
	v, ok := m[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(*string); ok {
		if s == nil {
			return ""
		}
		return *s
	}
	return fmt.Sprint(v)
}

// Row is one rendered body line and the record it was rendered from.
type Row[T Record] struct {
	Line  string
	Value T
}

// Table is the rendered form of a record set. It is immutable once built.
type Table[T Record] struct {
	Header string
	Footer string
	Rows   []Row[T]

	widths map[string]int
}

// Width returns the computed column width for field, or 0 if unknown.
func (t Table[T]) Width(field string) int {
	return t.widths[field]
}

// Filter returns the rows whose rendered line contains term.
// An empty term matches every row.
func (t Table[T]) Filter(term string) []Row[T] {
	if term == "" {
		return t.Rows
	}
	var out []Row[T]
	for _, r := range t.Rows {
		if strings.Contains(r.Line, term) {
			out = append(out, r)
		}
	}
	return out
}

// Build renders records into a bordered table with one column per field.
// labels may be nil, in which case the field names are used as headers.
func Build[T Record](fields []string, records []T, labels []string) (Table[T], error) {
	if labels == nil {
		labels = fields
	}
	if len(labels) != len(fields) {
		return Table[T]{}, fmt.Errorf("%w: %d fields, %d labels", ErrLabelMismatch, len(fields), len(labels))
	}

	widths := columnWidths(fields, records, labels)

	var header strings.Builder
	header.WriteString(marginLeft + borderLine(fields, widths, borderTop))
	header.WriteString(marginLeft + Vertical)
	for i, label := range labels {
		header.WriteString(cell(label, widths[fields[i]]))
	}
	header.WriteString("\n")
	header.WriteString(marginLeft + borderLine(fields, widths, borderHeader))

	footer := "\n" + marginLeft + borderLine(fields, widths, borderBottom)

	rows := make([]Row[T], 0, len(records))
	for _, rec := range records {
		var line strings.Builder
		line.WriteString(Vertical)
		for _, f := range fields {
			line.WriteString(cell(rec.Field(f), widths[f]))
		}
		rows = append(rows, Row[T]{Line: line.String(), Value: rec})
	}

	return Table[T]{
		Header: header.String(),
		Footer: footer,
		Rows:   rows,
		widths: widths,
	}, nil
}

func columnWidths[T Record](fields []string, records []T, labels []string) map[string]int {
	widths := make(map[string]int, len(fields))
	for i, f := range fields {
		widths[f] = runewidth.StringWidth(labels[i])
	}
	for _, rec := range records {
		for _, f := range fields {
			if w := runewidth.StringWidth(rec.Field(f)); w > widths[f] {
				widths[f] = w
			}
		}
	}
	return widths
}

func borderLine(fields []string, widths map[string]int, b Border) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = strings.Repeat(b.Fill, widths[f]+cellPadding*2)
	}
	return b.Left + strings.Join(parts, b.Mid) + b.Right + "\n"
}

// cell pads text to size. The text is never wider than size because widths
// are computed from the same values.
func cell(text string, size int) string {
	pad := size - runewidth.StringWidth(text)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", cellPadding) + text + strings.Repeat(" ", pad) + strings.Repeat(" ", cellPadding) + Vertical
}
