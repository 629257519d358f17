// Package lineindex translates absolute byte offsets to (line, column)
// positions and back over an immutable line table.
package lineindex

import (
	"fmt"
	"sort"
	"strings"
)

// Separator is the single-byte line separator the table is built on.
const Separator = "\n"

// Position is a 0-indexed line and column pair. Column is measured in bytes
// from the start of the line.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// Table is an ordered mapping from line start offset to line text.
// Starts are strictly increasing and the first start is 0.
// A Table is never mutated after Build; rebuilds produce a new Table.
type Table struct {
	starts []int
	lines  []string
	size   int
}

// Build splits text on the line separator. Line i starts at the previous
// start plus the previous line length plus one. A trailing separator yields
// a final empty line.
func Build(text string) *Table {
	lines := strings.Split(text, Separator)
	t := &Table{
		starts: make([]int, len(lines)),
		lines:  lines,
		size:   len(text),
	}
	start := 0
	for i, line := range lines {
		t.starts[i] = start
		start += len(line) + len(Separator)
	}
	return t
}

// LineCount returns the number of lines in the table.
func (t *Table) LineCount() int {
	if t == nil {
		return 0
	}
	return len(t.starts)
}

// Len returns the byte length of the text the table was built from.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Start returns the start offset of the given line.
func (t *Table) Start(line int) (int, bool) {
	if t == nil || line < 0 || line >= len(t.starts) {
		return 0, false
	}
	return t.starts[line], true
}

// Text returns the text of the given line without its separator.
func (t *Table) Text(line int) (string, bool) {
	if t == nil || line < 0 || line >= len(t.lines) {
		return "", false
	}
	return t.lines[line], true
}

// Lines returns a copy of the line texts in order.
func (t *Table) Lines() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.lines...)
}

// OffsetToPosition resolves offset to the line whose start is the greatest
// start <= offset. The returned line is the rank of that start among all
// starts, not the start itself. It fails when the table is empty, or the
// offset precedes the first line or lies past the end of the text.
func (t *Table) OffsetToPosition(offset int) (Position, bool) {
	if t == nil || len(t.starts) == 0 || offset > t.size {
		return Position{}, false
	}
	rank := Floor(t.starts, offset)
	if rank < 0 {
		return Position{}, false
	}
	return Position{Line: rank, Column: offset - t.starts[rank]}, true
}

// PositionToOffset resolves the line-th start in key order and adds column.
// Column may address the separator that ends the line.
func (t *Table) PositionToOffset(line, column int) (int, bool) {
	if t == nil || line < 0 || line >= len(t.starts) {
		return 0, false
	}
	if column < 0 || column > len(t.lines[line]) {
		return 0, false
	}
	return t.starts[line] + column, true
}

// Floor returns the index of the greatest element of the sorted starts slice
// that is <= offset, or -1 when every element is greater.
func Floor(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool {
		return starts[i] > offset
	}) - 1
}
