package document

import (
	"strconv"
	"time"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/indexer"
	"github.com/morozRed/jsnav/internal/lineindex"
	"github.com/morozRed/jsnav/internal/parser"
	"github.com/morozRed/jsnav/internal/symbols"
)

// Snapshot is the immutable result of one successful build. Every query
// on a snapshot answers from the same build.
type Snapshot struct {
	Name     string
	Language string
	Version  uint64
	Hash     string
	BuiltAt  time.Time

	text          string
	table         *lineindex.Table
	symbols       *symbols.Table
	lines         []annotate.Line
	notifications []indexer.Notification
	stats         indexer.Stats
}

// NewSnapshot wraps an indexing result. Documents create snapshots on
// build; batch indexing creates them directly from parsed trees.
func NewSnapshot(name string, version uint64, tree *parser.Tree, res *indexer.Result) *Snapshot {
	return &Snapshot{
		Name:          name,
		Language:      tree.Language,
		Version:       version,
		Hash:          tree.Hash,
		BuiltAt:       time.Now(),
		text:          res.Text,
		table:         res.LineTable,
		symbols:       res.Symbols,
		lines:         res.Lines,
		notifications: res.Notifications,
		stats:         res.Stats,
	}
}

// Part is a slice of document lines returned for an anchor.
type Part struct {
	Anchor    int             `json:"anchor"`
	FirstLine int             `json:"first_line"`
	Lines     []annotate.Line `json:"lines"`
}

// Text returns the source text.
func (s *Snapshot) Text() string {
	return s.text
}

// Lines returns the annotated lines. Callers must not modify them.
func (s *Snapshot) Lines() []annotate.Line {
	return s.lines
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// Notifications returns the notifications raised by the build.
func (s *Snapshot) Notifications() []indexer.Notification {
	return append([]indexer.Notification(nil), s.notifications...)
}

// Functions returns function symbols in source order.
func (s *Snapshot) Functions() []symbols.Symbol {
	return s.symbols.Functions()
}

// Strings returns string literal symbols in source order.
func (s *Snapshot) Strings() []symbols.Symbol {
	return s.symbols.Strings()
}

// Stats returns the indexing statistics.
func (s *Snapshot) Stats() indexer.Stats {
	return s.stats
}

// AddressToPosition resolves a decimal offset, or else a function name, to
// a position.
func (s *Snapshot) AddressToPosition(address string) (lineindex.Position, bool) {
	offset, ok := s.resolve(address)
	if !ok {
		return lineindex.Position{}, false
	}
	return s.table.OffsetToPosition(offset)
}

// PositionToAddress returns the canonical decimal address of pos.
func (s *Snapshot) PositionToAddress(pos lineindex.Position) (string, bool) {
	offset, ok := s.table.PositionToOffset(pos.Line, pos.Column)
	if !ok {
		return "", false
	}
	return strconv.Itoa(offset), true
}

// IsValidAddress reports whether address resolves to a position.
func (s *Snapshot) IsValidAddress(address string) bool {
	_, ok := s.AddressToPosition(address)
	return ok
}

// Label returns the name of the function whose span contains address.
// Anonymous functions have no label.
func (s *Snapshot) Label(address string) (string, bool) {
	offset, ok := s.resolve(address)
	if !ok {
		return "", false
	}
	fn, ok := s.symbols.Enclosing(offset)
	if !ok || fn.Name == "" {
		return "", false
	}
	return fn.Name, true
}

// References returns the positions of calls resolved to the function named
// name, in document order.
func (s *Snapshot) References(name string) []lineindex.Position {
	fn, ok := s.symbols.FunctionByName(name)
	if !ok {
		return nil
	}
	var out []lineindex.Position
	for lineNo, line := range s.lines {
		for _, item := range line.Items {
			if item.Role == annotate.RoleReference && item.CrossRefID == fn.Start {
				out = append(out, lineindex.Position{Line: lineNo, Column: item.Offset})
			}
		}
	}
	return out
}

// Enclosing returns the function symbol whose span contains offset,
// anonymous functions included.
func (s *Snapshot) Enclosing(offset int) (symbols.Symbol, bool) {
	return s.symbols.Enclosing(offset)
}

// Position maps a byte offset to a position.
func (s *Snapshot) Position(offset int) (lineindex.Position, bool) {
	return s.table.OffsetToPosition(offset)
}

// Offset maps a position to a byte offset.
func (s *Snapshot) Offset(pos lineindex.Position) (int, bool) {
	return s.table.PositionToOffset(pos.Line, pos.Column)
}

// Anchors lists the anchor ids of the document. A document has a single
// anchor at line 0.
func (s *Snapshot) Anchors() []int {
	return []int{0}
}

// DocumentPart returns the lines around anchor. The whole document is one
// part, so every line is returned regardless of the window requested.
func (s *Snapshot) DocumentPart(anchor, linesAfter, linesBefore int) (Part, bool) {
	if anchor != 0 {
		return Part{}, false
	}
	return Part{Anchor: 0, FirstLine: 0, Lines: s.lines}, true
}

func (s *Snapshot) resolve(address string) (int, bool) {
	if offset, err := strconv.Atoi(address); err == nil {
		return offset, true
	}
	fn, ok := s.symbols.FunctionByName(address)
	if !ok || address == "" {
		return 0, false
	}
	return fn.Start, true
}
