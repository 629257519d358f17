// Package annotate builds the line-oriented, highlighted representation of a
// document. Text is serialized first and items are placed by absolute
// offset, so annotation order is independent of emission order.
package annotate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/morozRed/jsnav/internal/lineindex"
)

// Errors returned by builder operations.
var (
	ErrLineBreak  = errors.New("annotation cannot span a line break")
	ErrOutOfRange = errors.New("annotation outside serialized text")
	ErrOverlap    = errors.New("annotation overlaps an existing item")
)

// Builder accumulates document text and the items highlighting it.
// It is not safe for concurrent use.
type Builder struct {
	starts  []int
	texts   []string
	items   [][]Item
	current strings.Builder
	size    int
	cached  []Line
}

// NewBuilder creates a builder holding a single empty line.
func NewBuilder() *Builder {
	return &Builder{
		starts: []int{0},
		items:  [][]Item{nil},
	}
}

// AppendText serializes text. Each line separator finalizes the current line.
func (b *Builder) AppendText(text string) {
	if text == "" {
		return
	}
	parts := strings.Split(text, lineindex.Separator)
	b.current.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.newLine()
		b.current.WriteString(part)
	}
	b.size += len(text)
	b.cached = nil
}

// AppendAnnotated serializes text and highlights all of it with class.
// Text containing a line break is rejected before anything is written.
func (b *Builder) AppendAnnotated(text string, class Class, opts ...ItemOption) error {
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("%w: %q", ErrLineBreak, text)
	}
	if text == "" {
		return nil
	}
	offset := b.size
	b.AppendText(text)
	return b.AddItem(offset, len(text), class, opts...)
}

// AddItem highlights [offset, offset+length) of the already serialized text.
// The range must lie within a single line and must not overlap another item.
func (b *Builder) AddItem(offset, length int, class Class, opts ...ItemOption) error {
	if length <= 0 || offset < 0 || offset+length > b.size {
		return fmt.Errorf("%w: [%d,%d) with %d bytes written", ErrOutOfRange, offset, offset+length, b.size)
	}

	line := lineindex.Floor(b.starts, offset)
	item := Item{
		Offset: offset - b.starts[line],
		Length: length,
		Class:  class,
	}
	for _, opt := range opts {
		opt(&item)
	}

	if item.End() > b.lineLen(line) {
		return fmt.Errorf("%w: [%d,%d) crosses the end of line %d", ErrLineBreak, offset, offset+length, line)
	}
	for _, existing := range b.items[line] {
		if existing.overlaps(item) {
			return fmt.Errorf("%w: [%d,%d) on line %d", ErrOverlap, offset, offset+length, line)
		}
	}

	b.items[line] = append(b.items[line], item)
	b.cached = nil
	return nil
}

// Len returns the number of bytes serialized so far.
func (b *Builder) Len() int {
	return b.size
}

// Lines returns the finalized line sequence, including the line still being
// written. The result is cached until the next mutation and must not be
// modified by callers.
func (b *Builder) Lines() []Line {
	if b.cached != nil {
		return b.cached
	}

	lines := make([]Line, 0, len(b.starts))
	for i := range b.starts {
		text := b.current.String()
		if i < len(b.texts) {
			text = b.texts[i]
		}
		items := append([]Item(nil), b.items[i]...)
		sort.Slice(items, func(x, y int) bool {
			return items[x].Offset < items[y].Offset
		})
		lines = append(lines, Line{Text: text, Items: items})
	}
	b.cached = lines
	return lines
}

func (b *Builder) newLine() {
	last := len(b.starts) - 1
	b.starts = append(b.starts, b.starts[last]+b.current.Len()+len(lineindex.Separator))
	b.texts = append(b.texts, b.current.String())
	b.items = append(b.items, nil)
	b.current.Reset()
}

func (b *Builder) lineLen(line int) int {
	if line < len(b.texts) {
		return len(b.texts[line])
	}
	return b.current.Len()
}
