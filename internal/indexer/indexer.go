// Package indexer walks a parsed tree once, in source order, and produces
// the symbol table, annotated lines and notifications of a document.
package indexer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/lineindex"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/parser"
	"github.com/morozRed/jsnav/internal/symbols"
)

// Stats summarizes one indexing pass.
type Stats struct {
	Length        int            `json:"length"`
	Lines         int            `json:"lines"`
	Functions     int            `json:"functions"`
	Strings       int            `json:"strings"`
	Calls         int            `json:"calls"`
	References    int            `json:"references"`
	Notifications int            `json:"notifications"`
	TopLevel      map[string]int `json:"top_level"` // node type -> count
}

// Result is everything a document needs from one pass.
type Result struct {
	Text          string
	LineTable     *lineindex.Table
	Symbols       *symbols.Table
	Lines         []annotate.Line
	Notifications []Notification
	Stats         Stats
}

// Option configures Index.
type Option func(*options)

type options struct {
	watch  map[string]string
	logger *log.Logger
}

// WithWatchList replaces the default watch-list. An empty list disables
// notifications.
func WithWatchList(entries []WatchEntry) Option {
	return func(o *options) {
		o.watch = make(map[string]string, len(entries))
		for _, e := range entries {
			if e.Name == "" {
				continue
			}
			if _, seen := o.watch[e.Name]; !seen {
				o.watch[e.Name] = e.Message
			}
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type pendingCall struct {
	name string
	span parser.Span
}

type pass struct {
	tree    *parser.Tree
	opts    options
	lines   *lineindex.Table
	table   *symbols.Table
	builder *annotate.Builder
	calls   []pendingCall
	notes   []Notification
	stats   Stats
}

// Index runs the single traversal over tree. Callee references are
// resolved after the walk so calls may precede the functions they name.
func Index(tree *parser.Tree, opts ...Option) (*Result, error) {
	if tree == nil || tree.Root == nil {
		return nil, fmt.Errorf("indexer: nil tree")
	}

	o := options{}
	WithWatchList(DefaultWatchList)(&o)
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}

	started := time.Now()
	text := string(tree.Source)
	p := &pass{
		tree:    tree,
		opts:    o,
		lines:   lineindex.Build(text),
		table:   symbols.NewTable(),
		builder: annotate.NewBuilder(),
		stats:   Stats{Length: len(text), TopLevel: make(map[string]int)},
	}
	p.builder.AppendText(text)

	for _, child := range tree.Root.Children {
		p.stats.TopLevel[child.Type]++
	}

	var walkErr error
	tree.Root.Walk(func(n *parser.Node) bool {
		if walkErr != nil {
			return false
		}
		walkErr = p.visit(n)
		return walkErr == nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if err := p.resolveCalls(); err != nil {
		return nil, err
	}

	lines := p.builder.Lines()
	p.stats.Lines = len(lines)
	p.stats.Functions = len(p.table.Functions())
	p.stats.Strings = len(p.table.Strings())
	p.stats.Notifications = len(p.notes)

	o.logger.Debug("indexed document",
		logging.FieldPath, tree.Path,
		logging.FieldLines, p.stats.Lines,
		logging.FieldFunctions, p.stats.Functions,
		logging.FieldStrings, p.stats.Strings,
		logging.FieldReferences, p.stats.References,
		logging.FieldNotifications, p.stats.Notifications,
		logging.FieldDuration, time.Since(started),
	)

	return &Result{
		Text:          text,
		LineTable:     p.lines,
		Symbols:       p.table,
		Lines:         lines,
		Notifications: p.notes,
		Stats:         p.stats,
	}, nil
}

func (p *pass) visit(n *parser.Node) error {
	switch n.Kind {
	case parser.NodeFunction:
		return p.function(n)
	case parser.NodeCall:
		return p.call(n)
	case parser.NodeString:
		return p.stringLiteral(n)
	case parser.NodeVariableDeclaration:
		return p.declaration(n)
	}
	return nil
}

func (p *pass) function(n *parser.Node) error {
	sym := symbols.Symbol{
		Kind:   symbols.KindFunction,
		Name:   p.tree.Text(n.Name),
		Start:  n.Start,
		Length: n.Length,
		Params: n.Params,
	}
	p.table.Add(sym)

	if err := p.mark(n.Keyword, annotate.ClassKeyword); err != nil {
		return err
	}
	return p.mark(n.Name, annotate.ClassMethodName, annotate.AsMaster(sym.Start))
}

func (p *pass) call(n *parser.Node) error {
	p.stats.Calls++
	if !n.Name.Valid() {
		return nil
	}
	name := p.tree.Text(n.Name)
	p.calls = append(p.calls, pendingCall{name: name, span: n.Name})

	if message, watched := p.opts.watch[name]; watched {
		p.notes = append(p.notes, Notification{
			Kind:    KindPotentiallyHarmful,
			Message: message,
			Address: strconv.Itoa(n.Name.Start),
		})
	}
	return nil
}

func (p *pass) stringLiteral(n *parser.Node) error {
	p.table.Add(symbols.Symbol{
		Kind:   symbols.KindString,
		Start:  n.Start,
		Length: n.Length,
	})

	// line continuations split a literal across lines
	start, end := n.Start, n.End()
	for start < end {
		pos, ok := p.lines.OffsetToPosition(start)
		if !ok {
			return fmt.Errorf("string at %d: %w", start, annotate.ErrOutOfRange)
		}
		lineStart, _ := p.lines.Start(pos.Line)
		lineText, _ := p.lines.Text(pos.Line)
		segEnd := min(end, lineStart+len(lineText))
		if segEnd > start {
			if err := p.mark(parser.Span{Start: start, Length: segEnd - start}, annotate.ClassString); err != nil {
				return err
			}
		}
		start = lineStart + len(lineText) + len(lineindex.Separator)
	}
	return nil
}

func (p *pass) declaration(n *parser.Node) error {
	if err := p.mark(n.Keyword, annotate.ClassKeyword); err != nil {
		return err
	}
	for _, binding := range n.Bindings {
		if err := p.mark(binding, annotate.ClassIdentifier); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) resolveCalls() error {
	for _, call := range p.calls {
		target, ok := p.table.FunctionByName(call.name)
		if !ok {
			continue
		}
		if err := p.mark(call.span, annotate.ClassMethodName, annotate.AsReference(target.Start)); err != nil {
			return err
		}
		p.stats.References++
	}
	return nil
}

func (p *pass) mark(span parser.Span, class annotate.Class, opts ...annotate.ItemOption) error {
	if !span.Valid() {
		return nil
	}
	if err := p.builder.AddItem(span.Start, span.Length, class, opts...); err != nil {
		return fmt.Errorf("failed to annotate %s at %d: %w", class, span.Start, err)
	}
	return nil
}
