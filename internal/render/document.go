package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/lineindex"
)

// Renderer writes documents with a fixed style set.
type Renderer struct {
	styles *Styles
	gutter bool
}

// NewRenderer creates a renderer. With gutter set each line is prefixed by
// its 1-based line number.
func NewRenderer(styles *Styles, gutter bool) *Renderer {
	return &Renderer{styles: styles, gutter: gutter}
}

// Lines writes annotated lines, styling every item.
func (r *Renderer) Lines(w io.Writer, lines []annotate.Line) error {
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		var b strings.Builder
		if r.gutter {
			b.WriteString(r.styles.paint(r.styles.Gutter, fmt.Sprintf("%*d │ ", width, i+1)))
		}
		cursor := 0
		for _, item := range line.Items {
			b.WriteString(line.Text[cursor:item.Offset])
			b.WriteString(r.styles.paint(r.styles.ForItem(item), line.Text[item.Offset:item.End()]))
			cursor = item.End()
		}
		b.WriteString(line.Text[cursor:])
		b.WriteString("\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// Raw writes unannotated text; used when a document cannot be built.
func (r *Renderer) Raw(w io.Writer, text string) error {
	table := lineindex.Build(text)
	lines := make([]annotate.Line, 0, table.LineCount())
	for _, line := range table.Lines() {
		lines = append(lines, annotate.Line{Text: line})
	}
	return r.Lines(w, lines)
}

// Notifications lists the notifications of snap with their positions.
func (r *Renderer) Notifications(w io.Writer, snap *document.Snapshot) error {
	notes := snap.Notifications()
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, r.styles.paint(r.styles.Dim, "no notifications"))
		return err
	}
	for _, note := range notes {
		where := note.Address
		if pos, ok := snap.AddressToPosition(note.Address); ok {
			where = fmt.Sprintf("%d:%d", pos.Line+1, pos.Column+1)
		}
		_, err := fmt.Fprintf(w, "%s %s %s\n",
			r.styles.paint(r.styles.Harmful, note.Kind.String()),
			note.Message,
			r.styles.paint(r.styles.Dim, where),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Functions lists function symbols with their parameters and positions.
func (r *Renderer) Functions(w io.Writer, snap *document.Snapshot) error {
	fns := snap.Functions()
	if len(fns) == 0 {
		_, err := fmt.Fprintln(w, r.styles.paint(r.styles.Dim, "no functions"))
		return err
	}
	for _, fn := range fns {
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}
		pos, _ := snap.AddressToPosition(fmt.Sprint(fn.Start))
		_, err := fmt.Fprintf(w, "%s(%s) %s\n",
			r.styles.paint(r.styles.MethodName, name),
			strings.Join(fn.Params, ", "),
			r.styles.paint(r.styles.Dim, fmt.Sprintf("%d:%d", pos.Line+1, pos.Column+1)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
