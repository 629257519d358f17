package nav

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/morozRed/jsnav/internal/config"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/indexer"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/search"
	"github.com/morozRed/jsnav/internal/source"
	"github.com/morozRed/jsnav/internal/symbols"
)

// Open creates an unbuilt document for path, configured from the config
// and logger carried by ctx. The returned source can be watched for changes.
func Open(ctx context.Context, path string) (*document.Document, *source.FileSource) {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	src := source.NewFileSource(path,
		source.WithDebounce(cfg.Watch.Debounce),
		source.WithLogger(logger),
	)
	doc := document.New(src,
		document.WithLogger(logger),
		document.WithIndexOptions(indexer.WithWatchList(cfg.WatchList)),
	)
	return doc, src
}

// LoadSnapshot builds the document for path and returns its snapshot.
func LoadSnapshot(ctx context.Context, path string) (*document.Snapshot, error) {
	doc, _ := Open(ctx, path)
	if err := doc.Build(ctx); err != nil {
		return nil, err
	}
	return doc.Snapshot(ctx)
}

// FindFunction returns the first function named name in source order.
func FindFunction(snap *document.Snapshot, name string) (symbols.Symbol, error) {
	for _, fn := range snap.Functions() {
		if fn.Name != "" && fn.Name == name {
			return fn, nil
		}
	}
	if suggestions := SuggestFunctions(snap, name, 3); len(suggestions) > 0 {
		return symbols.Symbol{}, fmt.Errorf("function %q not found in %s (did you mean: %s)", name, snap.Name, strings.Join(suggestions, ", "))
	}
	return symbols.Symbol{}, fmt.Errorf("function %q not found in %s", name, snap.Name)
}

// SuggestFunctions returns up to limit distinct function names similar to
// query.
func SuggestFunctions(snap *document.Snapshot, query string, limit int) []string {
	fns := snap.Functions()
	entries := make([]search.Entry, 0, len(fns))
	for _, fn := range fns {
		entries = append(entries, search.Entry{
			ID:     symbols.StableID(snap.Name, fn),
			Name:   fn.Name,
			Params: fn.Params,
		})
	}

	seen := make(map[string]bool)
	var out []string
	for _, result := range search.Build(entries).Search(query, limit*2) {
		if seen[result.Name] {
			continue
		}
		seen[result.Name] = true
		out = append(out, result.Name)
		if len(out) == limit {
			break
		}
	}
	return out
}

func SymbolRecordFromSymbol(snap *document.Snapshot, sym symbols.Symbol) SymbolRecord {
	pos, _ := snap.Position(sym.Start)
	return SymbolRecord{
		ID:     symbols.StableID(snap.Name, sym),
		Name:   sym.Name,
		Kind:   sym.Kind.String(),
		File:   snap.Name,
		Start:  sym.Start,
		Length: sym.Length,
		Line:   pos.Line,
		Column: pos.Column,
		Params: sym.Params,
	}
}

// PositionRecordAt describes offset. Offsets outside the document keep
// their address with a zero position.
func PositionRecordAt(snap *document.Snapshot, offset int) PositionRecord {
	pos, _ := snap.Position(offset)
	return PositionRecord{
		Address: strconv.Itoa(offset),
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

func NotificationRecords(snap *document.Snapshot) []NotificationRecord {
	notes := snap.Notifications()
	out := make([]NotificationRecord, 0, len(notes))
	for _, note := range notes {
		record := NotificationRecord{
			Kind:           note.Kind.String(),
			Message:        note.Message,
			PositionRecord: PositionRecord{Address: note.Address},
		}
		if pos, ok := snap.AddressToPosition(note.Address); ok {
			record.Line = pos.Line
			record.Column = pos.Column
		}
		out = append(out, record)
	}
	return out
}

func displayName(sym symbols.Symbol) string {
	if sym.Name == "" {
		return "<anonymous>"
	}
	return sym.Name
}

// displayPosition renders a 0-based position as a 1-based line:column.
func displayPosition(line, column int) string {
	return fmt.Sprintf("%d:%d", line+1, column+1)
}
