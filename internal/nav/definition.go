package nav

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/fileutil"
	"github.com/morozRed/jsnav/internal/lineindex"
	"github.com/morozRed/jsnav/internal/symbols"
)

func RunDefinition(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	snap, err := LoadSnapshot(ctx, args[0])
	if err != nil {
		return err
	}
	fn, err := ResolveDefinition(snap, args[1])
	if err != nil {
		return err
	}

	record := SymbolRecordFromSymbol(snap, fn)
	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":      args[1],
			"definition": record,
		})
	}

	fmt.Fprintf(out, "definition for %q\n", args[1])
	fmt.Fprintf(out, "- %s(%s) %s %s\n", displayName(fn), strings.Join(fn.Params, ", "), displayPosition(record.Line, record.Column), record.ID)
	return nil
}

// ResolveDefinition resolves a function name or a 0-based "line:column"
// location. A location on a call resolves to the callee; any other
// location resolves to the enclosing function.
func ResolveDefinition(snap *document.Snapshot, query string) (symbols.Symbol, error) {
	pos, isLocation := ParseLocationQuery(query)
	if !isLocation {
		return FindFunction(snap, query)
	}

	offset, ok := snap.Offset(pos)
	if !ok {
		return symbols.Symbol{}, fmt.Errorf("location %s is outside %s", query, snap.Name)
	}
	if anchor, ok := anchorAt(snap, pos); ok {
		if fn, ok := snap.Enclosing(anchor); ok && fn.Start == anchor {
			return fn, nil
		}
	}
	if fn, ok := snap.Enclosing(offset); ok {
		return fn, nil
	}
	return symbols.Symbol{}, fmt.Errorf("no definition at %s in %s", query, snap.Name)
}

// anchorAt returns the cross-reference anchor of the master or reference
// item covering pos.
func anchorAt(snap *document.Snapshot, pos lineindex.Position) (int, bool) {
	lines := snap.Lines()
	if pos.Line < 0 || pos.Line >= len(lines) {
		return 0, false
	}
	for _, item := range lines[pos.Line].Items {
		if !item.HasCrossRef() {
			continue
		}
		if pos.Column >= item.Offset && pos.Column < item.End() {
			return item.CrossRefID, true
		}
	}
	return 0, false
}

// ParseLocationQuery parses "line:column" with 0-based, non-negative parts.
func ParseLocationQuery(query string) (lineindex.Position, bool) {
	lineText, columnText, found := strings.Cut(strings.TrimSpace(query), ":")
	if !found {
		return lineindex.Position{}, false
	}
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 0 {
		return lineindex.Position{}, false
	}
	column, err := strconv.Atoi(columnText)
	if err != nil || column < 0 {
		return lineindex.Position{}, false
	}
	return lineindex.Position{Line: line, Column: column}, true
}
