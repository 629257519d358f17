// Package nav implements the query commands that answer navigation
// questions about one document: symbols, positions, labels and the calls
// between functions.
package nav

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/config"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/fileutil"
	"github.com/morozRed/jsnav/internal/lineindex"
	"github.com/morozRed/jsnav/internal/render"
	"github.com/morozRed/jsnav/internal/symbols"
)

func RunSymbols(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	withStrings, err := OptionalBoolFlag(cmd, "strings", false)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	snap, err := LoadSnapshot(ctx, args[0])
	if err != nil {
		return err
	}

	functions := make([]SymbolRecord, 0)
	for _, fn := range snap.Functions() {
		functions = append(functions, SymbolRecordFromSymbol(snap, fn))
	}
	strs := make([]SymbolRecord, 0)
	if withStrings {
		for _, str := range snap.Strings() {
			strs = append(strs, SymbolRecordFromSymbol(snap, str))
		}
	}

	out := output(cmd)
	if asJSON {
		payload := map[string]any{
			"file":      snap.Name,
			"functions": functions,
		}
		if withStrings {
			payload["strings"] = strs
		}
		return fileutil.PrintJSON(out, payload)
	}

	fmt.Fprintf(out, "functions in %s (%d)\n", snap.Name, len(functions))
	if err := NewRenderer(ctx, out, false).Functions(out, snap); err != nil {
		return err
	}
	if withStrings {
		fmt.Fprintf(out, "strings in %s (%d)\n", snap.Name, len(strs))
		text := snap.Text()
		for _, str := range strs {
			fmt.Fprintf(out, "- %s %s\n", strconv.Quote(text[str.Start:str.Start+str.Length]), displayPosition(str.Line, str.Column))
		}
	}
	return nil
}

func RunNotifications(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	snap, err := LoadSnapshot(ctx, args[0])
	if err != nil {
		return err
	}

	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"file":          snap.Name,
			"notifications": NotificationRecords(snap),
		})
	}
	return NewRenderer(ctx, out, false).Notifications(out, snap)
}

// RunPosition resolves an address (decimal offset or function name) to a
// 0-based position.
func RunPosition(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	snap, err := LoadSnapshot(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	pos, ok := snap.AddressToPosition(args[1])
	if !ok {
		return fmt.Errorf("address %q does not resolve in %s", args[1], snap.Name)
	}
	address, _ := snap.PositionToAddress(pos)
	record := PositionRecord{Address: address, Line: pos.Line, Column: pos.Column}

	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":    args[1],
			"position": record,
		})
	}
	fmt.Fprintf(out, "address=%s line=%d column=%d\n", record.Address, record.Line, record.Column)
	return nil
}

// RunAddress converts a 0-based line and column to the canonical address.
func RunAddress(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	line, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", args[1], err)
	}
	column, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid column %q: %w", args[2], err)
	}

	snap, err := LoadSnapshot(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	address, ok := snap.PositionToAddress(lineindex.Position{Line: line, Column: column})
	if !ok {
		return fmt.Errorf("position %d:%d is outside %s", line, column, snap.Name)
	}
	record := PositionRecord{Address: address, Line: line, Column: column}

	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"position": record,
		})
	}
	fmt.Fprintf(out, "line=%d column=%d address=%s\n", record.Line, record.Column, record.Address)
	return nil
}

func RunLabel(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	snap, err := LoadSnapshot(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	label, ok := snap.Label(args[1])

	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query": args[1],
			"label": label,
			"found": ok,
		})
	}
	if !ok {
		fmt.Fprintf(out, "no label for %s\n", args[1])
		return nil
	}
	fmt.Fprintln(out, label)
	return nil
}

func RunReferences(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	snap, err := LoadSnapshot(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	fn, err := FindFunction(snap, args[1])
	if err != nil {
		return err
	}
	refs := References(snap, fn)

	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":      args[1],
			"symbol":     SymbolRecordFromSymbol(snap, fn),
			"references": refs,
		})
	}

	fmt.Fprintf(out, "references to %s (%d)\n", fn.Name, len(refs))
	if len(refs) == 0 {
		fmt.Fprintln(out, "no references found")
		return nil
	}
	for _, ref := range refs {
		fmt.Fprintf(out, "- %s", displayPosition(ref.Line, ref.Column))
		if ref.Label != "" {
			fmt.Fprintf(out, " in %s", ref.Label)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func RunCallers(cmd *cobra.Command, args []string) error {
	return runEdges(cmd, args, "callers", CollectCallers)
}

func RunCallees(cmd *cobra.Command, args []string) error {
	return runEdges(cmd, args, "callees", CollectCallees)
}

func runEdges(cmd *cobra.Command, args []string, kind string, collect func(*document.Snapshot, symbols.Symbol) []EdgeRecord) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	snap, err := LoadSnapshot(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	fn, err := FindFunction(snap, args[1])
	if err != nil {
		return err
	}
	edges := collect(snap, fn)

	out := output(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":  args[1],
			"symbol": SymbolRecordFromSymbol(snap, fn),
			kind:     edges,
		})
	}

	fmt.Fprintf(out, "%s for %s (%d)\n", kind, fn.Name, len(edges))
	if len(edges) == 0 {
		fmt.Fprintf(out, "no %s found\n", kind)
		return nil
	}
	for _, edge := range edges {
		name := "<top-level>"
		if edge.Symbol != nil {
			name = edge.Symbol.Name
			if name == "" {
				name = "<anonymous>"
			}
		}
		sites := make([]string, 0, len(edge.CallSites))
		for _, site := range edge.CallSites {
			sites = append(sites, displayPosition(site.Line, site.Column))
		}
		fmt.Fprintf(out, "- %s at %s\n", name, strings.Join(sites, ", "))
	}
	return nil
}

// NewRenderer returns a renderer whose color mode follows the config in ctx
// and whether w is a terminal.
func NewRenderer(ctx context.Context, w io.Writer, gutter bool) *render.Renderer {
	cfg := config.FromContext(ctx)
	return render.NewRenderer(render.NewStyles(render.IsColorEnabled(cfg.Color, w)), gutter)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}

func output(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}
