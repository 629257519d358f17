package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/fileutil"
	"github.com/morozRed/jsnav/internal/nav"
	"github.com/morozRed/jsnav/internal/state"
	"github.com/morozRed/jsnav/internal/store"
)

// DefaultDatabase is used by `index --db` and `lookup` when no path is given.
var DefaultDatabase = filepath.Join(state.Dir, "index.db")

// RunLookup queries a database written by `index --db`: with a name it lists
// matching function definitions, without one it lists the exported files.
func RunLookup(cmd *cobra.Command, args []string) error {
	asJSON, err := nav.OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	dbPath, err := OptionalStringFlag(cmd, "db")
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = DefaultDatabase
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database %s not found; run `jsnav index --db %s` first", dbPath, dbPath)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := commandContext(cmd)
	out := stdout(cmd)

	if len(args) == 0 {
		files, err := db.Files(ctx)
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}
		if asJSON {
			return fileutil.PrintJSON(out, map[string]any{"files": files})
		}
		fmt.Fprintf(out, "files in %s (%d)\n", dbPath, len(files))
		for _, file := range files {
			fmt.Fprintf(out, "- %s lines=%d symbols=%d notifications=%d\n", file.Path, file.LineCount, file.Symbols, file.Notes)
		}
		return nil
	}

	type match struct {
		store.Location
		References int `json:"references"`
	}
	locations, err := db.FindFunctions(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to look up %q: %w", args[0], err)
	}
	matches := make([]match, 0, len(locations))
	for _, loc := range locations {
		refs, err := db.CountReferences(ctx, loc.Path, loc.Start)
		if err != nil {
			return fmt.Errorf("failed to count references to %s: %w", loc.Name, err)
		}
		matches = append(matches, match{Location: loc, References: refs})
	}

	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"query":   args[0],
			"matches": matches,
		})
	}
	fmt.Fprintf(out, "function matches for %q (%d)\n", args[0], len(matches))
	for _, m := range matches {
		fmt.Fprintf(out, "- %s(%s) %s:%d:%d references=%d\n", m.Name, strings.Join(m.Params, ", "), m.Path, m.Line+1, m.Column+1, m.References)
	}
	return nil
}
