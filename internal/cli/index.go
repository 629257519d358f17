package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/config"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/fileutil"
	"github.com/morozRed/jsnav/internal/indexer"
	"github.com/morozRed/jsnav/internal/languages"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/state"
	"github.com/morozRed/jsnav/internal/store"
)

// IndexOptions controls one index run.
type IndexOptions struct {
	DBPath          string
	IncludeVendored bool
	AsJSON          bool
}

func RunIndex(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	includeVendored, err := cmd.Flags().GetBool("include-vendored")
	if err != nil {
		return fmt.Errorf("failed to read --include-vendored flag: %w", err)
	}
	dbPath, err := OptionalStringFlag(cmd, "db")
	if err != nil {
		return err
	}

	rootPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %q is not a directory", rootPath)
	}

	return IndexProject(commandContext(cmd), stdout(cmd), rootPath, IndexOptions{
		DBPath:          dbPath,
		IncludeVendored: includeVendored,
		AsJSON:          asJSON,
	})
}

// IndexProject builds every supported file under rootPath, records the run
// in the state file and, with a database path, exports the documents.
func IndexProject(ctx context.Context, w io.Writer, rootPath string, opts IndexOptions) error {
	start := time.Now()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	ignoreRules, err := LoadIgnoreRules(rootPath, cfg.Ignore)
	if err != nil {
		return err
	}
	previous, err := loadPreviousState(logger, rootPath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	registry := languages.NewDefaultRegistry()
	result, err := registry.ParseDirectory(rootPath, ignoreRules)
	if err != nil {
		return fmt.Errorf("failed to parse source files: %w", err)
	}
	skipped := 0
	if !opts.IncludeVendored {
		result, skipped = withoutVendored(result)
	}
	ReportParseIssues(logger, result.Issues)

	var db *store.Store
	if opts.DBPath != "" {
		if !filepath.IsAbs(opts.DBPath) {
			opts.DBPath = filepath.Join(rootPath, opts.DBPath)
		}
		db, err = store.Open(opts.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	next := state.NewState()
	hashes := make(map[string]string, len(result.Files)+len(result.Issues))
	failed := make([]string, 0)

	progress := newIndexProgressReporter("index", len(result.Files), opts.AsJSON)
	for i, tree := range result.Files {
		progress.Update(tree.Path, i+1)
		hashes[tree.Path] = tree.Hash

		res, err := indexer.Index(tree, indexer.WithWatchList(cfg.WatchList), indexer.WithLogger(logger))
		if err != nil {
			logger.Error("failed to index file", logging.FieldPath, tree.Path, logging.FieldError, err)
			next.SetFile(tree.Path, state.FileState{Hash: tree.Hash, Language: tree.Language, Issue: err.Error()})
			failed = append(failed, tree.Path)
			continue
		}

		snap := document.NewSnapshot(tree.Path, 0, tree, res)
		next.SetFile(tree.Path, state.FileState{
			Hash:          tree.Hash,
			Language:      tree.Language,
			Lines:         res.Stats.Lines,
			Functions:     res.Stats.Functions,
			Strings:       res.Stats.Strings,
			References:    res.Stats.References,
			Notifications: res.Stats.Notifications,
		})
		if db != nil {
			if err := db.Save(ctx, tree.Path, snap); err != nil {
				return fmt.Errorf("failed to export %s: %w", tree.Path, err)
			}
		}
	}
	progress.Done(len(result.Files))

	for _, issue := range result.Issues {
		if issue.Severity != "error" {
			continue
		}
		hash, err := fileutil.HashFile(filepath.Join(rootPath, filepath.FromSlash(issue.File)))
		if err != nil {
			continue
		}
		hashes[issue.File] = hash
		next.SetFile(issue.File, state.FileState{Hash: hash, Language: issue.Language, Issue: issue.Message})
		failed = append(failed, issue.File)
		if db != nil {
			if err := db.Remove(ctx, issue.File); err != nil {
				return fmt.Errorf("failed to remove %s from database: %w", issue.File, err)
			}
		}
	}
	sort.Strings(failed)

	changed := previous.ChangedFiles(hashes)
	deleted := previous.DeletedFiles(fileutil.ToSet(fileutil.Keys(hashes)))
	if db != nil {
		for _, file := range deleted {
			if err := db.Remove(ctx, file); err != nil {
				return fmt.Errorf("failed to remove %s from database: %w", file, err)
			}
		}
	}

	if _, err := next.Save(rootPath); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	totals := next.Totals()
	summary := RunSummary{
		Mode:          "index",
		RootPath:      rootPath,
		Database:      opts.DBPath,
		Scanned:       len(hashes),
		Indexed:       len(hashes) - len(failed),
		Failed:        len(failed),
		Skipped:       skipped,
		Changed:       len(changed),
		Deleted:       len(deleted),
		Functions:     totals.Functions,
		Strings:       totals.Strings,
		References:    totals.References,
		Notifications: totals.Notifications,
		DurationMS:    time.Since(start).Milliseconds(),
		ChangedFiles:  changed,
		DeletedFiles:  deleted,
		FailedFiles:   failed,
	}
	return PrintRunSummary(w, summary, opts.AsJSON)
}
