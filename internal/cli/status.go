package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/config"
	"github.com/morozRed/jsnav/internal/fileutil"
	"github.com/morozRed/jsnav/internal/languages"
	"github.com/morozRed/jsnav/internal/logging"
)

// RunStatus compares the working tree against the last index run.
func RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	ctx := commandContext(cmd)
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	ignoreRules, err := LoadIgnoreRules(rootPath, cfg.Ignore)
	if err != nil {
		return err
	}
	st, err := loadPreviousState(logger, rootPath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	// vendored files only count when a previous run indexed them
	currentHashes, err := fileutil.ScanFileHashes(rootPath, languages.NewDefaultRegistry(), fileutil.ScanOptions{
		Ignore: ignoreRules,
		Keep: func(file string) bool {
			_, tracked := st.Files[file]
			return tracked || !languages.IsVendored(file)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}

	changed := st.ChangedFiles(currentHashes)
	deleted := st.DeletedFiles(fileutil.ToSet(fileutil.Keys(currentHashes)))
	failed := make([]string, 0)
	for file, fileState := range st.Files {
		if fileState.Issue != "" {
			failed = append(failed, file)
		}
	}
	sort.Strings(failed)

	totals := st.Totals()
	summary := RunSummary{
		Mode:          "status",
		RootPath:      rootPath,
		Scanned:       len(currentHashes),
		Indexed:       len(st.Files) - len(failed),
		Failed:        len(failed),
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
	return PrintRunSummary(stdout(cmd), summary, asJSON)
}
