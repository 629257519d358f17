package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/jsnav/internal/fileutil"
)

type RunSummary struct {
	Mode          string   `json:"mode"`
	RootPath      string   `json:"root_path"`
	Database      string   `json:"database,omitempty"`
	Scanned       int      `json:"scanned"`
	Indexed       int      `json:"indexed"`
	Failed        int      `json:"failed"`
	Skipped       int      `json:"skipped"`
	Changed       int      `json:"changed"`
	Deleted       int      `json:"deleted"`
	Functions     int      `json:"functions"`
	Strings       int      `json:"strings"`
	References    int      `json:"references"`
	Notifications int      `json:"notifications"`
	DurationMS    int64    `json:"duration_ms"`
	ChangedFiles  []string `json:"changed_files,omitempty"`
	DeletedFiles  []string `json:"deleted_files,omitempty"`
	FailedFiles   []string `json:"failed_files,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	if summary.Mode == "index" {
		fmt.Fprintf(w, "index complete in %dms\n", summary.DurationMS)
		if summary.Database != "" {
			fmt.Fprintf(w, "database: %s\n", summary.Database)
		}
		fmt.Fprintf(w, "files: scanned=%d indexed=%d failed=%d skipped=%d\n", summary.Scanned, summary.Indexed, summary.Failed, summary.Skipped)
		fmt.Fprintf(w, "symbols: functions=%d strings=%d references=%d notifications=%d\n", summary.Functions, summary.Strings, summary.References, summary.Notifications)
		fmt.Fprintf(w, "changes: changed=%d deleted=%d\n", summary.Changed, summary.Deleted)
	} else {
		fmt.Fprintf(w,
			"%s: scanned=%d changed=%d deleted=%d failed=%d duration=%dms\n",
			summary.Mode,
			summary.Scanned,
			summary.Changed,
			summary.Deleted,
			summary.Failed,
			summary.DurationMS,
		)
	}

	if len(summary.ChangedFiles) > 0 {
		fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Fprintf(w, "deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}
	if len(summary.FailedFiles) > 0 {
		fmt.Fprintf(w, "failed files (%d): %s\n", len(summary.FailedFiles), SummarizePaths(summary.FailedFiles, 8))
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
