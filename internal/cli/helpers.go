package cli

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/morozRed/jsnav/internal/languages"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/parser"
	"github.com/morozRed/jsnav/internal/state"
)

func IsCorruptStateError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// loadPreviousState reads the last index run. A corrupt state file is
// reported and replaced by an empty state so every file counts as changed.
func loadPreviousState(logger *log.Logger, rootPath string) (*state.State, error) {
	st, err := state.Load(rootPath)
	if err == nil {
		return st, nil
	}
	if !IsCorruptStateError(err) {
		return nil, err
	}
	logger.Warn("corrupt state file detected; treating all files as changed",
		logging.FieldPath, state.Path(rootPath),
		logging.FieldError, err,
	)
	return state.NewState(), nil
}

func ReportParseIssues(logger *log.Logger, issues []parser.ParseIssue) {
	for _, issue := range issues {
		args := []any{logging.FieldPath, issue.File}
		if issue.Language != "" {
			args = append(args, "language", issue.Language)
		}
		if issue.Severity == "error" {
			logger.Error(issue.Message, args...)
			continue
		}
		logger.Warn(issue.Message, args...)
	}
}

// withoutVendored drops trees and issues under vendored directories.
func withoutVendored(result *parser.ParseResult) (kept *parser.ParseResult, skipped int) {
	kept = &parser.ParseResult{RootPath: result.RootPath}
	for _, tree := range result.Files {
		if languages.IsVendored(tree.Path) {
			skipped++
			continue
		}
		kept.Files = append(kept.Files, tree)
	}
	for _, issue := range result.Issues {
		if languages.IsVendored(issue.File) {
			continue
		}
		kept.Issues = append(kept.Issues, issue)
	}
	return kept, skipped
}
