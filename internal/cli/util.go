package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/ignore"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// LoadIgnoreRules returns the .jsnavignore rules of rootPath followed by
// extra rules from the config.
func LoadIgnoreRules(rootPath string, extra []string) ([]string, error) {
	rules, err := ignore.Load(rootPath)
	if err != nil {
		return nil, err
	}
	return append(rules, extra...), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}
