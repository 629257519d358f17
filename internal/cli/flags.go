package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

// changedStringFlag returns the flag value only when it was set on the
// command line.
func changedStringFlag(cmd *cobra.Command, name string) (string, bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return "", false, nil
	}
	value, err := OptionalStringFlag(cmd, name)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
