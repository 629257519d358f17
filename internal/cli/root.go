package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/config"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/nav"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsnav",
		Short: "Render and navigate annotated JavaScript documents",
		Long: `jsnav parses a JavaScript or TypeScript file into an annotated document:
keywords, identifiers, strings and function names are highlighted, calls
are linked to the functions they resolve to and calls to watched functions
raise notifications.

Configuration is read from .jsnav.toml or .jsnav.yaml in the working
directory or one of its parents.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadRuntime,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: discovered .jsnav.toml/.jsnav.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("color", "", "Color output: auto|always|never")

	// Document Commands
	renderCmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print the annotated document",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRender,
	}
	renderCmd.Flags().Bool("line-numbers", true, "Prefix lines with their line number")
	renderCmd.Flags().Bool("notifications", false, "List notifications after the document")

	watchCmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Render the document and re-render it on every change",
		Args:  cobra.ExactArgs(1),
		RunE:  RunWatch,
	}
	watchCmd.Flags().Bool("line-numbers", true, "Prefix lines with their line number")

	identifyCmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Report whether a file is accepted as a JavaScript document",
		Args:  cobra.ExactArgs(1),
		RunE:  RunIdentify,
	}
	identifyCmd.Flags().Bool("json", false, "Print machine-readable result")

	// Navigate Commands
	symbolsCmd := &cobra.Command{
		Use:   "symbols <file>",
		Short: "List function definitions",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunSymbols,
	}
	symbolsCmd.Flags().Bool("json", false, "Print machine-readable symbols")
	symbolsCmd.Flags().Bool("strings", false, "Include string literals")

	notificationsCmd := &cobra.Command{
		Use:   "notifications <file>",
		Short: "List notifications raised while indexing",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunNotifications,
	}
	notificationsCmd.Flags().Bool("json", false, "Print machine-readable notifications")

	positionCmd := &cobra.Command{
		Use:   "position <file> <address>",
		Short: "Resolve an address (byte offset or function name) to line and column",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunPosition,
	}
	positionCmd.Flags().Bool("json", false, "Print machine-readable position")

	addressCmd := &cobra.Command{
		Use:   "address <file> <line> <column>",
		Short: "Convert a 0-based line and column to an address",
		Args:  cobra.ExactArgs(3),
		RunE:  nav.RunAddress,
	}
	addressCmd.Flags().Bool("json", false, "Print machine-readable address")

	labelCmd := &cobra.Command{
		Use:   "label <file> <address>",
		Short: "Name the function containing an address",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunLabel,
	}
	labelCmd.Flags().Bool("json", false, "Print machine-readable label")

	definitionCmd := &cobra.Command{
		Use:   "definition <file> <name|line:column>",
		Short: "Resolve the function defined by a name or at a location",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunDefinition,
	}
	definitionCmd.Flags().Bool("json", false, "Print machine-readable definition")

	referencesCmd := &cobra.Command{
		Use:   "references <file> <name>",
		Short: "Show calls resolved to a function",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunReferences,
	}
	referencesCmd.Flags().Bool("json", false, "Print machine-readable references")

	callersCmd := &cobra.Command{
		Use:   "callers <file> <name>",
		Short: "Show the functions calling a function",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunCallers,
	}
	callersCmd.Flags().Bool("json", false, "Print machine-readable callers")

	calleesCmd := &cobra.Command{
		Use:   "callees <file> <name>",
		Short: "Show the functions a function calls",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunCallees,
	}
	calleesCmd.Flags().Bool("json", false, "Print machine-readable callees")

	// Project Commands
	indexCmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index every supported file and record the run in .jsnav/",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunIndex,
	}
	indexCmd.Flags().String("db", "", "Export documents to this SQLite database (e.g. "+DefaultDatabase+")")
	indexCmd.Flags().Bool("include-vendored", false, "Index vendored files too")
	indexCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show files changed since the last index run",
		Args:  cobra.NoArgs,
		RunE:  RunStatus,
	}
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	lookupCmd := &cobra.Command{
		Use:   "lookup [name]",
		Short: "Find functions by name in an exported database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunLookup,
	}
	lookupCmd.Flags().String("db", DefaultDatabase, "SQLite database written by index --db")
	lookupCmd.Flags().Bool("json", false, "Print machine-readable matches")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsnav %s\n", version)
		},
	}

	rootCmd.AddCommand(
		renderCmd,
		watchCmd,
		identifyCmd,
		symbolsCmd,
		notificationsCmd,
		positionCmd,
		addressCmd,
		labelCmd,
		definitionCmd,
		referencesCmd,
		callersCmd,
		calleesCmd,
		indexCmd,
		statusCmd,
		lookupCmd,
		versionCmd,
	)

	return rootCmd
}

// loadRuntime loads the config, applies flag overrides and stores the
// config and logger in the command context.
func loadRuntime(cmd *cobra.Command, args []string) error {
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return err
	}
	workDir, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath, workDir)
	if err != nil {
		return err
	}

	if level, ok, err := changedStringFlag(cmd, "log-level"); err != nil {
		return err
	} else if ok {
		cfg.LogLevel = level
	}
	if color, ok, err := changedStringFlag(cmd, "color"); err != nil {
		return err
	} else if ok {
		cfg.Color = color
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := logging.New(cfg.LogLevel)
	logging.SetDefault(logger)

	ctx := logging.WithLogger(commandContext(cmd), logger)
	cmd.SetContext(config.WithConfig(ctx, cfg))
	return nil
}
