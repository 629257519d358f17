package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/fileutil"
	"github.com/morozRed/jsnav/internal/languages"
	"github.com/morozRed/jsnav/internal/nav"
)

// RunIdentify reports whether a file is accepted as a JavaScript document:
// its language is detected and it parses to a non-empty tree.
func RunIdentify(cmd *cobra.Command, args []string) error {
	asJSON, err := nav.OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	language, detected := languages.Detect(path, content)
	accepted := detected && languages.NewDefaultRegistry().Identify(path, content)
	vendored := languages.IsVendored(path)

	out := stdout(cmd)
	if asJSON {
		return fileutil.PrintJSON(out, map[string]any{
			"file":     path,
			"language": language,
			"accepted": accepted,
			"vendored": vendored,
		})
	}
	if !accepted {
		fmt.Fprintf(out, "%s: not a javascript document\n", path)
		return nil
	}
	fmt.Fprintf(out, "%s: %s", path, language)
	if vendored {
		fmt.Fprint(out, " (vendored)")
	}
	fmt.Fprintln(out)
	return nil
}
