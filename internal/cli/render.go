package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/nav"
	"github.com/morozRed/jsnav/internal/render"
)

// RunRender prints the annotated document. When the file cannot be parsed
// the raw text is printed instead.
func RunRender(cmd *cobra.Command, args []string) error {
	gutter, err := nav.OptionalBoolFlag(cmd, "line-numbers", true)
	if err != nil {
		return err
	}
	withNotes, err := nav.OptionalBoolFlag(cmd, "notifications", false)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	out := stdout(cmd)
	renderer := nav.NewRenderer(ctx, out, gutter)

	doc, _ := nav.Open(ctx, args[0])
	if err := doc.Build(ctx); err != nil {
		return renderRaw(logging.FromContext(ctx), out, renderer, args[0], err)
	}
	snap, err := doc.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := renderSnapshot(out, renderer, snap); err != nil {
		return err
	}
	if withNotes {
		fmt.Fprintln(out)
		return renderer.Notifications(out, snap)
	}
	return nil
}

func renderSnapshot(w io.Writer, renderer *render.Renderer, snap *document.Snapshot) error {
	for _, anchor := range snap.Anchors() {
		part, ok := snap.DocumentPart(anchor, snap.LineCount(), 0)
		if !ok {
			continue
		}
		if err := renderer.Lines(w, part.Lines); err != nil {
			return err
		}
	}
	return nil
}

// renderRaw is the fallback view for files that fail to parse. Other build
// errors are returned unchanged.
func renderRaw(logger *log.Logger, w io.Writer, renderer *render.Renderer, path string, buildErr error) error {
	if !errors.Is(buildErr, document.ErrParse) {
		return buildErr
	}
	logger.Warn("showing raw text", logging.FieldPath, path, logging.FieldError, buildErr)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return renderer.Raw(w, string(content))
}
