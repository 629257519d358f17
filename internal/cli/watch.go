package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/nav"
)

// RunWatch renders the document and re-renders it after every change until
// interrupted.
func RunWatch(cmd *cobra.Command, args []string) error {
	gutter, err := nav.OptionalBoolFlag(cmd, "line-numbers", true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.FromContext(ctx)
	out := stdout(cmd)
	renderer := nav.NewRenderer(ctx, out, gutter)

	doc, src := nav.Open(ctx, args[0])
	if err := doc.Build(ctx); err != nil {
		if err := renderRaw(logger, out, renderer, args[0], err); err != nil {
			return err
		}
	} else if snap, err := doc.Snapshot(ctx); err == nil {
		if err := renderSnapshot(out, renderer, snap); err != nil {
			return err
		}
	}

	id := doc.Subscribe(func(ev document.Event) {
		if ev.Err != nil {
			logger.Warn("rebuild failed; keeping previous view",
				logging.FieldPath, doc.Name(),
				logging.FieldVersion, ev.Version,
				logging.FieldError, ev.Err,
			)
			return
		}
		if ev.Snapshot == nil {
			return
		}
		fmt.Fprintf(out, "-- %s version %d (%s) --\n", doc.Name(), ev.Version, ev.State)
		if err := renderSnapshot(out, renderer, ev.Snapshot); err != nil {
			logger.Error("failed to render", logging.FieldPath, doc.Name(), logging.FieldError, err)
		}
	})
	defer doc.Unsubscribe(id)

	events, err := src.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("watching for changes", logging.FieldPath, doc.Name())

	err = doc.Watch(ctx, events)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
