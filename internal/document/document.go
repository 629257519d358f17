// Package document owns the lifecycle of an annotated source document:
// building it, invalidating it on change and serving immutable snapshots.
package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/morozRed/jsnav/internal/indexer"
	"github.com/morozRed/jsnav/internal/languages"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/parser"
)

var (
	ErrNotBuilt          = errors.New("document has not been built")
	ErrRebuildInProgress = errors.New("rebuild in progress")
	ErrParse             = errors.New("failed to parse document")
)

// State is the lifecycle state of a Document.
type State int32

const (
	StateUnbuilt State = iota
	StateBuilt
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateBuilt:
		return "built"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a change has been handled.
type Event struct {
	Version  uint64
	State    State
	Snapshot *Snapshot // nil until the first successful build
	Err      error     // rebuild failure, if any
}

// Option configures a Document.
type Option func(*Document)

// WithRegistry sets the parser registry. Defaults to languages.NewDefaultRegistry.
func WithRegistry(r *parser.Registry) Option {
	return func(d *Document) {
		d.registry = r
	}
}

// WithIndexOptions passes options to every indexing pass.
func WithIndexOptions(opts ...indexer.Option) Option {
	return func(d *Document) {
		d.indexOpts = append(d.indexOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// Document is safe for concurrent use. Builds are serialized by a latch:
// a build started while another runs fails with ErrRebuildInProgress.
type Document struct {
	src       Source
	registry  *parser.Registry
	indexOpts []indexer.Option
	logger    *log.Logger

	snapshot atomic.Pointer[Snapshot]
	state    atomic.Int32
	version  atomic.Uint64 // latest content version seen
	building atomic.Bool

	subMu sync.RWMutex
	subs  map[string]func(Event)
}

// New creates an unbuilt document over src.
func New(src Source, opts ...Option) *Document {
	d := &Document{
		src:  src,
		subs: make(map[string]func(Event)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = languages.NewDefaultRegistry()
	}
	if d.logger == nil {
		d.logger = logging.Default()
	}
	return d
}

// Name returns the source name.
func (d *Document) Name() string {
	return d.src.Name()
}

// State returns the current lifecycle state.
func (d *Document) State() State {
	return State(d.state.Load())
}

// Build runs a full build. It is also the only way out of StateStale.
// On failure the previous snapshot, if any, stays in place.
func (d *Document) Build(ctx context.Context) error {
	if !d.building.CompareAndSwap(false, true) {
		d.logger.Debug("build rejected", logging.FieldPath, d.src.Name())
		return ErrRebuildInProgress
	}
	defer d.building.Store(false)

	if err := ctx.Err(); err != nil {
		return err
	}

	version := d.version.Load()
	started := time.Now()

	content, err := d.src.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", d.src.Name(), err)
	}

	tree, err := d.registry.ParseContent(d.src.Name(), content)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	opts := append([]indexer.Option{indexer.WithLogger(d.logger)}, d.indexOpts...)
	res, err := indexer.Index(tree, opts...)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", d.src.Name(), err)
	}

	d.snapshot.Store(NewSnapshot(d.src.Name(), version, tree, res))

	// a change that arrived mid-build leaves the document stale
	if d.version.Load() == version {
		d.state.Store(int32(StateBuilt))
	} else {
		d.state.Store(int32(StateStale))
	}

	d.logger.Debug("built document",
		logging.FieldPath, d.src.Name(),
		logging.FieldVersion, version,
		logging.FieldState, d.State(),
		logging.FieldDuration, time.Since(started),
	)
	return nil
}

// Snapshot returns a consistent snapshot for queries. A stale document is
// rebuilt first; when that rebuild cannot run or fails, the previous
// snapshot is served. An unbuilt document yields ErrNotBuilt.
func (d *Document) Snapshot(ctx context.Context) (*Snapshot, error) {
	if d.State() == StateStale {
		if err := d.Build(ctx); err != nil {
			d.logger.Debug("serving previous snapshot",
				logging.FieldPath, d.src.Name(),
				logging.FieldError, err,
			)
		}
	}
	snap := d.snapshot.Load()
	if snap == nil {
		return nil, ErrNotBuilt
	}
	return snap, nil
}

// ContentChanged invalidates the document, rebuilds it and then notifies
// subscribers. Events older than the latest seen version are ignored.
func (d *Document) ContentChanged(ctx context.Context, ev ChangeEvent) error {
	for {
		seen := d.version.Load()
		if ev.Version != 0 && ev.Version <= seen {
			d.logger.Debug("dropped stale change event",
				logging.FieldPath, d.src.Name(),
				logging.FieldVersion, ev.Version,
			)
			return nil
		}
		next := ev.Version
		if next == 0 {
			next = seen + 1
		}
		if d.version.CompareAndSwap(seen, next) {
			break
		}
	}

	if d.state.CompareAndSwap(int32(StateBuilt), int32(StateStale)) {
		d.logger.Debug("document invalidated", logging.FieldPath, d.src.Name())
	}

	err := d.Build(ctx)
	d.notify(Event{
		Version:  d.version.Load(),
		State:    d.State(),
		Snapshot: d.snapshot.Load(),
		Err:      err,
	})
	return err
}

// Watch applies change events until ctx is done or events is closed.
// Rebuild failures are logged and do not stop the loop.
func (d *Document) Watch(ctx context.Context, events <-chan ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := d.ContentChanged(ctx, ev); err != nil {
				d.logger.Warn("rebuild failed",
					logging.FieldPath, d.src.Name(),
					logging.FieldVersion, ev.Version,
					logging.FieldError, err,
				)
			}
		}
	}
}
