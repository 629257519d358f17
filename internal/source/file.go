// Package source supplies document content from the file system and turns
// file system notifications into versioned change events.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/logging"
	"github.com/morozRed/jsnav/internal/parser"
)

// DefaultDebounce is the quiet period after the last write before a change
// event is emitted.
const DefaultDebounce = 200 * time.Millisecond

// FileSource reads a document from disk.
type FileSource struct {
	path     string
	debounce time.Duration
	logger   *log.Logger

	mu       sync.Mutex
	version  uint64
	lastHash string
}

// Option configures a FileSource.
type Option func(*FileSource)

// WithDebounce sets the debounce window. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(s *FileSource) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// NewFileSource creates a source for path.
func NewFileSource(path string, opts ...Option) *FileSource {
	s := &FileSource{
		path:     path,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

func (s *FileSource) Name() string {
	return s.path
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path)
}

// Watch emits a ChangeEvent each time the file settles with new content.
// The parent directory is watched so editors that replace the file are
// followed. The channel is closed when ctx is done.
func (s *FileSource) Watch(ctx context.Context) (<-chan document.ChangeEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	if content, err := os.ReadFile(s.path); err == nil {
		s.mu.Lock()
		s.lastHash = parser.HashContent(content)
		s.mu.Unlock()
	}

	events := make(chan document.ChangeEvent)
	go s.run(ctx, watcher, events)
	return events, nil
}

func (s *FileSource) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- document.ChangeEvent) {
	defer close(out)
	defer watcher.Close()

	target := filepath.Clean(s.path)
	tick := s.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error", logging.FieldPath, s.path, logging.FieldError, err)

		case now := <-ticker.C:
			if pending.IsZero() || now.Sub(pending) < s.debounce {
				continue
			}
			pending = time.Time{}

			ev, changed := s.settle()
			if !changed {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// settle hashes the current content and reports a new version when it
// differs from the last one seen.
func (s *FileSource) settle() (document.ChangeEvent, bool) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Debug("file not readable after change", logging.FieldPath, s.path, logging.FieldError, err)
		return document.ChangeEvent{}, false
	}
	hash := parser.HashContent(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if hash == s.lastHash {
		return document.ChangeEvent{}, false
	}
	s.lastHash = hash
	s.version++
	s.logger.Debug("content changed",
		logging.FieldPath, s.path,
		logging.FieldVersion, s.version,
		logging.FieldHash, hash,
	)
	return document.ChangeEvent{Version: s.version, Hash: hash, At: time.Now()}, true
}
