package document

import (
	"context"
	"sync"
	"time"

	"github.com/morozRed/jsnav/internal/parser"
)

// Source provides the text a document is built from.
type Source interface {
	// Name is used for grammar selection and messages.
	Name() string
	// Read returns the current content.
	Read(ctx context.Context) ([]byte, error)
}

// ChangeEvent reports that a source's content changed. Versions increase
// monotonically per source.
type ChangeEvent struct {
	Version uint64    `json:"version"`
	Hash    string    `json:"hash"`
	At      time.Time `json:"at"`
}

// MemorySource is an in-memory Source whose content is replaced by Update.
type MemorySource struct {
	name string

	mu      sync.RWMutex
	content []byte
	version uint64
}

// NewMemorySource creates a source holding content.
func NewMemorySource(name string, content []byte) *MemorySource {
	return &MemorySource{name: name, content: content}
}

func (s *MemorySource) Name() string {
	return s.name
}

func (s *MemorySource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.content...), nil
}

// Update replaces the content and returns the event describing the change.
func (s *MemorySource) Update(content []byte) ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = append([]byte(nil), content...)
	s.version++
	return ChangeEvent{
		Version: s.version,
		Hash:    parser.HashContent(content),
		At:      time.Now(),
	}
}
