// Package state persists what the last `jsnav index` run saw so `status`
// can report files that changed since.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/morozRed/jsnav/internal/fileutil"
)

const (
	Dir                 = ".jsnav"
	StateFile           = "state.json"
	CurrentStateVersion = "1"
)

// FileState records one indexed file.
type FileState struct {
	Hash          string    `json:"hash"`
	Language      string    `json:"language,omitempty"`
	Lines         int       `json:"lines"`
	Functions     int       `json:"functions"`
	Strings       int       `json:"strings"`
	References    int       `json:"references"`
	Notifications int       `json:"notifications"`
	Issue         string    `json:"issue,omitempty"` // parse failure, if any
	UpdatedAt     time.Time `json:"updated_at"`
}

// State is the index run state of a project.
type State struct {
	Version   string               `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
	Files     map[string]FileState `json:"files"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Version: CurrentStateVersion,
		Files:   make(map[string]FileState),
	}
}

// Path returns the state file location under root.
func Path(root string) string {
	return filepath.Join(root, Dir, StateFile)
}

// Load reads the state under root. A missing file yields an empty state.
func Load(root string) (*State, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", StateFile, err)
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	if s.Version == "" {
		s.Version = CurrentStateVersion
	}
	return &s, nil
}

// Save writes the state under root, creating the state directory. It
// reports whether the file content changed.
func (s *State) Save(root string) (bool, error) {
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	s.Version = CurrentStateVersion
	s.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return false, err
	}
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	return fileutil.WriteIfChangedTracked(path, fileutil.EnsureTrailingNewline(data))
}

// SetFile records fs for file.
func (s *State) SetFile(file string, fs FileState) {
	if fs.UpdatedAt.IsZero() {
		fs.UpdatedAt = time.Now()
	}
	s.Files[file] = fs
}

// RemoveFile stops tracking file.
func (s *State) RemoveFile(file string) {
	delete(s.Files, file)
}

// HasChanged reports whether file is new or its hash differs.
func (s *State) HasChanged(file, currentHash string) bool {
	fs, ok := s.Files[file]
	if !ok {
		return true
	}
	return fs.Hash != currentHash
}

// ChangedFiles returns new or modified files, sorted.
func (s *State) ChangedFiles(currentHashes map[string]string) []string {
	changed := make([]string, 0)
	for file, hash := range currentHashes {
		if s.HasChanged(file, hash) {
			changed = append(changed, file)
		}
	}
	sort.Strings(changed)
	return changed
}

// DeletedFiles returns tracked files missing from currentFiles, sorted.
func (s *State) DeletedFiles(currentFiles map[string]bool) []string {
	deleted := make([]string, 0)
	for file := range s.Files {
		if !currentFiles[file] {
			deleted = append(deleted, file)
		}
	}
	sort.Strings(deleted)
	return deleted
}

// Totals sums the per-file counters.
func (s *State) Totals() FileState {
	var total FileState
	for _, fs := range s.Files {
		total.Lines += fs.Lines
		total.Functions += fs.Functions
		total.Strings += fs.Strings
		total.References += fs.References
		total.Notifications += fs.Notifications
	}
	return total
}
