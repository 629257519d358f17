package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/morozRed/jsnav/internal/ignore"
	"github.com/morozRed/jsnav/internal/parser"
)

// HashFile returns the short content hash of path, the same value the
// parser stamps on trees.
func HashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return parser.HashContent(content), nil
}

// ScanOptions narrows ScanFileHashes.
type ScanOptions struct {
	Ignore []string
	// Keep, when set, is asked about every parseable file by slash path.
	Keep func(relPath string) bool
}

// ScanFileHashes hashes every file under root that registry can parse by
// extension and that survives the ignore rules. Keys are slash paths
// relative to root.
func ScanFileHashes(root string, registry *parser.Registry, opts ScanOptions) (map[string]string, error) {
	matcher := ignore.NewMatcher(opts.Ignore)
	hashes := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if matcher.ShouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := registry.GetParserForFile(path); !ok {
			return nil
		}
		if opts.Keep != nil && !opts.Keep(rel) {
			return nil
		}

		hash, err := HashFile(path)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", rel, err)
		}
		hashes[rel] = hash
		return nil
	})
	return hashes, err
}
