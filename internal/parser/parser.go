package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/morozRed/jsnav/internal/ignore"
)

// Errors returned while turning content into a Tree.
var (
	ErrDecode      = errors.New("source is not valid UTF-8")
	ErrSyntax      = errors.New("syntax error")
	ErrUnsupported = errors.New("unsupported file type")
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "javascript")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse builds a Tree from source code. Content that does not parse
	// cleanly yields an error wrapping ErrSyntax.
	Parse(filename string, content []byte) (*Tree, error)
}

// Detector guesses a language name for content whose file name carries no
// registered extension.
type Detector func(filename string, content []byte) (string, bool)

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
	detect    Detector
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// SetDetector installs the content-based fallback used by ParserFor.
func (r *Registry) SetDetector(d Detector) {
	r.detect = d
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// ParserFor resolves a parser by extension, falling back to the detector
// for extensionless or unknown files.
func (r *Registry) ParserFor(filename string, content []byte) (LanguageParser, bool) {
	if parser, ok := r.GetParserForFile(filename); ok {
		return parser, true
	}
	if r.detect == nil {
		return nil, false
	}
	lang, ok := r.detect(filename, content)
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseContent parses content that was read from filename.
func (r *Registry) ParseContent(filename string, content []byte) (*Tree, error) {
	parser, ok := r.ParserFor(filename, content)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s", ErrDecode, filename)
	}

	tree, err := parser.Parse(filename, content)
	if err != nil {
		return nil, err
	}
	tree.Path = filename
	tree.Hash = HashContent(content)
	return tree, nil
}

// ParseFile parses a single file and returns its tree
func (r *Registry) ParseFile(path string) (*Tree, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.ParseContent(path, content)
}

// Identify reports whether content is source this registry can index: it
// must parse and produce at least one top-level node.
func (r *Registry) Identify(filename string, content []byte) bool {
	tree, err := r.ParseContent(filename, content)
	if err != nil {
		return false
	}
	return tree.Root != nil && len(tree.Root.Children) > 0
}

// ParseDirectory recursively parses all supported files in a directory
func (r *Registry) ParseDirectory(root string, ignorePaths []string) (*ParseResult, error) {
	ignoreMatcher := ignore.NewMatcher(ignorePaths)

	result := &ParseResult{
		RootPath: root,
		Files:    make([]*Tree, 0),
		Issues:   make([]ParseIssue, 0),
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			relPath := path
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				relPath = rel
			}
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories and ignored paths
		relPath, _ := filepath.Rel(root, path)
		relPath = filepath.ToSlash(relPath)
		if ignoreMatcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		langParser, ok := r.GetParserForFile(path)
		if !ok {
			return nil // unsupported file type, skip silently
		}

		tree, err := r.ParseFile(path)
		if err != nil {
			result.Issues = append(result.Issues, ParseIssue{
				File:     relPath,
				Language: langParser.Language(),
				Severity: "error",
				Message:  err.Error(),
			})
			return nil
		}
		tree.Path = relPath
		result.Files = append(result.Files, tree)

		return nil
	})

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].File == result.Issues[j].File {
			return result.Issues[i].Message < result.Issues[j].Message
		}
		return result.Issues[i].File < result.Issues[j].File
	})

	return result, err
}

// HashContent returns the short content hash used to detect changes.
func HashContent(content []byte) string {
	h := sha256.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:16] // short hash
}
