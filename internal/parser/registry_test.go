package parser

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

type mockParser struct {
	lang string
	exts []string
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Parse(filename string, content []byte) (*Tree, error) {
	if len(content) > 0 && content[0] == '!' {
		return nil, ErrSyntax
	}
	root := &Node{Kind: NodeProgram, Type: "program", Length: len(content)}
	if len(content) > 0 {
		root.Children = append(root.Children, &Node{Type: "statement", Length: len(content)})
	}
	return &Tree{Language: m.lang, Source: content, Root: root}, nil
}

func TestRegistryGetParserForFile(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	p, ok := r.GetParserForFile("demo.MOCK")
	if !ok {
		t.Fatalf("expected parser for .MOCK extension")
	}
	if p.Language() != "mock" {
		t.Fatalf("expected language mock, got %s", p.Language())
	}
}

func TestParserForFallsBackToDetector(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	if _, ok := r.ParserFor("script", []byte("x")); ok {
		t.Fatalf("expected no parser without detector")
	}

	r.SetDetector(func(filename string, content []byte) (string, bool) {
		return "mock", string(content) == "#!mock"
	})
	p, ok := r.ParserFor("script", []byte("#!mock"))
	if !ok || p.Language() != "mock" {
		t.Fatalf("expected detector to resolve mock parser, got %v", ok)
	}
	if _, ok := r.ParserFor("script", []byte("plain")); ok {
		t.Fatalf("expected detector miss for plain content")
	}
}

func TestParseContentErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	if _, err := r.ParseContent("a.txt", []byte("x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := r.ParseContent("a.mock", []byte{0xff, 0xfe}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := r.ParseContent("a.mock", []byte("!bad")); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}

	tree, err := r.ParseContent("a.mock", []byte("ok"))
	if err != nil {
		t.Fatalf("ParseContent failed: %v", err)
	}
	if tree.Path != "a.mock" {
		t.Fatalf("expected path a.mock, got %s", tree.Path)
	}
	if tree.Hash != HashContent([]byte("ok")) || len(tree.Hash) != 16 {
		t.Fatalf("unexpected hash %q", tree.Hash)
	}
}

func TestIdentifyRequiresTopLevelNodes(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	if !r.Identify("a.mock", []byte("ok")) {
		t.Fatalf("expected non-empty source to be identified")
	}
	if r.Identify("a.mock", []byte("")) {
		t.Fatalf("expected empty source to be rejected")
	}
	if r.Identify("a.mock", []byte("!bad")) {
		t.Fatalf("expected syntax error to be rejected")
	}
}

func TestTreeText(t *testing.T) {
	tree := &Tree{Source: []byte("function foo() {}")}
	if got := tree.Text(Span{Start: 9, Length: 3}); got != "foo" {
		t.Fatalf("expected foo, got %q", got)
	}
	if got := tree.Text(Span{Start: 15, Length: 10}); got != "" {
		t.Fatalf("expected empty text for out of range span, got %q", got)
	}
	if got := tree.NodeText(&Node{Start: 0, Length: 8}); got != "function" {
		t.Fatalf("expected function, got %q", got)
	}
}

func TestNodeWalkVisitsInSourceOrder(t *testing.T) {
	root := &Node{Type: "program", Children: []*Node{
		{Type: "a", Children: []*Node{{Type: "a1"}, {Type: "a2"}}},
		{Type: "b"},
	}}

	var got []string
	root.Walk(func(n *Node) bool {
		got = append(got, n.Type)
		return n.Type != "a"
	})

	want := []string{"program", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseDirectoryRespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	mustWriteFile(t, filepath.Join(root, "keep.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "broken.mock"), "!x")
	mustWriteFile(t, filepath.Join(root, "skip", "ignored.mock"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "include.mock"), "y")
	mustWriteFile(t, filepath.Join(root, ".jsnav", "hidden.mock"), "z")

	result, err := r.ParseDirectory(root, []string{
		"skip/*",
		"!skip/include.mock",
	})
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}

	got := make([]string, 0, len(result.Files))
	for _, file := range result.Files {
		got = append(got, file.Path)
	}
	sort.Strings(got)

	want := []string{"keep.mock", "skip/include.mock"}
	if len(got) != len(want) {
		t.Fatalf("expected %d parsed files, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if len(result.Issues) != 1 || result.Issues[0].File != "broken.mock" {
		t.Fatalf("expected one issue for broken.mock, got %+v", result.Issues)
	}
	if result.Issues[0].Severity != "error" {
		t.Fatalf("expected error severity, got %s", result.Issues[0].Severity)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
