package languages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/morozRed/jsnav/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Grammar names recorded on parsed trees.
const (
	GrammarJavaScript = "javascript"
	GrammarTypeScript = "typescript"
	GrammarTSX        = "tsx"
)

// JavaScriptParser turns JavaScript and TypeScript sources into parser trees.
type JavaScriptParser struct {
	mu       sync.Mutex
	jsParser *sitter.Parser
	tsParser *sitter.Parser
	txParser *sitter.Parser
}

// NewJavaScriptParser creates a parser for every supported grammar.
func NewJavaScriptParser() *JavaScriptParser {
	js := sitter.NewParser()
	js.SetLanguage(javascript.GetLanguage())

	ts := sitter.NewParser()
	ts.SetLanguage(typescript.GetLanguage())

	tx := sitter.NewParser()
	tx.SetLanguage(tsx.GetLanguage())

	return &JavaScriptParser{
		jsParser: js,
		tsParser: ts,
		txParser: tx,
	}
}

func (p *JavaScriptParser) Language() string {
	return "javascript"
}

func (p *JavaScriptParser) Extensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".mts", ".cts", ".tsx"}
}

// Parse parses content with the grammar matching filename. Files without a
// TypeScript extension use the JavaScript grammar.
func (p *JavaScriptParser) Parse(filename string, content []byte) (*parser.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, grammar := p.grammarFor(filename)
	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(filename, root)
	}

	return &parser.Tree{
		Path:     filename,
		Language: grammar,
		Source:   content,
		Root:     convert(root, content),
	}, nil
}

func (p *JavaScriptParser) grammarFor(filename string) (*sitter.Parser, string) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return p.tsParser, GrammarTypeScript
	case ".tsx":
		return p.txParser, GrammarTSX
	default:
		return p.jsParser, GrammarJavaScript
	}
}

func convert(node *sitter.Node, content []byte) *parser.Node {
	out := &parser.Node{
		Type:   node.Type(),
		Start:  int(node.StartByte()),
		Length: int(node.EndByte() - node.StartByte()),
	}

	switch node.Type() {
	case "program":
		out.Kind = parser.NodeProgram

	case "function_declaration", "generator_function_declaration",
		"function", "function_expression", "generator_function":
		out.Kind = parser.NodeFunction
		out.Keyword = tokenSpan(node, "function")
		if name := node.ChildByFieldName("name"); name != nil {
			out.Name = span(name)
		}
		out.Params = paramNames(node.ChildByFieldName("parameters"), content)

	case "call_expression":
		out.Kind = parser.NodeCall
		if callee := node.ChildByFieldName("function"); callee != nil && callee.Type() == "identifier" {
			out.Name = span(callee)
		}

	case "string":
		// fragments and escapes carry nothing of interest
		out.Kind = parser.NodeString
		return out

	case "lexical_declaration", "variable_declaration":
		out.Kind = parser.NodeVariableDeclaration
		if node.ChildCount() > 0 {
			if kw := node.Child(0); isDeclarationKeyword(kw.Type()) {
				out.Keyword = span(kw)
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			declarator := node.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			out.Bindings = collectBindings(declarator.ChildByFieldName("name"), out.Bindings)
		}
	}

	count := int(node.NamedChildCount())
	if count > 0 {
		out.Children = make([]*parser.Node, 0, count)
		for i := 0; i < count; i++ {
			out.Children = append(out.Children, convert(node.NamedChild(i), content))
		}
	}
	return out
}

func syntaxError(filename string, root *sitter.Node) error {
	bad := firstErrorNode(root)
	if bad == nil {
		return fmt.Errorf("%w: %s", parser.ErrSyntax, filename)
	}
	point := bad.StartPoint()
	return fmt.Errorf("%w: %s:%d:%d", parser.ErrSyntax, filename, point.Row+1, point.Column+1)
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstErrorNode(child); bad != nil {
			return bad
		}
	}
	return nil
}
