package parser

// NodeKind classifies the AST nodes the indexer understands. Every other
// node is NodeOther and only contributes its children.
type NodeKind int

const (
	NodeOther NodeKind = iota
	NodeProgram
	NodeFunction
	NodeCall
	NodeString
	NodeVariableDeclaration
)

func (k NodeKind) String() string {
	switch k {
	case NodeProgram:
		return "program"
	case NodeFunction:
		return "function"
	case NodeCall:
		return "call"
	case NodeString:
		return "string"
	case NodeVariableDeclaration:
		return "variable_declaration"
	default:
		return "other"
	}
}

// Span is an absolute byte range in the source. A zero Length means the
// span is absent.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// Valid reports whether the span covers at least one byte.
func (s Span) Valid() bool {
	return s.Length > 0
}

// Node is a language-neutral AST node.
type Node struct {
	Kind   NodeKind
	Type   string // grammar node type, e.g. "function_declaration"
	Start  int
	Length int

	Keyword  Span     // "function" token or var/let/const keyword
	Name     Span     // function name or identifier callee
	Bindings []Span   // names bound by a variable declaration
	Params   []string // function parameter names

	Children []*Node
}

// End returns the exclusive end offset of the node.
func (n *Node) End() int {
	return n.Start + n.Length
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Tree is a parsed source file.
type Tree struct {
	Path     string
	Language string
	Source   []byte
	Root     *Node
	Hash     string // content hash for change detection
}

// Text returns the verbatim source covered by span.
func (t *Tree) Text(span Span) string {
	if t == nil || span.Start < 0 || span.End() > len(t.Source) || span.Length <= 0 {
		return ""
	}
	return string(t.Source[span.Start:span.End()])
}

// NodeText returns the verbatim source of node.
func (t *Tree) NodeText(node *Node) string {
	if node == nil {
		return ""
	}
	return t.Text(Span{Start: node.Start, Length: node.Length})
}

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds the parse result for a directory walk
type ParseResult struct {
	Files    []*Tree
	RootPath string
	Issues   []ParseIssue
}
