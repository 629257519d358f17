package languages

import (
	"github.com/morozRed/jsnav/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

func span(node *sitter.Node) parser.Span {
	return parser.Span{
		Start:  int(node.StartByte()),
		Length: int(node.EndByte() - node.StartByte()),
	}
}

// tokenSpan returns the span of the first direct child of the given type.
func tokenSpan(node *sitter.Node, typ string) parser.Span {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == typ {
			return span(child)
		}
	}
	return parser.Span{}
}

func isDeclarationKeyword(typ string) bool {
	switch typ {
	case "var", "let", "const":
		return true
	}
	return false
}

// collectBindings appends the identifiers bound by a declarator name,
// walking object and array patterns. Default values are skipped.
func collectBindings(node *sitter.Node, dst []parser.Span) []parser.Span {
	if node == nil {
		return dst
	}
	switch node.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return append(dst, span(node))
	case "assignment_pattern", "object_assignment_pattern":
		return collectBindings(node.ChildByFieldName("left"), dst)
	case "pair_pattern":
		return collectBindings(node.ChildByFieldName("value"), dst)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		dst = collectBindings(node.NamedChild(i), dst)
	}
	return dst
}

func paramNames(params *sitter.Node, content []byte) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		target := param
		switch param.Type() {
		case "required_parameter", "optional_parameter":
			target = param.ChildByFieldName("pattern")
		case "comment":
			continue
		}
		for _, s := range collectBindings(target, nil) {
			names = append(names, string(content[s.Start:s.End()]))
		}
	}
	return names
}
