package languages

import "github.com/morozRed/jsnav/internal/parser"

// NewDefaultRegistry creates a registry with the JavaScript parser and
// content-based detection for files without a known extension.
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewJavaScriptParser())
	r.SetDetector(Detect)

	return r
}
