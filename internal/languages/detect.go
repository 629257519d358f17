package languages

import (
	"github.com/go-enry/go-enry/v2"
)

// classifierCandidates bounds the enry classifier to languages that commonly
// appear as extensionless scripts.
var classifierCandidates = []string{
	"JavaScript", "TypeScript", "Shell", "Python", "Ruby", "Perl",
}

// Detect identifies JavaScript-family sources for the registry: by
// extension, then shebang (e.g. "#!/usr/bin/env node"), then the enry
// classifier. It returns the registry language name.
func Detect(filename string, content []byte) (string, bool) {
	for _, lang := range enry.GetLanguagesByExtension(filename, content, nil) {
		if name, ok := registryName(lang); ok {
			return name, true
		}
	}
	if len(content) == 0 {
		return "", false
	}
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return registryName(lang)
	}
	if lang, _ := enry.GetLanguageByClassifier(content, classifierCandidates); lang != "" {
		return registryName(lang)
	}
	return "", false
}

// IsVendored reports whether path looks like third-party or generated code
// (minified bundles, vendored libraries).
func IsVendored(path string) bool {
	return enry.IsVendor(path)
}

func registryName(enryLang string) (string, bool) {
	switch enryLang {
	case "JavaScript", "TypeScript", "TSX", "JSX":
		return "javascript", true
	}
	return "", false
}
