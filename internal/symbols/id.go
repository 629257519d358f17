package symbols

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// StableID returns a deterministic ID for a symbol.
// Format: file|start|kind|name, plus a short hash of the parameter list for
// functions that declare parameters.
func StableID(file string, sym Symbol) string {
	base := fmt.Sprintf("%s|%d|%s|%s", file, sym.Start, sym.Kind.String(), sym.Name)

	if len(sym.Params) == 0 {
		return base
	}

	paramHash := sha1.Sum([]byte(strings.Join(sym.Params, ",")))
	return fmt.Sprintf("%s|%s", base, hex.EncodeToString(paramHash[:4]))
}
