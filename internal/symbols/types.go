package symbols

import (
	"fmt"
	"strings"
)

// Kind represents the type of an indexed symbol
type Kind int

const (
	KindFunction Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and TOML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "function":
		*k = KindFunction
	case "string":
		*k = KindString
	default:
		return fmt.Errorf("unknown symbol kind %q", string(data))
	}
	return nil
}

// Symbol is one function definition or string literal occurrence.
// Start and Length are absolute byte offsets into the source.
type Symbol struct {
	Kind   Kind     `json:"kind"`
	Name   string   `json:"name,omitempty"`
	Start  int      `json:"start"`
	Length int      `json:"length"`
	Params []string `json:"params,omitempty"` // function parameter names
}

// End returns the exclusive end offset.
func (s Symbol) End() int {
	return s.Start + s.Length
}

// Contains reports whether offset lies in [Start, End).
func (s Symbol) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End()
}
