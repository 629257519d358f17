package nav

// SymbolRecord describes a function or string literal symbol.
type SymbolRecord struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Kind   string   `json:"kind"`
	File   string   `json:"file"`
	Start  int      `json:"start"`
	Length int      `json:"length"`
	Line   int      `json:"line"`
	Column int      `json:"column"`
	Params []string `json:"params,omitempty"`
}

// PositionRecord pairs an address with its 0-based position.
type PositionRecord struct {
	Address string `json:"address"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type NotificationRecord struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	PositionRecord
}

// ReferenceRecord is one resolved call site. Label names the enclosing
// function, if any.
type ReferenceRecord struct {
	PositionRecord
	Label string `json:"label,omitempty"`
}

// EdgeRecord groups the call sites between two functions. A nil Symbol
// stands for top-level code.
type EdgeRecord struct {
	Symbol    *SymbolRecord    `json:"symbol"`
	CallSites []PositionRecord `json:"call_sites"`
}
