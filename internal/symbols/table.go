// Package symbols holds the offset-keyed record of function definitions and
// string literals produced by one indexing pass.
package symbols

import "sort"

// Table records symbols keyed by start offset. Function symbols are unique by
// start. A Table is filled during a single build and treated as read-only
// once the build publishes it.
type Table struct {
	functions []Symbol
	strings   []Symbol
}

// NewTable creates an empty symbol table
func NewTable() *Table {
	return &Table{
		functions: make([]Symbol, 0),
		strings:   make([]Symbol, 0),
	}
}

// Add records a symbol. It returns false when a function symbol already
// exists at the same start offset.
func (t *Table) Add(sym Symbol) bool {
	switch sym.Kind {
	case KindFunction:
		var added bool
		t.functions, added = insertSorted(t.functions, sym, true)
		return added
	default:
		t.strings, _ = insertSorted(t.strings, sym, false)
		return true
	}
}

// Functions returns the function symbols ordered by start offset.
func (t *Table) Functions() []Symbol {
	if t == nil {
		return nil
	}
	return append([]Symbol(nil), t.functions...)
}

// Strings returns the string literal symbols ordered by start offset.
func (t *Table) Strings() []Symbol {
	if t == nil {
		return nil
	}
	return append([]Symbol(nil), t.strings...)
}

// Len returns the total number of recorded symbols.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.functions) + len(t.strings)
}

// FunctionAt returns the function symbol starting exactly at start.
func (t *Table) FunctionAt(start int) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	i := sort.Search(len(t.functions), func(i int) bool {
		return t.functions[i].Start >= start
	})
	if i < len(t.functions) && t.functions[i].Start == start {
		return t.functions[i], true
	}
	return Symbol{}, false
}

// FunctionByName returns the first function symbol, in source order, whose
// name matches. Resolution is purely textual: nested scopes and shadowing are
// not considered.
func (t *Table) FunctionByName(name string) (Symbol, bool) {
	if t == nil || name == "" {
		return Symbol{}, false
	}
	for _, sym := range t.functions {
		if sym.Name == name {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Enclosing returns the function symbol with the greatest start <= offset,
// provided offset also lies before that symbol's end. A nested function that
// ended before offset hides its enclosing function.
func (t *Table) Enclosing(offset int) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	return floorContaining(t.functions, offset)
}

// StringAt returns the string literal containing offset.
func (t *Table) StringAt(offset int) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	return floorContaining(t.strings, offset)
}

func floorContaining(sorted []Symbol, offset int) (Symbol, bool) {
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Start > offset
	}) - 1
	if i < 0 || !sorted[i].Contains(offset) {
		return Symbol{}, false
	}
	return sorted[i], true
}

func insertSorted(list []Symbol, sym Symbol, unique bool) ([]Symbol, bool) {
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Start >= sym.Start
	})
	if unique && i < len(list) && list[i].Start == sym.Start {
		return list, false
	}
	if !unique {
		// keep insertion order among equal starts
		for i < len(list) && list[i].Start == sym.Start {
			i++
		}
	}
	list = append(list, Symbol{})
	copy(list[i+1:], list[i:])
	list[i] = sym
	return list, true
}
