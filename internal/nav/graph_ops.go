package nav

import (
	"sort"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/lineindex"
	"github.com/morozRed/jsnav/internal/symbols"
)

// callSite is one resolved reference item.
type callSite struct {
	offset int
	target int // Start of the callee
}

// topLevel groups call sites outside any function.
const topLevel = -1

func callSites(snap *document.Snapshot) []callSite {
	var out []callSite
	for lineNo, line := range snap.Lines() {
		for _, item := range line.Items {
			if item.Role != annotate.RoleReference {
				continue
			}
			offset, ok := snap.Offset(lineindex.Position{Line: lineNo, Column: item.Offset})
			if !ok {
				continue
			}
			out = append(out, callSite{offset: offset, target: item.CrossRefID})
		}
	}
	return out
}

// CollectCallers groups the call sites resolved to fn by the function that
// contains them. Sites outside any function are grouped under a nil symbol.
func CollectCallers(snap *document.Snapshot, fn symbols.Symbol) []EdgeRecord {
	groups := map[int][]callSite{}
	for _, site := range callSites(snap) {
		if site.target != fn.Start {
			continue
		}
		key := topLevel
		if caller, ok := snap.Enclosing(site.offset); ok {
			key = caller.Start
		}
		groups[key] = append(groups[key], site)
	}
	return edgeRecords(snap, groups)
}

// CollectCallees groups the resolved call sites lexically inside fn by the
// function they call.
func CollectCallees(snap *document.Snapshot, fn symbols.Symbol) []EdgeRecord {
	groups := map[int][]callSite{}
	for _, site := range callSites(snap) {
		if !fn.Contains(site.offset) {
			continue
		}
		groups[site.target] = append(groups[site.target], site)
	}
	return edgeRecords(snap, groups)
}

func edgeRecords(snap *document.Snapshot, groups map[int][]callSite) []EdgeRecord {
	keys := make([]int, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	out := make([]EdgeRecord, 0, len(keys))
	for _, key := range keys {
		record := EdgeRecord{}
		if key != topLevel {
			if sym, ok := snap.Enclosing(key); ok && sym.Start == key {
				symRecord := SymbolRecordFromSymbol(snap, sym)
				record.Symbol = &symRecord
			}
		}
		for _, site := range groups[key] {
			record.CallSites = append(record.CallSites, PositionRecordAt(snap, site.offset))
		}
		out = append(out, record)
	}
	return out
}

// References lists the call sites resolved to fn, each labelled with its
// enclosing named function.
func References(snap *document.Snapshot, fn symbols.Symbol) []ReferenceRecord {
	var out []ReferenceRecord
	for _, site := range callSites(snap) {
		if site.target != fn.Start {
			continue
		}
		at := PositionRecordAt(snap, site.offset)
		label, _ := snap.Label(at.Address)
		out = append(out, ReferenceRecord{PositionRecord: at, Label: label})
	}
	return out
}
