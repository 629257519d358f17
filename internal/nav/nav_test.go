package nav

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/morozRed/jsnav/internal/document"
)

const sample = `function helper(a, b) {
  return a + b;
}

function main() {
  helper(1, 2);
  alert("hi");
}

helper(3, 4);
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.js")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}
	return path
}

func loadSample(t *testing.T) *document.Snapshot {
	t.Helper()
	snap, err := LoadSnapshot(context.Background(), writeSample(t))
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	return snap
}

func newQueryCmd(t *testing.T, asJSON bool) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", false, "")
	cmd.Flags().Bool("strings", false, "")
	if asJSON {
		if err := cmd.Flags().Set("json", "true"); err != nil {
			t.Fatalf("failed to set --json: %v", err)
		}
	}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON output %q: %v", buf.String(), err)
	}
	return payload
}

func TestFindFunction(t *testing.T) {
	snap := loadSample(t)

	fn, err := FindFunction(snap, "main")
	if err != nil {
		t.Fatalf("FindFunction failed: %v", err)
	}
	if fn.Start != 43 {
		t.Fatalf("expected main at 43, got %d", fn.Start)
	}
	if _, err := FindFunction(snap, "missing"); err == nil {
		t.Fatalf("expected error for unknown function")
	}
	if _, err := FindFunction(snap, ""); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestResolveDefinition(t *testing.T) {
	snap := loadSample(t)

	tests := []struct {
		query string
		start int
	}{
		{query: "helper", start: 0},
		{query: "5:3", start: 0},  // on the helper call inside main
		{query: "6:3", start: 43}, // unresolved alert call, enclosing main
		{query: "9:0", start: 0},  // top-level helper call
		{query: "4:10", start: 43},
	}
	for _, tt := range tests {
		fn, err := ResolveDefinition(snap, tt.query)
		if err != nil {
			t.Fatalf("ResolveDefinition(%q) failed: %v", tt.query, err)
		}
		if fn.Start != tt.start {
			t.Fatalf("ResolveDefinition(%q): expected start %d, got %d", tt.query, tt.start, fn.Start)
		}
	}

	if _, err := ResolveDefinition(snap, "3:0"); err == nil {
		t.Fatalf("expected no definition between functions")
	}
	if _, err := ResolveDefinition(snap, "99:0"); err == nil {
		t.Fatalf("expected error for location outside the document")
	}
}

func TestParseLocationQuery(t *testing.T) {
	pos, ok := ParseLocationQuery("12:4")
	if !ok || pos.Line != 12 || pos.Column != 4 {
		t.Fatalf("expected 12:4, got %+v ok=%v", pos, ok)
	}
	for _, query := range []string{"main", "1", "a:1", "1:b", "-1:0", "1:-2"} {
		if _, ok := ParseLocationQuery(query); ok {
			t.Fatalf("expected %q to be rejected", query)
		}
	}
}

func TestCollectCallers(t *testing.T) {
	snap := loadSample(t)
	helper, _ := FindFunction(snap, "helper")

	callers := CollectCallers(snap, helper)
	if len(callers) != 2 {
		t.Fatalf("expected 2 caller groups, got %d", len(callers))
	}
	if callers[0].Symbol != nil {
		t.Fatalf("expected top-level group first, got %+v", callers[0].Symbol)
	}
	if len(callers[0].CallSites) != 1 || callers[0].CallSites[0].Address != "95" {
		t.Fatalf("unexpected top-level call sites: %+v", callers[0].CallSites)
	}
	if callers[1].Symbol == nil || callers[1].Symbol.Name != "main" {
		t.Fatalf("expected main as second caller, got %+v", callers[1].Symbol)
	}
	site := callers[1].CallSites[0]
	if site.Address != "63" || site.Line != 5 || site.Column != 2 {
		t.Fatalf("unexpected call site in main: %+v", site)
	}
}

func TestCollectCallees(t *testing.T) {
	snap := loadSample(t)
	main, _ := FindFunction(snap, "main")

	callees := CollectCallees(snap, main)
	if len(callees) != 1 {
		t.Fatalf("expected only the resolved helper callee, got %d", len(callees))
	}
	if callees[0].Symbol == nil || callees[0].Symbol.Name != "helper" {
		t.Fatalf("expected helper callee, got %+v", callees[0].Symbol)
	}

	helper, _ := FindFunction(snap, "helper")
	if got := CollectCallees(snap, helper); len(got) != 0 {
		t.Fatalf("expected helper to have no callees, got %+v", got)
	}
}

func TestReferencesCarryLabels(t *testing.T) {
	snap := loadSample(t)
	helper, _ := FindFunction(snap, "helper")

	refs := References(snap, helper)
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if refs[0].Address != "63" || refs[0].Label != "main" {
		t.Fatalf("unexpected first reference: %+v", refs[0])
	}
	if refs[1].Address != "95" || refs[1].Label != "" {
		t.Fatalf("unexpected second reference: %+v", refs[1])
	}
}

func TestRunPositionAndAddressJSON(t *testing.T) {
	path := writeSample(t)

	cmd, buf := newQueryCmd(t, true)
	if err := RunPosition(cmd, []string{path, "main"}); err != nil {
		t.Fatalf("RunPosition failed: %v", err)
	}
	position := decode(t, buf)["position"].(map[string]any)
	if position["address"] != "43" || position["line"] != float64(4) || position["column"] != float64(0) {
		t.Fatalf("unexpected position payload: %+v", position)
	}

	cmd, buf = newQueryCmd(t, true)
	if err := RunAddress(cmd, []string{path, "5", "2"}); err != nil {
		t.Fatalf("RunAddress failed: %v", err)
	}
	position = decode(t, buf)["position"].(map[string]any)
	if position["address"] != "63" {
		t.Fatalf("expected address 63, got %+v", position)
	}

	cmd, _ = newQueryCmd(t, false)
	if err := RunPosition(cmd, []string{path, "nonexistent"}); err == nil {
		t.Fatalf("expected unresolvable address to fail")
	}
	if err := RunAddress(cmd, []string{path, "x", "0"}); err == nil {
		t.Fatalf("expected invalid line to fail")
	}
	if err := RunAddress(cmd, []string{path, "100", "0"}); err == nil {
		t.Fatalf("expected out-of-range position to fail")
	}
}

func TestRunLabelText(t *testing.T) {
	path := writeSample(t)

	cmd, buf := newQueryCmd(t, false)
	if err := RunLabel(cmd, []string{path, "63"}); err != nil {
		t.Fatalf("RunLabel failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "main" {
		t.Fatalf("expected label main, got %q", buf.String())
	}

	cmd, buf = newQueryCmd(t, false)
	if err := RunLabel(cmd, []string{path, "95"}); err != nil {
		t.Fatalf("RunLabel failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no label") {
		t.Fatalf("expected no label for top-level offset, got %q", buf.String())
	}
}

func TestRunNotificationsJSON(t *testing.T) {
	path := writeSample(t)

	cmd, buf := newQueryCmd(t, true)
	if err := RunNotifications(cmd, []string{path}); err != nil {
		t.Fatalf("RunNotifications failed: %v", err)
	}
	notes := decode(t, buf)["notifications"].([]any)
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}
	note := notes[0].(map[string]any)
	if note["kind"] != "potentially_harmful" || note["address"] != "79" {
		t.Fatalf("unexpected notification: %+v", note)
	}
	if note["line"] != float64(6) || note["column"] != float64(2) {
		t.Fatalf("unexpected notification position: %+v", note)
	}
}

func TestRunSymbolsText(t *testing.T) {
	path := writeSample(t)

	cmd, buf := newQueryCmd(t, false)
	if err := cmd.Flags().Set("strings", "true"); err != nil {
		t.Fatalf("failed to set --strings: %v", err)
	}
	if err := RunSymbols(cmd, []string{path}); err != nil {
		t.Fatalf("RunSymbols failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"functions in", "helper(a, b)", "main()", "strings in", `"\"hi\""`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunCallersText(t *testing.T) {
	path := writeSample(t)

	cmd, buf := newQueryCmd(t, false)
	if err := RunCallers(cmd, []string{path, "helper"}); err != nil {
		t.Fatalf("RunCallers failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "callers for helper (2)") || !strings.Contains(out, "<top-level> at 10:1") || !strings.Contains(out, "main at 6:3") {
		t.Fatalf("unexpected callers output:\n%s", out)
	}

	cmd, buf = newQueryCmd(t, false)
	if err := RunCallees(cmd, []string{path, "helper"}); err != nil {
		t.Fatalf("RunCallees failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no callees found") {
		t.Fatalf("unexpected callees output:\n%s", buf.String())
	}
}

func TestRunDefinitionJSON(t *testing.T) {
	path := writeSample(t)

	cmd, buf := newQueryCmd(t, true)
	if err := RunDefinition(cmd, []string{path, "5:4"}); err != nil {
		t.Fatalf("RunDefinition failed: %v", err)
	}
	definition := decode(t, buf)["definition"].(map[string]any)
	if definition["name"] != "helper" || definition["kind"] != "function" {
		t.Fatalf("unexpected definition: %+v", definition)
	}
	params := definition["params"].([]any)
	if len(params) != 2 || params[0] != "a" {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestLoadSnapshotParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.js")
	if err := os.WriteFile(path, []byte("function (\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := LoadSnapshot(context.Background(), path); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestFindFunctionSuggestsSimilarNames(t *testing.T) {
	snap := loadSample(t)

	_, err := FindFunction(snap, "helpr")
	if err == nil || !strings.Contains(err.Error(), "did you mean: helper") {
		t.Fatalf("expected suggestion for typo, got %v", err)
	}

	if got := SuggestFunctions(snap, "zzzzzzzz", 3); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v", got)
	}
}
