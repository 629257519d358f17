package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/languages"
	"github.com/morozRed/jsnav/internal/lineindex"
	"github.com/morozRed/jsnav/internal/parser"
	"github.com/morozRed/jsnav/internal/symbols"
)

func index(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()
	tree, err := languages.NewDefaultRegistry().ParseContent("test.js", []byte(src))
	require.NoError(t, err)
	res, err := Index(tree, opts...)
	require.NoError(t, err)
	return res
}

func itemsOf(lines []annotate.Line, class annotate.Class) []annotate.Item {
	var out []annotate.Item
	for _, line := range lines {
		for _, item := range line.Items {
			if item.Class == class {
				out = append(out, item)
			}
		}
	}
	return out
}

func TestIndexFunctionDefinitionAndCall(t *testing.T) {
	res := index(t, "function foo(a,b){}\ncall_fn();\n")

	fns := res.Symbols.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "foo", fns[0].Name)
	assert.Equal(t, 0, fns[0].Start)
	assert.Equal(t, 19, fns[0].Length)
	assert.Equal(t, []string{"a", "b"}, fns[0].Params)

	require.Len(t, res.Lines, 3)
	assert.Equal(t, []annotate.Item{
		{Offset: 0, Length: 8, Class: annotate.ClassKeyword},
		{Offset: 9, Length: 3, Class: annotate.ClassMethodName, Role: annotate.RoleMaster, CrossRefID: 0},
	}, res.Lines[0].Items)
	assert.Empty(t, res.Lines[1].Items, "unresolved callee stays plain text")

	// line 1 starts after the 19-byte first line and its separator
	pos, ok := res.LineTable.OffsetToPosition(20)
	require.True(t, ok)
	assert.Equal(t, lineindex.Position{Line: 1, Column: 0}, pos)
	pos, ok = res.LineTable.OffsetToPosition(21)
	require.True(t, ok)
	assert.Equal(t, lineindex.Position{Line: 1, Column: 1}, pos)
}

func TestIndexWatchedCallRaisesNotification(t *testing.T) {
	res := index(t, `alert("hi");`)

	require.Len(t, res.Notifications, 1)
	assert.Equal(t, Notification{
		Kind:    KindPotentiallyHarmful,
		Message: "alert is detected at position",
		Address: "0",
	}, res.Notifications[0])

	strs := res.Symbols.Strings()
	require.Len(t, strs, 1)
	assert.Equal(t, symbols.Symbol{Kind: symbols.KindString, Start: 6, Length: 4}, strs[0])
	assert.Equal(t, []annotate.Item{{Offset: 6, Length: 4, Class: annotate.ClassString}}, res.Lines[0].Items)
}

func TestIndexNotificationAddressIsCallSite(t *testing.T) {
	res := index(t, "var x = 1;\nif (x) { alert(x); }\n")

	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "20", res.Notifications[0].Address)
}

func TestIndexCustomWatchList(t *testing.T) {
	src := "alert(1);\neval(\"2\");\n"

	res := index(t, src, WithWatchList([]WatchEntry{{Name: "eval", Message: "eval call"}}))
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "eval call", res.Notifications[0].Message)
	assert.Equal(t, "10", res.Notifications[0].Address)

	res = index(t, src, WithWatchList(nil))
	assert.Empty(t, res.Notifications)
}

func TestIndexResolvesHoistedCalls(t *testing.T) {
	src := "run();\nfunction run() {\n  return helper();\n}\nfunction helper() {}\n"
	res := index(t, src)

	run, ok := res.Symbols.FunctionByName("run")
	require.True(t, ok)
	helper, ok := res.Symbols.FunctionByName("helper")
	require.True(t, ok)

	refs := 0
	for _, line := range res.Lines {
		for _, item := range line.Items {
			if item.Role != annotate.RoleReference {
				continue
			}
			refs++
			assert.Contains(t, []int{run.Start, helper.Start}, item.CrossRefID)
		}
	}
	assert.Equal(t, 2, refs)
	assert.Equal(t, 2, res.Stats.References)

	assert.Equal(t, []annotate.Item{
		{Offset: 0, Length: 3, Class: annotate.ClassMethodName, Role: annotate.RoleReference, CrossRefID: run.Start},
	}, res.Lines[0].Items)
}

func TestIndexFirstDefinitionWinsForDuplicateNames(t *testing.T) {
	src := "function f() {}\nfunction f() { return 1; }\nf();\n"
	res := index(t, src)

	require.Len(t, res.Symbols.Functions(), 2)
	refs := itemsOf(res.Lines, annotate.ClassMethodName)
	var ref annotate.Item
	for _, item := range refs {
		if item.Role == annotate.RoleReference {
			ref = item
		}
	}
	assert.Equal(t, 0, ref.CrossRefID)
}

func TestIndexVariableDeclarations(t *testing.T) {
	res := index(t, "let {a, b: [c]} = o;\nconst d = 1, e = 2;\n")

	keywords := itemsOf(res.Lines, annotate.ClassKeyword)
	require.Len(t, keywords, 2)
	assert.Equal(t, 3, keywords[0].Length)
	assert.Equal(t, 5, keywords[1].Length)

	idents := itemsOf(res.Lines, annotate.ClassIdentifier)
	var names []string
	for lineNo, line := range res.Lines {
		for _, item := range line.Items {
			if item.Class == annotate.ClassIdentifier {
				names = append(names, res.Lines[lineNo].Text[item.Offset:item.End()])
			}
		}
	}
	assert.Len(t, idents, 4)
	assert.Equal(t, []string{"a", "c", "d", "e"}, names)
}

func TestIndexMultiLineStringIsSplitPerLine(t *testing.T) {
	src := "var s = \"ab\\\ncd\";\n"
	res := index(t, src)

	strs := res.Symbols.Strings()
	require.Len(t, strs, 1)
	assert.Equal(t, 8, strs[0].Start)
	assert.Equal(t, 8, strs[0].Length)

	assert.Contains(t, res.Lines[0].Items, annotate.Item{Offset: 8, Length: 4, Class: annotate.ClassString})
	assert.Contains(t, res.Lines[1].Items, annotate.Item{Offset: 0, Length: 3, Class: annotate.ClassString})
}

func TestIndexAnonymousFunctionHasNoMaster(t *testing.T) {
	res := index(t, "setTimeout(function () {}, 10);\n")

	fns := res.Symbols.Functions()
	require.Len(t, fns, 1)
	assert.Empty(t, fns[0].Name)

	for _, item := range res.Lines[0].Items {
		assert.NotEqual(t, annotate.RoleMaster, item.Role)
	}
	assert.Len(t, itemsOf(res.Lines, annotate.ClassKeyword), 1)
}

func TestIndexCoversSourceVerbatim(t *testing.T) {
	sources := []string{
		"",
		"function foo(a,b){}\ncall_fn();\n",
		"// comment only",
		"var a = `tpl ${alert('x')}`;\r\nfunction g(){ return \"s\"; }\n\n",
	}

	for _, src := range sources {
		res := index(t, src)
		texts := make([]string, 0, len(res.Lines))
		for _, line := range res.Lines {
			texts = append(texts, line.Text)
		}
		assert.Equal(t, lineindex.Build(src).Lines(), texts)
		assert.Equal(t, len(src), res.Stats.Length)
	}
}

func TestIndexItemsDoNotOverlapAndReferencesResolve(t *testing.T) {
	src := "function a() { b(); }\nfunction b() { a(); alert('!'); }\nvar x = a(), y = 'z';\n"
	res := index(t, src)

	for _, line := range res.Lines {
		for i := 1; i < len(line.Items); i++ {
			assert.LessOrEqual(t, line.Items[i-1].End(), line.Items[i].Offset)
		}
		for _, item := range line.Items {
			assert.LessOrEqual(t, item.End(), len(line.Text))
			if item.Role == annotate.RoleReference {
				_, ok := res.Symbols.FunctionAt(item.CrossRefID)
				assert.True(t, ok, "reference %d has no definition", item.CrossRefID)
			}
		}
	}
}

func TestIndexStatistics(t *testing.T) {
	res := index(t, "function a() {}\na();\nvar s = 'x';\n")

	assert.Equal(t, 1, res.Stats.Functions)
	assert.Equal(t, 1, res.Stats.Strings)
	assert.Equal(t, 1, res.Stats.Calls)
	assert.Equal(t, 1, res.Stats.References)
	assert.Equal(t, 4, res.Stats.Lines)
	assert.Equal(t, map[string]int{
		"function_declaration": 1,
		"expression_statement": 1,
		"variable_declaration": 1,
	}, res.Stats.TopLevel)
}

func TestIndexRejectsNilTree(t *testing.T) {
	_, err := Index(nil)
	assert.Error(t, err)

	_, err = Index(&parser.Tree{})
	assert.Error(t, err)
}
