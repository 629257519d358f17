package render_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/render"
)

func snapshot(t *testing.T, src string) *document.Snapshot {
	t.Helper()
	doc := document.New(document.NewMemorySource("test.js", []byte(src)))
	require.NoError(t, doc.Build(context.Background()))
	snap, err := doc.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestLinesWithoutColorReproduceSource(t *testing.T) {
	src := "function foo(a,b){}\nfoo(1, 'x');\n"
	snap := snapshot(t, src)

	var buf bytes.Buffer
	r := render.NewRenderer(render.NewStyles(false), false)
	require.NoError(t, r.Lines(&buf, snap.Lines()))
	assert.Equal(t, src+"\n", buf.String())
}

func TestLinesWithoutColorKeepTabs(t *testing.T) {
	snap := snapshot(t, "var s = '\t';")

	var buf bytes.Buffer
	r := render.NewRenderer(render.NewStyles(false), false)
	require.NoError(t, r.Lines(&buf, snap.Lines()))
	assert.Equal(t, "var s = '\t';\n", buf.String())
}

func TestLinesWithGutter(t *testing.T) {
	var buf bytes.Buffer
	r := render.NewRenderer(render.NewStyles(false), true)
	require.NoError(t, r.Raw(&buf, "a\nb"))
	assert.Equal(t, "1 │ a\n2 │ b\n", buf.String())
}

func TestForItemStylesRoles(t *testing.T) {
	styles := render.NewStyles(true)
	master := styles.ForItem(annotate.Item{Class: annotate.ClassMethodName, Role: annotate.RoleMaster})
	ref := styles.ForItem(annotate.Item{Class: annotate.ClassMethodName, Role: annotate.RoleReference})

	assert.True(t, master.GetUnderline())
	assert.False(t, master.GetItalic())
	assert.True(t, ref.GetItalic())

	plain := render.NewStyles(false).ForItem(annotate.Item{Class: annotate.ClassKeyword, Role: annotate.RoleMaster})
	assert.Equal(t, "var", plain.Render("var"))
}

func TestNotifications(t *testing.T) {
	snap := snapshot(t, "var a = 1;\nalert(a);\n")

	var buf bytes.Buffer
	r := render.NewRenderer(render.NewStyles(false), false)
	require.NoError(t, r.Notifications(&buf, snap))
	assert.Equal(t, "potentially_harmful alert is detected at position 2:1\n", buf.String())

	buf.Reset()
	require.NoError(t, r.Notifications(&buf, snapshot(t, "var a;\n")))
	assert.Equal(t, "no notifications\n", buf.String())
}

func TestFunctions(t *testing.T) {
	snap := snapshot(t, "function foo(a, b) {}\nvar f = function () {};\n")

	var buf bytes.Buffer
	r := render.NewRenderer(render.NewStyles(false), false)
	require.NoError(t, r.Functions(&buf, snap))
	assert.Equal(t, "foo(a, b) 1:1\n<anonymous>() 2:9\n", buf.String())
}

func TestIsColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, render.IsColorEnabled("always", &buf))
	assert.False(t, render.IsColorEnabled("never", os.Stdout))
	assert.False(t, render.IsColorEnabled("auto", &buf))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, render.IsColorEnabled("auto", os.Stdout))
}
