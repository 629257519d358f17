package lineindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildComputesLineStarts(t *testing.T) {
	table := Build("function foo(a,b){}\ncall_fn();\n")

	require.Equal(t, 3, table.LineCount())
	for line, want := range []int{0, 20, 31} {
		start, ok := table.Start(line)
		require.True(t, ok)
		assert.Equal(t, want, start, "start of line %d", line)
	}
	text, ok := table.Text(1)
	require.True(t, ok)
	assert.Equal(t, "call_fn();", text)
	last, _ := table.Text(2)
	assert.Empty(t, last)
}

func TestOffsetToPositionReturnsRankNotKey(t *testing.T) {
	// Line starts are 0, 4, 10: a key-returning implementation would report
	// line 4 or 10 instead of the ordinal.
	table := Build("abc\ndefgh\nij")

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{3, Position{0, 3}},
		{4, Position{1, 0}},
		{9, Position{1, 5}},
		{10, Position{2, 0}},
		{12, Position{2, 2}},
	}
	for _, tc := range tests {
		got, ok := table.OffsetToPosition(tc.offset)
		require.True(t, ok, "offset %d", tc.offset)
		assert.Equal(t, tc.want, got, "offset %d", tc.offset)
	}
}

func TestOffsetToPositionOutOfRange(t *testing.T) {
	table := Build("ab\ncd")

	_, ok := table.OffsetToPosition(-1)
	assert.False(t, ok)
	_, ok = table.OffsetToPosition(6)
	assert.False(t, ok)

	var empty Table
	_, ok = empty.OffsetToPosition(0)
	assert.False(t, ok)

	var missing *Table
	_, ok = missing.OffsetToPosition(0)
	assert.False(t, ok)
}

func TestPositionToOffset(t *testing.T) {
	table := Build("abc\ndefgh\nij")

	offset, ok := table.PositionToOffset(1, 2)
	require.True(t, ok)
	assert.Equal(t, 6, offset)

	_, ok = table.PositionToOffset(3, 0)
	assert.False(t, ok, "line past the end")
	_, ok = table.PositionToOffset(-1, 0)
	assert.False(t, ok, "negative line")
	_, ok = table.PositionToOffset(0, 4)
	assert.False(t, ok, "column past the separator")
	_, ok = table.PositionToOffset(0, -1)
	assert.False(t, ok, "negative column")
}

func TestRoundTripAndMonotonicity(t *testing.T) {
	texts := []string{
		"",
		"\n",
		"single line",
		"a\n\nb\n",
		"function foo(a,b){}\ncall_fn();\n",
		"  var x = 1;\r\n  x++;\r\n",
	}
	for _, text := range texts {
		table := Build(text)
		var previous Position
		for offset := 0; offset <= len(text); offset++ {
			pos, ok := table.OffsetToPosition(offset)
			require.True(t, ok, "text %q offset %d", text, offset)

			back, ok := table.PositionToOffset(pos.Line, pos.Column)
			require.True(t, ok, "text %q position %s", text, pos)
			assert.Equal(t, offset, back, "round trip for %q", text)

			if offset > 0 {
				assert.False(t, pos.Before(previous), "position %s precedes %s in %q", pos, previous, text)
			}
			previous = pos
		}
	}
}

func TestRebuildShiftsPositionsAfterInsertion(t *testing.T) {
	before := Build("a();\nb();\nc();\n")
	after := Build("a();\ninserted();\nb();\nc();\n")

	pos, ok := before.OffsetToPosition(2)
	require.True(t, ok)
	unchanged, ok := after.OffsetToPosition(2)
	require.True(t, ok)
	assert.Equal(t, pos, unchanged)

	oldB, _ := before.OffsetToPosition(5)
	newB, _ := after.OffsetToPosition(5 + len("inserted();\n"))
	assert.Equal(t, Position{Line: 1, Column: 0}, oldB)
	assert.Equal(t, Position{Line: 2, Column: 0}, newB)
}

func TestFloor(t *testing.T) {
	starts := []int{0, 4, 10}
	assert.Equal(t, -1, Floor(starts, -3))
	assert.Equal(t, 0, Floor(starts, 3))
	assert.Equal(t, 1, Floor(starts, 4))
	assert.Equal(t, 2, Floor(starts, 100))
	assert.Equal(t, -1, Floor(nil, 0))
}

func TestPositionCompare(t *testing.T) {
	assert.Equal(t, -1, Position{0, 5}.Compare(Position{1, 0}))
	assert.Equal(t, 1, Position{1, 1}.Compare(Position{1, 0}))
	assert.Equal(t, 0, Position{2, 3}.Compare(Position{2, 3}))
	assert.Equal(t, "(1:2)", Position{1, 2}.String())
}
