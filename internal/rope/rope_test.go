package rope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/rholang-lsp/internal/rope"
)

func TestOffsetToLineColumnRoundTrip(t *testing.T) {
	text := "new x in {\n  x!(42)\n}\n"
	r := rope.New(text)
	require.Equal(t, 4, r.LenLines())

	for _, offset := range []int{0, 5, 11, 13, len(text)} {
		pos := r.OffsetToLineColumn(offset)
		got := r.LineColumnToOffset(pos)
		assert.Equal(t, offset, got, "round trip for offset %d", offset)
	}
}

func TestApplyRangeIncrementalEdit(t *testing.T) {
	r := rope.New("new x in {\n  x!(42)\n}\n")
	start, end := r.ApplyRange(rope.Range{
		Start: rope.Position{Line: 1, Column: 5},
		End:   rope.Position{Line: 1, Column: 7},
	}, "100")
	assert.Equal(t, "new x in {\n  x!(100)\n}\n", r.String())
	assert.True(t, end >= start)
}

func TestLastColumnEmptyLineUnderflow(t *testing.T) {
	r := rope.New("a\n\nb")
	// Line 1 is empty; LastColumn preserves the reference tool's
	// unconditional `len_chars() - 1`, which underflows to -1.
	assert.Equal(t, -1, r.LastColumn(1))
	assert.Equal(t, 0, r.LastColumn(0))
}

func TestInsertAndRemove(t *testing.T) {
	r := rope.New("abc")
	r.Insert(1, "XY")
	assert.Equal(t, "aXYbc", r.String())
	r.Remove(1, 3)
	assert.Equal(t, "abc", r.String())
}
