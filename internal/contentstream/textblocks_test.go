package contentstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextBlocks_Basic(t *testing.T) {
	src := "q 1 0 0 1 0 0 cm 0 0 m S Q BT /F1 10 Tf 1 0 0 1 50 70 Tm (A1) Tj ET"
	blocks := TextBlocks(src)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.True(t, b.HasText)
	require.True(t, b.HasPos)
	assert.InDelta(t, 50.0, b.X, 1e-9)
	assert.InDelta(t, 70.0, b.Y, 1e-9)
	assert.Contains(t, b.Raw, "BT")
	assert.Contains(t, b.Raw, "ET")
	assert.NotContains(t, b.Content, "BT")
}

func TestTextBlocks_TdFallback(t *testing.T) {
	src := "BT 12 34 Td (x) Tj ET"
	blocks := TextBlocks(src)
	require.Len(t, blocks, 1)
	require.True(t, blocks[0].HasPos)
	assert.InDelta(t, 12.0, blocks[0].X, 1e-9)
	assert.InDelta(t, 34.0, blocks[0].Y, 1e-9)
}

func TestTextBlocks_TmPreferredOverTd(t *testing.T) {
	src := "BT 1 2 Td 1 0 0 1 90 80 Tm (x) Tj ET"
	blocks := TextBlocks(src)
	require.Len(t, blocks, 1)
	assert.InDelta(t, 90.0, blocks[0].X, 1e-9)
	assert.InDelta(t, 80.0, blocks[0].Y, 1e-9)
}

func TestTextBlocks_NoTextOperators(t *testing.T) {
	src := "BT 1 0 0 1 5 5 Tm ET"
	blocks := TextBlocks(src)
	require.Len(t, blocks, 1)
	assert.False(t, blocks[0].HasText)
}

func TestTextBlocks_MultipleAndUnterminated(t *testing.T) {
	src := "BT (a) Tj ET BT (b) Tj ET BT (dangling) Tj"
	blocks := TextBlocks(src)
	// The dangling block has no ET and is dropped.
	assert.Len(t, blocks, 2)
}

func TestTextBlocks_None(t *testing.T) {
	assert.Empty(t, TextBlocks("q 1 0 0 1 0 0 cm 0 0 m S Q"))
	assert.Empty(t, TextBlocks(""))
}
