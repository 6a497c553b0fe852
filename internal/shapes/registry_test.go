package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistry_RetainsOnlyRepeats(t *testing.T) {
	bodies := []string{
		"0 0 10 10 re f",  // repeated 3x
		"0 0 m 5 5 l S",   // singleton
		"0 0  10 10 re f", // same as first modulo whitespace
		"1 1 m 2 2 l S",   // repeated 2x
		"0 0 10 10 re f",
		"1 1 m 2 2 l S",
	}
	r := BuildRegistry(bodies, SequentialPalette{})

	require.Equal(t, 2, r.Len())

	// Ids are contiguous from 1 in first-appearance order.
	id1, ok := r.Lookup("0 0 10 10 re f")
	require.True(t, ok)
	assert.Equal(t, 1, id1)

	id2, ok := r.Lookup("1 1 m 2 2 l S")
	require.True(t, ok)
	assert.Equal(t, 2, id2)

	_, ok = r.Lookup("0 0 m 5 5 l S")
	assert.False(t, ok, "singleton must not be retained")

	assert.Equal(t, 3, r.Definition(1).Count)
	assert.Equal(t, 2, r.Definition(2).Count)
}

func TestBuildRegistry_WhitespaceVariantsShareDefinition(t *testing.T) {
	bodies := []string{"0 0 m\n1 1 l S", "0 0 m 1 1 l  S"}
	r := BuildRegistry(bodies, SequentialPalette{})
	require.Equal(t, 1, r.Len())
	assert.Equal(t, 2, r.Definition(1).Count)
}

func TestBuildRegistry_Empty(t *testing.T) {
	r := BuildRegistry(nil, SequentialPalette{})
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.DefinitionMap())

	r = BuildRegistry([]string{"only once"}, SequentialPalette{})
	assert.Equal(t, 0, r.Len())
}

func TestBuildRegistry_BlankBodiesIgnored(t *testing.T) {
	r := BuildRegistry([]string{"", "  \n ", "", "0 0 m 1 1 l S", "0 0 m 1 1 l S"}, SequentialPalette{})
	require.Equal(t, 1, r.Len())
	_, ok := r.Lookup("0 0 m 1 1 l S")
	assert.True(t, ok)
}

func TestBuildRegistry_Idempotent(t *testing.T) {
	bodies := []string{"a b m f", "a b m f", "x y m S", "x y m S", "z z m S"}

	first := BuildRegistry(bodies, SequentialPalette{})
	second := BuildRegistry(bodies, SequentialPalette{})

	require.Equal(t, first.Len(), second.Len())
	for id := 1; id <= first.Len(); id++ {
		a, b := first.Definition(id), second.Definition(id)
		assert.Equal(t, a.Count, b.Count)
		assert.Equal(t, a.IsClosed, b.IsClosed)
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"explicit close", "0 0 m 1 0 l 1 1 l h S", true},
		{"rectangle", "0 0 10 10 re S", true},
		{"fill", "0 0 m 1 1 l f", true},
		{"fill even-odd", "0 0 m 1 1 l f*", true},
		{"close and stroke", "0 0 m 1 1 l s", true},
		{"fill and stroke", "0 0 m 1 1 l B", true},
		{"close fill stroke even-odd", "0 0 m 1 1 l b*", true},
		{"open polyline", "0 0 m 1 1 l 2 0 l S", false},
		{"open curve", "0 0 m 1 1 2 2 3 3 c S", false},
		{"no geometry", "5 w 1 0 0 RG", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isClosed(tt.body))
		})
	}
}

func TestRegistry_DefinitionMapKeys(t *testing.T) {
	bodies := []string{"a a m f", "a a m f", "b b m S", "b b m S"}
	r := BuildRegistry(bodies, SequentialPalette{})
	m := r.DefinitionMap()
	require.Len(t, m, 2)
	assert.Contains(t, m, "1")
	assert.Contains(t, m, "2")
	assert.Same(t, r.Definition(1), m["1"])
}

func TestRegistry_DefinitionOutOfRange(t *testing.T) {
	r := BuildRegistry(nil, SequentialPalette{})
	assert.Nil(t, r.Definition(0))
	assert.Nil(t, r.Definition(1))
	assert.Nil(t, r.Definition(-3))
}

func TestDistinctPalette(t *testing.T) {
	p := NewDistinctPalette().WithSeed(42)
	colors := p.Colors(12)
	require.Len(t, colors, 12)
	for _, c := range colors {
		for _, ch := range c {
			assert.GreaterOrEqual(t, ch, 0.0)
			assert.LessOrEqual(t, ch, 1.0)
		}
	}
	// Seeded palettes are reproducible.
	again := NewDistinctPalette().WithSeed(42).Colors(12)
	assert.Equal(t, colors, again)

	assert.Nil(t, p.Colors(0))
}
