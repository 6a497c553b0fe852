package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

func TestExtractBBox(t *testing.T) {
	tests := []struct {
		name string
		body string
		want geom.Rect
	}{
		{
			name: "move and line",
			body: "0 0 m 10 5 l -2 8 l S",
			want: geom.Rect{MinX: -2, MinY: 0, MaxX: 10, MaxY: 8},
		},
		{
			name: "rectangle spans origin plus extent",
			body: "2 3 10 20 re f",
			want: geom.Rect{MinX: 2, MinY: 3, MaxX: 12, MaxY: 23},
		},
		{
			name: "negative rectangle extent",
			body: "5 5 -3 -2 re S",
			want: geom.Rect{MinX: 2, MinY: 3, MaxX: 5, MaxY: 5},
		},
		{
			name: "cubic curve control points count",
			body: "0 0 m 1 9 5 -4 6 2 c S",
			want: geom.Rect{MinX: 0, MinY: -4, MaxX: 6, MaxY: 9},
		},
		{
			name: "mixed operators",
			body: "0 0 m 4 4 l 1 1 2 2 re f",
			want: geom.Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBBox(tt.body)
			require.True(t, ok)
			assert.InDelta(t, tt.want.MinX, got.MinX, 1e-9)
			assert.InDelta(t, tt.want.MinY, got.MinY, 1e-9)
			assert.InDelta(t, tt.want.MaxX, got.MaxX, 1e-9)
			assert.InDelta(t, tt.want.MaxY, got.MaxY, 1e-9)
		})
	}
}

func TestExtractBBox_NoGeometry(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"state only", "5 w 1 0 0 RG"},
		{"text only", "BT (x) Tj ET"},
		{"short move operands", "7 m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractBBox(tt.body)
			assert.False(t, ok, "expected no-geometry sentinel")
		})
	}
}

func TestInstanceStore_MonotonicIDs(t *testing.T) {
	store := NewInstanceStore()
	box := geom.Rect{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

	a := store.Add(1, 1, box, geom.Identity(), "0 0 m")
	b := store.Add(1, 2, box, geom.Identity(), "1 1 m")
	c := store.Add(2, 1, box, geom.Identity(), "0 0 m")

	assert.Equal(t, 1, a.InstanceID)
	assert.Equal(t, 2, b.InstanceID)
	assert.Equal(t, 3, c.InstanceID)
	assert.Equal(t, 3, store.Len())

	ids := make(map[int]bool)
	for _, in := range store.Instances() {
		assert.False(t, ids[in.InstanceID], "instance ids must be unique")
		ids[in.InstanceID] = true
	}
}

func TestInstance_PageBBox(t *testing.T) {
	store := NewInstanceStore()
	in := store.Add(1, 1,
		geom.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		geom.Translation(100, 50), "0 0 10 10 re f")

	page := in.PageBBox()
	assert.InDelta(t, 100.0, page.MinX, 1e-9)
	assert.InDelta(t, 50.0, page.MinY, 1e-9)
	assert.InDelta(t, 110.0, page.MaxX, 1e-9)
	assert.InDelta(t, 60.0, page.MaxY, 1e-9)
}
