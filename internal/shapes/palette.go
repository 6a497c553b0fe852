package shapes

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette produces the display colors for n shape definitions. Color
// assignment is cosmetic and is the only run-to-run variation the pipeline
// permits, so it sits behind an interface that tests can replace with a
// deterministic implementation.
type Palette interface {
	Colors(n int) [][3]float64
}

// DistinctPalette spreads n hues evenly at fixed saturation and value and
// then permutes them, so consecutive shape ids do not get visually adjacent
// colors.
type DistinctPalette struct {
	Saturation float64
	Value      float64
	rng        *rand.Rand
}

// NewDistinctPalette returns the default palette used for shape colors.
func NewDistinctPalette() *DistinctPalette {
	return &DistinctPalette{Saturation: 0.95, Value: 0.9}
}

// WithSeed fixes the permutation order, for reproducible runs.
func (p *DistinctPalette) WithSeed(seed int64) *DistinctPalette {
	p.rng = rand.New(rand.NewSource(seed))
	return p
}

// Colors implements Palette.
func (p *DistinctPalette) Colors(n int) [][3]float64 {
	if n <= 0 {
		return nil
	}
	out := make([][3]float64, n)
	for i := range n {
		hue := 360.0 * float64(i) / float64(n)
		c := colorful.Hsv(hue, p.Saturation, p.Value)
		out[i] = [3]float64{c.R, c.G, c.B}
	}
	shuffle := rand.Shuffle
	if p.rng != nil {
		shuffle = p.rng.Shuffle
	}
	shuffle(n, func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// SequentialPalette assigns gray levels in order without shuffling. Used in
// tests to keep color assignment deterministic.
type SequentialPalette struct{}

// Colors implements Palette.
func (SequentialPalette) Colors(n int) [][3]float64 {
	if n <= 0 {
		return nil
	}
	out := make([][3]float64, n)
	for i := range n {
		v := float64(i) / float64(n)
		out[i] = [3]float64{v, v, v}
	}
	return out
}
