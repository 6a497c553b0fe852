// Package markers matches text blocks to shape instances by spatial
// proximity and labels shape definitions accordingly. It only appends
// fields to the artifact and sets semantic labels; the geometry recorded by
// the analysis pass is never altered.
package markers

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/wan-andrea/recover-pdfCAD/internal/contentstream"
	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// DefaultThreshold is the maximum distance in page units between a shape
// center and a text block anchor for the two to be matched.
const DefaultThreshold = 100.0

const (
	// LabelMarker is assigned to definitions with at least one matched
	// instance, LabelGraphic to all others.
	LabelMarker  = "Annotation Marker"
	LabelGraphic = "Graphic Block"
)

// Detector finds annotation markers: small shapes placed next to text.
type Detector struct {
	threshold float64
	log       *slog.Logger
}

// NewDetector creates a Detector with the given proximity threshold; zero
// or negative selects the default.
func NewDetector(threshold float64, logger *slog.Logger) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{threshold: threshold, log: logger}
}

// Stats tallies one marker detection run.
type Stats struct {
	Instances  int `json:"instances"`
	Markers    int `json:"markers"`
	TextBlocks int `json:"text_blocks"`
}

// Detect matches every instance against the text blocks of its page and
// updates the artifact in place: each instance gets a marker verdict, each
// definition gets a semantic label. Pages that fail to load contribute no
// text blocks; their instances simply stay unmatched.
func (d *Detector) Detect(doc document.Document, artifact *shapes.Artifact) (*Stats, error) {
	stats := &Stats{Instances: len(artifact.Instances)}

	blocksByPage := make(map[int][]contentstream.TextBlock)
	for n := 1; n <= doc.PageCount(); n++ {
		page, err := doc.Page(n)
		if err != nil {
			d.log.Warn("skipping text extraction for unreadable page", "page", n, "error", err)
			continue
		}
		blocks := contentstream.TextBlocks(page.Content())
		blocksByPage[n] = blocks
		stats.TextBlocks += len(blocks)
	}

	for _, in := range artifact.Instances {
		nearest, dist := nearestBlock(in, blocksByPage[in.Page], d.threshold)
		if nearest != nil && nearest.HasText {
			yes := true
			text := nearest.Content
			rounded := math.Round(dist*100) / 100
			in.IsMarker = &yes
			in.MarkerText = &text
			in.MarkerDistance = &rounded
			stats.Markers++
		} else {
			no := false
			in.IsMarker = &no
			in.MarkerText = nil
			in.MarkerDistance = nil
		}
	}

	labelDefinitions(artifact)

	d.log.Info("marker detection complete",
		"instances", stats.Instances,
		"markers", stats.Markers,
		"text_blocks", stats.TextBlocks)
	return stats, nil
}

// nearestBlock returns the closest positioned text block within the
// threshold, measured from the instance's transformed bbox center.
func nearestBlock(in *shapes.Instance, blocks []contentstream.TextBlock, threshold float64) (*contentstream.TextBlock, float64) {
	local := in.LocalBBox()
	cx, cy := in.Transform.Apply(local.Center())

	var nearest *contentstream.TextBlock
	minDist := math.Inf(1)
	for i := range blocks {
		tb := &blocks[i]
		if !tb.HasPos {
			continue
		}
		dist := math.Hypot(cx-tb.X, cy-tb.Y)
		if dist < minDist && dist < threshold {
			minDist = dist
			nearest = tb
		}
	}
	return nearest, minDist
}

// labelDefinitions marks a definition as a marker when any of its instances
// matched, and assigns the semantic label either way.
func labelDefinitions(artifact *shapes.Artifact) {
	markerShapes := make(map[string]bool)
	for _, in := range artifact.Instances {
		if in.IsMarker != nil && *in.IsMarker {
			markerShapes[strconv.Itoa(in.ShapeID)] = true
		}
	}
	for key, def := range artifact.Definitions {
		flag := markerShapes[key]
		def.IsMarker = &flag
		if flag {
			def.SemanticLabel = LabelMarker
		} else {
			def.SemanticLabel = LabelGraphic
		}
	}
}
