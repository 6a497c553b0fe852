package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
	"github.com/wan-andrea/recover-pdfCAD/internal/testutil"
)

func markerArtifact(instances ...*shapes.Instance) *shapes.Artifact {
	defs := map[string]*shapes.Definition{}
	for _, in := range instances {
		key := ""
		switch in.ShapeID {
		case 1:
			key = "1"
		case 2:
			key = "2"
		}
		if key != "" {
			if _, ok := defs[key]; !ok {
				defs[key] = &shapes.Definition{Count: 2, IsClosed: true}
			}
		}
	}
	return &shapes.Artifact{
		Metadata:    shapes.Metadata{SourceFile: "t.pdf", TotalInstances: len(instances), UniqueShapes: len(defs)},
		Definitions: defs,
		Instances:   instances,
	}
}

func inst(id, page, shapeID int, transform geom.Matrix) *shapes.Instance {
	return &shapes.Instance{
		InstanceID: id,
		Page:       page,
		ShapeID:    shapeID,
		BBoxLocal:  [4]float64{0, 0, 10, 10},
		Transform:  transform,
	}
}

func TestDetect_NearbyTextMarksInstance(t *testing.T) {
	// Shape center in page space is (105, 105); the text block anchors at
	// (110, 110), well inside the threshold.
	doc := testutil.NewMemDocument("t.pdf",
		"BT 1 0 0 1 110 110 Tm (A1) Tj ET",
	)
	artifact := markerArtifact(
		inst(1, 1, 1, geom.Translation(100, 100)),
		inst(2, 1, 1, geom.Translation(400, 400)),
	)

	stats, err := NewDetector(0, nil).Detect(doc, artifact)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Markers)
	assert.Equal(t, 1, stats.TextBlocks)

	near, far := artifact.Instances[0], artifact.Instances[1]
	require.NotNil(t, near.IsMarker)
	assert.True(t, *near.IsMarker)
	require.NotNil(t, near.MarkerText)
	assert.Contains(t, *near.MarkerText, "(A1)")
	require.NotNil(t, near.MarkerDistance)
	assert.InDelta(t, 7.07, *near.MarkerDistance, 0.01)

	require.NotNil(t, far.IsMarker)
	assert.False(t, *far.IsMarker)
	assert.Nil(t, far.MarkerText)
	assert.Nil(t, far.MarkerDistance)

	def := artifact.Definitions["1"]
	require.NotNil(t, def.IsMarker)
	assert.True(t, *def.IsMarker)
	assert.Equal(t, LabelMarker, def.SemanticLabel)
}

func TestDetect_BlockWithoutTextOperatorsDoesNotMatch(t *testing.T) {
	doc := testutil.NewMemDocument("t.pdf",
		"BT 1 0 0 1 10 10 Tm ET",
	)
	artifact := markerArtifact(inst(1, 1, 1, geom.Identity()))

	stats, err := NewDetector(0, nil).Detect(doc, artifact)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Markers)
	assert.False(t, *artifact.Instances[0].IsMarker)
	assert.Equal(t, LabelGraphic, artifact.Definitions["1"].SemanticLabel)
}

func TestDetect_TdPositionUsedWhenNoTm(t *testing.T) {
	doc := testutil.NewMemDocument("t.pdf",
		"BT 8 6 Td (B2) Tj ET",
	)
	artifact := markerArtifact(inst(1, 1, 1, geom.Identity()))

	_, err := NewDetector(0, nil).Detect(doc, artifact)
	require.NoError(t, err)

	in := artifact.Instances[0]
	require.NotNil(t, in.MarkerDistance)
	// Center (5,5) vs anchor (8,6).
	assert.InDelta(t, 3.16, *in.MarkerDistance, 0.01)
}

func TestDetect_ThresholdIsStrict(t *testing.T) {
	doc := testutil.NewMemDocument("t.pdf",
		"BT 1 0 0 1 105 5 Tm (X) Tj ET",
	)
	artifact := markerArtifact(inst(1, 1, 1, geom.Identity()))

	// Center (5,5), anchor (105,5): distance exactly 100.
	_, err := NewDetector(100, nil).Detect(doc, artifact)
	require.NoError(t, err)
	assert.False(t, *artifact.Instances[0].IsMarker)
}

func TestDetect_TextOnOtherPageIgnored(t *testing.T) {
	doc := testutil.NewMemDocument("t.pdf",
		"",
		"BT 1 0 0 1 5 5 Tm (Y) Tj ET",
	)
	artifact := markerArtifact(inst(1, 1, 1, geom.Identity()))

	_, err := NewDetector(0, nil).Detect(doc, artifact)
	require.NoError(t, err)
	assert.False(t, *artifact.Instances[0].IsMarker)
}

func TestDetect_NearestOfSeveralBlocksWins(t *testing.T) {
	doc := testutil.NewMemDocument("t.pdf",
		"BT 1 0 0 1 50 5 Tm (far) Tj ET BT 1 0 0 1 8 5 Tm (near) Tj ET",
	)
	artifact := markerArtifact(inst(1, 1, 1, geom.Identity()))

	_, err := NewDetector(0, nil).Detect(doc, artifact)
	require.NoError(t, err)

	in := artifact.Instances[0]
	require.NotNil(t, in.MarkerText)
	assert.Contains(t, *in.MarkerText, "(near)")
}

func TestDetect_CoreFieldsUntouched(t *testing.T) {
	doc := testutil.NewMemDocument("t.pdf",
		"BT 1 0 0 1 5 5 Tm (Z) Tj ET",
	)
	in := inst(1, 1, 1, geom.Translation(2, 3))
	artifact := markerArtifact(in)

	_, err := NewDetector(0, nil).Detect(doc, artifact)
	require.NoError(t, err)

	assert.Equal(t, 1, in.InstanceID)
	assert.Equal(t, [4]float64{0, 0, 10, 10}, in.BBoxLocal)
	assert.Equal(t, geom.Translation(2, 3), in.Transform)
	assert.Equal(t, 2, artifact.Definitions["1"].Count)
}
