package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
	"github.com/wan-andrea/recover-pdfCAD/internal/testutil"
)

func newTestPipeline() *Pipeline {
	return New(Options{Palette: shapes.SequentialPalette{}})
}

func TestAnalyze_RepeatedFragmentAcrossPages(t *testing.T) {
	doc := testutil.NewMemDocument("two-pages.pdf",
		"q 1 0 0 1 10 10 cm 0 0 10 10 re f Q q 1 0 0 1 50 50 cm 0 0 10 10 re f Q",
		"q 2 0 0 2 0 0 cm 0 0 10 10 re f Q",
	)

	artifact, stats, err := newTestPipeline().Analyze(doc)
	require.NoError(t, err)

	// Three occurrences of the same body collapse into one definition.
	require.Len(t, artifact.Definitions, 1)
	def := artifact.Definitions["1"]
	require.NotNil(t, def)
	assert.Equal(t, 3, def.Count)
	assert.True(t, def.IsClosed)

	require.Len(t, artifact.Instances, 3)
	assert.Equal(t, 1, artifact.Instances[0].InstanceID)
	assert.Equal(t, 2, artifact.Instances[1].InstanceID)
	assert.Equal(t, 3, artifact.Instances[2].InstanceID)
	assert.Equal(t, 1, artifact.Instances[0].Page)
	assert.Equal(t, 1, artifact.Instances[1].Page)
	assert.Equal(t, 2, artifact.Instances[2].Page)
	for _, in := range artifact.Instances {
		assert.Equal(t, 1, in.ShapeID)
		assert.Equal(t, [4]float64{0, 0, 10, 10}, in.BBoxLocal)
	}
	assert.Equal(t, 50.0, artifact.Instances[1].Transform[4])

	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Fragments)
	assert.Equal(t, 1, stats.UniqueShapes)
	assert.Equal(t, 3, stats.Instances)

	assert.Equal(t, "two-pages.pdf", artifact.Metadata.SourceFile)
	assert.Equal(t, 3, artifact.Metadata.TotalInstances)
	assert.Equal(t, 1, artifact.Metadata.UniqueShapes)
}

func TestAnalyze_SingletonsNotRetained(t *testing.T) {
	doc := testutil.NewMemDocument("singletons.pdf",
		"q 1 0 0 1 0 0 cm 0 0 5 5 re f Q q 1 0 0 1 0 0 cm 1 1 m 9 9 l S Q",
	)

	artifact, stats, err := newTestPipeline().Analyze(doc)
	require.NoError(t, err)

	assert.Empty(t, artifact.Definitions)
	assert.Empty(t, artifact.Instances)
	assert.NotNil(t, artifact.Instances)
	assert.Equal(t, 2, stats.Fragments)
	assert.Equal(t, 0, stats.UniqueShapes)
}

func TestAnalyze_WhitespaceVariantsShareDefinition(t *testing.T) {
	doc := testutil.NewMemDocument("ws.pdf",
		"q 1 0 0 1 0 0 cm 0 0 m 5 5 l S Q",
		"q 1 0 0 1 9 9 cm 0 0 m\n  5 5 l   S Q",
	)

	artifact, _, err := newTestPipeline().Analyze(doc)
	require.NoError(t, err)

	require.Len(t, artifact.Definitions, 1)
	assert.Equal(t, 2, artifact.Definitions["1"].Count)
	require.Len(t, artifact.Instances, 2)
}

func TestAnalyze_OccurrenceWithoutGeometrySkipped(t *testing.T) {
	// The repeated body carries no path construction operators, so it is
	// retained by counting but yields no instances.
	doc := testutil.NewMemDocument("nogeo.pdf",
		"q 1 0 0 1 0 0 cm /GS0 gs Q q 1 0 0 1 5 5 cm /GS0 gs Q",
	)

	artifact, stats, err := newTestPipeline().Analyze(doc)
	require.NoError(t, err)

	require.Len(t, artifact.Definitions, 1)
	assert.Empty(t, artifact.Instances)
	assert.Equal(t, 2, stats.SkippedNoGeometry)
}

func TestAnalyze_UnreadablePageDegradesToSkip(t *testing.T) {
	doc := testutil.NewMemDocument("partial.pdf",
		"q 1 0 0 1 0 0 cm 0 0 10 10 re f Q",
		"q 1 0 0 1 0 0 cm 0 0 10 10 re f Q",
	)
	doc.FailPages = map[int]bool{2: true}

	artifact, stats, err := newTestPipeline().Analyze(doc)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 1, stats.FailedPages)
	// The surviving occurrence is now a singleton.
	assert.Empty(t, artifact.Definitions)
}

func TestAnalyze_EmptyDocumentFatal(t *testing.T) {
	doc := testutil.NewMemDocument("empty.pdf")

	_, _, err := newTestPipeline().Analyze(doc)
	assert.Error(t, err)
}

func TestAnalyze_Idempotent(t *testing.T) {
	doc := testutil.NewMemDocument("repeat.pdf",
		"q 1 0 0 1 0 0 cm 0 0 10 10 re f Q q 1 0 0 1 20 0 cm 0 0 10 10 re f Q",
	)

	p := newTestPipeline()
	a1, _, err := p.Analyze(doc)
	require.NoError(t, err)
	a2, _, err := p.Analyze(doc)
	require.NoError(t, err)

	assert.Equal(t, a1.Metadata, a2.Metadata)
	assert.Equal(t, a1.Definitions, a2.Definitions)
	require.Equal(t, len(a1.Instances), len(a2.Instances))
	for i := range a1.Instances {
		assert.Equal(t, *a1.Instances[i], *a2.Instances[i])
	}
}

type recordingProgress struct {
	started   int
	updates   int
	completed int
}

func (r *recordingProgress) OnStart(total int)             { r.started = total }
func (r *recordingProgress) OnProgress(current, total int) { r.updates++ }
func (r *recordingProgress) OnComplete()                   { r.completed++ }

func TestAnalyze_ReportsProgressPerPage(t *testing.T) {
	doc := testutil.NewMemDocument("progress.pdf",
		"q 1 0 0 1 0 0 cm 0 0 10 10 re f Q",
		"q 1 0 0 1 0 0 cm 0 0 10 10 re f Q",
		"",
	)

	rec := &recordingProgress{}
	p := New(Options{Palette: shapes.SequentialPalette{}, Progress: rec})
	_, _, err := p.Analyze(doc)
	require.NoError(t, err)

	assert.Equal(t, 3, rec.started)
	assert.Equal(t, 3, rec.updates)
	assert.Equal(t, 1, rec.completed)
}
