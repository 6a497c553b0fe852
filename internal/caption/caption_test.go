package caption

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

type stubCaptioner struct {
	answers map[string]string
	err     error
	calls   int
}

func (s *stubCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answers[filepath.Base(imagePath)], nil
}

func captionArtifact(instances ...*shapes.Instance) *shapes.Artifact {
	return &shapes.Artifact{
		Definitions: map[string]*shapes.Definition{"1": {Count: 2}},
		Instances:   instances,
	}
}

func writeCrop(t *testing.T, dir string, shapeID, instanceID int) {
	t.Helper()
	path := filepath.Join(dir, CropFileName(shapeID, instanceID))
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))
}

func TestRun_CaptionsExistingCrops(t *testing.T) {
	dir := t.TempDir()
	writeCrop(t, dir, 1, 1)

	stub := &stubCaptioner{answers: map[string]string{
		"shape_1_inst_1.png": "  A square with the label B2.  ",
	}}
	artifact := captionArtifact(&shapes.Instance{InstanceID: 1, ShapeID: 1, Page: 1})

	stats, err := NewRunner(stub, dir, nil).Run(context.Background(), artifact)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Captioned)
	in := artifact.Instances[0]
	assert.Equal(t, "A square with the label B2.", in.Caption)
	require.NotNil(t, in.CaptionHasText)
	assert.True(t, *in.CaptionHasText)
}

func TestRun_MissingCropGetsSentinel(t *testing.T) {
	stub := &stubCaptioner{}
	artifact := captionArtifact(&shapes.Instance{InstanceID: 3, ShapeID: 2, Page: 1})

	stats, err := NewRunner(stub, t.TempDir(), nil).Run(context.Background(), artifact)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Missing)
	assert.Equal(t, 0, stub.calls)
	in := artifact.Instances[0]
	assert.Equal(t, CaptionFileNotFound, in.Caption)
	assert.False(t, *in.CaptionHasText)
}

func TestRun_ModelErrorDegradesToErrorCaption(t *testing.T) {
	dir := t.TempDir()
	writeCrop(t, dir, 1, 1)

	stub := &stubCaptioner{err: errors.New("connection refused")}
	artifact := captionArtifact(&shapes.Instance{InstanceID: 1, ShapeID: 1, Page: 1})

	stats, err := NewRunner(stub, dir, nil).Run(context.Background(), artifact)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, "Error: connection refused", artifact.Instances[0].Caption)
}

func TestRun_EmptyAnswerGetsSentinel(t *testing.T) {
	dir := t.TempDir()
	writeCrop(t, dir, 1, 1)

	stub := &stubCaptioner{answers: map[string]string{"shape_1_inst_1.png": "   "}}
	artifact := captionArtifact(&shapes.Instance{InstanceID: 1, ShapeID: 1, Page: 1})

	_, err := NewRunner(stub, dir, nil).Run(context.Background(), artifact)
	require.NoError(t, err)

	in := artifact.Instances[0]
	assert.Equal(t, CaptionEmptyResponse, in.Caption)
	assert.False(t, *in.CaptionHasText)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubCaptioner{}
	artifact := captionArtifact(&shapes.Instance{InstanceID: 1, ShapeID: 1, Page: 1})

	_, err := NewRunner(stub, t.TempDir(), nil).Run(ctx, artifact)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHasText(t *testing.T) {
	tests := []struct {
		caption string
		want    bool
	}{
		{"A circle labeled C4", true},
		{"There is no text in this image", false},
		{"No Text visible", false},
		{CaptionFileNotFound, false},
		{CaptionEmptyResponse, false},
		{"Error: timeout", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasText(tt.caption), tt.caption)
	}
}

func TestCropFileName(t *testing.T) {
	assert.Equal(t, "shape_4_inst_17.png", CropFileName(4, 17))
}
