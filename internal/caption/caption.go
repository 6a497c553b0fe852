// Package caption annotates cropped shape images with model-generated
// descriptions. Captioning is best-effort: any per-image failure becomes a
// sentinel caption string and the batch carries on.
package caption

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// Sentinel captions recorded when no model output is available. They start
// with '[' so HasText can rule them out without extra state.
const (
	CaptionFileNotFound  = "[File Not Found]"
	CaptionEmptyResponse = "[Empty Response]"
)

// Captioner produces a description for one image file.
type Captioner interface {
	Caption(ctx context.Context, imagePath string) (string, error)
}

// Runner drives captioning over all instances of an artifact.
type Runner struct {
	captioner Captioner
	cropsDir  string
	log       *slog.Logger
}

// NewRunner creates a Runner reading crops from cropsDir.
func NewRunner(captioner Captioner, cropsDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{captioner: captioner, cropsDir: cropsDir, log: logger}
}

// Stats tallies one captioning run.
type Stats struct {
	Instances int `json:"instances"`
	Captioned int `json:"captioned"`
	Missing   int `json:"missing"`
	Errors    int `json:"errors"`
}

// Run captions every instance's crop image and appends the caption fields.
// A missing crop, a model error or an empty model answer all degrade to a
// sentinel caption; only context cancellation aborts the batch.
func (r *Runner) Run(ctx context.Context, artifact *shapes.Artifact) (*Stats, error) {
	stats := &Stats{Instances: len(artifact.Instances)}

	for _, in := range artifact.Instances {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		path := filepath.Join(r.cropsDir, CropFileName(in.ShapeID, in.InstanceID))

		var text string
		switch {
		case !fileExists(path):
			text = CaptionFileNotFound
			stats.Missing++
		default:
			out, err := r.captioner.Caption(ctx, path)
			switch {
			case err != nil:
				text = fmt.Sprintf("Error: %s", err)
				stats.Errors++
				r.log.Warn("captioning failed", "image", path, "error", err)
			case strings.TrimSpace(out) == "":
				text = CaptionEmptyResponse
				stats.Captioned++
			default:
				text = strings.TrimSpace(out)
				stats.Captioned++
			}
		}

		hasText := HasText(text)
		in.Caption = text
		in.CaptionHasText = &hasText
	}

	r.log.Info("captioning complete",
		"instances", stats.Instances,
		"captioned", stats.Captioned,
		"missing", stats.Missing,
		"errors", stats.Errors)
	return stats, nil
}

// HasText reports whether a caption describes visible text. Sentinel
// captions and captions explicitly saying "no text" do not.
func HasText(caption string) bool {
	if strings.HasPrefix(caption, "[") {
		return false
	}
	return !strings.Contains(strings.ToLower(caption), "no text")
}

// CropFileName returns the crop image name for one instance.
func CropFileName(shapeID, instanceID int) string {
	return fmt.Sprintf("shape_%d_inst_%d.png", shapeID, instanceID)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
