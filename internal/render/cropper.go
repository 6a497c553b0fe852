// Package render crops shape instances out of pre-rendered page images.
// Rasterization happens outside this program; this stage only maps each
// instance's geometry to a pixel rectangle and cuts it from the page image.
package render

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/wan-andrea/recover-pdfCAD/internal/caption"
	"github.com/wan-andrea/recover-pdfCAD/internal/common"
	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
	"github.com/wan-andrea/recover-pdfCAD/internal/viewport"
)

const (
	// DefaultPadding is the crop margin in page units.
	DefaultPadding = 10.0
	// DefaultDPI matches the resolution the page images are rendered at.
	DefaultDPI = 150.0
)

// PageImageSource supplies the rendered image of a page.
type PageImageSource interface {
	PageImage(page int) (image.Image, error)
}

// DirectoryImages reads page images named page_<n>.png from a directory.
type DirectoryImages struct {
	Dir string
}

// PageImage implements PageImageSource.
func (d DirectoryImages) PageImage(page int) (image.Image, error) {
	path := filepath.Join(d.Dir, fmt.Sprintf("page_%d.png", page))
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page image %s: %w", path, err)
	}
	return img, nil
}

// Options configures a Cropper.
type Options struct {
	// OutputDir receives the crop PNGs.
	OutputDir string
	// Padding in page units; zero selects the default.
	Padding float64
	// DPI the page images were rendered at; zero selects the default.
	DPI float64
	// Policy selects the rotation handling of the viewport mapping.
	Policy viewport.RotationPolicy
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Cropper cuts per-instance crop images from rendered pages.
type Cropper struct {
	outputDir string
	zoom      float64
	mapper    *viewport.Mapper
	log       *slog.Logger
}

// NewCropper creates a Cropper from options.
func NewCropper(opts Options) *Cropper {
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mapper := viewport.NewMapper(padding)
	mapper.Policy = opts.Policy
	return &Cropper{
		outputDir: opts.OutputDir,
		zoom:      dpi / 72.0,
		mapper:    mapper,
		log:       logger,
	}
}

// Stats tallies one crop run.
type Stats struct {
	Instances int `json:"instances"`
	Cropped   int `json:"cropped"`
	Skipped   int `json:"skipped"`
}

// Run maps every instance through its page's base transform and the
// viewport mapping, then crops the page image to the resulting rectangle.
// Unrepresentable regions and missing page images are skipped and tallied.
func (c *Cropper) Run(doc document.Document, artifact *shapes.Artifact, images PageImageSource) (*Stats, error) {
	if err := os.MkdirAll(c.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", c.outputDir, err)
	}

	timer := common.NewStageTimer("crop")
	stats := &Stats{Instances: len(artifact.Instances)}
	bases := pipeline.NewBaseTransformCache(doc)

	pageImages := make(map[int]image.Image)
	pageGeom := make(map[int]viewport.PageGeometry)

	for _, in := range artifact.Instances {
		if in.Page < 1 || in.Page > doc.PageCount() {
			stats.Skipped++
			continue
		}

		pg, ok := pageGeom[in.Page]
		if !ok {
			page, err := doc.Page(in.Page)
			if err != nil {
				stats.Skipped++
				c.log.Warn("skipping crop on unreadable page", "page", in.Page, "error", err)
				continue
			}
			pg = viewport.PageGeometry{CropBox: page.CropBox, Rotation: page.Rotation}
			pageGeom[in.Page] = pg
		}

		// Local box through the fragment transform, then through the page
		// base transform, four corners each time.
		raw := geom.TransformRect(in.LocalBBox(), in.Transform)
		user := geom.TransformRect(raw, bases.Get(in.Page))

		device, err := c.mapper.DeviceRect(user, pg)
		if err != nil {
			stats.Skipped++
			pipeline.CountSkippedViewport()
			c.log.Debug("skipping unrepresentable crop region",
				"page", in.Page, "instance", in.InstanceID)
			continue
		}

		img, ok := pageImages[in.Page]
		if !ok {
			img, err = images.PageImage(in.Page)
			if err != nil {
				stats.Skipped++
				c.log.Warn("skipping crop, page image unavailable",
					"page", in.Page, "error", err)
				continue
			}
			pageImages[in.Page] = img
		}

		crop := imaging.Crop(img, c.pixelRect(device))
		name := caption.CropFileName(in.ShapeID, in.InstanceID)
		if err := imaging.Save(crop, filepath.Join(c.outputDir, name)); err != nil {
			return stats, fmt.Errorf("failed to save crop %s: %w", name, err)
		}
		stats.Cropped++
	}

	c.log.Info("cropping complete",
		"instances", stats.Instances,
		"cropped", stats.Cropped,
		"skipped", stats.Skipped,
		"duration", timer.Stop().Round(time.Millisecond))
	return stats, nil
}

// pixelRect scales a device rectangle in page units to image pixels.
func (c *Cropper) pixelRect(device geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(device.MinX*c.zoom)),
		int(math.Floor(device.MinY*c.zoom)),
		int(math.Ceil(device.MaxX*c.zoom)),
		int(math.Ceil(device.MaxY*c.zoom)),
	)
}
