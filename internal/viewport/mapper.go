// Package viewport maps page-space bounding boxes to device-space crop
// rectangles for the external renderer.
package viewport

import (
	"errors"
	"math"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// ErrNotRepresentable is returned when the mapped rectangle is empty or too
// small to crop; callers skip the occurrence instead of emitting a
// degenerate rectangle.
var ErrNotRepresentable = errors.New("viewport: region not representable")

// RotationPolicy decides how a page's /Rotate value participates in the
// mapping. The observed reference behavior resets rotation to zero for the
// whole computation, but whether the box corners themselves should rotate
// first is ambiguous, so the choice is explicit rather than guessed.
type RotationPolicy int

const (
	// RotationNormalize treats the page as unrotated for the duration of
	// the mapping. Default.
	RotationNormalize RotationPolicy = iota

	// RotationApplyToCorners rotates the box corners around the crop-box
	// center by the page rotation before crop-box-relative mapping.
	RotationApplyToCorners
)

// PageGeometry describes the page the box lives on.
type PageGeometry struct {
	// CropBox is the visible rectangle in page-space units.
	CropBox geom.Rect
	// Rotation is the page rotation in degrees: 0, 90, 180 or 270.
	Rotation int
}

// Mapper converts page-space AABBs into padded device-space rectangles.
type Mapper struct {
	// Padding is the symmetric margin added on all sides, in page units.
	Padding float64
	// MinSize is the smallest usable width/height of the result. Results
	// below it signal ErrNotRepresentable.
	MinSize float64
	// Policy selects the rotation handling, see RotationPolicy.
	Policy RotationPolicy
}

// NewMapper returns a Mapper with the reference defaults.
func NewMapper(padding float64) *Mapper {
	return &Mapper{Padding: padding, MinSize: 1}
}

// DeviceRect maps a page-space AABB onto the device raster of the page.
//
// Horizontal offsets are relative to the crop box's left edge. Vertical
// offsets are relative to the crop box's top edge with the axis flipped:
// device space grows downward while page space grows upward. The padded
// result is clipped to the full page rectangle.
func (m *Mapper) DeviceRect(box geom.Rect, page PageGeometry) (geom.Rect, error) {
	crop := page.CropBox

	if m.Policy == RotationApplyToCorners && page.Rotation%360 != 0 {
		box = rotateAroundCenter(box, crop, page.Rotation)
	}

	// X relative to crop left, Y flipped relative to crop top.
	device := geom.Rect{
		MinX: box.MinX - crop.MinX,
		MinY: crop.MaxY - box.MaxY,
		MaxX: box.MaxX - crop.MinX,
		MaxY: crop.MaxY - box.MinY,
	}

	device = device.Pad(m.Padding)

	pageRect := geom.Rect{MinX: 0, MinY: 0, MaxX: crop.Width(), MaxY: crop.Height()}
	device = device.Intersect(pageRect)

	if device.IsEmpty() || device.Width() < m.MinSize || device.Height() < m.MinSize {
		return geom.Rect{}, ErrNotRepresentable
	}
	return device, nil
}

// rotateAroundCenter rotates the box by deg around the crop-box center and
// returns the axis-aligned bounds of the rotated corners.
func rotateAroundCenter(box, crop geom.Rect, deg int) geom.Rect {
	cx, cy := crop.Center()
	rad := float64(deg) * math.Pi / 180
	m := geom.Translation(-cx, -cy).
		Mul(geom.Rotation(rad)).
		Mul(geom.Translation(cx, cy))
	return geom.TransformRect(box, m)
}
