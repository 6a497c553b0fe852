package shapes

import (
	"github.com/wan-andrea/recover-pdfCAD/internal/contentstream"
	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// ExtractBBox derives the local bounding box of a fragment body from its
// move/line points, cubic-curve control points, and rectangles. Other
// operators (clipping, color, non-cubic curves) carry no geometry for this
// purpose and are ignored.
//
// The second return is false when the body contains no usable coordinates;
// the caller must skip such an occurrence rather than fail the batch.
func ExtractBBox(body string) (geom.Rect, bool) {
	var xs, ys []float64

	for _, op := range contentstream.Scan(body) {
		nums := op.NumericOperands()
		switch op.Operator {
		case "m", "l":
			if len(nums) >= 2 {
				xs = append(xs, nums[len(nums)-2])
				ys = append(ys, nums[len(nums)-1])
			}
		case "c":
			if len(nums) >= 6 {
				nums = nums[len(nums)-6:]
				xs = append(xs, nums[0], nums[2], nums[4])
				ys = append(ys, nums[1], nums[3], nums[5])
			}
		case "re":
			if len(nums) >= 4 {
				nums = nums[len(nums)-4:]
				x, y, w, h := nums[0], nums[1], nums[2], nums[3]
				xs = append(xs, x, x+w)
				ys = append(ys, y, y+h)
			}
		}
	}

	if len(xs) == 0 {
		return geom.Rect{}, false
	}

	out := geom.Rect{MinX: xs[0], MinY: ys[0], MaxX: xs[0], MaxY: ys[0]}
	for i := range xs {
		if xs[i] < out.MinX {
			out.MinX = xs[i]
		}
		if xs[i] > out.MaxX {
			out.MaxX = xs[i]
		}
		if ys[i] < out.MinY {
			out.MinY = ys[i]
		}
		if ys[i] > out.MaxY {
			out.MaxY = ys[i]
		}
	}
	return out, true
}
