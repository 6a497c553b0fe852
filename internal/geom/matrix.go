package geom

import "math"

// Matrix is a 2D affine transform stored in PDF operand order [a b c d e f].
// It maps a point (x, y) to:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translation returns a transform that moves points by (tx, ty).
func Translation(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scaling returns a transform that scales points by (sx, sy).
func Scaling(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotation returns a counter-clockwise rotation by the given angle in radians.
func Rotation(radians float64) Matrix {
	sin, cos := math.Sincos(radians)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Mul returns m followed by n, i.e. the transform that applies m first and
// then n. Written out for the [a b c d e f] representation:
//
//	a = a1*a2 + b1*c2    b = a1*b2 + b1*d2
//	c = c1*a2 + d1*c2    d = c1*b2 + d1*d2
//	e = e1*a2 + f1*c2 + e2
//	f = e1*b2 + f1*d2 + f2
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Compose folds the operand matrix of a cm operator into the accumulated
// transform. The PDF imaging model prescribes new = args x current; swapping
// the order corrupts geometry whenever rotation or skew is present.
func Compose(args, current Matrix) Matrix {
	return args.Mul(current)
}

// Apply maps the point (x, y) through the transform.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Determinant returns the determinant of the linear part of the transform.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// IsDegenerate reports whether the transform collapses the plane onto a line
// or point. Degenerate matrices are legal inputs everywhere in this module;
// they affect only the area of transformed boxes, never control flow.
func (m Matrix) IsDegenerate() bool {
	return m.Determinant() == 0
}
