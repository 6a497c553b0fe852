package contentstream

import "github.com/wan-andrea/recover-pdfCAD/internal/geom"

// headerScanLimit bounds the header scan when a stream has no region
// boundary token at all.
const headerScanLimit = 1000

// BaseTransform derives the page-level transform from the header of a
// content stream. Generators often scale or translate the whole page with
// one or more leading cm operators before the first saved region; fragment
// matrices are relative to that accumulated transform.
//
// The header ends at the first region boundary token (q, BT or Do), or
// after the first 1000 bytes when none is present. Every well-formed cm in
// the header is composed in encounter order starting from identity, with
// the operand matrix premultiplied (new = args x current).
func BaseTransform(src string) geom.Matrix {
	ops := Scan(src)

	limit := headerScanLimit
	if limit > len(src) {
		limit = len(src)
	}
	for _, op := range ops {
		if op.Operator == "q" || op.Operator == "BT" || op.Operator == "Do" {
			limit = op.OpStart
			break
		}
	}

	m := geom.Identity()
	for _, op := range ops {
		if op.OpStart >= limit {
			break
		}
		if op.Operator != "cm" {
			continue
		}
		if len(op.NumericOperands()) < 6 {
			continue
		}
		m = geom.Compose(MatrixFromOperands(op.Operands), m)
	}
	return m
}
