package contentstream

import (
	"strings"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// Fragment is one bounded drawing block of the form
//
//	q  a b c d e f cm  <body>  Q
//
// Prefix holds the raw text from the q through the cm operator, Body the raw
// drawing commands between cm and Q. The operand matrix is kept pre-parsed.
type Fragment struct {
	Prefix string
	Body   string
	Matrix geom.Matrix
}

// Segment isolates all save/transform/body/restore fragments from one
// decoded content stream. The body is matched non-greedily: it ends at the
// first Q after the opening pair, so nested q/Q blocks inside a body are
// swallowed rather than segmented separately. Streams without any matching
// fragment yield an empty slice; that is not an error.
func Segment(src string) []Fragment {
	return segmentOps(src, Scan(src))
}

func segmentOps(src string, ops []Operation) []Fragment {
	var frags []Fragment
	for i := 0; i < len(ops); i++ {
		if ops[i].Operator != "q" || len(ops[i].Operands) != 0 {
			continue
		}
		if i+1 >= len(ops) {
			break
		}
		cm := ops[i+1]
		if cm.Operator != "cm" || len(cm.Operands) != 6 {
			continue
		}
		// Find the closing Q. First match wins, mirroring the non-greedy
		// body semantics.
		end := -1
		for j := i + 2; j < len(ops); j++ {
			if ops[j].Operator == "Q" {
				end = j
				break
			}
		}
		if end < 0 {
			break
		}
		if end == i+2 {
			// Empty body; nothing to dedupe.
			i = end
			continue
		}
		frags = append(frags, Fragment{
			Prefix: src[ops[i].Start:cm.End],
			Body:   strings.TrimSpace(src[cm.End:ops[end].OpStart]),
			Matrix: MatrixFromOperands(cm.Operands),
		})
		i = end
	}
	return frags
}

// MatrixFromOperands builds an affine matrix from cm operands. Fewer than
// six usable numbers means a malformed operator; the identity matrix is the
// defensive default so one bad fragment degrades instead of failing a batch.
func MatrixFromOperands(operands []Operand) geom.Matrix {
	nums := make([]float64, 0, 6)
	for _, o := range operands {
		if o.IsNum {
			nums = append(nums, o.Num)
		}
	}
	if len(nums) < 6 {
		return geom.Identity()
	}
	// The matrix is the last six numbers before the operator.
	nums = nums[len(nums)-6:]
	return geom.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}
}

// Normalize collapses runs of whitespace to single spaces and trims the
// ends, yielding the comparison key for fragment deduplication. Equality is
// exact: tool-generated geometry repeats with byte-identical operands, so
// no numeric tolerance is needed.
func Normalize(body string) string {
	return strings.Join(strings.Fields(body), " ")
}
