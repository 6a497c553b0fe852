package contentstream

import (
	"strconv"
	"strings"
)

// Operand is a single token preceding an operator. Numeric operands carry
// their parsed value; everything else (names, strings, arrays, malformed
// numbers) is kept as raw text only.
type Operand struct {
	Raw     string
	Num     float64
	IsNum   bool
}

// Operation is one operator together with the operands that preceded it.
// Start and End are byte offsets into the scanned stream: Start points at
// the first operand token (or the operator itself when it has none), End
// points just past the operator token.
type Operation struct {
	Operator string
	Operands []Operand
	Start    int
	End      int
	// OpStart is the offset of the operator token itself.
	OpStart int
}

// NumericOperands returns the values of the numeric operands in order.
func (op Operation) NumericOperands() []float64 {
	out := make([]float64, 0, len(op.Operands))
	for _, o := range op.Operands {
		if o.IsNum {
			out = append(out, o.Num)
		}
	}
	return out
}

// Scan tokenizes a decoded content stream into operations. Scanning never
// fails: comments are skipped, unknown bytes are dropped, and operands left
// without an operator at end of stream are discarded.
func Scan(src string) []Operation {
	s := &scanner{src: src}
	return s.run()
}

type scanner struct {
	src string
	pos int

	pendStart int // offset of the first pending operand, -1 when none
	pending   []Operand
	ops       []Operation
}

func (s *scanner) run() []Operation {
	s.pendStart = -1
	for s.pos < len(s.src) {
		s.skipWhitespaceAndComments()
		if s.pos >= len(s.src) {
			break
		}
		c := s.src[s.pos]
		switch {
		case isNumberStart(c):
			s.scanNumber()
		case c == '/':
			s.scanName()
		case c == '(':
			s.scanLiteralString()
		case c == '<':
			s.scanAngle()
		case c == '[' || c == ']' || c == '{' || c == '}':
			s.pushOperand(s.pos, s.pos+1)
			s.pos++
		case isOperatorChar(c):
			s.scanOperator()
		default:
			// Stray byte; drop it and carry on.
			s.pos++
		}
	}
	return s.ops
}

func (s *scanner) skipWhitespaceAndComments() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0:
			s.pos++
		case c == '%':
			// Comment runs to end of line. Skipping it here is what keeps
			// commented-out operators from producing false matches later.
			for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) scanNumber() {
	start := s.pos
	for s.pos < len(s.src) && isNumberChar(s.src[s.pos]) {
		s.pos++
	}
	raw := s.src[start:s.pos]
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.pending = append(s.pending, Operand{Raw: raw})
	} else {
		s.pending = append(s.pending, Operand{Raw: raw, Num: num, IsNum: true})
	}
	if s.pendStart < 0 {
		s.pendStart = start
	}
}

func (s *scanner) scanName() {
	start := s.pos
	s.pos++ // consume '/'
	for s.pos < len(s.src) && !isDelimiter(s.src[s.pos]) {
		s.pos++
	}
	s.pushOperand(start, s.pos)
}

func (s *scanner) scanLiteralString() {
	start := s.pos
	depth := 0
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos++ // skip the escaped byte
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				s.pos++
				s.pushOperand(start, s.pos)
				return
			}
		}
		s.pos++
	}
	// Unterminated string: keep what we have.
	s.pushOperand(start, s.pos)
}

// scanAngle handles hex strings <...> and inline dictionaries <<...>>.
func (s *scanner) scanAngle() {
	start := s.pos
	if strings.HasPrefix(s.src[s.pos:], "<<") {
		depth := 0
		for s.pos < len(s.src) {
			if strings.HasPrefix(s.src[s.pos:], "<<") {
				depth++
				s.pos += 2
				continue
			}
			if strings.HasPrefix(s.src[s.pos:], ">>") {
				depth--
				s.pos += 2
				if depth == 0 {
					break
				}
				continue
			}
			s.pos++
		}
		s.pushOperand(start, s.pos)
		return
	}
	for s.pos < len(s.src) && s.src[s.pos] != '>' {
		s.pos++
	}
	if s.pos < len(s.src) {
		s.pos++ // consume '>'
	}
	s.pushOperand(start, s.pos)
}

func (s *scanner) scanOperator() {
	start := s.pos
	for s.pos < len(s.src) && isOperatorChar(s.src[s.pos]) {
		s.pos++
	}
	op := Operation{
		Operator: s.src[start:s.pos],
		Operands: s.pending,
		OpStart:  start,
		Start:    start,
		End:      s.pos,
	}
	if s.pendStart >= 0 {
		op.Start = s.pendStart
	}
	s.ops = append(s.ops, op)
	s.pending = nil
	s.pendStart = -1
}

func (s *scanner) pushOperand(start, end int) {
	s.pending = append(s.pending, Operand{Raw: s.src[start:end]})
	if s.pendStart < 0 {
		s.pendStart = start
	}
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E'
}

func isOperatorChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '*' || c == '\'' || c == '"'
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
