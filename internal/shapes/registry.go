package shapes

import (
	"strconv"

	"github.com/wan-andrea/recover-pdfCAD/internal/contentstream"
)

// closingTokens are the operators whose presence marks a path as closed:
// the explicit close (h), rectangles (re, always closed), and the painting
// operators that close or fill the current path.
var closingTokens = map[string]struct{}{
	"h": {}, "re": {},
	"s": {}, "f": {}, "F": {}, "f*": {},
	"b": {}, "B": {}, "b*": {}, "B*": {},
}

// Registry maps normalized fragment bodies to their shape definitions.
// It is built once from the full corpus (Pass 1) and is read-only during
// instance extraction (Pass 2): retention depends on corpus-wide counts,
// so no id can be assigned before counting has finished.
type Registry struct {
	byKey map[string]int // normalized body -> shape id
	defs  []*Definition  // index = id - 1
}

// BuildRegistry counts the normalized fragment bodies of the whole corpus
// and retains exactly those occurring more than once; a singleton has
// nothing to deduplicate against. Ids are assigned contiguously from 1 in
// first-appearance order among the retained keys. The palette provides one
// color per retained definition.
func BuildRegistry(bodies []string, palette Palette) *Registry {
	counts := make(map[string]int)
	representative := make(map[string]string)
	var order []string

	for _, body := range bodies {
		norm := contentstream.Normalize(body)
		if norm == "" {
			continue
		}
		if counts[norm] == 0 {
			order = append(order, norm)
			representative[norm] = body
		}
		counts[norm]++
	}

	var retained []string
	for _, norm := range order {
		if counts[norm] > 1 {
			retained = append(retained, norm)
		}
	}

	colors := palette.Colors(len(retained))

	r := &Registry{byKey: make(map[string]int, len(retained))}
	for i, norm := range retained {
		def := &Definition{
			Count:    counts[norm],
			ColorRGB: colors[i],
			IsClosed: isClosed(representative[norm]),
		}
		r.defs = append(r.defs, def)
		r.byKey[norm] = i + 1
	}
	return r
}

// isClosed inspects one representative body for a closing token. Presence
// anywhere in a composite path is taken as at least one closed loop.
func isClosed(body string) bool {
	for _, op := range contentstream.Scan(body) {
		if _, ok := closingTokens[op.Operator]; ok {
			return true
		}
	}
	return false
}

// Lookup resolves a raw fragment body to its shape id. The second return
// is false for unretained (singleton) fragments.
func (r *Registry) Lookup(body string) (int, bool) {
	id, ok := r.byKey[contentstream.Normalize(body)]
	return id, ok
}

// Definition returns the definition for a shape id, or nil for unknown ids.
func (r *Registry) Definition(id int) *Definition {
	if id < 1 || id > len(r.defs) {
		return nil
	}
	return r.defs[id-1]
}

// Len returns the number of retained shape definitions.
func (r *Registry) Len() int { return len(r.defs) }

// DefinitionMap returns the artifact representation keyed by decimal id.
func (r *Registry) DefinitionMap() map[string]*Definition {
	out := make(map[string]*Definition, len(r.defs))
	for i, def := range r.defs {
		out[strconv.Itoa(i+1)] = def
	}
	return out
}
