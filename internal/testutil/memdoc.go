package testutil

import (
	"fmt"

	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// MemDocument is an in-memory document.Document for tests. Pages are
// returned in slice order as 1-based page numbers.
type MemDocument struct {
	Name  string
	Pages []*document.Page

	// FailPages marks 1-based page numbers whose load should fail.
	FailPages map[int]bool
}

// NewMemDocument builds a document from raw per-page content streams with a
// default 612x792 crop box.
func NewMemDocument(name string, contents ...string) *MemDocument {
	d := &MemDocument{Name: name}
	for i, c := range contents {
		d.Pages = append(d.Pages, &document.Page{
			Number:   i + 1,
			Streams:  [][]byte{[]byte(c)},
			CropBox:  geom.NewRect(0, 0, 612, 792),
			MediaBox: geom.NewRect(0, 0, 612, 792),
		})
	}
	return d
}

func (d *MemDocument) Source() string { return d.Name }

func (d *MemDocument) PageCount() int { return len(d.Pages) }

func (d *MemDocument) Page(n int) (*document.Page, error) {
	if n < 1 || n > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, len(d.Pages))
	}
	if d.FailPages[n] {
		return nil, fmt.Errorf("page %d unavailable", n)
	}
	return d.Pages[n-1], nil
}
