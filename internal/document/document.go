// Package document abstracts the paginated input the pipeline reads:
// per-page content streams, crop box and rotation. The concrete reader is
// backed by pdfcpu; tests substitute in-memory documents.
package document

import (
	"strings"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// Page is one page of the input document.
type Page struct {
	// Number is the 1-based page number.
	Number int
	// Streams holds the page's raw content streams in document order. A
	// page may have zero streams.
	Streams [][]byte
	// CropBox is the visible rectangle in page-space units. MediaBox is
	// the full page; CropBox falls back to it when absent.
	CropBox  geom.Rect
	MediaBox geom.Rect
	// Rotation is the page rotation in degrees (0, 90, 180, 270).
	Rotation int
}

// Content returns the page's decoded content streams concatenated in
// document order.
func (p *Page) Content() string {
	var b strings.Builder
	for i, s := range p.Streams {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(DecodeStream(s))
	}
	return b.String()
}

// Document is an abstract paginated input.
type Document interface {
	// Source identifies the document, typically a file path.
	Source() string
	// PageCount returns the number of pages.
	PageCount() int
	// Page loads the 1-based page n.
	Page(n int) (*Page, error)
}

// DecodeStream maps raw stream bytes to text one byte per rune, the
// Latin-1 way. The mapping is total and lossy on purpose: content streams
// may carry stray binary bytes and a decode must never fail an occurrence,
// let alone a batch.
func DecodeStream(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
