package document

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// File is a Document backed by a PDF on disk, read through pdfcpu.
type File struct {
	path   string
	conf   *model.Configuration
	bounds []model.PageBoundaries
}

// Open validates the PDF and reads its page boundaries. An unreadable
// document is a fatal input error for the whole run.
func Open(path string) (*File, error) {
	conf := model.NewDefaultConfiguration()

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}

	bounds, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read page boundaries of %s: %w", path, err)
	}

	return &File{path: path, conf: conf, bounds: bounds}, nil
}

// Source returns the file path.
func (f *File) Source() string { return f.path }

// PageCount returns the number of pages.
func (f *File) PageCount() int { return len(f.bounds) }

// Page extracts the content stream and geometry of the 1-based page n.
func (f *File) Page(n int) (*Page, error) {
	if n < 1 || n > len(f.bounds) {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, len(f.bounds))
	}

	rs, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen %s: %w", f.path, err)
	}
	defer func() { _ = rs.Close() }()

	page := &Page{Number: n}

	// pdfcpu concatenates the page's content streams for us.
	if ctx, ctxErr := api.ReadValidateAndOptimize(rs, f.conf); ctxErr == nil {
		r, extractErr := pdfcpu.ExtractPageContent(ctx, n)
		if extractErr == nil && r != nil {
			data, readErr := io.ReadAll(r)
			if readErr == nil && len(data) > 0 {
				page.Streams = [][]byte{data}
			}
		}
	}
	// A page without extractable content yields zero fragments later; it
	// is not an error.

	pb := f.bounds[n-1]
	page.Rotation = normalizeRotation(pb.Rot)
	page.MediaBox = rectFromPDF(pb.Media)
	if crop := rectFromPDF(pb.Crop); !crop.IsEmpty() {
		page.CropBox = crop
	} else {
		page.CropBox = page.MediaBox
	}

	return page, nil
}

// rectFromPDF converts a pdfcpu box to a Rect; nil boxes become the empty
// rectangle.
func rectFromPDF(b *model.Box) geom.Rect {
	if b == nil || b.Rect == nil {
		return geom.Rect{}
	}
	return rectFromPDFRect(b.Rect)
}

func rectFromPDFRect(r *types.Rectangle) geom.Rect {
	if r == nil {
		return geom.Rect{}
	}
	return geom.NewRect(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y)
}

// normalizeRotation folds an arbitrary /Rotate value into 0/90/180/270.
func normalizeRotation(rot int) int {
	rot %= 360
	if rot < 0 {
		rot += 360
	}
	return rot
}
