package pipeline

import (
	"sync"

	"github.com/wan-andrea/recover-pdfCAD/internal/contentstream"
	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// BaseTransformCache memoizes the per-page base transform. Pages are scanned
// at most once; concurrent callers for the same page may both compute, but
// the result is deterministic so either write wins harmlessly.
type BaseTransformCache struct {
	doc document.Document

	mu    sync.Mutex
	byNum map[int]geom.Matrix
}

// NewBaseTransformCache creates a cache over the document's pages.
func NewBaseTransformCache(doc document.Document) *BaseTransformCache {
	return &BaseTransformCache{
		doc:   doc,
		byNum: make(map[int]geom.Matrix),
	}
}

// Get returns the base transform of the 1-based page n, computing and
// memoizing it on first use. An unreadable page yields the identity.
func (c *BaseTransformCache) Get(n int) geom.Matrix {
	c.mu.Lock()
	if m, ok := c.byNum[n]; ok {
		c.mu.Unlock()
		return m
	}
	c.mu.Unlock()

	m := geom.Identity()
	if page, err := c.doc.Page(n); err == nil {
		m = contentstream.BaseTransform(page.Content())
	}

	c.mu.Lock()
	c.byNum[n] = m
	c.mu.Unlock()
	return m
}
