// Package pipeline wires the content-stream segmentation, the shape
// registry and the instance store into the two-pass analysis over a whole
// document, and owns the persisted JSON artifact.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wan-andrea/recover-pdfCAD/internal/common"
	"github.com/wan-andrea/recover-pdfCAD/internal/contentstream"
	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// Options configures an analysis pipeline.
type Options struct {
	// Palette supplies definition colors; nil selects the default
	// shuffled-hue palette.
	Palette shapes.Palette
	// Progress receives per-page progress; nil disables reporting.
	Progress ProgressCallback
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Pipeline runs the two-pass shape analysis.
type Pipeline struct {
	palette  shapes.Palette
	progress ProgressCallback
	log      *slog.Logger
}

// New creates a Pipeline from options.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		palette:  opts.Palette,
		progress: opts.Progress,
		log:      opts.Logger,
	}
	if p.palette == nil {
		p.palette = shapes.NewDistinctPalette()
	}
	if p.progress == nil {
		p.progress = NoOpProgressCallback{}
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	return p
}

// Stats tallies the per-occurrence outcomes of one run. Recoverable
// conditions are counted, never raised.
type Stats struct {
	Pages             int `json:"pages"`
	FailedPages       int `json:"failed_pages"`
	Fragments         int `json:"fragments"`
	UniqueShapes      int `json:"unique_shapes"`
	Instances         int `json:"instances"`
	SkippedNoGeometry int `json:"skipped_no_geometry"`
}

// pageFragments keeps a page's fragments between the two passes. The slice
// is treated as immutable once collected: both passes are pure functions
// over it.
type pageFragments struct {
	page  int
	frags []contentstream.Fragment
}

// Analyze runs both passes over the document and assembles the artifact.
//
// Pass 1 counts normalized fragment bodies over the entire corpus and must
// complete before any identity is assigned, because retention depends on
// corpus-wide counts. Pass 2 walks the same fragment stream again, resolves
// ids against the now read-only registry and records instances. Failures on
// individual occurrences degrade to skips; only an unreadable document is
// fatal.
func (p *Pipeline) Analyze(doc document.Document) (*shapes.Artifact, *Stats, error) {
	timer := common.NewStageTimer("analyze")
	stats := &Stats{}

	collected, err := p.collectFragments(doc, stats)
	if err != nil {
		return nil, nil, err
	}

	// Pass 1: corpus-wide counting and identity assignment.
	var bodies []string
	for _, pf := range collected {
		for _, f := range pf.frags {
			bodies = append(bodies, f.Body)
		}
	}
	registry := shapes.BuildRegistry(bodies, p.palette)
	stats.Fragments = len(bodies)
	stats.UniqueShapes = registry.Len()
	p.log.Info("pass 1 complete",
		"fragments", stats.Fragments,
		"unique_shapes", stats.UniqueShapes)

	// Pass 2: instance extraction against the read-only registry.
	store := shapes.NewInstanceStore()
	p.progress.OnStart(len(collected))
	for i, pf := range collected {
		for _, f := range pf.frags {
			id, ok := registry.Lookup(f.Body)
			if !ok {
				continue // singleton
			}
			bbox, ok := shapes.ExtractBBox(f.Body)
			if !ok {
				stats.SkippedNoGeometry++
				occurrencesSkipped.WithLabelValues(skipReasonNoGeometry).Inc()
				p.log.Debug("skipping occurrence without geometry",
					"page", pf.page, "shape_id", id)
				continue
			}
			store.Add(pf.page, id, bbox, f.Matrix, f.Body)
			instancesExtracted.Inc()
		}
		p.progress.OnProgress(i+1, len(collected))
	}
	p.progress.OnComplete()

	stats.Instances = store.Len()

	instances := store.Instances()
	if instances == nil {
		instances = []*shapes.Instance{}
	}
	artifact := &shapes.Artifact{
		Metadata: shapes.Metadata{
			SourceFile:     doc.Source(),
			TotalInstances: store.Len(),
			UniqueShapes:   registry.Len(),
		},
		Definitions: registry.DefinitionMap(),
		Instances:   instances,
	}

	analyzeDuration.Observe(timer.Stop().Seconds())
	p.log.Info("analysis complete",
		"pages", stats.Pages,
		"instances", stats.Instances,
		"skipped_no_geometry", stats.SkippedNoGeometry,
		"duration", timer.Elapsed().Round(time.Millisecond))

	return artifact, stats, nil
}

// collectFragments segments every page once; the result feeds both passes.
func (p *Pipeline) collectFragments(doc document.Document, stats *Stats) ([]pageFragments, error) {
	total := doc.PageCount()
	if total == 0 {
		return nil, fmt.Errorf("document %s has no pages", doc.Source())
	}

	collected := make([]pageFragments, 0, total)
	for n := 1; n <= total; n++ {
		page, err := doc.Page(n)
		if err != nil {
			// A single unreadable page degrades to a skip.
			stats.FailedPages++
			occurrencesSkipped.WithLabelValues(skipReasonPageError).Inc()
			p.log.Warn("skipping unreadable page", "page", n, "error", err)
			continue
		}
		stats.Pages++
		frags := contentstream.Segment(page.Content())
		collected = append(collected, pageFragments{page: n, frags: frags})
		pagesProcessed.Inc()
	}
	return collected, nil
}
