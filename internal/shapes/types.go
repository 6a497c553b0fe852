// Package shapes holds the shape registry built by the corpus-wide counting
// pass, the per-occurrence instance store, and the JSON artifact that later
// pipeline stages consume and extend.
package shapes

import (
	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
)

// Definition is one deduplicated shape prototype: an equivalence class of a
// drawing fragment that repeats across the document. Created once during
// Pass 1; immutable afterwards except for SemanticLabel, which the marker
// stage fills in.
type Definition struct {
	SemanticLabel string     `json:"semantic_label"`
	Count         int        `json:"count"`
	ColorRGB      [3]float64 `json:"color_rgb"`
	IsClosed      bool       `json:"is_closed"`

	// Appended by the marker stage.
	IsMarker *bool `json:"is_predicted_annotation_marker,omitempty"`
}

// Instance is one concrete placement of a shape definition on a page.
// The geometry fields are fixed at extraction time; later stages only
// append the optional fields.
type Instance struct {
	InstanceID int         `json:"instance_id"`
	Page       int         `json:"page"`
	ShapeID    int         `json:"shape_id"`
	BBoxLocal  [4]float64  `json:"bbox_local"`
	Transform  geom.Matrix `json:"transform_matrix"`
	Snippet    string      `json:"snippet_raw"`

	// Appended by the marker stage.
	IsMarker       *bool    `json:"is_predicted_annotation_marker,omitempty"`
	MarkerText     *string  `json:"marker_text_raw,omitempty"`
	MarkerDistance *float64 `json:"marker_distance,omitempty"`

	// Appended by the caption stage.
	Caption        string `json:"caption,omitempty"`
	CaptionHasText *bool  `json:"caption_has_text,omitempty"`
}

// LocalBBox returns the instance's shape-local bounding box as a rectangle.
func (in *Instance) LocalBBox() geom.Rect {
	return geom.Rect{
		MinX: in.BBoxLocal[0],
		MinY: in.BBoxLocal[1],
		MaxX: in.BBoxLocal[2],
		MaxY: in.BBoxLocal[3],
	}
}

// PageBBox returns the instance's bounding box mapped into page space
// through its local transform, via all four corners.
func (in *Instance) PageBBox() geom.Rect {
	return geom.TransformRect(in.LocalBBox(), in.Transform)
}

// Metadata summarizes one analysis run.
type Metadata struct {
	SourceFile     string `json:"source_file"`
	TotalInstances int    `json:"total_instances"`
	UniqueShapes   int    `json:"unique_shapes"`
}

// Artifact is the persisted result of the two-pass analysis and the sole
// contract between pipeline stages. Downstream stages append fields to
// instances and set semantic labels; they never alter the core fields.
type Artifact struct {
	Metadata    Metadata               `json:"metadata"`
	Definitions map[string]*Definition `json:"shape_definitions"`
	Instances   []*Instance            `json:"instances"`
}
