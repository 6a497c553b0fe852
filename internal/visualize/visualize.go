// Package visualize builds content-stream overlay commands that outline
// shape instances and shape groups on top of the original drawing. The
// overlays are plain operator text; splicing them into a PDF page is left
// to the container library boundary.
package visualize

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wan-andrea/recover-pdfCAD/internal/geom"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// Groups is the clustering input: instance-id clusters per page.
type Groups struct {
	GroupInstances []Group `json:"group_instances"`
}

// Group is one cluster of related instances on a page.
type Group struct {
	Page    int   `json:"page"`
	Members []int `json:"members"`
}

// LoadGroups reads a groups JSON file.
func LoadGroups(path string) (*Groups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups %s: %w", path, err)
	}
	var g Groups
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("groups %s is not valid JSON: %w", path, err)
	}
	return &g, nil
}

// InstanceIndex maps instance ids to instances for member resolution.
func InstanceIndex(artifact *shapes.Artifact) map[int]*shapes.Instance {
	idx := make(map[int]*shapes.Instance, len(artifact.Instances))
	for _, in := range artifact.Instances {
		idx[in.InstanceID] = in
	}
	return idx
}

// GroupBBox returns the page-space bounds of a group: the union of every
// member's local box mapped through its transform, all four corners each.
// The second return is false when no member resolves.
func GroupBBox(members []int, index map[int]*shapes.Instance) (geom.Rect, bool) {
	found := false
	var out geom.Rect
	for _, id := range members {
		in, ok := index[id]
		if !ok {
			continue
		}
		box := geom.TransformRect(in.LocalBBox(), in.Transform)
		if !found {
			out = box
			found = true
			continue
		}
		out = out.Union(box)
	}
	return out, found
}

// Stroke colors for instance boxes: red for annotation markers, blue for
// graphic blocks.
var (
	markerColor  = [3]float64{1, 0, 0}
	graphicColor = [3]float64{0, 0, 1}
)

// BoxCommand renders one stroked rectangle: save state, stroke color, line
// width, rectangle, stroke, restore.
func BoxCommand(box geom.Rect, rgb [3]float64, width float64) string {
	return fmt.Sprintf("q %.2f %.2f %.2f RG %g w %.2f %.2f %.2f %.2f re S Q",
		rgb[0], rgb[1], rgb[2], width,
		box.MinX, box.MinY, box.Width(), box.Height())
}

// GroupOverlays builds the per-page overlay streams for all groups. Groups
// whose bounds collapse below one page unit are dropped. Colors come from
// the palette, one per group in input order.
func GroupOverlays(groups *Groups, artifact *shapes.Artifact, palette shapes.Palette) map[int]string {
	index := InstanceIndex(artifact)
	colors := palette.Colors(len(groups.GroupInstances))

	cmds := make(map[int][]string)
	for i, g := range groups.GroupInstances {
		box, ok := GroupBBox(g.Members, index)
		if !ok || box.Width() < 1 || box.Height() < 1 {
			continue
		}
		cmds[g.Page] = append(cmds[g.Page], BoxCommand(box, colors[i%len(colors)], 5))
	}

	out := make(map[int]string, len(cmds))
	for page, list := range cmds {
		out[page] = strings.Join(list, "\n")
	}
	return out
}

// MarkerOverlays builds the per-page overlay streams outlining every
// instance: red boxes for matched markers, blue for everything else. Each
// box is the instance's transformed bounds with a half-unit margin.
func MarkerOverlays(artifact *shapes.Artifact) map[int]string {
	cmds := make(map[int][]string)
	for _, in := range artifact.Instances {
		box := geom.TransformRect(in.LocalBBox().Pad(0.5), in.Transform)
		rgb := graphicColor
		if in.IsMarker != nil && *in.IsMarker {
			rgb = markerColor
		}
		cmds[in.Page] = append(cmds[in.Page], BoxCommand(box, rgb, 1.5))
	}

	out := make(map[int]string, len(cmds))
	for page, list := range cmds {
		out[page] = strings.Join(list, " ")
	}
	return out
}

// NewGroupPalette returns the palette used for group colors.
func NewGroupPalette() shapes.Palette {
	p := shapes.NewDistinctPalette()
	p.Saturation = 0.9
	p.Value = 0.8
	return p
}
