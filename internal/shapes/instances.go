package shapes

import "github.com/wan-andrea/recover-pdfCAD/internal/geom"

// InstanceStore collects every retained occurrence during Pass 2 and owns
// the monotonic instance-id sequence. Keeping the counter here rather than
// in package state keeps Pass 2 composable; if extraction is ever
// parallelized, id issuance stays a single serialized sequence behind this
// store.
type InstanceStore struct {
	next      int
	instances []*Instance
}

// NewInstanceStore returns a store issuing ids from 1.
func NewInstanceStore() *InstanceStore {
	return &InstanceStore{next: 1}
}

// Add records one occurrence and returns it with its assigned id.
func (s *InstanceStore) Add(page, shapeID int, bbox geom.Rect, transform geom.Matrix, snippet string) *Instance {
	in := &Instance{
		InstanceID: s.next,
		Page:       page,
		ShapeID:    shapeID,
		BBoxLocal:  [4]float64{bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY},
		Transform:  transform,
		Snippet:    snippet,
	}
	s.next++
	s.instances = append(s.instances, in)
	return in
}

// Instances returns the occurrences in insertion order.
func (s *InstanceStore) Instances() []*Instance { return s.instances }

// Len returns the number of recorded occurrences.
func (s *InstanceStore) Len() int { return len(s.instances) }
