package collision

import (
	"github.com/golang/geo/r3"
)

// Hit is the result of a containment query.
type Hit struct {
	ID               string
	DistanceToCenter float64
	Payload          any
	Box              Box
}

// QueryEngine answers which registered box contains a point.
type QueryEngine struct {
	registry *Registry
	masks    *MaskManager
}

// NewQueryEngine returns a query engine reading live collections from registry, filtered by the
// layers enabled in masks.
func NewQueryEngine(registry *Registry, masks *MaskManager) *QueryEngine {
	return &QueryEngine{registry: registry, masks: masks}
}

// FindContaining returns the box of category c that contains pt. Bounds are inclusive. When
// several boxes contain pt the one whose center is nearest to pt wins; exact distance ties go to
// the smallest id. If the category's layer is disabled, or no enabled box contains pt, the second
// return value is false.
func (q *QueryEngine) FindContaining(pt r3.Vector, c Category) (Hit, bool) {
	mask := q.masks.Mask()
	if !mask.Has(c.Layer()) {
		return Hit{}, false
	}
	return findNearestContaining(q.registry.Collection(c), mask, pt)
}

// findNearestContaining scans col linearly. Collections are small enough that a spatial index
// would not pay for itself.
func findNearestContaining(col *Collection, mask Mask, pt r3.Vector) (Hit, bool) {
	best := -1
	bestDist2 := 0.0
	for i := range col.boxes {
		b := &col.boxes[i]
		if !mask.Has(b.Layer) || !b.Bounds.ContainsPoint(pt) {
			continue
		}
		d2 := pt.Sub(b.Bounds.Center()).Norm2()
		// strict comparison keeps the earliest (smallest) id on ties
		if best < 0 || d2 < bestDist2 {
			best, bestDist2 = i, d2
		}
	}
	if best < 0 {
		return Hit{}, false
	}
	b := col.boxes[best]
	return Hit{
		ID:               b.ID,
		DistanceToCenter: pt.Distance(b.Bounds.Center()),
		Payload:          b.Payload,
		Box:              b,
	}, true
}
