package collision

import (
	"github.com/golang/geo/r3"

	"github.com/galaxyfield/aimcore/spatialmath"
)

// Box is an axis aligned collision volume owned by one entity.
type Box struct {
	// ID is the owning entity's id. The registry sets it from the collection key.
	ID     string
	Bounds spatialmath.AABB
	// Layer is the collision layer of this box. Zero means the layer of its category.
	Layer Layer
	Name  string
	// Payload is opaque to the engine, e.g. the node or cluster record.
	Payload any
}

// NewBox returns a box with the given bounds centered on center.
func NewBox(center, size r3.Vector, layer Layer) (Box, error) {
	bounds, err := spatialmath.NewAABBFromCenter(center, size)
	if err != nil {
		return Box{}, err
	}
	return Box{Bounds: bounds, Layer: layer}, nil
}

// Center returns the center of the box bounds.
func (b Box) Center() r3.Vector {
	return b.Bounds.Center()
}

// Size returns the full extents of the box bounds.
func (b Box) Size() r3.Vector {
	return b.Bounds.Size()
}

// sameGeometry compares everything except the payload, which may not be comparable.
func (b *Box) sameGeometry(other *Box) bool {
	return b.Bounds == other.Bounds && b.Layer == other.Layer && b.Name == other.Name
}
