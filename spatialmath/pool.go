package spatialmath

import "github.com/golang/geo/r3"

// DefaultPoolSize is the number of slots a Pool gets when none is specified.
const DefaultPoolSize = 8

// Pool hands out scratch vectors and boxes round-robin from fixed arrays, so the per-frame query
// path does not allocate. A returned value stays valid only until its slot comes around again;
// callers must not keep it across frames.
type Pool struct {
	vecs    []r3.Vector
	boxes   []AABB
	nextVec int
	nextBox int
}

// NewPool returns a pool with size vector slots and size box slots.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{
		vecs:  make([]r3.Vector, size),
		boxes: make([]AABB, size),
	}
}

// Vec3 returns the next zeroed scratch vector.
func (p *Pool) Vec3() *r3.Vector {
	v := &p.vecs[p.nextVec]
	p.nextVec = (p.nextVec + 1) % len(p.vecs)
	*v = r3.Vector{}
	return v
}

// Box3 returns the next scratch box, reset to empty.
func (p *Pool) Box3() *AABB {
	b := &p.boxes[p.nextBox]
	p.nextBox = (p.nextBox + 1) % len(p.boxes)
	b.Reset()
	return b
}

// Size returns the number of slots per kind.
func (p *Pool) Size() int {
	return len(p.vecs)
}
