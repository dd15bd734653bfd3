package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/galaxyfield/aimcore/utils"
)

// AABB is an axis aligned bounding box defined by its minimum and maximum corners.
type AABB struct {
	Min r3.Vector `json:"min"`
	Max r3.Vector `json:"max"`
}

// NewAABB returns the box spanning min to max. It fails if min exceeds max on any axis.
func NewAABB(min, max r3.Vector) (AABB, error) {
	if !finite(min) {
		return AABB{}, newNonFiniteError(min)
	}
	if !finite(max) {
		return AABB{}, newNonFiniteError(max)
	}
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return AABB{}, newInvertedBoundsError(min, max)
	}
	return AABB{Min: min, Max: max}, nil
}

// NewAABBFromCenter returns the box of the given full size centered on center. Zero sizes are
// allowed, negative ones are not.
func NewAABBFromCenter(center, size r3.Vector) (AABB, error) {
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return AABB{}, newNegativeSizeError(size)
	}
	half := size.Mul(0.5)
	return NewAABB(center.Sub(half), center.Add(half))
}

// EmptyAABB returns a box containing nothing, ready to be grown with ExpandByPoint or Union.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// Reset empties the box in place.
func (b *AABB) Reset() {
	*b = EmptyAABB()
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the full extent of the box along each axis.
func (b AABB) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

// ContainsPoint reports whether pt lies within the box. Bounds are inclusive.
func (b AABB) ContainsPoint(pt r3.Vector) bool {
	return pt.X >= b.Min.X && pt.X <= b.Max.X &&
		pt.Y >= b.Min.Y && pt.Y <= b.Max.Y &&
		pt.Z >= b.Min.Z && pt.Z <= b.Max.Z
}

// ExpandByPoint grows the box to include pt.
func (b *AABB) ExpandByPoint(pt r3.Vector) {
	b.Min = r3.Vector{X: math.Min(b.Min.X, pt.X), Y: math.Min(b.Min.Y, pt.Y), Z: math.Min(b.Min.Z, pt.Z)}
	b.Max = r3.Vector{X: math.Max(b.Max.X, pt.X), Y: math.Max(b.Max.Y, pt.Y), Z: math.Max(b.Max.Z, pt.Z)}
}

// Union grows the box to include other. Empty boxes are ignored.
func (b *AABB) Union(other AABB) {
	if other.IsEmpty() {
		return
	}
	b.ExpandByPoint(other.Min)
	b.ExpandByPoint(other.Max)
}

// Expanded returns the box grown by pad on every side.
func (b AABB) Expanded(pad float64) AABB {
	delta := r3.Vector{X: pad, Y: pad, Z: pad}
	return AABB{Min: b.Min.Sub(delta), Max: b.Max.Add(delta)}
}

// WithMinSize returns the box with every axis shorter than floor widened to floor around the
// original center. Other axes are left untouched.
func (b AABB) WithMinSize(floor float64) AABB {
	center := b.Center()
	size := b.Size()
	out := b
	if size.X < floor {
		out.Min.X, out.Max.X = widen(center.X, floor)
	}
	if size.Y < floor {
		out.Min.Y, out.Max.Y = widen(center.Y, floor)
	}
	if size.Z < floor {
		out.Min.Z, out.Max.Z = widen(center.Z, floor)
	}
	return out
}

// widen returns an extent of at least floor around c. Max is nudged up past any rounding loss
// so that max-min never comes out under floor.
func widen(c, floor float64) (float64, float64) {
	lo := c - floor/2
	hi := lo + floor
	for hi-lo < floor {
		hi = math.Nextafter(hi, math.Inf(1))
	}
	return lo, hi
}

// IsDegenerate reports whether any axis is shorter than floor.
func (b AABB) IsDegenerate(floor float64) bool {
	size := b.Size()
	return size.X < floor || size.Y < floor || size.Z < floor
}

// AlmostEqual compares both corners within epsilon.
func (b AABB) AlmostEqual(other AABB, epsilon float64) bool {
	return vecAlmostEqual(b.Min, other.Min, epsilon) && vecAlmostEqual(b.Max, other.Max, epsilon)
}

// String returns a human readable string that represents the box.
func (b AABB) String() string {
	c, s := b.Center(), b.Size()
	return fmt.Sprintf("Type: AABB | Center: X:%.2f, Y:%.2f, Z:%.2f | Dims: X:%.2f, Y:%.2f, Z:%.2f",
		c.X, c.Y, c.Z, s.X, s.Y, s.Z)
}

func vecAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		utils.Float64AlmostEqual(a.Z, b.Z, epsilon)
}

func finite(v r3.Vector) bool {
	return utils.IsFinite(v.X) && utils.IsFinite(v.Y) && utils.IsFinite(v.Z)
}
