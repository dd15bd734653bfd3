package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// CanonicalForward is the direction a camera with no rotation looks along.
var CanonicalForward = r3.Vector{X: 0, Y: 0, Z: -1}

// RotateVector rotates v by the orientation o.
func RotateVector(o Orientation, v r3.Vector) r3.Vector {
	q := Normalize(o.Quaternion())
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Forward returns the unit vector a camera with orientation o looks along.
func Forward(o Orientation) r3.Vector {
	return RotateVector(o, CanonicalForward).Normalize()
}
