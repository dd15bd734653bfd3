// Package spatialmath defines the geometry used by the engine: points are r3.Vectors,
// orientations are unit quaternions, and collision volumes are axis aligned boxes.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a camera or other rigid object in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
}

// Quaternion is an Orientation backed directly by a quaternion.
type Quaternion quat.Number

// NewQuaternion returns the orientation with real part w and imaginary parts x, y, z.
func NewQuaternion(w, x, y, z float64) *Quaternion {
	return &Quaternion{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &Quaternion{Real: 1}
}

// Quaternion returns the normalized quaternion. A zero quaternion is treated as no rotation.
func (q *Quaternion) Quaternion() quat.Number {
	return Normalize(quat.Number(*q))
}

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D
// Euclidean space. Rotations are applied yaw (Z), then pitch (Y), then roll (X).
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	cy := math.Cos(ea.Yaw * 0.5)
	sy := math.Sin(ea.Yaw * 0.5)
	cp := math.Cos(ea.Pitch * 0.5)
	sp := math.Sin(ea.Pitch * 0.5)
	cr := math.Cos(ea.Roll * 0.5)
	sr := math.Sin(ea.Roll * 0.5)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// Normalize scales q to unit length. The zero quaternion becomes the identity.
func Normalize(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 || math.IsNaN(norm) {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}

// QuaternionAlmostEqual is an equality test for two quaternions. q and -q describe the same
// rotation and compare equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol && math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol && math.Abs(a.Kmag-b.Kmag) < tol
	if same {
		return true
	}
	return math.Abs(a.Real+b.Real) < tol && math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol && math.Abs(a.Kmag+b.Kmag) < tol
}

// OrientationAlmostEqual will return a bool describing whether 2 orientations are approximately
// the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}
