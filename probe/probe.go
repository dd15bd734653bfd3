// Package probe computes the detection point: the spot a fixed distance in front of the camera
// that containment queries test against.
package probe

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/galaxyfield/aimcore/spatialmath"
	"github.com/galaxyfield/aimcore/utils"
)

// ErrInvalidDistance is returned for a detection distance that is not a positive finite number.
var ErrInvalidDistance = errors.New("detection distance must be positive")

// PoseProvider supplies the current camera pose. The second return value is false while no
// camera is attached.
type PoseProvider interface {
	CameraPose() (spatialmath.Pose, bool)
}

// PoseProviderFunc adapts a function to a PoseProvider.
type PoseProviderFunc func() (spatialmath.Pose, bool)

// CameraPose calls f.
func (f PoseProviderFunc) CameraPose() (spatialmath.Pose, bool) {
	return f()
}

// Calculator owns the single detection point and rewrites it on every update.
type Calculator struct {
	point r3.Vector
	valid bool
	pool  *spatialmath.Pool
}

// NewCalculator returns a calculator drawing scratch vectors from pool. A nil pool gets a private
// one.
func NewCalculator(pool *spatialmath.Pool) *Calculator {
	if pool == nil {
		pool = spatialmath.NewPool(0)
	}
	return &Calculator{pool: pool}
}

// Update moves the detection point to position + forward*distance, where forward is the canonical
// forward axis rotated by orientation. An invalid distance leaves the previous point in place.
func (c *Calculator) Update(position r3.Vector, orientation spatialmath.Orientation, distance float64) (r3.Vector, error) {
	if err := ValidateDistance(distance); err != nil {
		return c.point, err
	}
	if orientation == nil {
		orientation = spatialmath.NewZeroOrientation()
	}
	forward := c.pool.Vec3()
	*forward = spatialmath.Forward(orientation)
	c.point = position.Add(forward.Mul(distance))
	c.valid = true
	return c.point, nil
}

// UpdateFromPose is Update with the position and orientation of pose.
func (c *Calculator) UpdateFromPose(pose spatialmath.Pose, distance float64) (r3.Vector, error) {
	return c.Update(pose.Point(), pose.Orientation(), distance)
}

// Point returns the last computed detection point.
func (c *Calculator) Point() r3.Vector {
	return c.point
}

// Valid reports whether Point holds a computed point.
func (c *Calculator) Valid() bool {
	return c.valid
}

// Clear marks the point as unavailable, e.g. after the camera detached.
func (c *Calculator) Clear() {
	c.valid = false
}

// ValidateDistance checks a detection distance.
func ValidateDistance(distance float64) error {
	if !utils.IsFinite(distance) || distance <= 0 {
		return errors.Wrapf(ErrInvalidDistance, "got %v", distance)
	}
	return nil
}
