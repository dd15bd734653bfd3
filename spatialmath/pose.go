package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose represents a position and orientation in 3D space.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose returns a pose at point with the given orientation. A nil orientation means no rotation.
func NewPose(point r3.Vector, orientation Orientation) Pose {
	if orientation == nil {
		orientation = NewZeroOrientation()
	}
	return &pose{point: point, orientation: orientation}
}

// NewPoseFromPoint returns a pose at point with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return NewPose(point, nil)
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return NewPose(r3.Vector{}, nil)
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	return p.orientation
}

func (p *pose) String() string {
	q := p.orientation.Quaternion()
	return fmt.Sprintf("{X:%.2f Y:%.2f Z:%.2f Q:(%.3f %.3f %.3f %.3f)}",
		p.point.X, p.point.Y, p.point.Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}
