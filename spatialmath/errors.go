package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrBadBoxDimensions is the cause of every error returned for invalid box extents.
var ErrBadBoxDimensions = errors.New("invalid box dimensions")

func newInvertedBoundsError(min, max r3.Vector) error {
	return errors.Wrapf(ErrBadBoxDimensions, "min %v exceeds max %v", min, max)
}

func newNegativeSizeError(size r3.Vector) error {
	return errors.Wrapf(ErrBadBoxDimensions, "negative size %v", size)
}

func newNonFiniteError(v r3.Vector) error {
	return errors.Wrapf(ErrBadBoxDimensions, "non-finite coordinate in %v", v)
}
