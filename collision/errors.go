package collision

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownCategory is returned for a category outside of Clusters, Nodes and Interactive.
	ErrUnknownCategory = errors.New("unknown collision category")
	// ErrUnknownPreset is returned when a mask preset name is not recognized.
	ErrUnknownPreset = errors.New("unknown layer preset")
	// ErrIDConflict is returned when an id is registered while another category owns it.
	ErrIDConflict = errors.New("id already registered in another category")
	// ErrInvalidMinBoxSize is returned when the registry's minimum box size is not positive.
	ErrInvalidMinBoxSize = errors.New("minimum box size must be positive")
)

func newUnknownCategoryError(c Category) error {
	return errors.Wrapf(ErrUnknownCategory, "%d", uint8(c))
}

func newIDConflictError(id string, owner, requested Category) error {
	return errors.Wrapf(ErrIDConflict, "id %q is owned by %s, cannot register in %s", id, owner, requested)
}

func newInvalidBoxError(id string, err error) error {
	return errors.Wrapf(err, "box %q", id)
}
