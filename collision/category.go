// Package collision holds the engine's bounding volume registry, the collision layer mask and the
// containment query that resolves which registered box the aim point is inside.
package collision

import (
	"github.com/pkg/errors"
)

// Category names one of the collections boxes are registered into.
type Category uint8

const (
	// Clusters are the groups of related nodes, explorable as a unit.
	Clusters Category = iota
	// Nodes are the members of the active cluster.
	Nodes
	// Interactive are scene level hotspots outside of cluster exploration.
	Interactive

	// NumCategories is the number of valid categories.
	NumCategories = 3
)

// Categories lists every category in registration order.
var Categories = [NumCategories]Category{Clusters, Nodes, Interactive}

var categoryNames = [NumCategories]string{"clusters", "nodes", "interactiveElements"}

func (c Category) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c < NumCategories
}

// Layer returns the collision layer boxes of this category live on by default.
func (c Category) Layer() Layer {
	switch c {
	case Clusters:
		return LayerClusters
	case Nodes:
		return LayerNodes
	case Interactive:
		return LayerInteractive
	}
	return LayerNone
}

// CategoryFromString parses a category name as returned by String.
func CategoryFromString(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownCategory, "%q", name)
}
