package collision

import (
	"fmt"
	"math/bits"
	"strings"
)

// Layer is a single collision layer bit.
type Layer uint32

// Mask is a set of enabled collision layers.
type Mask uint32

// Known layers and the none/all sentinels.
const (
	LayerNone        Layer = 0
	LayerDefault     Layer = 1 << 0
	LayerClusters    Layer = 1 << 1
	LayerNodes       Layer = 1 << 2
	LayerInteractive Layer = 1 << 3
	LayerAll         Layer = 0xFFFFFFFF
)

var layerNames = []struct {
	layer Layer
	name  string
}{
	{LayerDefault, "default"},
	{LayerClusters, "clusters"},
	{LayerNodes, "nodes"},
	{LayerInteractive, "interactive"},
}

// Has reports whether any bit of l is enabled in m.
func (m Mask) Has(l Layer) bool {
	return uint32(m)&uint32(l) != 0
}

// With returns m with l enabled.
func (m Mask) With(l Layer) Mask {
	return m | Mask(l)
}

// Without returns m with l disabled.
func (m Mask) Without(l Layer) Mask {
	return m &^ Mask(l)
}

// Count returns the number of enabled layer bits.
func (m Mask) Count() int {
	return bits.OnesCount32(uint32(m))
}

func (m Mask) String() string {
	switch Layer(m) {
	case LayerNone:
		return "none"
	case LayerAll:
		return "all"
	}
	var names []string
	rest := m
	for _, ln := range layerNames {
		if m.Has(ln.layer) {
			names = append(names, ln.name)
			rest = rest.Without(ln.layer)
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}
