package scene

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/galaxyfield/aimcore/collision"
	"github.com/galaxyfield/aimcore/config"
	"github.com/galaxyfield/aimcore/spatialmath"
)

// Sizes are the box dimensions used when the graph does not carry explicit geometry.
type Sizes struct {
	NodeBoxSize        float64
	ClusterPadding     float64
	InteractiveBoxSize float64
}

// SizesFromConfig picks the box dimensions out of conf.
func SizesFromConfig(conf *config.Config) Sizes {
	return Sizes{
		NodeBoxSize:        conf.NodeBoxSize,
		ClusterPadding:     conf.ClusterPadding,
		InteractiveBoxSize: conf.InteractiveBoxSize,
	}
}

// Scene builds box collections out of a Graph. It is immutable once built and supplies the node
// boxes of whichever cluster the engine activates.
type Scene struct {
	graph   *Graph
	sizes   Sizes
	members map[string][]Node
	pool    *spatialmath.Pool
}

// New returns a scene over g.
func New(g *Graph, sizes Sizes) (*Scene, error) {
	if g == nil {
		return nil, errors.New("nil graph")
	}
	if sizes.NodeBoxSize <= 0 || sizes.InteractiveBoxSize <= 0 {
		return nil, errors.Errorf("box sizes must be positive: node %v, interactive %v",
			sizes.NodeBoxSize, sizes.InteractiveBoxSize)
	}
	if sizes.ClusterPadding < 0 {
		return nil, errors.Errorf("cluster padding must not be negative: got %v", sizes.ClusterPadding)
	}
	return &Scene{
		graph:   g,
		sizes:   sizes,
		members: lo.GroupBy(g.Nodes, func(n Node) string { return n.Cluster }),
		pool:    spatialmath.NewPool(spatialmath.DefaultPoolSize),
	}, nil
}

// Graph returns the underlying graph.
func (s *Scene) Graph() *Graph {
	return s.graph
}

// Members returns the nodes of a cluster.
func (s *Scene) Members(clusterID string) []Node {
	return s.members[clusterID]
}

func (s *Scene) cube(size float64) r3.Vector {
	return r3.Vector{X: size, Y: size, Z: size}
}

// ClusterBoxes returns one box per cluster. A cluster with explicit center and size uses them;
// otherwise its box is the union of its members' node boxes grown by the cluster padding.
// Clusters with neither geometry nor members are left out. It shares the scene's scratch pool and
// is not safe for concurrent use.
func (s *Scene) ClusterBoxes() (map[string]collision.Box, error) {
	out := make(map[string]collision.Box, len(s.graph.Clusters))
	for i := range s.graph.Clusters {
		c := &s.graph.Clusters[i]
		if c.Center != nil && c.Size != nil {
			box, err := collision.NewBox(*c.Center, *c.Size, collision.LayerClusters)
			if err != nil {
				return nil, errors.Wrapf(err, "cluster %q", c.ID)
			}
			box.Name, box.Payload = c.Name, c
			out[c.ID] = box
			continue
		}

		members := s.members[c.ID]
		if len(members) == 0 {
			continue
		}
		bounds := s.pool.Box3()
		half := s.cube(s.sizes.NodeBoxSize / 2)
		for _, n := range members {
			bounds.ExpandByPoint(n.Position.Sub(half))
			bounds.ExpandByPoint(n.Position.Add(half))
		}
		out[c.ID] = collision.Box{
			Bounds:  bounds.Expanded(s.sizes.ClusterPadding),
			Layer:   collision.LayerClusters,
			Name:    c.Name,
			Payload: c,
		}
	}
	return out, nil
}

// NodeBoxes returns the node boxes of one cluster, keyed by node id. An unknown or empty cluster
// id yields an empty map.
func (s *Scene) NodeBoxes(clusterID string) map[string]collision.Box {
	members := s.members[clusterID]
	out := make(map[string]collision.Box, len(members))
	for i := range members {
		n := &members[i]
		box, err := collision.NewBox(n.Position, s.cube(s.sizes.NodeBoxSize), collision.LayerNodes)
		if err != nil {
			// sizes are validated positive in New
			continue
		}
		box.Name, box.Payload = n.Name, n
		out[n.ID] = box
	}
	return out
}

// InteractiveBoxes returns one box per hotspot.
func (s *Scene) InteractiveBoxes() map[string]collision.Box {
	out := make(map[string]collision.Box, len(s.graph.Interactive))
	for i := range s.graph.Interactive {
		h := &s.graph.Interactive[i]
		size := h.Size
		if size == 0 {
			size = s.sizes.InteractiveBoxSize
		}
		box, err := collision.NewBox(h.Position, s.cube(size), collision.LayerInteractive)
		if err != nil {
			continue
		}
		box.Name, box.Payload = h.Name, h
		out[h.ID] = box
	}
	return out
}

// Register replaces the cluster and interactive collections of registry with this scene's boxes.
// The node collection is left to the engine, which fills it with the active cluster's nodes.
func (s *Scene) Register(registry *collision.Registry) error {
	clusters, err := s.ClusterBoxes()
	if err != nil {
		return err
	}
	if _, err := registry.RegisterCollection(collision.Clusters, clusters); err != nil {
		return errors.Wrap(err, "cannot register clusters")
	}
	if _, err := registry.RegisterCollection(collision.Interactive, s.InteractiveBoxes()); err != nil {
		return errors.Wrap(err, "cannot register interactive elements")
	}
	return nil
}

// ErrPayloadMismatch is returned when a box was not built from the requested kind of record.
var ErrPayloadMismatch = errors.New("box payload mismatch")

func payloadOf[T any](b collision.Box) (T, error) {
	p, ok := b.Payload.(T)
	if !ok {
		return p, errors.Wrapf(ErrPayloadMismatch, "box %q carries %T, not %T", b.ID, b.Payload, p)
	}
	return p, nil
}

// ClusterOf returns the cluster record a cluster box was built from.
func ClusterOf(b collision.Box) (*Cluster, error) {
	return payloadOf[*Cluster](b)
}

// NodeOf returns the node record a node box was built from.
func NodeOf(b collision.Box) (*Node, error) {
	return payloadOf[*Node](b)
}

// HotspotOf returns the hotspot record an interactive box was built from.
func HotspotOf(b collision.Box) (*Hotspot, error) {
	return payloadOf[*Hotspot](b)
}
