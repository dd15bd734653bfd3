// Package scene turns laid out graph data (clusters, their member nodes and interactive hotspots)
// into the box collections the engine queries.
package scene

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Cluster is a named group of nodes. Center and Size are optional; without them the cluster's
// volume is derived from its members.
type Cluster struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Center *r3.Vector `json:"center,omitempty"`
	Size   *r3.Vector `json:"size,omitempty"`
}

// Node is a laid out graph node belonging to one cluster.
type Node struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Cluster  string    `json:"cluster"`
	Position r3.Vector `json:"position"`
}

// Hotspot is a scene level interactive element. A zero Size uses the configured default.
type Hotspot struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Position r3.Vector `json:"position"`
	Size     float64   `json:"size,omitempty"`
}

// Graph is the laid out scene data as exported by the layout tooling.
type Graph struct {
	Clusters    []Cluster `json:"clusters"`
	Nodes       []Node    `json:"nodes"`
	Interactive []Hotspot `json:"interactive"`
}

// Load reads and validates a graph file.
func Load(path string) (*Graph, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read graph file")
	}
	g, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "graph file %q", path)
	}
	return g, nil
}

// Parse decodes and validates graph JSON.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "cannot decode graph")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks that ids are present and unique across the whole graph, that every node names
// an existing cluster, and that explicit cluster sizes are not negative.
func (g *Graph) Validate() error {
	seen := map[string]string{}
	claim := func(kind, id string) error {
		if id == "" {
			return errors.Errorf("%s with empty id", kind)
		}
		if other, ok := seen[id]; ok {
			return errors.Errorf("duplicate id %q (%s and %s)", id, other, kind)
		}
		seen[id] = kind
		return nil
	}

	clusters := map[string]bool{}
	for _, c := range g.Clusters {
		if err := claim("cluster", c.ID); err != nil {
			return err
		}
		if c.Size != nil && (c.Size.X < 0 || c.Size.Y < 0 || c.Size.Z < 0) {
			return errors.Errorf("cluster %q has negative size", c.ID)
		}
		clusters[c.ID] = true
	}
	for _, n := range g.Nodes {
		if err := claim("node", n.ID); err != nil {
			return err
		}
		if !clusters[n.Cluster] {
			return errors.Errorf("node %q references unknown cluster %q", n.ID, n.Cluster)
		}
	}
	for _, h := range g.Interactive {
		if err := claim("hotspot", h.ID); err != nil {
			return err
		}
		if h.Size < 0 {
			return errors.Errorf("hotspot %q has negative size", h.ID)
		}
	}
	return nil
}
