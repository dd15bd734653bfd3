package scene

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/galaxyfield/aimcore/collision"
	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/spatialmath"
)

const graphJSON = `{
	"clusters": [
		{"id": "c1", "name": "alpha"},
		{"id": "c2", "center": {"x": 20, "y": 0, "z": 0}, "size": {"x": 2, "y": 2, "z": 2}},
		{"id": "c3"}
	],
	"nodes": [
		{"id": "n1", "cluster": "c1", "position": {"x": 0, "y": 0, "z": 0}},
		{"id": "n2", "name": "second", "cluster": "c1", "position": {"x": 4, "y": 0, "z": 0}}
	],
	"interactive": [
		{"id": "h1", "position": {"x": 0, "y": 10, "z": 0}},
		{"id": "h2", "position": {"x": 0, "y": -10, "z": 0}, "size": 1}
	]
}`

var testSizes = Sizes{NodeBoxSize: 2, ClusterPadding: 1.5, InteractiveBoxSize: 3}

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	g, err := Parse([]byte(graphJSON))
	test.That(t, err, test.ShouldBeNil)
	s, err := New(g, testSizes)
	test.That(t, err, test.ShouldBeNil)
	return s
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		errMsg string
	}{
		{"bad json", `{`, "cannot decode graph"},
		{"empty id", `{"clusters": [{"id": ""}]}`, "empty id"},
		{"duplicate", `{"clusters": [{"id": "a"}], "nodes": [{"id": "a", "cluster": "a"}]}`, "duplicate id"},
		{"orphan node", `{"nodes": [{"id": "n", "cluster": "missing"}]}`, "unknown cluster"},
		{"negative hotspot", `{"interactive": [{"id": "h", "size": -1}]}`, "negative size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errMsg)
		})
	}
}

func TestNewRejectsBadSizes(t *testing.T) {
	g, err := Parse([]byte(graphJSON))
	test.That(t, err, test.ShouldBeNil)
	_, err = New(g, Sizes{NodeBoxSize: 0, InteractiveBoxSize: 1})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = New(g, Sizes{NodeBoxSize: 1, InteractiveBoxSize: 1, ClusterPadding: -1})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = New(nil, testSizes)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestClusterBoxes(t *testing.T) {
	s := newTestScene(t)
	boxes, err := s.ClusterBoxes()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(boxes), test.ShouldEqual, 2)

	derived := boxes["c1"]
	expected, err := spatialmath.NewAABB(r3.Vector{X: -2.5, Y: -2.5, Z: -2.5}, r3.Vector{X: 6.5, Y: 2.5, Z: 2.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, derived.Bounds.AlmostEqual(expected, 1e-9), test.ShouldBeTrue)
	test.That(t, derived.Name, test.ShouldEqual, "alpha")
	test.That(t, derived.Layer, test.ShouldEqual, collision.LayerClusters)
	cluster, err := ClusterOf(derived)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cluster.ID, test.ShouldEqual, "c1")

	explicit := boxes["c2"]
	test.That(t, explicit.Center(), test.ShouldResemble, r3.Vector{X: 20})
	test.That(t, explicit.Size(), test.ShouldResemble, r3.Vector{X: 2, Y: 2, Z: 2})

	_, ok := boxes["c3"]
	test.That(t, ok, test.ShouldBeFalse)
}

func TestNodeBoxes(t *testing.T) {
	s := newTestScene(t)
	nodes := s.NodeBoxes("c1")
	test.That(t, len(nodes), test.ShouldEqual, 2)
	n2 := nodes["n2"]
	test.That(t, n2.Center(), test.ShouldResemble, r3.Vector{X: 4})
	test.That(t, n2.Size(), test.ShouldResemble, r3.Vector{X: 2, Y: 2, Z: 2})
	test.That(t, n2.Name, test.ShouldEqual, "second")
	node, err := NodeOf(n2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, node.Cluster, test.ShouldEqual, "c1")
	_, err = ClusterOf(n2)
	test.That(t, errors.Is(err, ErrPayloadMismatch), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "*scene.Node, not *scene.Cluster")

	test.That(t, s.NodeBoxes("c2"), test.ShouldBeEmpty)
	test.That(t, s.NodeBoxes(""), test.ShouldBeEmpty)
	test.That(t, len(s.Members("c1")), test.ShouldEqual, 2)
}

func TestInteractiveBoxes(t *testing.T) {
	s := newTestScene(t)
	boxes := s.InteractiveBoxes()
	test.That(t, len(boxes), test.ShouldEqual, 2)
	test.That(t, boxes["h1"].Size(), test.ShouldResemble, r3.Vector{X: 3, Y: 3, Z: 3})
	test.That(t, boxes["h2"].Size(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, boxes["h2"].Layer, test.ShouldEqual, collision.LayerInteractive)
	hotspot, err := HotspotOf(boxes["h2"])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hotspot.Size, test.ShouldEqual, 1.0)
}

func TestRegister(t *testing.T) {
	s := newTestScene(t)
	registry, err := collision.NewRegistry(collision.RegistryOptions{MinBoxSize: 0.1}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Register(registry), test.ShouldBeNil)

	test.That(t, registry.Collection(collision.Clusters).IDs(), test.ShouldResemble, []string{"c1", "c2"})
	test.That(t, registry.Collection(collision.Interactive).IDs(), test.ShouldResemble, []string{"h1", "h2"})
	test.That(t, registry.Collection(collision.Nodes).Len(), test.ShouldEqual, 0)

	owner, ok := registry.Owner("h1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, owner, test.ShouldEqual, collision.Interactive)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene"+GraphFileSuffix)
	test.That(t, os.WriteFile(path, []byte(graphJSON), 0o600), test.ShouldBeNil)
	g, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(g.Nodes), test.ShouldEqual, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.data.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene"+GraphFileSuffix)
	test.That(t, os.WriteFile(path, []byte(graphJSON), 0o600), test.ShouldBeNil)

	w, err := NewWatcher(path, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	graphs := make(chan *Graph, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(g *Graph) { graphs <- g })
	}()

	// unrelated and invalid files are ignored
	test.That(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(path, []byte(`{`), 0o600), test.ShouldBeNil)

	updated := `{"clusters": [{"id": "only"}]}`
	test.That(t, os.WriteFile(path, []byte(updated), 0o600), test.ShouldBeNil)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case g := <-graphs:
			if len(g.Clusters) == 1 && g.Clusters[0].ID == "only" {
				cancel()
				test.That(t, <-done, test.ShouldEqual, context.Canceled)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "scene"+GraphFileSuffix)
	openFiles := func() int {
		entries, err := os.ReadDir("/proc/self/fd")
		if err != nil {
			t.Skip("no /proc/self/fd")
		}
		return len(entries)
	}

	_, err := NewWatcher(missing, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot watch")

	before := openFiles()
	for i := 0; i < 10; i++ {
		_, err := NewWatcher(missing, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldNotBeNil)
	}
	test.That(t, openFiles(), test.ShouldEqual, before)
}
