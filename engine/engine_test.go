package engine

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.viam.com/test"

	"github.com/galaxyfield/aimcore/collision"
	"github.com/galaxyfield/aimcore/config"
	"github.com/galaxyfield/aimcore/interaction"
	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/spatialmath"
)

// The camera looks down -Z with the identity orientation, so with the default detection distance
// of 5 a camera at (x, y, 5) aims at (x, y, 0).

type fakeCamera struct {
	pose spatialmath.Pose
}

func (c *fakeCamera) CameraPose() (spatialmath.Pose, bool) {
	return c.pose, c.pose != nil
}

func (c *fakeCamera) aimAt(x, y float64) {
	c.pose = spatialmath.NewPoseFromPoint(r3.Vector{X: x, Y: y, Z: 5})
}

type fakeContents map[string]map[string]collision.Box

func (c fakeContents) NodeBoxes(clusterID string) map[string]collision.Box {
	return c[clusterID]
}

func box(t *testing.T, x, y, size float64) collision.Box {
	t.Helper()
	b, err := collision.NewBox(r3.Vector{X: x, Y: y}, r3.Vector{X: size, Y: size, Z: size}, collision.LayerNone)
	test.That(t, err, test.ShouldBeNil)
	return b
}

type harness struct {
	engine   *Engine
	clock    *clock.Mock
	camera   *fakeCamera
	recorder *interaction.Recorder
	conf     config.Config
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	conf := config.Default()
	conf.MaxEngageDistance = 30
	if mutate != nil {
		mutate(&conf)
	}
	h := &harness{
		clock:    clock.NewMock(),
		camera:   &fakeCamera{},
		recorder: &interaction.Recorder{},
		conf:     conf,
	}
	contents := fakeContents{
		"alpha": {
			"n1": box(t, 0, 0, 2),
			"n2": box(t, 5, 0, 2),
		},
	}
	e, err := New(Options{
		Config:   conf,
		Clock:    h.clock,
		Camera:   h.camera,
		Contents: contents,
		Logger:   logging.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldBeNil)
	e.AddObserver(h.recorder)
	h.engine = e

	_, err = e.Registry().RegisterCollection(collision.Clusters, map[string]collision.Box{
		"alpha": box(t, 0, 0, 20),
		"beta":  box(t, 40, 0, 10),
	})
	test.That(t, err, test.ShouldBeNil)
	_, err = e.Registry().RegisterCollection(collision.Interactive, map[string]collision.Box{
		"h1": box(t, 0, 40, 4),
	})
	test.That(t, err, test.ShouldBeNil)
	return h
}

// tick advances past the update interval and runs a frame that is guaranteed to detect.
func (h *harness) tick(t *testing.T) {
	t.Helper()
	h.clock.Add(h.conf.UpdateInterval + time.Millisecond)
	test.That(t, h.engine.Update(), test.ShouldBeTrue)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	conf := config.Default()
	conf.DetectionDistance = 0
	_, err := New(Options{Config: conf})
	test.That(t, err, test.ShouldNotBeNil)

	conf = config.Default()
	conf.InitialPreset = "cinematic"
	_, err = New(Options{Config: conf})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestClusterAndNodeScenario(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{HoveredClusterID: "alpha"})
	pt, ok := e.DetectionPoint()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pt, test.ShouldResemble, r3.Vector{})

	test.That(t, e.Activate(), test.ShouldBeTrue)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{ActiveClusterID: "alpha"})
	test.That(t, e.Mode(), test.ShouldEqual, ModeExploration)
	test.That(t, e.Masks().CategoryEnabled(collision.Nodes), test.ShouldBeTrue)
	test.That(t, e.Registry().Collection(collision.Nodes).IDs(), test.ShouldResemble, []string{"n1", "n2"})

	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{ActiveClusterID: "alpha", ActiveNodeID: "n1"})

	// between the two nodes but still inside the cluster
	h.camera.aimAt(2.5, 0)
	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{ActiveClusterID: "alpha"})

	h.camera.aimAt(5, 0)
	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{ActiveClusterID: "alpha", ActiveNodeID: "n2"})

	test.That(t, e.Deactivate(), test.ShouldBeTrue)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	test.That(t, e.Mode(), test.ShouldEqual, ModeNavigation)
	test.That(t, e.Registry().Collection(collision.Nodes).Len(), test.ShouldEqual, 0)
	test.That(t, e.Deactivate(), test.ShouldBeFalse)

	trs := h.recorder.Transitions
	test.That(t, len(trs), test.ShouldEqual, 7)
	expected := []struct {
		category collision.Category
		to       interaction.Phase
		id       string
		event    interaction.Event
	}{
		{collision.Clusters, interaction.Hovered, "alpha", interaction.EventHit},
		{collision.Clusters, interaction.Active, "alpha", interaction.EventActivate},
		{collision.Nodes, interaction.Active, "n1", interaction.EventHit},
		{collision.Nodes, interaction.Idle, "", interaction.EventMiss},
		{collision.Nodes, interaction.Active, "n2", interaction.EventHit},
		{collision.Clusters, interaction.Idle, "", interaction.EventDeactivate},
		{collision.Nodes, interaction.Idle, "", interaction.EventReset},
	}
	for i, exp := range expected {
		test.That(t, trs[i].Category, test.ShouldEqual, exp.category)
		test.That(t, trs[i].To, test.ShouldEqual, exp.to)
		test.That(t, trs[i].ID, test.ShouldEqual, exp.id)
		test.That(t, trs[i].Event, test.ShouldEqual, exp.event)
		test.That(t, trs[i].Session, test.ShouldEqual, e.Session())
	}
	test.That(t, trs[6].PreviousID, test.ShouldEqual, "n2")
}

func TestHoverRetargets(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	h.camera.aimAt(40, 0)
	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{HoveredClusterID: "beta"})
	last := h.recorder.Transitions[len(h.recorder.Transitions)-1]
	test.That(t, last.From, test.ShouldEqual, interaction.Hovered)
	test.That(t, last.PreviousID, test.ShouldEqual, "alpha")
	test.That(t, last.At, test.ShouldEqual, h.clock.Now())

	h.camera.aimAt(100, 100)
	h.tick(t)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	test.That(t, e.Activate(), test.ShouldBeFalse)
}

func TestAutoDisengage(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)
	h.tick(t)
	test.That(t, e.State().ActiveNodeID, test.ShouldEqual, "n1")

	// 50 units from the cluster center, beyond the engage distance of 30
	h.camera.pose = spatialmath.NewPoseFromPoint(r3.Vector{Z: 50})
	h.tick(t)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	test.That(t, e.Registry().Collection(collision.Nodes).Len(), test.ShouldEqual, 0)

	var sawOutOfRange bool
	for _, tr := range h.recorder.Transitions {
		if tr.Event == interaction.EventOutOfRange {
			sawOutOfRange = true
			test.That(t, tr.PreviousID, test.ShouldEqual, "alpha")
		}
	}
	test.That(t, sawOutOfRange, test.ShouldBeTrue)
}

func TestEngageDistanceDisabled(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.MaxEngageDistance = 0 })
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)
	h.camera.pose = spatialmath.NewPoseFromPoint(r3.Vector{Z: 500})
	h.tick(t)
	test.That(t, e.State().ActiveClusterID, test.ShouldEqual, "alpha")
}

func TestActiveClusterRemoved(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)

	_, err := e.Registry().RegisterCollection(collision.Clusters, map[string]collision.Box{
		"beta": box(t, 40, 0, 10),
	})
	test.That(t, err, test.ShouldBeNil)
	h.tick(t)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
}

func TestThrottledUpdates(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine
	throttledBefore := testutil.ToFloat64(throttledUpdates)

	h.camera.aimAt(0, 0)
	test.That(t, e.Update(), test.ShouldBeTrue)
	test.That(t, e.State().HoveredClusterID, test.ShouldEqual, "alpha")

	h.camera.aimAt(40, 0)
	h.clock.Add(h.conf.UpdateInterval / 2)
	test.That(t, e.Update(), test.ShouldBeFalse)
	test.That(t, e.State().HoveredClusterID, test.ShouldEqual, "alpha")
	test.That(t, len(h.recorder.Transitions), test.ShouldEqual, 1)
	test.That(t, testutil.ToFloat64(throttledUpdates)-throttledBefore, test.ShouldEqual, 1)

	h.clock.Add(h.conf.UpdateInterval/2 + time.Millisecond)
	test.That(t, e.Update(), test.ShouldBeTrue)
	test.That(t, e.State().HoveredClusterID, test.ShouldEqual, "beta")
	test.That(t, len(h.recorder.Transitions), test.ShouldEqual, 2)
}

func TestActivationIsNotThrottled(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	test.That(t, e.Update(), test.ShouldBeTrue)
	test.That(t, e.Activate(), test.ShouldBeTrue)
	test.That(t, e.Deactivate(), test.ShouldBeTrue)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	test.That(t, e.Update(), test.ShouldBeFalse)
}

func TestDetachedCamera(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.State().HoveredClusterID, test.ShouldEqual, "alpha")

	e.SetCamera(nil)
	h.tick(t)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	_, ok := e.DetectionPoint()
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = e.FindContaining(collision.Clusters)
	test.That(t, ok, test.ShouldBeFalse)

	e.SetCamera(h.camera)
	h.camera.pose = nil
	h.tick(t)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
}

func TestEmptyRegistry(t *testing.T) {
	mock := clock.NewMock()
	camera := &fakeCamera{}
	camera.aimAt(0, 0)
	e, err := New(Options{Config: config.Default(), Clock: mock, Camera: camera})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e.Update(), test.ShouldBeTrue)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	test.That(t, e.Activate(), test.ShouldBeFalse)
}

func TestClusterBeforeInteractive(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 40)
	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{ActiveInteractiveID: "h1"})
	hit, ok := e.FindContaining(collision.Interactive)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, hit.ID, test.ShouldEqual, "h1")

	_, err := e.Registry().RegisterCollection(collision.Clusters, map[string]collision.Box{
		"alpha": box(t, 0, 0, 20),
		"gamma": box(t, 0, 40, 10),
	})
	test.That(t, err, test.ShouldBeNil)
	h.tick(t)
	test.That(t, e.State(), test.ShouldResemble, interaction.State{HoveredClusterID: "gamma"})
}

func TestModes(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)
	h.tick(t)

	test.That(t, e.SetMode(ModeMenu), test.ShouldBeNil)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	uiOnly, err := collision.PresetMask(collision.PresetUIOnly)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e.Masks().Mask(), test.ShouldEqual, uiOnly)
	test.That(t, e.Mode(), test.ShouldEqual, ModeMenu)
	test.That(t, e.Registry().Collection(collision.Nodes).Len(), test.ShouldEqual, 0)

	h.clock.Add(time.Second)
	test.That(t, e.Update(), test.ShouldBeFalse)
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)

	err = e.SetMode("karaoke")
	test.That(t, errors.Is(err, ErrUnknownMode), test.ShouldBeTrue)
	test.That(t, e.Mode(), test.ShouldEqual, ModeMenu)

	test.That(t, e.SetMode(ModeNavigation), test.ShouldBeNil)
	h.tick(t)
	test.That(t, e.State().HoveredClusterID, test.ShouldEqual, "alpha")

	test.That(t, e.SetMode(ModeCutscene), test.ShouldBeNil)
	test.That(t, e.Masks().Mask(), test.ShouldEqual, collision.Mask(collision.LayerNone))
	test.That(t, e.Activate(), test.ShouldBeFalse)
}

func TestSnapshotLagsUntilUpdate(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)
	test.That(t, e.Registry().Collection(collision.Nodes).Len(), test.ShouldEqual, 2)
	test.That(t, e.Registry().Snapshot(collision.Nodes).Len(), test.ShouldEqual, 0)

	// throttled frames still publish
	test.That(t, e.Update(), test.ShouldBeFalse)
	test.That(t, e.Registry().Snapshot(collision.Nodes).Len(), test.ShouldEqual, 2)
}

func TestSetContentsWhileActive(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)

	e.SetContents(fakeContents{"alpha": {"n9": box(t, 0, 0, 1)}})
	test.That(t, e.Registry().Collection(collision.Nodes).IDs(), test.ShouldResemble, []string{"n9"})
	h.tick(t)
	test.That(t, e.State().ActiveNodeID, test.ShouldEqual, "n9")
}

func TestReset(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	h.camera.aimAt(0, 0)
	h.tick(t)
	test.That(t, e.Activate(), test.ShouldBeTrue)

	e.Reset()
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	_, ok := e.DetectionPoint()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, e.Mode(), test.ShouldEqual, ModeNavigation)

	// the throttle was reset too
	test.That(t, e.Update(), test.ShouldBeTrue)
	test.That(t, e.State().HoveredClusterID, test.ShouldEqual, "alpha")
}

func TestRegistrySwapMetric(t *testing.T) {
	h := newHarness(t, nil)
	before := testutil.ToFloat64(registrySwaps.WithLabelValues(collision.Interactive.String()))
	_, err := h.engine.Registry().RegisterCollection(collision.Interactive, map[string]collision.Box{
		"h2": box(t, 0, -40, 4),
	})
	test.That(t, err, test.ShouldBeNil)
	after := testutil.ToFloat64(registrySwaps.WithLabelValues(collision.Interactive.String()))
	test.That(t, after-before, test.ShouldEqual, 1)
}

func TestListenersReadState(t *testing.T) {
	h := newHarness(t, nil)
	e := h.engine

	var (
		maskStates []interaction.State
		nodeStates []interaction.State
	)
	e.Masks().AddListener(func(_, _ collision.Mask) {
		maskStates = append(maskStates, e.State())
	})
	e.Registry().AddListener(collision.RegistryListenerFunc(func(c collision.Category, _ *collision.Collection) {
		if c == collision.Nodes {
			nodeStates = append(nodeStates, e.State())
			_ = e.Mode()
		}
	}))

	h.camera.aimAt(0, 0)
	h.tick(t)

	run := func(name string, fn func()) {
		t.Helper()
		done := make(chan struct{})
		go func() {
			defer close(done)
			fn()
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s did not return", name)
		}
	}
	run("Activate", func() { test.That(t, e.Activate(), test.ShouldBeTrue) })
	active := interaction.State{ActiveClusterID: "alpha"}
	test.That(t, maskStates, test.ShouldResemble, []interaction.State{active})
	test.That(t, nodeStates, test.ShouldResemble, []interaction.State{active})

	run("SetMode", func() { test.That(t, e.SetMode(ModeMenu), test.ShouldBeNil) })
	test.That(t, e.State().IsZero(), test.ShouldBeTrue)
	test.That(t, e.Registry().Collection(collision.Nodes).Len(), test.ShouldEqual, 0)
	test.That(t, e.Masks().CategoryEnabled(collision.Clusters), test.ShouldBeFalse)
	test.That(t, len(nodeStates), test.ShouldEqual, 2)
	test.That(t, nodeStates[1].IsZero(), test.ShouldBeTrue)
}
