// Package engine runs the per-frame interaction loop: it places the detection point in front of
// the camera, asks the containment query which cluster, node or interactive element it is in,
// and drives the hover/active state machines from the answers.
package engine

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/galaxyfield/aimcore/collision"
	"github.com/galaxyfield/aimcore/config"
	"github.com/galaxyfield/aimcore/interaction"
	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/probe"
	"github.com/galaxyfield/aimcore/spatialmath"
)

// ClusterContents supplies the node boxes of a cluster. It is asked when a cluster becomes
// active, and with an empty id when the active cluster is left.
type ClusterContents interface {
	NodeBoxes(clusterID string) map[string]collision.Box
}

// Options configure an Engine. Only Config is required.
type Options struct {
	Config   config.Config
	Clock    clock.Clock
	Camera   probe.PoseProvider
	Contents ClusterContents
	Logger   logging.Logger
}

// Engine owns the registry, the mask manager and the per-category state machines. All methods
// are safe for concurrent use. Observers and mask or registry listeners are called without the
// state lock held, so they may read engine state; they must not change it synchronously.
type Engine struct {
	conf     config.Config
	clock    clock.Clock
	session  uuid.UUID
	logger   logging.Logger
	registry *collision.Registry
	masks    *collision.MaskManager
	query    *collision.QueryEngine
	throttle *interaction.Throttle

	// effectsMu orders preset and node registration side effects. It is taken before mu.
	effectsMu sync.Mutex

	mu          sync.Mutex
	probe       *probe.Calculator
	camera      probe.PoseProvider
	contents    ClusterContents
	mode        Mode
	clusters    *interaction.Machine
	nodes       *interaction.Machine
	interactive *interaction.Machine
	observers   []interaction.Observer
	pending     []interaction.Transition
	dirty       effects
}

// effects are registry and mask changes owed after a state change. They are applied outside mu
// from the state current at the time of applying.
type effects struct {
	preset bool
	nodes  bool
}

// New returns an engine with empty collections, starting in navigation mode with the mask of the
// configured initial preset.
func New(opts Options) (*Engine, error) {
	conf := opts.Config
	if err := conf.Validate("engine"); err != nil {
		return nil, err
	}
	initial, err := collision.PresetMask(conf.InitialPreset)
	if err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewBlankLogger("engine")
	}

	registry, err := collision.NewRegistry(collision.RegistryOptions{
		MinBoxSize:  conf.MinBoxSize,
		DeepCompare: conf.Registry.DeepCompare,
	}, logger.Sublogger("registry"))
	if err != nil {
		return nil, err
	}
	registry.AddListener(collision.RegistryListenerFunc(func(c collision.Category, _ *collision.Collection) {
		instrumentRegistrySwap(c)
	}))
	throttle, err := interaction.NewThrottle(conf.UpdateInterval, clk)
	if err != nil {
		return nil, err
	}
	masks := collision.NewMaskManager(initial, logger.Sublogger("masks"))

	e := &Engine{
		conf:        conf,
		clock:       clk,
		session:     uuid.New(),
		logger:      logger,
		registry:    registry,
		masks:       masks,
		query:       collision.NewQueryEngine(registry, masks),
		throttle:    throttle,
		probe:       probe.NewCalculator(spatialmath.NewPool(conf.PoolSize)),
		camera:      opts.Camera,
		contents:    opts.Contents,
		mode:        ModeNavigation,
		clusters:    interaction.NewMachine(collision.Clusters),
		nodes:       interaction.NewMachine(collision.Nodes),
		interactive: interaction.NewMachine(collision.Interactive),
	}
	logger.Debugw("engine created", "session", e.session.String(), "mask", initial.String())
	return e, nil
}

// Session identifies this engine instance in transitions and logs.
func (e *Engine) Session() uuid.UUID {
	return e.session
}

// Registry returns the box registry the engine queries.
func (e *Engine) Registry() *collision.Registry {
	return e.registry
}

// Masks returns the layer mask manager.
func (e *Engine) Masks() *collision.MaskManager {
	return e.masks
}

// SetCamera attaches a camera. A nil provider detaches it, after which queries find nothing.
func (e *Engine) SetCamera(camera probe.PoseProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.camera = camera
}

// SetContents replaces the cluster contents provider. If a cluster is active its nodes are
// registered again from the new provider.
func (e *Engine) SetContents(contents ClusterContents) {
	e.mu.Lock()
	e.contents = contents
	if e.clusters.Phase() == interaction.Active {
		e.dirty.nodes = true
	}
	e.mu.Unlock()

	e.applyEffects()
}

// AddObserver registers o to receive every transition.
func (e *Engine) AddObserver(o interaction.Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// State returns the current hover/active selection. It is never throttled.
func (e *Engine) State() interaction.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return interaction.StateOf(e.clusters, e.nodes, e.interactive)
}

// DetectionPoint returns the last computed detection point. The second return value is false
// while no camera pose is available.
func (e *Engine) DetectionPoint() (r3.Vector, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.probe.Point(), e.probe.Valid()
}

// FindContaining runs the containment query for c at the current detection point without
// touching any state.
func (e *Engine) FindContaining(c collision.Category) (collision.Hit, bool) {
	pt, ok := e.DetectionPoint()
	if !ok {
		return collision.Hit{}, false
	}
	return e.query.FindContaining(pt, c)
}

// Mode returns the current game mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode switches the game mode and applies its preset before returning, so the next query
// already sees the new mask. Suppressing modes tear the interaction state down.
func (e *Engine) SetMode(mode Mode) error {
	if !mode.Valid() {
		e.logger.Warnw("rejected game mode", "mode", string(mode))
		return errors.Wrapf(ErrUnknownMode, "%q", string(mode))
	}
	e.mu.Lock()
	e.mode = mode
	if mode.Suppresses() {
		e.teardown()
	}
	e.dirty.preset = true
	pending := e.takePending()
	e.mu.Unlock()

	e.applyEffects()
	e.logger.Infow("game mode changed", "mode", string(mode))
	e.notify(pending)
	return nil
}

// Update runs one frame. Detection runs at most once per update interval; the snapshot of every
// collection is published on every call. It returns whether a detection pass ran.
func (e *Engine) Update() bool {
	defer e.registry.Publish()

	e.mu.Lock()
	if e.mode.Suppresses() {
		e.mu.Unlock()
		return false
	}
	if !e.throttle.Allow() {
		e.mu.Unlock()
		instrumentThrottled()
		return false
	}
	e.detect()
	pending := e.takePending()
	e.mu.Unlock()

	e.applyEffects()
	instrumentDetectionPass()
	e.notify(pending)
	return true
}

// Activate is the activation input edge. It activates the hovered cluster and reports whether it
// did. It acts on the current state immediately and is not throttled.
func (e *Engine) Activate() bool {
	e.mu.Lock()
	if e.mode.Suppresses() || e.clusters.Phase() != interaction.Hovered {
		e.mu.Unlock()
		return false
	}
	t, ok := e.clusters.Fire(interaction.EventActivate, "")
	e.emit(t, ok)
	if ok {
		e.enterCluster(t.ID)
	}
	pending := e.takePending()
	e.mu.Unlock()

	e.applyEffects()
	if ok {
		e.logger.Infow("cluster activated", "cluster", t.ID)
	}
	e.notify(pending)
	return ok
}

// Deactivate is the deactivation input edge. It leaves the active cluster and reports whether one
// was active.
func (e *Engine) Deactivate() bool {
	e.mu.Lock()
	if e.clusters.Phase() != interaction.Active {
		e.mu.Unlock()
		return false
	}
	id := e.clusters.ID()
	e.exitCluster(interaction.EventDeactivate)
	pending := e.takePending()
	e.mu.Unlock()

	e.applyEffects()
	e.logger.Infow("cluster deactivated", "cluster", id)
	e.notify(pending)
	return true
}

// Reset clears all interaction state, the detection point and the throttle. Registered
// collections and the game mode are kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.teardown()
	e.probe.Clear()
	e.throttle.Reset()
	pending := e.takePending()
	e.mu.Unlock()

	e.applyEffects()
	e.notify(pending)
}

// detect moves the detection point and feeds the query results to the machines. While a cluster
// is active only its nodes are queried; otherwise clusters take priority over interactive
// elements, which are only queried when no cluster contains the point.
func (e *Engine) detect() {
	pose, attached := e.cameraPose()
	if attached {
		if _, err := e.probe.UpdateFromPose(pose, e.conf.DetectionDistance); err != nil {
			e.logger.Debugw("cannot update detection point", "error", err)
		}
	} else {
		e.probe.Clear()
	}

	if e.clusters.Phase() == interaction.Active {
		if ev, leave := e.shouldLeave(pose, attached); leave {
			e.logger.Infow("cluster disengaged", "cluster", e.clusters.ID(), "event", ev.String())
			e.exitCluster(ev)
			return
		}
		e.observe(e.nodes)
		return
	}

	if e.observe(e.clusters) {
		e.emit(e.interactive.Fire(interaction.EventMiss, ""))
		return
	}
	e.observe(e.interactive)
}

func (e *Engine) cameraPose() (spatialmath.Pose, bool) {
	if e.camera == nil {
		return nil, false
	}
	pose, ok := e.camera.CameraPose()
	if !ok || pose == nil {
		return nil, false
	}
	return pose, true
}

// shouldLeave decides whether the active cluster must be left: it vanished from the registry, or
// the camera moved further than the engage distance from its center.
func (e *Engine) shouldLeave(pose spatialmath.Pose, attached bool) (interaction.Event, bool) {
	box, ok := e.registry.Collection(collision.Clusters).Get(e.clusters.ID())
	if !ok {
		return interaction.EventReset, true
	}
	if e.conf.MaxEngageDistance <= 0 || !attached {
		return 0, false
	}
	if pose.Point().Distance(box.Center()) > e.conf.MaxEngageDistance {
		return interaction.EventOutOfRange, true
	}
	return 0, false
}

// observe runs the query for m's category and feeds the result to m. It reports whether the
// query hit.
func (e *Engine) observe(m *interaction.Machine) bool {
	var (
		hit collision.Hit
		ok  bool
	)
	if e.probe.Valid() {
		hit, ok = e.query.FindContaining(e.probe.Point(), m.Category())
	}
	e.emit(m.Observe(hit.ID, ok))
	return ok
}

func (e *Engine) enterCluster(id string) {
	e.emit(e.interactive.Fire(interaction.EventReset, ""))
	e.dirty.nodes = true
	if e.conf.AutoPresets && e.mode == ModeNavigation {
		e.switchMode(ModeExploration)
	}
}

func (e *Engine) exitCluster(ev interaction.Event) {
	e.emit(e.clusters.Fire(ev, ""))
	e.emit(e.nodes.Fire(interaction.EventReset, ""))
	e.dirty.nodes = true
	if e.conf.AutoPresets && e.mode == ModeExploration {
		e.switchMode(ModeNavigation)
	}
}

// teardown returns every machine to idle.
func (e *Engine) teardown() {
	if e.clusters.Phase() == interaction.Active {
		e.exitCluster(interaction.EventReset)
	} else {
		e.emit(e.clusters.Fire(interaction.EventReset, ""))
	}
	e.emit(e.nodes.Fire(interaction.EventReset, ""))
	e.emit(e.interactive.Fire(interaction.EventReset, ""))
}

func (e *Engine) switchMode(mode Mode) {
	e.mode = mode
	e.dirty.preset = true
}

// applyEffects brings the mask and the node collection in line with the current mode and active
// cluster. It must be called without mu held. Listeners of the mask manager and the registry run
// from here.
func (e *Engine) applyEffects() {
	e.effectsMu.Lock()
	defer e.effectsMu.Unlock()

	e.mu.Lock()
	dirty := e.dirty
	e.dirty = effects{}
	mode := e.mode
	contents := e.contents
	var active string
	if e.clusters.Phase() == interaction.Active {
		active = e.clusters.ID()
	}
	e.mu.Unlock()

	if dirty.preset {
		if err := e.masks.ApplyPreset(mode.Preset()); err != nil {
			e.logger.Warnw("cannot apply preset", "mode", string(mode), "error", err)
		}
	}
	if dirty.nodes {
		e.registerNodes(contents, active)
	}
}

// registerNodes replaces the node collection with the nodes of clusterID. An empty id clears it.
func (e *Engine) registerNodes(contents ClusterContents, clusterID string) {
	var boxes map[string]collision.Box
	if contents != nil && clusterID != "" {
		boxes = contents.NodeBoxes(clusterID)
	}
	if _, err := e.registry.RegisterCollection(collision.Nodes, boxes); err != nil {
		e.logger.Warnw("cannot register nodes", "cluster", clusterID, "error", err)
	}
}

// emit stamps and queues a transition. It must be called with mu held.
func (e *Engine) emit(t interaction.Transition, changed bool) {
	if !changed {
		return
	}
	t.Session = e.session
	t.At = e.clock.Now()
	e.logger.Debugw("transition", "transition", t.String())
	instrumentTransition(t)
	e.pending = append(e.pending, t)
}

// batch is the work queued under mu and delivered after it is released.
type batch struct {
	observers   []interaction.Observer
	transitions []interaction.Transition
}

func (e *Engine) takePending() batch {
	b := batch{observers: append([]interaction.Observer(nil), e.observers...), transitions: e.pending}
	e.pending = nil
	return b
}

func (e *Engine) notify(b batch) {
	for _, t := range b.transitions {
		for _, o := range b.observers {
			o.OnTransition(t)
		}
	}
}
