package collision

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/spatialmath"
)

// DefaultMinBoxSize is the extent degenerate boxes are widened to when no size is configured.
const DefaultMinBoxSize = 0.1

// RegistryListener is notified after a collection was replaced.
type RegistryListener interface {
	CollectionChanged(c Category, col *Collection)
}

// RegistryListenerFunc adapts a function to a RegistryListener.
type RegistryListenerFunc func(c Category, col *Collection)

// CollectionChanged calls f.
func (f RegistryListenerFunc) CollectionChanged(c Category, col *Collection) {
	f(c, col)
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	// MinBoxSize is the floor every box extent is widened to on registration.
	MinBoxSize float64
	// DeepCompare makes RegisterCollection compare box geometry, not just the id set, when
	// deciding whether a collection changed.
	DeepCompare bool
}

// Registry stores the bounding boxes of every category. Collections are immutable and replaced
// wholesale; writers are serialized and readers load the current collection atomically, so a
// reader never observes a partially updated collection.
type Registry struct {
	opts RegistryOptions

	mu        sync.Mutex
	owners    map[string]Category
	listeners []RegistryListener

	live     [NumCategories]atomic.Pointer[Collection]
	snapshot [NumCategories]atomic.Pointer[Collection]

	logger logging.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts RegistryOptions, logger logging.Logger) (*Registry, error) {
	if opts.MinBoxSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidMinBoxSize, "got %v", opts.MinBoxSize)
	}
	r := &Registry{
		opts:   opts,
		owners: map[string]Category{},
		logger: logger,
	}
	for _, c := range Categories {
		empty := newCollection(c, nil)
		r.live[c].Store(empty)
		r.snapshot[c].Store(empty)
	}
	return r, nil
}

// AddListener registers l for collection changes.
func (r *Registry) AddListener(l RegistryListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// RegisterCollection replaces the collection of category c with boxes. Each box's ID is set from
// its key, a zero layer defaults to the category's layer and degenerate extents are widened to
// the minimum box size.
//
// The call is a no-op, returning false, when boxes holds the same id set as the current
// collection (and, with DeepCompare, the same geometry). An empty map clears the collection. On
// error nothing changes.
func (r *Registry) RegisterCollection(c Category, boxes map[string]Box) (bool, error) {
	if !c.Valid() {
		return false, newUnknownCategoryError(c)
	}

	r.mu.Lock()
	current := r.live[c].Load()
	for id, b := range boxes {
		if owner, ok := r.owners[id]; ok && owner != c {
			r.mu.Unlock()
			return false, newIDConflictError(id, owner, c)
		}
		if _, err := spatialmath.NewAABB(b.Bounds.Min, b.Bounds.Max); err != nil {
			r.mu.Unlock()
			return false, newInvalidBoxError(id, err)
		}
	}

	if current.sameIDs(boxes) && !r.opts.DeepCompare {
		r.mu.Unlock()
		return false, nil
	}
	normalized := make(map[string]Box, len(boxes))
	for id, b := range boxes {
		normalized[id] = r.normalize(c, id, b)
	}
	if current.sameIDs(normalized) && current.sameContents(normalized) {
		r.mu.Unlock()
		return false, nil
	}

	next := newCollection(c, normalized)
	for _, id := range current.IDs() {
		delete(r.owners, id)
	}
	for id := range normalized {
		r.owners[id] = c
	}
	r.live[c].Store(next)
	listeners := append([]RegistryListener(nil), r.listeners...)
	r.mu.Unlock()

	r.logger.Debugw("collection registered", "category", c.String(), "count", next.Len())
	for _, l := range listeners {
		l.CollectionChanged(c, next)
	}
	return true, nil
}

// UnregisterEntity removes id from category c. It returns false if id was not registered there.
func (r *Registry) UnregisterEntity(c Category, id string) bool {
	if !c.Valid() {
		return false
	}

	r.mu.Lock()
	current := r.live[c].Load()
	if !current.Has(id) {
		r.mu.Unlock()
		return false
	}
	boxes := current.Boxes()
	delete(boxes, id)
	next := newCollection(c, boxes)
	delete(r.owners, id)
	r.live[c].Store(next)
	listeners := append([]RegistryListener(nil), r.listeners...)
	r.mu.Unlock()

	r.logger.Debugw("entity unregistered", "category", c.String(), "id", id)
	for _, l := range listeners {
		l.CollectionChanged(c, next)
	}
	return true
}

// Collection returns the live collection of category c, as used by queries. Unknown categories
// yield an empty collection.
func (r *Registry) Collection(c Category) *Collection {
	if !c.Valid() {
		return newCollection(c, nil)
	}
	return r.live[c].Load()
}

// Snapshot returns the collection of category c as of the last Publish. It is meant for
// rendering and debug visualization and may lag the live collection by one frame.
func (r *Registry) Snapshot(c Category) *Collection {
	if !c.Valid() {
		return newCollection(c, nil)
	}
	return r.snapshot[c].Load()
}

// Publish copies every live collection to its snapshot. It returns true if any snapshot changed.
func (r *Registry) Publish() bool {
	changed := false
	for _, c := range Categories {
		live := r.live[c].Load()
		if r.snapshot[c].Swap(live) != live {
			changed = true
		}
	}
	return changed
}

// Clear empties every collection.
func (r *Registry) Clear() {
	for _, c := range Categories {
		// clearing can only fail for invalid categories
		_, _ = r.RegisterCollection(c, nil)
	}
}

// Owner returns the category id is registered in.
func (r *Registry) Owner(id string) (Category, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.owners[id]
	return c, ok
}

func (r *Registry) normalize(c Category, id string, b Box) Box {
	b.ID = id
	if b.Layer == LayerNone {
		b.Layer = c.Layer()
	}
	if b.Bounds.IsDegenerate(r.opts.MinBoxSize) {
		b.Bounds = b.Bounds.WithMinSize(r.opts.MinBoxSize)
	}
	return b
}
