package collision

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/galaxyfield/aimcore/logging"
)

// Preset names a predefined mask.
type Preset string

// The closed set of mask presets.
const (
	PresetNavigation  Preset = "navigation"
	PresetExploration Preset = "exploration"
	PresetUIOnly      Preset = "uiOnly"
	PresetNone        Preset = "none"
	PresetAll         Preset = "all"
)

var presetMasks = map[Preset]Mask{
	PresetNavigation:  Mask(LayerDefault | LayerClusters | LayerInteractive),
	PresetExploration: Mask(LayerDefault | LayerClusters | LayerNodes),
	PresetUIOnly:      Mask(LayerInteractive),
	PresetNone:        Mask(LayerNone),
	PresetAll:         Mask(LayerAll),
}

// PresetMask returns the mask for a preset name.
func PresetMask(name Preset) (Mask, error) {
	m, ok := presetMasks[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownPreset, "%q", string(name))
	}
	return m, nil
}

// MaskListener is called after the mask changed from old to updated.
type MaskListener func(old, updated Mask)

// MaskManager owns the set of enabled collision layers. The mask is the only stored state;
// per-category enable flags are read from and written to it, so the two can never disagree.
type MaskManager struct {
	mask atomic.Uint32

	mu        sync.Mutex
	listeners []MaskListener
	notifying bool

	logger logging.Logger
}

// NewMaskManager returns a manager starting at initial.
func NewMaskManager(initial Mask, logger logging.Logger) *MaskManager {
	m := &MaskManager{logger: logger}
	m.mask.Store(uint32(initial))
	return m
}

// AddListener registers fn to be called on every actual mask change.
func (m *MaskManager) AddListener(fn MaskListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Mask returns the current mask.
func (m *MaskManager) Mask() Mask {
	return Mask(m.mask.Load())
}

// IsLayerEnabled reports whether layer is enabled.
func (m *MaskManager) IsLayerEnabled(layer Layer) bool {
	return m.Mask().Has(layer)
}

// SetLayerEnabled toggles one layer. It returns false, and notifies no one, when the layer is
// already in the requested state.
func (m *MaskManager) SetLayerEnabled(layer Layer, enabled bool) bool {
	current := m.Mask()
	if enabled {
		return m.SetMask(current.With(layer))
	}
	return m.SetMask(current.Without(layer))
}

// SetMask replaces the whole mask. It returns false when mask equals the current one.
func (m *MaskManager) SetMask(mask Mask) bool {
	old := Mask(m.mask.Swap(uint32(mask)))
	if old == mask {
		return false
	}
	m.logger.Debugw("collision mask changed", "from", old.String(), "to", mask.String())
	m.notify(old, mask)
	return true
}

// CategoryEnabled reports whether the layer of category c is enabled.
func (m *MaskManager) CategoryEnabled(c Category) bool {
	return m.IsLayerEnabled(c.Layer())
}

// SetCategoryEnabled toggles the layer of category c.
func (m *MaskManager) SetCategoryEnabled(c Category, enabled bool) (bool, error) {
	if !c.Valid() {
		return false, newUnknownCategoryError(c)
	}
	return m.SetLayerEnabled(c.Layer(), enabled), nil
}

// ApplyPreset sets the mask of a named preset. Unknown names leave the mask untouched.
func (m *MaskManager) ApplyPreset(name Preset) error {
	mask, err := PresetMask(name)
	if err != nil {
		m.logger.Warnw("rejected mask preset", "preset", string(name))
		return err
	}
	m.SetMask(mask)
	return nil
}

// notify calls listeners outside of the lock. Changes made by a listener while listeners are
// being notified are applied but do not notify again.
func (m *MaskManager) notify(old, updated Mask) {
	m.mu.Lock()
	if m.notifying {
		m.mu.Unlock()
		return
	}
	m.notifying = true
	listeners := append([]MaskListener(nil), m.listeners...)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.notifying = false
		m.mu.Unlock()
	}()
	for _, fn := range listeners {
		fn(old, updated)
	}
}
