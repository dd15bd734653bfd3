package engine

import (
	"github.com/pkg/errors"

	"github.com/galaxyfield/aimcore/collision"
)

// Mode is the game mode the host application is in. Each mode selects a mask preset; some modes
// suppress interaction entirely.
type Mode string

// Game modes.
const (
	ModeNavigation  Mode = "navigation"
	ModeExploration Mode = "exploration"
	ModeMenu        Mode = "menu"
	ModeDialogue    Mode = "dialogue"
	ModeCutscene    Mode = "cutscene"
)

// ErrUnknownMode is returned for a mode outside the closed set above.
var ErrUnknownMode = errors.New("unknown game mode")

type modeInfo struct {
	preset     collision.Preset
	suppresses bool
}

var modes = map[Mode]modeInfo{
	ModeNavigation:  {preset: collision.PresetNavigation},
	ModeExploration: {preset: collision.PresetExploration},
	ModeMenu:        {preset: collision.PresetUIOnly, suppresses: true},
	ModeDialogue:    {preset: collision.PresetNone, suppresses: true},
	ModeCutscene:    {preset: collision.PresetNone, suppresses: true},
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modes[m]
	return ok
}

// Preset returns the mask preset m applies.
func (m Mode) Preset() collision.Preset {
	return modes[m].preset
}

// Suppresses reports whether interaction is torn down and paused while in m.
func (m Mode) Suppresses() bool {
	return modes[m].suppresses
}
