// Package config defines the engine configuration and reads it from JSON or YAML files.
package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/galaxyfield/aimcore/collision"
	"github.com/galaxyfield/aimcore/interaction"
	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/probe"
	"github.com/galaxyfield/aimcore/spatialmath"
)

// Defaults, in scene units.
const (
	DefaultDetectionDistance  = 5.0
	DefaultMaxEngageDistance  = 60.0
	DefaultNodeBoxSize        = 2.0
	DefaultClusterPadding     = 1.5
	DefaultInteractiveBoxSize = 3.0
)

// RegistryConfig tunes the bounding volume registry.
type RegistryConfig struct {
	// DeepCompare makes re-registration compare box geometry, not only the id set.
	DeepCompare bool `json:"deep_compare" yaml:"deep_compare" mapstructure:"deep_compare"`
}

// Config is the engine configuration.
type Config struct {
	// DetectionDistance is how far in front of the camera the detection point sits.
	DetectionDistance float64 `json:"detection_distance" yaml:"detection_distance" mapstructure:"detection_distance"`
	// UpdateInterval is the minimum time between two detection passes. Zero disables throttling.
	UpdateInterval time.Duration `json:"update_interval" yaml:"update_interval" mapstructure:"update_interval"`
	// MaxEngageDistance is how far the camera may move from the active cluster's center before
	// the cluster is disengaged. Zero disables automatic disengagement.
	MaxEngageDistance float64 `json:"max_engage_distance" yaml:"max_engage_distance" mapstructure:"max_engage_distance"`
	// MinBoxSize is the floor degenerate box extents are widened to.
	MinBoxSize         float64 `json:"min_box_size" yaml:"min_box_size" mapstructure:"min_box_size"`
	NodeBoxSize        float64 `json:"node_box_size" yaml:"node_box_size" mapstructure:"node_box_size"`
	ClusterPadding     float64 `json:"cluster_padding" yaml:"cluster_padding" mapstructure:"cluster_padding"`
	InteractiveBoxSize float64 `json:"interactive_box_size" yaml:"interactive_box_size" mapstructure:"interactive_box_size"`

	InitialPreset collision.Preset `json:"initial_preset" yaml:"initial_preset" mapstructure:"initial_preset"`
	// AutoPresets switches to the exploration preset when a cluster activates and back to
	// navigation when it is left.
	AutoPresets bool `json:"auto_presets" yaml:"auto_presets" mapstructure:"auto_presets"`

	PoolSize int            `json:"pool_size" yaml:"pool_size" mapstructure:"pool_size"`
	LogLevel string         `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Registry RegistryConfig `json:"registry" yaml:"registry" mapstructure:"registry"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DetectionDistance:  DefaultDetectionDistance,
		UpdateInterval:     interaction.DefaultUpdateInterval,
		MaxEngageDistance:  DefaultMaxEngageDistance,
		MinBoxSize:         collision.DefaultMinBoxSize,
		NodeBoxSize:        DefaultNodeBoxSize,
		ClusterPadding:     DefaultClusterPadding,
		InteractiveBoxSize: DefaultInteractiveBoxSize,
		InitialPreset:      collision.PresetNavigation,
		AutoPresets:        true,
		PoolSize:           spatialmath.DefaultPoolSize,
		LogLevel:           "info",
	}
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if err := probe.ValidateDistance(conf.DetectionDistance); err != nil {
		return NewConfigValidationError(path, errors.Wrap(err, "detection_distance"))
	}
	if conf.UpdateInterval < 0 {
		return NewConfigValidationFieldNonNegativeError(path, "update_interval", conf.UpdateInterval)
	}
	if conf.MaxEngageDistance < 0 {
		return NewConfigValidationFieldNonNegativeError(path, "max_engage_distance", conf.MaxEngageDistance)
	}
	if conf.MinBoxSize <= 0 {
		return NewConfigValidationFieldPositiveError(path, "min_box_size", conf.MinBoxSize)
	}
	if conf.NodeBoxSize <= 0 {
		return NewConfigValidationFieldPositiveError(path, "node_box_size", conf.NodeBoxSize)
	}
	if conf.InteractiveBoxSize <= 0 {
		return NewConfigValidationFieldPositiveError(path, "interactive_box_size", conf.InteractiveBoxSize)
	}
	if conf.ClusterPadding < 0 {
		return NewConfigValidationFieldNonNegativeError(path, "cluster_padding", conf.ClusterPadding)
	}
	if conf.PoolSize < 0 {
		return NewConfigValidationFieldNonNegativeError(path, "pool_size", conf.PoolSize)
	}
	if _, err := collision.PresetMask(conf.InitialPreset); err != nil {
		return NewConfigValidationError(path, errors.Wrap(err, "initial_preset"))
	}
	if conf.LogLevel != "" {
		if _, err := logging.LevelFromString(conf.LogLevel); err != nil {
			return NewConfigValidationError(path, errors.Wrap(err, "log_level"))
		}
	}
	return nil
}

// Level returns the configured log level, INFO when unset.
func (conf *Config) Level() logging.Level {
	level, err := logging.LevelFromString(conf.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}
