package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Read reads a JSON (.json) or YAML (.yaml, .yml) config file. Missing fields keep their
// defaults; unknown fields are an error. The result is validated.
func Read(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config file")
	}

	attrs := map[string]interface{}{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &attrs)
	case ".json":
		err = json.Unmarshal(data, &attrs)
	default:
		return nil, errors.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %q", path)
	}

	conf, err := FromAttributes(attrs)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode config file %q", path)
	}
	if err := conf.Validate(path); err != nil {
		return nil, err
	}
	return conf, nil
}

// FromAttributes decodes an attribute map on top of the defaults. Durations may be given as
// strings such as "100ms".
func FromAttributes(attrs map[string]interface{}) (*Config, error) {
	conf := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           &conf,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, err
	}
	return &conf, nil
}
