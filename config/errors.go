package config

import "github.com/pkg/errors"

// NewConfigValidationError returns an error specifying that validation of the config at path
// failed because of err.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldPositiveError returns an error specifying that field at path must be a
// positive number.
func NewConfigValidationFieldPositiveError(path, field string, value interface{}) error {
	return NewConfigValidationError(path, errors.Errorf("%q must be positive, got %v", field, value))
}

// NewConfigValidationFieldNonNegativeError returns an error specifying that field at path must
// not be negative.
func NewConfigValidationFieldNonNegativeError(path, field string, value interface{}) error {
	return NewConfigValidationError(path, errors.Errorf("%q must not be negative, got %v", field, value))
}
