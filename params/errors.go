// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package params

import (
	"errors"
	"fmt"
)

// Configuration error kinds. A *ConfigError unwraps to exactly one of these.
var (
	ErrUnknownPreset       = errors.New("unknown preset")
	ErrInvalidDistribution = errors.New("invalid secret key distribution")
	ErrInvalidTechnique    = errors.New("invalid bootstrapping technique")
	ErrInvalidArity        = errors.New("invalid gate arity")
	ErrInvalidSigma        = errors.New("invalid standard deviation")
)

// ConfigError reports an input that cannot be turned into a scheme
// configuration. It is raised before any key material exists.
type ConfigError struct {
	Kind  error
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %v: %s=%s", e.Kind, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

func configErrorf(kind error, field string, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Field: field, Value: fmt.Sprintf(format, args...)}
}
