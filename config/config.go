/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"maps"

	"dirpx.dev/lazyref/apis"
)

const (
	// DefaultFeatures represents the default feature set: nothing is loaded,
	// unloaded values serialize as null.
	DefaultFeatures apis.Features = 0
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultAccessorSlot is the private field of the runtime initializer that
	// holds the identifier accessor.
	DefaultAccessorSlot = "identifierMethod"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Features:     DefaultFeatures,
		MaxUnwrap:    DefaultMaxUnwrap,
		AccessorSlot: DefaultAccessorSlot,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithFeatures replaces the feature set.
func WithFeatures(fs apis.Features) Option {
	return func(c *apis.Config) {
		c.Features = fs
	}
}

// WithFeature enables or disables a single feature.
func WithFeature(f apis.Feature, enabled bool) Option {
	return func(c *apis.Config) {
		if enabled {
			c.Features = c.Features.With(f)
			return
		}
		c.Features = c.Features.Without(f)
	}
}

// WithIdentifiers merges an entity-name to identifier-property mapping.
// The caller's map is copied.
func WithIdentifiers(m map[string]string) Option {
	return func(c *apis.Config) {
		if len(m) == 0 {
			return
		}
		next := make(map[string]string, len(c.Identifiers)+len(m))
		maps.Copy(next, c.Identifiers)
		maps.Copy(next, m)
		c.Identifiers = next
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A non-positive value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithAccessorSlot sets the accessor slot name. Empty disables the accessor strategy.
func WithAccessorSlot(slot string) Option {
	return func(c *apis.Config) {
		c.AccessorSlot = slot
	}
}
