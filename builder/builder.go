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

// Package builder composes the engine from a configuration: the entity
// catalogue, the identifier strategy chains, the entity builder, the
// resolvers and the serialization module.
package builder

import (
	"errors"
	"log/slog"
	"reflect"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/collection"
	"dirpx.dev/lazyref/entity"
	"dirpx.dev/lazyref/metrics"
	"dirpx.dev/lazyref/proxy"
	"dirpx.dev/lazyref/registry"
	"dirpx.dev/lazyref/resolver"
	"dirpx.dev/lazyref/serializer"
	"dirpx.dev/lazyref/strategy"
)

// ErrNilRegistry is returned by BuildModule when no registry is given.
var ErrNilRegistry = errors.New("lazyref(builder): nil registry")

// Runtime describes the host persistence runtime. It is the extension
// context understood by this builder; pass it (or a pointer to it) as ext.
type Runtime struct {
	// InitializerType is the runtime's lazy initializer type. When set
	// together with Config.AccessorSlot, the accessor strategy is enabled.
	InitializerType reflect.Type
	// SessionFactory answers identifier questions for concrete elements.
	SessionFactory apis.SessionFactory
	// Logger receives diagnostics; nil means slog.Default().
	Logger *slog.Logger
	// Metrics records resolution outcomes; nil disables metrics.
	Metrics *metrics.Metrics
}

func runtimeOf(ext any) Runtime {
	switch rt := ext.(type) {
	case Runtime:
		return rt
	case *Runtime:
		if rt != nil {
			return *rt
		}
	}
	return Runtime{}
}

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds a registry seeded with cfg.Identifiers. Entries of a
// previous registry are migrated; one whose identifier property now
// disagrees with the configuration keeps only its type.
func (b *builder) BuildRegistry(cfg apis.Config, preg apis.Registry, _ any) apis.Registry {
	nreg := registry.New(cfg)
	for name, prop := range cfg.Identifiers {
		_ = nreg.Register(name, nil, prop)
	}
	if preg != nil {
		for _, e := range preg.Entries() {
			if err := nreg.Register(e.Name, e.Type, e.IDProperty); err != nil && e.Type != nil {
				_ = nreg.Register(e.Name, e.Type, "")
			}
		}
	}
	return nreg
}

// BuildModule wires the strategy chains, the entity builder and both
// resolvers into a serializer.Module. A runtime initializer without the
// configured accessor slot is a setup error.
func (b *builder) BuildModule(cfg apis.Config, reg apis.Registry, ext any) (apis.Module, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	rt := runtimeOf(ext)
	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var accessor apis.Strategy
	if rt.InitializerType != nil && cfg.AccessorSlot != "" {
		s, err := strategy.NewAccessorStrategy(rt.InitializerType, cfg.AccessorSlot)
		if err != nil {
			return nil, err
		}
		accessor = s
	}

	ids := resolver.New(
		strategy.NewMappingStrategy(reg),
		strategy.NewSessionStrategy(logger),
		accessor,
		strategy.NewFallbackStrategy(),
	)

	var factory apis.Strategy
	if rt.SessionFactory != nil {
		factory = strategy.NewFactoryStrategy(rt.SessionFactory)
	}
	concrete := resolver.New(
		factory,
		strategy.NewMappingStrategy(reg),
		strategy.NewTagStrategy(),
		strategy.NewFallbackStrategy(),
	)

	entities := entity.New(reg, concrete, logger)
	refs := proxy.NewResolver(ids, entities, logger, rt.Metrics)
	adapter := collection.NewAdapter(refs, entities, logger, rt.Metrics)
	return serializer.NewModule(cfg.Features, refs, adapter, reg, logger), nil
}
