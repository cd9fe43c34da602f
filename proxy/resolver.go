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

// Package proxy resolves lazy references: it decides whether a reference is
// emitted as the loaded entity, as an identifier-only placeholder, or not at all.
package proxy

import (
	"log/slog"
	"time"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/entity"
	"dirpx.dev/lazyref/metrics"
)

// Resolver resolves lazy references under a policy. It is safe for
// concurrent use when its collaborators are.
type Resolver struct {
	ids     apis.IdentifierResolver
	builder apis.EntityBuilder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewResolver returns a Resolver. ids finds the identifier property of
// unloaded references and builder produces placeholders. m may be nil.
func NewResolver(ids apis.IdentifierResolver, builder apis.EntityBuilder, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{ids: ids, builder: builder, logger: logger, metrics: m}
}

// Resolve evaluates ref once against p:
//
//   - an initialized reference is Materialized as its loaded entity;
//   - otherwise ForceLoad loads it (one load) and Materializes it;
//   - otherwise SerializeIdentifierOnly yields a Placeholder;
//   - otherwise the reference is Suppressed.
//
// ForceLoad is checked before SerializeIdentifierOnly. Failures never escape:
// they are logged and the reference is Suppressed.
func (r *Resolver) Resolve(ref apis.Reference, p apis.Policy) Resolution {
	res := r.resolve(ref, p)
	r.metrics.RecordResolution(metrics.TargetReference, res.State.String())
	return res
}

func (r *Resolver) resolve(ref apis.Reference, p apis.Policy) Resolution {
	if ref == nil {
		return Resolution{State: Suppressed}
	}
	if ref.IsInitialized() {
		return Resolution{State: Materialized, Value: ref.Implementation()}
	}

	name := ref.EntityName()
	r.logger.Debug("resolving unloaded reference", "entity", name)

	switch {
	case p.ForceLoad:
		start := time.Now()
		if err := ref.Initialize(); err != nil {
			r.logger.Error("failed to load reference", "entity", name, "id", ref.Identifier(), "error", err)
			return Resolution{State: Suppressed}
		}
		r.metrics.RecordLoad(metrics.TargetReference, time.Since(start))
		return Resolution{State: Materialized, Value: ref.Implementation()}

	case p.SerializeIdentifierOnly:
		v, err := r.placeholder(ref, name)
		if err != nil {
			r.metrics.RecordFailure(entity.Reason(err))
			r.logger.Error("failed to build minimal entity", "entity", name, "error", err)
			return Resolution{State: Suppressed}
		}
		return Resolution{State: Placeholder, Value: v}

	default:
		return Resolution{State: Suppressed}
	}
}

func (r *Resolver) placeholder(ref apis.Reference, name string) (any, error) {
	if r.builder == nil {
		return nil, &entity.BuildError{Kind: entity.ErrTypeNotFound, TypeName: name}
	}
	prop := name
	if r.ids != nil {
		if p, ok := r.ids.Resolve(apis.Descriptor{EntityName: name, Reference: ref}); ok {
			prop = p
		}
	}
	return r.builder.Build(name, prop, ref.Identifier())
}
