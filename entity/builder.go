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

// Package entity builds minimal entities: fresh instances of an entity type
// that carry nothing but an identifier. They stand in for entities that are
// not loaded.
package entity

import (
	"errors"
	"log/slog"
	"reflect"

	"dirpx.dev/lazyref/apis"
	uref "dirpx.dev/lazyref/utils/reflect"
)

// Builder implements apis.EntityBuilder over a registry of entity types.
type Builder struct {
	reg      apis.Registry
	concrete apis.IdentifierResolver
	logger   *slog.Logger
}

var _ apis.EntityBuilder = (*Builder)(nil)

// New returns a Builder. reg maps entity names to Go types; concrete finds
// the identifier property of loaded entities passed to FromObject.
func New(reg apis.Registry, concrete apis.IdentifierResolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{reg: reg, concrete: concrete, logger: logger}
}

// Build returns a pointer to a fresh instance of the type registered as
// typeName, with idProperty set to id. Instances implementing
// apis.Identifiable receive the identifier through SetIdentifier; all others
// get a privileged field write.
func (b *Builder) Build(typeName, idProperty string, id any) (any, error) {
	var t reflect.Type
	if b.reg != nil {
		if e, ok := b.reg.Lookup(typeName); ok {
			t = e.Type
		}
	}
	if t == nil {
		return nil, &BuildError{Kind: ErrTypeNotFound, TypeName: typeName}
	}
	return b.build(t, typeName, idProperty, id)
}

// FromObject returns a minimal copy of the loaded entity o: a fresh instance
// of o's type carrying only o's identifier. A nil o yields nil.
func (b *Builder) FromObject(o any) (any, error) {
	if o == nil {
		return nil, nil
	}
	t := reflect.TypeOf(o)
	name := b.entityName(o, t)

	prop := name
	if b.concrete != nil {
		if p, ok := b.concrete.Resolve(apis.Descriptor{EntityName: name, Type: t}); ok {
			prop = p
		}
	}
	id, err := uref.GetField(o, prop)
	if err != nil {
		kind := ErrFieldNotFound
		if errors.Is(err, uref.ErrNotStruct) {
			kind = ErrInstantiationFailed
		}
		return nil, &BuildError{Kind: kind, TypeName: name, Field: prop, Err: err}
	}
	return b.build(t, name, prop, id)
}

func (b *Builder) entityName(o any, t reflect.Type) string {
	if n, ok := o.(apis.Namer); ok {
		if name := n.EntityName(); name != "" {
			return name
		}
	}
	if b.reg != nil {
		if e, ok := b.reg.LookupType(t); ok {
			return e.Name
		}
	}
	if st := uref.StructOf(t); st != nil {
		return st.Name()
	}
	return t.String()
}

func (b *Builder) build(t reflect.Type, name, prop string, id any) (any, error) {
	st := uref.StructOf(t)
	if st == nil {
		return nil, &BuildError{Kind: ErrInstantiationFailed, TypeName: name,
			Err: errors.New(t.Kind().String() + " has no zero-value construction")}
	}
	ptr := reflect.New(st).Interface()

	if target, ok := ptr.(apis.Identifiable); ok {
		if err := target.SetIdentifier(id); err != nil {
			return nil, &BuildError{Kind: ErrValueNotAssignable, TypeName: name, Field: prop, Err: err}
		}
	} else if err := uref.SetField(ptr, prop, id); err != nil {
		kind := ErrValueNotAssignable
		if errors.Is(err, uref.ErrFieldNotFound) {
			kind = ErrFieldNotFound
		}
		return nil, &BuildError{Kind: kind, TypeName: name, Field: prop, Err: err}
	}

	b.logger.Debug("built minimal entity", "entity", name, "property", prop, "id", id)
	return ptr, nil
}
