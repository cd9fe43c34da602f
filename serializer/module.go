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

// Package serializer plugs lazy references and lazy containers into a
// serialization provider. Module finds a ProxySerializer for reference types
// and wraps container serializers in a CollectionSerializer.
package serializer

import (
	"log/slog"
	"reflect"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/collection"
	"dirpx.dev/lazyref/proxy"
)

var (
	referenceType = reflect.TypeFor[apis.Reference]()
	containerType = reflect.TypeFor[apis.Container]()
)

// Module implements apis.Module for lazy values.
type Module struct {
	features apis.Features
	policy   apis.Policy
	refs     *proxy.Resolver
	adapter  *collection.Adapter
	reg      apis.Registry
	logger   *slog.Logger
}

var _ apis.Module = (*Module)(nil)

// NewModule returns a Module applying features. reg may be nil; it is only
// used to describe the schema of persist tag targets.
func NewModule(features apis.Features, refs *proxy.Resolver, adapter *collection.Adapter, reg apis.Registry, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{
		features: features,
		policy:   features.Policy(),
		refs:     refs,
		adapter:  adapter,
		reg:      reg,
		logger:   logger,
	}
}

// Features returns the feature set of m.
func (m *Module) Features() apis.Features { return m.features }

// Policy returns the resolution policy derived from the features.
func (m *Module) Policy() apis.Policy { return m.policy }

// FindSerializer returns a ProxySerializer for types implementing apis.Reference.
func (m *Module) FindSerializer(t reflect.Type) apis.Serializer {
	if t == nil || !t.Implements(referenceType) {
		return nil
	}
	m.logger.Debug("lazy reference serializer", "type", t.String())
	return NewProxySerializer(m.refs, m.policy, m.reg)
}

// ModifySerializer wraps the serializer of container types: slices, arrays,
// maps and types implementing apis.Container. Byte slices are scalars and
// stay unwrapped.
func (m *Module) ModifySerializer(t reflect.Type, s apis.Serializer) apis.Serializer {
	if _, wrapped := s.(*CollectionSerializer); wrapped || !isContainerType(t) {
		return s
	}
	if _, ref := s.(*ProxySerializer); ref {
		return s
	}
	m.logger.Debug("lazy container serializer", "type", t.String())
	return NewCollectionSerializer(s, m.adapter, m.policy)
}

func isContainerType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(containerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}
