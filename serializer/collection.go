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

package serializer

import (
	"reflect"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/collection"
)

// CollectionSerializer wraps the serializer of a container type. Lazy
// containers are resolved first; plain values pass straight to the inner
// serializer.
type CollectionSerializer struct {
	inner   apis.Serializer
	adapter *collection.Adapter
	policy  apis.Policy
	prop    apis.Property
}

var (
	_ apis.Serializer = (*CollectionSerializer)(nil)
	_ apis.Contextual = (*CollectionSerializer)(nil)
)

// NewCollectionSerializer wraps inner.
func NewCollectionSerializer(inner apis.Serializer, adapter *collection.Adapter, policy apis.Policy) *CollectionSerializer {
	return &CollectionSerializer{inner: inner, adapter: adapter, policy: policy}
}

// Inner returns the wrapped serializer.
func (s *CollectionSerializer) Inner() apis.Serializer { return s.inner }

// CreateContextual contextualizes the inner serializer for prop. For an
// eager property the inner serializer is returned bare.
func (s *CollectionSerializer) CreateContextual(p apis.Provider, prop apis.Property) (apis.Serializer, error) {
	inner := s.inner
	if c, ok := inner.(apis.Contextual); ok {
		var err error
		if inner, err = c.CreateContextual(p, prop); err != nil {
			return nil, err
		}
	}
	if !UsesLazyLoading(prop, s.policy) {
		return inner, nil
	}
	return &CollectionSerializer{inner: inner, adapter: s.adapter, policy: s.policy, prop: prop}, nil
}

// resolve returns the value to write for v; absent reports a container that
// resolved to nothing.
func (s *CollectionSerializer) resolve(v any) (val any, absent bool) {
	c, ok := v.(apis.Container)
	if !ok || isNil(v) {
		return v, false
	}
	res := s.adapter.Resolve(c, s.policy)
	return res.Value, res.Absent()
}

// serializerFor returns the inner serializer when val still has the type the
// wrapper was built for, else the provider's serializer for val.
func (s *CollectionSerializer) serializerFor(p apis.Provider, orig, val any) (apis.Serializer, error) {
	if reflect.TypeOf(orig) == reflect.TypeOf(val) {
		return s.inner, nil
	}
	return p.FindValueSerializer(reflect.TypeOf(val), s.prop)
}

// Serialize implements apis.Serializer.
func (s *CollectionSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	val, absent := s.resolve(v)
	if absent {
		return p.SerializeNull(g)
	}
	if apis.UnwrapsSingleElements(p) && s.HasSingleElement(val) {
		if sole, ok := collection.SingleElement(val); ok {
			return s.serializeSole(sole, g, p)
		}
	}
	d, err := s.serializerFor(p, v, val)
	if err != nil {
		return err
	}
	return d.Serialize(val, g, p)
}

// serializeSole writes the only element of an unwrapped container.
func (s *CollectionSerializer) serializeSole(sole any, g apis.Generator, p apis.Provider) error {
	if isNil(sole) {
		return p.SerializeNull(g)
	}
	d, err := p.FindValueSerializer(reflect.TypeOf(sole), s.prop)
	if err != nil {
		return err
	}
	return d.Serialize(sole, g, p)
}

// SerializeWithType implements apis.Serializer. With ReplaceContainerWithPlain
// a value that is still a runtime container is converted to a plain slice or
// map first, so the type id names a plain Go type.
func (s *CollectionSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	val, absent := s.resolve(v)
	if absent {
		return p.SerializeNull(g)
	}
	if s.policy.ReplaceContainerWithPlain {
		plain, err := collection.ToPlain(val)
		if err != nil {
			return err
		}
		val = plain
	}
	d, err := s.serializerFor(p, v, val)
	if err != nil {
		return err
	}
	return d.SerializeWithType(val, g, p, ts)
}

// IsEmpty reports whether v resolves to nothing or its resolved value is
// empty for the inner serializer.
func (s *CollectionSerializer) IsEmpty(p apis.Provider, v any) bool {
	val, absent := s.resolve(v)
	if absent {
		return true
	}
	d, err := s.serializerFor(p, v, val)
	if err != nil {
		return false
	}
	return d.IsEmpty(p, val)
}

// AcceptSchema delegates to the inner serializer.
func (s *CollectionSerializer) AcceptSchema(v apis.SchemaVisitor, t reflect.Type) error {
	return s.inner.AcceptSchema(v, t)
}

// HasSingleElement reports whether v holds exactly one element, without
// loading it. Serialize consults it when the provider unwraps single-element
// arrays.
func (s *CollectionSerializer) HasSingleElement(v any) bool {
	return collection.HasSingleElement(v)
}
