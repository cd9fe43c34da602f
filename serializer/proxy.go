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
	"maps"
	"reflect"
	"sync/atomic"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/proxy"
)

// ProxySerializer writes lazy references: the loaded entity, a placeholder,
// or null, as decided by the reference resolver.
type ProxySerializer struct {
	refs   *proxy.Resolver
	policy apis.Policy
	reg    apis.Registry
	prop   apis.Property

	// delegates caches the serializer per resolved value type; it is
	// replaced as a whole on every addition.
	delegates atomic.Pointer[map[reflect.Type]apis.Serializer]
}

var (
	_ apis.Serializer = (*ProxySerializer)(nil)
	_ apis.Contextual = (*ProxySerializer)(nil)
)

// NewProxySerializer returns a ProxySerializer. reg resolves the target
// entity named by a property's persist tag for schema purposes; it may be nil.
func NewProxySerializer(refs *proxy.Resolver, policy apis.Policy, reg apis.Registry) *ProxySerializer {
	return &ProxySerializer{refs: refs, policy: policy, reg: reg}
}

// CreateContextual returns a serializer bound to prop with its own delegate cache.
func (s *ProxySerializer) CreateContextual(_ apis.Provider, prop apis.Property) (apis.Serializer, error) {
	if prop == nil {
		return s, nil
	}
	return &ProxySerializer{refs: s.refs, policy: s.policy, reg: s.reg, prop: prop}, nil
}

// resolve returns the value to write for v, or nil.
func (s *ProxySerializer) resolve(v any) any {
	ref, ok := v.(apis.Reference)
	if !ok {
		return v
	}
	if isNil(v) {
		return nil
	}
	return s.refs.Resolve(ref, s.policy).Value
}

func (s *ProxySerializer) delegate(p apis.Provider, t reflect.Type) (apis.Serializer, error) {
	if m := s.delegates.Load(); m != nil {
		if d, ok := (*m)[t]; ok {
			return d, nil
		}
	}
	d, err := p.FindValueSerializer(t, s.prop)
	if err != nil {
		return nil, err
	}
	for {
		old := s.delegates.Load()
		next := make(map[reflect.Type]apis.Serializer, 1)
		if old != nil {
			if cur, ok := (*old)[t]; ok {
				return cur, nil
			}
			next = maps.Clone(*old)
		}
		next[t] = d
		if s.delegates.CompareAndSwap(old, &next) {
			return d, nil
		}
	}
}

// Serialize implements apis.Serializer.
func (s *ProxySerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	val := s.resolve(v)
	if val == nil {
		return p.SerializeNull(g)
	}
	d, err := s.delegate(p, reflect.TypeOf(val))
	if err != nil {
		return err
	}
	return d.Serialize(val, g, p)
}

// SerializeWithType writes the resolved value with its own type id.
func (s *ProxySerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	val := s.resolve(v)
	if val == nil {
		return p.SerializeNull(g)
	}
	d, err := s.delegate(p, reflect.TypeOf(val))
	if err != nil {
		return err
	}
	return d.SerializeWithType(val, g, p, ts)
}

// IsEmpty reports whether v is nil or resolves to nothing.
func (s *ProxySerializer) IsEmpty(_ apis.Provider, v any) bool {
	return v == nil || s.resolve(v) == nil
}

// AcceptSchema describes the declared type of the property, never the
// reference itself, so no reference is loaded. The declared type is the
// persist tag target, else the property type when it is concrete.
func (s *ProxySerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	v.Nullable()
	t := s.declaredType()
	if t == nil {
		v.Any()
		return nil
	}
	d, err := v.Provider().FindValueSerializer(t, nil)
	if err != nil {
		return err
	}
	return d.AcceptSchema(v, t)
}

func (s *ProxySerializer) declaredType() reflect.Type {
	if s.prop == nil {
		return nil
	}
	if rel, ok := primaryRelation(s.prop); ok && rel.Target != "" && s.reg != nil {
		if e, ok := s.reg.Lookup(rel.Target); ok && e.Type != nil {
			return reflect.PointerTo(e.Type)
		}
	}
	if t := s.prop.Type(); t != nil && t.Kind() != reflect.Interface && !t.Implements(referenceType) {
		return t
	}
	return nil
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
