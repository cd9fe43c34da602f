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

// Package document is a small JSON serialization framework: a streaming
// generator, a provider that finds serializers per Go type and lets modules
// replace or wrap them, wrapper-array type tagging, and JSON Schema export.
package document

import (
	"log/slog"
	"reflect"
	"sync"

	"dirpx.dev/lazyref/apis"
)

// Provider finds serializers by Go type. Serializers are built once per type
// and cached; modules are consulted in registration order.
type Provider struct {
	modules []apis.Module
	typing  apis.TypeSerializer
	logger  *slog.Logger
	unwrap  bool

	cache sync.Map // key: reflect.Type, val: *cacheEntry
}

type cacheEntry struct {
	raw   apis.Serializer // as built, before contextualization
	plain apis.Serializer // contextualized without a property
}

var (
	_ apis.Provider               = (*Provider)(nil)
	_ apis.SingleElementUnwrapper = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

// WithModule registers m. Later modules see the serializers earlier ones produced.
func WithModule(m apis.Module) Option {
	return func(p *Provider) {
		if m != nil {
			p.modules = append(p.modules, m)
		}
	}
}

// WithDefaultTyping type-tags every value at an interface-typed position with ts.
func WithDefaultTyping(ts apis.TypeSerializer) Option {
	return func(p *Provider) { p.typing = ts }
}

// WithUnwrapSingleElementArrays writes a slice, array or sequence container
// holding exactly one element as that element. Maps are unaffected.
func WithUnwrapSingleElementArrays() Option {
	return func(p *Provider) { p.unwrap = true }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider returns a Provider configured by opts.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TypeSerializer implements apis.Provider.
func (p *Provider) TypeSerializer() apis.TypeSerializer { return p.typing }

// UnwrapSingleElementArrays implements apis.SingleElementUnwrapper.
func (p *Provider) UnwrapSingleElementArrays() bool { return p.unwrap }

// SerializeNull implements apis.Provider.
func (p *Provider) SerializeNull(g apis.Generator) error { return g.WriteNull() }

// FindValueSerializer implements apis.Provider. A nil t (an untyped nil)
// yields a serializer that writes null.
func (p *Provider) FindValueSerializer(t reflect.Type, prop apis.Property) (apis.Serializer, error) {
	if t == nil {
		return nullSerializer{}, nil
	}
	e, err := p.entry(t)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return e.plain, nil
	}
	if c, ok := e.raw.(apis.Contextual); ok {
		return c.CreateContextual(p, prop)
	}
	return e.raw, nil
}

func (p *Provider) entry(t reflect.Type) (*cacheEntry, error) {
	if e, ok := p.cache.Load(t); ok {
		return e.(*cacheEntry), nil
	}
	raw := p.build(t)
	plain := raw
	if c, ok := raw.(apis.Contextual); ok {
		s, err := c.CreateContextual(p, nil)
		if err != nil {
			return nil, err
		}
		plain = s
	}
	e, _ := p.cache.LoadOrStore(t, &cacheEntry{raw: raw, plain: plain})
	return e.(*cacheEntry), nil
}

func (p *Provider) build(t reflect.Type) apis.Serializer {
	var s apis.Serializer
	for _, m := range p.modules {
		if s = m.FindSerializer(t); s != nil {
			break
		}
	}
	if s == nil {
		s = p.builtin(t)
	}
	for _, m := range p.modules {
		s = m.ModifySerializer(t, s)
	}
	p.logger.Debug("built serializer", "type", t.String(), "serializer", reflect.TypeOf(s).String())
	return s
}

// Serialize writes v as an untyped JSON document.
func (p *Provider) Serialize(v any) ([]byte, error) {
	g := NewGenerator()
	s, err := p.FindValueSerializer(reflect.TypeOf(v), nil)
	if err != nil {
		return nil, atPath(err, "")
	}
	if err := s.Serialize(v, g, p); err != nil {
		return nil, atPath(err, "")
	}
	return g.Bytes(), nil
}

// SerializeTyped writes v with its type id, using the default typing or
// WrapperArray when none is configured. A nil v is written as null.
func (p *Provider) SerializeTyped(v any) ([]byte, error) {
	ts := p.typing
	if ts == nil {
		ts = WrapperArray{}
	}
	g := NewGenerator()
	if v == nil {
		if err := p.SerializeNull(g); err != nil {
			return nil, err
		}
		return g.Bytes(), nil
	}
	s, err := p.FindValueSerializer(reflect.TypeOf(v), nil)
	if err != nil {
		return nil, atPath(err, "")
	}
	if err := s.SerializeWithType(v, g, p, ts); err != nil {
		return nil, atPath(err, "")
	}
	return g.Bytes(), nil
}

// Schema returns the JSON Schema (draft-07) of values of type t.
func (p *Provider) Schema(t reflect.Type) (map[string]any, error) {
	v := newSchemaVisitor(p, &schemaState{visiting: map[reflect.Type]bool{}})
	s, err := p.FindValueSerializer(t, nil)
	if err != nil {
		return nil, err
	}
	if err := s.AcceptSchema(v, t); err != nil {
		return nil, err
	}
	out := v.result()
	out["$schema"] = "http://json-schema.org/draft-07/schema#"
	return out, nil
}
