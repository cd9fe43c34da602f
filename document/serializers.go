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

package document

import (
	"cmp"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"dirpx.dev/lazyref/apis"
	uref "dirpx.dev/lazyref/utils/reflect"
)

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	iterableType      = reflect.TypeFor[apis.Iterable]()
	arrayHolderType   = reflect.TypeFor[apis.ArrayHolder]()
	mapIterableType   = reflect.TypeFor[apis.MapIterable]()
)

// builtin returns the serializer the provider uses when no module has one.
func (p *Provider) builtin(t reflect.Type) apis.Serializer {
	switch {
	case t.Implements(jsonMarshalerType):
		return scalarSerializer{}
	case t.Implements(textMarshalerType):
		return scalarSerializer{jsonType: "string"}
	case t.Implements(iterableType), t.Implements(arrayHolderType), t.Implements(mapIterableType):
		return newContainerSerializer(p, t, nil)
	}

	switch t.Kind() {
	case reflect.Bool:
		return scalarSerializer{jsonType: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalarSerializer{jsonType: "integer"}
	case reflect.Float32, reflect.Float64:
		return scalarSerializer{jsonType: "number"}
	case reflect.String:
		return scalarSerializer{jsonType: "string"}
	case reflect.Interface:
		return &dynamicSerializer{}
	case reflect.Ptr:
		return newPointerSerializer(p, t, nil)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return scalarSerializer{jsonType: "string", nullable: true}
		}
		return newSliceSerializer(p, t, nil)
	case reflect.Array:
		return newSliceSerializer(p, t, nil)
	case reflect.Map:
		return newMapSerializer(p, t, nil)
	case reflect.Struct:
		return newStructSerializer(p, t)
	default:
		return unsupportedSerializer{t: t}
	}
}

// lazySerializer finds the serializer of t for prop on first use, so
// recursive types can be built.
func lazySerializer(p *Provider, t reflect.Type, prop apis.Property) func() (apis.Serializer, error) {
	return sync.OnceValues(func() (apis.Serializer, error) {
		return p.FindValueSerializer(t, prop)
	})
}

func isZero(v any) bool {
	return v == nil || reflect.ValueOf(v).IsZero()
}

func isNilValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// nullSerializer writes untyped nils.
type nullSerializer struct{}

func (nullSerializer) Serialize(_ any, g apis.Generator, p apis.Provider) error {
	return p.SerializeNull(g)
}

func (nullSerializer) SerializeWithType(_ any, g apis.Generator, p apis.Provider, _ apis.TypeSerializer) error {
	return p.SerializeNull(g)
}

func (nullSerializer) IsEmpty(apis.Provider, any) bool { return true }

func (nullSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	v.Scalar("null")
	return nil
}

// scalarSerializer writes booleans, numbers, strings and marshalers.
// An empty jsonType leaves the schema unconstrained.
type scalarSerializer struct {
	jsonType string
	nullable bool
}

func (s scalarSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	if isNilValue(reflect.ValueOf(v)) {
		return p.SerializeNull(g)
	}
	return g.WriteValue(v)
}

func (s scalarSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	return writeTyped(s, v, g, p, ts)
}

func (scalarSerializer) IsEmpty(_ apis.Provider, v any) bool { return isZero(v) }

func (s scalarSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	if s.jsonType == "" {
		v.Any()
		return nil
	}
	if s.nullable {
		v.Nullable()
	}
	v.Scalar(s.jsonType)
	return nil
}

// unsupportedSerializer fails for types without a document form.
type unsupportedSerializer struct {
	t reflect.Type
}

func (s unsupportedSerializer) Serialize(any, apis.Generator, apis.Provider) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedType, s.t)
}

func (s unsupportedSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, _ apis.TypeSerializer) error {
	return s.Serialize(v, g, p)
}

func (unsupportedSerializer) IsEmpty(_ apis.Provider, v any) bool { return isZero(v) }

func (s unsupportedSerializer) AcceptSchema(apis.SchemaVisitor, reflect.Type) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedType, s.t)
}

// dynamicSerializer serves interface-typed positions: it dispatches on the
// runtime type of each value. Under default typing values are type-tagged.
type dynamicSerializer struct {
	prop  apis.Property
	cache sync.Map // key: reflect.Type, val: apis.Serializer
}

var _ apis.Contextual = (*dynamicSerializer)(nil)

func (s *dynamicSerializer) CreateContextual(_ apis.Provider, prop apis.Property) (apis.Serializer, error) {
	if prop == nil {
		return s, nil
	}
	return &dynamicSerializer{prop: prop}, nil
}

func (s *dynamicSerializer) find(p apis.Provider, v any) (apis.Serializer, error) {
	t := reflect.TypeOf(v)
	if s.prop == nil {
		return p.FindValueSerializer(t, nil)
	}
	if c, ok := s.cache.Load(t); ok {
		return c.(apis.Serializer), nil
	}
	c, err := p.FindValueSerializer(t, s.prop)
	if err != nil {
		return nil, err
	}
	s.cache.Store(t, c)
	return c, nil
}

func (s *dynamicSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	if ts := p.TypeSerializer(); ts != nil {
		return s.SerializeWithType(v, g, p, ts)
	}
	if v == nil {
		return p.SerializeNull(g)
	}
	inner, err := s.find(p, v)
	if err != nil {
		return err
	}
	return inner.Serialize(v, g, p)
}

func (s *dynamicSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	if v == nil {
		return p.SerializeNull(g)
	}
	inner, err := s.find(p, v)
	if err != nil {
		return err
	}
	return inner.SerializeWithType(v, g, p, ts)
}

func (s *dynamicSerializer) IsEmpty(p apis.Provider, v any) bool {
	if v == nil {
		return true
	}
	inner, err := s.find(p, v)
	if err != nil {
		return false
	}
	return inner.IsEmpty(p, v)
}

func (s *dynamicSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	v.Any()
	return nil
}

// pointerSerializer writes the pointed-to value, or null.
type pointerSerializer struct {
	p    *Provider
	elem reflect.Type
	prop apis.Property
	ser  func() (apis.Serializer, error)
}

var _ apis.Contextual = (*pointerSerializer)(nil)

func newPointerSerializer(p *Provider, t reflect.Type, prop apis.Property) *pointerSerializer {
	return &pointerSerializer{p: p, elem: t.Elem(), prop: prop, ser: lazySerializer(p, t.Elem(), prop)}
}

func (s *pointerSerializer) CreateContextual(_ apis.Provider, prop apis.Property) (apis.Serializer, error) {
	if prop == nil {
		return s, nil
	}
	return newPointerSerializer(s.p, reflect.PointerTo(s.elem), prop), nil
}

func (s *pointerSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	rv := reflect.ValueOf(v)
	if isNilValue(rv) {
		return p.SerializeNull(g)
	}
	inner, err := s.ser()
	if err != nil {
		return err
	}
	return inner.Serialize(rv.Elem().Interface(), g, p)
}

func (s *pointerSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	if isNilValue(reflect.ValueOf(v)) {
		return p.SerializeNull(g)
	}
	return writeTyped(s, v, g, p, ts)
}

func (s *pointerSerializer) IsEmpty(_ apis.Provider, v any) bool {
	return isNilValue(reflect.ValueOf(v))
}

func (s *pointerSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	inner, err := s.ser()
	if err != nil {
		return err
	}
	v.Nullable()
	return inner.AcceptSchema(v, s.elem)
}

// sliceSerializer writes slices and arrays as JSON arrays.
type sliceSerializer struct {
	p    *Provider
	t    reflect.Type
	prop apis.Property
	ser  func() (apis.Serializer, error)
}

var _ apis.Contextual = (*sliceSerializer)(nil)

func newSliceSerializer(p *Provider, t reflect.Type, prop apis.Property) *sliceSerializer {
	return &sliceSerializer{p: p, t: t, prop: prop, ser: lazySerializer(p, t.Elem(), prop)}
}

func (s *sliceSerializer) CreateContextual(_ apis.Provider, prop apis.Property) (apis.Serializer, error) {
	if prop == nil {
		return s, nil
	}
	return newSliceSerializer(s.p, s.t, prop), nil
}

func (s *sliceSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	rv := reflect.ValueOf(v)
	if isNilValue(rv) {
		return p.SerializeNull(g)
	}
	inner, err := s.ser()
	if err != nil {
		return err
	}
	if apis.UnwrapsSingleElements(p) && s.HasSingleElement(v) {
		return inner.Serialize(rv.Index(0).Interface(), g, p)
	}
	if err := g.WriteStartArray(); err != nil {
		return err
	}
	for i := range rv.Len() {
		if err := inner.Serialize(rv.Index(i).Interface(), g, p); err != nil {
			return atPath(err, "["+strconv.Itoa(i)+"]")
		}
	}
	return g.WriteEndArray()
}

func (s *sliceSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	if isNilValue(reflect.ValueOf(v)) {
		return p.SerializeNull(g)
	}
	return writeTyped(s, v, g, p, ts)
}

func (s *sliceSerializer) IsEmpty(_ apis.Provider, v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.Len() == 0
}

// HasSingleElement reports whether v holds exactly one element.
func (s *sliceSerializer) HasSingleElement(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Len() == 1
}

func (s *sliceSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	inner, err := s.ser()
	if err != nil {
		return err
	}
	if s.t.Kind() == reflect.Slice {
		v.Nullable()
	}
	return inner.AcceptSchema(v.Array(), s.t.Elem())
}

// mapSerializer writes maps as JSON objects with members sorted by name.
type mapSerializer struct {
	p    *Provider
	t    reflect.Type
	prop apis.Property
	ser  func() (apis.Serializer, error)
}

var _ apis.Contextual = (*mapSerializer)(nil)

func newMapSerializer(p *Provider, t reflect.Type, prop apis.Property) *mapSerializer {
	return &mapSerializer{p: p, t: t, prop: prop, ser: lazySerializer(p, t.Elem(), prop)}
}

func (s *mapSerializer) CreateContextual(_ apis.Provider, prop apis.Property) (apis.Serializer, error) {
	if prop == nil {
		return s, nil
	}
	return newMapSerializer(s.p, s.t, prop), nil
}

type member struct {
	name  string
	value any
}

func (s *mapSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	rv := reflect.ValueOf(v)
	if isNilValue(rv) {
		return p.SerializeNull(g)
	}
	members := make([]member, 0, rv.Len())
	for it := rv.MapRange(); it.Next(); {
		name, err := memberName(it.Key().Interface())
		if err != nil {
			return err
		}
		members = append(members, member{name: name, value: it.Value().Interface()})
	}
	inner, err := s.ser()
	if err != nil {
		return err
	}
	return writeMembers(members, inner, g, p)
}

func writeMembers(members []member, inner apis.Serializer, g apis.Generator, p apis.Provider) error {
	slices.SortFunc(members, func(a, b member) int { return cmp.Compare(a.name, b.name) })
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	for _, m := range members {
		if err := g.WriteFieldName(m.name); err != nil {
			return err
		}
		if err := inner.Serialize(m.value, g, p); err != nil {
			return atPath(err, m.name)
		}
	}
	return g.WriteEndObject()
}

// memberName renders a map key the way encoding/json does.
func memberName(k any) (string, error) {
	if tm, ok := k.(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		return string(b), err
	}
	rv := reflect.ValueOf(k)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedKey, k)
	}
}

func (s *mapSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	if isNilValue(reflect.ValueOf(v)) {
		return p.SerializeNull(g)
	}
	return writeTyped(s, v, g, p, ts)
}

func (s *mapSerializer) IsEmpty(_ apis.Provider, v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.Len() == 0
}

func (s *mapSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	inner, err := s.ser()
	if err != nil {
		return err
	}
	v.Nullable()
	return inner.AcceptSchema(v.Map(), s.t.Elem())
}

// containerSerializer writes values that expose their elements through the
// container capabilities: map containers as objects, all others as arrays.
type containerSerializer struct {
	p    *Provider
	t    reflect.Type
	prop apis.Property
	ser  func() (apis.Serializer, error)
}

var _ apis.Contextual = (*containerSerializer)(nil)

func newContainerSerializer(p *Provider, t reflect.Type, prop apis.Property) *containerSerializer {
	return &containerSerializer{p: p, t: t, prop: prop, ser: lazySerializer(p, anyType, prop)}
}

var anyType = reflect.TypeFor[any]()

func (s *containerSerializer) CreateContextual(_ apis.Provider, prop apis.Property) (apis.Serializer, error) {
	if prop == nil {
		return s, nil
	}
	return newContainerSerializer(s.p, s.t, prop), nil
}

func (s *containerSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	if isNilValue(reflect.ValueOf(v)) {
		return p.SerializeNull(g)
	}
	inner, err := s.ser()
	if err != nil {
		return err
	}
	if m, ok := asMap(v); ok {
		var members []member
		for k, val := range m.Entries() {
			name, err := memberName(k)
			if err != nil {
				return err
			}
			members = append(members, member{name: name, value: val})
		}
		return writeMembers(members, inner, g, p)
	}
	if apis.UnwrapsSingleElements(p) && s.HasSingleElement(v) {
		for e := range elements(v) {
			return inner.Serialize(e, g, p)
		}
	}

	if err := g.WriteStartArray(); err != nil {
		return err
	}
	i := 0
	for e := range elements(v) {
		if err := inner.Serialize(e, g, p); err != nil {
			return atPath(err, "["+strconv.Itoa(i)+"]")
		}
		i++
	}
	return g.WriteEndArray()
}

// asMap reports whether v is to be written as an object.
func asMap(v any) (apis.MapIterable, bool) {
	m, ok := v.(apis.MapIterable)
	if !ok {
		return nil, false
	}
	if c, isContainer := v.(apis.Container); isContainer {
		return m, c.Kind() == apis.KindMap
	}
	_, iterable := v.(apis.Iterable)
	_, array := v.(apis.ArrayHolder)
	return m, !iterable && !array
}

func elements(v any) func(func(any) bool) {
	if it, ok := v.(apis.Iterable); ok {
		return it.All()
	}
	if h, ok := v.(apis.ArrayHolder); ok {
		return h.Elements()
	}
	return func(func(any) bool) {}
}

func (s *containerSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	if isNilValue(reflect.ValueOf(v)) {
		return p.SerializeNull(g)
	}
	return writeTyped(s, v, g, p, ts)
}

func (s *containerSerializer) IsEmpty(_ apis.Provider, v any) bool {
	if isNilValue(reflect.ValueOf(v)) {
		return true
	}
	if m, ok := asMap(v); ok {
		for range m.Entries() {
			return false
		}
		return true
	}
	for range elements(v) {
		return false
	}
	return true
}

// HasSingleElement reports whether the sequence v holds exactly one element.
// Map containers report false.
func (s *containerSerializer) HasSingleElement(v any) bool {
	if isNilValue(reflect.ValueOf(v)) {
		return false
	}
	if _, ok := asMap(v); ok {
		return false
	}
	n := 0
	for range elements(v) {
		if n++; n > 1 {
			return false
		}
	}
	return n == 1
}

func (s *containerSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	seq := s.t.Implements(iterableType) || s.t.Implements(arrayHolderType)
	switch {
	case seq && s.t.Implements(mapIterableType):
		v.Any()
	case seq:
		v.Nullable()
		v.Array().Any()
	default:
		v.Nullable()
		v.Map().Any()
	}
	return nil
}

// structSerializer writes exported struct fields as object members, honouring
// json tag names, omitempty and "-". Fields of embedded structs are promoted.
type structSerializer struct {
	t      reflect.Type
	fields []structField
}

type structField struct {
	index     []int
	name      string
	omitEmpty bool
	prop      apis.Property
	ser       func() (apis.Serializer, error)
}

func newStructSerializer(p *Provider, t reflect.Type) *structSerializer {
	s := &structSerializer{t: t}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || (f.Anonymous && uref.StructOf(f.Type) != nil) {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		_, opts, _ := strings.Cut(tag, ",")
		name := uref.JSONName(f)
		prop := NewProperty(name, f.Type, f.Tag)
		s.fields = append(s.fields, structField{
			index:     f.Index,
			name:      name,
			omitEmpty: slices.Contains(strings.Split(opts, ","), "omitempty"),
			prop:      prop,
			ser:       lazySerializer(p, f.Type, prop),
		})
	}
	return s
}

func (s *structSerializer) Serialize(v any, g apis.Generator, p apis.Provider) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return p.SerializeNull(g)
		}
		rv = rv.Elem()
	}
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	for _, f := range s.fields {
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue // nil embedded pointer
		}
		inner, err := f.ser()
		if err != nil {
			return atPath(err, f.name)
		}
		val := fv.Interface()
		if f.omitEmpty && inner.IsEmpty(p, val) {
			continue
		}
		if err := g.WriteFieldName(f.name); err != nil {
			return err
		}
		if err := inner.Serialize(val, g, p); err != nil {
			return atPath(err, f.name)
		}
	}
	return g.WriteEndObject()
}

func (s *structSerializer) SerializeWithType(v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	return writeTyped(s, v, g, p, ts)
}

func (s *structSerializer) IsEmpty(apis.Provider, any) bool { return false }

func (s *structSerializer) AcceptSchema(v apis.SchemaVisitor, _ reflect.Type) error {
	ov, ok := v.Object(s.t)
	if !ok {
		return nil
	}
	defer ov.End()
	for _, f := range s.fields {
		if err := ov.Property(f.prop); err != nil {
			return atPath(err, f.name)
		}
	}
	return nil
}
