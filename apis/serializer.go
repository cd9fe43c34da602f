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

package apis

import "reflect"

// Serializer writes one Go value into a document. This is the contract of the
// generic serialization framework; the lazy wrappers conform to it.
type Serializer interface {
	// Serialize writes v.
	Serialize(v any, g Generator, p Provider) error
	// SerializeWithType writes v surrounded by the type id produced by ts.
	SerializeWithType(v any, g Generator, p Provider, ts TypeSerializer) error
	// IsEmpty reports whether v counts as empty for omission purposes.
	IsEmpty(p Provider, v any) bool
	// AcceptSchema describes the schema of values of type t to v.
	AcceptSchema(v SchemaVisitor, t reflect.Type) error
}

// Contextual is implemented by serializers that specialize per property.
// The provider calls CreateContextual once per property and uses the result.
type Contextual interface {
	CreateContextual(p Provider, prop Property) (Serializer, error)
}

// Generator is a streaming document writer.
type Generator interface {
	WriteNull() error
	// WriteValue writes a scalar (bool, number, string, or a text marshaler).
	WriteValue(v any) error
	WriteStartObject() error
	WriteFieldName(name string) error
	WriteEndObject() error
	WriteStartArray() error
	WriteEndArray() error
}

// Property describes the struct field being serialized.
type Property interface {
	// Name is the document name of the property.
	Name() string
	// Type is the declared Go type of the property.
	Type() reflect.Type
	// Tag is the struct tag of the property.
	Tag() reflect.StructTag
}

// Provider is the per-document serialization context.
type Provider interface {
	// FindValueSerializer returns the (contextualized) serializer for t.
	FindValueSerializer(t reflect.Type, prop Property) (Serializer, error)
	// SerializeNull writes the configured null representation.
	SerializeNull(g Generator) error
	// TypeSerializer returns the type serializer applied to polymorphic
	// (interface-typed) positions, or nil when values are written untyped.
	TypeSerializer() TypeSerializer
}

// SingleElementUnwrapper is implemented by providers that can write an array
// holding exactly one element as that element alone.
type SingleElementUnwrapper interface {
	UnwrapSingleElementArrays() bool
}

// UnwrapsSingleElements reports whether p writes one-element arrays unwrapped.
func UnwrapsSingleElements(p Provider) bool {
	u, ok := p.(SingleElementUnwrapper)
	return ok && u.UnwrapSingleElementArrays()
}

// TypeSerializer embeds type ids around polymorphic values.
type TypeSerializer interface {
	WriteTypePrefix(g Generator, v any) error
	WriteTypeSuffix(g Generator, v any) error
}

// SchemaVisitor receives the schema description of one value position.
type SchemaVisitor interface {
	Provider() Provider
	// Any marks the position as unconstrained.
	Any()
	// Nullable marks the position as also accepting null.
	Nullable()
	// Scalar marks the position as a scalar of the given JSON type.
	Scalar(jsonType string)
	// Array marks the position as an array and returns the items visitor.
	Array() SchemaVisitor
	// Map marks the position as a string-keyed map and returns the values visitor.
	Map() SchemaVisitor
	// Object marks the position as an object of type t. It reports false,
	// leaving the position unconstrained, when t is already being described
	// further up (a recursive type).
	Object(t reflect.Type) (ObjectSchemaVisitor, bool)
}

// ObjectSchemaVisitor receives the properties of an object schema.
type ObjectSchemaVisitor interface {
	// Property describes one property of the object.
	Property(prop Property) error
	// End finishes the object.
	End()
}

// Module plugs type-specific serializers into a Provider.
type Module interface {
	// FindSerializer returns a serializer for t, or nil to defer to the provider.
	FindSerializer(t reflect.Type) Serializer
	// ModifySerializer may wrap the serializer the provider built for t.
	ModifySerializer(t reflect.Type, s Serializer) Serializer
}
