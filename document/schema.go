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
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"dirpx.dev/lazyref/apis"
)

type schemaState struct {
	visiting map[reflect.Type]bool
}

// schemaVisitor collects the schema of one value position.
type schemaVisitor struct {
	p     *Provider
	state *schemaState

	jsonType string
	nullable bool
	items    *schemaVisitor
	values   *schemaVisitor
	object   bool
	props    []namedSchema
}

type namedSchema struct {
	name   string
	schema *schemaVisitor
}

var _ apis.SchemaVisitor = (*schemaVisitor)(nil)

func newSchemaVisitor(p *Provider, state *schemaState) *schemaVisitor {
	return &schemaVisitor{p: p, state: state}
}

func (v *schemaVisitor) Provider() apis.Provider { return v.p }

func (v *schemaVisitor) Any() {}

func (v *schemaVisitor) Nullable() { v.nullable = true }

func (v *schemaVisitor) Scalar(jsonType string) { v.jsonType = jsonType }

func (v *schemaVisitor) Array() apis.SchemaVisitor {
	v.jsonType = "array"
	v.items = newSchemaVisitor(v.p, v.state)
	return v.items
}

func (v *schemaVisitor) Map() apis.SchemaVisitor {
	v.jsonType = "object"
	v.values = newSchemaVisitor(v.p, v.state)
	return v.values
}

func (v *schemaVisitor) Object(t reflect.Type) (apis.ObjectSchemaVisitor, bool) {
	if v.state.visiting[t] {
		return nil, false
	}
	v.state.visiting[t] = true
	v.jsonType = "object"
	v.object = true
	return &objectVisitor{parent: v, t: t}, true
}

func (v *schemaVisitor) result() map[string]any {
	out := map[string]any{}
	switch {
	case v.jsonType == "":
	case v.nullable && v.jsonType != "null":
		out["type"] = []any{v.jsonType, "null"}
	default:
		out["type"] = v.jsonType
	}
	if v.items != nil {
		out["items"] = v.items.result()
	}
	if v.values != nil {
		out["additionalProperties"] = v.values.result()
	}
	if v.object {
		props := map[string]any{}
		for _, ps := range v.props {
			props[ps.name] = ps.schema.result()
		}
		out["properties"] = props
	}
	return out
}

type objectVisitor struct {
	parent *schemaVisitor
	t      reflect.Type
}

func (o *objectVisitor) Property(prop apis.Property) error {
	s, err := o.parent.p.FindValueSerializer(prop.Type(), prop)
	if err != nil {
		return err
	}
	child := newSchemaVisitor(o.parent.p, o.parent.state)
	if err := s.AcceptSchema(child, prop.Type()); err != nil {
		return err
	}
	o.parent.props = append(o.parent.props, namedSchema{name: prop.Name(), schema: child})
	return nil
}

func (o *objectVisitor) End() { delete(o.parent.state.visiting, o.t) }

// ValidateSchema checks that schema compiles as a JSON Schema.
func ValidateSchema(schema map[string]any) error {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	return nil
}

// Validate checks doc against schema. Violations are reported as one error
// wrapping ErrSchemaViolation.
func Validate(schema map[string]any, doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("%w: malformed JSON", ErrSchemaViolation)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}
