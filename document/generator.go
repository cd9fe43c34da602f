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
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/lazyref/apis"
)

// ErrInvalidState is returned when generator calls do not form a well-formed document.
var ErrInvalidState = errors.New("lazyref(document): invalid generator state")

type frameKind uint8

const (
	frameObject frameKind = iota + 1
	frameArray
)

type frame struct {
	kind    frameKind
	count   int
	hasName bool // object frame: a field name awaits its value
}

// Generator writes one JSON document into memory.
type Generator struct {
	buf   bytes.Buffer
	stack []frame
	done  bool
}

var _ apis.Generator = (*Generator)(nil)

// NewGenerator returns an empty Generator.
func NewGenerator() *Generator { return &Generator{} }

// Bytes returns the document written so far.
func (g *Generator) Bytes() []byte { return bytes.Clone(g.buf.Bytes()) }

// Complete reports whether a full root value has been written.
func (g *Generator) Complete() bool { return g.done && len(g.stack) == 0 }

// beforeValue emits the separator a value needs and books the value in its frame.
func (g *Generator) beforeValue() error {
	if len(g.stack) == 0 {
		if g.done {
			return fmt.Errorf("%w: root value already written", ErrInvalidState)
		}
		return nil
	}
	top := &g.stack[len(g.stack)-1]
	switch top.kind {
	case frameObject:
		if !top.hasName {
			return fmt.Errorf("%w: value without field name", ErrInvalidState)
		}
		top.hasName = false
	case frameArray:
		if top.count > 0 {
			g.buf.WriteByte(',')
		}
	}
	top.count++
	return nil
}

func (g *Generator) afterValue() {
	if len(g.stack) == 0 {
		g.done = true
	}
}

// WriteNull writes null.
func (g *Generator) WriteNull() error {
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.buf.WriteString("null")
	g.afterValue()
	return nil
}

// WriteValue writes a scalar: a bool, a number, a string, or a value
// implementing json.Marshaler or encoding.TextMarshaler.
func (g *Generator) WriteValue(v any) error {
	if v == nil {
		return g.WriteNull()
	}
	if !isScalar(v) {
		return fmt.Errorf("%w: %T is not a scalar", ErrInvalidState, v)
	}
	b, err := encode(v)
	if err != nil {
		return err
	}
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.buf.Write(b)
	g.afterValue()
	return nil
}

// encode marshals v without HTML escaping, so '<', '>' and '&' are written as is.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case json.Marshaler, encoding.TextMarshaler:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return reflect.TypeOf(v).Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}

// WriteStartObject opens an object.
func (g *Generator) WriteStartObject() error {
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.buf.WriteByte('{')
	g.stack = append(g.stack, frame{kind: frameObject})
	return nil
}

// WriteFieldName writes the name of the next object member.
func (g *Generator) WriteFieldName(name string) error {
	if len(g.stack) == 0 {
		return fmt.Errorf("%w: field name outside object", ErrInvalidState)
	}
	top := &g.stack[len(g.stack)-1]
	if top.kind != frameObject || top.hasName {
		return fmt.Errorf("%w: unexpected field name %q", ErrInvalidState, name)
	}
	if top.count > 0 {
		g.buf.WriteByte(',')
	}
	b, err := encode(name)
	if err != nil {
		return err
	}
	g.buf.Write(b)
	g.buf.WriteByte(':')
	top.hasName = true
	return nil
}

// WriteEndObject closes the innermost object.
func (g *Generator) WriteEndObject() error {
	return g.end(frameObject, '}')
}

// WriteStartArray opens an array.
func (g *Generator) WriteStartArray() error {
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.buf.WriteByte('[')
	g.stack = append(g.stack, frame{kind: frameArray})
	return nil
}

// WriteEndArray closes the innermost array.
func (g *Generator) WriteEndArray() error {
	return g.end(frameArray, ']')
}

func (g *Generator) end(kind frameKind, c byte) error {
	if len(g.stack) == 0 {
		return fmt.Errorf("%w: nothing to close", ErrInvalidState)
	}
	top := g.stack[len(g.stack)-1]
	if top.kind != kind || top.hasName {
		return fmt.Errorf("%w: mismatched close %q", ErrInvalidState, c)
	}
	g.stack = g.stack[:len(g.stack)-1]
	g.buf.WriteByte(c)
	g.afterValue()
	return nil
}
