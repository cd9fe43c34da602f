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
	"reflect"

	"dirpx.dev/lazyref/apis"
)

// WrapperArray writes typed values as a two-element array:
//
//	["<type id>", <value>]
//
// The type id is the Go type of the value as printed by reflect.
type WrapperArray struct{}

var _ apis.TypeSerializer = WrapperArray{}

// TypeID returns the type id of v.
func TypeID(v any) string {
	if v == nil {
		return ""
	}
	return reflect.TypeOf(v).String()
}

// WriteTypePrefix opens the wrapper array and writes the type id.
func (WrapperArray) WriteTypePrefix(g apis.Generator, v any) error {
	if err := g.WriteStartArray(); err != nil {
		return err
	}
	return g.WriteValue(TypeID(v))
}

// WriteTypeSuffix closes the wrapper array.
func (WrapperArray) WriteTypeSuffix(g apis.Generator, _ any) error {
	return g.WriteEndArray()
}

// writeTyped surrounds the output of s with the type id of v.
func writeTyped(s apis.Serializer, v any, g apis.Generator, p apis.Provider, ts apis.TypeSerializer) error {
	if err := ts.WriteTypePrefix(g, v); err != nil {
		return err
	}
	if err := s.Serialize(v, g, p); err != nil {
		return err
	}
	return ts.WriteTypeSuffix(g, v)
}
