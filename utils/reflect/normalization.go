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

package reflect

import (
	"errors"
	"reflect"

	"dirpx.dev/lazyref/apis"
)

// defaultMaxUnwrap mirrors config.DefaultMaxUnwrap; config imports apis, and
// apis must stay import-free.
const defaultMaxUnwrap = 8

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping containers)
	// does not contain a named type (e.g., anonymous struct, func, interface{}).
	ErrReflectTypeNotNamed = errors.New("reflect: type has no registered name")
)

// Normalize unwraps containers according to cfg.MaxUnwrap and returns the
// nearest named inner type, or an error if none is found.
//
// Unwrapping policy:
//   - ptr/slice/array/chan  -> Elem()
//   - map[K]V: the element side is the entity side; if V is named it is
//     returned, otherwise unwrapping continues into V.
//   - default: if t.Name() != "", return t; otherwise ErrReflectTypeNotNamed.
//
// If MaxUnwrap <= 0, the default of 8 is used.
func Normalize(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = defaultMaxUnwrap
	}

	for i := 0; t != nil && i < maxUnwrap; i++ {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()

		case reflect.Map:
			et := t.Elem()
			if et.Name() != "" {
				return et, nil
			}
			t = et

		default:
			// Named, return; anonymous -> error
			if t.Name() != "" {
				return t, nil
			}
			return nil, ErrReflectTypeNotNamed
		}
	}

	// After reaching max depth, ensure we ended on a named type.
	if t != nil && t.Name() != "" {
		return t, nil
	}
	return nil, ErrReflectTypeNotNamed
}
