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
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"unsafe"
)

var (
	// ErrFieldNotFound is returned when no field matches in the embedding chain.
	ErrFieldNotFound = errors.New("reflect: field not found")
	// ErrNotStruct is returned when the target is not a struct or pointer to struct.
	ErrNotStruct = errors.New("reflect: target is not a struct")
	// ErrNotAddressable is returned when a field write targets a value, not a pointer.
	ErrNotAddressable = errors.New("reflect: target is not a non-nil pointer")
	// ErrValueNotAssignable is returned when a value cannot be stored in a field.
	ErrValueNotAssignable = errors.New("reflect: value not assignable to field")
)

// StructOf unwraps pointers and returns the struct type underneath t, or nil.
func StructOf(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// FieldMatcher selects a struct field.
type FieldMatcher func(f reflect.StructField) bool

// FindFieldFunc walks the fields of t breadth-first, from the most-derived
// struct down through embedded structs. At each depth the matchers are tried
// in order over all fields of that depth; the first match wins. The returned
// field carries the full index path from t.
func FindFieldFunc(t reflect.Type, matchers ...FieldMatcher) (reflect.StructField, bool) {
	st := StructOf(t)
	if st == nil {
		return reflect.StructField{}, false
	}

	type node struct {
		t     reflect.Type
		index []int
	}
	level := []node{{t: st}}
	seen := map[reflect.Type]bool{}
	for len(level) > 0 {
		var fields []reflect.StructField
		var next []node
		for _, n := range level {
			if seen[n.t] {
				continue
			}
			seen[n.t] = true
			for i := range n.t.NumField() {
				f := n.t.Field(i)
				f.Index = append(slices.Clone(n.index), i)
				fields = append(fields, f)
				if f.Anonymous {
					if et := StructOf(f.Type); et != nil {
						next = append(next, node{t: et, index: f.Index})
					}
				}
			}
		}
		for _, m := range matchers {
			for _, f := range fields {
				if m(f) {
					return f, true
				}
			}
		}
		level = next
	}
	return reflect.StructField{}, false
}

// FindField locates a property by name: exact Go field name first, then the
// json tag name, then a case-insensitive field name.
func FindField(t reflect.Type, name string) (reflect.StructField, bool) {
	if name == "" {
		return reflect.StructField{}, false
	}
	return FindFieldFunc(t,
		func(f reflect.StructField) bool { return f.Name == name },
		func(f reflect.StructField) bool { return jsonName(f) == name },
		func(f reflect.StructField) bool { return strings.EqualFold(f.Name, name) },
	)
}

// GetField reads the named property of obj (a struct or pointer to struct),
// including unexported fields.
func GetField(obj any, name string) (any, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, ErrNotAddressable
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}
	f, ok := FindField(v.Type(), name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, v.Type(), name)
	}
	if !v.CanAddr() {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}
	fv, ok := fieldByIndex(v, f.Index, false)
	if !ok {
		return nil, nil
	}
	return privileged(fv).Interface(), nil
}

// SetField writes value into the named property of obj, which must be a
// non-nil pointer to struct. Unexported fields are written with privileged
// access; nil embedded pointers on the path are allocated.
func SetField(obj any, name string, value any) error {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrNotAddressable
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrNotStruct
	}
	f, ok := FindField(v.Type(), name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrFieldNotFound, v.Type(), name)
	}
	fv, _ := fieldByIndex(v, f.Index, true)
	fv = privileged(fv)

	val, err := assignable(value, fv.Type())
	if err != nil {
		return fmt.Errorf("%w: %s.%s: %v", ErrValueNotAssignable, v.Type(), f.Name, err)
	}
	fv.Set(val)
	return nil
}

// fieldByIndex walks index from v. With alloc, nil embedded pointers are
// allocated; without it, a nil pointer on the path reports false.
func fieldByIndex(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}
				privileged(v).Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// privileged returns a settable view of the addressable value v, bypassing
// the unexported-field restriction.
func privileged(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// assignable adapts value to type t: direct assignment, pointer-to-value
// wrapping, then conversion between same-class kinds (numbers to numbers,
// strings to strings). Numeric-to-string conversion is rejected, and so is
// any numeric conversion that would not preserve the value.
func assignable(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if t.Kind() == reflect.Ptr && v.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil
	}
	if v.Type().ConvertibleTo(t) && sameClass(v.Kind(), t.Kind()) {
		if kindClass(t.Kind()) == 1 {
			return convertExact(v, t)
		}
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
}

// convertExact converts the number v to t and fails when t cannot hold the
// same value: magnitudes out of range, negatives into unsigned kinds and
// floats with a fractional part into integer kinds.
func convertExact(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	zero := reflect.Zero(t)
	var lossy bool
	switch {
	case isFloat(v.Kind()):
		f := v.Float()
		switch {
		case isSigned(t.Kind()):
			lossy = f != math.Trunc(f) || f < -0x1p63 || f >= 0x1p63 || zero.OverflowInt(int64(f))
		case isUnsigned(t.Kind()):
			lossy = f != math.Trunc(f) || f < 0 || f >= 0x1p64 || zero.OverflowUint(uint64(f))
		default:
			lossy = zero.OverflowFloat(f) || v.Convert(t).Float() != f
		}
	case isSigned(v.Kind()):
		i := v.Int()
		switch {
		case isSigned(t.Kind()):
			lossy = zero.OverflowInt(i)
		case isUnsigned(t.Kind()):
			lossy = i < 0 || zero.OverflowUint(uint64(i))
		default:
			f := v.Convert(t).Float()
			lossy = f < -0x1p63 || f >= 0x1p63 || int64(f) != i
		}
	default:
		u := v.Uint()
		switch {
		case isSigned(t.Kind()):
			lossy = u > math.MaxInt64 || zero.OverflowInt(int64(u))
		case isUnsigned(t.Kind()):
			lossy = zero.OverflowUint(u)
		default:
			f := v.Convert(t).Float()
			lossy = f >= 0x1p64 || uint64(f) != u
		}
	}
	if lossy {
		return reflect.Value{}, fmt.Errorf("%s value %v does not fit %s", v.Type(), v, t)
	}
	return v.Convert(t), nil
}

func isSigned(k reflect.Kind) bool { return k >= reflect.Int && k <= reflect.Int64 }

func isUnsigned(k reflect.Kind) bool { return k >= reflect.Uint && k <= reflect.Uintptr }

func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func sameClass(a, b reflect.Kind) bool {
	return kindClass(a) != 0 && kindClass(a) == kindClass(b)
}

func kindClass(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	default:
		return 0
	}
}

// JSONName returns the json tag name of f, or f.Name when untagged.
// A "-" tag yields "-".
func JSONName(f reflect.StructField) string {
	if n := jsonName(f); n != "" {
		return n
	}
	return f.Name
}

func jsonName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}
