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

package collection

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/lazyref/apis"
)

// ErrUnsupportedContainer is returned for containers whose kind or shape
// cannot be iterated or converted.
var ErrUnsupportedContainer = errors.New("lazyref(collection): unsupported container")

var anyType = reflect.TypeFor[any]()

// ToPlain converts v into a plain Go value when it is still a runtime
// container: Set, List, Bag, IdentifierBag and Array become a slice, Map
// becomes a map. The element type is the common runtime type of the
// elements, or any when they differ. Other values are returned unchanged.
func ToPlain(v any) (any, error) {
	c, ok := v.(apis.Container)
	if !ok {
		return v, nil
	}
	if c.Kind() == apis.KindMap {
		return plainMap(c)
	}
	seq, err := Elements(c)
	if err != nil {
		return nil, err
	}
	var elems []any
	for e := range seq {
		elems = append(elems, e)
	}
	out := reflect.MakeSlice(reflect.SliceOf(commonType(elems)), len(elems), len(elems))
	for i, e := range elems {
		if e != nil {
			out.Index(i).Set(reflect.ValueOf(e))
		}
	}
	return out.Interface(), nil
}

func plainMap(c apis.Container) (any, error) {
	m, ok := c.(apis.MapIterable)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not expose map entries", ErrUnsupportedContainer, c)
	}
	var keys, vals []any
	for k, v := range m.Entries() {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	kt, vt := commonType(keys), commonType(vals)
	if !kt.Comparable() {
		return nil, fmt.Errorf("%w: map key type %s is not comparable", ErrUnsupportedContainer, kt)
	}
	out := reflect.MakeMapWithSize(reflect.MapOf(kt, vt), len(keys))
	for i, k := range keys {
		if k == nil {
			return nil, fmt.Errorf("%w: nil map key", ErrUnsupportedContainer)
		}
		val := reflect.Zero(vt)
		if vals[i] != nil {
			val = reflect.ValueOf(vals[i])
		}
		out.SetMapIndex(reflect.ValueOf(k), val)
	}
	return out.Interface(), nil
}

// commonType returns the single runtime type shared by all values. A nil
// value only fits types that can hold nil.
func commonType(values []any) reflect.Type {
	var t reflect.Type
	sawNil := false
	for _, v := range values {
		if v == nil {
			sawNil = true
			continue
		}
		vt := reflect.TypeOf(v)
		if t == nil {
			t = vt
		} else if t != vt {
			return anyType
		}
	}
	if t == nil || (sawNil && !nilable(t)) {
		return anyType
	}
	return t
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// HasSingleElement reports whether v holds exactly one element. Unloaded
// containers report false; counting them is not worth a load.
func HasSingleElement(v any) bool {
	if c, ok := v.(apis.Container); ok {
		if !c.WasInitialized() {
			return false
		}
		if c.Kind() == apis.KindMap {
			m, ok := c.(apis.MapIterable)
			return ok && count2(m) == 1
		}
		seq, err := Elements(c)
		if err != nil {
			return false
		}
		n := 0
		for range seq {
			if n++; n > 1 {
				return false
			}
		}
		return n == 1
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 1
	default:
		return false
	}
}

// SingleElement returns the sole element of a one-element sequence: an
// initialized non-map container, a slice or an array.
func SingleElement(v any) (any, bool) {
	if c, ok := v.(apis.Container); ok {
		if !c.WasInitialized() || c.Kind() == apis.KindMap {
			return nil, false
		}
		seq, err := Elements(c)
		if err != nil {
			return nil, false
		}
		var sole any
		n := 0
		for e := range seq {
			if n++; n > 1 {
				return nil, false
			}
			sole = e
		}
		return sole, n == 1
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 1 {
			return rv.Index(0).Interface(), true
		}
	}
	return nil, false
}

func count2(m apis.MapIterable) int {
	n := 0
	for range m.Entries() {
		if n++; n > 1 {
			break
		}
	}
	return n
}
