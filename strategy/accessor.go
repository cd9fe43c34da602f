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

package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/lazyref/apis"
	uref "dirpx.dev/lazyref/utils/reflect"
)

// ErrAccessorSlotMissing is returned at setup when the runtime initializer
// type has no accessor slot. It means the runtime version is incompatible.
var ErrAccessorSlotMissing = errors.New("lazyref(strategy): runtime initializer has no identifier accessor slot")

// NewAccessorStrategy creates an apis.Strategy that reads the identifier
// accessor a runtime initializer keeps in a private field named slot.
// initType is the runtime's initializer type (pointer or struct). The slot
// must hold a string method name or a reflect.Method.
func NewAccessorStrategy(initType reflect.Type, slot string) (apis.Strategy, error) {
	st := uref.StructOf(initType)
	if st == nil {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrAccessorSlotMissing, initType)
	}
	f, ok := st.FieldByName(slot)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrAccessorSlotMissing, st, slot)
	}
	switch f.Type {
	case reflect.TypeOf(""), reflect.TypeOf(reflect.Method{}):
	default:
		return nil, fmt.Errorf("%w: %s.%s has type %s", ErrAccessorSlotMissing, st, slot, f.Type)
	}
	return &accessorStrategy{st: st, slot: slot}, nil
}

type accessorStrategy struct {
	st   reflect.Type
	slot string
}

var _ apis.Strategy = (*accessorStrategy)(nil)

// TryResolve reads the slot of references whose type is the initializer type.
func (s *accessorStrategy) TryResolve(d apis.Descriptor) (string, bool) {
	if d.Reference == nil || uref.StructOf(reflect.TypeOf(d.Reference)) != s.st {
		return "", false
	}
	v, err := uref.GetField(d.Reference, s.slot)
	if err != nil {
		return "", false
	}
	var method string
	switch m := v.(type) {
	case string:
		method = m
	case reflect.Method:
		method = m.Name
	}
	if method == "" {
		return "", false
	}
	return PropertyName(method), true
}

// PropertyName derives a property name from an accessor name: a leading
// "get"/"Get" is stripped and the next character lower-cased. A run of two
// capitals, as in "GetID" or "GetURL", is left as is.
func PropertyName(method string) string {
	name := method
	if len(name) > 3 && strings.EqualFold(name[:3], "get") {
		name = name[3:]
	}
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	if second, _ := utf8.DecodeRuneInString(name[size:]); unicode.IsUpper(first) && unicode.IsUpper(second) {
		return name
	}
	return string(unicode.ToLower(first)) + name[size:]
}
