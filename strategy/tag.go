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
	"reflect"
	"strings"

	"dirpx.dev/lazyref/apis"
	uref "dirpx.dev/lazyref/utils/reflect"
)

// TagKey is the struct tag that marks the identifier field of an entity:
//
//	type Tag struct {
//		Key  uuid.UUID `lazy:"id"`
//		Name string
//	}
const TagKey = "lazy"

// IdentifierNamer is implemented by entity types that name their identifier
// property themselves.
type IdentifierNamer interface {
	IdentifierProperty() string
}

var identifierNamerType = reflect.TypeFor[IdentifierNamer]()

// NewTagStrategy creates an apis.Strategy that inspects the Go type of a
// concrete entity. It tries, in order: a field tagged `lazy:"id"` (most
// derived struct first, then embedded structs), the IdentifierNamer method,
// and finally a field named ID or Id.
func NewTagStrategy() apis.Strategy {
	return apis.StrategyFunc(tagResolve)
}

func tagResolve(d apis.Descriptor) (string, bool) {
	t := d.Type
	if t == nil {
		return "", false
	}
	if f, ok := uref.FindFieldFunc(t, isTaggedID); ok {
		return f.Name, true
	}
	if name, ok := namerProperty(t); ok {
		return name, true
	}
	if f, ok := uref.FindFieldFunc(t,
		func(f reflect.StructField) bool { return f.Name == "ID" },
		func(f reflect.StructField) bool { return f.Name == "Id" },
	); ok {
		return f.Name, true
	}
	return "", false
}

func isTaggedID(f reflect.StructField) bool {
	tag, ok := f.Tag.Lookup(TagKey)
	if !ok {
		return false
	}
	for opt := range strings.SplitSeq(tag, ",") {
		if strings.TrimSpace(opt) == "id" {
			return true
		}
	}
	return false
}

// namerProperty calls IdentifierProperty on a zero value of t.
func namerProperty(t reflect.Type) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()
	var v reflect.Value
	switch {
	case t.Implements(identifierNamerType):
		if t.Kind() == reflect.Ptr {
			v = reflect.New(t.Elem())
		} else {
			v = reflect.Zero(t)
		}
	case reflect.PointerTo(t).Implements(identifierNamerType):
		v = reflect.New(t)
	default:
		return "", false
	}
	name = v.Interface().(IdentifierNamer).IdentifierProperty()
	return name, name != ""
}
