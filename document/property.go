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

type property struct {
	name string
	typ  reflect.Type
	tag  reflect.StructTag
}

// NewProperty returns an apis.Property for a value named name of declared type t.
func NewProperty(name string, t reflect.Type, tag reflect.StructTag) apis.Property {
	return property{name: name, typ: t, tag: tag}
}

func (p property) Name() string           { return p.name }
func (p property) Type() reflect.Type     { return p.typ }
func (p property) Tag() reflect.StructTag { return p.tag }
