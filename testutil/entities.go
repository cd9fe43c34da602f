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

package testutil

import (
	"reflect"

	"github.com/google/uuid"

	"dirpx.dev/lazyref/apis"
)

// Customer is keyed by a conventional ID field.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Tag is keyed by a tagged UUID field.
type Tag struct {
	Key   uuid.UUID `json:"key" lazy:"id"`
	Label string    `json:"label"`
}

// Line is an order line.
type Line struct {
	ID  int64 `json:"id"`
	Qty int   `json:"qty"`
}

// Order holds a lazy reference and lazy containers the way the runtime
// injects them.
type Order struct {
	ID       int64          `json:"id"`
	Number   string         `json:"number,omitempty"`
	Customer apis.Reference `json:"customer" persist:"many_to_one,fetch=lazy,target=Customer"`
	Tags     any            `json:"tags" persist:"many_to_many"`
	Lines    any            `json:"lines,omitempty" persist:"one_to_many,fetch=eager"`
	Notes    any            `json:"notes,omitempty"`
}

// Entity carries the identifier shared by embedding types.
type Entity struct {
	ID int64 `json:"id"`
}

// Invoice inherits its identifier from Entity.
type Invoice struct {
	Entity
	Amount float64 `json:"amount"`
}

// Account names its identifier through IdentifierProperty.
type Account struct {
	Code  string `json:"code"`
	Owner string `json:"owner"`
}

// IdentifierProperty reports the identifier property of Account.
func (Account) IdentifierProperty() string { return "Code" }

// Secret keeps its identifier in an unexported field.
type Secret struct {
	id    int64
	Label string `json:"label"`
}

// SecretID returns the private identifier of s.
func (s *Secret) SecretID() int64 { return s.id }

// Badge is keyed by a narrow unsigned identifier.
type Badge struct {
	ID    uint8  `json:"id"`
	Label string `json:"label,omitempty"`
}

// Counter is not a struct and cannot be instantiated as a placeholder.
type Counter int

// Keyed accepts its identifier through apis.Identifiable.
type Keyed struct {
	key string
	Set int `json:"-"`
}

// SetIdentifier implements apis.Identifiable.
func (k *Keyed) SetIdentifier(id any) error {
	k.key, _ = id.(string)
	k.Set++
	return nil
}

// Key returns the identifier received through SetIdentifier.
func (k *Keyed) Key() string { return k.key }

// Entities lists the in-memory entity catalogue with identifier properties.
var Entities = []apis.Entry{
	{Name: "Customer", Type: reflect.TypeFor[Customer](), IDProperty: "ID"},
	{Name: "Tag", Type: reflect.TypeFor[Tag](), IDProperty: "Key"},
	{Name: "Line", Type: reflect.TypeFor[Line](), IDProperty: "ID"},
	{Name: "Order", Type: reflect.TypeFor[Order](), IDProperty: "ID"},
	{Name: "Invoice", Type: reflect.TypeFor[Invoice](), IDProperty: "ID"},
	{Name: "Account", Type: reflect.TypeFor[Account](), IDProperty: "Code"},
	{Name: "Secret", Type: reflect.TypeFor[Secret](), IDProperty: "id"},
	{Name: "Counter", Type: reflect.TypeFor[Counter]()},
	{Name: "Keyed", Type: reflect.TypeFor[Keyed](), IDProperty: "key"},
	{Name: "Badge", Type: reflect.TypeFor[Badge](), IDProperty: "ID"},
}

// Register registers every entity of the catalogue in reg.
func Register(reg apis.Registry) error {
	for _, e := range Entities {
		if err := reg.Register(e.Name, e.Type, e.IDProperty); err != nil {
			return err
		}
	}
	return nil
}

// Types registers the catalogue types without identifier properties, so
// identifier lookups must come from another strategy.
func Types(reg apis.Registry) error {
	for _, e := range Entities {
		if err := reg.Register(e.Name, e.Type, ""); err != nil {
			return err
		}
	}
	return nil
}
