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

package apis

import "reflect"

// Registry is the entity catalogue: it maps entity names to Go types and
// identifier properties. It backs the explicit mapping strategy and the
// name-to-type lookup of the entity builder.
type Registry interface {
	// Register associates an entity name with the nearest named type of t and
	// an identifier property. t may be nil and idProperty may be empty, but not
	// both. Re-registering the same triple is a no-op.
	Register(name string, t reflect.Type, idProperty string) error
	// Lookup returns the entry registered under name.
	Lookup(name string) (Entry, bool)
	// LookupType returns the entry registered for the nearest named type of t.
	LookupType(t reflect.Type) (Entry, bool)
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered entries.
	Count() int
	// Reset clears all registered entries.
	Reset()
}

// Entry is a single catalogue record in a Registry snapshot.
type Entry struct {
	// Name is the entity name.
	Name string
	// Type is the registered Go type, or nil.
	Type reflect.Type
	// IDProperty is the identifier property, or "".
	IDProperty string
}
