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

import "iter"

// Reference is a handle to a single entity owned by a persistence runtime.
// The entity may or may not be loaded. Once IsInitialized reports true it
// never reverts, and Implementation is stable from then on.
type Reference interface {
	// EntityName returns the name of the entity type the handle stands for.
	EntityName() string
	// Identifier returns the identifier of the referenced entity. It never loads.
	Identifier() any
	// IsInitialized reports whether the entity has been loaded.
	IsInitialized() bool
	// Initialize loads the entity. It may block on I/O.
	Initialize() error
	// Implementation returns the loaded entity, or nil if not loaded.
	Implementation() any
}

// SessionHolder is implemented by references that expose the runtime session
// that created them. The session shape is runtime-specific and deliberately
// untyped: it has changed between runtime versions.
type SessionHolder interface {
	Session() any
}

// SessionFactoryHolder is the current session shape: a session that can hand
// out its factory.
type SessionFactoryHolder interface {
	Factory() SessionFactory
}

// SessionFactory answers metadata questions about mapped entity types.
type SessionFactory interface {
	// IdentifierPropertyName returns the identifier property of entityName.
	IdentifierPropertyName(entityName string) (string, bool)
}

// Container is a collection or map owned by a persistence runtime whose
// backing store may not be loaded yet. Kind is fixed at construction.
type Container interface {
	Kind() Kind
	WasInitialized() bool
	// ForceInitialization loads the backing store. It may block on I/O.
	ForceInitialization() error
	// Value returns the backing store.
	Value() any
}

// ArrayHolder exposes the elements of a KindArray container.
type ArrayHolder interface {
	Elements() iter.Seq[any]
}

// Iterable exposes the elements of Bag, IdentifierBag, List and Set containers.
type Iterable interface {
	All() iter.Seq[any]
}

// MapIterable exposes the entries of a KindMap container.
type MapIterable interface {
	Entries() iter.Seq2[any, any]
}

// Identifiable lets an entity accept its identifier without privileged
// field access.
type Identifiable interface {
	SetIdentifier(id any) error
}

// Namer lets an entity type choose its own entity name.
type Namer interface {
	EntityName() string
}
