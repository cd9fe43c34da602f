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

// EntityBuilder constructs identifier-only stand-ins for entities.
type EntityBuilder interface {
	// Build returns a fresh instance of typeName whose idProperty holds id.
	Build(typeName, idProperty string, id any) (any, error)
	// FromObject returns a fresh instance of o's type carrying only o's identifier.
	FromObject(o any) (any, error)
}

// Builder composes a Registry and a Module from a Config.
// Implementations may migrate state from previous instances, or ignore them.
type Builder interface {
	// BuildRegistry constructs a Registry for Config. May migrate entries from reg.
	// ext is an optional extension context. Its meaning is implementation-defined.
	BuildRegistry(cfg Config, reg Registry, ext any) Registry
	// BuildModule constructs the serialization Module for Config and Registry.
	// ext is an optional extension context. Its meaning is implementation-defined.
	BuildModule(cfg Config, reg Registry, ext any) (Module, error)
}
