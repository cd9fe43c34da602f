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

// Package lazyref serializes object graphs that hold lazy references and
// lazy containers owned by a persistence runtime, without triggering
// unintended loads.
//
// A lazy reference (apis.Reference) stands for a single entity; a lazy
// container (apis.Container) for a collection or map. When a serializer
// meets one it either writes the loaded value, loads it first
// (ForceLazyLoading), writes an identifier-only placeholder
// (SerializeIdentifierForUnloaded) or writes null. Containers are handled the
// same way element by element. With ReplacePersistentContainers, runtime
// container types are stripped before type-tagged output so that the type
// ids in the document name plain Go types.
//
// # Design
//
// The package holds a read-mostly global snapshot (state):
//
//   - Config: the feature set, static identifier mapping, type
//     normalization depth and the accessor slot name.
//
//   - Registry: the entity catalogue mapping entity names to Go types and
//     identifier properties. Register adds to it at runtime.
//
//   - Module: the serialization module (serializer.Module) holding the
//     identifier strategy chains, the entity builder, and the reference and
//     container resolvers. It plugs into any provider implementing the
//     apis.Provider contract; the package also serves it through a
//     document.Provider.
//
//   - Builder: composes Registry and Module from Config and an extension
//     context (builder.Runtime for the default builder).
//
// Readers load the current snapshot atomically and never lock:
//
//	out, err := lazyref.Serialize(order)
//
// Writers (SetConfig, SetFeatures, SetBuilder, SetRuntime, SetExt,
// SetRegistry, SetModule, SetAll) take a short build mutex, rebuild the
// unpinned layers and publish a new snapshot. Build errors, such as a
// runtime initializer without the identifier accessor slot, are returned
// and leave the previous snapshot in place.
//
// # Pinning
//
// SetRegistry and SetModule pin the layer they set: later rebuilds keep it
// until UnpinRegistry or UnpinModule.
//
// # Identifier placeholders
//
// The identifier property of an unloaded reference is found by, in order:
// the configured mapping, the session that created the reference, the
// runtime initializer's accessor slot, and finally the entity name itself.
// The last step is best effort and not round-trip-safe. Concrete elements
// of containers use the configured session factory, the mapping, the
// `lazy:"id"` struct tag and the conventional ID field.
package lazyref
