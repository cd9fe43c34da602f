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

// Descriptor describes the entity whose identifier property is sought.
// Reference is nil for concrete (already loaded) entities; Type is nil when
// the Go type is unknown.
type Descriptor struct {
	EntityName string
	Reference  Reference
	Type       reflect.Type
}

// Strategy is a pluggable identifier-extraction step. An IdentifierResolver
// chains multiple strategies in order (e.g., Mapping -> Session -> Accessor).
type Strategy interface {
	// TryResolve returns (property, true) if handled; otherwise ("", false) to
	// fall through. Implementations must not panic or load the entity.
	TryResolve(d Descriptor) (property string, handled bool)
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(d Descriptor) (string, bool)

// TryResolve calls f.
func (f StrategyFunc) TryResolve(d Descriptor) (string, bool) { return f(d) }
