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
	"dirpx.dev/lazyref/apis"
)

// NewMappingStrategy creates an apis.Strategy that uses the static
// entity-name to identifier-property mapping held by reg.
func NewMappingStrategy(reg apis.Registry) apis.Strategy {
	return &mappingStrategy{reg: reg}
}

// mappingStrategy consults a provided apis.Registry (reflection-free lookup).
type mappingStrategy struct {
	reg apis.Registry
}

// Ensure mappingStrategy implements apis.Strategy.
var _ apis.Strategy = (*mappingStrategy)(nil)

// TryResolve looks up the entity name, then the Go type, in the registry.
// Entries without an identifier property fall through.
func (s *mappingStrategy) TryResolve(d apis.Descriptor) (string, bool) {
	if s.reg == nil {
		return "", false
	}
	if e, ok := s.reg.Lookup(d.EntityName); ok && e.IDProperty != "" {
		return e.IDProperty, true
	}
	if e, ok := s.reg.LookupType(d.Type); ok && e.IDProperty != "" {
		return e.IDProperty, true
	}
	return "", false
}
