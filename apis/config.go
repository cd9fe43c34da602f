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

import (
	"fmt"
	"strings"
)

// Feature is a single toggle of the lazy serialization engine.
type Feature uint32

const (
	// ForceLazyLoading loads unloaded references and containers before
	// serializing them.
	ForceLazyLoading Feature = 1 << iota
	// SerializeIdentifierForUnloaded emits identifier-only placeholders for
	// unloaded references instead of null.
	SerializeIdentifierForUnloaded
	// ReplacePersistentContainers converts runtime containers to plain slices
	// and maps before type-tagged emission.
	ReplacePersistentContainers
	// RequireExplicitLazyMarker treats properties without a fetch marker as eager.
	RequireExplicitLazyMarker
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{ForceLazyLoading, "force_lazy_loading"},
	{SerializeIdentifierForUnloaded, "serialize_identifier_for_unloaded"},
	{ReplacePersistentContainers, "replace_persistent_containers"},
	{RequireExplicitLazyMarker, "require_explicit_lazy_marker"},
}

// String returns the configuration token of f.
func (f Feature) String() string {
	for _, n := range featureNames {
		if n.f == f {
			return n.name
		}
	}
	return fmt.Sprintf("Unknown(%d)", uint32(f))
}

// ParseFeature parses a configuration token such as "force_lazy_loading".
// Dashes are accepted in place of underscores; case is ignored.
func ParseFeature(s string) (Feature, error) {
	token := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, n := range featureNames {
		if n.name == token {
			return n.f, nil
		}
	}
	return 0, fmt.Errorf("lazyref: unknown feature %q", s)
}

// Features is an opaque bit-set of Feature toggles, combinable freely.
type Features uint32

// Enabled reports whether f is set.
func (fs Features) Enabled(f Feature) bool { return uint32(fs)&uint32(f) != 0 }

// With returns fs with f set.
func (fs Features) With(f Feature) Features { return Features(uint32(fs) | uint32(f)) }

// Without returns fs with f cleared.
func (fs Features) Without(f Feature) Features { return Features(uint32(fs) &^ uint32(f)) }

// List returns the enabled features in declaration order.
func (fs Features) List() []Feature {
	var out []Feature
	for _, n := range featureNames {
		if fs.Enabled(n.f) {
			out = append(out, n.f)
		}
	}
	return out
}

// String renders fs as a comma-separated token list.
func (fs Features) String() string {
	list := fs.List()
	parts := make([]string, len(list))
	for i, f := range list {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}

// Policy derives the resolution policy snapshot for fs.
func (fs Features) Policy() Policy {
	return Policy{
		ForceLoad:                 fs.Enabled(ForceLazyLoading),
		SerializeIdentifierOnly:   fs.Enabled(SerializeIdentifierForUnloaded),
		ReplaceContainerWithPlain: fs.Enabled(ReplacePersistentContainers),
		RequireExplicitLazyMarker: fs.Enabled(RequireExplicitLazyMarker),
	}
}

// Policy is the immutable resolution policy for one serialization context.
// It is passed by value.
type Policy struct {
	// ForceLoad loads unloaded values. It takes precedence over SerializeIdentifierOnly.
	ForceLoad bool
	// SerializeIdentifierOnly substitutes placeholders for unloaded values.
	SerializeIdentifierOnly bool
	// ReplaceContainerWithPlain strips runtime container types before type-tagged emission.
	ReplaceContainerWithPlain bool
	// RequireExplicitLazyMarker makes unmarked properties eager.
	RequireExplicitLazyMarker bool
}

// Config carries the read-only setup knobs of the engine.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Features is the engine feature bit-set.
	Features Features

	// Identifiers is the static entity-name to identifier-property mapping.
	Identifiers map[string]string

	// MaxUnwrap limits pointer/container unwrapping when normalizing entity types.
	MaxUnwrap int

	// AccessorSlot names the private field of the runtime initializer type that
	// holds the identifier accessor. Empty disables the accessor strategy.
	AccessorSlot string
}
