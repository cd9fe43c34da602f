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

// Kind classifies a Container. It selects the iteration strategy used when
// a container is summarized as identifier-only placeholders.
//
// # Values
//
//   - KindSet, KindList, KindBag, KindIdentifierBag: iterated through Iterable.
//   - KindArray: iterated through ArrayHolder.
//   - KindMap: has no identifier-only iteration. This is a documented
//     limitation: unloaded maps summarize to "absent".
type Kind uint8

const (
	// KindSet is an unordered collection of distinct elements.
	KindSet Kind = iota
	// KindList is an indexed, ordered collection.
	KindList
	// KindBag is an unordered collection that allows duplicates.
	KindBag
	// KindIdentifierBag is a bag whose entries carry a surrogate key.
	KindIdentifierBag
	// KindArray is a fixed-size array holder.
	KindArray
	// KindMap is a keyed collection.
	KindMap
)

var kindNames = [...]string{
	KindSet:           "Set",
	KindList:          "List",
	KindBag:           "Bag",
	KindIdentifierBag: "IdentifierBag",
	KindArray:         "Array",
	KindMap:           "Map",
}

// String returns the canonical name of k, or "Unknown(<n>)".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// ParseKind parses a canonical kind name. Matching is case-insensitive and
// surrounding whitespace is ignored.
func ParseKind(s string) (Kind, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("lazyref: empty container kind")
	}
	for k, name := range kindNames {
		if strings.EqualFold(name, trimmed) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("lazyref: unknown container kind %q", s)
}

// MarshalText implements encoding.TextMarshaler. Unknown kinds are an error.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("lazyref: cannot marshal unknown container kind %d", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure k is left unchanged.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
