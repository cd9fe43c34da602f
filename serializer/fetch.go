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

package serializer

import (
	"strings"

	"dirpx.dev/lazyref/apis"
)

// TagKey is the struct tag carrying relationship markers:
//
//	Customer apis.Reference `persist:"many_to_one,fetch=lazy,target=Customer"`
//	Lines    any            `persist:"one_to_many"`
//
// Several relations may be listed, separated by ';'.
const TagKey = "persist"

// Relation kinds, in the priority order used to decide laziness.
const (
	ElementCollection = "element_collection"
	OneToMany         = "one_to_many"
	OneToOne          = "one_to_one"
	ManyToOne         = "many_to_one"
	ManyToMany        = "many_to_many"
)

var relationPriority = []string{ElementCollection, OneToMany, OneToOne, ManyToOne, ManyToMany}

// lazyByDefault holds the fetch mode of a relation without fetch=.
var lazyByDefault = map[string]bool{
	ElementCollection: true,
	OneToMany:         true,
	OneToOne:          false,
	ManyToOne:         false,
	ManyToMany:        true,
}

// Relation is one parsed relationship marker.
type Relation struct {
	Kind   string
	Lazy   bool
	Target string
}

// ParseRelations parses a persist tag value. Unknown relation kinds and
// options are ignored.
func ParseRelations(tag string) map[string]Relation {
	out := map[string]Relation{}
	for part := range strings.SplitSeq(tag, ";") {
		fields := strings.Split(part, ",")
		kind := strings.ToLower(strings.TrimSpace(fields[0]))
		lazy, known := lazyByDefault[kind]
		if !known {
			continue
		}
		rel := Relation{Kind: kind, Lazy: lazy}
		for _, opt := range fields[1:] {
			key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
			switch strings.ToLower(key) {
			case "fetch":
				switch strings.ToLower(val) {
				case "lazy":
					rel.Lazy = true
				case "eager":
					rel.Lazy = false
				}
			case "target":
				rel.Target = val
			}
		}
		out[kind] = rel
	}
	return out
}

// primaryRelation returns the highest-priority relation of prop.
func primaryRelation(prop apis.Property) (Relation, bool) {
	if prop == nil {
		return Relation{}, false
	}
	tag, ok := prop.Tag().Lookup(TagKey)
	if !ok {
		return Relation{}, false
	}
	rels := ParseRelations(tag)
	for _, kind := range relationPriority {
		if rel, ok := rels[kind]; ok {
			return rel, true
		}
	}
	return Relation{}, false
}

// UsesLazyLoading reports whether prop is fetched lazily. The first marker in
// priority order (element_collection, one_to_many, one_to_one, many_to_one,
// many_to_many) decides; without a marker the property is lazy unless p
// requires an explicit marker.
func UsesLazyLoading(prop apis.Property, p apis.Policy) bool {
	if rel, ok := primaryRelation(prop); ok {
		return rel.Lazy
	}
	return !p.RequireExplicitLazyMarker
}
