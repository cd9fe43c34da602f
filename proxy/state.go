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

package proxy

import "fmt"

// State is the outcome of resolving a lazy reference. Unresolved is the
// initial state; every other state is terminal for one Resolve call.
type State uint8

const (
	// Unresolved means no resolution has been attempted.
	Unresolved State = iota
	// Materialized means the value is the fully loaded entity.
	Materialized
	// Placeholder means the value is a minimal entity carrying only the identifier.
	Placeholder
	// Suppressed means there is no value; it serializes as null.
	Suppressed
)

var stateNames = [...]string{
	Unresolved:   "unresolved",
	Materialized: "materialized",
	Placeholder:  "placeholder",
	Suppressed:   "suppressed",
}

// String returns the lower-case name of s, or "unknown(<n>)".
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("unknown(%d)", s)
}

// Resolution is the result of one Resolve call.
type Resolution struct {
	State State
	Value any
}

// Absent reports whether r carries no value.
func (r Resolution) Absent() bool {
	return r.State == Suppressed || r.State == Unresolved
}
