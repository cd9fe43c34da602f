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

package registry

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/config"
	uref "dirpx.dev/lazyref/utils/reflect"
)

var (
	// ErrEmptyName is returned when an empty entity name is provided.
	ErrEmptyName = errors.New("lazyref(registry): empty entity name provided")
	// ErrEmptyEntry is returned when neither a type nor an identifier property is provided.
	ErrEmptyEntry = errors.New("lazyref(registry): entry needs a type or an identifier property")
	// ErrConflictingRegistration indicates an attempt to re-register
	// a name or a type with different data.
	ErrConflictingRegistration = errors.New("lazyref(registry): conflicting entity registration")
)

// New constructs a Registry that normalizes types according to cfg.
// Only MaxUnwrap is used here.
func New(cfg apis.Config) apis.Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &registry{cfg: cfg}
}

// registry is a Registry implementation backed by two sync.Maps.
// Reads are lock-free; writes are serialized by mu.
type registry struct {
	// cfg is the configuration used for type normalization.
	cfg apis.Config
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// byName maps entity name to its entry.
	byName sync.Map // map[string]apis.Entry
	// byType maps a normalized reflect.Type to its entity name.
	byType sync.Map // map[reflect.Type]string
	// count tracks the number of registered entries.
	count int
}

// Register records or completes the entry for name. A later registration may
// fill in a missing type or identifier property; changing a present one is a
// conflict. Registering a type under a second name is a conflict too.
func (r *registry) Register(name string, t reflect.Type, idProperty string) error {
	// Validate inputs early.
	if name == "" {
		return ErrEmptyName
	}
	if t == nil && idProperty == "" {
		return ErrEmptyEntry
	}

	var nt reflect.Type
	if t != nil {
		b, err := uref.Normalize(t, r.cfg)
		if err != nil {
			return err // ErrReflectTypeNotNamed
		}
		nt = b
	}
	want := apis.Entry{Name: name, Type: nt, IDProperty: idProperty}

	// Fast read path: idempotency check without locking.
	if old, ok := r.byName.Load(name); ok && covers(old.(apis.Entry), want) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	cur, exists := r.byName.Load(name)
	next := want
	if exists {
		merged, ok := merge(cur.(apis.Entry), want)
		if !ok {
			return ErrConflictingRegistration
		}
		next = merged
	}
	if nt != nil {
		if owner, ok := r.byType.Load(nt); ok && owner.(string) != name {
			return ErrConflictingRegistration
		}
	}

	r.byName.Store(name, next)
	if next.Type != nil {
		r.byType.Store(next.Type, name)
	}
	if !exists {
		r.count++
	}
	return nil
}

// covers reports whether have already contains everything in want.
func covers(have, want apis.Entry) bool {
	return (want.Type == nil || want.Type == have.Type) &&
		(want.IDProperty == "" || want.IDProperty == have.IDProperty)
}

// merge fills the blanks of cur from next, failing on any disagreement.
func merge(cur, next apis.Entry) (apis.Entry, bool) {
	if next.Type != nil {
		if cur.Type != nil && cur.Type != next.Type {
			return cur, false
		}
		cur.Type = next.Type
	}
	if next.IDProperty != "" {
		if cur.IDProperty != "" && cur.IDProperty != next.IDProperty {
			return cur, false
		}
		cur.IDProperty = next.IDProperty
	}
	return cur, true
}

// Lookup returns the entry registered under name.
func (r *registry) Lookup(name string) (apis.Entry, bool) {
	if name == "" {
		return apis.Entry{}, false
	}
	if v, ok := r.byName.Load(name); ok {
		return v.(apis.Entry), true
	}
	return apis.Entry{}, false
}

// LookupType returns the entry registered for the nearest named type of t.
func (r *registry) LookupType(t reflect.Type) (apis.Entry, bool) {
	if t == nil {
		return apis.Entry{}, false
	}
	nt, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return apis.Entry{}, false
	}
	if name, ok := r.byType.Load(nt); ok {
		return r.Lookup(name.(string))
	}
	return apis.Entry{}, false
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.byName.Range(func(_, value any) bool {
		entries = append(entries, value.(apis.Entry))
		return true
	})
	return entries
}

// Count returns the number of registered entries.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName.Clear()
	r.byType.Clear()
	r.count = 0
}
