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

package testutil

import (
	"iter"
	"sync"

	"dirpx.dev/lazyref/apis"
)

// Collection is a lazy container of the in-memory runtime. Value returns the
// container itself, so plain-value replacement has something to strip.
type Collection struct {
	mu          sync.Mutex
	kind        apis.Kind
	elems       []any
	keys        []any
	initialized bool
	loads       int
	loadErr     error
}

var (
	_ apis.Container   = (*Collection)(nil)
	_ apis.Iterable    = (*Collection)(nil)
	_ apis.ArrayHolder = (*Collection)(nil)
	_ apis.MapIterable = (*Collection)(nil)
)

func newCollection(kind apis.Kind, elems []any) *Collection {
	return &Collection{kind: kind, elems: elems, initialized: true}
}

// NewList returns a loaded list container.
func NewList(elems ...any) *Collection { return newCollection(apis.KindList, elems) }

// NewSet returns a loaded set container. Elements are kept in insertion order.
func NewSet(elems ...any) *Collection { return newCollection(apis.KindSet, elems) }

// NewBag returns a loaded bag container.
func NewBag(elems ...any) *Collection { return newCollection(apis.KindBag, elems) }

// NewIdentifierBag returns a loaded identifier-bag container.
func NewIdentifierBag(elems ...any) *Collection {
	return newCollection(apis.KindIdentifierBag, elems)
}

// NewArray returns a loaded array-holder container.
func NewArray(elems ...any) *Collection { return newCollection(apis.KindArray, elems) }

// NewMap returns a loaded map container from alternating keys and values.
func NewMap(kv ...any) *Collection {
	c := &Collection{kind: apis.KindMap, initialized: true}
	for i := 0; i+1 < len(kv); i += 2 {
		c.keys = append(c.keys, kv[i])
		c.elems = append(c.elems, kv[i+1])
	}
	return c
}

// Unloaded marks c as not yet loaded and returns it.
func (c *Collection) Unloaded() *Collection {
	c.initialized = false
	return c
}

// FailLoad makes ForceInitialization fail with err and returns c.
func (c *Collection) FailLoad(err error) *Collection {
	c.loadErr = err
	return c
}

// Kind implements apis.Container.
func (c *Collection) Kind() apis.Kind { return c.kind }

// WasInitialized implements apis.Container.
func (c *Collection) WasInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// ForceInitialization implements apis.Container.
func (c *Collection) ForceInitialization() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if c.loadErr != nil {
		return c.loadErr
	}
	c.loads++
	c.initialized = true
	return nil
}

// Value implements apis.Container.
func (c *Collection) Value() any { return c }

// Loads returns the number of loads performed so far.
func (c *Collection) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Len returns the number of elements or entries.
func (c *Collection) Len() int { return len(c.elems) }

// All implements apis.Iterable. Iterating does not load the container.
func (c *Collection) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, e := range c.elems {
			if !yield(e) {
				return
			}
		}
	}
}

// Elements implements apis.ArrayHolder.
func (c *Collection) Elements() iter.Seq[any] { return c.All() }

// Entries implements apis.MapIterable.
func (c *Collection) Entries() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for i, k := range c.keys {
			if !yield(k, c.elems[i]) {
				return
			}
		}
	}
}
