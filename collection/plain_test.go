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

package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/collection"
	"dirpx.dev/lazyref/testutil"
)

type unknownKind struct{ listOnly }

func (unknownKind) Kind() apis.Kind { return apis.Kind(42) }

func TestToPlain(t *testing.T) {
	ada := &testutil.Customer{ID: 1}
	bob := &testutil.Customer{ID: 2}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"list", testutil.NewList(ada, bob), []*testutil.Customer{ada, bob}},
		{"set", testutil.NewSet(ada), []*testutil.Customer{ada}},
		{"bag with nil pointer", testutil.NewBag(ada, nil), []*testutil.Customer{ada, nil}},
		{"ints with nil", testutil.NewList(1, nil), []any{1, nil}},
		{"mixed", testutil.NewArray(ada, "x"), []any{ada, "x"}},
		{"empty", testutil.NewIdentifierBag(), []any{}},
		{"map", testutil.NewMap("a", 1, "b", 2), map[string]int{"a": 1, "b": 2}},
		{"mixed map", testutil.NewMap("a", 1, 2, "b"), map[any]any{"a": 1, 2: "b"}},
		{"plain value", []int{1}, []int{1}},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collection.ToPlain(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToPlainUnsupported(t *testing.T) {
	_, err := collection.ToPlain(unknownKind{})
	assert.ErrorIs(t, err, collection.ErrUnsupportedContainer)

	_, err = collection.ToPlain(listOnly{})
	assert.ErrorIs(t, err, collection.ErrUnsupportedContainer)

	_, err = collection.ToPlain(testutil.NewMap([]int{1}, 1))
	assert.ErrorIs(t, err, collection.ErrUnsupportedContainer)
}

func TestHasSingleElement(t *testing.T) {
	assert.True(t, collection.HasSingleElement(testutil.NewList(1)))
	assert.False(t, collection.HasSingleElement(testutil.NewList(1, 2)))
	assert.False(t, collection.HasSingleElement(testutil.NewList()))
	assert.False(t, collection.HasSingleElement(testutil.NewList(1).Unloaded()))
	assert.True(t, collection.HasSingleElement(testutil.NewMap("a", 1)))
	assert.True(t, collection.HasSingleElement([]string{"a"}))
	assert.True(t, collection.HasSingleElement([1]int{7}))
	assert.False(t, collection.HasSingleElement(map[string]int{}))
	assert.False(t, collection.HasSingleElement(42))
	assert.False(t, collection.HasSingleElement(nil))
}
