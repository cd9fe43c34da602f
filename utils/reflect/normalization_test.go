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

package reflect_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/testutil"
	uref "dirpx.dev/lazyref/utils/reflect"
)

// Page is a generic holder, as entity types sometimes are.
type Page[T any] struct{ Items []T }

func cfg(maxUnwrap int) apis.Config { return apis.Config{MaxUnwrap: maxUnwrap} }

func TestNormalize(t *testing.T) {
	customer := reflect.TypeFor[testutil.Customer]()
	tests := []struct {
		name string
		typ  reflect.Type
		want reflect.Type
	}{
		{"plain", customer, customer},
		{"pointer", reflect.TypeFor[*testutil.Customer](), customer},
		{"slice of pointers", reflect.TypeFor[[]*testutil.Customer](), customer},
		{"array", reflect.TypeFor[[2]testutil.Customer](), customer},
		{"chan", reflect.TypeFor[chan testutil.Customer](), customer},
		{"map element", reflect.TypeFor[map[uuidKey]*testutil.Customer](), customer},
		{"named map element", reflect.TypeFor[map[string]testutil.Counter](), reflect.TypeFor[testutil.Counter]()},
		{"generic", reflect.TypeFor[*Page[testutil.Tag]](), reflect.TypeFor[Page[testutil.Tag]]()},
		{"named scalar", reflect.TypeFor[int](), reflect.TypeFor[int]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uref.Normalize(tt.typ, cfg(8))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type uuidKey [16]byte

func TestNormalizeMaxUnwrap(t *testing.T) {
	typ := reflect.TypeFor[**testutil.Line]()

	_, err := uref.Normalize(typ, cfg(1))
	assert.ErrorIs(t, err, uref.ErrReflectTypeNotNamed)

	got, err := uref.Normalize(typ, cfg(2))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[testutil.Line](), got)

	got, err = uref.Normalize(typ, cfg(0))
	require.NoError(t, err, "non-positive depth uses the default")
	assert.Equal(t, reflect.TypeFor[testutil.Line](), got)
}

func TestNormalizeErrors(t *testing.T) {
	_, err := uref.Normalize(nil, cfg(8))
	assert.ErrorIs(t, err, uref.ErrReflectNilType)

	_, err = uref.Normalize(reflect.TypeFor[struct{ ID int64 }](), cfg(8))
	assert.ErrorIs(t, err, uref.ErrReflectTypeNotNamed)

	_, err = uref.Normalize(reflect.TypeFor[map[string]struct{ ID int64 }](), cfg(8))
	assert.ErrorIs(t, err, uref.ErrReflectTypeNotNamed)

	_, err = uref.Normalize(reflect.TypeFor[[]func()](), cfg(8))
	assert.ErrorIs(t, err, uref.ErrReflectTypeNotNamed)
}

func TestNormalizeConcurrent(t *testing.T) {
	types := []reflect.Type{
		reflect.TypeFor[testutil.Order](),
		reflect.TypeFor[*testutil.Order](),
		reflect.TypeFor[[]*testutil.Tag](),
		reflect.TypeFor[map[string]*testutil.Line](),
		reflect.TypeFor[Page[testutil.Tag]](),
	}

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0) * 4
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range 2000 {
				got, err := uref.Normalize(types[i%len(types)], cfg(8))
				if err != nil || got.Name() == "" {
					t.Errorf("Normalize(%v) = (%v, %v)", types[i%len(types)], got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkNormalize(b *testing.B) {
	types := []reflect.Type{
		reflect.TypeFor[testutil.Order](),
		reflect.TypeFor[*testutil.Order](),
		reflect.TypeFor[[]*testutil.Tag](),
		reflect.TypeFor[map[string]*testutil.Line](),
	}
	conf := cfg(8)

	for i := 0; b.Loop(); i++ {
		_, _ = uref.Normalize(types[i%len(types)], conf)
	}
}
