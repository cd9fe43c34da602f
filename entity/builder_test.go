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

package entity_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/config"
	"dirpx.dev/lazyref/entity"
	"dirpx.dev/lazyref/registry"
	"dirpx.dev/lazyref/resolver"
	"dirpx.dev/lazyref/strategy"
	"dirpx.dev/lazyref/testutil"
)

func newBuilder(t *testing.T) (*entity.Builder, apis.Registry) {
	t.Helper()
	reg := registry.New(config.DefaultConfig())
	require.NoError(t, testutil.Register(reg))
	concrete := resolver.New(
		strategy.NewMappingStrategy(reg),
		strategy.NewTagStrategy(),
		strategy.NewFallbackStrategy(),
	)
	return entity.New(reg, concrete, nil), reg
}

func TestBuild(t *testing.T) {
	b, _ := newBuilder(t)

	got, err := b.Build("Order", "ID", 42)
	require.NoError(t, err)
	assert.Equal(t, &testutil.Order{ID: 42}, got)
}

func TestBuildIsFreshEachTime(t *testing.T) {
	b, _ := newBuilder(t)

	first, err := b.Build("Order", "id", int64(42))
	require.NoError(t, err)
	second, err := b.Build("Order", "id", int64(42))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("placeholders differ (-first +second):\n%s", diff)
	}
	assert.NotSame(t, first, second)
}

func TestBuildFieldLookup(t *testing.T) {
	b, _ := newBuilder(t)
	key := uuid.MustParse("6f1c7f0e-3a2b-4c55-9d1e-0a7b8c9d0e1f")

	t.Run("json name", func(t *testing.T) {
		got, err := b.Build("Tag", "key", key)
		require.NoError(t, err)
		assert.Equal(t, &testutil.Tag{Key: key}, got)
	})
	t.Run("inherited field", func(t *testing.T) {
		got, err := b.Build("Invoice", "ID", 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.(*testutil.Invoice).ID)
	})
	t.Run("unexported field", func(t *testing.T) {
		got, err := b.Build("Secret", "id", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.(*testutil.Secret).SecretID())
	})
	t.Run("identifiable", func(t *testing.T) {
		got, err := b.Build("Keyed", "anything", "k-1")
		require.NoError(t, err)
		k := got.(*testutil.Keyed)
		assert.Equal(t, "k-1", k.Key())
		assert.Equal(t, 1, k.Set)
	})
}

func TestBuildErrors(t *testing.T) {
	b, _ := newBuilder(t)

	tests := []struct {
		name     string
		typeName string
		prop     string
		id       any
		want     error
	}{
		{"unknown type", "Missing", "ID", 1, entity.ErrTypeNotFound},
		{"not a struct", "Counter", "ID", 1, entity.ErrInstantiationFailed},
		{"no such field", "Order", "Order", 1, entity.ErrFieldNotFound},
		{"wrong value", "Order", "ID", "forty-two", entity.ErrValueNotAssignable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.typeName, tt.prop, tt.id)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)

			var be *entity.BuildError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.typeName, be.TypeName)
		})
	}

	_, err := entity.New(nil, nil, nil).Build("Order", "ID", 1)
	assert.ErrorIs(t, err, entity.ErrTypeNotFound)
}

type smallKeyed struct {
	ID uint8
}

type intKeyed struct {
	ID int
}

func TestBuildRejectsLossyIdentifier(t *testing.T) {
	b, reg := newBuilder(t)
	require.NoError(t, reg.Register("Small", reflect.TypeFor[smallKeyed](), "ID"))
	require.NoError(t, reg.Register("Wide", reflect.TypeFor[intKeyed](), "ID"))

	tests := []struct {
		name     string
		typeName string
		id       any
		want     any
	}{
		{name: "narrowed in range", typeName: "Small", id: int64(200), want: &smallKeyed{ID: 200}},
		{name: "overflow", typeName: "Small", id: int64(300)},
		{name: "negative into unsigned", typeName: "Small", id: -1},
		{name: "integral float", typeName: "Wide", id: 42.0, want: &intKeyed{ID: 42}},
		{name: "fractional float", typeName: "Wide", id: 42.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.typeName, "ID", tt.id)
			if tt.want == nil {
				require.ErrorIs(t, err, entity.ErrValueNotAssignable)
				assert.Nil(t, got)
				assert.Equal(t, "value_not_assignable", entity.Reason(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromObject(t *testing.T) {
	b, _ := newBuilder(t)
	key := uuid.New()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"registered", &testutil.Customer{ID: 3, Name: "Ada"}, &testutil.Customer{ID: 3}},
		{"by value", testutil.Customer{ID: 3, Name: "Ada"}, &testutil.Customer{ID: 3}},
		{"tagged", &testutil.Tag{Key: key, Label: "go"}, &testutil.Tag{Key: key}},
		{"embedded", &testutil.Invoice{Entity: testutil.Entity{ID: 8}, Amount: 10}, &testutil.Invoice{Entity: testutil.Entity{ID: 8}}},
		{"namer", &testutil.Account{Code: "acc", Owner: "x"}, &testutil.Account{Code: "acc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.FromObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := b.FromObject(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

type unregistered struct {
	Serial int `lazy:"id"`
	Name   string
}

type anonymous struct {
	Name string
}

func TestFromObjectUnregistered(t *testing.T) {
	b, _ := newBuilder(t)

	got, err := b.FromObject(&unregistered{Serial: 4, Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, &unregistered{Serial: 4}, got)

	// Without any identifier the fallback answers with the type name, which
	// is not a field.
	_, err = b.FromObject(&anonymous{Name: "n"})
	assert.ErrorIs(t, err, entity.ErrFieldNotFound)

	_, err = b.FromObject(testutil.Counter(1))
	assert.ErrorIs(t, err, entity.ErrInstantiationFailed)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "type_not_found", entity.Reason(&entity.BuildError{Kind: entity.ErrTypeNotFound}))
	assert.Equal(t, "field_not_found", entity.Reason(&entity.BuildError{Kind: entity.ErrFieldNotFound}))
	assert.Equal(t, "other", entity.Reason(errors.New("x")))
	assert.Equal(t, "lazyref(entity): identifier field not found: Order.Nope",
		(&entity.BuildError{Kind: entity.ErrFieldNotFound, TypeName: "Order", Field: "Nope"}).Error())
}
