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
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uref "dirpx.dev/lazyref/utils/reflect"
)

type base struct {
	id      int64
	Created string
}

type Audited struct {
	Version int
}

type derived struct {
	base
	*Audited
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type shadow struct {
	base
	ID string
}

type keyed struct {
	Key uuid.UUID
}

func TestFindField_MostDerivedFirst(t *testing.T) {
	f, ok := uref.FindField(reflect.TypeOf(shadow{}), "id")
	require.True(t, ok)
	// ID on shadow matches case-insensitively at depth 0 and wins over base.id at depth 1.
	assert.Equal(t, "ID", f.Name)
	assert.Equal(t, []int{1}, f.Index)
}

func TestFindField_MatchOrder(t *testing.T) {
	typ := reflect.TypeOf(&derived{})

	f, ok := uref.FindField(typ, "Name")
	require.True(t, ok)
	assert.Equal(t, "Name", f.Name)

	f, ok = uref.FindField(typ, "code")
	require.True(t, ok, "json tag name")
	assert.Equal(t, "Code", f.Name)

	f, ok = uref.FindField(typ, "id")
	require.True(t, ok, "embedded unexported field")
	assert.Equal(t, []int{0, 0}, f.Index)

	f, ok = uref.FindField(typ, "version")
	require.True(t, ok, "embedded pointer struct")
	assert.Equal(t, []int{1, 0}, f.Index)

	_, ok = uref.FindField(typ, "missing")
	assert.False(t, ok)
	_, ok = uref.FindField(reflect.TypeOf(0), "x")
	assert.False(t, ok)
}

func TestSetField_PrivilegedAndConverted(t *testing.T) {
	d := &derived{}

	require.NoError(t, uref.SetField(d, "id", 42))
	assert.Equal(t, int64(42), d.id)

	require.NoError(t, uref.SetField(d, "Version", int32(7)))
	require.NotNil(t, d.Audited, "nil embedded pointer must be allocated")
	assert.Equal(t, 7, d.Version)

	require.NoError(t, uref.SetField(d, "name", "x"))
	assert.Equal(t, "x", d.Name)
}

func TestSetField_Errors(t *testing.T) {
	d := &derived{}

	err := uref.SetField(d, "nope", 1)
	require.ErrorIs(t, err, uref.ErrFieldNotFound)

	err = uref.SetField(d, "Name", 12)
	require.ErrorIs(t, err, uref.ErrValueNotAssignable, "numbers never convert to strings")

	err = uref.SetField(derived{}, "Name", "x")
	require.ErrorIs(t, err, uref.ErrNotAddressable)

	n := 1
	err = uref.SetField(&n, "Name", "x")
	require.ErrorIs(t, err, uref.ErrNotStruct)
}

func TestSetField_NumericRange(t *testing.T) {
	type narrow struct {
		U8  uint8
		I   int
		I8  int8
		U64 uint64
		F32 float32
		F64 float64
	}

	tests := []struct {
		name  string
		field string
		value any
		want  any
		ok    bool
	}{
		{name: "fits uint8", field: "U8", value: int64(200), want: uint8(200), ok: true},
		{name: "overflows uint8", field: "U8", value: int64(300)},
		{name: "negative into unsigned", field: "U8", value: -1},
		{name: "negative into uint64", field: "U64", value: int64(-5)},
		{name: "widened unsigned", field: "U64", value: uint32(math.MaxUint32), want: uint64(math.MaxUint32), ok: true},
		{name: "integral float into int", field: "I", value: 3.0, want: 3, ok: true},
		{name: "fractional float into int", field: "I", value: 42.9},
		{name: "float beyond int64", field: "I", value: 1e20},
		{name: "NaN into int", field: "I", value: math.NaN()},
		{name: "uint64 beyond int", field: "I", value: uint64(math.MaxUint64)},
		{name: "overflows int8", field: "I8", value: 128},
		{name: "fits int8", field: "I8", value: uint16(127), want: int8(127), ok: true},
		{name: "negative float into unsigned", field: "U64", value: -1.0},
		{name: "exact float32", field: "F32", value: 0.5, want: float32(0.5), ok: true},
		{name: "inexact float32", field: "F32", value: 0.1},
		{name: "int into float64", field: "F64", value: int64(1 << 40), want: float64(1 << 40), ok: true},
		{name: "int beyond float64 precision", field: "F64", value: int64(1<<53 + 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &narrow{}
			err := uref.SetField(n, tt.field, tt.value)
			if !tt.ok {
				require.ErrorIs(t, err, uref.ErrValueNotAssignable)
				assert.Equal(t, narrow{}, *n, "a rejected value must leave the field untouched")
				return
			}
			require.NoError(t, err)
			got, err := uref.GetField(n, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetField(t *testing.T) {
	d := derived{base: base{id: 9}, Name: "n"}

	v, err := uref.GetField(d, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)

	v, err = uref.GetField(&d, "name")
	require.NoError(t, err)
	assert.Equal(t, "n", v)

	v, err = uref.GetField(&d, "Version")
	require.NoError(t, err)
	assert.Nil(t, v, "nil embedded pointer reads as nil")

	_, err = uref.GetField(&d, "missing")
	require.ErrorIs(t, err, uref.ErrFieldNotFound)
}

func TestSetField_UUIDIdentifier(t *testing.T) {
	id := uuid.New()
	k := &keyed{}
	require.NoError(t, uref.SetField(k, "key", id))
	assert.Equal(t, id, k.Key)
}
