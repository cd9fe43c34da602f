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

package document_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/lazyref/document"
)

func TestGeneratorWritesDocument(t *testing.T) {
	g := document.NewGenerator()
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	require.NoError(t, g.WriteStartObject())
	require.NoError(t, g.WriteFieldName("id"))
	require.NoError(t, g.WriteValue(id))
	require.NoError(t, g.WriteFieldName("tags"))
	require.NoError(t, g.WriteStartArray())
	require.NoError(t, g.WriteValue("a<b"))
	require.NoError(t, g.WriteValue(1.5))
	require.NoError(t, g.WriteNull())
	require.NoError(t, g.WriteValue(true))
	require.NoError(t, g.WriteEndArray())
	require.NoError(t, g.WriteFieldName("empty"))
	require.NoError(t, g.WriteStartObject())
	require.NoError(t, g.WriteEndObject())
	require.NoError(t, g.WriteEndObject())

	assert.True(t, g.Complete())
	assert.Equal(t,
		`{"id":"00000000-0000-0000-0000-000000000001","tags":["a<b",1.5,null,true],"empty":{}}`,
		string(g.Bytes()))
}

func TestGeneratorRejectsMalformedSequences(t *testing.T) {
	tests := []struct {
		name string
		run  func(g *document.Generator) error
	}{
		{"value without name", func(g *document.Generator) error {
			_ = g.WriteStartObject()
			return g.WriteValue(1)
		}},
		{"name in array", func(g *document.Generator) error {
			_ = g.WriteStartArray()
			return g.WriteFieldName("x")
		}},
		{"name outside object", func(g *document.Generator) error {
			return g.WriteFieldName("x")
		}},
		{"two names", func(g *document.Generator) error {
			_ = g.WriteStartObject()
			_ = g.WriteFieldName("a")
			return g.WriteFieldName("b")
		}},
		{"mismatched close", func(g *document.Generator) error {
			_ = g.WriteStartArray()
			return g.WriteEndObject()
		}},
		{"close with pending name", func(g *document.Generator) error {
			_ = g.WriteStartObject()
			_ = g.WriteFieldName("a")
			return g.WriteEndObject()
		}},
		{"nothing to close", func(g *document.Generator) error {
			return g.WriteEndArray()
		}},
		{"second root", func(g *document.Generator) error {
			_ = g.WriteValue(1)
			return g.WriteValue(2)
		}},
		{"non-scalar", func(g *document.Generator) error {
			return g.WriteValue(struct{}{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(document.NewGenerator())
			assert.ErrorIs(t, err, document.ErrInvalidState)
		})
	}
}
