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

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/config"
)

func TestLoad_FullDocument(t *testing.T) {
	doc := `
features:
  - serialize_identifier_for_unloaded
  - Require-Explicit-Lazy-Marker
max_unwrap: 4
accessor_slot: getIdentifierMethod
entities:
  - name: shop.Order
    id_property: id
  - name: shop.Tag
    id_property: code
`
	cfg, err := config.Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.True(t, cfg.Features.Enabled(apis.SerializeIdentifierForUnloaded))
	assert.True(t, cfg.Features.Enabled(apis.RequireExplicitLazyMarker))
	assert.False(t, cfg.Features.Enabled(apis.ForceLazyLoading))
	assert.Equal(t, 4, cfg.MaxUnwrap)
	assert.Equal(t, "getIdentifierMethod", cfg.AccessorSlot)
	assert.Equal(t, map[string]string{"shop.Order": "id", "shop.Tag": "code"}, cfg.Identifiers)
}

func TestLoad_EmptyDocumentIsDefault(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)

	def := config.DefaultConfig()
	assert.Equal(t, def.Features, cfg.Features)
	assert.Equal(t, def.MaxUnwrap, cfg.MaxUnwrap)
	assert.Equal(t, def.AccessorSlot, cfg.AccessorSlot)
}

func TestLoad_OptionsOverrideDocument(t *testing.T) {
	cfg, err := config.Load(
		strings.NewReader("features: [force_lazy_loading]\n"),
		config.WithFeature(apis.ForceLazyLoading, false),
	)
	require.NoError(t, err)
	assert.False(t, cfg.Features.Enabled(apis.ForceLazyLoading))
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown feature": "features: [lazy_everything]\n",
		"unknown field":   "featurez: []\n",
		"missing id":      "entities:\n  - name: shop.Order\n",
		"bad yaml":        "features: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(strings.NewReader(doc))
			require.ErrorIs(t, err, config.ErrInvalidFile)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyref.yaml")
	require.NoError(t, os.WriteFile(path, []byte("features: [replace_persistent_containers]\n"), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Features.Enabled(apis.ReplacePersistentContainers))

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
