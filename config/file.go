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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"dirpx.dev/lazyref/apis"
)

// ErrInvalidFile is returned when a configuration document cannot be decoded.
var ErrInvalidFile = errors.New("lazyref(config): invalid configuration file")

// File is the YAML shape of a configuration document:
//
//	features: [serialize_identifier_for_unloaded]
//	max_unwrap: 8
//	accessor_slot: identifierMethod
//	entities:
//	  - name: shop.Order
//	    id_property: id
type File struct {
	Features     []string     `yaml:"features"`
	MaxUnwrap    int          `yaml:"max_unwrap"`
	AccessorSlot *string      `yaml:"accessor_slot"`
	Entities     []EntityFile `yaml:"entities"`
}

// EntityFile is one static identifier mapping.
type EntityFile struct {
	Name       string `yaml:"name"`
	IDProperty string `yaml:"id_property"`
}

// LoadFile reads the YAML document at path. See Load.
func LoadFile(path string, opts ...Option) (apis.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("lazyref(config): read %s: %w", path, err)
	}
	return Load(bytes.NewReader(data), opts...)
}

// Load decodes a YAML document into an apis.Config. Options are applied
// after the document, so they override it.
func Load(r io.Reader, opts ...Option) (apis.Config, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return apis.Config{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	fileOpts, err := f.options()
	if err != nil {
		return apis.Config{}, err
	}
	return NewConfig(append(fileOpts, opts...)...), nil
}

func (f File) options() ([]Option, error) {
	var fs apis.Features
	for _, token := range f.Features {
		feat, err := apis.ParseFeature(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		fs = fs.With(feat)
	}

	ids := make(map[string]string, len(f.Entities))
	for i, e := range f.Entities {
		if e.Name == "" || e.IDProperty == "" {
			return nil, fmt.Errorf("%w: entities[%d] needs name and id_property", ErrInvalidFile, i)
		}
		ids[e.Name] = e.IDProperty
	}

	opts := []Option{WithFeatures(fs), WithIdentifiers(ids), WithMaxUnwrap(f.MaxUnwrap)}
	if f.AccessorSlot != nil {
		opts = append(opts, WithAccessorSlot(*f.AccessorSlot))
	}
	return opts, nil
}
