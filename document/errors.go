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

package document

import (
	"errors"
	"strings"
)

var (
	// ErrUnsupportedType is returned for Go types that have no document form
	// (functions, channels, complex numbers).
	ErrUnsupportedType = errors.New("lazyref(document): unsupported type")
	// ErrUnsupportedKey is returned for map keys that cannot become member names.
	ErrUnsupportedKey = errors.New("lazyref(document): unsupported map key")
	// ErrSchemaViolation is returned when a document does not match its schema.
	ErrSchemaViolation = errors.New("lazyref(document): document violates schema")
)

// MappingError reports a serializer failure at a position of the document.
// Path is a dotted member path with [i] for array positions; empty is the root.
type MappingError struct {
	Path string
	Err  error
}

func (e *MappingError) Error() string {
	if e.Path == "" {
		return "lazyref(document): " + e.Err.Error()
	}
	return "lazyref(document): " + e.Path + ": " + e.Err.Error()
}

func (e *MappingError) Unwrap() error { return e.Err }

// atPath prefixes the position of err with seg.
func atPath(err error, seg string) error {
	if err == nil {
		return nil
	}
	me, ok := err.(*MappingError)
	if seg == "" {
		if ok {
			return me
		}
		return &MappingError{Err: err}
	}
	if !ok {
		return &MappingError{Path: seg, Err: err}
	}
	switch {
	case me.Path == "":
		return &MappingError{Path: seg, Err: me.Err}
	case strings.HasPrefix(me.Path, "["):
		return &MappingError{Path: seg + me.Path, Err: me.Err}
	default:
		return &MappingError{Path: seg + "." + me.Path, Err: me.Err}
	}
}
