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

package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeNotFound is returned when an entity name resolves to no Go type.
	ErrTypeNotFound = errors.New("lazyref(entity): type not found")
	// ErrInstantiationFailed is returned when a type has no zero-value construction path.
	ErrInstantiationFailed = errors.New("lazyref(entity): cannot instantiate type")
	// ErrFieldNotFound is returned when the identifier property exists nowhere in the
	// embedding chain of the type.
	ErrFieldNotFound = errors.New("lazyref(entity): identifier field not found")
	// ErrValueNotAssignable is returned when the identifier value does not fit the field.
	ErrValueNotAssignable = errors.New("lazyref(entity): identifier not assignable")
)

// BuildError describes a failed minimal-entity construction. Kind is one of
// the package sentinels, so errors.Is works against them.
type BuildError struct {
	Kind     error
	TypeName string
	Field    string
	Err      error
}

func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.TypeName != "" {
		fmt.Fprintf(&b, ": %s", e.TypeName)
		if e.Field != "" {
			fmt.Fprintf(&b, ".%s", e.Field)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Reason returns a short label for the error kind, suitable as a metric label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTypeNotFound):
		return "type_not_found"
	case errors.Is(err, ErrInstantiationFailed):
		return "instantiation_failed"
	case errors.Is(err, ErrFieldNotFound):
		return "field_not_found"
	case errors.Is(err, ErrValueNotAssignable):
		return "value_not_assignable"
	default:
		return "other"
	}
}
