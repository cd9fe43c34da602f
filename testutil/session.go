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
	"dirpx.dev/lazyref/apis"
)

// Factory is a session factory backed by an entity-name to identifier-property map.
type Factory map[string]string

var _ apis.SessionFactory = Factory(nil)

// IdentifierPropertyName implements apis.SessionFactory.
func (f Factory) IdentifierPropertyName(entityName string) (string, bool) {
	name, ok := f[entityName]
	return name, ok
}

// Session is a session of the current runtime shape: it hands out its factory.
type Session struct {
	F apis.SessionFactory
}

var _ apis.SessionFactoryHolder = (*Session)(nil)

// Factory implements apis.SessionFactoryHolder.
func (s *Session) Factory() apis.SessionFactory { return s.F }

// LegacySession is a session of the older runtime shape: the session itself
// answers metadata questions.
type LegacySession struct {
	Factory
}
