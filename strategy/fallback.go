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

package strategy

import (
	"dirpx.dev/lazyref/apis"
)

// NewFallbackStrategy creates an apis.Strategy that answers with the entity
// name itself. It always handles and belongs last in a chain.
//
// This reproduces the historic best-effort behaviour: the result is rarely
// a real property, so placeholders built from it usually carry no identifier.
func NewFallbackStrategy() apis.Strategy {
	return apis.StrategyFunc(func(d apis.Descriptor) (string, bool) {
		return d.EntityName, true
	})
}
