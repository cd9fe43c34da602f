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

package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/resolver"
	"dirpx.dev/lazyref/strategy"
	"dirpx.dev/lazyref/testutil"
)

func fixed(name string) apis.Strategy {
	return apis.StrategyFunc(func(apis.Descriptor) (string, bool) { return name, true })
}

var skip = apis.StrategyFunc(func(apis.Descriptor) (string, bool) { return "", false })

func TestChainOrder(t *testing.T) {
	r := resolver.New(nil, skip, fixed("first"), fixed("second"))
	name, ok := r.Resolve(apis.Descriptor{EntityName: "Order"})
	assert.True(t, ok)
	assert.Equal(t, "first", name)
}

func TestChainEmpty(t *testing.T) {
	_, ok := resolver.New().Resolve(apis.Descriptor{EntityName: "Order"})
	assert.False(t, ok)

	_, ok = resolver.New(skip, nil).Resolve(apis.Descriptor{EntityName: "Order"})
	assert.False(t, ok)
}

func TestChainSkipsPanickingStrategy(t *testing.T) {
	boom := apis.StrategyFunc(func(apis.Descriptor) (string, bool) { panic("boom") })
	name, ok := resolver.New(boom, fixed("ID")).Resolve(apis.Descriptor{})
	assert.True(t, ok)
	assert.Equal(t, "ID", name)
}

func TestReferenceChain(t *testing.T) {
	r := resolver.New(
		strategy.NewSessionStrategy(nil),
		strategy.NewFallbackStrategy(),
	)
	p := testutil.NewProxy("Customer", 7, testutil.WithSession(&testutil.Session{F: testutil.Factory{"Customer": "ID"}}))
	name, ok := r.Resolve(apis.Descriptor{EntityName: p.EntityName(), Reference: p})
	assert.True(t, ok)
	assert.Equal(t, "ID", name)

	// Without a session only the fallback answers, with the entity name.
	p = testutil.NewProxy("Customer", 7)
	name, ok = r.Resolve(apis.Descriptor{EntityName: p.EntityName(), Reference: p})
	assert.True(t, ok)
	assert.Equal(t, "Customer", name)
}
