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

package proxy_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/config"
	"dirpx.dev/lazyref/entity"
	"dirpx.dev/lazyref/metrics"
	"dirpx.dev/lazyref/proxy"
	"dirpx.dev/lazyref/registry"
	"dirpx.dev/lazyref/resolver"
	"dirpx.dev/lazyref/strategy"
	"dirpx.dev/lazyref/testutil"
)

type fixture struct {
	resolver *proxy.Resolver
	logs     *bytes.Buffer
	reg      *prometheus.Registry
}

func newFixture(t *testing.T, mapping map[string]string) fixture {
	t.Helper()
	reg := registry.New(config.DefaultConfig())
	require.NoError(t, testutil.Types(reg))
	for name, prop := range mapping {
		require.NoError(t, reg.Register(name, nil, prop))
	}
	ids := resolver.New(
		strategy.NewMappingStrategy(reg),
		strategy.NewSessionStrategy(nil),
		strategy.NewFallbackStrategy(),
	)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	promReg := prometheus.NewRegistry()
	m, err := metrics.New(promReg)
	require.NoError(t, err)
	return fixture{
		resolver: proxy.NewResolver(ids, entity.New(reg, nil, logger), logger, m),
		logs:     &logs,
		reg:      promReg,
	}
}

// allPolicies enumerates every combination of the four feature toggles.
func allPolicies() []apis.Policy {
	var out []apis.Policy
	for bits := range 16 {
		out = append(out, apis.Features(bits).Policy())
	}
	return out
}

func TestInitializedIsAlwaysMaterialized(t *testing.T) {
	f := newFixture(t, nil)
	customer := &testutil.Customer{ID: 1, Name: "Ada"}
	ref := testutil.NewProxy("Customer", int64(1), testutil.Loaded(customer))

	for _, p := range allPolicies() {
		got := f.resolver.Resolve(ref, p)
		assert.Equal(t, proxy.Materialized, got.State, "policy %+v", p)
		assert.Same(t, customer, got.Value)
	}
	assert.Zero(t, ref.Loads())
}

func TestUnloadedWithoutFlagsIsSuppressed(t *testing.T) {
	f := newFixture(t, nil)
	ref := testutil.NewProxy("Customer", int64(1), testutil.WithTarget(&testutil.Customer{ID: 1}))

	for _, p := range allPolicies() {
		if p.ForceLoad || p.SerializeIdentifierOnly {
			continue
		}
		got := f.resolver.Resolve(ref, p)
		assert.Equal(t, proxy.Suppressed, got.State)
		assert.True(t, got.Absent())
		assert.Nil(t, got.Value)
	}
	assert.Zero(t, ref.Loads())
}

func TestForceLoadWinsAndLoadsOnce(t *testing.T) {
	f := newFixture(t, map[string]string{"Customer": "ID"})
	customer := &testutil.Customer{ID: 1, Name: "Ada"}
	ref := testutil.NewProxy("Customer", int64(1), testutil.WithTarget(customer))
	p := apis.Policy{ForceLoad: true, SerializeIdentifierOnly: true}

	got := f.resolver.Resolve(ref, p)
	assert.Equal(t, proxy.Materialized, got.State)
	assert.Same(t, customer, got.Value)
	assert.Equal(t, 1, ref.Loads())

	got = f.resolver.Resolve(ref, p)
	assert.Equal(t, proxy.Materialized, got.State)
	assert.Equal(t, 1, ref.Loads(), "a loaded reference must not load again")

	loads, err := counterValue(f.reg, "lazyref_loads_total", "target", metrics.TargetReference)
	require.NoError(t, err)
	assert.Equal(t, 1.0, loads)
}

func TestOrderPlaceholder(t *testing.T) {
	f := newFixture(t, map[string]string{"Order": "id"})
	ref := testutil.NewProxy("Order", 42)

	got := f.resolver.Resolve(ref, apis.Policy{SerializeIdentifierOnly: true})
	require.Equal(t, proxy.Placeholder, got.State)
	assert.Equal(t, &testutil.Order{ID: 42}, got.Value)
	assert.Zero(t, ref.Loads())
	assert.Contains(t, f.logs.String(), "built minimal entity")
}

func TestPlaceholderFromSession(t *testing.T) {
	f := newFixture(t, nil)
	ref := testutil.NewProxy("Line", 7, testutil.WithSession(&testutil.Session{F: testutil.Factory{"Line": "ID"}}))

	got := f.resolver.Resolve(ref, apis.Policy{SerializeIdentifierOnly: true})
	require.Equal(t, proxy.Placeholder, got.State)
	assert.Equal(t, &testutil.Line{ID: 7}, got.Value)
}

var badgeSession = testutil.WithSession(&testutil.Session{F: testutil.Factory{"Badge": "ID"}})

func TestPlaceholderKeepsNarrowIdentifier(t *testing.T) {
	f := newFixture(t, nil)
	ref := testutil.NewProxy("Badge", int64(255), badgeSession)

	got := f.resolver.Resolve(ref, apis.Policy{SerializeIdentifierOnly: true})
	require.Equal(t, proxy.Placeholder, got.State)
	assert.Equal(t, &testutil.Badge{ID: 255}, got.Value)
}

func TestPlaceholderFailureIsSuppressed(t *testing.T) {
	tests := []struct {
		name   string
		ref    *testutil.Proxy
		reason string
	}{
		// The fallback answers with the entity name, which is no field of Customer.
		{"fallback property", testutil.NewProxy("Customer", 1), "field_not_found"},
		{"unknown type", testutil.NewProxy("Ghost", 1), "type_not_found"},
		{"non-struct type", testutil.NewProxy("Counter", 1), "instantiation_failed"},
		{"identifier out of range", testutil.NewProxy("Badge", int64(300), badgeSession), "value_not_assignable"},
		{"negative identifier", testutil.NewProxy("Badge", -1, badgeSession), "value_not_assignable"},
		{"fractional identifier", testutil.NewProxy("Badge", 2.5, badgeSession), "value_not_assignable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			got := f.resolver.Resolve(tt.ref, apis.Policy{SerializeIdentifierOnly: true})
			assert.Equal(t, proxy.Suppressed, got.State)
			assert.Nil(t, got.Value)
			assert.Contains(t, f.logs.String(), "failed to build minimal entity")

			c, err := counterValue(f.reg, "lazyref_placeholder_failures_total", "reason", tt.reason)
			require.NoError(t, err)
			assert.Equal(t, 1.0, c)
		})
	}
}

func TestLoadFailureIsSuppressed(t *testing.T) {
	f := newFixture(t, nil)
	ref := testutil.NewProxy("Customer", 1, testutil.WithLoadError(errors.New("connection reset")))

	got := f.resolver.Resolve(ref, apis.Policy{ForceLoad: true})
	assert.Equal(t, proxy.Suppressed, got.State)
	assert.Contains(t, f.logs.String(), "connection reset")
}

func TestNilReference(t *testing.T) {
	f := newFixture(t, nil)
	got := f.resolver.Resolve(nil, apis.Policy{ForceLoad: true})
	assert.True(t, got.Absent())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unresolved", proxy.Unresolved.String())
	assert.Equal(t, "materialized", proxy.Materialized.String())
	assert.Equal(t, "placeholder", proxy.Placeholder.String())
	assert.Equal(t, "suppressed", proxy.Suppressed.String())
	assert.Equal(t, "unknown(9)", proxy.State(9).String())
	assert.True(t, proxy.Resolution{}.Absent())
}

func counterValue(reg *prometheus.Registry, name, label, value string) (float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return 0, err
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %s{%s=%q} not found", name, label, value)
}
