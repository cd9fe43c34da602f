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

// Package metrics exposes Prometheus counters for lazy-value resolution.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Target labels.
const (
	TargetReference = "reference"
	TargetContainer = "container"
)

// Metrics holds the resolution instruments.
type Metrics struct {
	resolutions  *prometheus.CounterVec   // By target and outcome
	loads        *prometheus.CounterVec   // By target
	failures     *prometheus.CounterVec   // By reason
	loadDuration *prometheus.HistogramVec // By target
}

// New creates the instruments and registers them with reg.
// A nil reg disables metrics and returns (nil, nil).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazyref",
			Name:      "resolutions_total",
			Help:      "Total number of lazy values resolved, by outcome",
		}, []string{"target", "outcome"}), // outcome: materialized, placeholder, suppressed, backing, absent

		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazyref",
			Name:      "loads_total",
			Help:      "Total number of loads forced during serialization",
		}, []string{"target"}),

		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazyref",
			Name:      "placeholder_failures_total",
			Help:      "Total number of minimal entities that could not be built",
		}, []string{"reason"}),

		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lazyref",
			Name:      "load_duration_seconds",
			Help:      "Duration of forced loads in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}, // Cache hit to slow query
		}, []string{"target"}),
	}

	for _, c := range []prometheus.Collector{m.resolutions, m.loads, m.failures, m.loadDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordResolution counts one resolution of target with outcome.
func (m *Metrics) RecordResolution(target, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(target, outcome).Inc()
}

// RecordLoad counts one forced load of target.
func (m *Metrics) RecordLoad(target string, d time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(target).Inc()
	m.loadDuration.WithLabelValues(target).Observe(d.Seconds())
}

// RecordFailure counts one minimal-entity construction failure.
func (m *Metrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}
