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

// Package collection resolves lazy containers and converts runtime
// containers into plain Go slices and maps.
package collection

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/entity"
	"dirpx.dev/lazyref/metrics"
	"dirpx.dev/lazyref/proxy"
)

// Mode tells how a container resolved.
type Mode uint8

const (
	// ModeAbsent means there is nothing to emit; it serializes as null.
	ModeAbsent Mode = iota
	// ModeBacking means Value is the backing store, passed through.
	ModeBacking
	// ModePlaceholders means Value is a []any of minimal entities in iteration order.
	ModePlaceholders
)

var modeNames = [...]string{
	ModeAbsent:       "absent",
	ModeBacking:      "backing",
	ModePlaceholders: "placeholders",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("unknown(%d)", m)
}

// Resolution is the result of one Adapter.Resolve call.
type Resolution struct {
	Mode  Mode
	Value any
}

// Absent reports whether r carries no value.
func (r Resolution) Absent() bool { return r.Mode == ModeAbsent }

// Adapter resolves lazy containers under a policy.
type Adapter struct {
	refs    *proxy.Resolver
	builder apis.EntityBuilder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewAdapter returns an Adapter. refs resolves elements that are lazy
// references; builder turns loaded elements into placeholders.
func NewAdapter(refs *proxy.Resolver, builder apis.EntityBuilder, logger *slog.Logger, m *metrics.Metrics) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{refs: refs, builder: builder, logger: logger, metrics: m}
}

// Resolve evaluates c once against p. A loaded container, or one loaded
// because of ForceLoad, resolves to its backing store. With
// SerializeIdentifierOnly an unloaded container resolves to placeholders,
// except for maps which have no element iteration and resolve absent.
func (a *Adapter) Resolve(c apis.Container, p apis.Policy) Resolution {
	res := a.resolve(c, p)
	a.metrics.RecordResolution(metrics.TargetContainer, res.Mode.String())
	return res
}

func (a *Adapter) resolve(c apis.Container, p apis.Policy) Resolution {
	if c == nil {
		return Resolution{Mode: ModeAbsent}
	}
	if c.WasInitialized() {
		return Resolution{Mode: ModeBacking, Value: c.Value()}
	}

	switch {
	case p.ForceLoad:
		start := time.Now()
		if err := c.ForceInitialization(); err != nil {
			a.logger.Error("failed to load container", "kind", c.Kind(), "error", err)
			return Resolution{Mode: ModeAbsent}
		}
		a.metrics.RecordLoad(metrics.TargetContainer, time.Since(start))
		return Resolution{Mode: ModeBacking, Value: c.Value()}

	case p.SerializeIdentifierOnly:
		seq, err := Elements(c)
		if err != nil {
			a.logger.Debug("container has no identifier-only form", "kind", c.Kind(), "error", err)
			return Resolution{Mode: ModeAbsent}
		}
		out := []any{}
		for e := range seq {
			out = append(out, a.element(e, p))
		}
		return Resolution{Mode: ModePlaceholders, Value: out}

	default:
		return Resolution{Mode: ModeAbsent}
	}
}

// element resolves one element. Failures yield nil in place.
func (a *Adapter) element(e any, p apis.Policy) any {
	if e == nil {
		return nil
	}
	if ref, ok := e.(apis.Reference); ok {
		if a.refs == nil {
			return nil
		}
		return a.refs.Resolve(ref, p).Value
	}
	if a.builder == nil {
		return nil
	}
	v, err := a.builder.FromObject(e)
	if err != nil {
		a.metrics.RecordFailure(entity.Reason(err))
		a.logger.Error("failed to build minimal entity", "element", fmt.Sprintf("%T", e), "error", err)
		return nil
	}
	return v
}

// Elements returns the element sequence of c using the iteration of its kind.
// KindMap has none and yields ErrUnsupportedContainer, as does a container
// lacking the capability its kind requires.
func Elements(c apis.Container) (iter.Seq[any], error) {
	it, ok := iterators[c.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedContainer, c.Kind())
	}
	seq, ok := it(c)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not expose %s elements", ErrUnsupportedContainer, c, c.Kind())
	}
	return seq, nil
}

var iterators = map[apis.Kind]func(apis.Container) (iter.Seq[any], bool){
	apis.KindArray:         arrayElements,
	apis.KindBag:           iterableElements,
	apis.KindIdentifierBag: iterableElements,
	apis.KindList:          iterableElements,
	apis.KindSet:           iterableElements,
}

func arrayElements(c apis.Container) (iter.Seq[any], bool) {
	h, ok := c.(apis.ArrayHolder)
	if !ok {
		return nil, false
	}
	return h.Elements(), true
}

func iterableElements(c apis.Container) (iter.Seq[any], bool) {
	it, ok := c.(apis.Iterable)
	if !ok {
		return nil, false
	}
	return it.All(), true
}
