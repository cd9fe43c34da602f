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

package lazyref

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/lazyref/apis"
	"dirpx.dev/lazyref/builder"
	"dirpx.dev/lazyref/config"
	"dirpx.dev/lazyref/document"
)

// init initializes the global state.
func init() {
	s := &state{cfg: config.DefaultConfig(), bld: builder.New()}
	s.reg = s.bld.BuildRegistry(s.cfg, nil, nil)
	mod, err := s.bld.BuildModule(s.cfg, s.reg, nil)
	if err != nil {
		panic(err)
	}
	s.setModule(mod)
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("lazyref: builder returned nil registry")
	// ErrNilModule is returned when a builder returns a nil module.
	ErrNilModule = errors.New("lazyref: builder returned nil module")
)

// Serialize writes v as JSON through the global module.
func Serialize(v any) ([]byte, error) {
	return st.Load().doc.Serialize(v)
}

// SerializeTyped writes v as JSON with wrapper-array type ids.
func SerializeTyped(v any) ([]byte, error) {
	return st.Load().doc.SerializeTyped(v)
}

// Schema returns the JSON Schema of t as seen by the global module.
// Lazy properties are described by their declared types.
func Schema(t reflect.Type) (map[string]any, error) {
	return st.Load().doc.Schema(t)
}

// Register adds an entity to the global registry. t may be nil and
// idProperty may be empty, but not both.
func Register(name string, t reflect.Type, idProperty string) error {
	return st.Load().reg.Register(name, t, idProperty)
}

// RegisterEntity registers T under name with idProperty.
func RegisterEntity[T any](name, idProperty string) error {
	return Register(name, reflect.TypeFor[T](), idProperty)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg and rebuilds every
// unpinned layer. On error the previous state stays published.
func SetConfig(cfg apis.Config) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.cfg = cfg
	return publish(&next, true)
}

// Features returns the global feature set.
func Features() apis.Features {
	return st.Load().cfg.Features
}

// SetFeatures replaces the global feature set.
func SetFeatures(fs apis.Features) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.cfg.Features = fs
	return publish(&next, false)
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry sets and pins the global registry. The module is rebuilt
// over it unless pinned. A nil reg is ignored.
func SetRegistry(reg apis.Registry) error {
	if reg == nil {
		return nil
	}
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.reg = reg
	next.preg = true
	return publish(&next, false)
}

// Module returns the global serialization module.
func Module() apis.Module {
	return st.Load().mod
}

// SetModule sets and pins the global module. A nil m is ignored.
func SetModule(m apis.Module) {
	if m == nil {
		return
	}
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.setModule(m)
	next.pmod = true
	st.Store(&next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder and rebuilds every unpinned layer
// with it. A nil b is ignored.
func SetBuilder(b apis.Builder) error {
	if b == nil {
		return nil
	}
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.bld = b
	return publish(&next, true)
}

// SetRuntime describes the host persistence runtime to the default builder
// and rebuilds every unpinned layer. A runtime initializer without the
// configured accessor slot is reported here.
func SetRuntime(rt builder.Runtime) error {
	return SetExt(rt)
}

// SetExt replaces the extension context passed to the builder and rebuilds
// every unpinned layer.
func SetExt[T any](ext T) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.ext = ext
	return publish(&next, true)
}

// ExtAs returns the global extension context as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// SetAll explicitly sets all global state components.
//
// A nil cfg or bld leaves the corresponding component unchanged; ext is
// always replaced. A non-nil reg or mod is pinned; a nil one is unpinned
// and rebuilt, the registry migrating the entries of the previous one.
func SetAll(cfg *apis.Config, ext any, reg apis.Registry, mod apis.Module, bld apis.Builder) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	if cfg != nil {
		next.cfg = *cfg
	}
	if bld != nil {
		next.bld = bld
	}
	next.ext = ext
	if reg != nil {
		next.reg = reg
	}
	next.preg = reg != nil
	next.pmod = mod != nil
	if mod != nil {
		next.setModule(mod)
	}
	return publish(&next, true)
}

// IsRegistryPinned reports whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops rebuilds of the global registry.
func PinRegistry() { setPins(func(s *state) { s.preg = true }) }

// UnpinRegistry lets the global registry be rebuilt again.
func UnpinRegistry() { setPins(func(s *state) { s.preg = false }) }

// IsModulePinned reports whether the global module is pinned.
func IsModulePinned() bool {
	return st.Load().pmod
}

// PinModule stops rebuilds of the global module.
func PinModule() { setPins(func(s *state) { s.pmod = true }) }

// UnpinModule lets the global module be rebuilt again.
func UnpinModule() { setPins(func(s *state) { s.pmod = false }) }

func setPins(fn func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	fn(&next)
	st.Store(&next)
}

// publish rebuilds the unpinned layers of next and stores it. The registry
// is rebuilt only when withRegistry is set; a rebuilt registry migrates the
// entries of the previous one.
func publish(next *state, withRegistry bool) error {
	if (withRegistry && !next.preg) || next.reg == nil {
		next.reg = next.bld.BuildRegistry(next.cfg, next.reg, next.ext)
		if next.reg == nil {
			return ErrNilRegistry
		}
	}
	if !next.pmod {
		mod, err := next.bld.BuildModule(next.cfg, next.reg, next.ext)
		if err != nil {
			return err
		}
		if mod == nil {
			return ErrNilModule
		}
		next.setModule(mod)
	}
	st.Store(next)
	return nil
}

// buildMu serializes writers so partially-built snapshots are never published.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable once published via st.Store; writers copy it, rebuild what
// changed and swap the copy in.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// ext is the extension context passed to the builder.
	ext any
	// reg is the global entity catalogue.
	reg apis.Registry
	// mod is the global serialization module.
	mod apis.Module
	// doc is the provider serving mod; its serializer cache lives as long as mod.
	doc *document.Provider
	// bld is the global builder.
	bld apis.Builder
	// preg indicates whether reg is pinned.
	preg bool
	// pmod indicates whether mod is pinned.
	pmod bool
}

func (s *state) setModule(m apis.Module) {
	s.mod = m
	s.doc = document.NewProvider(document.WithModule(m))
}
