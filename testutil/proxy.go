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

// Package testutil provides an in-memory persistence runtime for tests: lazy
// references, lazy containers, sessions and session factories that count
// their loads.
package testutil

import (
	"sync"

	"dirpx.dev/lazyref/apis"
)

// Proxy is a lazy reference of the in-memory runtime. It plays the role of
// the runtime's initializer: the accessor slot identifierMethod is private,
// as it is in real runtimes.
type Proxy struct {
	mu          sync.Mutex
	entityName  string
	id          any
	target      any
	loadErr     error
	initialized bool
	loads       int

	session          func() any
	identifierMethod string
}

var (
	_ apis.Reference     = (*Proxy)(nil)
	_ apis.SessionHolder = (*Proxy)(nil)
)

// ProxyOption configures a Proxy.
type ProxyOption func(*Proxy)

// WithTarget sets the entity the proxy loads.
func WithTarget(target any) ProxyOption {
	return func(p *Proxy) { p.target = target }
}

// Loaded marks the proxy as already initialized with target.
func Loaded(target any) ProxyOption {
	return func(p *Proxy) {
		p.target = target
		p.initialized = true
	}
}

// WithLoadError makes Initialize fail with err.
func WithLoadError(err error) ProxyOption {
	return func(p *Proxy) { p.loadErr = err }
}

// WithSession sets the session reported by Session.
func WithSession(s any) ProxyOption {
	return func(p *Proxy) { p.session = func() any { return s } }
}

// WithSessionFunc sets a function producing the session; it may panic.
func WithSessionFunc(fn func() any) ProxyOption {
	return func(p *Proxy) { p.session = fn }
}

// WithIdentifierMethod fills the private accessor slot.
func WithIdentifierMethod(name string) ProxyOption {
	return func(p *Proxy) { p.identifierMethod = name }
}

// NewProxy returns an unloaded reference to entityName with identifier id.
func NewProxy(entityName string, id any, opts ...ProxyOption) *Proxy {
	p := &Proxy{entityName: entityName, id: id}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EntityName implements apis.Reference.
func (p *Proxy) EntityName() string { return p.entityName }

// Identifier implements apis.Reference.
func (p *Proxy) Identifier() any { return p.id }

// IsInitialized implements apis.Reference.
func (p *Proxy) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Initialize implements apis.Reference. Each successful call on an unloaded
// proxy counts as one load.
func (p *Proxy) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loads++
	p.initialized = true
	return nil
}

// Implementation implements apis.Reference.
func (p *Proxy) Implementation() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return nil
	}
	return p.target
}

// Session implements apis.SessionHolder.
func (p *Proxy) Session() any {
	if p.session == nil {
		return nil
	}
	return p.session()
}

// Loads returns the number of loads performed so far.
func (p *Proxy) Loads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads
}
