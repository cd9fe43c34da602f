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
	"log/slog"

	"dirpx.dev/lazyref/apis"
)

// NewSessionStrategy creates an apis.Strategy that asks the session which
// created a reference for the identifier property of its entity.
//
// The session shape has changed across runtime versions, so it is probed:
// a session that hands out a factory (apis.SessionFactoryHolder) and a session
// that is itself a factory are both understood. Anything else falls through.
func NewSessionStrategy(logger *slog.Logger) apis.Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionStrategy{logger: logger}
}

type sessionStrategy struct {
	logger *slog.Logger
}

var _ apis.Strategy = (*sessionStrategy)(nil)

// TryResolve never lets a runtime failure escape: a panic while probing the
// session is logged and treated as "no result".
func (s *sessionStrategy) TryResolve(d apis.Descriptor) (name string, ok bool) {
	holder, isHolder := d.Reference.(apis.SessionHolder)
	if !isHolder {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("session probe failed", "entity", d.EntityName, "panic", r)
			name, ok = "", false
		}
	}()

	var factory apis.SessionFactory
	switch sess := holder.Session().(type) {
	case nil:
		return "", false
	case apis.SessionFactoryHolder:
		factory = sess.Factory()
	case apis.SessionFactory:
		factory = sess
	default:
		s.logger.Debug("session has unexpected shape", "entity", d.EntityName, "session", sess)
		return "", false
	}
	if factory == nil {
		return "", false
	}
	name, ok = factory.IdentifierPropertyName(d.EntityName)
	return name, ok && name != ""
}

// NewFactoryStrategy creates an apis.Strategy backed by a session factory the
// caller configured up front. It serves concrete entities, which carry no session.
func NewFactoryStrategy(f apis.SessionFactory) apis.Strategy {
	return apis.StrategyFunc(func(d apis.Descriptor) (string, bool) {
		if f == nil || d.EntityName == "" {
			return "", false
		}
		name, ok := f.IdentifierPropertyName(d.EntityName)
		return name, ok && name != ""
	})
}
