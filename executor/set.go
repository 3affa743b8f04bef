// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package executor registers the handler methods of an executor type against
// patterns and builds the automaton once per type. Every executor instance
// then gets its own engine over the shared table.
package executor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ericwq/vtseq/automaton"
	"github.com/ericwq/vtseq/engine"
	"github.com/ericwq/vtseq/util"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
)

// ErrSealed is the panic value of Handle once the table is built.
var ErrSealed = errors.New("handler set is sealed")

// Func is a handler method of executor type T.
type Func[T any] func(exec T, ctx *engine.Context)

type method[T any] struct {
	name     string
	fn       Func[T]
	patterns []string
}

type result struct {
	table *automaton.Table
	err   error
}

// Set is the registry of one executor type. Registration happens during
// program initialization; Table and New may be called from any goroutine.
type Set[T any] struct {
	name string
	opts []automaton.Option

	mu      sync.Mutex
	methods []*method[T]
	byName  map[string]int
	sealed  bool

	built   atomic.Pointer[result]
	sflight singleflight.Group
}

// NewSet creates an empty set. name identifies the executor type in errors
// and logs.
func NewSet[T any](name string, opts ...automaton.Option) *Set[T] {
	return &Set[T]{
		name:   name,
		opts:   opts,
		byName: make(map[string]int),
	}
}

func (s *Set[T]) Name() string { return s.name }

// Handle binds fn to the given patterns under the method name. Handling a
// name again, including one inherited from a base set, replaces the bound
// function and adds the new patterns to the ones already listed. Pattern
// errors are reported by Table. Handle panics with ErrSealed once the table
// is built.
func (s *Set[T]) Handle(name string, fn Func[T], patterns ...string) *Set[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		panic(fmt.Errorf("%w: %s.%s", ErrSealed, s.name, name))
	}

	idx, ok := s.byName[name]
	if !ok {
		idx = len(s.methods)
		s.byName[name] = idx
		s.methods = append(s.methods, &method[T]{name: name})
	}
	m := s.methods[idx]
	m.fn = fn
	for _, p := range patterns {
		if !slices.Contains(m.patterns, p) {
			m.patterns = append(m.patterns, p)
		}
	}
	return s
}

// Inherit creates a set for D holding the methods registered on base so
// far. up converts a derived executor into the base executor the inherited
// functions expect.
func Inherit[D, B any](base *Set[B], name string, up func(D) B) *Set[D] {
	d := NewSet[D](name, base.opts...)

	base.mu.Lock()
	defer base.mu.Unlock()
	for _, m := range base.methods {
		fn := m.fn
		var derived Func[D]
		if fn != nil {
			derived = func(exec D, ctx *engine.Context) { fn(up(exec), ctx) }
		}
		d.byName[m.name] = len(d.methods)
		d.methods = append(d.methods, &method[D]{
			name:     m.name,
			fn:       derived,
			patterns: slices.Clone(m.patterns),
		})
	}
	return d
}

// Methods returns the method names in registration order.
func (s *Set[T]) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.methods))
	for i, m := range s.methods {
		names[i] = m.name
	}
	return names
}

// Patterns returns the patterns bound to a method.
func (s *Set[T]) Patterns(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.byName[name]; ok {
		return slices.Clone(s.methods[idx].patterns)
	}
	return nil
}

// Table returns the compiled table of the set. It is built on first use;
// concurrent first calls share one build and later calls return the same
// table, or the same error.
func (s *Set[T]) Table() (*automaton.Table, error) {
	if r := s.built.Load(); r != nil {
		return r.table, r.err
	}

	v, _, _ := s.sflight.Do(s.name, func() (interface{}, error) {
		if r := s.built.Load(); r != nil {
			return r, nil
		}
		r := s.build()
		s.built.Store(r)
		return r, nil
	})
	r := v.(*result)
	return r.table, r.err
}

// MustTable is like Table but panics on error. It is meant for package
// level initialization.
func (s *Set[T]) MustTable() *automaton.Table {
	t, err := s.Table()
	if err != nil {
		panic(err)
	}
	return t
}

func (s *Set[T]) build() *result {
	s.mu.Lock()
	s.sealed = true
	b := automaton.NewBuilder()
	var errs []error
	for i, m := range s.methods {
		for _, p := range m.patterns {
			if err := b.AddPattern(p, i); err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", s.name, m.name, err))
			}
		}
	}
	s.mu.Unlock()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		util.Logger.Warn("build handler set", "set", s.name, "error", err)
		return &result{err: err}
	}

	t, err := automaton.Compile(b, s.opts...)
	if err != nil {
		err = fmt.Errorf("%s: %w", s.name, err)
		util.Logger.Warn("build handler set", "set", s.name, "error", err)
		return &result{err: err}
	}

	st := t.Stats()
	util.Logger.Debug("build handler set", "set", s.name, "patterns", st.Patterns,
		"states", st.States, "classes", st.Classes)
	return &result{table: t}
}

// New returns an engine that dispatches the shared table to exec.
func (s *Set[T]) New(exec T, opts ...engine.Option) (*engine.Engine, error) {
	t, err := s.Table()
	if err != nil {
		return nil, err
	}

	// sealed: methods no longer change
	s.mu.Lock()
	handlers := make([]engine.Handler, len(s.methods))
	for i, m := range s.methods {
		if fn := m.fn; fn != nil {
			handlers[i] = func(ctx *engine.Context) { fn(exec, ctx) }
		}
	}
	s.mu.Unlock()

	return engine.New(t, handlers, opts...)
}
