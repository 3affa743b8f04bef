// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package automaton

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ericwq/vtseq/pattern"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultMaxStates bounds subset construction.
const DefaultMaxStates = 4096

// Reject is the next-state value of a missing transition.
const Reject = -1

type config struct {
	maxStates int
}

type Option func(*config)

// WithMaxStates overrides DefaultMaxStates.
func WithMaxStates(n int) Option {
	return func(c *config) { c.maxStates = n }
}

// dstate is one deterministic state. next and ops are indexed by byte class.
type dstate struct {
	next   []int32
	ops    []Op
	accept int32
	region Region
}

// Table is the compiled, read-only automaton shared by every runtime engine
// of one pattern set.
type Table struct {
	classes [256]uint8
	nclass  int
	start   int
	states  []dstate
	accepts []Accept
}

// closure is a set of NFA states, sorted.
type closure []int

func (c closure) key() string {
	var sb strings.Builder
	for i, id := range c {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	return sb.String()
}

func (b *Builder) closureOf(seed []int) closure {
	seen := make(map[int]struct{}, len(seed))
	stack := append([]int(nil), seed...)
	for _, id := range seed {
		seen[id] = struct{}{}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range b.states[top].eps {
			if _, ok := seen[to]; !ok {
				seen[to] = struct{}{}
				stack = append(stack, to)
			}
		}
	}
	ids := maps.Keys(seen)
	slices.Sort(ids)
	return ids
}

// byteClasses partitions the 256 bytes so that two bytes share a class when
// every edge set of the NFA either holds both or neither.
func (b *Builder) byteClasses() (classes [256]uint8, reps []byte) {
	var sets []pattern.ByteSet
	seen := make(map[pattern.ByteSet]struct{})
	for _, s := range b.states {
		for _, e := range s.edges {
			if _, ok := seen[e.set]; !ok {
				seen[e.set] = struct{}{}
				sets = append(sets, e.set)
			}
		}
	}

	ids := make(map[string]uint8)
	sig := make([]byte, len(sets))
	for c := 0; c < 256; c++ {
		for i, s := range sets {
			sig[i] = '0'
			if s.Has(byte(c)) {
				sig[i] = '1'
			}
		}
		id, ok := ids[string(sig)]
		if !ok {
			id = uint8(len(reps))
			ids[string(sig)] = id
			reps = append(reps, byte(c))
		}
		classes[c] = id
	}
	return classes, reps
}

func (b *Builder) owners(ids []int) []string {
	var names []string
	for _, id := range ids {
		if o := b.states[id].owner; o >= 0 {
			name := b.accepts[o].Pattern
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// Compile converts the builder into a Table by subset construction over
// byte classes. It fails with ErrAmbiguous when the pattern set cannot be
// told apart byte by byte: two patterns end on the same input, one pattern
// is a prefix of another, or the same byte would be collected differently.
func Compile(b *Builder, opts ...Option) (*Table, error) {
	cfg := config{maxStates: DefaultMaxStates}
	for _, o := range opts {
		o(&cfg)
	}
	if len(b.accepts) == 0 {
		return nil, ErrNoPatterns
	}

	t := &Table{accepts: b.accepts}
	var reps []byte
	t.classes, reps = b.byteClasses()
	t.nclass = len(reps)

	index := make(map[string]int)
	var sets []closure

	add := func(c closure) (int, error) {
		k := c.key()
		if id, ok := index[k]; ok {
			return id, nil
		}
		if len(sets) >= cfg.maxStates {
			return 0, fmt.Errorf("%w: more than %d", ErrTooManyStates, cfg.maxStates)
		}
		index[k] = len(sets)
		sets = append(sets, c)
		return len(sets) - 1, nil
	}

	start, _ := add(b.closureOf([]int{b.start}))
	t.start = start

	for cur := 0; cur < len(sets); cur++ {
		ds := dstate{
			next:   make([]int32, t.nclass),
			ops:    make([]Op, t.nclass),
			accept: -1,
		}
		outgoing := false

		for class, rep := range reps {
			var (
				targets []int
				sources []int
				op      Op
				opSet   bool
			)
			for _, id := range sets[cur] {
				for _, e := range b.states[id].edges {
					if !e.set.Has(rep) {
						continue
					}
					if opSet && e.op != op {
						return nil, fmt.Errorf("%w: byte %#04x is collected as %s and %s by %q",
							ErrAmbiguous, rep, op, e.op, b.owners(append(sources, id)))
					}
					op, opSet = e.op, true
					targets = append(targets, e.to)
					sources = append(sources, id)
				}
			}
			if len(targets) == 0 {
				ds.next[class] = Reject
				continue
			}
			next, err := add(b.closureOf(targets))
			if err != nil {
				return nil, err
			}
			ds.next[class] = int32(next)
			ds.ops[class] = op
			outgoing = true
		}

		for _, id := range sets[cur] {
			s := b.states[id]
			if s.region > ds.region {
				ds.region = s.region
			}
			if s.accept < 0 {
				continue
			}
			if ds.accept >= 0 && int(ds.accept) != s.accept {
				return nil, fmt.Errorf("%w: %q and %q match the same input",
					ErrAmbiguous, b.accepts[ds.accept].Pattern, b.accepts[s.accept].Pattern)
			}
			ds.accept = int32(s.accept)
		}
		if ds.accept >= 0 && outgoing {
			return nil, fmt.Errorf("%w: %q is a prefix of %q",
				ErrAmbiguous, b.accepts[ds.accept].Pattern, b.extensionsOf(sets[cur], int(ds.accept)))
		}

		t.states = append(t.states, ds)
	}
	return t, nil
}

// extensionsOf names the patterns that continue past an accepting closure.
func (b *Builder) extensionsOf(c closure, self int) []string {
	var ids []int
	for _, id := range c {
		if len(b.states[id].edges) > 0 {
			ids = append(ids, id)
		}
	}
	names := b.owners(ids)
	if len(names) == 0 {
		// the pattern loops on itself, e.g. a trailing {Pt}
		return []string{b.accepts[self].Pattern}
	}
	return names
}
