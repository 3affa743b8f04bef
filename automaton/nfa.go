// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package automaton

import (
	"errors"
	"fmt"

	"github.com/ericwq/vtseq/pattern"
)

var (
	ErrNoPatterns    = errors.New("no pattern registered")
	ErrAmbiguous     = errors.New("ambiguous pattern set")
	ErrTooManyStates = errors.New("too many automaton states")
	ErrCorruptTable  = errors.New("corrupt table encoding")
)

// Op tells the runtime what to do with a byte taken on a transition.
type Op uint8

const (
	OpNone      Op = iota // plain byte, closes a pending numeric parameter
	OpDigit               // append a digit to the current numeric parameter
	OpSeparator           // finish the current numeric parameter
	OpText                // append the byte to the text parameter
)

func (op Op) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpDigit:
		return "digit"
	case OpSeparator:
		return "sep"
	case OpText:
		return "text"
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Region marks the parameter region a state belongs to.
type Region uint8

const (
	RegionPlain Region = iota
	RegionNumeric
	RegionText
)

func (r Region) String() string {
	switch r {
	case RegionNumeric:
		return "numeric"
	case RegionText:
		return "text"
	}
	return "plain"
}

// Accept is the completion record of one distinct pattern string. Handlers
// are indexes into the handler slice the runtime is bound with.
type Accept struct {
	Pattern  string
	Handlers []int
}

type edge struct {
	set pattern.ByteSet
	op  Op
	to  int
}

type nfaState struct {
	edges  []edge
	eps    []int
	region Region
	owner  int // pattern index, -1 for the shared start state
	accept int // pattern index, -1 when not accepting
}

// Builder collects patterns into one non-deterministic automaton. The
// builder owns its states until Compile turns them into a Table.
type Builder struct {
	states    []*nfaState
	start     int
	accepts   []Accept
	byPattern map[string]int
}

func NewBuilder() *Builder {
	b := &Builder{byPattern: make(map[string]int)}
	b.start = b.newState(-1, RegionPlain)
	return b
}

func (b *Builder) newState(owner int, region Region) int {
	b.states = append(b.states, &nfaState{owner: owner, accept: -1, region: region})
	return len(b.states) - 1
}

func (b *Builder) addEdge(from int, set pattern.ByteSet, op Op, to int) {
	b.states[from].edges = append(b.states[from].edges, edge{set: set, op: op, to: to})
}

func (b *Builder) addEps(from, to int) {
	b.states[from].eps = append(b.states[from].eps, to)
}

// Len returns the number of NFA states built so far.
func (b *Builder) Len() int { return len(b.states) }

// Patterns returns the distinct patterns in registration order.
func (b *Builder) Patterns() []Accept { return b.accepts }

// AddPattern parses src and adds it with the given handler index.
func (b *Builder) AddPattern(src string, handler int) error {
	elems, err := pattern.Parse(src)
	if err != nil {
		return err
	}
	return b.AddElements(src, elems, handler)
}

// AddElements adds an already parsed pattern. The accept record is keyed by
// src: adding the same pattern again only records the extra handler, and
// adding the same (pattern, handler) pair twice is a no-op.
func (b *Builder) AddElements(src string, elems []pattern.Element, handler int) error {
	if len(elems) == 0 {
		return &pattern.SyntaxError{Pattern: src, Msg: "empty pattern"}
	}

	if idx, ok := b.byPattern[src]; ok {
		for _, h := range b.accepts[idx].Handlers {
			if h == handler {
				return nil
			}
		}
		b.accepts[idx].Handlers = append(b.accepts[idx].Handlers, handler)
		return nil
	}

	idx := len(b.accepts)
	b.accepts = append(b.accepts, Accept{Pattern: src, Handlers: []int{handler}})
	b.byPattern[src] = idx

	cur := b.start
	for _, e := range foldC1(elems) {
		cur = b.thread(cur, e, idx)
	}
	b.states[cur].accept = idx
	return nil
}

// foldC1 rewrites a literal ESC followed by a literal Fe byte into the
// equivalent C1 control, so 7-bit and 8-bit input meet on one path.
func foldC1(elems []pattern.Element) []pattern.Element {
	out := make([]pattern.Element, 0, len(elems))
	for i := 0; i < len(elems); i++ {
		e := elems[i]
		if e.Kind == pattern.Literal && i+1 < len(elems) && elems[i+1].Kind == pattern.Literal {
			first, _ := e.Set.Single()
			second, _ := elems[i+1].Set.Single()
			if c1, ok := pattern.C1(second); ok && first == pattern.ESC {
				out = append(out, pattern.Element{Kind: pattern.Literal, Set: pattern.NewByteSet(c1)})
				i++
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// thread appends the fragment for e after state from and returns its exit.
func (b *Builder) thread(from int, e pattern.Element, owner int) int {
	switch e.Kind {
	case pattern.Literal, pattern.CharSet:
		to := b.newState(owner, RegionPlain)
		b.addEdge(from, e.Set, OpNone, to)
		return to

	case pattern.FixedParams:
		exit := b.newState(owner, RegionPlain)
		slot := b.newState(owner, RegionNumeric)
		b.addEps(from, slot)
		for i := 0; i < e.Count; i++ {
			b.addEdge(slot, pattern.Digits, OpDigit, slot)
			b.addEps(slot, exit)
			if i == e.Count-1 {
				break
			}
			next := b.newState(owner, RegionNumeric)
			b.addEdge(slot, pattern.NewByteSet(pattern.Separator), OpSeparator, next)
			slot = next
		}
		return exit

	case pattern.VariableParams:
		exit := b.newState(owner, RegionPlain)
		slot := b.newState(owner, RegionNumeric)
		b.addEps(from, slot)
		b.addEdge(slot, pattern.Digits, OpDigit, slot)
		b.addEdge(slot, pattern.NewByteSet(pattern.Separator), OpSeparator, slot)
		b.addEps(slot, exit)
		return exit

	case pattern.TextParam, pattern.AnyString:
		exit := b.newState(owner, RegionPlain)
		body := b.newState(owner, RegionText)
		b.addEps(from, body)
		b.addEdge(body, e.Set, OpText, body)
		b.addEps(body, exit)
		return exit
	}
	panic(fmt.Sprintf("automaton: unknown element kind %s", e.Kind))
}
