// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package automaton

// Start returns the initial state.
func (t *Table) Start() int { return t.start }

// Len returns the number of states.
func (t *Table) Len() int { return len(t.states) }

// Classes returns the number of byte classes.
func (t *Table) Classes() int { return t.nclass }

// Class returns the byte class of b.
func (t *Table) Class(b byte) int { return int(t.classes[b]) }

// Step returns the state reached from s on byte b and the collection op of
// that transition. next is Reject when b is not expected.
func (t *Table) Step(s int, b byte) (next int, op Op) {
	ds := &t.states[s]
	c := t.classes[b]
	return int(ds.next[c]), ds.ops[c]
}

// CanStart reports whether some pattern begins with b.
func (t *Table) CanStart(b byte) bool {
	next, _ := t.Step(t.start, b)
	return next != Reject
}

// Accept returns the completion record of an accepting state.
// The Handlers slice is shared and must not be modified.
func (t *Table) Accept(s int) (Accept, bool) {
	if a := t.states[s].accept; a >= 0 {
		return t.accepts[a], true
	}
	return Accept{}, false
}

// Region returns the parameter region of state s.
func (t *Table) Region(s int) Region { return t.states[s].region }

// Patterns returns the completion records in registration order.
func (t *Table) Patterns() []Accept {
	out := make([]Accept, len(t.accepts))
	copy(out, t.accepts)
	return out
}

// Stats summarizes the table size.
type Stats struct {
	States      int
	Classes     int
	Patterns    int
	Accepting   int
	Transitions int // non-reject (state, class) pairs
}

func (t *Table) Stats() (st Stats) {
	st.States = len(t.states)
	st.Classes = t.nclass
	st.Patterns = len(t.accepts)
	for i := range t.states {
		if t.states[i].accept >= 0 {
			st.Accepting++
		}
		for _, n := range t.states[i].next {
			if n != Reject {
				st.Transitions++
			}
		}
	}
	return st
}
