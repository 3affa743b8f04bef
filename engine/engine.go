// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"fmt"

	"github.com/ericwq/vtseq/automaton"
)

var ErrUnboundHandler = errors.New("pattern refers to an unbound handler")

// Handler receives a completed match.
type Handler func(ctx *Context)

type Option func(*Engine)

// WithMaxLength overrides MaxSequenceLength for one engine.
func WithMaxLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLen = n
		}
	}
}

// Engine walks a shared Table one byte at a time. It is not safe for
// concurrent use; every session owns its engine while the table is shared.
type Engine struct {
	table    *automaton.Table
	handlers []Handler
	maxLen   int

	state  int
	n      int    // bytes consumed since idle
	seq    []byte // source bytes consumed since idle
	params []Param
	cur    int  // digits of the current numeric slot
	digits bool // cur holds at least one digit
	text   []byte

	rejected []byte
	last     string
}

// New binds table to handlers. Every handler index recorded in the table
// must exist in handlers; a nil handler is a no-op.
func New(table *automaton.Table, handlers []Handler, opts ...Option) (*Engine, error) {
	for _, a := range table.Patterns() {
		for _, h := range a.Handlers {
			if h < 0 || h >= len(handlers) {
				return nil, fmt.Errorf("%w: %q wants handler %d of %d", ErrUnboundHandler, a.Pattern, h, len(handlers))
			}
		}
	}

	e := &Engine{
		table:    table,
		handlers: handlers,
		maxLen:   MaxSequenceLength,
		state:    table.Start(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Table() *automaton.Table { return e.table }

// InSequence reports whether a partial match is in progress.
func (e *Engine) InSequence() bool { return e.n > 0 }

// CanStart reports whether b can begin a sequence.
func (e *Engine) CanStart(b byte) bool { return e.table.CanStart(b) }

// InText reports whether the partial match is inside a string parameter,
// where the next character may be content.
func (e *Engine) InText() bool {
	return e.n > 0 && e.table.Region(e.state) == automaton.RegionText
}

// Pending returns the bytes consumed by the partial match. The slice is
// owned by the engine and valid until the next Process, Abort or Reset.
func (e *Engine) Pending() []byte { return e.seq }

// Rejected returns the bytes of the sequence rejected by the latest call
// to Process or Abort, rejecting character included. It is empty otherwise.
// The slice is owned by the engine and valid until the next call to
// Process or Abort; copy it to keep it.
func (e *Engine) Rejected() []byte { return e.rejected }

// Abort rejects the partial match because of a character no pattern accepts
// at this point; src is its source bytes. It does nothing when idle.
func (e *Engine) Abort(src []byte) {
	e.rejected = e.rejected[:0]
	if e.n == 0 {
		return
	}
	e.seq = append(e.seq, src...)
	e.reject()
}

// LastPattern returns the pattern of the most recent match.
func (e *Engine) LastPattern() string { return e.last }

// Reset drops any partial match.
func (e *Engine) Reset() {
	e.state = e.table.Start()
	e.n = 0
	e.seq = e.seq[:0]
	e.params = e.params[:0]
	e.cur, e.digits = 0, false
	e.text = e.text[:0]
}

// Process consumes byte b, whose source bytes in the input are src (nil
// means b itself). It returns false when b does not continue any pattern or
// the sequence grew to the length limit; the consumed bytes are then
// available from Rejected and the engine is idle again. When b completes a
// pattern the bound handlers run before Process returns true.
func (e *Engine) Process(b byte, src []byte) bool {
	e.rejected = e.rejected[:0]
	if len(src) == 0 {
		src = []byte{b}
	}

	next, op := e.table.Step(e.state, b)
	e.seq = append(e.seq, src...)
	e.n++
	if next == automaton.Reject {
		e.reject()
		return false
	}

	switch op {
	case automaton.OpDigit:
		e.cur = e.cur*10 + int(b-'0')
		if e.cur > ParamMax {
			e.cur = ParamMax
		}
		e.digits = true
	case automaton.OpSeparator:
		if e.digits {
			e.params = append(e.params, Param(e.cur))
		} else {
			e.params = append(e.params, Omitted)
		}
		e.cur, e.digits = 0, false
	case automaton.OpText:
		e.text = append(e.text, src...)
	default:
		e.closeParam()
	}
	e.state = next

	if a, ok := e.table.Accept(next); ok {
		e.complete(a)
		return true
	}
	if e.n >= e.maxLen {
		e.reject()
		return false
	}
	return true
}

// closeParam records a slot that has digits. A slot left empty at the end
// of a parameter run is the trailing omitted one and is dropped.
func (e *Engine) closeParam() {
	if e.digits {
		e.params = append(e.params, Param(e.cur))
	}
	e.cur, e.digits = 0, false
}

func (e *Engine) complete(a automaton.Accept) {
	ctx := &Context{
		Sequence:        append([]byte(nil), e.seq...),
		Pattern:         a.Pattern,
		NumericalParams: append([]Param(nil), e.params...),
	}
	if len(e.text) > 0 {
		ctx.TextParam = string(e.text)
	}
	e.last = a.Pattern
	e.Reset()

	for _, h := range a.Handlers {
		if fn := e.handlers[h]; fn != nil {
			fn(ctx)
		}
	}
}

func (e *Engine) reject() {
	e.rejected = append(e.rejected[:0], e.seq...)
	e.Reset()
}
