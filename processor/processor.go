// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package processor turns a byte stream into characters, recognized control
// sequences and unknown sequences. It decodes UTF-8, folds 7-bit escape
// forms into C1 controls and recovers from sequences no pattern accepts.
package processor

import (
	"unicode/utf8"

	"github.com/ericwq/vtseq/engine"
	"github.com/ericwq/vtseq/pattern"
	"github.com/ericwq/vtseq/util"
)

// Output receives everything that is not a recognized sequence. Recognized
// sequences go to the engine handlers.
type Output interface {
	HandleChar(r rune)
	HandleUnknown(seq []byte)
}

// OutputFuncs adapts two functions to Output. A nil field drops the event.
type OutputFuncs struct {
	Char    func(r rune)
	Unknown func(seq []byte)
}

func (o OutputFuncs) HandleChar(r rune) {
	if o.Char != nil {
		o.Char(r)
	}
}

func (o OutputFuncs) HandleUnknown(seq []byte) {
	if o.Unknown != nil {
		o.Unknown(seq)
	}
}

// DefaultRuneClass is the byte fed to the engine for a rune at or above
// U+00A0 inside a string parameter. Its source bytes are still the encoded
// rune. Outside a string parameter such a rune never continues a sequence.
const DefaultRuneClass = 'A'

type Option func(*Processor)

func WithMetrics(m *Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithRuneClass changes the byte a rune at or above U+00A0 is matched as
// inside a string parameter.
func WithRuneClass(b byte) Option {
	return func(p *Processor) { p.runeClass = b }
}

// Processor feeds a stream into an engine. It is not safe for concurrent use.
type Processor struct {
	engine    *engine.Engine
	out       Output
	metrics   *Metrics
	runeClass byte

	partial []byte // incomplete UTF-8 sequence from the previous write
	esc     []byte // source of a held ESC, nil when none is held
}

func New(e *engine.Engine, out Output, opts ...Option) *Processor {
	p := &Processor{
		engine:    e,
		out:       out,
		runeClass: DefaultRuneClass,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) Engine() *engine.Engine { return p.engine }

// Write processes buf. A multi-byte character or an escape sequence may be
// split across writes. It never fails.
func (p *Processor) Write(buf []byte) (int, error) {
	data := buf
	if len(p.partial) > 0 {
		data = append(p.partial, buf...)
		p.partial = nil
	}

	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			p.feed(data[i], rune(data[i]), data[i:i+1])
			i++
			continue
		}
		if !utf8.FullRune(data[i:]) {
			p.partial = append([]byte(nil), data[i:]...)
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		p.feed(p.classOf(r, data[i], size), r, data[i:i+size])
		i += size
	}
	return len(buf), nil
}

func (p *Processor) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

// Flush finishes the stream: a held ESC and any incomplete character are
// processed, then an unfinished sequence is reported as unknown.
func (p *Processor) Flush() {
	if len(p.partial) > 0 {
		partial := p.partial
		p.partial = nil
		for i, b := range partial {
			p.feed(b, utf8.RuneError, partial[i:i+1])
		}
	}
	if p.esc != nil {
		esc := p.esc
		p.esc = nil
		p.step(pattern.ESC, rune(pattern.ESC), esc, false)
	}
	if p.engine.InSequence() {
		p.unknown(p.engine.Pending())
		p.engine.Reset()
	}
}

// classOf returns the byte a decoded rune is matched as.
func (p *Processor) classOf(r rune, first byte, size int) byte {
	switch {
	case r == utf8.RuneError && size == 1:
		// not UTF-8: the raw byte, so 8-bit controls still work
		return first
	case r < 0xa0:
		return byte(r)
	}
	return p.runeClass
}

// feed applies C1 folding before stepping the engine.
func (p *Processor) feed(b byte, r rune, src []byte) {
	if p.esc != nil {
		esc := p.esc
		p.esc = nil
		// len(src) keeps a wide rune matched as a letter from folding
		if c1, ok := pattern.C1(b); ok && len(src) == 1 {
			p.step(c1, rune(c1), append(esc, src...), true)
			return
		}
		p.step(pattern.ESC, rune(pattern.ESC), esc, false)
	}
	if b == pattern.ESC {
		p.esc = append(make([]byte, 0, 2), src...)
		return
	}
	p.step(b, r, src, false)
}

// wide reports whether r is a multi-byte character that is matched only as
// string content.
func wide(r rune, src []byte) bool {
	return r >= 0xa0 && len(src) > 1
}

func (p *Processor) step(b byte, r rune, src []byte, folded bool) {
	idle := !p.engine.InSequence()
	if wide(r, src) && !p.engine.InText() {
		if idle {
			p.metrics.char()
			p.out.HandleChar(r)
			return
		}
		p.engine.Abort(src)
		p.unknown(p.engine.Rejected())
		return
	}

	if p.engine.Process(b, src) {
		if !p.engine.InSequence() {
			p.metrics.sequence(p.engine.LastPattern())
			util.Logger.Trace("sequence", "pattern", p.engine.LastPattern())
		}
		return
	}

	rejected := append([]byte(nil), p.engine.Rejected()...)
	if idle {
		if folded || b == pattern.ESC {
			p.unknown(rejected)
			return
		}
		p.metrics.char()
		p.out.HandleChar(r)
		return
	}

	if p.engine.CanStart(b) {
		p.unknown(rejected[:len(rejected)-len(src)])
		p.step(b, r, src, folded)
		return
	}
	p.unknown(rejected)
}

func (p *Processor) unknown(seq []byte) {
	seq = append([]byte(nil), seq...)
	p.metrics.unknownSequence()
	util.Logger.Debug("unknown sequence", "seq", seq)
	p.out.HandleUnknown(seq)
}
