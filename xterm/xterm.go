// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xterm

import (
	"github.com/ericwq/vtseq/engine"
	"github.com/ericwq/vtseq/executor"
)

/* 64 - VT420 family
 *  1 - 132 columns
 *  9 - National Replacement Character-sets
 * 15 - DEC technical set
 * 21 - horizontal scrolling
 * 22 - color
 */
const (
	xtermDeviceAttr    = "\x1b[?64;1;9;15;21;22c"
	xtermSecondaryAttr = "\x1b[>64;0;0c" // VT520
)

// Xterm decodes what VT100 does plus the xterm extensions.
type Xterm struct {
	*VT100
	title string
}

func NewXterm(sink Sink) *Xterm {
	return &Xterm{VT100: NewVT100(sink)}
}

// Engine returns an engine bound to x over the shared xterm table.
func (x *Xterm) Engine(opts ...engine.Option) (*engine.Engine, error) {
	return xtermSet.New(x, opts...)
}

// Title returns the window title set by OSC 0 or OSC 2.
func (x *Xterm) Title() string { return x.title }

// XtermSet returns the xterm handler set.
func XtermSet() *executor.Set[*Xterm] { return xtermSet }

var xtermSet = executor.Inherit(vt100, "xterm", func(x *Xterm) *VT100 { return x.VT100 }).
	Handle("osc", osc,
		"{OSC}{P1};{Pt}{BEL}", "{OSC}{P1};{Pt}{ST}",
		"{OSC}{P1}{BEL}", "{OSC}{P1}{ST}").
	Handle("dcs", str("dcs"), "{DCS}{Ps}{ST}").
	Handle("sos", str("sos"), "{SOS}{Ps}{ST}").
	Handle("pm", str("pm"), "{PM}{Ps}{ST}").
	Handle("apc", str("apc"), "{APC}{Ps}{ST}").
	Handle("cha", xcount("cha"), "{CSI}{P1}G").
	Handle("vpa", xcount("vpa"), "{CSI}{P1}d").
	Handle("ech", xcount("ech"), "{CSI}{P1}X").
	Handle("ich", xcount("ich"), "{CSI}{P1}@").
	Handle("dch", xcount("dch"), "{CSI}{P1}P").
	Handle("il", xcount("il"), "{CSI}{P1}L").
	Handle("dl", xcount("dl"), "{CSI}{P1}M").
	Handle("su", xcount("su"), "{CSI}{P1}S").
	Handle("sd", xcount("sd"), "{CSI}{P1}T").
	Handle("da", deviceAttrs, secondaryDA)

const secondaryDA = "{CSI}>{P1}c"

// OSC Ps ; Pt BEL  Set Text Parameters, also terminated by ST.
// Args holds Ps, default 0, and Text holds Pt.
func osc(x *Xterm, ctx *engine.Context) {
	ps := ctx.Param(0, 0)
	if ps == 0 || ps == 2 {
		x.title = ctx.TextParam
	}
	x.emit(Command{Name: "osc", Args: []int{ps}, Text: ctx.TextParam})
}

// str emits the content of a DCS, SOS, PM or APC string.
func str(name string) executor.Func[*Xterm] {
	return func(x *Xterm, ctx *engine.Context) {
		x.emit(Command{Name: name, Text: ctx.TextParam})
	}
}

func xcount(name string) executor.Func[*Xterm] {
	return func(x *Xterm, ctx *engine.Context) {
		x.emit(Command{Name: name, Args: args(ctx, 1, 1)})
	}
}

// CSI Ps c  Send Device Attributes (Primary DA).
// CSI > Ps c  Send Device Attributes (Secondary DA).
// Ps = 0 or omitted requests the attributes. Text holds the reply.
func deviceAttrs(x *Xterm, ctx *engine.Context) {
	if ctx.Param(0, 0) != 0 {
		return
	}
	reply := xtermDeviceAttr
	if ctx.Pattern == secondaryDA {
		reply = xtermSecondaryAttr
	}
	x.emit(Command{Name: "da", Text: reply})
}
