// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xterm

import (
	"github.com/ericwq/vtseq/engine"
	"github.com/ericwq/vtseq/executor"
)

// reply to primary DA: VT100 with advanced video option
const vt100DeviceAttr = "\x1b[?1;2c"

// VT100 decodes the control functions of a VT100.
type VT100 struct {
	sink Sink
}

func NewVT100(sink Sink) *VT100 {
	return &VT100{sink: sink}
}

func (v *VT100) emit(c Command) {
	if v.sink != nil {
		v.sink(c)
	}
}

// Engine returns an engine bound to v over the shared VT100 table.
func (v *VT100) Engine(opts ...engine.Option) (*engine.Engine, error) {
	return vt100.New(v, opts...)
}

// VT100Set returns the VT100 handler set.
func VT100Set() *executor.Set[*VT100] { return vt100 }

var vt100 = executor.NewSet[*VT100]("vt100").
	// C0
	Handle("bel", plain("bel"), "{BEL}").
	Handle("bs", plain("bs"), "{BS}").
	Handle("ht", plain("ht"), "{HT}").
	Handle("lf", plain("lf"), "[{LF}{VT}{FF}]").
	Handle("cr", plain("cr"), "{CR}").
	Handle("so", plain("so"), "{SO}").
	Handle("si", plain("si"), "{SI}").
	// ESC and C1
	Handle("decsc", plain("decsc"), "{ESC}7").
	Handle("decrc", plain("decrc"), "{ESC}8").
	Handle("deckpam", plain("deckpam"), "{ESC}=").
	Handle("deckpnm", plain("deckpnm"), "{ESC}>").
	Handle("ris", plain("ris"), "{ESC}c").
	Handle("ind", plain("ind"), "{IND}").
	Handle("nel", plain("nel"), "{NEL}").
	Handle("hts", plain("hts"), "{HTS}").
	Handle("ri", plain("ri"), "{RI}").
	Handle("scs", designate, "{ESC}[()][0AB]").
	// CSI
	Handle("cuu", count("cuu"), "{CSI}{P1}A").
	Handle("cud", count("cud"), "{CSI}{P1}B").
	Handle("cuf", count("cuf"), "{CSI}{P1}C").
	Handle("cub", count("cub"), "{CSI}{P1}D").
	Handle("cup", position("cup"), "{CSI}{P2}H").
	Handle("hvp", position("hvp"), "{CSI}{P2}f").
	Handle("ed", selective("ed"), "{CSI}{P1}J").
	Handle("el", selective("el"), "{CSI}{P1}K").
	Handle("sgr", modes("sgr"), "{CSI}{P*}m").
	Handle("decstbm", margins, "{CSI}{P2}r").
	Handle("dsr", selective("dsr"), "{CSI}{P1}n").
	Handle("da", deviceAttr, "{CSI}{P1}c").
	Handle("decset", modes("decset"), "{CSI}?{P*}h").
	Handle("decrst", modes("decrst"), "{CSI}?{P*}l").
	Handle("sm", modes("sm"), "{CSI}{P*}h").
	Handle("rm", modes("rm"), "{CSI}{P*}l")

// plain emits a command without arguments.
func plain(name string) executor.Func[*VT100] {
	return func(v *VT100, _ *engine.Context) {
		v.emit(Command{Name: name})
	}
}

// count emits one count argument, default 1, as in CSI Ps A (CUU).
func count(name string) executor.Func[*VT100] {
	return func(v *VT100, ctx *engine.Context) {
		v.emit(Command{Name: name, Args: args(ctx, 1, 1)})
	}
}

// position emits row and column, both default 1.
// CSI Ps ; Ps H  Cursor Position [row;column] (default = [1,1]) (CUP).
func position(name string) executor.Func[*VT100] {
	return func(v *VT100, ctx *engine.Context) {
		v.emit(Command{Name: name, Args: args(ctx, 2, 1)})
	}
}

// selective emits one selector argument, default 0.
// CSI Ps J  Erase in Display (ED), VT100.
func selective(name string) executor.Func[*VT100] {
	return func(v *VT100, ctx *engine.Context) {
		v.emit(Command{Name: name, Args: args(ctx, 1, 0)})
	}
}

// modes emits every slot, omitted ones as 0.
// CSI Pm m  Character Attributes (SGR).
func modes(name string) executor.Func[*VT100] {
	return func(v *VT100, ctx *engine.Context) {
		v.emit(Command{Name: name, Args: allArgs(ctx, 0)})
	}
}

// CSI Ps ; Ps r  Set Scrolling Region [top;bottom] (default = full size of
// window) (DECSTBM). A bottom of 0 means the last line.
func margins(v *VT100, ctx *engine.Context) {
	v.emit(Command{Name: "decstbm", Args: []int{ctx.Param(0, 1), ctx.Param(1, 0)}})
}

// ESC ( C  Designate G0 Character Set, ESC ) C  Designate G1 Character Set.
// Args holds the G-set index and Text the charset final byte. The pattern
// is three one-byte elements, so the intermediate and final sit at 1 and 2.
func designate(v *VT100, ctx *engine.Context) {
	seq := ctx.Sequence
	if len(seq) != 3 {
		return
	}
	g := 0
	if seq[1] == ')' {
		g = 1
	}
	v.emit(Command{Name: "scs", Args: []int{g}, Text: string(seq[2:3])})
}

// CSI Ps c  Send Device Attributes (Primary DA). Text holds the reply.
func deviceAttr(v *VT100, ctx *engine.Context) {
	if ctx.Param(0, 0) != 0 {
		return
	}
	v.emit(Command{Name: "da", Text: vt100DeviceAttr})
}
