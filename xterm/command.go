// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package xterm holds ready-made handler sets for the VT100 and xterm
// control functions. Every recognized sequence becomes a Command delivered
// to a Sink; the package keeps no screen state.
package xterm

import (
	"strconv"
	"strings"

	"github.com/ericwq/vtseq/engine"
)

// Command is the decoded form of one control function.
type Command struct {
	Name string // lower case mnemonic, e.g. "cup"
	Args []int  // numeric arguments with defaults applied
	Text string // string argument, designated charset or reply
}

func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for i, a := range c.Args {
		if i == 0 {
			sb.WriteByte('(')
		} else {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(a))
		if i == len(c.Args)-1 {
			sb.WriteByte(')')
		}
	}
	if c.Text != "" {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(c.Text))
	}
	return sb.String()
}

// Sink receives commands in input order.
type Sink func(Command)

// Recorder is a Sink target that keeps every command.
type Recorder struct {
	Commands []Command
}

func (r *Recorder) Sink(c Command) { r.Commands = append(r.Commands, c) }

func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }

// args returns n slots of ctx, each defaulting to def.
func args(ctx *engine.Context, n int, def int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = ctx.Param(i, def)
	}
	return out
}

// allArgs returns every recorded slot with omitted ones as def. An empty
// parameter list yields one def.
func allArgs(ctx *engine.Context, def int) []int {
	if ctx.ParamCount() == 0 {
		return []int{def}
	}
	return args(ctx, ctx.ParamCount(), def)
}
