// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ericwq/vtseq/xterm"
)

const maxUnknownKinds = 64

// Report counts what the processor saw: commands by name, unknown
// sequences by content, and the printable text between them.
type Report struct {
	commands  map[string]int
	unknown   map[string]int
	dropped   int // unknown sequences beyond maxUnknownKinds
	runes     int
	graphemes int
	width     int
	text      strings.Builder // text since the last command
	title     string
}

func NewReport() *Report {
	return &Report{
		commands: make(map[string]int),
		unknown:  make(map[string]int),
	}
}

// HandleChar implements processor.Output.
func (r *Report) HandleChar(ch rune) {
	r.runes++
	if ch == utf8.RuneError {
		return
	}
	r.text.WriteRune(ch)
}

// HandleUnknown implements processor.Output.
func (r *Report) HandleUnknown(seq []byte) {
	r.settle()
	key := fmt.Sprintf("%q", seq)
	if _, ok := r.unknown[key]; !ok && len(r.unknown) >= maxUnknownKinds {
		r.dropped++
		return
	}
	r.unknown[key]++
}

// Command is the xterm.Sink of the report.
func (r *Report) Command(c xterm.Command) {
	r.settle()
	r.commands[c.Name]++
}

// settle accounts the pending text as grapheme clusters and columns.
func (r *Report) settle() {
	if r.text.Len() == 0 {
		return
	}
	s := r.text.String()
	r.graphemes += uniseg.GraphemeClusterCount(s)
	r.width += uniseg.StringWidth(s)
	r.text.Reset()
}

func (r *Report) Commands() map[string]int { return r.commands }
func (r *Report) Unknown() map[string]int  { return r.unknown }

func (r *Report) Text() (runes, graphemes, width int) {
	r.settle()
	return r.runes, r.graphemes, r.width
}

func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	runes, graphemes, width := r.Text()
	fmt.Fprintf(&sb, "text: %d runes, %d graphemes, %d columns\n", runes, graphemes, width)
	if r.title != "" {
		fmt.Fprintf(&sb, "title: %q\n", r.title)
	}

	names := maps.Keys(r.commands)
	slices.Sort(names)
	sb.WriteString("commands:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "  %-10s %d\n", name, r.commands[name])
	}

	if len(r.unknown) > 0 {
		seqs := maps.Keys(r.unknown)
		slices.SortFunc(seqs, func(a, b string) int { return r.unknown[b] - r.unknown[a] })
		sb.WriteString("unknown:\n")
		for _, seq := range seqs {
			fmt.Fprintf(&sb, "  %-24s %d\n", seq, r.unknown[seq])
		}
		if r.dropped > 0 {
			fmt.Fprintf(&sb, "  (%d more not listed)\n", r.dropped)
		}
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
