// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package automaton

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ericwq/vtseq/pattern"
)

// WriteDot writes the table as a Graphviz digraph. Edges between the same
// pair of states are merged and labelled with their byte set.
func (t *Table) WriteDot(w io.Writer, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph %s {\n\trankdir=LR;\n", name)

	for id := range t.states {
		shape := "ellipse"
		label := fmt.Sprintf("s%d", id)
		if a, ok := t.Accept(id); ok {
			shape = "doublecircle"
			label += "\\n" + dotEscape(a.Pattern)
		} else if id == t.start {
			shape = "octagon"
		}
		if r := t.Region(id); r != RegionPlain {
			label += "\\n(" + r.String() + ")"
		}
		fmt.Fprintf(bw, "\ts%d [shape=%s label=\"%s\"];\n", id, shape, label)
	}

	type key struct {
		to int
		op Op
	}
	for id := range t.states {
		sets := make(map[key]*pattern.ByteSet)
		var order []key
		for c := 0; c < 256; c++ {
			next, op := t.Step(id, byte(c))
			if next == Reject {
				continue
			}
			k := key{next, op}
			s, ok := sets[k]
			if !ok {
				s = new(pattern.ByteSet)
				sets[k] = s
				order = append(order, k)
			}
			s.Add(byte(c))
		}
		for _, k := range order {
			label := sets[k].String()
			if k.op != OpNone {
				label += " / " + k.op.String()
			}
			fmt.Fprintf(bw, "\ts%d -> s%d [label=\"%s\"];\n", id, k.to, label)
		}
	}

	fmt.Fprintf(bw, "}\n")
	return bw.Flush()
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
