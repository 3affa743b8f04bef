// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ericwq/vtseq/automaton"
	"github.com/ericwq/vtseq/util"
)

type tableSource interface {
	Name() string
	Table() (*automaton.Table, error)
}

func buildTable(setName string) (string, *automaton.Table, error) {
	src, err := handlerSet(setName)
	if err != nil {
		return "", nil, err
	}
	tbl, err := src.Table()
	if err != nil {
		return "", nil, fmt.Errorf("build %s table: %w", src.Name(), err)
	}
	util.Logger.Debug("table built", "set", src.Name(), "states", tbl.Len(), "classes", tbl.Classes())
	return src.Name(), tbl, nil
}

// writeDot writes the Graphviz form of the table to path, or to stdout
// when path is "-".
func writeDot(setName, path string, stdout io.Writer) error {
	name, tbl, err := buildTable(setName)
	if err != nil {
		return err
	}

	if path == "-" {
		return tbl.WriteDot(stdout, name)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = tbl.WriteDot(f, name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTable(setName, path string) error {
	_, tbl, err := buildTable(setName)
	if err != nil {
		return err
	}

	data, err := tbl.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func inspectTable(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tbl, err := automaton.UnmarshalTable(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	st := tbl.Stats()
	fmt.Fprintf(w, "states     \t: %d\n", st.States)
	fmt.Fprintf(w, "classes    \t: %d\n", st.Classes)
	fmt.Fprintf(w, "transitions\t: %d\n", st.Transitions)
	fmt.Fprintf(w, "accepting  \t: %d\n", st.Accepting)
	fmt.Fprintf(w, "patterns   \t: %d\n", st.Patterns)
	for _, a := range tbl.Patterns() {
		fmt.Fprintf(w, "  %-24s %v\n", a.Pattern, a.Handlers)
	}
	return nil
}
