// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ericwq/terminfo"
	_ "github.com/ericwq/terminfo/base"
	"github.com/ericwq/terminfo/dynamic"

	"github.com/ericwq/vtseq/processor"
	"github.com/ericwq/vtseq/util"
	"github.com/ericwq/vtseq/xterm"
)

type capability struct {
	name  string
	value string
}

// Coverage is the result of feeding one capability string to the
// recognizer.
type Coverage struct {
	Name     string
	Value    string
	Commands []string
	Unknown  []string
	Text     string
}

func (c Coverage) Recognized() bool {
	return len(c.Unknown) == 0 && len(c.Commands) > 0
}

// lookupTerminfo finds the compiled-in entry for name, or loads it through
// infocmp.
func lookupTerminfo(name string) (ti *terminfo.Terminfo, dyn bool, err error) {
	ti, err = terminfo.LookupTerminfo(name)
	if err == nil {
		return ti, false, nil
	}

	ti, _, err = dynamic.LoadTerminfo(name)
	if err != nil {
		return nil, false, fmt.Errorf("load terminfo %s: %w", name, err)
	}
	terminfo.AddTerminfo(ti)
	return ti, true, nil
}

func capabilities(ti *terminfo.Terminfo) []capability {
	return []capability{
		{"bel", ti.Bell},
		{"clear", ti.Clear},
		{"cup", ti.TGoto(4, 9)},
		{"ech", ti.TParm(ti.EraseChars, 3)},
		{"sgr0", ti.AttrOff},
		{"bold", ti.Bold},
		{"smul", ti.Underline},
		{"rev", ti.Reverse},
		{"setaf", ti.TParm(ti.SetFg, 1)},
		{"civis", ti.HideCursor},
		{"cnorm", ti.ShowCursor},
		{"smkx", ti.EnterKeypad},
		{"rmkx", ti.ExitKeypad},
		{"smcup", ti.EnterCA},
		{"rmcup", ti.ExitCA},
	}
}

// coverage feeds each capability of ti through a fresh xterm recognizer.
// Capabilities the entry does not define are skipped.
func coverage(ti *terminfo.Terminfo) ([]Coverage, error) {
	var result []Coverage
	for _, cp := range capabilities(ti) {
		if cp.value == "" {
			continue
		}

		var buf bytes.Buffer
		ti.TPuts(&buf, cp.value)

		cv := Coverage{Name: cp.name, Value: buf.String()}
		x := xterm.NewXterm(func(c xterm.Command) { cv.Commands = append(cv.Commands, c.String()) })
		e, err := x.Engine()
		if err != nil {
			return nil, err
		}

		var text bytes.Buffer
		p := processor.New(e, processor.OutputFuncs{
			Char:    func(r rune) { text.WriteRune(r) },
			Unknown: func(seq []byte) { cv.Unknown = append(cv.Unknown, fmt.Sprintf("%q", seq)) },
		})
		p.Write(buf.Bytes())
		p.Flush()
		cv.Text = text.String()

		util.Logger.Debug("capability", "name", cv.Name, "value", cv.Value, "recognized", cv.Recognized())
		result = append(result, cv)
	}
	return result, nil
}

func checkTerminfo(name string, w io.Writer) error {
	ti, dyn, err := lookupTerminfo(name)
	if err != nil {
		return err
	}

	cvs, err := coverage(ti)
	if err != nil {
		return err
	}

	source := "builtin"
	if dyn {
		source = "dynamic"
	}
	recognized := 0
	for _, cv := range cvs {
		if cv.Recognized() {
			recognized++
		}
	}
	fmt.Fprintf(w, "%s (%s): %d of %d capabilities recognized\n", name, source, recognized, len(cvs))
	for _, cv := range cvs {
		mark := "ok"
		if !cv.Recognized() {
			mark = "--"
		}
		fmt.Fprintf(w, "  %s %-6s %-24q %v", mark, cv.Name, cv.Value, cv.Commands)
		if len(cv.Unknown) > 0 {
			fmt.Fprintf(w, " unknown %v", cv.Unknown)
		}
		if cv.Text != "" {
			fmt.Fprintf(w, " text %q", cv.Text)
		}
		fmt.Fprintln(w)
	}
	return nil
}
