// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ericwq/vtseq/automaton"
	"github.com/ericwq/vtseq/frontend"
	"github.com/ericwq/vtseq/xterm"
)

func TestParseFlags(t *testing.T) {
	tc := []struct {
		label   string
		args    []string
		set     string
		dot     string
		command []string
		err     bool
	}{
		{"defaults", []string{}, "xterm", "", []string{}, false},
		{"vt100 dot", []string{"-set", "vt100", "-dot", "-"}, "vt100", "-", []string{}, false},
		{"command", []string{"-term", "xterm", "--", "ls", "-l"}, "xterm", "", []string{"ls", "-l"}, false},
		{"unknown flag", []string{"-port", "7"}, "", "", nil, true},
	}

	for _, v := range tc {
		t.Run(v.label, func(t *testing.T) {
			conf, out, err := parseFlags("vtscan", v.args)
			if v.err {
				if err == nil {
					t.Errorf("#test %s expect error, got nil\n", v.label)
				}
				if !strings.Contains(out, "flag provided but not defined") {
					t.Errorf("#test %s expect flag output, got %q\n", v.label, out)
				}
				return
			}
			if err != nil {
				t.Fatalf("#test %s expect no error, got %s\n", v.label, err)
			}
			if conf.setName != v.set || conf.dot != v.dot {
				t.Errorf("#test %s expect set %q dot %q, got %q %q\n", v.label, v.set, v.dot, conf.setName, conf.dot)
			}
			if strings.Join(conf.args, " ") != strings.Join(v.command, " ") {
				t.Errorf("#test %s expect command %q, got %q\n", v.label, v.command, conf.args)
			}
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	_, _, err := parseFlags("vtscan", []string{"-h"})
	if err != flag.ErrHelp {
		t.Errorf("#test -h expect %v, got %v\n", flag.ErrHelp, err)
	}
}

func TestBuildConfig(t *testing.T) {
	tc := []struct {
		label string
		conf  Config
		term  string
		hint  string
		ok    bool
		shell string
	}{
		{"version", Config{version: true, setName: "bad"}, "", "", true, ""},
		{"bad set", Config{setName: "vt52"}, "xterm", "unknown handler set: vt52", false, ""},
		{"two modes", Config{setName: "xterm", dot: "-", table: "t"}, "xterm", "only one of", false, ""},
		{"mode and command", Config{setName: "xterm", inspect: "t", args: []string{"ls"}}, "xterm", "command is only allowed", false, ""},
		{"no TERM", Config{setName: "xterm"}, "", "TERM is not set", false, ""},
		{"terminfo no TERM", Config{setName: "xterm", terminfo: true}, "", "TERM is not set", false, ""},
		{"dot no TERM", Config{setName: "xterm", dot: "-"}, "", "", true, ""},
		{"command", Config{setName: "vt100", args: []string{"/bin/echo", "hi"}}, "xterm", "", true, "/bin/echo"},
	}

	for _, v := range tc {
		t.Run(v.label, func(t *testing.T) {
			t.Setenv("TERM", v.term)
			conf := v.conf
			hint, ok := conf.buildConfig()
			if ok != v.ok || !strings.Contains(hint, v.hint) {
				t.Errorf("#test %s expect %t %q, got %t %q\n", v.label, v.ok, v.hint, ok, hint)
			}
			if v.shell != "" && conf.shell != v.shell {
				t.Errorf("#test %s expect shell %q, got %q\n", v.label, v.shell, conf.shell)
			}
		})
	}
}

func TestBuildConfigShell(t *testing.T) {
	t.Setenv("TERM", "xterm")
	t.Setenv("SHELL", "/bin/zsh")

	conf := Config{setName: "xterm"}
	if _, ok := conf.buildConfig(); !ok {
		t.Fatalf("#test buildConfig() expect true, got false\n")
	}
	if conf.shell != "/bin/zsh" || len(conf.args) != 0 {
		t.Errorf("#test buildConfig() expect shell %q, got %q %q\n", "/bin/zsh", conf.shell, conf.args)
	}

	t.Setenv("SHELL", "")
	conf = Config{setName: "xterm"}
	conf.buildConfig()
	if conf.shell == "" {
		t.Errorf("#test buildConfig() expect a login shell or /bin/sh, got empty\n")
	}
}

func TestMainVersionHelp(t *testing.T) {
	tc := []struct {
		label  string
		args   []string
		expect []string
	}{
		{"version", []string{"vtscan", "-v"}, []string{"go version", "control sequence scanner"}},
		{"help", []string{"vtscan", "-h"}, []string{"Usage:", frontend.CommandName, "Options:", "-inspect"}},
	}

	for _, v := range tc {
		t.Run(v.label, func(t *testing.T) {
			saveStdout := os.Stdout
			saveArgs := os.Args
			r, w, _ := os.Pipe()
			os.Stdout = w

			os.Args = v.args
			main()

			w.Close()
			out, _ := io.ReadAll(r)
			os.Stdout = saveStdout
			os.Args = saveArgs
			r.Close()

			result := string(out)
			for _, e := range v.expect {
				if !strings.Contains(result, e) {
					t.Errorf("#test %s expect %q in %q\n", v.label, e, result)
				}
			}
		})
	}
}

func TestTableModes(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "xterm.tbl")
	dotFile := filepath.Join(dir, "vt100.dot")

	if code := run(&Config{setName: "xterm", table: snapshot, verbose: "error"}, nil, io.Discard); code != 0 {
		t.Fatalf("#test table mode expect 0, got %d\n", code)
	}

	var out bytes.Buffer
	if code := run(&Config{setName: "xterm", inspect: snapshot, verbose: "error"}, nil, &out); code != 0 {
		t.Fatalf("#test inspect mode expect 0, got %d\n", code)
	}
	st := xterm.XtermSet().MustTable().Stats()
	for _, want := range []string{"states", "patterns", "{OSC}{P1};{Pt}{BEL}", "{CSI}{P*}m"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("#test inspect expect %q in %q\n", want, out.String())
		}
	}

	data, _ := os.ReadFile(snapshot)
	tbl, err := automaton.UnmarshalTable(data)
	if err != nil {
		t.Fatalf("#test snapshot expect no error, got %s\n", err)
	}
	if tbl.Stats() != st {
		t.Errorf("#test snapshot stats expect %+v, got %+v\n", st, tbl.Stats())
	}

	if code := run(&Config{setName: "vt100", dot: dotFile, verbose: "error"}, nil, io.Discard); code != 0 {
		t.Fatalf("#test dot mode expect 0, got %d\n", code)
	}
	dot, _ := os.ReadFile(dotFile)
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("#test dot expect digraph, got %q\n", dot)
	}

	out.Reset()
	if code := run(&Config{setName: "vt100", dot: "-", verbose: "error"}, nil, &out); code != 0 {
		t.Fatalf("#test dot stdout expect 0, got %d\n", code)
	}
	if out.String() != string(dot) {
		t.Errorf("#test dot stdout expect same as file\n")
	}
}

func TestInspectBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.tbl")
	os.WriteFile(bad, []byte{0xff, 0xff, 0xff}, 0644)

	tc := []struct {
		label string
		path  string
	}{
		{"missing", filepath.Join(dir, "missing.tbl")},
		{"corrupt", bad},
	}
	for _, v := range tc {
		if err := inspectTable(v.path, io.Discard); err == nil {
			t.Errorf("#test %s expect error, got nil\n", v.label)
		}
	}
}

func TestHandlerSet(t *testing.T) {
	if _, err := handlerSet("vt52"); err == nil {
		t.Errorf("#test handlerSet(vt52) expect error, got nil\n")
	}
	src, err := handlerSet("VT100")
	if err != nil || src.Name() != "vt100" {
		t.Errorf("#test handlerSet(VT100) expect vt100, got %v %v\n", src, err)
	}
}
