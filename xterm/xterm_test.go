// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xterm

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/ericwq/vtseq/processor"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// runXterm writes input through a processor bound to an xterm executor.
func runXterm(t *testing.T, input string) (*Xterm, []Command, string) {
	t.Helper()
	var rec Recorder
	var text strings.Builder
	x := NewXterm(rec.Sink)
	e, err := x.Engine()
	if err != nil {
		t.Fatalf("engine: %s", err)
	}
	p := processor.New(e, processor.OutputFuncs{
		Char:    func(r rune) { text.WriteRune(r) },
		Unknown: func(seq []byte) { text.WriteString("<?>") },
	})
	p.WriteString(input)
	p.Flush()
	return x, rec.Commands, text.String()
}

func runVT100(t *testing.T, input string) ([]Command, string) {
	t.Helper()
	var rec Recorder
	var text strings.Builder
	e, err := NewVT100(rec.Sink).Engine()
	if err != nil {
		t.Fatalf("engine: %s", err)
	}
	p := processor.New(e, processor.OutputFuncs{
		Char:    func(r rune) { text.WriteRune(r) },
		Unknown: func(seq []byte) { text.WriteString("<?>") },
	})
	p.WriteString(input)
	p.Flush()
	return rec.Commands, text.String()
}

var equateEmpty = cmpopts.EquateEmpty()

func TestVT100(t *testing.T) {
	tc := []struct {
		label string
		input string
		want  []Command
	}{
		{"C0", "\x07\x08\t\n\v\f\r\x0e\x0f", []Command{
			{Name: "bel"}, {Name: "bs"}, {Name: "ht"}, {Name: "lf"}, {Name: "lf"}, {Name: "lf"},
			{Name: "cr"}, {Name: "so"}, {Name: "si"},
		}},
		{"ESC", "\x1b7\x1b8\x1b=\x1b>\x1bc", []Command{
			{Name: "decsc"}, {Name: "decrc"}, {Name: "deckpam"}, {Name: "deckpnm"}, {Name: "ris"},
		}},
		{"C1 both encodings", "\x1bD\x84\x1bE\x1bH\x1bM", []Command{
			{Name: "ind"}, {Name: "ind"}, {Name: "nel"}, {Name: "hts"}, {Name: "ri"},
		}},
		{"designate", "\x1b(0\x1b)B", []Command{
			{Name: "scs", Args: []int{0}, Text: "0"}, {Name: "scs", Args: []int{1}, Text: "B"},
		}},
		{"cursor defaults", "\x1b[A\x1b[5B\x1b[0C\x1b[D", []Command{
			{Name: "cuu", Args: []int{1}}, {Name: "cud", Args: []int{5}},
			{Name: "cuf", Args: []int{0}}, {Name: "cub", Args: []int{1}},
		}},
		{"position", "\x1b[H\x1b[12;40H\x1b[;7f", []Command{
			{Name: "cup", Args: []int{1, 1}}, {Name: "cup", Args: []int{12, 40}},
			{Name: "hvp", Args: []int{1, 7}},
		}},
		{"erase", "\x1b[J\x1b[2J\x1b[1K", []Command{
			{Name: "ed", Args: []int{0}}, {Name: "ed", Args: []int{2}}, {Name: "el", Args: []int{1}},
		}},
		{"SGR", "\x1b[m\x1b[1;;4m\x1b[38;5;196m", []Command{
			{Name: "sgr", Args: []int{0}}, {Name: "sgr", Args: []int{1, 0, 4}},
			{Name: "sgr", Args: []int{38, 5, 196}},
		}},
		{"margins", "\x1b[r\x1b[2;20r", []Command{
			{Name: "decstbm", Args: []int{1, 0}}, {Name: "decstbm", Args: []int{2, 20}},
		}},
		{"reports", "\x1b[6n\x1b[c\x1b[1c", []Command{
			{Name: "dsr", Args: []int{6}}, {Name: "da", Text: vt100DeviceAttr},
		}},
		{"modes", "\x1b[?25l\x1b[?1049;2004h\x1b[4h\x1b[20l", []Command{
			{Name: "decrst", Args: []int{25}}, {Name: "decset", Args: []int{1049, 2004}},
			{Name: "sm", Args: []int{4}}, {Name: "rm", Args: []int{20}},
		}},
	}

	for _, v := range tc {
		got, text := runVT100(t, v.input)
		if diff := cmp.Diff(v.want, got, equateEmpty); diff != "" {
			t.Errorf("#test %s commands (-want +got):\n%s", v.label, diff)
		}
		if text != "" {
			t.Errorf("#test %s expect no text, got %q\n", v.label, text)
		}
	}
}

func TestNonASCIIFinal(t *testing.T) {
	tc := []struct {
		label string
		input string
		text  string
	}{
		{"CSI final", "\x1b[2é", "<?>"},
		{"CSI final then text", "\x1b[2éb", "<?>b"},
		{"charset", "\x1b(ü", "<?>"},
		{"charset then designate", "\x1b)ñ\x1b(B", "<?>"},
		{"letter lookalike at idle", "ÀB", "ÀB"},
	}

	for _, v := range tc {
		_, got, text := runXterm(t, v.input)
		for _, c := range got {
			if c.Name != "scs" || c.Text != "B" {
				t.Errorf("#test %s expect no command from a non-ASCII final, got %s\n", v.label, c)
			}
		}
		if text != v.text {
			t.Errorf("#test %s expect text %q, got %q\n", v.label, v.text, text)
		}
	}
}

func TestVT100WithoutXterm(t *testing.T) {
	// CHA and OSC are xterm functions: a VT100 reports them as unknown and
	// the OSC body falls back to text, its BEL to a command
	got, text := runVT100(t, "a\x1b[5Gb\x1b]0;t\x07c")
	if diff := cmp.Diff([]Command{{Name: "bel"}}, got, equateEmpty); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
	if want := "a<?>b<?>0;tc"; text != want {
		t.Errorf("expect text %q, got %q", want, text)
	}
}

func TestXterm(t *testing.T) {
	tc := []struct {
		label string
		input string
		want  []Command
	}{
		{"inherited", "\x07\x1b[2;3H", []Command{{Name: "bel"}, {Name: "cup", Args: []int{2, 3}}}},
		{"title BEL", "\x1b]0;hello\x07", []Command{{Name: "osc", Args: []int{0}, Text: "hello"}}},
		{"title ST", "\x1b]2;hello world\x1b\\", []Command{{Name: "osc", Args: []int{2}, Text: "hello world"}}},
		{"title 8-bit", "\x9d2;x\x9c", []Command{{Name: "osc", Args: []int{2}, Text: "x"}}},
		{"OSC without text", "\x1b]104\x07", []Command{{Name: "osc", Args: []int{104}}}},
		{"OSC wide text", "\x1b]2;标题\x07", []Command{{Name: "osc", Args: []int{2}, Text: "标题"}}},
		{"DCS", "\x1bP1$r0m\x1b\\", []Command{{Name: "dcs", Text: "1$r0m"}}},
		{"APC PM SOS", "\x1b_a\x1b\\\x1b^b\x1b\\\x1bXc\x1b\\", []Command{
			{Name: "apc", Text: "a"}, {Name: "pm", Text: "b"}, {Name: "sos", Text: "c"},
		}},
		{"editing", "\x1b[5G\x1b[d\x1b[3X\x1b[@\x1b[2P\x1b[L\x1b[4M\x1b[S\x1b[2T", []Command{
			{Name: "cha", Args: []int{5}}, {Name: "vpa", Args: []int{1}}, {Name: "ech", Args: []int{3}},
			{Name: "ich", Args: []int{1}}, {Name: "dch", Args: []int{2}}, {Name: "il", Args: []int{1}},
			{Name: "dl", Args: []int{4}}, {Name: "su", Args: []int{1}}, {Name: "sd", Args: []int{2}},
		}},
		{"DA overridden", "\x1b[c\x1b[>c\x1b[>0c", []Command{
			{Name: "da", Text: xtermDeviceAttr}, {Name: "da", Text: xtermSecondaryAttr},
			{Name: "da", Text: xtermSecondaryAttr},
		}},
	}

	for _, v := range tc {
		_, got, text := runXterm(t, v.input)
		if diff := cmp.Diff(v.want, got, equateEmpty); diff != "" {
			t.Errorf("#test %s commands (-want +got):\n%s", v.label, diff)
		}
		if text != "" {
			t.Errorf("#test %s expect no text, got %q\n", v.label, text)
		}
	}
}

func TestXtermTitle(t *testing.T) {
	x, _, text := runXterm(t, "ls\r\n\x1b]0;~/src\x07$ \x1b]1;icon\x07")
	if x.Title() != "~/src" {
		t.Errorf("expect title %q, got %q", "~/src", x.Title())
	}
	if text != "ls$ " {
		t.Errorf("expect text %q, got %q", "ls$ ", text)
	}
}

func TestOSC52(t *testing.T) {
	content := "copy me: 世界"
	b64 := base64.StdEncoding.EncodeToString([]byte(content))

	tc := []struct {
		label string
		seq   osc52.Sequence
		want  Command
	}{
		{"set", osc52.New(content), Command{Name: "osc", Args: []int{52}, Text: "c;" + b64}},
		{"primary", osc52.New(content).Primary(), Command{Name: "osc", Args: []int{52}, Text: "p;" + b64}},
		{"query", osc52.Query(), Command{Name: "osc", Args: []int{52}, Text: "c;?"}},
		{"clear", osc52.Clear(), Command{Name: "osc", Args: []int{52}, Text: "c;!"}},
		{"screen", osc52.New(content).Screen(), Command{Name: "dcs", Text: "\x1b]52;c;" + b64 + "\x07"}},
		{"tmux", osc52.New(content).Tmux(), Command{Name: "dcs", Text: "tmux;\x1b\x1b]52;c;" + b64 + "\x07"}},
	}

	for _, v := range tc {
		_, got, text := runXterm(t, v.seq.String())
		if diff := cmp.Diff([]Command{v.want}, got, equateEmpty); diff != "" {
			t.Errorf("#test %s commands (-want +got):\n%s", v.label, diff)
		}
		if text != "" {
			t.Errorf("#test %s expect no text, got %q\n", v.label, text)
		}
	}
}

func TestSetTables(t *testing.T) {
	vt, err := VT100Set().Table()
	if err != nil {
		t.Fatal(err)
	}
	xt, err := XtermSet().Table()
	if err != nil {
		t.Fatal(err)
	}
	if vt == xt {
		t.Errorf("expect distinct tables")
	}
	if vt.Stats().Patterns >= xt.Stats().Patterns {
		t.Errorf("expect xterm to add patterns: vt100 %d, xterm %d", vt.Stats().Patterns, xt.Stats().Patterns)
	}
	if diff := cmp.Diff([]string{"{CSI}{P1}c", secondaryDA}, XtermSet().Patterns("da")); diff != "" {
		t.Errorf("da patterns (-want +got):\n%s", diff)
	}
}

func TestCommandString(t *testing.T) {
	tc := []struct {
		label string
		cmd   Command
		want  string
	}{
		{"bare", Command{Name: "bel"}, "bel"},
		{"args", Command{Name: "cup", Args: []int{1, 2}}, "cup(1,2)"},
		{"text", Command{Name: "osc", Args: []int{0}, Text: "t"}, `osc(0) "t"`},
	}
	for _, v := range tc {
		if got := v.cmd.String(); got != v.want {
			t.Errorf("#test %s expect %s, got %s\n", v.label, v.want, got)
		}
	}
}
