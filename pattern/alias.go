// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pattern

// C0 and C1 control codes known to the pattern language.
const (
	NUL = 0x00
	BEL = 0x07
	BS  = 0x08
	HT  = 0x09
	LF  = 0x0a
	VT  = 0x0b
	FF  = 0x0c
	CR  = 0x0d
	SO  = 0x0e
	SI  = 0x0f
	CAN = 0x18
	SUB = 0x1a
	ESC = 0x1b
	SP  = 0x20
	DEL = 0x7f

	IND = 0x84
	NEL = 0x85
	HTS = 0x88
	RI  = 0x8d
	SS2 = 0x8e
	SS3 = 0x8f
	DCS = 0x90
	SOS = 0x98
	CSI = 0x9b
	ST  = 0x9c
	OSC = 0x9d
	PM  = 0x9e
	APC = 0x9f
)

var aliases = map[string]byte{
	"NUL": NUL,
	"BEL": BEL,
	"BS":  BS,
	"HT":  HT,
	"LF":  LF,
	"VT":  VT,
	"FF":  FF,
	"CR":  CR,
	"SO":  SO,
	"SI":  SI,
	"CAN": CAN,
	"SUB": SUB,
	"ESC": ESC,
	"SP":  SP,
	"DEL": DEL,
	"IND": IND,
	"NEL": NEL,
	"HTS": HTS,
	"RI":  RI,
	"SS2": SS2,
	"SS3": SS3,
	"DCS": DCS,
	"SOS": SOS,
	"CSI": CSI,
	"ST":  ST,
	"OSC": OSC,
	"PM":  PM,
	"APC": APC,
}

var nameOf = func() map[byte]string {
	m := make(map[byte]string, len(aliases))
	for k, v := range aliases {
		m[v] = k
	}
	return m
}()

// Lookup resolves a control code name such as "CSI".
func Lookup(name string) (byte, bool) {
	b, ok := aliases[name]
	return b, ok
}

// C1 returns the 8-bit control equivalent to ESC followed by b.
// The second result is false when b is not a Fe final byte (0x40-0x5f).
func C1(b byte) (byte, bool) {
	if b < 0x40 || b > 0x5f {
		return 0, false
	}
	return b + 0x40, true
}
