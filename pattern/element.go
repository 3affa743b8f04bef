// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pattern

import (
	"fmt"
	"strconv"
)

// Kind tags the variant held by an Element.
type Kind uint8

const (
	Literal        Kind = iota // a single byte
	CharSet                    // one byte out of a set
	FixedParams                // {Pn}: up to n semicolon separated optional integers
	VariableParams             // {P*}: any number of optional integers
	TextParam                  // {Pt}: printable run, ended by the next element
	AnyString                  // {Ps}: any bytes except SOS and ST
)

var kindNames = [...]string{
	Literal:        "Literal",
	CharSet:        "CharSet",
	FixedParams:    "FixedParams",
	VariableParams: "VariableParams",
	TextParam:      "TextParam",
	AnyString:      "AnyString",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsParam reports whether the kind collects a parameter at run time.
func (k Kind) IsParam() bool {
	return k >= FixedParams
}

// Element is one step of a parsed pattern.
//
// Set holds the accepted bytes: the literal byte, the set members, the
// content bytes of {Pt}/{Ps}, or the digits of the numeric kinds.
// Count is the slot count of FixedParams and zero otherwise.
type Element struct {
	Kind  Kind
	Set   ByteSet
	Count int
}

var (
	// Digits accepted inside numeric parameters.
	Digits = RangeSet('0', '9')

	// TextSet is the content of {Pt}: BS..CR and the printable ASCII range.
	TextSet = RangeSet(0x08, 0x0d).Union(RangeSet(0x20, 0x7e))

	// StringSet is the content of {Ps}: everything but the string delimiters.
	StringSet = func() ByteSet {
		s := RangeSet(0x00, 0xff)
		s.Remove(SOS)
		s.Remove(ST)
		return s
	}()
)

// Separator between numeric parameters.
const Separator = ';'

func literal(b byte) Element {
	return Element{Kind: Literal, Set: NewByteSet(b)}
}

func (e Element) String() string {
	switch e.Kind {
	case Literal:
		b, _ := e.Set.Single()
		if name, ok := nameOf[b]; ok {
			return "{" + name + "}"
		}
		if b < 0x20 || b >= 0x7f {
			return fmt.Sprintf("<%#04x>", b)
		}
		switch b {
		case '\\', '{', '[':
			return `\` + string(rune(b))
		}
		return string(rune(b))
	case CharSet:
		return e.Set.String()
	case FixedParams:
		return "{P" + strconv.Itoa(e.Count) + "}"
	case VariableParams:
		return "{P*}"
	case TextParam:
		return "{Pt}"
	case AnyString:
		return "{Ps}"
	}
	return e.Kind.String()
}
