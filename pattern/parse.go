// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pattern

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPatternSyntax is wrapped by every *SyntaxError.
var ErrPatternSyntax = errors.New("pattern syntax error")

// SyntaxError describes a malformed pattern.
type SyntaxError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern %q at offset %d: %s", e.Pattern, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrPatternSyntax }

type parser struct {
	src string
	pos int
}

func (p *parser) fail(offset int, format string, args ...any) error {
	return &SyntaxError{Pattern: p.src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Parse turns a textual pattern such as "{CSI}{P1}A" into its elements.
//
// Plain bytes match themselves, \x escapes x, [...] is a byte set with a-b
// ranges, {NAME} is a control code, and {Pn}, {P*}, {Pt}, {Ps} are the
// parameter tokens.
func Parse(src string) ([]Element, error) {
	if len(src) == 0 {
		return nil, &SyntaxError{Pattern: src, Msg: "empty pattern"}
	}

	p := &parser{src: src}
	var elems []Element
	for p.pos < len(src) {
		var (
			e   Element
			err error
		)
		switch src[p.pos] {
		case '\\':
			if p.pos+1 >= len(src) {
				return nil, p.fail(p.pos, "incomplete escape")
			}
			e = literal(src[p.pos+1])
			p.pos += 2
		case '[':
			e, err = p.parseSet()
		case '{':
			e, err = p.parseToken()
		default:
			e = literal(src[p.pos])
			p.pos++
		}
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return elems, nil
}

// MustParse is like Parse but panics on error. Use it for static tables.
func MustParse(src string) []Element {
	elems, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return elems
}

// readName consumes {NAME} starting at p.pos and returns NAME.
func (p *parser) readName() (string, error) {
	start := p.pos
	end := strings.IndexByte(p.src[start+1:], '}')
	if end < 0 {
		return "", p.fail(start, "unterminated token")
	}
	p.pos = start + 1 + end + 1
	return p.src[start+1 : start+1+end], nil
}

func (p *parser) parseToken() (Element, error) {
	start := p.pos
	name, err := p.readName()
	if err != nil {
		return Element{}, err
	}

	switch name {
	case "P*":
		return Element{Kind: VariableParams, Set: Digits}, nil
	case "Pt":
		return Element{Kind: TextParam, Set: TextSet}, nil
	case "Ps":
		return Element{Kind: AnyString, Set: StringSet}, nil
	}

	if strings.HasPrefix(name, "P") && len(name) > 1 && isDigit(name[1]) {
		digits := name[1:]
		for i := 0; i < len(digits); i++ {
			if !isDigit(digits[i]) {
				return Element{}, p.fail(start, "bad parameter count %q", digits)
			}
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 1 {
			return Element{}, p.fail(start, "parameter count %q must be a positive integer", digits)
		}
		return Element{Kind: FixedParams, Set: Digits, Count: n}, nil
	}

	if b, ok := aliases[name]; ok {
		return literal(b), nil
	}
	if strings.HasPrefix(name, "P") {
		return Element{}, p.fail(start, "bad parameter token {%s}", name)
	}
	return Element{}, p.fail(start, "unknown token {%s}", name)
}

// setUnit is one member candidate inside [...].
type setUnit struct {
	b     byte
	named bool
}

func (p *parser) readUnit() (setUnit, error) {
	switch c := p.src[p.pos]; c {
	case '\\':
		if p.pos+1 >= len(p.src) {
			return setUnit{}, p.fail(p.pos, "incomplete escape")
		}
		p.pos += 2
		return setUnit{b: p.src[p.pos-1]}, nil
	case '{':
		start := p.pos
		name, err := p.readName()
		if err != nil {
			return setUnit{}, err
		}
		b, ok := aliases[name]
		if !ok {
			return setUnit{}, p.fail(start, "unknown token {%s} in set", name)
		}
		return setUnit{b: b, named: true}, nil
	default:
		p.pos++
		return setUnit{b: c}, nil
	}
}

func (p *parser) parseSet() (Element, error) {
	start := p.pos
	p.pos++ // '['

	var set ByteSet
	closed := false
	for p.pos < len(p.src) {
		if p.src[p.pos] == ']' {
			p.pos++
			closed = true
			break
		}

		lo, err := p.readUnit()
		if err != nil {
			return Element{}, err
		}

		// a-b range: both ends plain bytes and the dash not next to a bracket
		if !lo.named && p.pos+1 < len(p.src) && p.src[p.pos] == '-' &&
			p.src[p.pos+1] != ']' && p.src[p.pos+1] != '{' {
			p.pos++
			hi, err := p.readUnit()
			if err != nil {
				return Element{}, err
			}
			if hi.b < lo.b {
				return Element{}, p.fail(start, "inverted range %q-%q", lo.b, hi.b)
			}
			set.AddRange(lo.b, hi.b)
			continue
		}
		set.Add(lo.b)
	}

	if !closed {
		return Element{}, p.fail(start, "unterminated character set")
	}
	if set.Empty() {
		return Element{}, p.fail(start, "empty character set")
	}
	if b, ok := set.Single(); ok {
		return literal(b), nil
	}
	return Element{Kind: CharSet, Set: set}, nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
