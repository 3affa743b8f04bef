// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"strings"
)

const (
	// MaxSequenceLength caps the bytes consumed by one sequence.
	MaxSequenceLength = 4096

	// ParamMax is the largest numeric parameter value; bigger values saturate.
	ParamMax = 65535
)

// Param is a numeric parameter. A slot without digits holds Omitted.
type Param int

const Omitted Param = -1

// Context describes one completed match. It is created fresh for every
// match and handlers may keep it.
type Context struct {
	Sequence        []byte  // matched bytes as they appeared in the input
	Pattern         string  // the pattern that matched
	NumericalParams []Param // a trailing omitted slot is dropped
	TextParam       string  // empty when the text parameter had no content
}

// Param returns the value of slot n, or defaultVal when the slot is missing
// or omitted.
func (c *Context) Param(n int, defaultVal int) int {
	if n < 0 || n >= len(c.NumericalParams) || c.NumericalParams[n] == Omitted {
		return defaultVal
	}
	return int(c.NumericalParams[n])
}

// ParamCount returns the number of recorded slots.
func (c *Context) ParamCount() int {
	return len(c.NumericalParams)
}

func (c *Context) HasText() bool {
	return c.TextParam != ""
}

func (c *Context) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %q", c.Pattern, c.Sequence)
	if len(c.NumericalParams) > 0 {
		sb.WriteString(" params=[")
		for i, p := range c.NumericalParams {
			if i > 0 {
				sb.WriteByte(' ')
			}
			if p == Omitted {
				sb.WriteString("_")
			} else {
				fmt.Fprintf(&sb, "%d", p)
			}
		}
		sb.WriteByte(']')
	}
	if c.HasText() {
		fmt.Fprintf(&sb, " text=%q", c.TextParam)
	}
	return sb.String()
}
