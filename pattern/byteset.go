// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pattern

import (
	"fmt"
	"math/bits"
	"strings"
)

// ByteSet is a set of byte values, one bit per byte.
type ByteSet [4]uint64

// NewByteSet returns a set holding the given bytes.
func NewByteSet(bs ...byte) (s ByteSet) {
	for _, b := range bs {
		s.Add(b)
	}
	return s
}

// RangeSet returns the set of bytes in [lo, hi].
func RangeSet(lo, hi byte) (s ByteSet) {
	s.AddRange(lo, hi)
	return s
}

func (s *ByteSet) Add(b byte) {
	s[b>>6] |= 1 << (b & 63)
}

// AddRange adds the inclusive range [lo, hi]. An inverted range adds nothing.
func (s *ByteSet) AddRange(lo, hi byte) {
	for c := int(lo); c <= int(hi); c++ {
		s.Add(byte(c))
	}
}

func (s *ByteSet) Remove(b byte) {
	s[b>>6] &^= 1 << (b & 63)
}

func (s ByteSet) Has(b byte) bool {
	return s[b>>6]&(1<<(b&63)) != 0
}

func (s ByteSet) Len() (n int) {
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s ByteSet) Empty() bool {
	return s == ByteSet{}
}

func (s ByteSet) Equal(o ByteSet) bool {
	return s == o
}

func (s ByteSet) Union(o ByteSet) ByteSet {
	for i := range s {
		s[i] |= o[i]
	}
	return s
}

func (s ByteSet) Intersect(o ByteSet) ByteSet {
	for i := range s {
		s[i] &= o[i]
	}
	return s
}

// Bytes lists the members in ascending order.
func (s ByteSet) Bytes() []byte {
	out := make([]byte, 0, s.Len())
	for i, w := range s {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, byte(i*64+tz))
			w &= w - 1
		}
	}
	return out
}

// Single reports the only member of a one-byte set.
func (s ByteSet) Single() (byte, bool) {
	if s.Len() != 1 {
		return 0, false
	}
	return s.Bytes()[0], true
}

// String renders the set as compact ranges, e.g. [0x30-0x39 0x3b].
func (s ByteSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	members := s.Bytes()
	for i := 0; i < len(members); {
		j := i
		for j+1 < len(members) && members[j+1] == members[j]+1 {
			j++
		}
		if sb.Len() > 1 {
			sb.WriteByte(' ')
		}
		if j == i {
			fmt.Fprintf(&sb, "%#04x", members[i])
		} else {
			fmt.Fprintf(&sb, "%#04x-%#04x", members[i], members[j])
		}
		i = j + 1
	}
	sb.WriteByte(']')
	return sb.String()
}
