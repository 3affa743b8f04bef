// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package automaton

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Snapshot layout, protobuf wire format:
//
//	Table  { 1:version 2:classes(bytes) 3:nclass 4:start 5:State* 6:Accept* }
//	State  { 1:next+1(packed) 2:ops(bytes) 3:accept+1 4:region }
//	Accept { 1:pattern 2:handlers(packed) }
const wireVersion = 1

// index converts a decoded varint to a state, class or handler index.
// Values that do not fit an int32 are refused, so nothing wraps negative.
func index(x uint64) (int, error) {
	if x > math.MaxInt32 {
		return 0, fmt.Errorf("value %d out of range", x)
	}
	return int(x), nil
}

// MarshalBinary encodes the table in protobuf wire format.
func (t *Table) MarshalBinary() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, wireVersion)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, t.classes[:])
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.nclass))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.start))

	for i := range t.states {
		ds := &t.states[i]
		var next, ops, msg []byte
		for _, n := range ds.next {
			next = protowire.AppendVarint(next, uint64(n+1))
		}
		for _, op := range ds.ops {
			ops = append(ops, byte(op))
		}
		msg = protowire.AppendTag(msg, 1, protowire.BytesType)
		msg = protowire.AppendBytes(msg, next)
		msg = protowire.AppendTag(msg, 2, protowire.BytesType)
		msg = protowire.AppendBytes(msg, ops)
		msg = protowire.AppendTag(msg, 3, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(ds.accept+1))
		msg = protowire.AppendTag(msg, 4, protowire.VarintType)
		msg = protowire.AppendVarint(msg, uint64(ds.region))

		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}

	for _, a := range t.accepts {
		var handlers, msg []byte
		for _, h := range a.Handlers {
			handlers = protowire.AppendVarint(handlers, uint64(h))
		}
		msg = protowire.AppendTag(msg, 1, protowire.BytesType)
		msg = protowire.AppendString(msg, a.Pattern)
		msg = protowire.AppendTag(msg, 2, protowire.BytesType)
		msg = protowire.AppendBytes(msg, handlers)

		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	return b, nil
}

// fields walks the top level fields of a message.
func fields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(num, typ, nil, x); err != nil {
				return err
			}
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := fn(num, typ, v, 0); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func packed(b []byte) ([]uint64, error) {
	var out []uint64
	for len(b) > 0 {
		x, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, x)
		b = b[n:]
	}
	return out, nil
}

// UnmarshalTable decodes a table written by MarshalBinary and validates
// every state reference.
func UnmarshalTable(data []byte) (*Table, error) {
	t := &Table{}
	version := uint64(0)
	gotClasses := false

	err := fields(data, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			version = x
		case 2:
			if len(v) != len(t.classes) {
				return fmt.Errorf("class map has %d entries", len(v))
			}
			copy(t.classes[:], v)
			gotClasses = true
		case 3:
			n, err := index(x)
			if err != nil {
				return fmt.Errorf("class count: %w", err)
			}
			t.nclass = n
		case 4:
			n, err := index(x)
			if err != nil {
				return fmt.Errorf("start state: %w", err)
			}
			t.start = n
		case 5:
			ds, err := unmarshalState(v)
			if err != nil {
				return err
			}
			t.states = append(t.states, ds)
		case 6:
			a, err := unmarshalAccept(v)
			if err != nil {
				return err
			}
			t.accepts = append(t.accepts, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}
	if version != wireVersion {
		return nil, fmt.Errorf("%w: version %d", ErrCorruptTable, version)
	}
	if err := t.validate(gotClasses); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}
	return t, nil
}

func unmarshalState(b []byte) (ds dstate, err error) {
	ds.accept = -1
	err = fields(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			next, err := packed(v)
			if err != nil {
				return err
			}
			ds.next = make([]int32, len(next))
			for i, x := range next {
				n, err := index(x)
				if err != nil {
					return fmt.Errorf("transition: %w", err)
				}
				ds.next[i] = int32(n) - 1
			}
		case 2:
			ds.ops = make([]Op, len(v))
			for i := range v {
				ds.ops[i] = Op(v[i])
			}
		case 3:
			n, err := index(x)
			if err != nil {
				return fmt.Errorf("accept: %w", err)
			}
			ds.accept = int32(n) - 1
		case 4:
			if x > uint64(RegionText) {
				return fmt.Errorf("region %d", x)
			}
			ds.region = Region(x)
		}
		return nil
	})
	return ds, err
}

func unmarshalAccept(b []byte) (a Accept, err error) {
	err = fields(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch num {
		case 1:
			a.Pattern = string(v)
		case 2:
			hs, err := packed(v)
			if err != nil {
				return err
			}
			for _, x := range hs {
				h, err := index(x)
				if err != nil {
					return fmt.Errorf("handler: %w", err)
				}
				a.Handlers = append(a.Handlers, h)
			}
		}
		return nil
	})
	return a, err
}

func (t *Table) validate(gotClasses bool) error {
	if !gotClasses {
		return fmt.Errorf("missing class map")
	}
	if len(t.states) == 0 || t.start < 0 || t.start >= len(t.states) {
		return fmt.Errorf("start state %d out of %d", t.start, len(t.states))
	}
	if t.nclass < 1 || t.nclass > 256 {
		return fmt.Errorf("class count %d", t.nclass)
	}
	for _, c := range t.classes {
		if int(c) >= t.nclass {
			return fmt.Errorf("class %d out of %d", c, t.nclass)
		}
	}
	for i := range t.states {
		ds := &t.states[i]
		if len(ds.next) != t.nclass || len(ds.ops) != t.nclass {
			return fmt.Errorf("state %d has %d/%d transitions, want %d", i, len(ds.next), len(ds.ops), t.nclass)
		}
		for _, n := range ds.next {
			if n < Reject || int(n) >= len(t.states) {
				return fmt.Errorf("state %d points to %d", i, n)
			}
		}
		for _, op := range ds.ops {
			if op > OpText {
				return fmt.Errorf("state %d has op %d", i, op)
			}
		}
		if ds.region > RegionText {
			return fmt.Errorf("state %d has region %d", i, ds.region)
		}
		if ds.accept < -1 || int(ds.accept) >= len(t.accepts) {
			return fmt.Errorf("state %d accepts pattern %d of %d", i, ds.accept, len(t.accepts))
		}
	}
	return nil
}
