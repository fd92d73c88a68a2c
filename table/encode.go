// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package table

import (
	"encoding/binary"
	"fmt"
)

// magic prefixes every encoded table
const magic = "LXT\x01"

// Encode appends the binary encoding of t to dst.
//
// The layout is little-endian: the magic, then
// classes, ranges, states, start and dead as uint32,
// then each range (int64 low, int64 high, uint32 class),
// the transition table (uint32 per entry) and, per
// state, the number of acceptations followed by
// length-prefixed names.
func (t *Table) Encode(dst []byte) []byte {
	le := binary.LittleEndian
	dst = append(dst, magic...)
	dst = le.AppendUint32(dst, uint32(t.Classes))
	dst = le.AppendUint32(dst, uint32(len(t.Ranges)))
	dst = le.AppendUint32(dst, uint32(len(t.Accept)))
	dst = le.AppendUint32(dst, uint32(t.Start))
	dst = le.AppendUint32(dst, uint32(t.Dead))
	for _, r := range t.Ranges {
		dst = le.AppendUint64(dst, uint64(r.Low))
		dst = le.AppendUint64(dst, uint64(r.High))
		dst = le.AppendUint32(dst, uint32(r.Class))
	}
	for _, n := range t.Next {
		dst = le.AppendUint32(dst, uint32(n))
	}
	for _, names := range t.Accept {
		dst = le.AppendUint32(dst, uint32(len(names)))
		for _, name := range names {
			dst = le.AppendUint32(dst, uint32(len(name)))
			dst = append(dst, name...)
		}
	}
	return dst
}

type decoder struct {
	buf []byte
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.buf) < n {
		d.err = fmt.Errorf("%w: truncated input", ErrBadTable)
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) i64() int64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// count reads a uint32 count and checks that
// at least count*size bytes remain.
func (d *decoder) count(size int) int {
	n := int(d.u32())
	if d.err == nil && n*size > len(d.buf) {
		d.err = fmt.Errorf("%w: count %d exceeds input", ErrBadTable, n)
		return 0
	}
	return n
}

// Decode parses a table produced by Encode.
func Decode(src []byte) (*Table, error) {
	d := &decoder{buf: src}
	if string(d.take(len(magic))) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadTable)
	}
	t := &Table{Classes: int32(d.u32())}
	nranges := d.count(20)
	nstates := d.count(4)
	t.Start = int32(d.u32())
	t.Dead = int32(d.u32())
	if d.err != nil {
		return nil, d.err
	}
	if t.Classes < 0 || nstates*int(t.Classes)*4 > len(d.buf) {
		return nil, fmt.Errorf("%w: sizes exceed input", ErrBadTable)
	}
	t.Ranges = make([]Range, nranges)
	for i := range t.Ranges {
		t.Ranges[i].Low = d.i64()
		t.Ranges[i].High = d.i64()
		t.Ranges[i].Class = int32(d.u32())
	}
	t.Next = make([]int32, nstates*int(t.Classes))
	for i := range t.Next {
		t.Next[i] = int32(d.u32())
	}
	t.Accept = make([][]string, nstates)
	for s := range t.Accept {
		n := d.count(4)
		for i := 0; i < n && d.err == nil; i++ {
			l := d.count(1)
			t.Accept[s] = append(t.Accept[s], string(d.take(l)))
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadTable, len(d.buf))
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) validate() error {
	states := int32(len(t.Accept))
	if t.Start < 0 || t.Start >= states || t.Dead < 0 || t.Dead >= states {
		return fmt.Errorf("%w: start %d or dead %d out of range", ErrBadTable, t.Start, t.Dead)
	}
	for i, r := range t.Ranges {
		if r.Low > r.High || r.Class < 0 || r.Class >= t.Classes {
			return fmt.Errorf("%w: bad range %d", ErrBadTable, i)
		}
		if i > 0 && t.Ranges[i-1].High >= r.Low {
			return fmt.Errorf("%w: ranges %d and %d overlap", ErrBadTable, i-1, i)
		}
	}
	for i, n := range t.Next {
		if n < 0 || n >= states {
			return fmt.Errorf("%w: transition %d targets %d", ErrBadTable, i, n)
		}
	}
	return nil
}
