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

// Package table flattens minimal automata into the
// dense transition tables consumed by generated scanners.
package table

import (
	"errors"

	"github.com/SnellerInc/lexgen/automaton"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// ErrBadTable is returned when decoding
// a malformed or truncated table.
var ErrBadTable = errors.New("table: malformed table")

// Range maps the values [Low, High] to a symbol class.
type Range struct {
	Low, High int64
	Class     int32
}

// Table is a realm-independent scanner table.
// The transition from state s on class c is
// Next[s*Classes+c].
type Table struct {
	Classes int32
	Ranges  []Range // sorted, disjoint
	Next    []int32
	Accept  [][]string // per state; empty when not accepting
	Start   int32
	Dead    int32
}

// Build flattens m into a Table. Symbol classes
// are the symbols of m's alphabet.
func Build[T constraints.Integer](m *automaton.MinimalDfa[T]) *Table {
	a := m.Alphabet()
	t := &Table{
		Classes: int32(a.Len()),
		Next:    make([]int32, 0, m.Len()*a.Len()),
		Accept:  make([][]string, m.Len()),
		Start:   int32(m.Start()),
		Dead:    int32(m.Dead()),
	}
	for c := 0; c < a.Len(); c++ {
		for _, iv := range a.Symbol(c).Intervals() {
			t.Ranges = append(t.Ranges, Range{Low: int64(iv.Low), High: int64(iv.High), Class: int32(c)})
		}
	}
	slices.SortFunc(t.Ranges, func(x, y Range) int {
		switch {
		case x.Low < y.Low:
			return -1
		case x.Low > y.Low:
			return 1
		}
		return 0
	})
	for s := 0; s < m.Len(); s++ {
		for c := 0; c < a.Len(); c++ {
			t.Next = append(t.Next, int32(m.Target(s, c)))
		}
		for _, name := range m.Acceptations(s) {
			t.Accept[s] = append(t.Accept[s], string(name))
		}
	}
	return t
}

// States returns the number of states.
func (t *Table) States() int { return len(t.Accept) }

// Class returns the class of v, or -1.
func (t *Table) Class(v int64) int32 {
	i, ok := slices.BinarySearchFunc(t.Ranges, v, func(r Range, v int64) int {
		if r.High < v {
			return -1
		}
		if r.Low > v {
			return 1
		}
		return 0
	})
	if !ok {
		return -1
	}
	return t.Ranges[i].Class
}

// Step returns the state reached from state on v.
func (t *Table) Step(state int32, v int64) int32 {
	c := t.Class(v)
	if c < 0 {
		return t.Dead
	}
	return t.Next[state*t.Classes+c]
}

// Match runs the longest-match rule from the start
// of input: it returns the length of the longest
// accepted prefix and its acceptations, or (-1, nil)
// if no prefix is accepted.
func Match[T constraints.Integer](t *Table, input []T) (int, []string) {
	n, accept := -1, []string(nil)
	s := t.Start
	if len(t.Accept[s]) > 0 {
		n, accept = 0, t.Accept[s]
	}
	for i, v := range input {
		if s = t.Step(s, int64(v)); s == t.Dead {
			break
		}
		if len(t.Accept[s]) > 0 {
			n, accept = i+1, t.Accept[s]
		}
	}
	return n, accept
}
