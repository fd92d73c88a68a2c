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

package alphabet

import (
	"fmt"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// MergeResult is the outcome of Alphabet.MergeWith:
// the merged alphabet plus the translation from each
// input symbol to the merged symbols it was split into.
type MergeResult[T constraints.Integer] struct {
	Alphabet    *Alphabet[T]
	left, right *Alphabet[T]
	fwdL, fwdR  [][]int
	invL, invR  []int
}

// owners identifies the left and right symbol covering
// an elementary segment; -1 means no symbol on that side.
type owners struct {
	left, right int
}

// MergeWith returns the coarsest alphabet refining
// both a and b: every merged symbol is included in
// at most one symbol of each input, and the union
// of each input symbol's translation equals it.
//
// MergeWith panics if the alphabets belong to
// different realms.
func (a *Alphabet[T]) MergeWith(b *Alphabet[T]) *MergeResult[T] {
	a.realm.check(b.realm)
	if a.Equal(b) {
		return identityMerge(a, b)
	}

	// elementary segments start at every lower bound
	// and right after every upper bound
	starts := make([]T, 0, 2*(len(a.spans)+len(b.spans)))
	for _, spans := range [][]span[T]{a.spans, b.spans} {
		for _, s := range spans {
			starts = append(starts, s.Low)
			if s.High < a.realm.max {
				starts = append(starts, s.High+1)
			}
		}
	}
	slices.Sort(starts)
	starts = slices.Compact(starts)

	groups := make(map[owners]int)
	var order []owners
	var segments [][]Interval[T]
	i, j := 0, 0
	for k, low := range starts {
		high := a.realm.max
		if k+1 < len(starts) {
			high = starts[k+1] - 1
		}
		for i < len(a.spans) && a.spans[i].High < low {
			i++
		}
		for j < len(b.spans) && b.spans[j].High < low {
			j++
		}
		o := owners{left: -1, right: -1}
		if i < len(a.spans) && a.spans[i].Low <= low {
			o.left = a.spans[i].symbol
		}
		if j < len(b.spans) && b.spans[j].Low <= low {
			o.right = b.spans[j].symbol
		}
		if o.left < 0 && o.right < 0 {
			continue // gap covered by neither side
		}
		g, ok := groups[o]
		if !ok {
			g = len(order)
			groups[o] = g
			order = append(order, o)
			segments = append(segments, nil)
		}
		segments[g] = append(segments[g], Interval[T]{Low: low, High: high})
	}

	syms := make([]Symbol[T], len(order))
	for g := range order {
		syms[g] = Symbol[T]{realm: a.realm, intervals: normalize(segments[g])}
	}
	perm := make([]int, len(order))
	for g := range perm {
		perm[g] = g
	}
	slices.SortFunc(perm, func(x, y int) int { return syms[x].Compare(syms[y]) })
	sorted := make([]Symbol[T], len(perm))
	for n, g := range perm {
		sorted[n] = syms[g]
	}

	m := &MergeResult[T]{
		Alphabet: newAlphabet(a.realm, sorted),
		left:     a,
		right:    b,
		fwdL:     make([][]int, a.Len()),
		fwdR:     make([][]int, b.Len()),
		invL:     make([]int, len(perm)),
		invR:     make([]int, len(perm)),
	}
	for n, g := range perm {
		o := order[g]
		m.invL[n], m.invR[n] = o.left, o.right
		if o.left >= 0 {
			m.fwdL[o.left] = append(m.fwdL[o.left], n)
		}
		if o.right >= 0 {
			m.fwdR[o.right] = append(m.fwdR[o.right], n)
		}
	}
	return m
}

func identityMerge[T constraints.Integer](a, b *Alphabet[T]) *MergeResult[T] {
	m := &MergeResult[T]{
		Alphabet: a,
		left:     a,
		right:    b,
		fwdL:     make([][]int, a.Len()),
		fwdR:     make([][]int, a.Len()),
		invL:     make([]int, a.Len()),
		invR:     make([]int, a.Len()),
	}
	for i := range m.fwdL {
		m.fwdL[i] = []int{i}
		m.fwdR[i] = []int{i}
		m.invL[i] = i
		m.invR[i] = i
	}
	return m
}

// Left returns the merged symbol indices that
// the i-th symbol of the left alphabet maps to.
func (m *MergeResult[T]) Left(i int) []int { return m.fwdL[i] }

// Right returns the merged symbol indices that
// the j-th symbol of the right alphabet maps to.
func (m *MergeResult[T]) Right(j int) []int { return m.fwdR[j] }

// LeftOf returns the index of the left symbol that
// contains merged symbol n, or -1.
func (m *MergeResult[T]) LeftOf(n int) int { return m.invL[n] }

// RightOf returns the index of the right symbol that
// contains merged symbol n, or -1.
func (m *MergeResult[T]) RightOf(n int) int { return m.invR[n] }

// NewSymbols returns the merged symbols that
// replace old, which must belong to one of the
// two merged alphabets.
func (m *MergeResult[T]) NewSymbols(old Symbol[T]) ([]Symbol[T], error) {
	var idx []int
	if i, ok := m.left.Index(old); ok {
		idx = m.fwdL[i]
	} else if j, ok := m.right.Index(old); ok {
		idx = m.fwdR[j]
	} else {
		return nil, fmt.Errorf("%w: symbol %s was not merged", ErrInternal, old)
	}
	out := make([]Symbol[T], len(idx))
	for k, n := range idx {
		out[k] = m.Alphabet.Symbol(n)
	}
	return out, nil
}
