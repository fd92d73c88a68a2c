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
	"encoding/binary"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Symbol is a set of values of one realm, stored as
// a sorted list of disjoint, non-adjacent intervals.
// A Symbol is immutable once built.
type Symbol[T constraints.Integer] struct {
	realm     *Realm[T]
	intervals []Interval[T]
}

// Symbol builds the normalized symbol covering
// the union of the given intervals.
func (r *Realm[T]) Symbol(intervals ...Interval[T]) Symbol[T] {
	return Symbol[T]{realm: r, intervals: normalize(slices.Clone(intervals))}
}

// EmptySymbol returns the symbol matching nothing.
func (r *Realm[T]) EmptySymbol() Symbol[T] {
	return Symbol[T]{realm: r}
}

// FullSymbol returns the symbol matching the whole realm.
func (r *Realm[T]) FullSymbol() Symbol[T] {
	return Symbol[T]{realm: r, intervals: []Interval[T]{r.Full()}}
}

// normalize sorts ivs and merges overlapping
// or adjacent intervals in place.
func normalize[T constraints.Integer](ivs []Interval[T]) []Interval[T] {
	if len(ivs) < 2 {
		return ivs
	}
	slices.SortFunc(ivs, func(a, b Interval[T]) int { return a.Compare(b) })
	out := ivs[:1]
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.Low <= last.High || last.IsAdjacentTo(iv) {
			last.High = max(last.High, iv.High)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (s Symbol[T]) Realm() *Realm[T] { return s.realm }

// Intervals returns a copy of the symbol's intervals.
func (s Symbol[T]) Intervals() []Interval[T] {
	return slices.Clone(s.intervals)
}

func (s Symbol[T]) IsEmpty() bool { return len(s.intervals) == 0 }

// Contains returns whether v belongs to the symbol.
func (s Symbol[T]) Contains(v T) bool {
	i, _ := slices.BinarySearchFunc(s.intervals, v, func(iv Interval[T], v T) int {
		if iv.High < v {
			return -1
		}
		if iv.Low > v {
			return 1
		}
		return 0
	})
	return i < len(s.intervals) && s.intervals[i].Contains(v)
}

// Union returns s ∪ o.
func (s Symbol[T]) Union(o Symbol[T]) Symbol[T] {
	s.realm.check(o.realm)
	all := make([]Interval[T], 0, len(s.intervals)+len(o.intervals))
	all = append(all, s.intervals...)
	all = append(all, o.intervals...)
	return Symbol[T]{realm: s.realm, intervals: normalize(all)}
}

// Intersect returns s ∩ o.
func (s Symbol[T]) Intersect(o Symbol[T]) Symbol[T] {
	s.realm.check(o.realm)
	var out []Interval[T]
	i, j := 0, 0
	for i < len(s.intervals) && j < len(o.intervals) {
		a, b := s.intervals[i], o.intervals[j]
		if r, ok := a.Intersect(b); ok {
			out = append(out, r)
		}
		if a.High < b.High {
			i++
		} else {
			j++
		}
	}
	return Symbol[T]{realm: s.realm, intervals: out}
}

// Subtract returns s \ o.
func (s Symbol[T]) Subtract(o Symbol[T]) Symbol[T] {
	s.realm.check(o.realm)
	var out []Interval[T]
	j := 0
	for _, iv := range s.intervals {
		for j < len(o.intervals) && o.intervals[j].High < iv.Low {
			j++
		}
		low, exhausted := iv.Low, false
		for k := j; k < len(o.intervals) && o.intervals[k].Low <= iv.High; k++ {
			cut := o.intervals[k]
			if cut.Low > low {
				out = append(out, Interval[T]{Low: low, High: cut.Low - 1})
			}
			if cut.High >= iv.High {
				exhausted = true
				break
			}
			low = max(low, cut.High+1)
		}
		if !exhausted {
			out = append(out, Interval[T]{Low: low, High: iv.High})
		}
	}
	return Symbol[T]{realm: s.realm, intervals: out}
}

// Complement returns the values of the realm
// that are not in s.
func (s Symbol[T]) Complement() Symbol[T] {
	return s.realm.FullSymbol().Subtract(s)
}

// Equal returns whether both symbols hold the same values.
func (s Symbol[T]) Equal(o Symbol[T]) bool {
	return s.realm == o.realm && slices.Equal(s.intervals, o.intervals)
}

// Compare orders symbols lexicographically by
// interval; a strict prefix sorts first.
func (s Symbol[T]) Compare(o Symbol[T]) int {
	n := min(len(s.intervals), len(o.intervals))
	for i := 0; i < n; i++ {
		if c := s.intervals[i].Compare(o.intervals[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(s.intervals) < len(o.intervals):
		return -1
	case len(s.intervals) > len(o.intervals):
		return 1
	}
	return 0
}

// Key returns a string that is equal for two
// symbols iff the symbols are Equal.
func (s Symbol[T]) Key() string {
	buf := make([]byte, 0, 16*len(s.intervals))
	for _, iv := range s.intervals {
		buf = binary.BigEndian.AppendUint64(buf, uint64(iv.Low))
		buf = binary.BigEndian.AppendUint64(buf, uint64(iv.High))
	}
	return string(buf)
}

func (s Symbol[T]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, iv := range s.intervals {
		if i > 0 {
			b.WriteByte(',')
		}
		if s.realm != nil {
			b.WriteString(s.realm.FormatInterval(iv))
		} else {
			b.WriteString(iv.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}
