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
	"errors"
	"math"
	"math/rand"
	"testing"
)

var octets = NewRealm[int]("byte", 0, 255, nil)

func iv(lo, hi int) Interval[int] { return octets.MustInterval(lo, hi) }

func sym(ivs ...Interval[int]) Symbol[int] { return octets.Symbol(ivs...) }

func TestIntervalErrors(t *testing.T) {
	if _, err := octets.Interval(5, 4); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Observed %v expected %v", err, ErrInvalidRange)
	}
	if _, err := octets.Interval(0, 256); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Observed %v expected %v", err, ErrInvalidRange)
	}
	if _, err := octets.Interval(7, 7); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestIntervalOps(t *testing.T) {
	a, b := iv(0, 10), iv(10, 20)
	if !a.Intersects(b) {
		t.Errorf("%v and %v share 10", a, b)
	}
	if r, ok := a.Intersect(b); !ok || r != iv(10, 10) {
		t.Errorf("Observed %v expected %v", r, iv(10, 10))
	}
	if !iv(0, 4).IsAdjacentTo(iv(5, 9)) {
		t.Error("[0..4] is adjacent to [5..9]")
	}
	if iv(0, 4).IsAdjacentTo(iv(4, 9)) || iv(5, 9).IsAdjacentTo(iv(0, 4)) {
		t.Error("unexpected adjacency")
	}
	if !octets.IsAdjacent(3, 4) || octets.IsAdjacent(4, 4) || octets.IsAdjacent(4, 3) {
		t.Error("IsAdjacent")
	}
	if Integers.IsAdjacent(math.MaxInt64, math.MinInt64) {
		t.Error("IsAdjacent must not wrap around")
	}
}

func TestSymbolNormalize(t *testing.T) {
	testcases := []struct {
		in  []Interval[int]
		out string
	}{
		{nil, "{}"},
		{[]Interval[int]{iv(5, 9), iv(0, 4)}, "{[0..9]}"},
		{[]Interval[int]{iv(0, 3), iv(5, 9)}, "{[0..3],[5..9]}"},
		{[]Interval[int]{iv(0, 10), iv(2, 3), iv(11, 11)}, "{[0..11]}"},
		{[]Interval[int]{iv(7, 7), iv(7, 7)}, "{7}"},
	}
	for i := range testcases {
		s := sym(testcases[i].in...)
		if got := s.String(); got != testcases[i].out {
			t.Errorf("case %d: Observed %s expected %s", i, got, testcases[i].out)
		}
	}
}

func TestSymbolSetOps(t *testing.T) {
	s := sym(iv(0, 9), iv(20, 29))
	o := sym(iv(5, 24))

	check := func(name string, got, want Symbol[int]) {
		t.Helper()
		if !got.Equal(want) {
			t.Errorf("%s: Observed %s expected %s", name, got, want)
		}
	}
	check("union", s.Union(o), sym(iv(0, 29)))
	check("intersect", s.Intersect(o), sym(iv(5, 9), iv(20, 24)))
	check("subtract", s.Subtract(o), sym(iv(0, 4), iv(25, 29)))
	check("subtract-rev", o.Subtract(s), sym(iv(10, 19)))
	check("complement", s.Complement(), sym(iv(10, 19), iv(30, 255)))
	check("complement-full", octets.FullSymbol().Complement(), octets.EmptySymbol())
	check("subtract-all", s.Subtract(octets.FullSymbol()), octets.EmptySymbol())
	check("subtract-hole", sym(iv(0, 255)).Subtract(sym(iv(1, 1), iv(3, 3))),
		sym(iv(0, 0), iv(2, 2), iv(4, 255)))
}

func TestSymbolCompareAndKey(t *testing.T) {
	a := sym(iv(0, 3))
	b := sym(iv(0, 3), iv(5, 5))
	c := sym(iv(1, 1))
	if a.Compare(b) >= 0 || b.Compare(c) >= 0 || a.Compare(c) >= 0 {
		t.Error("unexpected symbol order")
	}
	if a.Compare(sym(iv(0, 3))) != 0 {
		t.Error("equal symbols must compare equal")
	}
	if a.Key() == b.Key() || a.Key() != sym(iv(0, 1), iv(2, 3)).Key() {
		t.Error("Key must be canonical")
	}
	if !b.Contains(5) || b.Contains(4) || b.Contains(6) || !b.Contains(0) {
		t.Error("Contains")
	}
}

// randomSymbol builds a symbol from a few
// random intervals of the byte realm.
func randomSymbol(rng *rand.Rand) Symbol[int] {
	n := rng.Intn(4)
	ivs := make([]Interval[int], n)
	for i := range ivs {
		lo := rng.Intn(256)
		hi := lo + rng.Intn(256-lo)
		ivs[i] = iv(lo, hi)
	}
	return sym(ivs...)
}

func TestSymbolAlgebraRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		a, b := randomSymbol(rng), randomSymbol(rng)
		u, x, d := a.Union(b), a.Intersect(b), a.Subtract(b)
		for v := 0; v < 256; v++ {
			ina, inb := a.Contains(v), b.Contains(v)
			if u.Contains(v) != (ina || inb) {
				t.Fatalf("%s ∪ %s at %d", a, b, v)
			}
			if x.Contains(v) != (ina && inb) {
				t.Fatalf("%s ∩ %s at %d", a, b, v)
			}
			if d.Contains(v) != (ina && !inb) {
				t.Fatalf("%s \\ %s at %d", a, b, v)
			}
		}
	}
}

func TestRealmMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrRealmMismatch) {
			t.Fatalf("unexpected panic value %v", r)
		}
	}()
	other := NewRealm[int]("other", 0, 255, nil)
	sym(iv(0, 1)).Union(other.Symbol(other.Point(3)))
}

func TestCharacterFormat(t *testing.T) {
	s := Characters.Symbol(Characters.MustInterval('a', 'z'), Characters.Point('\n'))
	if got, want := s.String(), "{#10,['a'..'z']}"; got != want {
		t.Errorf("Observed %s expected %s", got, want)
	}
	full := Integers.FullSymbol()
	if got, want := full.String(), "{[MIN..MAX]}"; got != want {
		t.Errorf("Observed %s expected %s", got, want)
	}
}
