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

package automaton

import (
	"fmt"
	"math/rand"
	"testing"
)

// rx is a tiny expression tree with a reference
// matcher that does not use any automaton.
type rx struct {
	op     byte
	lo, hi rune
	l, r   *rx
}

func (x *rx) String() string {
	switch x.op {
	case 'c':
		return fmt.Sprintf("[%c-%c]", x.lo, x.hi)
	case '*', '+', '?':
		return fmt.Sprintf("(%v)%c", x.l, x.op)
	case 's':
		return fmt.Sprintf("shortest(%v)", x.l)
	}
	return fmt.Sprintf("(%v %c %v)", x.l, x.op, x.r)
}

func (x *rx) match(s []rune) bool {
	switch x.op {
	case 'c':
		return len(s) == 1 && s[0] >= x.lo && s[0] <= x.hi
	case '.':
		for i := 0; i <= len(s); i++ {
			if x.l.match(s[:i]) && x.r.match(s[i:]) {
				return true
			}
		}
		return false
	case '|':
		return x.l.match(s) || x.r.match(s)
	case '*':
		if len(s) == 0 {
			return true
		}
		for i := 1; i <= len(s); i++ {
			if x.l.match(s[:i]) && x.match(s[i:]) {
				return true
			}
		}
		return false
	case '+':
		star := &rx{op: '*', l: x.l}
		for i := 0; i <= len(s); i++ {
			if x.l.match(s[:i]) && star.match(s[i:]) {
				return true
			}
		}
		return false
	case '?':
		return len(s) == 0 || x.l.match(s)
	case '-':
		return x.l.match(s) && !x.r.match(s)
	case '&':
		return x.l.match(s) && x.r.match(s)
	case 's':
		if !x.l.match(s) {
			return false
		}
		for i := 0; i < len(s); i++ {
			if x.l.match(s[:i]) {
				return false
			}
		}
		return true
	}
	panic("unknown op " + string(x.op))
}

func (x *rx) build() *Nfa[rune] {
	switch x.op {
	case 'c':
		return rng(x.lo, x.hi)
	case '.':
		return x.l.build().Concat(x.r.build())
	case '|':
		return x.l.build().Union(x.r.build())
	case '*':
		return x.l.build().ZeroOrMore()
	case '+':
		return x.l.build().OneOrMore()
	case '?':
		return x.l.build().ZeroOrOne()
	case '-':
		return x.l.build().Subtract(x.r.build())
	case '&':
		return x.l.build().Intersect(x.r.build())
	case 's':
		return x.l.build().Shortest()
	}
	panic("unknown op " + string(x.op))
}

func randomRx(r *rand.Rand, depth int) *rx {
	if depth == 0 || r.Intn(4) == 0 {
		lo := 'a' + rune(r.Intn(4))
		hi := lo + rune(r.Intn(int('d'-lo)+1))
		return &rx{op: 'c', lo: lo, hi: hi}
	}
	ops := []byte{'.', '.', '|', '|', '*', '+', '?', '-', '&', 's'}
	x := &rx{op: ops[r.Intn(len(ops))]}
	x.l = randomRx(r, depth-1)
	switch x.op {
	case '.', '|', '-', '&':
		x.r = randomRx(r, depth-1)
	}
	return x
}

// allStrings returns every string over [a-e]
// of length at most n.
func allStrings(n int) [][]rune {
	out := [][]rune{{}}
	prev := [][]rune{{}}
	for l := 1; l <= n; l++ {
		var next [][]rune
		for _, p := range prev {
			for c := 'a'; c <= 'e'; c++ {
				s := make([]rune, len(p)+1)
				copy(s, p)
				s[len(p)] = c
				next = append(next, s)
			}
		}
		out = append(out, next...)
		prev = next
	}
	return out
}

func TestLanguagePreserved(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	inputs := allStrings(4)
	for round := 0; round < 60; round++ {
		x := randomRx(r, 4)
		n := x.build()
		d := n.Dfa()
		m := d.Minimal()
		for _, s := range inputs {
			want := x.match(s)
			if _, ok := n.Accepts(s); ok != want {
				t.Fatalf("%v: Nfa on %q: Observed %v expected %v", x, string(s), ok, want)
			}
			if _, ok := d.Accepts(s); ok != want {
				t.Fatalf("%v: Dfa on %q: Observed %v expected %v", x, string(s), ok, want)
			}
			if _, ok := m.Accepts(s); ok != want {
				t.Fatalf("%v: MinimalDfa on %q: Observed %v expected %v", x, string(s), ok, want)
			}
		}
		if again := m.Dfa().Minimal(); !again.Equal(m) {
			t.Fatalf("%v: minimization is not idempotent", x)
		}
		// an equivalent but larger automaton minimizes identically
		if dup := n.Union(n).Dfa().Minimal(); !dup.Equal(m) {
			t.Fatalf("%v: x|x differs from x\n%s\n%s", x, dup, m)
		}
		if diff := n.Subtract(n).Dfa().Minimal(); !diff.IsEmpty() {
			t.Fatalf("%v: x-x is not empty\n%s", x, diff)
		}
		if m.Len() > d.Len() {
			t.Fatalf("%v: minimal automaton has %d states, Dfa has %d", x, m.Len(), d.Len())
		}
	}
}
