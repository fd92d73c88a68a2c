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

// Package automaton implements nondeterministic,
// deterministic and minimal deterministic finite
// automata over the alphabets of package alphabet.
//
// Every automaton is immutable once built; all
// operators return new automata.
package automaton

import (
	"fmt"
	"strings"

	"github.com/SnellerInc/lexgen/alphabet"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

const epsilon = -1

// edge is a transition on symbol (an index into the
// automaton's alphabet) or on epsilon.
type edge struct {
	symbol int
	to     int
}

type nfaState struct {
	edges  []edge
	accept acceptSet
}

// Nfa is a nondeterministic automaton with epsilon
// transitions. States live in an arena and refer to
// each other by index.
type Nfa[T constraints.Integer] struct {
	alphabet *alphabet.Alphabet[T]
	states   []nfaState
	start    int
}

// Empty returns an automaton accepting no string.
func Empty[T constraints.Integer](realm *alphabet.Realm[T]) *Nfa[T] {
	return &Nfa[T]{
		alphabet: alphabet.MustAlphabet(realm),
		states:   []nfaState{{}},
	}
}

// Epsilon returns an automaton accepting only
// the empty string.
func Epsilon[T constraints.Integer](realm *alphabet.Realm[T]) *Nfa[T] {
	return &Nfa[T]{
		alphabet: alphabet.MustAlphabet(realm),
		states:   []nfaState{{accept: anonymous}},
	}
}

// FromSymbol returns an automaton accepting every
// single-value string whose value is in sym.
func FromSymbol[T constraints.Integer](sym alphabet.Symbol[T]) *Nfa[T] {
	if sym.IsEmpty() {
		return Empty(sym.Realm())
	}
	return &Nfa[T]{
		alphabet: alphabet.MustAlphabet(sym.Realm(), sym),
		states: []nfaState{
			{edges: []edge{{symbol: 0, to: 1}}},
			{accept: anonymous},
		},
	}
}

// FromInterval returns an automaton accepting every
// single-value string whose value is in iv.
func FromInterval[T constraints.Integer](realm *alphabet.Realm[T], iv alphabet.Interval[T]) *Nfa[T] {
	return FromSymbol(realm.Symbol(iv))
}

// FromValue returns an automaton accepting exactly
// the one-value string v.
func FromValue[T constraints.Integer](realm *alphabet.Realm[T], v T) *Nfa[T] {
	return FromInterval(realm, realm.Point(v))
}

// Literal returns an automaton accepting exactly
// the string made of values.
func Literal[T constraints.Integer](realm *alphabet.Realm[T], values ...T) *Nfa[T] {
	var syms []alphabet.Symbol[T]
	seen := make(map[T]bool)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			syms = append(syms, realm.Symbol(realm.Point(v)))
		}
	}
	a := alphabet.MustAlphabet(realm, syms...)
	states := make([]nfaState, len(values)+1)
	for i, v := range values {
		s, _ := a.Lookup(v)
		states[i].edges = []edge{{symbol: s, to: i + 1}}
	}
	states[len(values)].accept = anonymous
	return &Nfa[T]{alphabet: a, states: states}
}

// String returns an automaton over the character
// realm accepting exactly s.
func String(s string) *Nfa[rune] {
	return Literal(alphabet.Characters, []rune(s)...)
}

func (n *Nfa[T]) Alphabet() *alphabet.Alphabet[T] { return n.alphabet }

// Len returns the number of states.
func (n *Nfa[T]) Len() int { return len(n.states) }

// builder accumulates states while combining automata.
type builder[T constraints.Integer] struct {
	states []nfaState
}

func (b *builder[T]) add(s nfaState) int {
	b.states = append(b.states, s)
	return len(b.states) - 1
}

// embed copies every state of n into b, translating
// symbols through tr (nil keeps them), and returns
// the index of n's first state in b.
func (b *builder[T]) embed(n *Nfa[T], tr func(int) []int) int {
	off := len(b.states)
	for i := range n.states {
		src := &n.states[i]
		dst := nfaState{accept: src.accept}
		for _, e := range src.edges {
			switch {
			case e.symbol == epsilon || tr == nil:
				dst.edges = append(dst.edges, edge{symbol: e.symbol, to: e.to + off})
			default:
				for _, s := range tr(e.symbol) {
					dst.edges = append(dst.edges, edge{symbol: s, to: e.to + off})
				}
			}
		}
		b.states = append(b.states, dst)
	}
	return off
}

func (b *builder[T]) link(from, to int) {
	b.states[from].edges = append(b.states[from].edges, edge{symbol: epsilon, to: to})
}

// Concat returns an automaton accepting the
// concatenations of a string of n with a string of o.
// The acceptations of o are kept.
func (n *Nfa[T]) Concat(o *Nfa[T]) *Nfa[T] {
	m := n.alphabet.MergeWith(o.alphabet)
	var b builder[T]
	offN := b.embed(n, m.Left)
	offO := b.embed(o, m.Right)
	for i := offN; i < offO; i++ {
		if b.states[i].accept.accepting() {
			b.states[i].accept = nil
			b.link(i, o.start+offO)
		}
	}
	return &Nfa[T]{alphabet: m.Alphabet, states: b.states, start: n.start + offN}
}

// Union returns an automaton accepting the strings
// of n and the strings of o.
func (n *Nfa[T]) Union(o *Nfa[T]) *Nfa[T] {
	m := n.alphabet.MergeWith(o.alphabet)
	var b builder[T]
	start := b.add(nfaState{})
	offN := b.embed(n, m.Left)
	offO := b.embed(o, m.Right)
	b.link(start, n.start+offN)
	b.link(start, o.start+offO)
	return &Nfa[T]{alphabet: m.Alphabet, states: b.states, start: start}
}

// kleene wraps n between a fresh start state and
// a fresh accepting state. skip adds the empty
// path; loop lets accepted strings repeat. The
// fresh accepting state carries every acceptation
// of n (the anonymous one if n has none).
func (n *Nfa[T]) kleene(skip, loop bool) *Nfa[T] {
	var b builder[T]
	start := b.add(nfaState{})
	off := b.embed(n, nil)
	var tags acceptSet
	for i := off; i < len(b.states); i++ {
		tags = tags.union(b.states[i].accept)
	}
	if !tags.accepting() {
		tags = anonymous
	}
	final := b.add(nfaState{accept: tags})
	b.link(start, n.start+off)
	if skip {
		b.link(start, final)
	}
	for i := off; i < final; i++ {
		if !b.states[i].accept.accepting() {
			continue
		}
		b.states[i].accept = nil
		if loop {
			b.link(i, n.start+off)
		}
		b.link(i, final)
	}
	return &Nfa[T]{alphabet: n.alphabet, states: b.states, start: start}
}

// ZeroOrOne returns n?.
func (n *Nfa[T]) ZeroOrOne() *Nfa[T] { return n.kleene(true, false) }

// ZeroOrMore returns n*.
func (n *Nfa[T]) ZeroOrMore() *Nfa[T] { return n.kleene(true, true) }

// OneOrMore returns n+.
func (n *Nfa[T]) OneOrMore() *Nfa[T] { return n.kleene(false, true) }

// Repeat returns the concatenation of count copies of n.
func (n *Nfa[T]) Repeat(count int) (*Nfa[T], error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative repeat count %d", alphabet.ErrInvalidRange, count)
	}
	out := Epsilon(n.alphabet.Realm())
	for i := 0; i < count; i++ {
		out = out.Concat(n)
	}
	return out, nil
}

// RepeatRange returns the strings made of at least
// low and at most high strings of n.
func (n *Nfa[T]) RepeatRange(low, high int) (*Nfa[T], error) {
	if low < 0 || high < low {
		return nil, fmt.Errorf("%w: repeat range [%d..%d]", alphabet.ErrInvalidRange, low, high)
	}
	out, _ := n.Repeat(low)
	if high == low {
		return out, nil
	}
	opt, _ := n.ZeroOrOne().Repeat(high - low)
	return out.Concat(opt), nil
}

// AtLeast returns the strings made of low or
// more strings of n.
func (n *Nfa[T]) AtLeast(low int) (*Nfa[T], error) {
	out, err := n.Repeat(low)
	if err != nil {
		return nil, err
	}
	return out.Concat(n.ZeroOrMore()), nil
}

// Subtract returns an automaton accepting the strings
// of n that o does not accept.
func (n *Nfa[T]) Subtract(o *Nfa[T]) *Nfa[T] {
	return n.Dfa().Subtract(o.Dfa()).Nfa()
}

// Intersect returns an automaton accepting the
// strings accepted by both n and o.
func (n *Nfa[T]) Intersect(o *Nfa[T]) *Nfa[T] {
	return n.Dfa().Intersect(o.Dfa()).Nfa()
}

// Shortest returns an automaton accepting the strings
// of n that have no proper prefix accepted by n.
func (n *Nfa[T]) Shortest() *Nfa[T] {
	return n.Dfa().Shortest().Nfa()
}

// Accept returns a copy of n in which every accepting
// state accepts exactly name.
func (n *Nfa[T]) Accept(name Acceptation) *Nfa[T] {
	tag := acceptSet{name}
	states := make([]nfaState, len(n.states))
	for i := range n.states {
		states[i].edges = n.states[i].edges
		if n.states[i].accept.accepting() {
			states[i].accept = tag
		}
	}
	return &Nfa[T]{alphabet: n.alphabet, states: states, start: n.start}
}

// Dfa determinizes n.
func (n *Nfa[T]) Dfa() *Dfa[T] {
	return Determinize(n)
}

// closer computes epsilon closures; the stamp
// slice avoids clearing a visited set per call.
type closer struct {
	stamp []uint32
	gen   uint32
	stack []int
}

func newCloser(size int) *closer {
	return &closer{stamp: make([]uint32, size)}
}

// closure returns the sorted epsilon closure of seed.
func (c *closer) closure(states []nfaState, seed []int) []int {
	c.gen++
	var out []int
	c.stack = c.stack[:0]
	for _, s := range seed {
		if c.stamp[s] != c.gen {
			c.stamp[s] = c.gen
			c.stack = append(c.stack, s)
		}
	}
	for len(c.stack) > 0 {
		s := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		out = append(out, s)
		for _, e := range states[s].edges {
			if e.symbol == epsilon && c.stamp[e.to] != c.gen {
				c.stamp[e.to] = c.gen
				c.stack = append(c.stack, e.to)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Accepts runs n on input and returns the
// acceptations of the reached states.
func (n *Nfa[T]) Accepts(input []T) ([]Acceptation, bool) {
	c := newCloser(len(n.states))
	cur := c.closure(n.states, []int{n.start})
	var next []int
	for _, v := range input {
		sym, ok := n.alphabet.Lookup(v)
		if !ok {
			return nil, false
		}
		next = next[:0]
		for _, s := range cur {
			for _, e := range n.states[s].edges {
				if e.symbol == sym {
					next = append(next, e.to)
				}
			}
		}
		cur = c.closure(n.states, next)
		if len(cur) == 0 {
			return nil, false
		}
	}
	var acc acceptSet
	for _, s := range cur {
		acc = acc.union(n.states[s].accept)
	}
	return acc.names(), acc.accepting()
}

func (n *Nfa[T]) String() string {
	var b strings.Builder
	b.WriteString("Nfa:{")
	for i := range n.states {
		st := &n.states[i]
		fmt.Fprintf(&b, "\n    s%d", i)
		if i == n.start {
			b.WriteString("(start)")
		}
		if st.accept.accepting() {
			fmt.Fprintf(&b, "(accept %s)", st.accept)
		}
		b.WriteByte(':')
		for _, e := range st.edges {
			if e.symbol == epsilon {
				fmt.Fprintf(&b, "\n        ε -> s%d", e.to)
			} else {
				fmt.Fprintf(&b, "\n        %s -> s%d", n.alphabet.Symbol(e.symbol), e.to)
			}
		}
	}
	b.WriteString("\n}")
	return b.String()
}
