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
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/SnellerInc/lexgen/alphabet"
	"github.com/SnellerInc/lexgen/internal/workset"

	"github.com/bits-and-blooms/bitset"
	"github.com/dchest/siphash"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// dead is the index of the dead state of every Dfa:
// it accepts nothing and loops on every symbol.
const dead = 0

// Dfa is a deterministic automaton stored as a dense
// transition table: trans[state][symbol] is the
// target state, dead when there is no transition.
type Dfa[T constraints.Integer] struct {
	alphabet *alphabet.Alphabet[T]
	trans    [][]int
	accept   []acceptSet
	start    int
}

func newDfa[T constraints.Integer](a *alphabet.Alphabet[T]) *Dfa[T] {
	d := &Dfa[T]{alphabet: a}
	d.addState(nil)
	return d
}

func (d *Dfa[T]) addState(acc acceptSet) int {
	d.trans = append(d.trans, make([]int, d.alphabet.Len()))
	d.accept = append(d.accept, acc)
	return len(d.trans) - 1
}

func (d *Dfa[T]) Alphabet() *alphabet.Alphabet[T] { return d.alphabet }

// Len returns the number of states, dead state included.
func (d *Dfa[T]) Len() int { return len(d.trans) }

func (d *Dfa[T]) Start() int { return d.start }

// Acceptations returns the acceptations of state.
func (d *Dfa[T]) Acceptations(state int) []Acceptation {
	return d.accept[state].names()
}

// Step returns the state reached from state on v.
func (d *Dfa[T]) Step(state int, v T) int {
	sym, ok := d.alphabet.Lookup(v)
	if !ok {
		return dead
	}
	return d.trans[state][sym]
}

// Accepts runs d on input and returns the
// acceptations of the reached state.
func (d *Dfa[T]) Accepts(input []T) ([]Acceptation, bool) {
	s := d.start
	for _, v := range input {
		if s = d.Step(s, v); s == dead {
			return nil, false
		}
	}
	return d.accept[s].names(), d.accept[s].accepting()
}

// siphash keys for subset interning
const (
	subsetK0 = 0x736f6d6570736575
	subsetK1 = 0x646f72616e646f6d
)

// subsetTable interns sets of Nfa states; the
// index of a set in sets is its Dfa state.
type subsetTable struct {
	buckets map[uint64][]int
	sets    [][]int
	buf     []byte
}

func newSubsetTable() *subsetTable {
	return &subsetTable{
		buckets: make(map[uint64][]int),
		sets:    [][]int{nil}, // dead
	}
}

// intern returns the id of set and whether
// the set was seen for the first time.
func (t *subsetTable) intern(set []int) (int, bool) {
	t.buf = t.buf[:0]
	for _, s := range set {
		t.buf = binary.LittleEndian.AppendUint32(t.buf, uint32(s))
	}
	h := siphash.Hash(subsetK0, subsetK1, t.buf)
	for _, id := range t.buckets[h] {
		if slices.Equal(t.sets[id], set) {
			return id, false
		}
	}
	id := len(t.sets)
	t.buckets[h] = append(t.buckets[h], id)
	t.sets = append(t.sets, set)
	return id, true
}

// Determinize builds the Dfa of n by subset
// construction. Only subsets reachable from the
// start closure are materialized.
func Determinize[T constraints.Integer](n *Nfa[T]) *Dfa[T] {
	d := newDfa(n.alphabet)
	table := newSubsetTable()
	c := newCloser(len(n.states))
	ws := workset.New[int]()
	intern := func(set []int) int {
		if len(set) == 0 {
			return dead
		}
		id, fresh := table.intern(set)
		if fresh {
			var acc acceptSet
			for _, s := range set {
				acc = acc.union(n.states[s].accept)
			}
			if got := d.addState(acc); got != id {
				panic(fmt.Errorf("%w: subset %d interned as state %d", alphabet.ErrInternal, id, got))
			}
			ws.Add(id)
		}
		return id
	}
	d.start = intern(c.closure(n.states, []int{n.start}))

	targets := make([][]int, n.alphabet.Len())
	for ws.HasNext() {
		id := ws.Next()
		for i := range targets {
			targets[i] = targets[i][:0]
		}
		for _, s := range table.sets[id] {
			for _, e := range n.states[s].edges {
				if e.symbol != epsilon {
					targets[e.symbol] = append(targets[e.symbol], e.to)
				}
			}
		}
		for sym := range targets {
			next := intern(c.closure(n.states, targets[sym]))
			d.trans[id][sym] = next
		}
	}
	return d
}

type statePair struct {
	a, b int
}

// product runs d and o side by side over their merged
// alphabet; combine decides the acceptations of a pair.
func (d *Dfa[T]) product(o *Dfa[T], combine func(x, y acceptSet) acceptSet) *Dfa[T] {
	m := d.alphabet.MergeWith(o.alphabet)
	res := newDfa(m.Alphabet)
	ids := map[statePair]int{{dead, dead}: dead}
	pairs := []statePair{{dead, dead}}
	ws := workset.New[int]()
	intern := func(p statePair) int {
		if id, ok := ids[p]; ok {
			return id
		}
		id := res.addState(combine(d.accept[p.a], o.accept[p.b]))
		ids[p] = id
		pairs = append(pairs, p)
		ws.Add(id)
		return id
	}
	res.start = intern(statePair{d.start, o.start})
	for ws.HasNext() {
		id := ws.Next()
		p := pairs[id]
		for sym := 0; sym < m.Alphabet.Len(); sym++ {
			q := statePair{dead, dead}
			if l := m.LeftOf(sym); l >= 0 {
				q.a = d.trans[p.a][l]
			}
			if r := m.RightOf(sym); r >= 0 {
				q.b = o.trans[p.b][r]
			}
			next := intern(q)
			res.trans[id][sym] = next
		}
	}
	return res
}

// Union returns a Dfa accepting the strings of either
// automaton; a string accepted by both carries the
// acceptations of both.
func (d *Dfa[T]) Union(o *Dfa[T]) *Dfa[T] {
	return d.product(o, func(x, y acceptSet) acceptSet {
		return x.union(y)
	})
}

// Intersect returns a Dfa accepting the strings
// accepted by both automata.
func (d *Dfa[T]) Intersect(o *Dfa[T]) *Dfa[T] {
	return d.product(o, func(x, y acceptSet) acceptSet {
		if x.accepting() && y.accepting() {
			return x.union(y)
		}
		return nil
	})
}

// Subtract returns a Dfa accepting the strings of d
// that o does not accept.
func (d *Dfa[T]) Subtract(o *Dfa[T]) *Dfa[T] {
	return d.product(o, func(x, y acceptSet) acceptSet {
		if x.accepting() && !y.accepting() {
			return x
		}
		return nil
	})
}

// Shortest returns a Dfa in which, for each acceptation,
// a string is accepted only if no proper prefix of it
// carries the same acceptation in d. Acceptations are
// cut independently of each other.
func (d *Dfa[T]) Shortest() *Dfa[T] {
	type node struct {
		state   int
		blocked acceptSet
	}
	type key struct {
		state   int
		blocked string
	}
	res := newDfa(d.alphabet)
	ids := map[key]int{{dead, ""}: dead}
	nodes := []node{{dead, nil}}
	ws := workset.New[int]()
	intern := func(n node) int {
		if n.state == dead {
			return dead
		}
		k := key{n.state, n.blocked.key()}
		if id, ok := ids[k]; ok {
			return id
		}
		id := res.addState(d.accept[n.state].without(n.blocked))
		ids[k] = id
		nodes = append(nodes, n)
		ws.Add(id)
		return id
	}
	res.start = intern(node{d.start, nil})
	for ws.HasNext() {
		id := ws.Next()
		n := nodes[id]
		blocked := n.blocked.union(res.accept[id])
		for sym, t := range d.trans[n.state] {
			next := intern(node{t, blocked})
			res.trans[id][sym] = next
		}
	}
	return res
}

// WithPriorities returns a copy of d in which every
// state keeps a single acceptation: the first of names
// it carries, or its smallest one when it carries
// none of names.
func (d *Dfa[T]) WithPriorities(names ...Acceptation) *Dfa[T] {
	rank := make(map[Acceptation]int, len(names))
	for i, n := range names {
		if _, ok := rank[n]; !ok {
			rank[n] = i
		}
	}
	higher := func(a, b Acceptation) bool {
		ra, oka := rank[a]
		rb, okb := rank[b]
		switch {
		case oka && okb:
			return ra < rb
		case oka != okb:
			return oka
		}
		return a < b
	}
	accept := make([]acceptSet, len(d.accept))
	for i, acc := range d.accept {
		if len(acc) <= 1 {
			accept[i] = acc
			continue
		}
		best := acc[0]
		for _, a := range acc[1:] {
			if higher(a, best) {
				best = a
			}
		}
		accept[i] = acceptSet{best}
	}
	return &Dfa[T]{alphabet: d.alphabet, trans: d.trans, accept: accept, start: d.start}
}

// prune drops the states that cannot be reached
// from the start state and folds the states that
// cannot reach an accepting state into dead, which
// is kept at index 0.
func (d *Dfa[T]) prune() *Dfa[T] {
	n := uint(len(d.trans))
	reach := bitset.New(n)
	reach.Set(dead)
	reach.Set(uint(d.start))
	queue := []int{d.start}
	for i := 0; i < len(queue); i++ {
		for _, t := range d.trans[queue[i]] {
			if !reach.Test(uint(t)) {
				reach.Set(uint(t))
				queue = append(queue, t)
			}
		}
	}
	live := d.live(reach)

	index := make([]int, n)
	for i := range index {
		index[i] = -1
	}
	index[dead] = 0
	order := []int{dead}
	start := dead
	if live.Test(uint(d.start)) {
		start = 1
		index[d.start] = 1
		order = append(order, d.start)
	}
	for i := 1; i < len(order); i++ {
		for _, t := range d.trans[order[i]] {
			if index[t] >= 0 {
				continue
			}
			if !live.Test(uint(t)) {
				index[t] = dead
				continue
			}
			index[t] = len(order)
			order = append(order, t)
		}
	}
	if len(order) == len(d.trans) {
		return d
	}
	res := &Dfa[T]{alphabet: d.alphabet, start: start}
	for _, s := range order {
		row := make([]int, len(d.trans[s]))
		for sym, t := range d.trans[s] {
			row[sym] = index[t]
		}
		res.trans = append(res.trans, row)
		res.accept = append(res.accept, d.accept[s])
	}
	return res
}

// live returns the states of reach from which
// an accepting state can be reached.
func (d *Dfa[T]) live(reach *bitset.BitSet) *bitset.BitSet {
	pre := make([][]int, len(d.trans))
	for s, row := range d.trans {
		if !reach.Test(uint(s)) {
			continue
		}
		for _, t := range row {
			pre[t] = append(pre[t], s)
		}
	}
	live := bitset.New(uint(len(d.trans)))
	var queue []int
	for s := range d.trans {
		if reach.Test(uint(s)) && d.accept[s].accepting() {
			live.Set(uint(s))
			queue = append(queue, s)
		}
	}
	for i := 0; i < len(queue); i++ {
		for _, s := range pre[queue[i]] {
			if !live.Test(uint(s)) {
				live.Set(uint(s))
				queue = append(queue, s)
			}
		}
	}
	return live
}

// Nfa returns d as an Nfa without epsilon
// transitions; state numbers are preserved.
func (d *Dfa[T]) Nfa() *Nfa[T] {
	states := make([]nfaState, len(d.trans))
	for s, row := range d.trans {
		states[s].accept = d.accept[s]
		for sym, t := range row {
			if t != dead {
				states[s].edges = append(states[s].edges, edge{symbol: sym, to: t})
			}
		}
	}
	return &Nfa[T]{alphabet: d.alphabet, states: states, start: d.start}
}

// Minimal returns the canonical minimal form of d.
func (d *Dfa[T]) Minimal() *MinimalDfa[T] {
	return Minimize(d)
}

func (d *Dfa[T]) String() string {
	var b strings.Builder
	b.WriteString("Dfa:{")
	writeTable(&b, d.alphabet, d.trans, d.accept, d.start)
	b.WriteString("\n}")
	return b.String()
}

// writeTable renders a transition table, one state per
// line followed by its non-dead transitions.
func writeTable[T constraints.Integer](b *strings.Builder, a *alphabet.Alphabet[T], trans [][]int, accept []acceptSet, start int) {
	for s, row := range trans {
		fmt.Fprintf(b, "\n    s%d", s)
		if s == start {
			b.WriteString("(start)")
		}
		if s == dead {
			b.WriteString("(dead)")
		}
		if accept[s].accepting() {
			fmt.Fprintf(b, "(accept %s)", accept[s])
		}
		b.WriteByte(':')
		for sym, t := range row {
			if t != dead {
				fmt.Fprintf(b, "\n        %s -> s%d", a.Symbol(sym), t)
			}
		}
	}
}
