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
	"io"
	"strings"

	"github.com/SnellerInc/lexgen/alphabet"
	"github.com/SnellerInc/lexgen/internal/workset"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// MinimalDfa is the canonical minimal form of a Dfa:
// two MinimalDfa accepting the same tagged language
// have identical alphabets, states and transitions.
//
// State 0 is the dead state. Unless the language is
// empty, state 1 is the start state and the remaining
// states are numbered breadth-first from it, following
// symbols in alphabet order.
type MinimalDfa[T constraints.Integer] struct {
	alphabet *alphabet.Alphabet[T]
	trans    [][]int
	accept   []acceptSet
	start    int
}

// Transition is an outgoing edge of a MinimalDfa state.
type Transition[T constraints.Integer] struct {
	Symbol alphabet.Symbol[T]
	To     int
}

// partition groups the states of a Dfa into blocks;
// retired blocks (replaced by a split) are nil.
type partition struct {
	blockOf []int
	blocks  [][]int
}

type splitter struct {
	block, symbol int
}

// refine computes the coarsest partition of the states
// of d that is compatible with the acceptation sets
// and stable under every symbol (Hopcroft).
func refine[T constraints.Integer](d *Dfa[T]) *partition {
	n, k := len(d.trans), d.alphabet.Len()
	pre := make([][]int, n*k)
	for s, row := range d.trans {
		for sym, t := range row {
			pre[t*k+sym] = append(pre[t*k+sym], s)
		}
	}

	p := &partition{blockOf: make([]int, n)}
	initial := make(map[string]int)
	for s := 0; s < n; s++ {
		key := d.accept[s].key()
		b, ok := initial[key]
		if !ok {
			b = len(p.blocks)
			initial[key] = b
			p.blocks = append(p.blocks, nil)
		}
		p.blocks[b] = append(p.blocks[b], s)
		p.blockOf[s] = b
	}

	ws := workset.New[splitter]()
	for b := range p.blocks {
		for sym := 0; sym < k; sym++ {
			ws.Add(splitter{b, sym})
		}
	}
	mark := make([]bool, n)
	var hit []int
	var touched []int
	for ws.HasNext() {
		sp := ws.Next()
		members := p.blocks[sp.block]
		if members == nil {
			continue // stale
		}
		hit = hit[:0]
		for _, t := range members {
			for _, s := range pre[t*k+sp.symbol] {
				if !mark[s] {
					mark[s] = true
					hit = append(hit, s)
				}
			}
		}
		touched = touched[:0]
		for _, s := range hit {
			if b := p.blockOf[s]; !slices.Contains(touched, b) {
				touched = append(touched, b)
			}
		}
		for _, b := range touched {
			var in, out []int
			for _, s := range p.blocks[b] {
				if mark[s] {
					in = append(in, s)
				} else {
					out = append(out, s)
				}
			}
			if len(out) == 0 {
				continue
			}
			p.split(ws, k, b, in, out)
		}
		for _, s := range hit {
			mark[s] = false
		}
	}
	return p
}

// split retires block b in favour of two fresh
// blocks and schedules the matching splitters.
func (p *partition) split(ws *workset.WorkSet[splitter], k, b int, in, out []int) {
	b1 := len(p.blocks)
	b2 := b1 + 1
	p.blocks = append(p.blocks, in, out)
	p.blocks[b] = nil
	for _, s := range in {
		p.blockOf[s] = b1
	}
	for _, s := range out {
		p.blockOf[s] = b2
	}
	for sym := 0; sym < k; sym++ {
		switch {
		case ws.Pending(splitter{b, sym}):
			ws.Add(splitter{b1, sym})
			ws.Add(splitter{b2, sym})
		case len(in) <= len(out):
			ws.Add(splitter{b1, sym})
		default:
			ws.Add(splitter{b2, sym})
		}
	}
}

// Minimize returns the canonical minimal form of d.
func Minimize[T constraints.Integer](d *Dfa[T]) *MinimalDfa[T] {
	d = d.prune()
	p := refine(d)
	deadBlock := p.blockOf[dead]
	next := func(b, sym int) int {
		return p.blockOf[d.trans[p.blocks[b][0]][sym]]
	}

	// symbols joining the same block pairs (outside the
	// dead block) become one symbol; symbols joining no
	// pair only lead to the dead block and disappear
	type group struct {
		sym alphabet.Symbol[T]
		rep int
	}
	var groups []group
	bySignature := make(map[string]int)
	var buf []byte
	for sym := 0; sym < d.alphabet.Len(); sym++ {
		buf = buf[:0]
		for b, members := range p.blocks {
			if members == nil || b == deadBlock {
				continue
			}
			if t := next(b, sym); t != deadBlock {
				buf = binary.AppendUvarint(buf, uint64(b))
				buf = binary.AppendUvarint(buf, uint64(t))
			}
		}
		if len(buf) == 0 {
			continue
		}
		if g, ok := bySignature[string(buf)]; ok {
			groups[g].sym = groups[g].sym.Union(d.alphabet.Symbol(sym))
			continue
		}
		bySignature[string(buf)] = len(groups)
		groups = append(groups, group{sym: d.alphabet.Symbol(sym), rep: sym})
	}
	slices.SortFunc(groups, func(x, y group) int { return x.sym.Compare(y.sym) })
	syms := make([]alphabet.Symbol[T], len(groups))
	for i := range groups {
		syms[i] = groups[i].sym
	}

	number := make([]int, len(p.blocks))
	for i := range number {
		number[i] = -1
	}
	number[deadBlock] = dead
	order := []int{deadBlock}
	if start := p.blockOf[d.start]; start != deadBlock {
		number[start] = len(order)
		order = append(order, start)
	}
	for i := 1; i < len(order); i++ {
		for _, g := range groups {
			if t := next(order[i], g.rep); number[t] < 0 {
				number[t] = len(order)
				order = append(order, t)
			}
		}
	}

	m := &MinimalDfa[T]{
		alphabet: alphabet.MustAlphabet(d.alphabet.Realm(), syms...),
		trans:    make([][]int, len(order)),
		accept:   make([]acceptSet, len(order)),
	}
	if len(order) > 1 {
		m.start = 1
	}
	for i, b := range order {
		row := make([]int, len(groups))
		for j, g := range groups {
			row[j] = number[next(b, g.rep)]
		}
		m.trans[i] = row
		m.accept[i] = d.accept[p.blocks[b][0]]
	}
	return m
}

func (m *MinimalDfa[T]) Alphabet() *alphabet.Alphabet[T] { return m.alphabet }

// Len returns the number of states, dead state included.
func (m *MinimalDfa[T]) Len() int { return len(m.trans) }

// Start returns the start state; it is the dead
// state when the language is empty.
func (m *MinimalDfa[T]) Start() int { return m.start }

// Dead returns the dead state.
func (m *MinimalDfa[T]) Dead() int { return dead }

// IsEmpty returns whether m accepts no string.
func (m *MinimalDfa[T]) IsEmpty() bool { return m.start == dead }

// Acceptations returns the acceptations of state;
// the result is empty for non-accepting states.
func (m *MinimalDfa[T]) Acceptations(state int) []Acceptation {
	return m.accept[state].names()
}

// Target returns the state reached from state
// on the symbol with index sym.
func (m *MinimalDfa[T]) Target(state, sym int) int {
	return m.trans[state][sym]
}

// Transitions returns the transitions of state
// that do not lead to the dead state.
func (m *MinimalDfa[T]) Transitions(state int) []Transition[T] {
	var out []Transition[T]
	for sym, t := range m.trans[state] {
		if t != dead {
			out = append(out, Transition[T]{Symbol: m.alphabet.Symbol(sym), To: t})
		}
	}
	return out
}

// Step returns the state reached from state on v.
func (m *MinimalDfa[T]) Step(state int, v T) int {
	sym, ok := m.alphabet.Lookup(v)
	if !ok {
		return dead
	}
	return m.trans[state][sym]
}

// Accepts runs m on input and returns the
// acceptations of the reached state.
func (m *MinimalDfa[T]) Accepts(input []T) ([]Acceptation, bool) {
	s := m.start
	for _, v := range input {
		if s = m.Step(s, v); s == dead {
			return nil, false
		}
	}
	return m.accept[s].names(), m.accept[s].accepting()
}

// Dfa returns m as a plain Dfa sharing its tables.
func (m *MinimalDfa[T]) Dfa() *Dfa[T] {
	return &Dfa[T]{alphabet: m.alphabet, trans: m.trans, accept: m.accept, start: m.start}
}

// Nfa returns m as an Nfa without epsilon transitions.
func (m *MinimalDfa[T]) Nfa() *Nfa[T] {
	return m.Dfa().Nfa()
}

// Equal returns whether m and o are identical,
// which for canonical automata means they accept
// the same tagged language.
func (m *MinimalDfa[T]) Equal(o *MinimalDfa[T]) bool {
	if m.start != o.start || len(m.trans) != len(o.trans) || !m.alphabet.Equal(o.alphabet) {
		return false
	}
	for i := range m.trans {
		if !slices.Equal(m.trans[i], o.trans[i]) || !slices.Equal(m.accept[i], o.accept[i]) {
			return false
		}
	}
	return true
}

func (m *MinimalDfa[T]) String() string {
	var b strings.Builder
	b.WriteString("MinimalDfa:{")
	writeTable(&b, m.alphabet, m.trans, m.accept, m.start)
	b.WriteString("\n}")
	return b.String()
}

// Fingerprint returns the blake2b-256 digest of the
// canonical rendering of m.
func (m *MinimalDfa[T]) Fingerprint() [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil)
	io.WriteString(h, m.String())
	var out [blake2b.Size256]byte
	h.Sum(out[:0])
	return out
}
