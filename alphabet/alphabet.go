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
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// span is one interval of an alphabet together
// with the index of the symbol that owns it.
type span[T constraints.Integer] struct {
	Interval[T]
	symbol int
}

// Alphabet is a sorted set of pairwise disjoint,
// non-empty symbols of one realm. Symbol indices
// are stable for the lifetime of the alphabet.
type Alphabet[T constraints.Integer] struct {
	realm   *Realm[T]
	symbols []Symbol[T]
	index   map[string]int
	spans   []span[T] // sorted by Low
}

// NewAlphabet builds an alphabet from the given
// symbols. The symbols must be non-empty and
// pairwise disjoint.
func NewAlphabet[T constraints.Integer](realm *Realm[T], symbols ...Symbol[T]) (*Alphabet[T], error) {
	syms := slices.Clone(symbols)
	for i := range syms {
		if syms[i].realm != realm {
			return nil, fmt.Errorf("%w: symbol %s is not in realm %s", ErrRealmMismatch, syms[i], realm.Name())
		}
		if syms[i].IsEmpty() {
			return nil, fmt.Errorf("%w: empty symbol in alphabet", ErrInternal)
		}
	}
	slices.SortFunc(syms, func(a, b Symbol[T]) int { return a.Compare(b) })
	a := newAlphabet(realm, syms)
	if len(a.index) != len(syms) {
		return nil, fmt.Errorf("%w: duplicate symbol in alphabet", ErrInternal)
	}
	for i := 1; i < len(a.spans); i++ {
		if a.spans[i].Low <= a.spans[i-1].High {
			return nil, fmt.Errorf("%w: symbols %s and %s overlap", ErrInternal,
				a.symbols[a.spans[i-1].symbol], a.symbols[a.spans[i].symbol])
		}
	}
	return a, nil
}

// MustAlphabet is like NewAlphabet but panics on error.
func MustAlphabet[T constraints.Integer](realm *Realm[T], symbols ...Symbol[T]) *Alphabet[T] {
	a, err := NewAlphabet(realm, symbols...)
	if err != nil {
		panic(err)
	}
	return a
}

// newAlphabet trusts syms to be sorted,
// non-empty and disjoint.
func newAlphabet[T constraints.Integer](realm *Realm[T], syms []Symbol[T]) *Alphabet[T] {
	a := &Alphabet[T]{
		realm:   realm,
		symbols: syms,
		index:   make(map[string]int, len(syms)),
	}
	for i := range syms {
		a.index[syms[i].Key()] = i
		for _, iv := range syms[i].intervals {
			a.spans = append(a.spans, span[T]{Interval: iv, symbol: i})
		}
	}
	slices.SortFunc(a.spans, func(x, y span[T]) int { return x.Compare(y.Interval) })
	return a
}

func (a *Alphabet[T]) Realm() *Realm[T] { return a.realm }

// Len returns the number of symbols.
func (a *Alphabet[T]) Len() int { return len(a.symbols) }

// Symbol returns the i-th symbol.
func (a *Alphabet[T]) Symbol(i int) Symbol[T] { return a.symbols[i] }

// Symbols returns a copy of the symbol list.
func (a *Alphabet[T]) Symbols() []Symbol[T] {
	return slices.Clone(a.symbols)
}

// Index returns the index of sym in the alphabet.
func (a *Alphabet[T]) Index(sym Symbol[T]) (int, bool) {
	if sym.realm != a.realm {
		return 0, false
	}
	i, ok := a.index[sym.Key()]
	return i, ok
}

// Lookup returns the index of the symbol
// containing v, if any.
func (a *Alphabet[T]) Lookup(v T) (int, bool) {
	i, found := slices.BinarySearchFunc(a.spans, v, func(s span[T], v T) int {
		if s.High < v {
			return -1
		}
		if s.Low > v {
			return 1
		}
		return 0
	})
	if !found {
		return 0, false
	}
	return a.spans[i].symbol, true
}

// Equal returns whether both alphabets hold
// the same symbols.
func (a *Alphabet[T]) Equal(o *Alphabet[T]) bool {
	if a == o {
		return true
	}
	return a.realm == o.realm && slices.EqualFunc(a.symbols, o.symbols, Symbol[T].Equal)
}

func (a *Alphabet[T]) String() string {
	var b strings.Builder
	b.WriteString("Alphabet:{ ")
	for i := range a.symbols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.symbols[i].String())
	}
	b.WriteString(" }")
	return b.String()
}
