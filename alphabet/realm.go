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

// Package alphabet implements the interval algebra
// underneath every automaton: realms (ordered discrete
// domains), intervals, symbols (normalized interval
// sets) and alphabets (disjoint symbol sets) together
// with the alphabet merge that refines two partitions
// into their finest common refinement.
package alphabet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"

	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidRange is returned when an interval
	// is built with low > high or outside its realm.
	ErrInvalidRange = errors.New("invalid range")
	// ErrRealmMismatch is the panic value (wrapped) when
	// values from two different realms are combined.
	ErrRealmMismatch = errors.New("realm mismatch")
	// ErrInternal reports a violated partition invariant
	// or a lookup of an unregistered item.
	ErrInternal = errors.New("internal invariant violated")
)

// Realm is a totally ordered discrete domain
// [min, max] over which intervals are built.
//
// Realms are compared by identity: two symbols
// can only be combined when they share the same
// *Realm.
type Realm[T constraints.Integer] struct {
	name     string
	min, max T
	format   func(T) string
}

// NewRealm returns a realm covering [min, max].
// format renders a single value; when nil the
// value is printed in decimal.
func NewRealm[T constraints.Integer](name string, min, max T, format func(T) string) *Realm[T] {
	if min > max {
		panic(fmt.Errorf("%w: realm %s has min > max", ErrInvalidRange, name))
	}
	if format == nil {
		format = func(v T) string { return fmt.Sprint(v) }
	}
	return &Realm[T]{name: name, min: min, max: max, format: format}
}

// Characters is the realm of unicode code points.
var Characters = NewRealm[rune]("character", 0, unicode.MaxRune, formatChar)

// Integers is the realm of 64-bit integers; its
// bounds act as the MIN and MAX sentinels.
var Integers = NewRealm[int64]("integer", math.MinInt64, math.MaxInt64, formatInt)

func formatChar(r rune) string {
	if r >= 32 && r <= 126 {
		return "'" + string(r) + "'"
	}
	return "#" + strconv.Itoa(int(r))
}

func formatInt(v int64) string {
	switch v {
	case math.MinInt64:
		return "MIN"
	case math.MaxInt64:
		return "MAX"
	}
	return strconv.FormatInt(v, 10)
}

func (r *Realm[T]) Name() string { return r.name }
func (r *Realm[T]) Min() T       { return r.min }
func (r *Realm[T]) Max() T       { return r.max }

// Contains returns whether v lies within the realm.
func (r *Realm[T]) Contains(v T) bool {
	return v >= r.min && v <= r.max
}

// IsAdjacent returns true iff a < b and no
// value lies strictly between a and b.
func (r *Realm[T]) IsAdjacent(a, b T) bool {
	// b > a >= min, so b-1 cannot underflow
	return a < b && b-1 == a
}

// Compare returns -1, 0 or +1.
func (r *Realm[T]) Compare(a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Format renders a single value of the realm.
func (r *Realm[T]) Format(v T) string {
	return r.format(v)
}

// FormatInterval renders an interval as a single
// value or as [low..high].
func (r *Realm[T]) FormatInterval(iv Interval[T]) string {
	if iv.Low == iv.High {
		return r.format(iv.Low)
	}
	return "[" + r.format(iv.Low) + ".." + r.format(iv.High) + "]"
}

// Interval returns the closed interval [low, high].
func (r *Realm[T]) Interval(low, high T) (Interval[T], error) {
	if low > high {
		return Interval[T]{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, r.format(low), r.format(high))
	}
	if !r.Contains(low) || !r.Contains(high) {
		return Interval[T]{}, fmt.Errorf("%w: %s outside realm %s", ErrInvalidRange,
			r.FormatInterval(Interval[T]{low, high}), r.name)
	}
	return Interval[T]{Low: low, High: high}, nil
}

// MustInterval is like Interval but panics on error.
func (r *Realm[T]) MustInterval(low, high T) Interval[T] {
	iv, err := r.Interval(low, high)
	if err != nil {
		panic(err)
	}
	return iv
}

// Point returns the single-value interval [v, v].
func (r *Realm[T]) Point(v T) Interval[T] {
	return r.MustInterval(v, v)
}

// Full returns the interval covering the whole realm.
func (r *Realm[T]) Full() Interval[T] {
	return Interval[T]{Low: r.min, High: r.max}
}

func (r *Realm[T]) String() string {
	return fmt.Sprintf("Realm(%s)%s", r.name, r.FormatInterval(r.Full()))
}

func (r *Realm[T]) check(other *Realm[T]) {
	if r != other {
		panic(fmt.Errorf("%w: %s and %s", ErrRealmMismatch, r.Name(), other.Name()))
	}
}
