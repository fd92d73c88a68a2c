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
)

// Interval is the closed range [Low, High].
// Intervals are built through a Realm, which
// guarantees Low <= High.
type Interval[T constraints.Integer] struct {
	Low, High T
}

// Contains returns whether v is in the interval.
func (i Interval[T]) Contains(v T) bool {
	return i.Low <= v && v <= i.High
}

// Intersects returns whether the two intervals share a value.
func (i Interval[T]) Intersects(o Interval[T]) bool {
	return i.Low <= o.High && o.Low <= i.High
}

// Intersect returns the common part of two intervals;
// ok is false when they are disjoint.
func (i Interval[T]) Intersect(o Interval[T]) (r Interval[T], ok bool) {
	if !i.Intersects(o) {
		return r, false
	}
	r.Low = max(i.Low, o.Low)
	r.High = min(i.High, o.High)
	return r, true
}

// IsAdjacentTo returns true iff o starts
// right after i ends.
func (i Interval[T]) IsAdjacentTo(o Interval[T]) bool {
	return i.High < o.Low && o.Low-1 == i.High
}

// Compare orders intervals by Low then High.
func (i Interval[T]) Compare(o Interval[T]) int {
	switch {
	case i.Low < o.Low:
		return -1
	case i.Low > o.Low:
		return 1
	case i.High < o.High:
		return -1
	case i.High > o.High:
		return 1
	}
	return 0
}

func (i Interval[T]) String() string {
	if i.Low == i.High {
		return fmt.Sprint(i.Low)
	}
	return fmt.Sprintf("[%v..%v]", i.Low, i.High)
}
