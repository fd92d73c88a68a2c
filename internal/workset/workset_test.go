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

package workset

import (
	"errors"
	"testing"

	"golang.org/x/exp/slices"
)

func drain[T comparable](w *WorkSet[T]) []T {
	var out []T
	for w.HasNext() {
		out = append(out, w.Next())
	}
	return out
}

func TestWorkSetOrder(t *testing.T) {
	w := New[int]()
	for _, v := range []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3} {
		w.Add(v)
	}
	observed := drain(w)
	expected := []int{3, 1, 4, 5, 9, 2, 6}
	if !slices.Equal(observed, expected) {
		t.Errorf("Observed %v expected %v", observed, expected)
	}
}

func TestWorkSetDoneIsNoop(t *testing.T) {
	w := New[string]()
	w.Add("a")
	w.Add("b")
	if got := w.Next(); got != "a" {
		t.Fatalf("Observed %q expected %q", got, "a")
	}
	if !w.Done("a") || w.Pending("a") {
		t.Fatal("a should be done and not pending")
	}
	w.Add("a") // already produced
	w.Add("b") // still pending
	w.Add("c")
	observed := drain(w)
	expected := []string{"b", "c"}
	if !slices.Equal(observed, expected) {
		t.Errorf("Observed %v expected %v", observed, expected)
	}
	if w.Len() != 0 {
		t.Errorf("Len: observed %d expected 0", w.Len())
	}
}

func TestWorkSetInterleaved(t *testing.T) {
	// elements added while draining are still produced exactly once
	w := New[int]()
	w.Add(0)
	var seen []int
	for w.HasNext() {
		n := w.Next()
		seen = append(seen, n)
		for _, m := range []int{(n + 1) % 5, (n + 2) % 5, n} {
			w.Add(m)
		}
	}
	slices.Sort(seen)
	if !slices.Equal(seen, []int{0, 1, 2, 3, 4}) {
		t.Errorf("Observed %v", seen)
	}
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("unexpected panic value %v", r)
		}
	}()
	fn()
}

func TestWorkSetNil(t *testing.T) {
	type node struct{ id int }
	w := New[*node]()
	w.Add(&node{1})
	expectPanic(t, ErrNilElement, func() { w.Add(nil) })

	wa := New[any]()
	expectPanic(t, ErrNilElement, func() { wa.Add(nil) })
}

func TestWorkSetEmpty(t *testing.T) {
	w := New[int]()
	if w.HasNext() {
		t.Fatal("new WorkSet must be empty")
	}
	expectPanic(t, ErrEmpty, func() { w.Next() })
}
