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

// Package workset implements the deduplicating
// FIFO worklist shared by the fixpoint algorithms
// of the automaton package.
package workset

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilElement is the panic value (wrapped)
	// when a nil element is added to a WorkSet.
	ErrNilElement = errors.New("workset: nil element")
	// ErrEmpty is the panic value (wrapped)
	// when Next is called on an exhausted WorkSet.
	ErrEmpty = errors.New("workset: no pending element")
)

// WorkSet is a FIFO queue in which every distinct
// element is produced at most once: adding an element
// that is pending or that was already produced by
// Next is a no-op.
//
// A WorkSet is owned by the single computation
// that created it and is not safe for concurrent use.
type WorkSet[T comparable] struct {
	done    map[T]struct{}
	pending map[T]struct{}
	queue   []T
	head    int
}

// New returns an empty WorkSet.
func New[T comparable]() *WorkSet[T] {
	return &WorkSet[T]{
		done:    make(map[T]struct{}),
		pending: make(map[T]struct{}),
	}
}

// Add enqueues e unless it is pending or done.
// Add panics when e is a nil pointer, map, slice,
// channel, function or interface.
func (w *WorkSet[T]) Add(e T) {
	if isNil(e) {
		panic(fmt.Errorf("%w (%T)", ErrNilElement, e))
	}
	if _, ok := w.done[e]; ok {
		return
	}
	if _, ok := w.pending[e]; ok {
		return
	}
	w.pending[e] = struct{}{}
	w.queue = append(w.queue, e)
}

// HasNext returns whether an element is pending.
func (w *WorkSet[T]) HasNext() bool {
	return w.head < len(w.queue)
}

// Next dequeues the oldest pending element
// and marks it done. Callers must guard Next
// with HasNext.
func (w *WorkSet[T]) Next() T {
	if !w.HasNext() {
		panic(ErrEmpty)
	}
	e := w.queue[w.head]
	var zero T
	w.queue[w.head] = zero
	w.head++
	if w.head == len(w.queue) {
		// everything consumed: reuse the backing array
		w.queue = w.queue[:0]
		w.head = 0
	}
	delete(w.pending, e)
	w.done[e] = struct{}{}
	return e
}

// Pending returns whether e is queued but not yet produced.
func (w *WorkSet[T]) Pending(e T) bool {
	_, ok := w.pending[e]
	return ok
}

// Done returns whether e was already produced by Next.
func (w *WorkSet[T]) Done(e T) bool {
	_, ok := w.done[e]
	return ok
}

// Len returns the number of pending elements.
func (w *WorkSet[T]) Len() int {
	return len(w.queue) - w.head
}

func isNil(e any) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}
