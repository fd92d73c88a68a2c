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
	"strings"

	"golang.org/x/exp/slices"
)

// Acceptation names what an accepting state accepts,
// typically a token name.
type Acceptation string

// Accept is the anonymous acceptation carried by
// automata built from plain expressions.
const Accept Acceptation = ""

func (a Acceptation) String() string {
	if a == Accept {
		return "ACCEPT"
	}
	return string(a)
}

// acceptSet is a sorted set of acceptations;
// the empty set marks a non-accepting state.
type acceptSet []Acceptation

var anonymous = acceptSet{Accept}

func makeAcceptSet(names ...Acceptation) acceptSet {
	if len(names) == 0 {
		return nil
	}
	s := slices.Clone(names)
	slices.Sort(s)
	return slices.Compact(s)
}

func (s acceptSet) accepting() bool { return len(s) > 0 }

func (s acceptSet) contains(a Acceptation) bool {
	_, ok := slices.BinarySearch(s, a)
	return ok
}

func (s acceptSet) union(o acceptSet) acceptSet {
	switch {
	case len(o) == 0:
		return s
	case len(s) == 0:
		return o
	}
	out := make(acceptSet, 0, len(s)+len(o))
	out = append(out, s...)
	out = append(out, o...)
	slices.Sort(out)
	return slices.Compact(out)
}

// without returns s minus the members of o.
func (s acceptSet) without(o acceptSet) acceptSet {
	if len(o) == 0 {
		return s
	}
	var out acceptSet
	for _, a := range s {
		if !o.contains(a) {
			out = append(out, a)
		}
	}
	return out
}

// key returns a string that identifies the set;
// the empty set and {Accept} have distinct keys.
func (s acceptSet) key() string {
	var b strings.Builder
	for _, a := range s {
		b.WriteString(string(a))
		b.WriteByte(0)
	}
	return b.String()
}

func (s acceptSet) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func (s acceptSet) names() []Acceptation {
	return slices.Clone(s)
}
