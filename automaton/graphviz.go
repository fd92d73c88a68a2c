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
	"io"
	"strings"

	"github.com/SnellerInc/lexgen/alphabet"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// graphviz collects the nodes and edges of
// an automaton in dot syntax.
type graphviz struct {
	nodes []string
	edges []string
}

func (dot *graphviz) addNode(id int, start, dead bool, accept acceptSet) {
	shape := "ellipse"
	switch {
	case accept.accepting() && start:
		shape = "doubleoctagon"
	case accept.accepting():
		shape = "doublecircle"
	case start:
		shape = "octagon"
	}
	attrs := ""
	if dead {
		attrs = "; color=\"grey\""
	}
	if accept.accepting() {
		attrs += fmt.Sprintf("; xlabel=\"%s\"", escape(accept.String()))
	}
	dot.nodes = append(dot.nodes, fmt.Sprintf("\ts%d [shape=%s%s];\n", id, shape, attrs))
}

func (dot *graphviz) addEdge(from, to int, label string) {
	dot.edges = append(dot.edges, fmt.Sprintf("\ts%d -> s%d [label=\"%s\"];\n", from, to, escape(label)))
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func (dot *graphviz) write(dst io.Writer, graphName, graphTitle string) error {
	_, err := fmt.Fprintf(dst, "digraph %v {\n\trankdir=LR;\n", graphName)
	if err != nil {
		return err
	}
	slices.Sort(dot.nodes)
	for _, s := range dot.nodes {
		if _, err := io.WriteString(dst, s); err != nil {
			return err
		}
	}
	slices.Sort(dot.edges)
	for _, s := range dot.edges {
		if _, err := io.WriteString(dst, s); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(dst, "\tlabelloc=\"t\";\n\tlabel=\"%v: %v\";\n}\n", graphName, escape(graphTitle))
	return err
}

func tableDot[T constraints.Integer](a *alphabet.Alphabet[T], trans [][]int, accept []acceptSet, start int) *graphviz {
	dot := &graphviz{}
	for s, row := range trans {
		if s == dead && s != start {
			continue
		}
		dot.addNode(s, s == start, s == dead, accept[s])
		for sym, t := range row {
			if t != dead {
				dot.addEdge(s, t, a.Symbol(sym).String())
			}
		}
	}
	return dot
}

// WriteDot writes n in graphviz dot syntax.
func (n *Nfa[T]) WriteDot(dst io.Writer, graphName, graphTitle string) error {
	dot := &graphviz{}
	for i := range n.states {
		st := &n.states[i]
		dot.addNode(i, i == n.start, false, st.accept)
		for _, e := range st.edges {
			label := "ε"
			if e.symbol != epsilon {
				label = n.alphabet.Symbol(e.symbol).String()
			}
			dot.addEdge(i, e.to, label)
		}
	}
	return dot.write(dst, graphName, graphTitle)
}

// WriteDot writes d in graphviz dot syntax;
// the dead state is omitted.
func (d *Dfa[T]) WriteDot(dst io.Writer, graphName, graphTitle string) error {
	return tableDot(d.alphabet, d.trans, d.accept, d.start).write(dst, graphName, graphTitle)
}

// WriteDot writes m in graphviz dot syntax;
// the dead state is omitted.
func (m *MinimalDfa[T]) WriteDot(dst io.Writer, graphName, graphTitle string) error {
	return tableDot(m.alphabet, m.trans, m.accept, m.start).write(dst, graphName, graphTitle)
}
