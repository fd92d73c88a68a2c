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

package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/SnellerInc/lexgen/alphabet"
	"github.com/SnellerInc/lexgen/automaton"

	"sigs.k8s.io/yaml"
)

// ErrBadDescription is returned for malformed
// token descriptions.
var ErrBadDescription = errors.New("lexer: bad description")

// Description is the YAML form of a set of contexts:
//
//	contexts:
//	  - name: normal
//	    tokens:
//	      - name: ID
//	        expr:
//	          seq:
//	            - range: [a, z]
//	            - star: {range: [a, z]}
type Description struct {
	Contexts []ContextDesc `json:"contexts"`
}

type ContextDesc struct {
	Name   string      `json:"name"`
	Tokens []TokenDesc `json:"tokens"`
}

type TokenDesc struct {
	Name     string `json:"name"`
	Shortest bool   `json:"shortest,omitempty"`
	Expr     *Node  `json:"expr"`
}

// Node is one expression of a description;
// exactly one of its fields must be set.
//
// Characters are written as a single character
// or as #N, N being the decimal code point.
type Node struct {
	Char     string      `json:"char,omitempty"`
	Range    []string    `json:"range,omitempty"`
	String   string      `json:"string,omitempty"`
	Any      bool        `json:"any,omitempty"`
	Seq      []Node      `json:"seq,omitempty"`
	Or       []Node      `json:"or,omitempty"`
	Star     *Node       `json:"star,omitempty"`
	Plus     *Node       `json:"plus,omitempty"`
	Opt      *Node       `json:"opt,omitempty"`
	Minus    []Node      `json:"minus,omitempty"`
	And      []Node      `json:"and,omitempty"`
	Shortest *Node       `json:"shortest,omitempty"`
	Repeat   *RepeatNode `json:"repeat,omitempty"`
}

// RepeatNode repeats Expr at least Min times and at
// most Max times; a nil Max means no upper bound.
type RepeatNode struct {
	Expr Node `json:"expr"`
	Min  int  `json:"min"`
	Max  *int `json:"max,omitempty"`
}

// ParseDescription reads a YAML description and
// returns its contexts over the character realm.
func ParseDescription(data []byte) ([]Context[rune], error) {
	var d Description
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDescription, err)
	}
	if len(d.Contexts) == 0 {
		return nil, fmt.Errorf("%w: no contexts", ErrBadDescription)
	}
	out := make([]Context[rune], len(d.Contexts))
	for i := range d.Contexts {
		cd := &d.Contexts[i]
		out[i].Name = cd.Name
		for j := range cd.Tokens {
			td := &cd.Tokens[j]
			if td.Expr == nil {
				return nil, fmt.Errorf("%w: token %s of %s has no expr", ErrBadDescription, td.Name, cd.Name)
			}
			expr, err := td.Expr.Build()
			if err != nil {
				return nil, fmt.Errorf("token %s of %s: %w", td.Name, cd.Name, err)
			}
			out[i].Tokens = append(out[i].Tokens, Token[rune]{
				Name:     td.Name,
				Expr:     expr,
				Shortest: td.Shortest,
			})
		}
	}
	return out, nil
}

func parseChar(s string) (rune, error) {
	if len(s) > 1 && s[0] == '#' {
		n, err := strconv.ParseInt(s[1:], 10, 32)
		if err == nil && alphabet.Characters.Contains(rune(n)) {
			return rune(n), nil
		}
		return 0, fmt.Errorf("%w: bad code point %q", ErrBadDescription, s)
	}
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q is not a single character", ErrBadDescription, s)
	}
	return r, nil
}

func (n *Node) kind() (string, error) {
	var set []string
	add := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	add(n.Char != "", "char")
	add(n.Range != nil, "range")
	add(n.String != "", "string")
	add(n.Any, "any")
	add(n.Seq != nil, "seq")
	add(n.Or != nil, "or")
	add(n.Star != nil, "star")
	add(n.Plus != nil, "plus")
	add(n.Opt != nil, "opt")
	add(n.Minus != nil, "minus")
	add(n.And != nil, "and")
	add(n.Shortest != nil, "shortest")
	add(n.Repeat != nil, "repeat")
	if len(set) != 1 {
		return "", fmt.Errorf("%w: expression must have exactly one kind, found [%s]",
			ErrBadDescription, strings.Join(set, " "))
	}
	return set[0], nil
}

func buildList(nodes []Node) ([]*automaton.Nfa[rune], error) {
	out := make([]*automaton.Nfa[rune], len(nodes))
	for i := range nodes {
		n, err := nodes[i].Build()
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Build returns the automaton of n.
func (n *Node) Build() (*automaton.Nfa[rune], error) {
	chars := alphabet.Characters
	kind, err := n.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "char":
		c, err := parseChar(n.Char)
		if err != nil {
			return nil, err
		}
		return automaton.FromValue(chars, c), nil
	case "range":
		if len(n.Range) != 2 {
			return nil, fmt.Errorf("%w: range needs two bounds", ErrBadDescription)
		}
		lo, err := parseChar(n.Range[0])
		if err != nil {
			return nil, err
		}
		hi, err := parseChar(n.Range[1])
		if err != nil {
			return nil, err
		}
		iv, err := chars.Interval(lo, hi)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDescription, err)
		}
		return automaton.FromInterval(chars, iv), nil
	case "string":
		return automaton.String(n.String), nil
	case "any":
		return automaton.FromSymbol(chars.FullSymbol()), nil
	case "star", "plus", "opt", "shortest":
		var sub *Node
		switch kind {
		case "star":
			sub = n.Star
		case "plus":
			sub = n.Plus
		case "opt":
			sub = n.Opt
		default:
			sub = n.Shortest
		}
		x, err := sub.Build()
		if err != nil {
			return nil, err
		}
		switch kind {
		case "star":
			return x.ZeroOrMore(), nil
		case "plus":
			return x.OneOrMore(), nil
		case "opt":
			return x.ZeroOrOne(), nil
		}
		return x.Shortest(), nil
	case "repeat":
		x, err := n.Repeat.Expr.Build()
		if err != nil {
			return nil, err
		}
		var r *automaton.Nfa[rune]
		if n.Repeat.Max == nil {
			r, err = x.AtLeast(n.Repeat.Min)
		} else {
			r, err = x.RepeatRange(n.Repeat.Min, *n.Repeat.Max)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDescription, err)
		}
		return r, nil
	}

	// list operators
	var list []Node
	switch kind {
	case "seq":
		list = n.Seq
	case "or":
		list = n.Or
	case "minus":
		list = n.Minus
	case "and":
		list = n.And
	}
	if len(list) == 0 || (kind == "minus" && len(list) != 2) {
		return nil, fmt.Errorf("%w: bad operand count for %s", ErrBadDescription, kind)
	}
	xs, err := buildList(list)
	if err != nil {
		return nil, err
	}
	out := xs[0]
	for _, x := range xs[1:] {
		switch kind {
		case "seq":
			out = out.Concat(x)
		case "or":
			out = out.Union(x)
		case "minus":
			out = out.Subtract(x)
		case "and":
			out = out.Intersect(x)
		}
	}
	return out, nil
}
