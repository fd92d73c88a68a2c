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

// Package lexer turns sets of token expressions into
// the minimal tagged automata that drive scanners.
//
// A Context groups the tokens that are active at the
// same time. Each context compiles independently into
// one MinimalDfa whose accepting states carry the name
// of the token they recognize; when several tokens
// accept the same string, the one declared first wins.
package lexer

import (
	"errors"
	"fmt"

	"github.com/SnellerInc/lexgen/automaton"

	"golang.org/x/exp/constraints"
)

var (
	// ErrDuplicateToken is returned when a context
	// declares two tokens with the same name.
	ErrDuplicateToken = errors.New("lexer: duplicate token")
	// ErrDuplicateContext is returned when two
	// contexts share a name.
	ErrDuplicateContext = errors.New("lexer: duplicate context")
	// ErrNoTokens is returned for a context without tokens.
	ErrNoTokens = errors.New("lexer: context has no tokens")
	// ErrInvalidToken is returned for a token without
	// a name or without an expression.
	ErrInvalidToken = errors.New("lexer: invalid token")
)

// Token is a named token expression.
type Token[T constraints.Integer] struct {
	Name string
	Expr *automaton.Nfa[T]
	// Shortest restricts the token to the strings
	// of Expr that have no proper prefix in Expr.
	Shortest bool
}

// Context is a named set of tokens in
// priority order.
type Context[T constraints.Integer] struct {
	Name   string
	Tokens []Token[T]
}

func (c *Context[T]) validate() error {
	if len(c.Tokens) == 0 {
		return fmt.Errorf("%w: %s", ErrNoTokens, c.Name)
	}
	seen := make(map[string]bool, len(c.Tokens))
	for i := range c.Tokens {
		tok := &c.Tokens[i]
		if tok.Name == "" {
			return fmt.Errorf("%w: token %d of %s has no name", ErrInvalidToken, i, c.Name)
		}
		if tok.Expr == nil {
			return fmt.Errorf("%w: token %s of %s has no expression", ErrInvalidToken, tok.Name, c.Name)
		}
		if seen[tok.Name] {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateToken, tok.Name, c.Name)
		}
		seen[tok.Name] = true
	}
	return nil
}

// Compile builds the minimal automaton recognizing
// the tokens of ctx. Each accepting state carries
// exactly one token name.
func Compile[T constraints.Integer](ctx *Context[T]) (*automaton.MinimalDfa[T], error) {
	if err := ctx.validate(); err != nil {
		return nil, err
	}
	var all *automaton.Nfa[T]
	names := make([]automaton.Acceptation, len(ctx.Tokens))
	for i := range ctx.Tokens {
		tok := &ctx.Tokens[i]
		expr := tok.Expr
		if tok.Shortest {
			expr = expr.Shortest()
		}
		names[i] = automaton.Acceptation(tok.Name)
		expr = expr.Accept(names[i])
		if all == nil {
			all = expr
		} else {
			all = all.Union(expr)
		}
	}
	return all.Dfa().WithPriorities(names...).Minimal(), nil
}
