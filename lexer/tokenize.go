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

	"github.com/SnellerInc/lexgen/table"
)

// ErrNoMatch is returned by Tokenize when no
// token matches at some offset of the input.
var ErrNoMatch = errors.New("lexer: no token matches")

// Lexeme is one token recognized in the input.
type Lexeme struct {
	Token  string
	Text   string
	Offset int // in runes
}

// Tokenize splits input into lexemes by repeatedly
// taking the longest match of t. It is the reference
// behavior of the scanners generated from t.
func Tokenize(t *table.Table, input string) ([]Lexeme, error) {
	runes := []rune(input)
	var out []Lexeme
	for pos := 0; pos < len(runes); {
		n, accept := table.Match(t, runes[pos:])
		if n <= 0 {
			return out, fmt.Errorf("%w at offset %d (%q)", ErrNoMatch, pos, runes[pos])
		}
		out = append(out, Lexeme{Token: accept[0], Text: string(runes[pos : pos+n]), Offset: pos})
		pos += n
	}
	return out, nil
}
