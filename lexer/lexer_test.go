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
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/SnellerInc/lexgen/alphabet"
	"github.com/SnellerInc/lexgen/automaton"
	"github.com/SnellerInc/lexgen/table"
	"github.com/SnellerInc/lexgen/tests"

	"golang.org/x/exp/slices"
)

func word(lo, hi rune) *automaton.Nfa[rune] {
	return automaton.FromInterval(alphabet.Characters, alphabet.Characters.MustInterval(lo, hi)).OneOrMore()
}

func keywords() *Context[rune] {
	return &Context[rune]{
		Name: "main",
		Tokens: []Token[rune]{
			{Name: "FOR", Expr: automaton.String("for")},
			{Name: "ID", Expr: word('a', 'z')},
			{Name: "SP", Expr: automaton.String(" ").OneOrMore()},
		},
	}
}

func tokenNames(lx []Lexeme) []string {
	out := make([]string, len(lx))
	for i := range lx {
		out[i] = lx[i].Token
	}
	return out
}

func TestCompilePriorities(t *testing.T) {
	m, err := Compile(keywords())
	if err != nil {
		t.Fatal(err)
	}
	testcases := []struct {
		input string
		want  automaton.Acceptation
	}{
		{"for", "FOR"},
		{"fo", "ID"},
		{"forx", "ID"},
		{"   ", "SP"},
	}
	for i := range testcases {
		got, ok := m.Accepts([]rune(testcases[i].input))
		if !ok || len(got) != 1 || got[0] != testcases[i].want {
			t.Errorf("%q: Observed %v expected %v", testcases[i].input, got, testcases[i].want)
		}
	}
	if _, ok := m.Accepts([]rune("for ")); ok {
		t.Error("mixed input must not be accepted")
	}

	// reversing the declaration order hides the keyword
	ctx := keywords()
	ctx.Tokens[0], ctx.Tokens[1] = ctx.Tokens[1], ctx.Tokens[0]
	m2, err := Compile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := m2.Accepts([]rune("for")); len(got) != 1 || got[0] != "ID" {
		t.Errorf("Observed %v expected [ID]", got)
	}
	if m.Equal(m2) {
		t.Error("different priorities produced equal automata")
	}
}

func TestCompileErrors(t *testing.T) {
	a := automaton.String("a")
	testcases := []struct {
		ctx  Context[rune]
		want error
	}{
		{Context[rune]{Name: "x"}, ErrNoTokens},
		{Context[rune]{Name: "x", Tokens: []Token[rune]{{Name: "A", Expr: a}, {Name: "A", Expr: a}}}, ErrDuplicateToken},
		{Context[rune]{Name: "x", Tokens: []Token[rune]{{Name: "", Expr: a}}}, ErrInvalidToken},
		{Context[rune]{Name: "x", Tokens: []Token[rune]{{Name: "A"}}}, ErrInvalidToken},
	}
	for i := range testcases {
		_, err := Compile(&testcases[i].ctx)
		if !errors.Is(err, testcases[i].want) {
			t.Errorf("case %d: Observed %v expected %v", i, err, testcases[i].want)
		}
	}
}

func TestShortestToken(t *testing.T) {
	// a string literal: '"' any* '"', shortest
	quote := automaton.FromValue(alphabet.Characters, '"')
	anything := automaton.FromSymbol(alphabet.Characters.FullSymbol()).ZeroOrMore()
	ctx := &Context[rune]{
		Name: "str",
		Tokens: []Token[rune]{
			{Name: "STR", Expr: quote.Concat(anything).Concat(quote), Shortest: true},
			{Name: "X", Expr: word('a', 'z')},
		},
	}
	m, err := Compile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	lx, err := Tokenize(table.Build(m), `"ab"cd"ef"`)
	if err != nil {
		t.Fatal(err)
	}
	got := tokenNames(lx)
	want := []string{"STR", "X", "STR"}
	if !slices.Equal(got, want) {
		t.Errorf("Observed %v expected %v", got, want)
	}
	if lx[1].Text != "cd" || lx[1].Offset != 4 {
		t.Errorf("Observed %+v", lx[1])
	}
}

func TestCompileAll(t *testing.T) {
	var contexts []Context[rune]
	for i := 0; i < 6; i++ {
		ctx := keywords()
		ctx.Name = fmt.Sprintf("ctx%d", i)
		contexts = append(contexts, *ctx)
	}
	var lines atomic.Int32
	conf := Config{
		Workers: 2,
		Logf: func(f string, args ...interface{}) {
			lines.Add(1)
			t.Logf(f, args...)
		},
	}
	res, err := CompileAll(contexts, conf)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != len(contexts) {
		t.Fatalf("Observed %d results expected %d", len(res), len(contexts))
	}
	ref, _ := Compile(keywords())
	for name, m := range res {
		if !m.Equal(ref) {
			t.Errorf("context %s: unexpected automaton\n%s", name, m)
		}
	}
	// one line per context plus a summary
	if got, want := int(lines.Load()), len(contexts)+1; got != want {
		t.Errorf("Observed %d log lines expected %d", got, want)
	}

	empty, err := CompileAll[rune](nil, Config{})
	if err != nil || len(empty) != 0 {
		t.Errorf("Observed %v, %v for no contexts", empty, err)
	}
}

func TestCompileAllErrors(t *testing.T) {
	good := *keywords()
	bad := Context[rune]{Name: "bad"}
	_, err := CompileAll([]Context[rune]{good, bad, good}, Config{Workers: 3})
	if !errors.Is(err, ErrDuplicateContext) {
		t.Errorf("Observed %v expected %v", err, ErrDuplicateContext)
	}
	_, err = CompileAll([]Context[rune]{good, bad}, Config{Workers: 3})
	if !errors.Is(err, ErrNoTokens) {
		t.Errorf("Observed %v expected %v", err, ErrNoTokens)
	}
}

func TestTokenizeNoMatch(t *testing.T) {
	m, err := Compile(keywords())
	if err != nil {
		t.Fatal(err)
	}
	lx, err := Tokenize(table.Build(m), "for x1")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("Observed %v expected %v", err, ErrNoMatch)
	}
	got := tokenNames(lx)
	want := []string{"FOR", "SP", "ID"}
	if !slices.Equal(got, want) {
		t.Errorf("Observed %v expected %v", got, want)
	}
}

func TestParseDescriptionErrors(t *testing.T) {
	testcases := []string{
		``,
		`contexts: []`,
		`contexts: [{name: a, tokens: [{name: X}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {char: ab}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {char: a, string: b}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {range: [z, a]}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {range: [a]}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {char: "#99999999"}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {minus: [{char: a}]}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {repeat: {expr: {char: a}, min: 3, max: 1}}}]}]`,
		`contexts: [{name: a, tokens: [{name: X, expr: {bogus: a}}]}]`,
	}
	for i, text := range testcases {
		_, err := ParseDescription([]byte(text))
		if !errors.Is(err, ErrBadDescription) {
			t.Errorf("case %d %q: Observed %v expected %v", i, text, err, ErrBadDescription)
		}
	}
}

func TestParseDescriptionOperators(t *testing.T) {
	text := `
contexts:
  - name: ops
    tokens:
      - name: HEX
        expr:
          seq:
            - string: "0x"
            - repeat:
                expr: {or: [{range: ["0", "9"]}, {range: [a, f]}]}
                min: 1
                max: 4
      - name: NOTAB
        expr:
          minus:
            - plus: {range: [a, c]}
            - string: ab
      - name: EVEN
        expr:
          and:
            - plus: {range: ["0", "9"]}
            - seq:
                - star: {range: ["0", "9"]}
                - or: [{char: "0"}, {char: "2"}, {char: "4"}, {char: "6"}, {char: "8"}]
      - name: OPT
        expr: {seq: [{char: "-"}, {opt: {char: "#62"}}]}
`
	contexts, err := ParseDescription([]byte(text))
	if err != nil {
		t.Fatal(err)
	}
	m, err := Compile(&contexts[0])
	if err != nil {
		t.Fatal(err)
	}
	testcases := []struct {
		input string
		want  string
	}{
		{"0x1f", "HEX"},
		{"0xabcd", "HEX"},
		{"0xabcde", ""},
		{"0x", ""},
		{"abc", "NOTAB"},
		{"ab", ""},
		{"a", "NOTAB"},
		{"1234", "EVEN"},
		{"123", ""},
		{"-", "OPT"},
		{"->", "OPT"},
	}
	for i := range testcases {
		got, ok := m.Accepts([]rune(testcases[i].input))
		want := testcases[i].want
		if want == "" {
			if ok {
				t.Errorf("%q: Observed %v expected no match", testcases[i].input, got)
			}
			continue
		}
		if !ok || len(got) != 1 || string(got[0]) != want {
			t.Errorf("%q: Observed %v expected %s", testcases[i].input, got, want)
		}
	}
}

// TestCases runs the files in testdata/.
//
// The first section of a file is a YAML description,
// the second holds lines of the form
//
//	"quoted input" => TOKEN TOKEN ...
//
// and the optional third section is the expected
// rendering of the context named by the `context` tag.
func TestCases(t *testing.T) {
	files, err := filepath.Glob("testdata/*.test")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}
	for _, fname := range files {
		fname := fname
		t.Run(filepath.Base(fname), func(t *testing.T) {
			t.Parallel()
			runTestcase(t, fname)
		})
	}
}

func runTestcase(t *testing.T, fname string) {
	spec, err := tests.ParseTestcase(fname)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Sections) < 2 {
		t.Fatalf("%s: expected at least 2 sections", fname)
	}
	contexts, err := ParseDescription([]byte(strings.Join(spec.Sections[0], "\n")))
	if err != nil {
		t.Fatal(err)
	}
	all, err := CompileAll(contexts, Config{Workers: 2, Logf: t.Logf})
	if err != nil {
		t.Fatal(err)
	}
	name := spec.Tags["context"]
	if name == "" {
		name = contexts[0].Name
	}
	m, ok := all[name]
	if !ok {
		t.Fatalf("no context %q", name)
	}
	tbl := table.Build(m)

	for _, line := range spec.Sections[1] {
		lhs, rhs, ok := strings.Cut(line, " => ")
		if !ok {
			t.Fatalf("malformed line %q", line)
		}
		input, err := strconv.Unquote(lhs)
		if err != nil {
			t.Fatalf("%s: %s", lhs, err)
		}
		lx, err := Tokenize(tbl, input)
		if err != nil {
			t.Errorf("%s: %s", lhs, err)
			continue
		}
		got := tokenNames(lx)
		want := strings.Fields(rhs)
		if !slices.Equal(got, want) {
			t.Errorf("%s: Observed %v expected %v", lhs, got, want)
		}
		var text strings.Builder
		for i := range lx {
			text.WriteString(lx[i].Text)
		}
		if text.String() != input {
			t.Errorf("%s: lexemes rebuild %q", lhs, text.String())
		}
	}

	if len(spec.Sections) > 2 {
		want := strings.Join(spec.Sections[2], "\n")
		if d := tests.Diff(want, m.String()); d != "" {
			t.Errorf("rendering differs:\n%s", d)
		}
	}
}
