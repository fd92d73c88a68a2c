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

// Command lexdfa compiles a YAML token description
// into minimal automata and prints them.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SnellerInc/lexgen/automaton"
	"github.com/SnellerInc/lexgen/lexer"
	"github.com/SnellerInc/lexgen/table"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	dashv      bool
	dashh      bool
	dashj      int
	dashc      string
	dashf      string
	dashz      string
	dasho      string
	dashinput  string
	dashstats  bool
	dashload   string
	formatList = []string{"render", "dot", "table", "fingerprint", "tokens"}
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.IntVar(&dashj, "j", 0, "number of contexts compiled in parallel (0 uses GOMAXPROCS)")
	flag.StringVar(&dashc, "context", "", "only output this context (default: all contexts)")
	flag.StringVar(&dashf, "format", "render", "output format: "+strings.Join(formatList, ", "))
	flag.StringVar(&dashz, "compress", "", "compression for -format table: "+strings.Join(table.Algorithms, ", "))
	flag.StringVar(&dasho, "o", "-", "output file (or - for stdout)")
	flag.StringVar(&dashinput, "input", "", "file to tokenize with -format tokens (default: stdin)")
	flag.BoolVar(&dashstats, "stats", false, "print the size of each automaton")
	flag.StringVar(&dashload, "load", "", "tokenize with a table file written by -format table instead of a description")
}

func exitf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s [-format <format>] [-context <name>] [-o <output>] <description.yaml>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        compile the contexts of a token description\n")
	fmt.Fprintf(os.Stderr, "    %s -format tokens -context <name> [-input <file>] <description.yaml>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        split the input into tokens\n")
	fmt.Fprintf(os.Stderr, "    %s -load <table> [-input <file>]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        split the input into tokens with a compiled table\n")
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.PrintDefaults()
}

func output() (io.Writer, func()) {
	if dasho == "-" {
		w := bufio.NewWriter(os.Stdout)
		return w, func() {
			if err := w.Flush(); err != nil {
				exitf("writing output: %s", err)
			}
		}
	}
	f, err := os.Create(dasho)
	if err != nil {
		exitf("%s", err)
	}
	w := bufio.NewWriter(f)
	return w, func() {
		if err := w.Flush(); err != nil {
			exitf("writing %s: %s", dasho, err)
		}
		if err := f.Close(); err != nil {
			exitf("closing %s: %s", dasho, err)
		}
	}
}

func compile(fname string) map[string]*automaton.MinimalDfa[rune] {
	buf, err := os.ReadFile(fname)
	if err != nil {
		exitf("%s", err)
	}
	contexts, err := lexer.ParseDescription(buf)
	if err != nil {
		exitf("%s: %s", fname, err)
	}
	if dashc != "" {
		i := slices.IndexFunc(contexts, func(c lexer.Context[rune]) bool {
			return c.Name == dashc
		})
		if i < 0 {
			exitf("%s: no context %q", fname, dashc)
		}
		contexts = contexts[i : i+1]
	}
	conf := lexer.Config{Workers: dashj}
	if dashv {
		id := uuid.New().String()
		conf.Logf = func(f string, args ...interface{}) {
			logf("compile %s: "+f, append([]interface{}{id}, args...)...)
		}
	}
	all, err := lexer.CompileAll(contexts, conf)
	if err != nil {
		exitf("%s: %s", fname, err)
	}
	return all
}

func write(w io.Writer, name string, m *automaton.MinimalDfa[rune]) error {
	switch dashf {
	case "render":
		_, err := fmt.Fprintf(w, "# context %s\n%s\n", name, m)
		return err
	case "dot":
		return m.WriteDot(w, name, "context "+name)
	case "fingerprint":
		fp := m.Fingerprint()
		_, err := fmt.Fprintf(w, "%s %s\n", hex.EncodeToString(fp[:]), name)
		return err
	case "table":
		t := table.Build(m)
		var buf []byte
		if dashz == "" {
			buf = t.Encode(nil)
		} else {
			var err error
			buf, err = t.Compress(dashz, nil)
			if err != nil {
				return err
			}
		}
		if dashv {
			logf("context %s: %d states, %d classes, %d bytes", name, t.States(), t.Classes, len(buf))
		}
		_, err := w.Write(buf)
		return err
	}
	return fmt.Errorf("unknown format %q", dashf)
}

func tokens(w io.Writer, t *table.Table) error {
	var text []byte
	var err error
	if dashinput == "" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(dashinput)
	}
	if err != nil {
		return err
	}
	lx, err := lexer.Tokenize(t, string(text))
	for i := range lx {
		fmt.Fprintf(w, "%d\t%s\t%q\n", lx[i].Offset, lx[i].Token, lx[i].Text)
	}
	return err
}

func main() {
	flag.Parse()
	args := flag.Args()
	if dashload != "" && len(args) == 0 && !dashh {
		t, err := table.Load(dashload)
		if err != nil {
			exitf("%s", err)
		}
		w, done := output()
		defer done()
		if err := tokens(w, t); err != nil {
			done()
			exitf("%s", err)
		}
		return
	}
	if len(args) != 1 || dashh {
		usage()
		os.Exit(1)
	}
	if !slices.Contains(formatList, dashf) {
		exitf("unknown format %q", dashf)
	}
	if dashz != "" && dashf != "table" {
		exitf("-compress requires -format table")
	}
	if dashf == "table" && dashc == "" {
		exitf("-format table writes one context; use -context")
	}
	if dashf == "tokens" && dashc == "" {
		exitf("-format tokens requires -context")
	}

	all := compile(args[0])
	w, done := output()
	defer done()

	if dashstats {
		for _, name := range sortedKeys(all) {
			m := all[name]
			logf("context %s: %d states, %d symbols", name, m.Len(), m.Alphabet().Len())
		}
	}
	if dashf == "tokens" {
		if err := tokens(w, table.Build(all[dashc])); err != nil {
			done()
			exitf("%s", err)
		}
		return
	}
	for _, name := range sortedKeys(all) {
		if err := write(w, name, all[name]); err != nil {
			done()
			exitf("context %s: %s", name, err)
		}
	}
}

func sortedKeys(all map[string]*automaton.MinimalDfa[rune]) []string {
	keys := maps.Keys(all)
	slices.Sort(keys)
	return keys
}
