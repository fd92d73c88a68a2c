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
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/SnellerInc/lexgen/automaton"

	"golang.org/x/exp/constraints"
)

// Config controls CompileAll.
type Config struct {
	// Workers is the number of contexts compiled
	// concurrently. If it is zero or negative,
	// runtime.GOMAXPROCS(0) is used.
	Workers int
	// Logf, if non-nil, is a callback used for logging
	// the progress of the compilation.
	Logf func(f string, args ...interface{})
}

func (c *Config) logf(f string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(f, args...)
	}
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// compilePool compiles contexts on a fixed
// number of goroutines. Workers share nothing
// but the result map and the first error.
type compilePool[T constraints.Integer] struct {
	conf     *Config
	wg       sync.WaitGroup
	requests chan *Context[T]

	lock    sync.Mutex
	err     error
	results map[string]*automaton.MinimalDfa[T]
}

func newCompilePool[T constraints.Integer](conf *Config, n int) *compilePool[T] {
	p := &compilePool[T]{
		conf:     conf,
		requests: make(chan *Context[T]),
		results:  make(map[string]*automaton.MinimalDfa[T]),
	}
	workers := conf.workers()
	if workers > n {
		workers = n
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *compilePool[T]) worker(id int) {
	defer p.wg.Done()
	for ctx := range p.requests {
		if p.failed() {
			continue
		}
		start := time.Now()
		m, err := Compile(ctx)
		if err != nil {
			p.fail(err)
			continue
		}
		p.conf.logf("worker %d: context %s: %d tokens -> %d states, %d symbols (%s)",
			id, ctx.Name, len(ctx.Tokens), m.Len(), m.Alphabet().Len(), time.Since(start))
		p.lock.Lock()
		p.results[ctx.Name] = m
		p.lock.Unlock()
	}
}

func (p *compilePool[T]) failed() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.err != nil
}

func (p *compilePool[T]) fail(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func (p *compilePool[T]) wait() (map[string]*automaton.MinimalDfa[T], error) {
	close(p.requests)
	p.wg.Wait()
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

// CompileAll compiles every context concurrently and
// returns the automata keyed by context name. The first
// error encountered stops the compilation of the
// contexts that have not started yet.
func CompileAll[T constraints.Integer](contexts []Context[T], conf Config) (map[string]*automaton.MinimalDfa[T], error) {
	seen := make(map[string]bool, len(contexts))
	for i := range contexts {
		if seen[contexts[i].Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateContext, contexts[i].Name)
		}
		seen[contexts[i].Name] = true
	}
	if len(contexts) == 0 {
		return map[string]*automaton.MinimalDfa[T]{}, nil
	}
	start := time.Now()
	p := newCompilePool[T](&conf, len(contexts))
	for i := range contexts {
		p.requests <- &contexts[i]
	}
	results, err := p.wait()
	if err != nil {
		return nil, err
	}
	conf.logf("compiled %d contexts in %s", len(results), time.Since(start))
	return results, nil
}
