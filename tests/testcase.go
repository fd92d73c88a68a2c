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

package tests

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

var sepdash = []byte("---")

// Spec is the content of a test case file.
type Spec struct {
	// Sections are the parts of the file separated
	// by `---`, each a list of non-empty lines.
	Sections [][]string
	// Tags are the `## key: value` lines; keys
	// are lowercased.
	Tags map[string]string
}

// ReadSpec reads parts of a text separated by `---`.
//
// Empty lines and lines starting with `#` are skipped;
// lines of the form `## key: value` become tags.
// Leading spaces are kept so sections may hold YAML.
func ReadSpec(r io.Reader) (*Spec, error) {
	rd := bufio.NewScanner(r)
	spec := &Spec{
		Sections: [][]string{{}},
		Tags:     make(map[string]string),
	}
	partID := 0
	for rd.Scan() {
		line := rd.Bytes()
		if bytes.HasPrefix(line, sepdash) {
			partID++
			spec.Sections = append(spec.Sections, []string{})
			continue
		}
		if bytes.HasPrefix(line, []byte("##")) {
			if k, v, ok := strings.Cut(string(line[2:]), ":"); ok {
				spec.Tags[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
			}
			continue
		}
		// allow # line comments iff they begin the line
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		spec.Sections[partID] = append(spec.Sections[partID], string(line))
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return spec, nil
}

// ParseTestcase reads the file fname with ReadSpec.
func ParseTestcase(fname string) (*Spec, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSpec(f)
}
