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
package table

import (
	"bytes"
	"fmt"
)

// zstd frame magic number
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Sniff returns the algorithm a buffer produced by
// Encode or Compress was written with: "" for a raw
// encoding, "zstd" or "s2".
func Sniff(src []byte) string {
	switch {
	case bytes.HasPrefix(src, []byte(magic)):
		return ""
	case bytes.HasPrefix(src, zstdMagic):
		return "zstd"
	}
	return "s2"
}

// Parse decodes src whatever its compression.
func Parse(src []byte) (*Table, error) {
	algo := Sniff(src)
	if algo == "" {
		return Decode(src)
	}
	return Decompress(algo, src)
}

// Load reads a table file written with Encode
// or Compress.
func Load(fname string) (*Table, error) {
	mem, release, err := mapFile(fname)
	if err != nil {
		return nil, err
	}
	defer release()
	t, err := Parse(mem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return t, nil
}
