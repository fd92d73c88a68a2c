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
	"fmt"
	"runtime"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

var zstdDecoder *zstd.Decoder

func init() {
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
}

// Algorithms lists the names accepted by
// Compress and Decompress.
var Algorithms = []string{"zstd", "zstd-better", "s2"}

// Compress appends the compressed encoding of t to dst.
// algo is one of Algorithms.
func (t *Table) Compress(algo string, dst []byte) ([]byte, error) {
	raw := t.Encode(nil)
	switch algo {
	case "zstd", "zstd-better":
		level := zstd.SpeedDefault
		if algo == "zstd-better" {
			level = zstd.SpeedBetterCompression
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, dst), nil
	case "s2":
		return append(dst, s2.Encode(nil, raw)...), nil
	}
	return nil, fmt.Errorf("table: unknown compression %q", algo)
}

// Decompress decodes a table produced by Compress
// with the same algorithm.
func Decompress(algo string, src []byte) (*Table, error) {
	var raw []byte
	var err error
	switch algo {
	case "zstd", "zstd-better":
		raw, err = zstdDecoder.DecodeAll(src, nil)
	case "s2":
		raw, err = s2.Decode(nil, src)
	default:
		return nil, fmt.Errorf("table: unknown compression %q", algo)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadTable, algo, err)
	}
	return Decode(raw)
}
