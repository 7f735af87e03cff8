/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package rolz implements a lossless byte-stream compressor/decompressor
// built around a reduced-offset Lempel-Ziv match finder, a
// context-conditioned symbol-rank transform and a canonical Huffman
// backend.
//
// The layered implementation lives in sub-packages: bitstream (the bit
// accumulator), huffman (length-limited canonical codes), symrank (the
// adaptive permutation coder), matchfinder (the per-context bucket
// search) and lz (the encoder/decoder driver that ties them together
// one chunk at a time). This package frames chunks into blocks and
// blocks into a versioned stream.
package rolz

// Exit codes returned by cmd/rolz on failure.
const (
	ERR_IO_ERROR     = 1
	ERR_INVALID_DATA = 2
	ERR_CONFIG       = 3
)
