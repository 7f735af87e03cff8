/*
Copyright 2011-2025 Frederic Langlet
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

package lz

import (
	"github.com/gorolz/rolz/matchfinder"
	"github.com/gorolz/rolz/symrank"
)

// roidEnc maps a reduced offset (0..BucketSize) to the offset class it
// falls in, that class's extra-bit width, and the extra bits identifying
// its position within the class.
type roidEnc struct {
	class    uint8
	bitLen   uint8
	restBits uint16
}

// roidDec maps an offset class back to the first reduced offset it covers
// and its extra-bit width.
type roidDec struct {
	base   uint16
	bitLen uint8
}

var (
	roidEncoding [matchfinder.BucketSize]roidEnc
	roidDecoding [symrank.RoidSize]roidDec
)

// extraBitLen grows every two classes: class 0 and 1 cover a single
// offset each, 2 and 3 cover two, 4 and 5 cover four, and so on, so a
// recently-touched bucket slot costs almost nothing to address while far
// slots cost progressively more bits.
func extraBitLen(class int) int {
	return class / 2
}

func init() {
	base := 0
	class := 0

	for base < matchfinder.BucketSize {
		bitLen := extraBitLen(class)

		for restBits := 0; restBits < (1 << bitLen); restBits++ {
			if base >= matchfinder.BucketSize {
				break
			}

			roidEncoding[base] = roidEnc{class: uint8(class), bitLen: uint8(bitLen), restBits: uint16(restBits)}
			base++
		}

		class++
	}

	base = 0
	class = 0

	for base < matchfinder.BucketSize && class < symrank.RoidSize {
		bitLen := extraBitLen(class)
		roidDecoding[class] = roidDec{base: uint16(base), bitLen: uint8(bitLen)}
		class++
		base += 1 << bitLen
	}
}
