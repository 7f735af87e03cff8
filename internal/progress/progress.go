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

// Package progress reports the running byte counts of an Encode or
// Decode call to a diagnostic stream. It knows nothing about rolz
// itself; cmd/rolz drives a Logger from rolz.Listener events.
package progress

import (
	"fmt"
	"io"
	"time"
)

// Logger receives a running total of bytes moved in both directions and
// a final summary. num_input_bytes and num_output_bytes are always the
// uncompressed and compressed totals respectively, regardless of
// direction; SetEncode tells the logger which one to call "input".
type Logger interface {
	SetEncode(isEncode bool)
	Log(numInputBytes, numOutputBytes int64)
	Finish(numInputBytes, numOutputBytes int64)
}

// SilentLogger discards everything; it backs the CLI's --silent flag.
type SilentLogger struct{}

func (SilentLogger) SetEncode(bool)                             {}
func (SilentLogger) Log(numInputBytes, numOutputBytes int64)    {}
func (SilentLogger) Finish(numInputBytes, numOutputBytes int64) {}

// PeriodicLogger writes one line per Log call plus a final summary to
// w, mirroring the pace at which cmd/rolz calls it: once per completed
// block.
type PeriodicLogger struct {
	w         io.Writer
	isEncode  bool
	startTime time.Time
	lastTime  time.Time

	curInputBytes  int64
	curOutputBytes int64
}

// NewPeriodicLogger creates a PeriodicLogger that writes to w. The clock
// starts running immediately, since the caller is expected to create it
// right before beginning Encode or Decode.
func NewPeriodicLogger(w io.Writer) *PeriodicLogger {
	now := time.Now()
	return &PeriodicLogger{w: w, startTime: now, lastTime: now}
}

func (this *PeriodicLogger) SetEncode(isEncode bool) {
	this.isEncode = isEncode
}

// Log reports the incremental throughput since the previous Log or
// Finish call.
func (this *PeriodicLogger) Log(numInputBytes, numOutputBytes int64) {
	now := time.Now()
	elapsed := now.Sub(this.lastTime).Seconds()

	ib := numInputBytes - this.curInputBytes
	ob := numOutputBytes - this.curOutputBytes

	if elapsed <= 0 {
		elapsed = 1e-9
	}

	if this.isEncode {
		mbps := float64(ib) / (1024 * 1024) / elapsed
		fmt.Fprintf(this.w, "encode: %d bytes => %d bytes, %.3f MB/s\n", ib, ob, mbps)
	} else {
		mbps := float64(ob) / (1024 * 1024) / elapsed
		fmt.Fprintf(this.w, "decode: %d bytes <= %d bytes, %.3f MB/s\n", ob, ib, mbps)
	}

	this.curInputBytes = numInputBytes
	this.curOutputBytes = numOutputBytes
	this.lastTime = now
}

// Finish prints the final ratio/speed/time summary. numInputBytes and
// numOutputBytes are the grand totals, not a delta.
func (this *PeriodicLogger) Finish(numInputBytes, numOutputBytes int64) {
	this.curInputBytes = numInputBytes
	this.curOutputBytes = numOutputBytes
	this.lastTime = time.Now()

	elapsed := this.lastTime.Sub(this.startTime).Seconds()
	if elapsed <= 0 {
		elapsed = 1e-9
	}

	ib, ob := this.curInputBytes, this.curOutputBytes

	var ratio, mbps float64
	if this.isEncode {
		if ib > 0 {
			ratio = float64(ob) * 100 / float64(ib)
		}
		mbps = float64(ib) / (1024 * 1024) / elapsed
	} else {
		if ob > 0 {
			ratio = float64(ib) * 100 / float64(ob)
		}
		mbps = float64(ob) / (1024 * 1024) / elapsed
	}

	fmt.Fprintln(this.w, "statistics:")
	if this.isEncode {
		fmt.Fprintf(this.w, "  size:  %d bytes => %d bytes\n", ib, ob)
	} else {
		fmt.Fprintf(this.w, "  size:  %d bytes <= %d bytes\n", ob, ib)
	}
	fmt.Fprintf(this.w, "  ratio: %.2f%%\n", ratio)
	fmt.Fprintf(this.w, "  speed: %.3f MB/s\n", mbps)
	fmt.Fprintf(this.w, "  time:  %.3f sec\n", elapsed)
}
