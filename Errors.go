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

package rolz

import "fmt"

// InvalidDataError reports a fatal decode failure: a chunk length beyond
// scratch capacity, a symbol or roid class outside its alphabet, an
// item count beyond the chunk cap, or a match whose source lies outside
// the reconstructed region or whose copy would run past the block buffer. Decoding halts immediately
// when this error is returned.
type InvalidDataError struct {
	Reason string
}

func (this *InvalidDataError) Error() string {
	return fmt.Sprintf("rolz: invalid data: %s", this.Reason)
}

// InvalidVersionError describes a stream whose version tag does not
// match this decoder, or is not valid UTF-8 up to its terminating NUL.
// It is never returned by Decode as a failure; the mismatch is only
// reported to the Listeners passed to Decode, and decoding proceeds.
type InvalidVersionError struct {
	Got string
}

func (this *InvalidVersionError) Error() string {
	return fmt.Sprintf("rolz: stream version %q does not match this decoder (%q)", this.Got, Version)
}

// ConfigError reports an invalid Config, raised before any I/O.
type ConfigError struct {
	Reason string
}

func (this *ConfigError) Error() string {
	return fmt.Sprintf("rolz: invalid configuration: %s", this.Reason)
}
