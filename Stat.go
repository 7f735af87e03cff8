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

// Stat reports the cumulative bytes an Encode or Decode call has moved,
// always expressed in terms of the uncompressed stream regardless of
// direction: SourceSize is the uncompressed byte count, TargetSize is
// the compressed byte count (including the version tag and every
// chunk-length prefix).
type Stat struct {
	SourceSize int64
	TargetSize int64
}
