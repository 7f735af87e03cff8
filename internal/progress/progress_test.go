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

package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSilentLoggerProducesNoOutput(t *testing.T) {
	var l SilentLogger
	l.SetEncode(true)
	l.Log(100, 10)
	l.Finish(100, 10)
	// SilentLogger has no writer to assert against; this only verifies
	// the methods are safe to call with a zero value.
}

func TestPeriodicLoggerLogsEncodeDirection(t *testing.T) {
	var buf bytes.Buffer
	l := NewPeriodicLogger(&buf)
	l.SetEncode(true)

	l.Log(1000, 400)

	out := buf.String()
	require.Contains(t, out, "encode:")
	require.Contains(t, out, "1000 bytes => 400 bytes")
}

func TestPeriodicLoggerLogsDecodeDirection(t *testing.T) {
	var buf bytes.Buffer
	l := NewPeriodicLogger(&buf)
	l.SetEncode(false)

	l.Log(1000, 400)

	out := buf.String()
	require.Contains(t, out, "decode:")
	require.Contains(t, out, "400 bytes <= 1000 bytes")
}

func TestPeriodicLoggerFinishReportsRatio(t *testing.T) {
	var buf bytes.Buffer
	l := NewPeriodicLogger(&buf)
	l.SetEncode(true)

	l.Finish(1000, 250)

	out := buf.String()
	require.True(t, strings.Contains(out, "statistics:"))
	require.Contains(t, out, "1000 bytes => 250 bytes")
	require.Contains(t, out, "ratio: 25.00%")
}

func TestPeriodicLoggerFinishHandlesZeroBytes(t *testing.T) {
	var buf bytes.Buffer
	l := NewPeriodicLogger(&buf)
	l.SetEncode(true)

	require.NotPanics(t, func() { l.Finish(0, 0) })
	require.Contains(t, buf.String(), "ratio: 0.00%")
}
