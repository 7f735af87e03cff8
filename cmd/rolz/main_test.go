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

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gorolz/rolz"
)

func TestOpenPathsDefaultsToStdio(t *testing.T) {
	in, out, closeFiles, err := openPaths(nil)
	defer closeFiles()

	require.NoError(t, err)
	require.Equal(t, os.Stdin, in)
	require.Equal(t, os.Stdout, out.direct)
	require.Empty(t, out.path)
}

func TestOpenPathsReadsInputFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("hello"), 0o644))

	in, out, closeFiles, err := openPaths([]string{inPath})
	defer closeFiles()

	require.NoError(t, err)
	require.Equal(t, os.Stdout, out.direct)

	require.NotNil(t, in)
	data, err := io.ReadAll(in)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestOpenPathsSetsOutputPath(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(inPath, nil, 0o644))

	_, out, closeFiles, err := openPaths([]string{inPath, outPath})
	defer closeFiles()

	require.NoError(t, err)
	require.Nil(t, out.direct)
	require.Equal(t, outPath, out.path)
}

func TestOpenPathsRejectsMissingInput(t *testing.T) {
	_, _, closeFiles, err := openPaths([]string{"/no/such/path"})
	defer closeFiles()

	require.Error(t, err)
}

func TestFinishMapsConfigErrorToExitCode(t *testing.T) {
	code := finish(rolz.Stat{}, &rolz.ConfigError{Reason: "bad level"}, newLogger(true))
	require.Equal(t, errConfig, code)
}

func TestFinishMapsInvalidDataErrorToExitCode(t *testing.T) {
	code := finish(rolz.Stat{}, &rolz.InvalidDataError{Reason: "truncated"}, newLogger(true))
	require.Equal(t, errInvalid, code)
}

func TestFinishMapsGenericErrorToIOExitCode(t *testing.T) {
	code := finish(rolz.Stat{}, os.ErrClosed, newLogger(true))
	require.Equal(t, errIO, code)
}

func TestFinishReturnsZeroOnSuccess(t *testing.T) {
	code := finish(rolz.Stat{SourceSize: 10, TargetSize: 4}, nil, newLogger(true))
	require.Equal(t, 0, code)
}

func TestRunPipeWritesToRequestedFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.bin")

	code := runPipe(outTarget{path: outPath}, func(w io.Writer) (rolz.Stat, error) {
		n, err := w.Write([]byte("payload"))
		return rolz.Stat{SourceSize: int64(n)}, err
	}, newLogger(true))

	require.Equal(t, 0, code)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)
}

func TestRunPipeWritesDirectlyToStdoutTarget(t *testing.T) {
	var buf bytes.Buffer

	code := runPipe(outTarget{direct: &buf}, func(w io.Writer) (rolz.Stat, error) {
		n, err := w.Write([]byte("direct"))
		return rolz.Stat{SourceSize: int64(n)}, err
	}, newLogger(true))

	require.Equal(t, 0, code)
	require.Equal(t, "direct", buf.String())
}
