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

// Command rolz is a lossless byte-stream compressor/decompressor built
// around a reduced-offset Lempel-Ziv match finder.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/gorolz/rolz"
	"github.com/gorolz/rolz/internal/progress"
)

const (
	errIO       = 1
	errInvalid  = 2
	errConfig   = 3
	defaultLvl  = 2
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(errConfig)
	}

	var status int

	switch os.Args[1] {
	case "encode":
		status = runEncode(os.Args[2:])
	case "decode":
		status = runDecode(os.Args[2:])
	case "-h", "--help":
		usage()
		status = 0
	default:
		fmt.Fprintf(os.Stderr, "rolz: unknown subcommand %q\n", os.Args[1])
		usage()
		status = errConfig
	}

	os.Exit(status)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: rolz encode [-s] [-l 0|1|2] [input_path] [output_path]")
	fmt.Fprintln(os.Stderr, "       rolz decode [-s] [input_path] [output_path]")
}

func runEncode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	silent := fs.BoolP("silent", "s", false, "suppress progress reporting")
	level := fs.IntP("level", "l", defaultLvl, "compression level (0, 1 or 2)")

	if err := fs.Parse(args); err != nil {
		return errConfig
	}

	in, out, closeFiles, err := openPaths(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "rolz: %v\n", err)
		return errIO
	}
	defer closeFiles()

	logger := newLogger(*silent)
	logger.SetEncode(true)

	return runPipe(out, func(w io.Writer) (rolz.Stat, error) {
		return rolz.Encode(rolz.Config{Level: *level}, in, w, listenerFunc(logger))
	}, logger)
}

func runDecode(args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	silent := fs.BoolP("silent", "s", false, "suppress progress reporting")

	if err := fs.Parse(args); err != nil {
		return errConfig
	}

	in, out, closeFiles, err := openPaths(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "rolz: %v\n", err)
		return errIO
	}
	defer closeFiles()

	logger := newLogger(*silent)
	logger.SetEncode(false)

	return runPipe(out, func(w io.Writer) (rolz.Stat, error) {
		return rolz.Decode(in, w, listenerFunc(logger))
	}, logger)
}

func newLogger(silent bool) progress.Logger {
	if silent {
		return progress.SilentLogger{}
	}
	return progress.NewPeriodicLogger(os.Stderr)
}

// listenerFunc adapts a progress.Logger into a rolz.Listener, the only
// channel through which the core reports on its own progress.
func listenerFunc(logger progress.Logger) rolz.Listener {
	return &coreListener{logger: logger}
}

type coreListener struct {
	logger      progress.Logger
	inputBytes  int64
	outputBytes int64
}

func (this *coreListener) ProcessEvent(evt *rolz.Event) {
	switch evt.Type() {
	case rolz.EVT_BLOCK_INFO:
		this.inputBytes += evt.Size()
		this.logger.Log(this.inputBytes, this.outputBytes)
	case rolz.EVT_VERSION_MISMATCH:
		fmt.Fprintf(os.Stderr, "rolz: warning: %s\n", evt.String())
	}
}

// outTarget distinguishes a requested output path (written atomically)
// from stdout (written directly, nothing to make atomic).
type outTarget struct {
	path   string
	direct io.Writer
}

// runPipe bridges an Encode/Decode call, which writes to an io.Writer as
// it goes, to atomic.WriteFile, which wants a finished io.Reader. The
// core runs in its own goroutine writing into a pipe; the main goroutine
// either streams the pipe straight to stdout or hands it to
// atomic.WriteFile, which only replaces the destination file once the
// core's goroutine has closed the pipe without error.
func runPipe(out outTarget, run func(io.Writer) (rolz.Stat, error), logger progress.Logger) int {
	if out.direct != nil {
		stat, err := run(out.direct)
		return finish(stat, err, logger)
	}

	pr, pw := io.Pipe()
	statCh := make(chan rolz.Stat, 1)
	errCh := make(chan error, 1)

	go func() {
		stat, err := run(pw)
		statCh <- stat
		errCh <- err
		pw.CloseWithError(err)
	}()

	writeErr := atomic.WriteFile(out.path, pr)
	stat := <-statCh
	runErr := <-errCh

	if runErr != nil {
		return finish(stat, runErr, logger)
	}
	return finish(stat, writeErr, logger)
}

func finish(stat rolz.Stat, err error, logger progress.Logger) int {
	if err != nil {
		var cfgErr *rolz.ConfigError
		var dataErr *rolz.InvalidDataError

		switch {
		case errors.As(err, &cfgErr):
			fmt.Fprintf(os.Stderr, "rolz: %v\n", err)
			return errConfig
		case errors.As(err, &dataErr):
			fmt.Fprintf(os.Stderr, "rolz: %v\n", err)
			return errInvalid
		default:
			fmt.Fprintf(os.Stderr, "rolz: %v\n", err)
			return errIO
		}
	}

	logger.Finish(stat.SourceSize, stat.TargetSize)
	return 0
}

func openPaths(positional []string) (io.Reader, outTarget, func(), error) {
	var in io.Reader = os.Stdin
	out := outTarget{direct: os.Stdout}
	closers := make([]io.Closer, 0, 2)

	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	if len(positional) >= 1 && positional[0] != "" && positional[0] != "-" {
		f, err := os.Open(positional[0])
		if err != nil {
			return nil, outTarget{}, closeAll, err
		}
		closers = append(closers, f)
		in = f
	}

	if len(positional) >= 2 && positional[1] != "" && positional[1] != "-" {
		out = outTarget{path: positional[1]}
	}

	return in, out, closeAll, nil
}
