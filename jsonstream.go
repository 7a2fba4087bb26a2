// Copyright 2024 The jsonstream Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Program jsonstream parses a JSON document as a stream of events, displays
// errors, and writes something related to the input on output.
//
// Usage: jsonstream [--format FORMAT] [--max-depth N] [--max-buffer N] [FILE]
//
// The document is read from FILE, or from standard input when no FILE is
// given.  The input buffer is bounded by --max-buffer and the input is never
// materialized as a tree; the "events" format keeps the whole event list in
// memory before dumping it.
//
// FORMAT, which defaults to "compact", specifies the output to produce.
// Use "jsonstream --help" for the list of available formats.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/openjson/jsonstream/pkg/jsonstream"
	"github.com/pborman/getopt"
)

// Each format must register a formatter with register.  The function f is
// called once with the event source for the input document; the errors it
// returns are reported on standard error.
type formatter struct {
	name string
	f    func(io.Writer, *jsonstream.ReaderParser) []error
	help string
}

var formatters = map[string]*formatter{}

func register(f *formatter) {
	formatters[f.name] = f
}

// exitIfError writes errs to standard error and exits with an exit status of
// 1.  If errs is empty then exitIfError does nothing and simply returns.
func exitIfError(errs []error) {
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		stop(1)
	}
}

var stop = os.Exit

func main() {
	var format string
	formats := make([]string, 0, len(formatters))
	for k := range formatters {
		formats = append(formats, k)
	}
	sort.Strings(formats)

	var help bool
	var transcode bool
	maxDepth := 65536
	maxBuffer := 16 << 20
	getopt.StringVarLong(&format, "format", 0, "format to display: "+strings.Join(formats, ", "), "FORMAT")
	getopt.IntVarLong(&maxDepth, "max-depth", 0, "maximum nesting depth accepted", "N")
	getopt.IntVarLong(&maxBuffer, "max-buffer", 0, "maximum input buffer size in bytes", "N")
	getopt.BoolVarLong(&transcode, "transcode", 0, "transcode UTF-16 input with a BOM to UTF-8")
	getopt.BoolVarLong(&help, "help", '?', "display help")
	getopt.SetParameters("[FILE]")

	if err := getopt.Getopt(nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if help {
		getopt.CommandLine.PrintUsage(os.Stderr)
		fmt.Fprintf(os.Stderr, `
FILE is a JSON document; standard input is parsed if FILE is missing.

Formats:
`)
		for _, fn := range formats {
			f := formatters[fn]
			fmt.Fprintf(os.Stderr, "    %s - %s\n", f.name, f.help)
		}
		stop(0)
	}

	if format == "" {
		format = "compact"
	}
	fmtr, ok := formatters[format]
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: invalid format.  Choices are %s\n", format, strings.Join(formats, ", "))
		stop(1)
	}

	var in io.Reader = os.Stdin
	if args := getopt.Args(); len(args) > 0 {
		fp, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			stop(1)
		}
		defer fp.Close()
		in = fp
	}

	opts := []jsonstream.Option{
		jsonstream.WithMaxStackSize(maxDepth),
		jsonstream.WithMaxBufferSize(maxBuffer),
	}
	if transcode {
		opts = append(opts, jsonstream.WithEncodingDetection())
	}

	exitIfError(fmtr.f(os.Stdout, jsonstream.NewReaderParser(in, opts...)))
}
