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

package main

import (
	"bufio"
	"io"

	"github.com/openjson/jsonstream/pkg/jsonstream"
)

func init() {
	register(&formatter{
		name: "compact",
		f:    doCompact,
		help: "re-serialize the document without insignificant whitespace",
	})
}

// doCompact streams the input back out in compact form.  Recoverable syntax
// errors are collected and reported but the re-serialized document is still
// produced from the surviving events.  If the serializer rejects one of those
// events, doCompact stops there without flushing its buffered output.
func doCompact(w io.Writer, p *jsonstream.ReaderParser) []error {
	var errs []error
	bw := bufio.NewWriter(w)
	out := jsonstream.NewWriterSerializer(bw)
	for {
		ev, err := p.NextEvent()
		if err != nil {
			errs = append(errs, err)
			if !recoverable(err) {
				return errs
			}
			continue
		}
		if ev.Kind == jsonstream.EventEof {
			break
		}
		if err := out.SerializeEvent(ev); err != nil {
			errs = append(errs, err)
			return errs
		}
	}
	if err := out.Finish(); err != nil {
		errs = append(errs, err)
	}
	if err := bw.Flush(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// recoverable reports whether the parser can keep producing events after err.
func recoverable(err error) bool {
	_, ok := err.(*jsonstream.SyntaxError)
	return ok
}
