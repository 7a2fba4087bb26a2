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
	"io"

	"github.com/openconfig/gnmi/errlist"
	"github.com/openjson/jsonstream/pkg/jsonstream"
)

func init() {
	register(&formatter{
		name: "check",
		f:    doCheck,
		help: "validate the document, reporting every syntax error found",
	})
}

// doCheck parses the whole document without producing output.  It does not
// stop at the first problem: the parser's recovery mode is used to collect
// every syntax error in the input.
func doCheck(w io.Writer, p *jsonstream.ReaderParser) []error {
	var errs errlist.List
	for {
		ev, err := p.NextEvent()
		if err != nil {
			errs.Add(err)
			if !recoverable(err) {
				break
			}
			continue
		}
		if ev.Kind == jsonstream.EventEof {
			break
		}
	}
	if err := errs.Err(); err != nil {
		return []error{err}
	}
	return nil
}
