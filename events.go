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

	"github.com/alecthomas/repr"
	"github.com/openjson/jsonstream/pkg/jsonstream"
)

func init() {
	register(&formatter{
		name: "events",
		f:    doEvents,
		help: "dump the parsed event stream",
	})
}

// doEvents dumps every event of the document.  Payloads are cloned because
// the dump outlives the parser calls that produced them.
func doEvents(w io.Writer, p *jsonstream.ReaderParser) []error {
	var errs []error
	var events []jsonstream.Event
	for {
		ev, err := p.NextEvent()
		if err != nil {
			errs = append(errs, err)
			if !recoverable(err) {
				break
			}
			continue
		}
		events = append(events, ev.Clone())
		if ev.Kind == jsonstream.EventEof {
			break
		}
	}
	repr.New(w, repr.Indent("  ")).Println(events)
	return errs
}
