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

package jsonstream

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Documents that must parse without error and re-serialize to a fixpoint:
// parsing the serialization and serializing again must reproduce it.
var validDocuments = []string{
	`"simple"`,
	`""`,
	`0`,
	`-0`,
	`123e65`,
	`0e+1`,
	`0e1`,
	`-0.000000000000000000000000000000000000000000000000000000000000000000000000000001`,
	`1.5e+9999`, // huge exponents are lexical text, never interpreted
	`-237462374673276894279832749832423479823246327846`,
	`null`,
	`true`,
	`false`,
	`[]`,
	`[""]`,
	`["a"]`,
	`[1,null,null,null,2]`,
	`[0.1e2, 1e1, 3.141569, 10000000000000e-10]`,
	` [] `,
	`{}`,
	`{"":0}`,
	`{"foo bar": 42}`,
	`{"a":[]}`,
	`{"x":[{"id": "xxxx", "key": 0.0001}]}`,
	`{"a": "b", "a": "c"}`, // duplicate keys are not detected, by design
	`["a"]`,
	`["𐐷"]`,
	`["ģ䕧覫췯ꯍ"]`,
	`["\"\\\/\b\f\n\r\t"]`,
	`["asd "]`,
	"[\"new\\u00A0line\"]",
	"[\"ก้๑\"]",
	"\xef\xbb\xbf{}",
	strings.Repeat("[", 500) + strings.Repeat("]", 500),
	`{"title":"Полтора"}`,
}

// Documents that must report at least one syntax error.
var invalidDocuments = []string{
	``,
	`[1,]`,
	`["a",]`,
	`[1 2]`,
	`[,1]`,
	`[1,,2]`,
	`["": 1]`,
	`{1:1}`,
	`{null:null}`,
	`{"a":"b",,"c":"d"}`,
	`{"a" "b"}`,
	`{"a": "b", "c"}`,
	`{"a":}`,
	`[tru]`,
	`[nulx]`,
	`[+1]`,
	`[01]`,
	`[-01]`,
	`[.2]`,
	`[1.]`,
	`[2.e3]`,
	`[0e]`,
	`[0e+]`,
	`[1eE2]`,
	`[-]`,
	`[ha]`,
	"[\"\x00\"]", // a raw NUL byte inside a string
	`["\uD800"]`,
	`["\uD800abc"]`,
	`["\uDd1e\ud834"]`, // inverted surrogate pair
	"[\"\x1f\"]",
	`["a`,
	`[`,
	`{`,
	`{"a"`,
	`}`,
	`]`,
	`[}`,
	`{]`,
	`1 2`,
	`{} {}`,
	`nulll`,
}

// parseCompact parses doc in recovery mode and returns the compact
// serialization of the surviving events plus the number of syntax errors.
func parseCompact(t *testing.T, doc string) (string, int) {
	t.Helper()
	events, errs := parseAll(t, doc)

	var sb strings.Builder
	out := NewWriterSerializer(&sb)
	depth := 0
	for _, ev := range events {
		if ev.Kind == EventEof {
			break
		}
		if err := out.SerializeEvent(ev); err != nil {
			// Recovery output of a broken document; nothing more to check.
			return "", len(errs)
		}
		switch ev.Kind {
		case EventStartArray, EventStartObject:
			depth++
		case EventEndArray, EventEndObject:
			depth--
		}
	}
	for ; depth > 0; depth-- {
		if err := out.SerializeEvent(EndArray); err != nil {
			return "", len(errs)
		}
	}
	if err := out.Finish(); err != nil {
		return "", len(errs)
	}
	return sb.String(), len(errs)
}

func TestSuiteValid(t *testing.T) {
	for _, doc := range validDocuments {
		name := doc
		if len(name) > 40 {
			name = name[:40] + "..."
		}
		t.Run(name, func(t *testing.T) {
			first, errs := parseCompact(t, doc)
			if errs != 0 {
				t.Fatalf("%d errors parsing a valid document", errs)
			}

			// One pass through the codec must reach a fixpoint.
			events, _ := parseAll(t, first)
			second, errs := parseCompact(t, first)
			if errs != 0 {
				t.Fatalf("%d errors reparsing the serialization %q", errs, first)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("serialization is not a fixpoint (-first +second):\n%s\nevents: %v", diff, events)
			}
		})
	}
}

func TestSuiteInvalid(t *testing.T) {
	for _, doc := range invalidDocuments {
		name := doc
		if name == "" {
			name = "(empty)"
		}
		t.Run(name, func(t *testing.T) {
			if _, errs := parseCompact(t, doc); errs == 0 {
				t.Error("no error reported for an invalid document")
			}
		})
	}
}
