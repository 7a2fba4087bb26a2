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
	"fmt"
	"strings"
)

// A Kind identifies the kind of an Event.
type Kind int

const (
	// EventNone is the zero Kind.  Parser.NextEvent returns an EventNone
	// event when it needs more input before it can produce anything.
	EventNone Kind = iota
	EventString
	EventNumber
	EventBoolean
	EventNull
	EventStartArray
	EventEndArray
	EventStartObject
	EventEndObject
	EventObjectKey
	// EventEof terminates every event stream, exactly once.
	EventEof
)

// String returns k as a string.
func (k Kind) String() string {
	switch k {
	case EventNone:
		return "None"
	case EventString:
		return "String"
	case EventNumber:
		return "Number"
	case EventBoolean:
		return "Boolean"
	case EventNull:
		return "Null"
	case EventStartArray:
		return "StartArray"
	case EventEndArray:
		return "EndArray"
	case EventStartObject:
		return "StartObject"
	case EventEndObject:
		return "EndObject"
	case EventObjectKey:
		return "ObjectKey"
	case EventEof:
		return "Eof"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// An Event is one structural or value signal of a JSON document.  Events are
// produced by parsers in strict document order and consumed by serializers.
//
// Value holds the payload of String, ObjectKey (the decoded text) and Number
// (the lexical text, e.g. "-1.2e3").  Bool holds the payload of Boolean.
//
// A Value produced by a parser may alias the parser's input buffer and is
// only valid until the next call on that parser.  Use Clone to retain an
// event for longer.
type Event struct {
	Kind  Kind
	Value string
	Bool  bool
}

// Convenience constructors for the payload-carrying events.

func String(s string) Event    { return Event{Kind: EventString, Value: s} }
func Number(s string) Event    { return Event{Kind: EventNumber, Value: s} }
func Boolean(b bool) Event     { return Event{Kind: EventBoolean, Bool: b} }
func ObjectKey(s string) Event { return Event{Kind: EventObjectKey, Value: s} }

// The payload-free events.
var (
	Null        = Event{Kind: EventNull}
	StartArray  = Event{Kind: EventStartArray}
	EndArray    = Event{Kind: EventEndArray}
	StartObject = Event{Kind: EventStartObject}
	EndObject   = Event{Kind: EventEndObject}
	Eof         = Event{Kind: EventEof}
)

// Clone returns a copy of e whose payload does not alias any parser buffer.
func (e Event) Clone() Event {
	e.Value = strings.Clone(e.Value)
	return e
}

// String returns e in a form suitable for diagnostics, e.g. `ObjectKey("foo")`.
func (e Event) String() string {
	switch e.Kind {
	case EventString, EventNumber, EventObjectKey:
		return fmt.Sprintf("%v(%q)", e.Kind, e.Value)
	case EventBoolean:
		return fmt.Sprintf("%v(%t)", e.Kind, e.Bool)
	}
	return e.Kind.String()
}
