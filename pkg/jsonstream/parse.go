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

// This file implements the structural state machine that turns the lexer's
// token stream into events.  The machine keeps a stack with one entry per
// open container; the entry is rewritten in place as the container
// progresses (key -> colon -> value -> comma), so the stack depth always
// equals the nesting depth.
//
// The machine is error tolerant: it reports at most one syntax error per
// call and then continues from the most plausible successor state, so a
// caller that ignores errors still receives a balanced event stream.  When a
// recovery step produces both an error and an event (a trailing comma
// closing a container, say), the event is held in a single pending slot and
// returned by the next call.

// A state is a marker of what token class the innermost open container
// expects next.
type state byte

const (
	stateObjectKeyOrEnd   state = iota // just after '{'
	stateObjectKey                     // after ',' in an object
	stateObjectColon                   // after a key
	stateObjectValue                   // after ':'
	stateObjectCommaOrEnd              // after a member value
	stateArrayValueOrEnd               // just after '['
	stateArrayValue                    // after ',' in an array
	stateArrayCommaOrEnd               // after an element
)

// A Parser is the low-level push parser: the caller feeds it byte windows
// and pulls events.  The zero Parser is ready to parse a document.
//
// NextEvent never blocks and never reads ahead of the window it is given;
// the reader adapters in this package drive it from actual byte sources.
type Parser struct {
	lex          lexer
	stack        []state
	elementRead  bool
	maxStackSize int

	pending    Event // event held over from a step that also found an error
	hasPending bool
	eofQueued  bool // an unexpected end of file was reported; Eof is next
	done       bool
}

// SetMaxStackSize bounds the number of nested object and array openings.
// Zero, the default, means unbounded.
func (p *Parser) SetMaxStackSize(n int) { p.maxStackSize = n }

// NextEvent consumes bytes from buf, which must start at the first
// unconsumed byte of the document, and returns the number of bytes consumed
// together with the next event or a syntax error.  final reports that buf
// ends the document.  An EventNone event with a nil error means more input
// is required; the caller must extend buf past the consumed bytes and call
// again.  A payload in the returned event is valid only until the next call.
//
// After a syntax error the parser remains usable: it resumes from a
// best-effort successor state, and an event displaced by the error is
// returned by the following call.
func (p *Parser) NextEvent(buf []byte, final bool) (int, Event, error) {
	n, ev, serr := p.nextEvent(buf, final)
	if serr != nil {
		return n, ev, serr
	}
	return n, ev, nil
}

func (p *Parser) nextEvent(buf []byte, final bool) (int, Event, *SyntaxError) {
	if p.hasPending {
		p.hasPending = false
		return 0, p.pending, nil
	}
	if p.done {
		return 0, Eof, nil
	}
	if p.eofQueued {
		p.eofQueued = false
		p.done = true
		return 0, Eof, nil
	}
	n := 0
	for {
		tok, m, lexErr := p.lex.next(buf[n:], final)
		n += m
		if lexErr != nil {
			// The offending token is dropped; the grammar state is
			// unchanged so that the following tokens still parse.
			return n, Event{}, lexErr
		}
		if tok.code == tNone {
			return n, Event{}, nil // more input required
		}
		ev, serr := p.applyToken(tok, 0)
		if serr != nil {
			if ev.Kind != EventNone {
				p.pending = ev
				p.hasPending = true
			}
			return n, Event{}, serr
		}
		if ev.Kind != EventNone {
			return n, ev, nil
		}
		// ':' and ',' produce no event of their own; keep going.
	}
}

func isValueStart(c code) bool {
	switch c {
	case '{', '[', tString, tNumber, tTrue, tFalse, tNull:
		return true
	}
	return false
}

func (p *Parser) top() (state, bool) {
	if len(p.stack) == 0 {
		return 0, false
	}
	return p.stack[len(p.stack)-1], true
}

func (p *Parser) replaceTop(s state) { p.stack[len(p.stack)-1] = s }
func (p *Parser) pop()               { p.stack = p.stack[:len(p.stack)-1] }

// applyToken dispatches one token against the current grammar state.  It
// returns at most one event and at most one error; when recovering it may
// reapply the token against the repaired state, at most twice in a row, which
// is what the depth counter bounds.
func (p *Parser) applyToken(tok token, depth int) (Event, *SyntaxError) {
	st, inContainer := p.top()

	if tok.code == tEOF {
		if !inContainer && p.elementRead {
			p.done = true
			return Eof, nil
		}
		p.eofQueued = true
		if inContainer {
			return Event{}, syntaxErrorf(tok.start, tok.end,
				"Unexpected end of file, an object or an array is not closed")
		}
		return Event{}, syntaxErrorf(tok.start, tok.end,
			"Unexpected end of file, a value was expected")
	}

	if !inContainer {
		if p.elementRead {
			return Event{}, syntaxErrorf(tok.start, tok.end, "JSON trailing content after the root value")
		}
		if isValueStart(tok.code) {
			if serr := p.checkStackSize(tok); serr != nil {
				return Event{}, serr
			}
			p.elementRead = true
			return p.valueEvent(tok), nil
		}
		return Event{}, p.unexpectedToken(tok)
	}

	switch st {
	case stateObjectKeyOrEnd, stateObjectKey:
		switch tok.code {
		case '}':
			p.pop()
			if st == stateObjectKey {
				return EndObject, syntaxErrorf(tok.start, tok.end, "Trailing commas are not allowed in JSON")
			}
			return EndObject, nil
		case tString:
			p.replaceTop(stateObjectColon)
			return Event{Kind: EventObjectKey, Value: tok.text}, nil
		default:
			return Event{}, syntaxErrorf(tok.start, tok.end, "Object keys must be strings")
		}

	case stateObjectColon:
		if tok.code == ':' {
			p.replaceTop(stateObjectValue)
			return Event{}, nil
		}
		err := syntaxErrorf(tok.start, tok.end, "Object keys should be followed by ':'")
		// Continue as if the colon had been present.
		p.replaceTop(stateObjectValue)
		if depth < 2 {
			ev, _ := p.applyToken(tok, depth+1)
			return ev, err
		}
		return Event{}, err

	case stateObjectValue:
		if isValueStart(tok.code) {
			if serr := p.checkStackSize(tok); serr != nil {
				return Event{}, serr
			}
			p.replaceTop(stateObjectCommaOrEnd)
			return p.valueEvent(tok), nil
		}
		if tok.code == '}' && depth < 2 {
			err := syntaxErrorf(tok.start, tok.end, "Unexpected closing curly bracket, a value was expected")
			p.replaceTop(stateObjectCommaOrEnd)
			ev, _ := p.applyToken(tok, depth+1) // closes the object
			return ev, err
		}
		return Event{}, p.unexpectedToken(tok)

	case stateObjectCommaOrEnd:
		switch tok.code {
		case ',':
			p.replaceTop(stateObjectKey)
			return Event{}, nil
		case '}':
			p.pop()
			return EndObject, nil
		default:
			err := syntaxErrorf(tok.start, tok.end,
				"Object values should be followed by a comma or the object end")
			if tok.code == tString && depth < 2 {
				// Continue as if the comma had been present.
				p.replaceTop(stateObjectKey)
				ev, _ := p.applyToken(tok, depth+1)
				return ev, err
			}
			return Event{}, err
		}

	case stateArrayValueOrEnd, stateArrayValue:
		switch {
		case tok.code == ']':
			p.pop()
			if st == stateArrayValue {
				return EndArray, syntaxErrorf(tok.start, tok.end, "Trailing commas are not allowed in JSON")
			}
			return EndArray, nil
		case isValueStart(tok.code):
			if serr := p.checkStackSize(tok); serr != nil {
				return Event{}, serr
			}
			p.replaceTop(stateArrayCommaOrEnd)
			return p.valueEvent(tok), nil
		case tok.code == ',':
			// A leading or doubled comma; keep expecting a value.
			p.replaceTop(stateArrayValue)
			return Event{}, syntaxErrorf(tok.start, tok.end, "Unexpected comma, a value was expected")
		default:
			return Event{}, p.unexpectedToken(tok)
		}

	case stateArrayCommaOrEnd:
		switch {
		case tok.code == ',':
			p.replaceTop(stateArrayValue)
			return Event{}, nil
		case tok.code == ']':
			p.pop()
			return EndArray, nil
		default:
			err := syntaxErrorf(tok.start, tok.end,
				"Array values should be followed by a comma or the array end")
			if isValueStart(tok.code) && depth < 2 {
				// Continue as if the comma had been present.
				p.replaceTop(stateArrayValue)
				ev, _ := p.applyToken(tok, depth+1)
				return ev, err
			}
			return Event{}, err
		}
	}
	return Event{}, nil
}

// checkStackSize rejects a container opening that would exceed the stack
// bound.  The caller commits no state transition in that case, so the
// grammar is left still expecting a value and the document keeps parsing.
func (p *Parser) checkStackSize(tok token) *SyntaxError {
	if p.maxStackSize <= 0 || len(p.stack) < p.maxStackSize {
		return nil
	}
	switch tok.code {
	case '{':
		return syntaxErrorf(tok.start, tok.end,
			"Max stack size of %d reached on an object opening", p.maxStackSize)
	case '[':
		return syntaxErrorf(tok.start, tok.end,
			"Max stack size of %d reached on an array opening", p.maxStackSize)
	}
	return nil
}

// valueEvent turns a value-start token into its event, pushing the container
// state for '{' and '['.  The caller must have already rewritten its own
// state for the position after the value.
func (p *Parser) valueEvent(tok token) Event {
	switch tok.code {
	case '{':
		p.stack = append(p.stack, stateObjectKeyOrEnd)
		return StartObject
	case '[':
		p.stack = append(p.stack, stateArrayValueOrEnd)
		return StartArray
	case tString:
		return Event{Kind: EventString, Value: tok.text}
	case tNumber:
		return Event{Kind: EventNumber, Value: tok.text}
	case tTrue:
		return Boolean(true)
	case tFalse:
		return Boolean(false)
	}
	return Null
}

func (p *Parser) unexpectedToken(tok token) *SyntaxError {
	switch tok.code {
	case '}':
		if _, in := p.top(); !in {
			return syntaxErrorf(tok.start, tok.end, "Unexpected closing curly bracket, no object to close")
		}
		return syntaxErrorf(tok.start, tok.end, "Unexpected closing curly bracket, a value was expected")
	case ']':
		if _, in := p.top(); !in {
			return syntaxErrorf(tok.start, tok.end, "Unexpected closing square bracket, no array to close")
		}
		return syntaxErrorf(tok.start, tok.end, "Unexpected closing square bracket, a value was expected")
	case ',':
		return syntaxErrorf(tok.start, tok.end, "Unexpected comma, a value was expected")
	case ':':
		return syntaxErrorf(tok.start, tok.end, "Unexpected colon, a value was expected")
	}
	return syntaxErrorf(tok.start, tok.end, "Unexpected %v, a value was expected", tok.code)
}
