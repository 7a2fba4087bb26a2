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

// This file implements the reader adapters: thin shells around the low-level
// Parser that own a growable input buffer and refill it from a byte source.
// All three share the same loop: parse the live window, discard what the
// parser consumed, and on "more input required" compact the buffer, grow it
// if it is full (doubling, up to the configured maximum) and read more.  A
// drained source makes the next parse final.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// An inputBuffer is the window [start, end) of unconsumed input inside a
// growable buffer bounded by max.
type inputBuffer struct {
	buf        []byte
	start, end int
	max        int
}

func (b *inputBuffer) window() []byte { return b.buf[b.start:b.end] }

func (b *inputBuffer) overflow() error {
	return fmt.Errorf("the next token does not fit in the maximum buffer size of %d bytes", b.max)
}

// makeRoom compacts the buffer and grows it when it is full.
func (b *inputBuffer) makeRoom() error {
	if b.start > 0 {
		copy(b.buf, b.buf[b.start:b.end])
		b.end -= b.start
		b.start = 0
	}
	if b.end < len(b.buf) {
		return nil
	}
	if len(b.buf) >= b.max {
		return b.overflow()
	}
	size := 2 * len(b.buf)
	if size > b.max {
		size = b.max
	}
	grown := make([]byte, size)
	copy(grown, b.buf[:b.end])
	b.buf = grown
	return nil
}

// push appends a whole chunk, compacting and growing as needed.
func (b *inputBuffer) push(chunk []byte) error {
	if b.start > 0 {
		copy(b.buf, b.buf[b.start:b.end])
		b.end -= b.start
		b.start = 0
	}
	need := b.end + len(chunk)
	if need > len(b.buf) {
		if need > b.max {
			return b.overflow()
		}
		size := len(b.buf)
		for size < need {
			size *= 2
		}
		if size > b.max {
			size = b.max
		}
		grown := make([]byte, size)
		copy(grown, b.buf[:b.end])
		b.buf = grown
	}
	copy(b.buf[b.end:], chunk)
	b.end = need
	return nil
}

// A ReaderParser parses a JSON document read from an io.Reader, blocking on
// the reads.
//
//	parser := jsonstream.NewReaderParser(file)
//	for {
//		ev, err := parser.NextEvent()
//		...
//		if ev.Kind == jsonstream.EventEof {
//			break
//		}
//	}
type ReaderParser struct {
	parser Parser
	r      io.Reader
	in     inputBuffer
	ending bool
	err    error // sticky fatal error (I/O or buffer exhaustion)
}

// NewReaderParser returns a parser reading from r.
func NewReaderParser(r io.Reader, opts ...Option) *ReaderParser {
	o := makeOptions(opts)
	if o.detectEncoding {
		r = DetectEncoding(r)
	}
	p := &ReaderParser{
		r:  r,
		in: inputBuffer{buf: make([]byte, o.bufferSize), max: o.maxBufferSize},
	}
	p.parser.SetMaxStackSize(o.maxStackSize)
	return p
}

// NextEvent returns the next event of the document.  Syntax errors are
// recoverable: the next call keeps parsing.  I/O errors and buffer
// exhaustion are fatal and returned again by every following call.  Event
// payloads are valid only until the next call on p.
func (p *ReaderParser) NextEvent() (Event, error) {
	if p.err != nil {
		return Event{}, p.err
	}
	for {
		n, ev, err := p.parser.NextEvent(p.in.window(), p.ending)
		p.in.start += n
		if err != nil {
			return Event{}, err
		}
		if ev.Kind != EventNone {
			return ev, nil
		}
		if p.ending {
			// A final parse always resolves; guard against a looping caller.
			p.err = io.ErrUnexpectedEOF
			return Event{}, p.err
		}
		if err := p.in.makeRoom(); err != nil {
			p.err = err
			return Event{}, err
		}
		m, rerr := p.r.Read(p.in.buf[p.in.end:])
		p.in.end += m
		switch {
		case rerr == io.EOF:
			p.ending = true
		case rerr != nil:
			p.err = rerr
			return Event{}, rerr
		}
	}
}

// DrainValue consumes the next complete value (however deeply nested) and
// returns its compact serialization.  It is meant to be called right after
// an ObjectKey event, or anywhere a value is expected next.
func (p *ReaderParser) DrainValue() (string, error) {
	return drainValue(p.NextEvent)
}

// A SliceParser parses a JSON document held entirely in memory.  It never
// copies the input; event payloads borrow from it directly when possible.
type SliceParser struct {
	parser Parser
	data   []byte
	off    int
}

// NewSliceParser returns a parser over data.  Buffer options do not apply;
// the slice is the buffer.
func NewSliceParser(data []byte, opts ...Option) *SliceParser {
	o := makeOptions(opts)
	p := &SliceParser{data: data}
	p.parser.SetMaxStackSize(o.maxStackSize)
	return p
}

// NextEvent returns the next event of the document.
func (p *SliceParser) NextEvent() (Event, error) {
	n, ev, err := p.parser.NextEvent(p.data[p.off:], true)
	p.off += n
	if err != nil {
		return Event{}, err
	}
	if ev.Kind == EventNone {
		return Event{}, io.ErrUnexpectedEOF
	}
	return ev, nil
}

// DrainValue consumes the next complete value and returns its compact
// serialization.
func (p *SliceParser) DrainValue() (string, error) {
	return drainValue(p.NextEvent)
}

// A ChanParser parses a JSON document delivered as chunks on a channel, the
// asynchronous counterpart of ReaderParser: the only suspension point is the
// channel receive, guarded by the caller's context.  Closing the channel
// ends the document.
type ChanParser struct {
	parser Parser
	src    <-chan []byte
	in     inputBuffer
	ending bool
	err    error
}

// NewChanParser returns a parser consuming chunks from src.
func NewChanParser(src <-chan []byte, opts ...Option) *ChanParser {
	o := makeOptions(opts)
	p := &ChanParser{
		src: src,
		in:  inputBuffer{buf: make([]byte, o.bufferSize), max: o.maxBufferSize},
	}
	p.parser.SetMaxStackSize(o.maxStackSize)
	return p
}

// NextEvent returns the next event of the document, waiting on the chunk
// channel when the parser needs more input.  A context error cancels the
// wait but not the parse: a later call may resume it.
func (p *ChanParser) NextEvent(ctx context.Context) (Event, error) {
	if p.err != nil {
		return Event{}, p.err
	}
	for {
		n, ev, err := p.parser.NextEvent(p.in.window(), p.ending)
		p.in.start += n
		if err != nil {
			return Event{}, err
		}
		if ev.Kind != EventNone {
			return ev, nil
		}
		if p.ending {
			p.err = io.ErrUnexpectedEOF
			return Event{}, p.err
		}
		select {
		case chunk, ok := <-p.src:
			if !ok {
				p.ending = true
				continue
			}
			if err := p.in.push(chunk); err != nil {
				p.err = err
				return Event{}, err
			}
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// DrainValue consumes the next complete value and returns its compact
// serialization.
func (p *ChanParser) DrainValue(ctx context.Context) (string, error) {
	return drainValue(func() (Event, error) { return p.NextEvent(ctx) })
}

// drainValue pulls events until the value that starts at the current
// position is complete, serializing them compactly as it goes.
func drainValue(next func() (Event, error)) (string, error) {
	var sb strings.Builder
	var s Serializer
	depth := 0
	for {
		ev, err := next()
		if err != nil {
			return "", err
		}
		if ev.Kind == EventEof {
			return "", errors.New("Unexpected end of file while draining a value")
		}
		if err := s.SerializeEvent(ev, &sb); err != nil {
			return "", err
		}
		switch ev.Kind {
		case EventStartArray, EventStartObject:
			depth++
		case EventEndArray, EventEndObject:
			depth--
		}
		if depth == 0 {
			return sb.String(), nil
		}
	}
}
