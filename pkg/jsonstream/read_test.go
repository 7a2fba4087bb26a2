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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderParser(t *testing.T) {
	p := NewReaderParser(strings.NewReader(`{"foo": 1}`))
	want := []Event{
		StartObject,
		ObjectKey("foo"),
		Number("1"),
		EndObject,
		Eof,
	}
	for _, w := range want {
		ev, err := p.NextEvent()
		require.NoError(t, err)
		assert.Equal(t, w, ev.Clone())
	}
}

// A tiny initial buffer forces the compact-and-grow path: tokens larger than
// the buffer must still come out whole.
func TestReaderParserGrowsBuffer(t *testing.T) {
	p := NewReaderParser(strings.NewReader(`["hello world, this is a long string", 123456789]`),
		WithBufferSize(1))
	var got []Event
	for {
		ev, err := p.NextEvent()
		require.NoError(t, err)
		got = append(got, ev.Clone())
		if ev.Kind == EventEof {
			break
		}
	}
	assert.Equal(t, []Event{
		StartArray,
		String("hello world, this is a long string"),
		Number("123456789"),
		EndArray,
		Eof,
	}, got)
}

// A token that cannot fit in the bounded buffer fails the parse for good.
func TestReaderParserBufferExhaustion(t *testing.T) {
	p := NewReaderParser(strings.NewReader(`["aaaaaaaaaaaaaaaa"]`),
		WithBufferSize(1), WithMaxBufferSize(8))
	ev, err := p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, EventStartArray, ev.Kind)

	_, err = p.NextEvent()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum buffer size of 8 bytes")

	// The failure is sticky.
	_, err2 := p.NextEvent()
	assert.Equal(t, err, err2)
}

// I/O errors short-circuit the adapter loop and are returned as is.
func TestReaderParserIOError(t *testing.T) {
	ioErr := errors.New("connection reset")
	p := NewReaderParser(&failingReader{head: `[1, `, err: ioErr})
	for i := 0; i < 2; i++ {
		_, err := p.NextEvent()
		require.NoError(t, err)
	}
	_, err := p.NextEvent()
	assert.Equal(t, ioErr, err)
	_, err = p.NextEvent()
	assert.Equal(t, ioErr, err, "I/O errors are sticky")
}

// A failingReader serves head and then keeps returning err.
type failingReader struct {
	head string
	off  int
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.off < len(r.head) {
		n := copy(p, r.head[r.off:])
		r.off += n
		return n, nil
	}
	return 0, r.err
}

func TestSliceParserDrainValue(t *testing.T) {
	doc := `
	{
	    "skip": 123,
	    "target": {
	        "nested": [1, 2, {"deep": true}],
	        "another": "value"
	    },
	    "after": false
	}
	`
	p := NewSliceParser([]byte(doc))
	for {
		ev, err := p.NextEvent()
		require.NoError(t, err)
		require.NotEqual(t, EventEof, ev.Kind, "target key not found")
		if ev.Kind == EventObjectKey && ev.Value == "target" {
			break
		}
		require.NotContains(t, []string{"nested", "another"}, ev.Value,
			"the drain must start before the nested keys are reached")
	}

	raw, err := p.DrainValue()
	require.NoError(t, err)
	assert.Equal(t, `{"nested":[1,2,{"deep":true}],"another":"value"}`, raw)

	// The event stream resumes right after the drained value.
	ev, err := p.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, ObjectKey("after"), ev.Clone())
}

func TestDrainScalarValue(t *testing.T) {
	p := NewSliceParser([]byte(`{"a": "plain\ntext", "b": 1}`))
	ev, err := p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, EventStartObject, ev.Kind)
	ev, err = p.NextEvent()
	require.NoError(t, err)
	require.Equal(t, ObjectKey("a"), ev.Clone())

	raw, err := p.DrainValue()
	require.NoError(t, err)
	assert.Equal(t, `"plain\ntext"`, raw)

	ev, err = p.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, ObjectKey("b"), ev.Clone())
}

func TestChanParser(t *testing.T) {
	src := make(chan []byte, 4)
	// Chunks split inside a key, a number and a keyword.
	src <- []byte(`{"fo`)
	src <- []byte(`o": 12`)
	src <- []byte(`3, "bar": tr`)
	src <- []byte(`ue}`)
	close(src)

	p := NewChanParser(src)
	want := []Event{
		StartObject,
		ObjectKey("foo"),
		Number("123"),
		ObjectKey("bar"),
		Boolean(true),
		EndObject,
		Eof,
	}
	ctx := context.Background()
	for _, w := range want {
		ev, err := p.NextEvent(ctx)
		require.NoError(t, err)
		assert.Equal(t, w, ev.Clone())
	}
}

// Cancelling the context interrupts the wait for input but does not kill the
// parse: a later call with a live context resumes it.
func TestChanParserContextCancel(t *testing.T) {
	src := make(chan []byte, 1)
	src <- []byte(`[1, `)
	p := NewChanParser(src)

	ctx := context.Background()
	ev, err := p.NextEvent(ctx)
	require.NoError(t, err)
	require.Equal(t, EventStartArray, ev.Kind)
	ev, err = p.NextEvent(ctx)
	require.NoError(t, err)
	require.Equal(t, Number("1"), ev.Clone())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.NextEvent(cancelled)
	require.ErrorIs(t, err, context.Canceled)

	src <- []byte(`2]`)
	close(src)
	ev, err = p.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, Number("2"), ev.Clone())
	ev, err = p.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventEndArray, ev.Kind)
	ev, err = p.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventEof, ev.Kind)
}

// UTF-16 input carrying a byte order mark parses transparently when encoding
// detection is enabled.
func TestReaderParserEncodingDetection(t *testing.T) {
	utf16le := func(s string) []byte {
		out := []byte{0xFF, 0xFE}
		for _, r := range s { // the test input is ASCII only
			out = append(out, byte(r), 0)
		}
		return out
	}
	p := NewReaderParser(
		strings.NewReader(string(utf16le(`{"a": 1}`))),
		WithEncodingDetection())
	var got []Event
	for {
		ev, err := p.NextEvent()
		require.NoError(t, err)
		got = append(got, ev.Clone())
		if ev.Kind == EventEof {
			break
		}
	}
	assert.Equal(t, []Event{
		StartObject,
		ObjectKey("a"),
		Number("1"),
		EndObject,
		Eof,
	}, got)
}
