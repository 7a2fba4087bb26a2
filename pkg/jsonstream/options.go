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

const (
	defaultBufferSize    = 4096
	defaultMaxBufferSize = 16 << 20 // 16 MiB
	defaultMaxStackSize  = 65536
)

type options struct {
	bufferSize     int
	maxBufferSize  int
	maxStackSize   int
	detectEncoding bool
}

// An Option is a configuration option for a reader adapter.
type Option func(*options)

// WithBufferSize sets the initial size of the input buffer.  The default is
// 4096 bytes.
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

// WithMaxBufferSize bounds the input buffer.  A single token (in practice, a
// string) larger than this fails the parse.  The default is 16 MiB.
func WithMaxBufferSize(n int) Option {
	return func(o *options) { o.maxBufferSize = n }
}

// WithMaxStackSize bounds the number of nested object and array openings.
// The default is 65536; zero means unbounded.
func WithMaxStackSize(n int) Option {
	return func(o *options) { o.maxStackSize = n }
}

// WithEncodingDetection makes NewReaderParser wrap its source with
// DetectEncoding, so UTF-16 documents carrying a byte order mark parse
// transparently.  Adapters without an io.Reader source ignore it.
func WithEncodingDetection() Option {
	return func(o *options) { o.detectEncoding = true }
}

func makeOptions(opts []Option) options {
	o := options{
		bufferSize:    defaultBufferSize,
		maxBufferSize: defaultMaxBufferSize,
		maxStackSize:  defaultMaxStackSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bufferSize < 1 {
		o.bufferSize = 1
	}
	if o.maxBufferSize < o.bufferSize {
		o.maxBufferSize = o.bufferSize
	}
	return o
}
