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

// Package jsonstream is a streaming, pull-based JSON codec: a parser that
// emits a flat sequence of structural events from an incoming byte stream,
// and a serializer that accepts such events and produces a well-formed JSON
// byte stream.  Documents of any size are processed incrementally, without
// an intermediate tree.
//
// The low-level Parser is a push parser fed byte windows by the caller; the
// ReaderParser, ChanParser and SliceParser adapters drive it from an
// io.Reader, a chunk channel and an in-memory slice respectively.  Syntax
// errors are recoverable: a caller that ignores them still receives the
// events of the rest of the document.  That stream is not always balanced:
// containers still open when the input ends are not closed, and an object
// member whose value is missing leaves its key without a value.  Numbers are
// surfaced as lexical text and never interpreted.
package jsonstream
