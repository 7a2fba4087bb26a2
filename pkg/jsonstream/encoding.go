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
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DetectEncoding wraps r so that a UTF-16 document carrying a byte order
// mark is transcoded to UTF-8 on the fly.  Input without a byte order mark
// passes through unchanged, so the parser still sees (and checks) the raw
// bytes of ordinary UTF-8 documents.  A UTF-8 byte order mark is stripped and
// the rest of the input is decoded as UTF-8, invalid bytes becoming U+FFFD.
func DetectEncoding(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}
