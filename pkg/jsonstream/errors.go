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

import "fmt"

// A Pos is a position in the input document.  Line and Column are 0 based;
// Column counts code points, not bytes.  Offset is the byte offset from the
// start of the document.
type Pos struct {
	Line   int
	Column int
	Offset int
}

// A SyntaxError describes a JSON syntax error over the byte range
// [Start.Offset, End.Offset).  Errors produced by a Parser are recoverable:
// the parser keeps producing events after returning one.
type SyntaxError struct {
	Start Pos
	End   Pos
	Msg   string
}

// Error renders e with 1-based line and column numbers.  A range covering at
// most one byte is rendered as a single position.
func (e *SyntaxError) Error() string {
	switch {
	case e.End.Offset-e.Start.Offset <= 1:
		return fmt.Sprintf("Parser error at line %d column %d: %s",
			e.Start.Line+1, e.Start.Column+1, e.Msg)
	case e.Start.Line == e.End.Line:
		return fmt.Sprintf("Parser error at line %d between columns %d and column %d: %s",
			e.Start.Line+1, e.Start.Column+1, e.End.Column+1, e.Msg)
	default:
		return fmt.Sprintf("Parser error between line %d column %d and line %d column %d: %s",
			e.Start.Line+1, e.Start.Column+1, e.End.Line+1, e.End.Column+1, e.Msg)
	}
}

func syntaxErrorf(start, end Pos, f string, v ...interface{}) *SyntaxError {
	return &SyntaxError{Start: start, End: end, Msg: fmt.Sprintf(f, v...)}
}
