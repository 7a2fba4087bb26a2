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

// This file implements the lexical tokenization of JSON.  The lexer returns
// a series of tokens with one of the following codes:
//
//    tEOF     // end of input (only when the input is final)
//    tString  // a decoded string (e.g. `"a\nb"` becomes "a\nb")
//    tNumber  // the lexical text of a number (e.g. "-1.2e3")
//    tTrue, tFalse, tNull
//    '{'  '}'  '['  ']'  ','  ':'
//
// The lexer is resumable: next operates on a window of the input that starts
// at the lexer's current position and reports how many bytes it consumed.
// When the window ends in the middle of a token (or on a lone '\r' that may
// be half of a "\r\n" line break) and the input is not final, next returns a
// tNone token and consumes nothing past the preceding whitespace; the caller
// extends the window and retries.  All intra-token state therefore lives in
// the position counters, never on the grammar stack.

import (
	"fmt"
	"unicode/utf8"
)

// A code is a token code.  Single character tokens (i.e., punctuation) are
// represented by their byte value.
type code int

// tNone is not a token: more input is required.
const tNone code = 0

const (
	tEOF code = -1 - iota
	tString
	tNumber
	tTrue
	tFalse
	tNull
)

// String returns c as a string.
func (c code) String() string {
	switch c {
	case tNone:
		return "None"
	case tEOF:
		return "EOF"
	case tString:
		return "String"
	case tNumber:
		return "Number"
	case tTrue:
		return "true"
	case tFalse:
		return "false"
	case tNull:
		return "null"
	}
	if c < 0 || c > '~' {
		return fmt.Sprintf("%d", int(c))
	}
	return fmt.Sprintf("'%c'", rune(c))
}

// A token represents one lexical unit read from the input.  text carries the
// decoded payload of tString and the lexical text of tNumber; it may alias
// the input window or the lexer's scratch buffer and is valid only until the
// next call of next.
type token struct {
	code  code
	text  string
	start Pos
	end   Pos
}

// A lexer holds the position state of the tokenizer.  The zero lexer is
// positioned at the start of a document.
type lexer struct {
	pos     Pos    // position of the next unconsumed byte
	bomDone bool   // the byte order mark has been checked for
	scratch []byte // reused decode buffer for strings with escapes
}

// advance returns p moved forward over n ASCII characters.
func advance(p Pos, n int) Pos {
	p.Column += n
	p.Offset += n
	return p
}

// next returns the next token from buf, which must start at the lexer's
// current position.  The returned count is the number of bytes consumed; the
// caller must not present them again.  A tNone token with a nil error means
// more input is required (never returned when final is true).  When a syntax
// error is returned the offending bytes are consumed and the token, if any,
// carries the partially decoded text.
func (l *lexer) next(buf []byte, final bool) (token, int, *SyntaxError) {
	i := 0

	// A UTF-8 byte order mark is accepted at the start of the document only
	// and does not count toward the column number.
	if !l.bomDone {
		switch {
		case len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF:
			i = 3
			l.pos.Offset += 3
			l.bomDone = true
		case !final && len(buf) < 3 && isBOMPrefix(buf):
			return token{}, 0, nil
		default:
			l.bomDone = true
		}
	}

skip:
	for i < len(buf) {
		switch buf[i] {
		case ' ', '\t':
			i++
			l.pos = advance(l.pos, 1)
		case '\n':
			i++
			l.pos.Line++
			l.pos.Column = 0
			l.pos.Offset++
		case '\r':
			if i+1 >= len(buf) && !final {
				// The \r may be the first half of a \r\n line break.
				return token{}, i, nil
			}
			i++
			l.pos.Offset++
			if i < len(buf) && buf[i] == '\n' {
				i++
				l.pos.Offset++
			}
			l.pos.Line++
			l.pos.Column = 0
		default:
			break skip
		}
	}

	if i == len(buf) {
		if final {
			return token{code: tEOF, start: l.pos, end: l.pos}, i, nil
		}
		return token{}, i, nil
	}

	start := l.pos
	switch c := buf[i]; c {
	case '{', '}', '[', ']', ',', ':':
		l.pos = advance(l.pos, 1)
		return token{code: code(c), start: start, end: l.pos}, i + 1, nil
	case '"':
		return l.lexString(buf, i, final)
	case 't':
		return l.lexKeyword(buf, i, final, "true", tTrue)
	case 'f':
		return l.lexKeyword(buf, i, final, "false", tFalse)
	case 'n':
		return l.lexKeyword(buf, i, final, "null", tNull)
	default:
		if c == '-' || ('0' <= c && c <= '9') {
			return l.lexNumber(buf, i, final)
		}
		r, size := utf8.DecodeRune(buf[i:])
		if !final && r == utf8.RuneError && size == 1 && len(buf)-i < utf8.UTFMax {
			// Possibly a rune split across the chunk boundary.
			return token{}, i, nil
		}
		l.pos.Column++
		l.pos.Offset += size
		return token{}, i + size, syntaxErrorf(start, l.pos, "Unexpected character: %q", r)
	}
}

func isBOMPrefix(buf []byte) bool {
	bom := [3]byte{0xEF, 0xBB, 0xBF}
	for i, c := range buf {
		if c != bom[i] {
			return false
		}
	}
	return true
}

func isASCIIAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// lexKeyword matches one of the literals true, false and null starting at
// buf[i].  On mismatch it consumes the whole ASCII-alphabetic run so that the
// next call resumes on something new.
func (l *lexer) lexKeyword(buf []byte, i int, final bool, word string, c code) (token, int, *SyntaxError) {
	j := i
	for j < len(buf) && j-i < len(word) && buf[j] == word[j-i] {
		j++
	}
	if j-i == len(word) {
		start := l.pos
		l.pos = advance(l.pos, len(word))
		return token{code: c, text: word, start: start, end: l.pos}, j, nil
	}
	if j == len(buf) && !final {
		return token{}, i, nil // too short to decide
	}
	k := j
	for k < len(buf) && isASCIIAlpha(buf[k]) {
		k++
	}
	if k == len(buf) && !final {
		return token{}, i, nil // let the run finish before reporting it
	}
	start := l.pos
	l.pos = advance(l.pos, k-i)
	return token{}, k, syntaxErrorf(start, l.pos, "%q is not a valid JSON value", buf[i:k])
}

// lexNumber matches the RFC 8259 number grammar starting at buf[i].  The
// token text borrows the raw bytes, which are always ASCII.
func (l *lexer) lexNumber(buf []byte, i int, final bool) (token, int, *SyntaxError) {
	end, bad, more := scanNumber(buf[i:], final)
	if more {
		return token{}, i, nil
	}
	if bad >= 0 {
		// Consume the rest of the run the number was part of so that the
		// next call resumes on something new.
		k := i + bad
		for k < len(buf) && (isDigit(buf[k]) || isASCIIAlpha(buf[k]) ||
			buf[k] == '.' || buf[k] == '+' || buf[k] == '-') {
			k++
		}
		if k == len(buf) && !final {
			return token{}, i, nil
		}
		at := advance(l.pos, bad)
		var err *SyntaxError
		if i+bad < len(buf) {
			err = syntaxErrorf(at, at, "Invalid JSON number: unexpected character %q", rune(buf[i+bad]))
		} else {
			err = syntaxErrorf(at, at, "Invalid JSON number: unexpected end of file")
		}
		l.pos = advance(l.pos, k-i)
		return token{}, k, err
	}
	start := l.pos
	l.pos = advance(l.pos, end)
	return token{
		code:  tNumber,
		text:  unsafeString(buf[i : i+end]),
		start: start,
		end:   l.pos,
	}, i + end, nil
}

// scanNumber scans b for -?(0|[1-9][0-9]*)(.[0-9]+)?([eE][+-]?[0-9]+)?.
// It returns the length of the number, or bad >= 0 pointing at the first
// offending byte (bad == len(b) when the input ended where a digit was
// required), or more == true when the end of a non-final buffer was reached
// before the number could be complete.
func scanNumber(b []byte, final bool) (end, bad int, more bool) {
	j := 0
	if j < len(b) && b[j] == '-' {
		j++
	}

	// Integer part.
	if j == len(b) {
		if !final {
			return 0, 0, true
		}
		return 0, j, false
	}
	switch {
	case b[j] == '0':
		j++
		if j < len(b) && isDigit(b[j]) {
			return 0, j, false // leading zeros are not allowed
		}
	case '1' <= b[j] && b[j] <= '9':
		j++
		for j < len(b) && isDigit(b[j]) {
			j++
		}
	default:
		return 0, j, false
	}
	if j == len(b) && !final {
		return 0, 0, true // the integer part may continue
	}

	// Fraction.
	if j < len(b) && b[j] == '.' {
		j++
		if j == len(b) {
			if !final {
				return 0, 0, true
			}
			return 0, j, false
		}
		if !isDigit(b[j]) {
			return 0, j, false
		}
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		if j == len(b) && !final {
			return 0, 0, true
		}
	}

	// Exponent.
	if j < len(b) && (b[j] == 'e' || b[j] == 'E') {
		j++
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		if j == len(b) {
			if !final {
				return 0, 0, true
			}
			return 0, j, false
		}
		if !isDigit(b[j]) {
			return 0, j, false
		}
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		if j == len(b) && !final {
			return 0, 0, true
		}
	}

	return j, -1, false
}

// lexString scans a string starting at the opening quote buf[i], decoding
// escapes as it goes.  When the raw content needs no decoding and is valid
// UTF-8 the token text borrows the input window; otherwise it points into the
// lexer's scratch buffer.  On a syntax error inside the string the scan
// continues to the closing quote (undecodable input becomes U+FFFD) so that
// the caller can resume on the next token; only the first error is reported.
func (l *lexer) lexString(buf []byte, i int, final bool) (token, int, *SyntaxError) {
	start := l.pos
	p := advance(l.pos, 1) // the opening quote
	j := i + 1
	content := j // first content byte, for the zero-copy path

	var out []byte // non-nil once the decoded text diverges from the raw bytes
	var firstErr *SyntaxError

	// ensure switches to the owned decode buffer.
	ensure := func() {
		if out == nil {
			out = append(l.scratch[:0], buf[content:j]...)
		}
	}
	fail := func(at, to Pos, f string, v ...interface{}) {
		if firstErr == nil {
			firstErr = syntaxErrorf(at, to, f, v...)
		}
	}

	for {
		if j >= len(buf) {
			if !final {
				return token{}, i, nil
			}
			l.pos = p
			err := firstErr
			if err == nil {
				err = syntaxErrorf(start, p, "Unexpected end of file, a string is not terminated")
			}
			return token{}, j, err
		}
		c := buf[j]
		switch {
		case c == '"':
			j++
			p = advance(p, 1)
			var text string
			if out != nil {
				l.scratch = out // keep the grown buffer for reuse
				text = unsafeString(out)
			} else {
				text = unsafeString(buf[content : j-1])
			}
			l.pos = p
			tok := token{code: tString, text: text, start: start, end: p}
			return tok, j, firstErr
		case c == '\\':
			escStart := p
			if j+1 >= len(buf) {
				if !final {
					return token{}, i, nil
				}
				j++
				p = advance(p, 1) // dangling backslash; EOF reported above
				continue
			}
			switch e := buf[j+1]; e {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				ensure()
				out = append(out, unescapeByte(e))
				j += 2
				p = advance(p, 2)
			case 'u':
				var done bool
				var serr *SyntaxError
				j, p, done, serr = l.lexUnicodeEscape(buf, j, p, final, &out, ensure)
				if !done {
					return token{}, i, nil
				}
				if serr != nil {
					fail(serr.Start, serr.End, "%s", serr.Msg)
				}
			default:
				fail(escStart, advance(p, 2), `Invalid escape sequence: \%c`, e)
				ensure()
				out = append(out, e)
				j += 2
				p = advance(p, 2)
			}
		case c < 0x20:
			fail(p, p, "'%c' is not allowed in JSON strings", c)
			ensure()
			out = append(out, c)
			j++
			if c == '\n' {
				p.Line++
				p.Column = 0
				p.Offset++
			} else {
				p = advance(p, 1)
			}
		case c < 0x80:
			if out != nil {
				out = append(out, c)
			}
			j++
			p = advance(p, 1)
		default:
			r, size := utf8.DecodeRune(buf[j:])
			if r == utf8.RuneError && size == 1 {
				if !final && len(buf)-j < utf8.UTFMax {
					return token{}, i, nil // possibly split across chunks
				}
				fail(p, p, "Invalid UTF-8 byte 0x%02X in a string", c)
				ensure()
				out = utf8.AppendRune(out, utf8.RuneError)
				j++
				p = advance(p, 1)
			} else {
				if out != nil {
					out = append(out, buf[j:j+size]...)
				}
				j += size
				p.Column++
				p.Offset += size
			}
		}
	}
}

// lexUnicodeEscape decodes a \uXXXX escape (and, for a high surrogate, the
// \uXXXX that must follow) starting at the backslash buf[j].  It returns the
// new scan position; done is false when more input is required.  Decoding
// errors are returned for the caller to record, with U+FFFD standing in for
// the undecodable escape.
func (l *lexer) lexUnicodeEscape(buf []byte, j int, p Pos, final bool, out *[]byte, ensure func()) (int, Pos, bool, *SyntaxError) {
	escStart := p
	if j+6 > len(buf) {
		if !final {
			return j, p, false, nil
		}
		q := advance(p, len(buf)-j)
		return len(buf), q, true, syntaxErrorf(escStart, q, "Unexpected end of file in a unicode escape")
	}
	v, ok := hexDigits(buf[j+2 : j+6])
	if !ok {
		q := advance(p, 6)
		ensure()
		*out = utf8.AppendRune(*out, utf8.RuneError)
		return j + 6, q, true, syntaxErrorf(escStart, q, "Unexpected character in a unicode escape")
	}
	switch {
	case 0xD800 <= v && v <= 0xDBFF:
		// A high surrogate must pair with a following low surrogate escape.
		if j+12 > len(buf) && !final {
			return j, p, false, nil
		}
		if j+12 > len(buf) || buf[j+6] != '\\' || buf[j+7] != 'u' {
			q := advance(p, 6)
			ensure()
			*out = utf8.AppendRune(*out, utf8.RuneError)
			return j + 6, q, true, syntaxErrorf(escStart, q,
				`\u%04X is a high surrogate and should be followed by a low surrogate`, v)
		}
		lo, ok := hexDigits(buf[j+8 : j+12])
		if !ok || lo < 0xDC00 || lo > 0xDFFF {
			q := advance(p, 12)
			ensure()
			*out = utf8.AppendRune(*out, utf8.RuneError)
			return j + 12, q, true, syntaxErrorf(escStart, q,
				`\u%04X is a high surrogate and should be followed by a low surrogate`, v)
		}
		r := 0x10000 + ((v - 0xD800) << 10) + (lo - 0xDC00)
		ensure()
		*out = utf8.AppendRune(*out, rune(r))
		return j + 12, advance(p, 12), true, nil
	case 0xDC00 <= v && v <= 0xDFFF:
		q := advance(p, 6)
		ensure()
		*out = utf8.AppendRune(*out, utf8.RuneError)
		return j + 6, q, true, syntaxErrorf(escStart, q, `\u%04X is not a valid high surrogate`, v)
	default:
		ensure()
		*out = utf8.AppendRune(*out, rune(v))
		return j + 6, advance(p, 6), true, nil
	}
}

func unescapeByte(e byte) byte {
	switch e {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	return e // '"', '\\' and '/' escape themselves
}

// hexDigits decodes exactly four hexadecimal digits.
func hexDigits(b []byte) (uint32, bool) {
	var v uint32
	for _, c := range b {
		v <<= 4
		switch {
		case '0' <= c && c <= '9':
			v |= uint32(c - '0')
		case 'a' <= c && c <= 'f':
			v |= uint32(c-'a') + 10
		case 'A' <= c && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}
