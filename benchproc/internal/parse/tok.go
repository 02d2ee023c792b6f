// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A SyntaxError is an error produced by parsing a malformed filter
// or projection expression.
type SyntaxError struct {
	Query string // The original query string
	Off   int    // Byte offset of the error in Query
	Msg   string // Error message
}

func (e *SyntaxError) Error() string {
	// Show the query and point at the error.
	pos := e.Off
	if pos > len(e.Query) {
		pos = len(e.Query)
	}
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, pos, "")
}

type errorTracker struct {
	qOrig string
	err   *SyntaxError
}

func (t *errorTracker) error(q string, msg string) {
	// Only keep the first error.
	if t.err != nil {
		return
	}
	off := len(t.qOrig) - len(q)
	t.err = &SyntaxError{t.qOrig, off, msg}
}

// A tok is a single token in the filter/projection lexical syntax.
type tok struct {
	// Kind specifies the category of this token. It is either
	// 'w' or 'q' for an unquoted or quoted word, respectively,
	// 'r' for a regexp, an operator character, or 0 for the
	// end of the string. Keyword tokens "AND" and "OR" have
	// kinds 'A' and 'O'.
	Kind byte
	Tok  string // Literal token
	Off  int    // Byte offset of the beginning of this token

	Regexp *regexp.Regexp // Compiled regexp for 'r' tokens
}

type tokenizer struct {
	q    string
	errt *errorTracker
}

func newTokenizer(q string) tokenizer {
	return tokenizer{q, &errorTracker{q, nil}}
}

func isOp(ch rune) bool {
	return ch == '(' || ch == ')' || ch == ':' || ch == '@' || ch == ','
}

// At the beginning of a word, we accept "-" and "*" as operators,
// but in the middle of words we treat them as part of the word.
func isStartOp(ch rune) bool {
	return isOp(ch) || ch == '-' || ch == '*'
}

func isSpace(q string) int {
	if q[0] == ' ' {
		return 1
	}
	r, size := utf8.DecodeRuneInString(q)
	if unicode.IsSpace(r) {
		return size
	}
	return 0
}

// key returns the next key or operator token.
// A key may be a bare word or a quoted word.
func (t tokenizer) key() (tok, tokenizer) {
	return t.next(false)
}

// value is like key, but values may also be a regexp surrounded by
// "/"s, and may begin with "-" or "*".
func (t tokenizer) value() (tok, tokenizer) {
	return t.next(true)
}

func (t tokenizer) next(isValue bool) (tok, tokenizer) {
	// Skip white space.
	for len(t.q) > 0 {
		n := isSpace(t.q)
		if n == 0 {
			break
		}
		t.q = t.q[n:]
	}
	off := len(t.errt.qOrig) - len(t.q)
	if len(t.q) == 0 {
		return tok{0, "", off, nil}, t
	}

	// Regexp.
	if isValue && t.q[0] == '/' {
		// Find the end, skipping escaped "/"s.
		var re strings.Builder
		end := -1
		for i := 1; i < len(t.q); i++ {
			if t.q[i] == '\\' && i+1 < len(t.q) && t.q[i+1] == '/' {
				re.WriteByte('/')
				i++
				continue
			}
			if t.q[i] == '/' {
				end = i
				break
			}
			re.WriteByte(t.q[i])
		}
		if end < 0 {
			return t.error("missing close \"/\"")
		}
		expr, err := regexp.Compile(`^(?:` + re.String() + `)$`)
		if err != nil {
			return t.error(err.Error())
		}
		tk := tok{'r', t.q[:end+1], off, expr}
		t.q = t.q[end+1:]
		return tk, t
	}

	// Quoted word.
	if t.q[0] == '"' {
		// Find the end of the quoted string.
		for i := 1; i < len(t.q); i++ {
			if t.q[i] == '\\' {
				i++
				continue
			}
			if t.q[i] == '"' {
				str, err := strconv.Unquote(t.q[:i+1])
				if err != nil {
					return t.error("bad quoted string")
				}
				t.q = t.q[i+1:]
				return tok{'q', str, off, nil}, t
			}
		}
		return t.error("missing end quote")
	}

	// Operator.
	r, size := utf8.DecodeRuneInString(t.q)
	if isOp(r) || (!isValue && isStartOp(r)) {
		tk := tok{byte(r), t.q[:size], off, nil}
		t.q = t.q[size:]
		return tk, t
	}

	// Bare word.
	end := 0
	for end < len(t.q) {
		r, size := utf8.DecodeRuneInString(t.q[end:])
		if isOp(r) || unicode.IsSpace(r) {
			break
		}
		end += size
	}
	word := t.q[:end]
	t.q = t.q[end:]
	switch word {
	case "AND":
		return tok{'A', word, off, nil}, t
	case "OR":
		return tok{'O', word, off, nil}, t
	}
	return tok{'w', word, off, nil}, t
}

// error records msg as the first error at the current position and
// returns a terminal token and a tokenizer positioned at the end of
// the input so parsing unwinds.
func (t tokenizer) error(msg string) (tok, tokenizer) {
	t.errt.error(t.q, msg)
	t.q = ""
	return tok{0, "", len(t.errt.qOrig), nil}, t
}

// end reports an error if there is any unconsumed input.
func (t tokenizer) end() tokenizer {
	if tok, _ := t.key(); tok.Kind != 0 {
		_, t = t.error("unexpected " + strconv.Quote(tok.Tok))
	}
	return t
}

// quoteWord returns a string that tokenizes as the word s.
func quoteWord(s string) string {
	if len(s) == 0 {
		return `""`
	}
	for i, r := range s {
		if r == '"' || isOp(r) || unicode.IsSpace(r) || (i == 0 && isStartOp(r)) {
			return strconv.Quote(s)
		}
	}
	if s == "AND" || s == "OR" || s[0] == '<' || s[0] == '>' {
		return strconv.Quote(s)
	}
	return s
}
