// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// maxLine is the longest record line a Reader accepts.
const maxLine = 1 << 20

// A Reader reads newline-delimited JSON measurement records.
//
// Its API is modeled on bufio.Scanner. Unlike the Records it returns,
// a Reader is not safe for concurrent use.
//
// The zero value of the Reader is a valid Reader, but the user must
// call Reset before using it.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	lineNum  int
	err      error // current I/O error

	result    *Record
	resultErr error

	interns map[string]string
}

// A SyntaxError represents a syntax error on a particular line of a
// record file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

var noResult = errors.New("Reader.Scan has not been called")

// NewReader constructs a reader to parse records from r. fileName is
// used in error messages and recorded in each Record; it is purely
// diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.lineNum = 0
	r.err = nil
	r.result = nil
	r.resultErr = noResult
	if r.interns == nil {
		r.interns = make(map[string]string)
	}
}

// Scan advances the reader to the next non-blank line and reports
// whether a line was read.
// The caller should use the Result method to get the record.
// If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for r.s.Scan() {
		r.lineNum++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 {
			// Blank lines separate nothing; skip them.
			continue
		}
		r.result, r.resultErr = r.parseLine(line)
		return true
	}

	if err := r.s.Err(); err != nil {
		r.err = errors.Wrapf(err, "%s:%d", r.fileName, r.lineNum)
		return false
	}
	r.err = nil
	return false
}

// parseLine decodes a single line as a flat JSON object. The line is
// tokenized rather than unmarshaled into a map so that field order is
// preserved and duplicate keys can be detected.
func (r *Reader) parseLine(line []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, r.syntaxError("invalid JSON: " + jsonErr(err))
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, r.syntaxError("expected JSON object")
	}

	rec := &Record{FileName: r.fileName, Line: r.lineNum, pos: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, r.syntaxError("invalid JSON: " + jsonErr(err))
		}
		key := r.intern(tok.(string))
		if _, dup := rec.pos[key]; dup {
			return nil, r.syntaxError(fmt.Sprintf("duplicate field %q", key))
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, r.syntaxError("invalid JSON: " + jsonErr(err))
		}
		val, msg := parseValue(tok)
		if msg != "" {
			return nil, r.syntaxError(fmt.Sprintf("field %q: %s", key, msg))
		}
		rec.pos[key] = len(rec.Fields)
		rec.Fields = append(rec.Fields, Field{key, val})
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, r.syntaxError("invalid JSON: " + jsonErr(err))
	}
	// There must be nothing after the object.
	if _, err := dec.Token(); err != io.EOF {
		return nil, r.syntaxError("unexpected data after JSON object")
	}
	return rec, nil
}

func parseValue(tok json.Token) (Value, string) {
	switch tok := tok.(type) {
	case json.Number:
		return parseNumber(string(tok))
	case bool:
		return BoolValue(tok), ""
	case string:
		return StringValue(tok), ""
	case nil:
		return Value{}, "null value"
	case json.Delim:
		return Value{}, "nested values are not supported"
	}
	return Value{}, fmt.Sprintf("unexpected token %v", tok)
}

// parseNumber classifies a JSON number as an Int if it has no
// fraction or exponent and fits in an int64, and as a Float
// otherwise.
func parseNumber(s string) (Value, string) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntValue(i), ""
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, "parsing number: " + err.(*strconv.NumError).Err.Error()
	}
	return FloatValue(f), ""
}

func jsonErr(err error) string {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return "unexpected end of line"
	}
	return err.Error()
}

func (r *Reader) syntaxError(msg string) error {
	return &SyntaxError{r.fileName, r.lineNum, msg}
}

func (r *Reader) intern(x string) string {
	const maxIntern = 1024
	if s, ok := r.interns[x]; ok {
		return s
	}
	if len(r.interns) >= maxIntern {
		// Evict a random item from the interns table.
		for k := range r.interns {
			delete(r.interns, k)
			break
		}
	}
	r.interns[x] = x
	return x
}

// Result returns the last record read, or an error if the line was
// malformed.
//
// Parse errors are reported per line, so the caller can choose to
// continue calling Scan. Consumers that require well-formed input
// (such as ReadAll) stop at the first error.
//
// Unlike the line buffer, the returned Record is freshly allocated
// and may be retained by the caller.
func (r *Reader) Result() (*Record, error) {
	if r.resultErr != nil {
		return nil, r.resultErr
	}
	return r.result, nil
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// A Scanner is a source of records, such as a Reader or Files.
type Scanner interface {
	Scan() bool
	Result() (*Record, error)
	Err() error
}

// ReadAll reads every record from s. It fails on the first malformed
// record: a line that cannot be decoded indicates a producer bug, so
// no partial result is returned.
func ReadAll(s Scanner) ([]*Record, error) {
	var out []*Record
	for s.Scan() {
		rec, err := s.Result()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
