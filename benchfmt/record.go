// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchfmt provides a reader and writer for newline-delimited
// JSON measurement records, as emitted by the microbenchmark
// binaries.
//
// Each line of a record file is one flat JSON object. Field values
// are 64-bit integers, floating point numbers, booleans, or short
// strings. There is no global schema: each benchmark family defines
// its own set of fields, and consumers validate the fields they need
// when they access them.
//
// The reader is structured as a streaming operation modeled on
// bufio.Scanner so consumers can provide their own data model.
//
// This package is designed to be used with the higher-level packages
// benchproc, benchseries, and benchplot.
package benchfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A Kind is the type of a field Value.
type Kind uint8

const (
	Invalid Kind = iota
	Int
	Float
	Bool
	String
)

var kindNames = [...]string{
	Invalid: "invalid",
	Int:     "int",
	Float:   "float",
	Bool:    "bool",
	String:  "string",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// A Value is a single typed field value of a Record.
//
// The zero Value has Kind Invalid.
type Value struct {
	kind Kind
	num  float64
	i    int64
	str  string
}

// IntValue returns an Int Value.
func IntValue(v int64) Value { return Value{kind: Int, i: v} }

// FloatValue returns a Float Value.
func FloatValue(v float64) Value { return Value{kind: Float, num: v} }

// BoolValue returns a Bool Value.
func BoolValue(v bool) Value {
	if v {
		return Value{kind: Bool, i: 1}
	}
	return Value{kind: Bool}
}

// StringValue returns a String Value.
func StringValue(v string) Value { return Value{kind: String, str: v} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// Int returns v as an integer. It reports false if v is not an Int.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == Int
}

// Float returns v as a float64. Int values are converted, and String
// values are parsed if they hold a number, since some benchmarks
// emit numeric parameters as strings. It reports false if v has no
// numeric interpretation.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.num, true
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return f, err == nil
	}
	return 0, false
}

// Bool returns v as a bool. It reports false if v is not a Bool.
func (v Value) Bool() (bool, bool) {
	return v.i != 0, v.kind == Bool
}

// Text returns the string held by a String value. It reports false
// if v is not a String.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == String
}

// String returns the canonical textual form of v. Two Values of the
// same Kind are equal if and only if their canonical forms are equal,
// which lets them be used directly as grouping keys.
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.i != 0)
	case String:
		return v.str
	}
	return "<invalid>"
}

// Equal reports whether v and o have the same kind and value. Float
// NaNs are equal to each other so that Equal is reflexive.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == Float {
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	}
	return v == o
}

// A Field is a single key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// A Record is a single measurement record.
//
// Records are read-only once parsed: consumers filter, group, and
// sort Records but never modify them. Fields keeps the order in which
// keys appeared in the input so a Writer can reproduce it.
type Record struct {
	// Fields is the list of fields in input order. Keys are
	// unique.
	Fields []Field

	// FileName and Line identify where this record was read
	// from. They are purely diagnostic and may be zero for
	// records constructed in memory.
	FileName string
	Line     int

	// pos maps from Field.Key to index in Fields. This may be
	// nil, which indicates the index needs to be constructed.
	pos map[string]int
}

// A FieldError reports a required field that is missing from a
// record or has a value of the wrong kind.
type FieldError struct {
	Pos string // "file:line" of the record, or ""
	Key string
	Msg string
}

func (e *FieldError) Error() string {
	if e.Pos == "" {
		return fmt.Sprintf("field %q: %s", e.Key, e.Msg)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Pos, e.Key, e.Msg)
}

// Pos returns the "file:line" position of r, or "" if r was not read
// from a file.
func (r *Record) Pos() string {
	if r.Line == 0 {
		return r.FileName
	}
	name := r.FileName
	if name == "" {
		name = "<unknown>"
	}
	return name + ":" + strconv.Itoa(r.Line)
}

// Index returns the index in r.Fields of key.
func (r *Record) Index(key string) (pos int, ok bool) {
	if r.pos == nil {
		// This is a fresh Record. Construct the index.
		r.pos = make(map[string]int, len(r.Fields))
		for i, f := range r.Fields {
			r.pos[f.Key] = i
		}
	}
	pos, ok = r.pos[key]
	return
}

// Get returns the value of key and whether it is present.
func (r *Record) Get(key string) (Value, bool) {
	pos, ok := r.Index(key)
	if !ok {
		return Value{}, false
	}
	return r.Fields[pos].Value, true
}

// Set sets key to val, overriding or appending the field as
// necessary. It is intended for constructing records; Records
// obtained from a Reader must not be modified.
func (r *Record) Set(key string, val Value) {
	if pos, ok := r.Index(key); ok {
		r.Fields[pos].Value = val
		return
	}
	r.pos[key] = len(r.Fields)
	r.Fields = append(r.Fields, Field{key, val})
}

// Value returns the value of the required field key, or a
// *FieldError if it is absent.
func (r *Record) Value(key string) (Value, error) {
	v, ok := r.Get(key)
	if !ok {
		return Value{}, &FieldError{r.Pos(), key, "missing"}
	}
	return v, nil
}

// Float returns the numeric value of the required field key.
func (r *Record) Float(key string) (float64, error) {
	v, err := r.Value(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float()
	if !ok {
		return 0, &FieldError{r.Pos(), key, fmt.Sprintf("want number, have %s %q", v.kind, v)}
	}
	return f, nil
}

// Bool returns the boolean value of the required field key.
func (r *Record) Bool(key string) (bool, error) {
	v, err := r.Value(key)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, &FieldError{r.Pos(), key, fmt.Sprintf("want bool, have %s %q", v.kind, v)}
	}
	return b, nil
}

// Text returns the string value of the required field key.
func (r *Record) Text(key string) (string, error) {
	v, err := r.Value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.Text()
	if !ok {
		return "", &FieldError{r.Pos(), key, fmt.Sprintf("want string, have %s %q", v.kind, v)}
	}
	return s, nil
}

// Clone makes a copy of Record that shares no state with r.
func (r *Record) Clone() *Record {
	return &Record{
		Fields:   append([]Field(nil), r.Fields...),
		FileName: r.FileName,
		Line:     r.Line,
	}
}

// Equal reports whether r and o have the same fields in the same
// order. Positions are ignored.
func (r *Record) Equal(o *Record) bool {
	if len(r.Fields) != len(o.Fields) {
		return false
	}
	for i, f := range r.Fields {
		g := o.Fields[i]
		if f.Key != g.Key || !f.Value.Equal(g.Value) {
			return false
		}
	}
	return true
}
