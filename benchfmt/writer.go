// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Writer writes newline-delimited JSON measurement records.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewWriter returns a writer that writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes rec to w as a single line. Fields are written in
// rec.Fields order, and each Value is encoded so that reading it back
// yields the same Kind: Float values that happen to be integral are
// written with a trailing ".0".
func (w *Writer) Write(rec *Record) error {
	w.buf.Reset()
	w.buf.WriteByte('{')
	for i, f := range rec.Fields {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		writeString(&w.buf, f.Key)
		w.buf.WriteByte(':')
		if err := writeValue(&w.buf, f.Value); err != nil {
			return errors.Wrapf(err, "field %q", f.Key)
		}
	}
	w.buf.WriteString("}\n")

	// Flush the buffer out to the io.Writer. Write to the buffer
	// can't fail, so we only have to check if this fails.
	_, err := w.w.Write(w.buf.Bytes())
	return err
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case Int:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case Float:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return errors.Errorf("%v cannot be represented in JSON", v.num)
		}
		s := strconv.FormatFloat(v.num, 'g', -1, 64)
		buf.WriteString(s)
		if !strings.ContainsAny(s, ".eE") {
			buf.WriteString(".0")
		}
	case Bool:
		buf.WriteString(strconv.FormatBool(v.i != 0))
	case String:
		writeString(buf, v.str)
	default:
		return errors.New("invalid value")
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	// Marshaling a string cannot fail.
	b, _ := json.Marshal(s)
	buf.Write(b)
}
