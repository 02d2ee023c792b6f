// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"

	"github.com/lsmbench/microbench/benchfmt"
)

// An extractor returns some component of a record as a string, and
// reports whether the record has that component.
type extractor func(*benchfmt.Record) (string, bool)

// newExtractor returns a function that extracts some component of a
// record.
//
// The key must be one of the following:
//
// - ".file" for the name of the file the record was read from.
//
// - Any other string is a record field. Field values are rendered in
// their canonical textual form (see benchfmt.Value.String).
func newExtractor(key string) (extractor, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("key must not be empty")
	}

	switch key {
	case ".file":
		return extractFile, nil
	}

	return func(rec *benchfmt.Record) (string, bool) {
		return extractField(rec, key)
	}, nil
}

func extractFile(rec *benchfmt.Record) (string, bool) {
	return rec.FileName, rec.FileName != ""
}

func extractField(rec *benchfmt.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return "", false
	}
	return v.String(), true
}
