// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchproc/internal/parse"
)

// A Filter filters records according to a filter expression, such as
// "item_count:1000" or "impl:(standard blocked) -unsafe:true". See
// "go doc github.com/lsmbench/microbench/benchproc/syntax" for the
// syntax.
type Filter struct {
	// match is the filter function that implements this filter.
	match filterFn
}

// filterFn reports whether a record matches.
type filterFn func(*benchfmt.Record) bool

// NewFilter constructs a record filter from a boolean filter
// expression.
func NewFilter(query string) (*Filter, error) {
	q, err := parse.ParseFilter(query)
	if err != nil {
		return nil, err
	}
	m, err := newFilterFn(q)
	if err != nil {
		return nil, err
	}
	return &Filter{m}, nil
}

func newFilterFn(q parse.Filter) (filterFn, error) {
	switch q := q.(type) {
	case *parse.FilterOp:
		var subs []filterFn
		for _, sub := range q.Exprs {
			m, err := newFilterFn(sub)
			if err != nil {
				return nil, err
			}
			subs = append(subs, m)
		}
		return filterOp(q.Op, subs), nil

	case *parse.FilterMatch:
		ext, err := newExtractor(q.Key)
		if err != nil {
			return nil, &parse.SyntaxError{Off: q.Off, Msg: err.Error()}
		}
		return func(rec *benchfmt.Record) bool {
			val, ok := ext(rec)
			// A record without the key never matches, even
			// a pattern that would match the empty string.
			return ok && q.Match(val)
		}, nil
	}
	panic("unknown filter node")
}

func filterOp(op parse.Op, subs []filterFn) filterFn {
	switch op {
	case parse.OpNot:
		sub := subs[0]
		return func(rec *benchfmt.Record) bool {
			return !sub(rec)
		}

	case parse.OpAnd:
		return func(rec *benchfmt.Record) bool {
			for _, sub := range subs {
				if !sub(rec) {
					return false
				}
			}
			return true
		}

	case parse.OpOr:
		return func(rec *benchfmt.Record) bool {
			for _, sub := range subs {
				if sub(rec) {
					return true
				}
			}
			return false
		}
	}
	panic("unknown filter op")
}

// Match reports whether rec matches the filter.
func (f *Filter) Match(rec *benchfmt.Record) bool {
	return f.match(rec)
}
