// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse implements parsers for record filter and projection
// expressions.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A Filter is a node in the boolean filter expression tree. It is
// either a *FilterOp or a *FilterMatch.
type Filter interface {
	isFilter()
	String() string
}

// An Op is a boolean operator in a filter expression.
type Op int

const (
	OpNot Op = iota
	OpAnd
	OpOr
)

// A FilterOp is a boolean operator over its sub-expressions. OpNot
// has exactly one sub-expression. An OpAnd with no sub-expressions
// matches everything and is how "*" is represented.
type FilterOp struct {
	Op    Op
	Exprs []Filter
}

func (*FilterOp) isFilter() {}

func (q *FilterOp) String() string {
	var op string
	switch q.Op {
	case OpNot:
		return fmt.Sprintf("-%s", q.Exprs[0])
	case OpAnd:
		if len(q.Exprs) == 0 {
			return "*"
		}
		op = " AND "
	case OpOr:
		op = " OR "
	}
	var buf strings.Builder
	buf.WriteByte('(')
	for i, e := range q.Exprs {
		if i > 0 {
			buf.WriteString(op)
		}
		buf.WriteString(e.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// A FilterMatch matches the value of a record field against a
// literal, a regular expression, or a numeric bound.
type FilterMatch struct {
	Key string

	// Regexp is the regular expression to match against the
	// value. If nil and Cmp is empty, the value must equal Lit
	// exactly.
	Regexp *regexp.Regexp
	Lit    string

	// Cmp is one of "<", "<=", ">", or ">=" for a numeric match
	// against Num. Values that are not numbers never match.
	Cmp string
	Num float64

	// Off is the byte offset of the key in the original query,
	// for error reporting.
	Off int
}

func (*FilterMatch) isFilter() {}

func (q *FilterMatch) String() string {
	switch {
	case q.Regexp != nil:
		return quoteWord(q.Key) + ":/" + q.Regexp.String() + "/"
	case q.Cmp != "":
		return quoteWord(q.Key) + ":" + q.Cmp + strconv.FormatFloat(q.Num, 'g', -1, 64)
	}
	return quoteWord(q.Key) + ":" + quoteWord(q.Lit)
}

// Match reports whether value matches this filter.
func (q *FilterMatch) Match(value string) bool {
	if q.Regexp != nil {
		return q.Regexp.MatchString(value)
	}
	if q.Cmp == "" {
		return value == q.Lit
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	switch q.Cmp {
	case "<":
		return v < q.Num
	case "<=":
		return v <= q.Num
	case ">":
		return v > q.Num
	case ">=":
		return v >= q.Num
	}
	return false
}
