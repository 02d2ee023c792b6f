// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Less reports whether c sorts before o. It panics if c and o come
// from different Schemas.
func (c Config) Less(o Config) bool {
	if c.c.schema != o.c.schema {
		panic("cannot compare Configs from different Schemas")
	}
	return compareVals(c.c.schema.fields, c.c.vals, o.c.vals) < 0
}

// compareVals compares two value rows field by field. Values a
// field's order cannot tell apart are compared as strings, so only
// identical rows compare equal.
func compareVals(fields []Field, a, b []string) int {
	at := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	for _, f := range fields {
		x, y := at(a, f.idx), at(b, f.idx)
		if x == y {
			continue
		}
		if c := f.cmp(x, y); c != 0 {
			return c
		}
		return strings.Compare(x, y)
	}
	return 0
}

// SortConfigs sorts configs into Schema order. All configs must come
// from the same Schema.
func SortConfigs(configs []Config) {
	s := commonSchema(configs)
	if s == nil {
		return
	}
	slices.SortFunc(configs, func(a, b Config) int {
		return compareVals(s.fields, a.c.vals, b.c.vals)
	})
}

// commonSchema returns the Schema shared by configs, or nil if there
// are none. It panics if the Schemas differ.
func commonSchema(configs []Config) *Schema {
	if len(configs) == 0 {
		return nil
	}
	s := configs[0].Schema()
	for _, c := range configs[1:] {
		if c.Schema() != s {
			panic("Configs must all have the same Schema")
		}
	}
	return s
}

var builtinOrders = map[string]func(a, b string) int{
	"alpha": strings.Compare,
	"num":   compareNum,
}

// compareNum orders numbers by value with NaN after every other
// number. Values that are not numbers come last and are unordered
// among themselves.
func compareNum(a, b string) int {
	x, errx := parseNum(a)
	y, erry := parseNum(b)
	if errx != nil || erry != nil {
		return compareLast(errx != nil, erry != nil)
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		return compareLast(math.IsNaN(x), math.IsNaN(y))
	}
	return cmp.Compare(x, y)
}

// compareLast orders values flagged last after the rest.
func compareLast(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

const numPrefixes = "KMGTPEZY"

// parseNum parses a number that may carry an SI or IEC prefix and a
// trailing "B", such as "4k", "64KiB" or "1Mi".
func parseNum(x string) (float64, error) {
	if v, err := strconv.ParseFloat(x, 64); err == nil {
		return v, nil
	}

	s := x
	if n := len(s); n > 0 && (s[n-1] == 'B' || s[n-1] == 'b') {
		s = s[:n-1]
	}
	base := 1000.0
	if rest, ok := strings.CutSuffix(s, "i"); ok {
		base, s = 1024, rest
	}
	exp := 0
	if n := len(s); n > 0 {
		pre := s[n-1]
		if pre == 'k' {
			pre = 'K'
		}
		if i := strings.IndexByte(numPrefixes, pre); i >= 0 {
			exp, s = i+1, s[:n-1]
		}
	}
	if base == 1024 && exp == 0 {
		return 0, strconv.ErrSyntax
	}
	if s == "" || strings.Trim(s, "0123456789.") != "" {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, strconv.ErrSyntax
	}
	return v * math.Pow(base, float64(exp)), nil
}
