// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchproc/internal/parse"
)

// A ProjectionParser parses projection expressions, which pick the
// record fields that tell groups apart and say how to order them.
//
// Every key projected by a ProjectionParser, or passed to Exclude, is
// left out of its Residue. A chart excludes its X and Y fields this
// way, so the residue holds exactly the fields nobody looks at.
type ProjectionParser struct {
	keys map[string]bool
}

// Parse parses a single projection expression, such as
// "impl,unsafe@(false true)". See "go doc
// github.com/lsmbench/microbench/benchproc/syntax" for the syntax.
//
// Fixed orders also restrict which records are accepted: a record
// whose value is not listed is filtered out. A record that lacks the
// field is not, and projecting it fails. Parse adds these
// restrictions to filter, but only once the whole expression has
// parsed.
func (p *ProjectionParser) Parse(proj string, filter *Filter) (*Schema, error) {
	parts, err := parse.ParseProjection(proj)
	if err != nil {
		return nil, err
	}
	s := newSchema()
	restrict := []filterFn{}
	for _, part := range parts {
		accept, err := p.addProjection(s, proj, part)
		if err != nil {
			return nil, err
		}
		if accept != nil {
			restrict = append(restrict, accept)
		}
	}
	if len(restrict) > 0 {
		filter.match = filterOp(parse.OpAnd, append(restrict, filter.match))
	}
	return s, nil
}

// Exclude keeps keys out of the Residue without projecting them.
func (p *ProjectionParser) Exclude(keys ...string) {
	if p.keys == nil {
		p.keys = make(map[string]bool)
	}
	for _, k := range keys {
		p.keys[k] = true
	}
}

// Residue returns a Schema of every record field that has been
// neither projected nor excluded. It gains a field the first time it
// sees a new key, orders values by first appearance, and never
// reports a missing field.
func (p *ProjectionParser) Residue() *Schema {
	s := newSchema()
	s.project = append(s.project, func(rec *benchfmt.Record, row *[]string) error {
		for _, f := range rec.Fields {
			if p.keys[f.Key] {
				continue
			}
			field, ok := s.byName[f.Key]
			if !ok {
				field = s.addField(f.Key, nil)
			}
			(*row)[field.idx] = s.intern(f.Value.String())
		}
		return nil
	})
	return s
}

// addProjection adds the field described by proj to s. For fixed
// orders it returns a filter accepting only the listed values.
func (p *ProjectionParser) addProjection(s *Schema, q string, proj parse.Projection) (filterFn, error) {
	var cmp func(a, b string) int
	var fixed map[string]int
	switch proj.Order {
	case "first":
		// Observation order; addField sets it up.
	case "fixed":
		fixed = make(map[string]int, len(proj.Fixed))
		for i, v := range proj.Fixed {
			fixed[v] = i
		}
		cmp = func(a, b string) int { return fixed[a] - fixed[b] }
	default:
		var ok bool
		if cmp, ok = builtinOrders[proj.Order]; !ok {
			return nil, &parse.SyntaxError{Query: q, Off: proj.OrderOff, Msg: fmt.Sprintf("unknown order %q", proj.Order)}
		}
	}

	ext, err := newExtractor(proj.Key)
	if err != nil {
		return nil, &parse.SyntaxError{Query: q, Off: proj.KeyOff, Msg: err.Error()}
	}
	p.Exclude(proj.Key)

	key := proj.Key
	field := s.addField(key, cmp)
	s.project = append(s.project, func(rec *benchfmt.Record, row *[]string) error {
		val, ok := ext(rec)
		if !ok {
			return &benchfmt.FieldError{Pos: rec.Pos(), Key: key, Msg: "missing"}
		}
		(*row)[field.idx] = s.intern(val)
		return nil
	})

	if fixed == nil {
		return nil, nil
	}
	// A record without the field passes, so that projecting it
	// reports the missing field.
	return func(rec *benchfmt.Record) bool {
		val, ok := ext(rec)
		if !ok {
			return true
		}
		_, ok = fixed[val]
		return ok
	}, nil
}

// A Schema projects a fixed list of record fields into Configs. Two
// Configs from the same Schema are == exactly when their values are
// equal, so Configs work as map keys. A Schema also orders its
// Configs: by the first field, then the second, and so on, each by
// that field's own order.
type Schema struct {
	fields []Field
	byName map[string]Field

	// project fills a row from a record. A residue projection may
	// add fields, so it takes the row by pointer.
	project []func(rec *benchfmt.Record, row *[]string) error
	row     []string

	interns map[string]string

	// configs maps the encoded values of every Config produced so
	// far to its node. key is scratch space for encoding.
	configs map[string]*configNode
	key     []byte
}

func newSchema() *Schema {
	return &Schema{
		byName:  make(map[string]Field),
		interns: make(map[string]string),
		configs: make(map[string]*configNode),
	}
}

// addField appends a field to s. A nil cmp orders the field's values
// by first appearance.
func (s *Schema) addField(name string, cmp func(a, b string) int) Field {
	fi := &fieldInternal{schema: s, idx: len(s.fields), cmp: cmp}
	if cmp == nil {
		fi.seen = make(map[string]int)
		fi.cmp = func(a, b string) int { return fi.seen[a] - fi.seen[b] }
	}
	f := Field{name, fi}
	s.fields = append(s.fields, f)
	s.byName[name] = f
	s.row = append(s.row, "")
	return f
}

// Fields returns the fields of s in projection order. A Residue
// schema gains fields as records are projected.
//
// The caller must not modify the returned slice.
func (s *Schema) Fields() []Field {
	return s.fields
}

// A Field is one projected record field of a Schema.
type Field struct {
	Name string
	*fieldInternal
}

type fieldInternal struct {
	schema *Schema
	// idx is the position of this field's value in a Config.
	idx int
	// cmp orders two values of this field. It returns 0 for equal
	// or unordered values.
	cmp func(a, b string) int
	// seen, if non-nil, records the order values were first
	// observed in.
	seen map[string]int
}

func (f Field) String() string {
	return f.Name
}

// Project extracts the fields of s from rec as an immutable Config.
// If rec lacks a projected field, Project returns a
// *benchfmt.FieldError.
func (s *Schema) Project(rec *benchfmt.Record) (Config, error) {
	for i := range s.row {
		s.row[i] = ""
	}
	for _, project := range s.project {
		if err := project(rec, &s.row); err != nil {
			return Config{}, err
		}
	}
	return s.internRow(), nil
}

func (s *Schema) internRow() Config {
	// Empty trailing values are dropped, so Configs made before a
	// residue schema grew still equal the ones made after.
	row := s.row
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}

	// Length-prefix each value so that no two rows share a key.
	s.key = s.key[:0]
	for _, v := range row {
		s.key = strconv.AppendInt(s.key, int64(len(v)), 10)
		s.key = append(s.key, ':')
		s.key = append(s.key, v...)
	}
	if n, ok := s.configs[string(s.key)]; ok {
		return Config{n}
	}

	for _, f := range s.fields {
		if f.seen == nil {
			continue
		}
		var val string
		if f.idx < len(row) {
			val = row[f.idx]
		}
		if _, ok := f.seen[val]; !ok {
			f.seen[val] = len(f.seen)
		}
	}

	n := &configNode{s, append([]string(nil), row...)}
	s.configs[string(s.key)] = n
	return Config{n}
}

func (s *Schema) intern(v string) string {
	if str, ok := s.interns[v]; ok {
		return str
	}
	s.interns[v] = v
	return v
}

// A Config is an immutable tuple of field values, shaped by a Schema.
// Two Configs are == if they come from the same Schema and hold the
// same values.
type Config struct {
	c *configNode
}

type configNode struct {
	schema *Schema
	// vals is indexed by field index, with trailing ""s trimmed.
	vals []string
}

// IsZero reports whether c is the zero Config.
func (c Config) IsZero() bool {
	return c.c == nil
}

// Get returns the value of field f in c, or "" if c has no value for
// it. It panics if f belongs to another Schema.
func (c Config) Get(f Field) string {
	if c.IsZero() {
		panic("zero Config has no fields")
	}
	if c.c.schema != f.schema {
		panic("Config and Field have different Schemas")
	}
	if f.idx < len(c.c.vals) {
		return c.c.vals[f.idx]
	}
	return ""
}

// Schema returns the Schema of c, or nil for the zero Config.
func (c Config) Schema() *Schema {
	if c.IsZero() {
		return nil
	}
	return c.c.schema
}

// String returns c as space-separated key:value pairs in field
// order, leaving out empty values.
func (c Config) String() string {
	return c.format(nil, true)
}

// StringValues is like String, but without the keys.
func (c Config) StringValues() string {
	return c.format(nil, false)
}

// StringFields is like String, but includes only the given fields.
// Combined with NonSingularFields it labels a Config by just what
// sets it apart from its siblings.
func (c Config) StringFields(fields []Field) string {
	if fields == nil {
		return ""
	}
	return c.format(fields, true)
}

func (c Config) format(fields []Field, keys bool) string {
	if c.IsZero() {
		return "<zero>"
	}
	if fields == nil {
		fields = c.c.schema.fields
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		val := c.Get(f)
		switch {
		case val == "":
		case keys:
			parts = append(parts, f.Name+":"+val)
		default:
			parts = append(parts, val)
		}
	}
	return strings.Join(parts, " ")
}
