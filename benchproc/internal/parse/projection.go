// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"strconv"
	"strings"
)

// A Projection is one component of a projection expression: a record
// field to extract and the order to sort its values in.
type Projection struct {
	Key string

	// Order is "first" to sort values in the order they first
	// appear, "fixed" to sort them as listed in Fixed, or the name
	// of a built-in order such as "num".
	Order string

	// Fixed lists the only values a "fixed" projection accepts,
	// in sort order. Records with any other value are dropped.
	Fixed []string

	KeyOff, OrderOff int
}

// String returns p in projection syntax.
func (p Projection) String() string {
	var b strings.Builder
	b.WriteString(quoteWord(p.Key))
	switch p.Order {
	case "first":
	case "fixed":
		b.WriteString("@(")
		for i, v := range p.Fixed {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(quoteWord(v))
		}
		b.WriteByte(')')
	default:
		b.WriteString("@" + quoteWord(p.Order))
	}
	return b.String()
}

// ParseProjection parses a comma- or space-separated projection
// expression.
func ParseProjection(q string) ([]Projection, error) {
	p := newParser(q)
	var projs []Projection
	for p.peek().Kind != 0 {
		if len(projs) > 0 && p.peek().Kind == ',' {
			p.nextKey()
		}
		projs = append(projs, p.projection())
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return projs, nil
}

func (p *parser) projection() Projection {
	at := p.toks
	key := p.nextKey()
	if key.Kind != 'w' && key.Kind != 'q' {
		p.failAt(at, "expected key")
		return Projection{}
	}
	proj := Projection{
		Key:      key.Tok,
		KeyOff:   key.Off,
		Order:    "first",
		OrderOff: key.Off + len(key.Tok),
	}
	if p.peek().Kind != '@' {
		return proj
	}
	p.nextKey()

	at = p.toks
	order := p.nextKey()
	proj.OrderOff = order.Off
	switch order.Kind {
	case 'w', 'q':
		proj.Order = order.Tok
	case '(':
		proj.Order = "fixed"
		proj.Fixed = p.fixedOrder()
	default:
		p.failAt(at, "expected named sort order or parenthesized list")
	}
	return proj
}

// fixedOrder parses the values of a "key@(...)" order up to and
// including the closing parenthesis.
func (p *parser) fixedOrder() []string {
	var vals []string
	seen := make(map[string]bool)
	for {
		at := p.toks
		t := p.nextKey()
		switch t.Kind {
		case 'w', 'q':
			if seen[t.Tok] {
				p.failTok(t, "duplicate value "+strconv.Quote(t.Tok))
				return vals
			}
			seen[t.Tok] = true
			vals = append(vals, t.Tok)
		case ')':
			if len(vals) == 0 {
				p.failAt(at, "nothing to match")
			}
			return vals
		default:
			p.failAt(at, "missing )")
			return vals
		}
	}
}
