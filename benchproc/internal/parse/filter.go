// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"strconv"
	"strings"
)

// A parser walks a token stream. Errors are recorded in the
// tokenizer's error tracker, after which every token is the end
// token, so callers unwind without checking for failure.
type parser struct {
	toks tokenizer
}

func newParser(q string) *parser {
	return &parser{toks: newTokenizer(q)}
}

// peek returns the next key token without consuming it.
func (p *parser) peek() tok {
	t, _ := p.toks.key()
	return t
}

// nextKey consumes and returns the next key token.
func (p *parser) nextKey() tok {
	t, rest := p.toks.key()
	p.toks = rest
	return t
}

// nextValue consumes and returns the next value token.
func (p *parser) nextValue() tok {
	t, rest := p.toks.value()
	p.toks = rest
	return t
}

// failAt records msg at the position of at and stops the parse.
func (p *parser) failAt(at tokenizer, msg string) {
	_, p.toks = at.error(msg)
}

// failTok records msg at the start of t and stops the parse.
func (p *parser) failTok(t tok, msg string) {
	at := p.toks
	at.q = at.errt.qOrig[t.Off:]
	p.failAt(at, msg)
}

// finish reports leftover input and returns the first error, if any.
func (p *parser) finish() error {
	p.toks = p.toks.end()
	if err := p.toks.errt.err; err != nil {
		return err
	}
	return nil
}

// ParseFilter parses a filter expression into a Filter tree.
func ParseFilter(q string) (Filter, error) {
	p := newParser(q)
	f := p.orExpr()
	if err := p.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) orExpr() Filter {
	terms := []Filter{p.andExpr()}
	for p.peek().Kind == 'O' {
		p.nextKey()
		terms = append(terms, p.andExpr())
	}
	return join(OpOr, terms)
}

func (p *parser) andExpr() Filter {
	terms := []Filter{p.match()}
	for {
		switch t := p.peek(); t.Kind {
		case 'A':
			// Explicit AND means the same as juxtaposition.
			p.nextKey()
		case '(', '-', '*', 'w', 'q':
			terms = append(terms, p.match())
		case ')', 'O', 0:
			return join(OpAnd, terms)
		default:
			p.failAt(p.toks, "unexpected "+strconv.Quote(t.Tok))
			return join(OpAnd, terms)
		}
	}
}

func join(op Op, terms []Filter) Filter {
	if len(terms) == 1 {
		return terms[0]
	}
	return &FilterOp{op, terms}
}

func (p *parser) match() Filter {
	start := p.toks
	t := p.nextKey()
	switch t.Kind {
	case '(':
		f := p.orExpr()
		if at := p.toks; p.nextKey().Kind != ')' {
			p.failAt(at, "missing \")\"")
		}
		return f
	case '-':
		return &FilterOp{OpNot, []Filter{p.match()}}
	case '*':
		return &FilterOp{OpAnd, nil}
	case 'w', 'q':
		return p.keyMatch(start, t)
	}
	p.failAt(start, "expected key:value or subexpression")
	return nil
}

// keyMatch parses the rest of a key:value match after key.
func (p *parser) keyMatch(start tokenizer, key tok) Filter {
	if p.nextKey().Kind != ':' {
		p.failAt(start, "expected key:value")
		return nil
	}
	val := p.nextValue()
	switch val.Kind {
	case 'w', 'q', 'r':
		return p.valueMatch(key, val)
	case '(':
	default:
		p.failAt(start, "expected key:value")
		return nil
	}

	// A parenthesized list of values matches any of them.
	var alts []Filter
	for {
		at := p.toks
		val := p.nextValue()
		switch val.Kind {
		case 'w', 'q', 'r':
			alts = append(alts, p.valueMatch(key, val))
			continue
		case ')':
			if len(alts) == 0 {
				p.failAt(at, "nothing to match")
			}
		default:
			p.failAt(at, "expected value")
		}
		return &FilterOp{OpOr, alts}
	}
}

// valueMatch builds the match of key against val. A bare value
// starting with a comparison operator matches numerically; quote it
// to match the text literally.
func (p *parser) valueMatch(key, val tok) Filter {
	m := &FilterMatch{Key: key.Tok, Off: key.Off}
	switch val.Kind {
	case 'r':
		m.Regexp = val.Regexp
		return m
	case 'q':
		m.Lit = val.Tok
		return m
	}
	for _, cmp := range []string{"<=", ">=", "<", ">"} {
		num, ok := strings.CutPrefix(val.Tok, cmp)
		if !ok {
			continue
		}
		if num == "" {
			p.failTok(val, "expected number after "+strconv.Quote(cmp))
			return m
		}
		x, err := strconv.ParseFloat(num, 64)
		if err != nil {
			p.failTok(val, "bad number "+strconv.Quote(num))
			return m
		}
		m.Cmp, m.Num = cmp, x
		return m
	}
	m.Lit = val.Tok
	return m
}
