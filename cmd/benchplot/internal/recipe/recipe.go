// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package recipe turns the records of a benchmark family into a
// figure.
//
// Each Recipe knows the fields one family of benchmarks reports and
// how they are charted: which records to keep, how to group them into
// lines, and how to label and scale the axes. A Chart does the same
// for an arbitrary X/Y pair given on the command line.
package recipe

import (
	"path/filepath"
	"strings"

	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/benchproc"
	"github.com/pkg/errors"
)

// A Recipe builds the figure for one benchmark family.
type Recipe struct {
	// Name is the name of the figure, and so of the file it is
	// written to.
	Name string

	// Family is the name of the benchmark directory whose records
	// this recipe charts. It is usually the same as Name.
	Family string

	// Doc is a one-line description for usage messages.
	Doc string

	// Palette names the ColorBrewer palette the figure is drawn
	// with, unless the user picks one.
	Palette string

	build func(recs []*benchfmt.Record) (*Result, error)
}

// A Result is a built figure together with any problems noticed in
// the data that did not prevent building it.
type Result struct {
	Figure   *benchplot.Figure
	Warnings []error
}

// Build builds r's figure from recs.
func (r *Recipe) Build(recs []*benchfmt.Record) (*Result, error) {
	res, err := r.build(recs)
	if err != nil {
		return nil, errors.Wrap(err, r.Name)
	}
	res.Figure.Name = r.Name
	return res, nil
}

// All returns every recipe, in the order they are documented.
func All() []*Recipe {
	return append([]*Recipe(nil), recipes...)
}

// Lookup returns the recipe with the given name, or the first recipe
// of the given family, or nil.
func Lookup(name string) *Recipe {
	if rs := Select(name); len(rs) > 0 {
		return rs[0]
	}
	return nil
}

// Select returns the recipe with the given name or, if there is none,
// every recipe of the given family.
func Select(name string) []*Recipe {
	var family []*Recipe
	for _, r := range recipes {
		if r.Name == name {
			return []*Recipe{r}
		}
		if r.Family == name {
			family = append(family, r)
		}
	}
	return family
}

// ForPath guesses the recipes for a record file from the directories
// in its path, innermost first. Benchmarks write their records to
// "<family>/data.jsonl", so "microbench/bloom_fpr/data.jsonl" selects
// the bloom_fpr recipe. A family with several charts selects them
// all. ForPath returns nil if no directory names a family.
func ForPath(path string) []*Recipe {
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if rs := Select(filepath.Base(dir)); len(rs) > 0 {
			return rs
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// grouping is the set of lines taken from one family's records.
type grouping struct {
	groups   []*benchproc.Group
	warnings []error
}

// flagFields are the build switches benchmarks record. When one is
// part of a grouping, every record must hold a JSON boolean for it.
var flagFields = map[string]bool{
	"unsafe":              true,
	"use_unsafe":          true,
	"cascading":           true,
	"std_partition_point": true,
}

// group keeps the records matching filter and partitions them by the
// projection "by" into groups of (x, y) points. Fields outside the
// projection that vary among points with the same x are reported as
// warnings. A record whose grouping flag is missing or not a boolean
// is an error, even if the filter would drop it.
func group(recs []*benchfmt.Record, filter, by, x, y string) (*grouping, error) {
	if filter == "" {
		filter = "*"
	}
	f, err := benchproc.NewFilter(filter)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing filter %q", filter)
	}
	var pp benchproc.ProjectionParser
	schema, err := pp.Parse(by, f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing grouping %q", by)
	}
	pp.Exclude(x, y)
	g := benchproc.NewGrouper(schema, x, y, pp.Residue())

	var flags []string
	for _, field := range schema.Fields() {
		if flagFields[field.Name] {
			flags = append(flags, field.Name)
		}
	}

	n := 0
	for _, rec := range recs {
		for _, key := range flags {
			if _, err := rec.Bool(key); err != nil {
				return nil, err
			}
		}
		if !f.Match(rec) {
			continue
		}
		if err := g.Add(rec); err != nil {
			return nil, err
		}
		n++
	}
	if n == 0 {
		if filter == "*" {
			return nil, errors.New("no records")
		}
		return nil, errors.Errorf("no records match %s", filter)
	}

	gs := &grouping{groups: g.Groups()}
	for _, grp := range gs.groups {
		key := grp.Key.String()
		for _, w := range grp.Warnings {
			if key != "" {
				w = errors.Errorf("%s: %v", key, w)
			}
			gs.warnings = append(gs.warnings, w)
		}
	}
	return gs, nil
}

// find returns the group whose key has the given value for key, or
// nil.
func (gs *grouping) find(key, value string) *benchproc.Group {
	for _, g := range gs.groups {
		if keyValue(g, key) == value {
			return g
		}
	}
	return nil
}

// keyValue returns the value of key in g's key, or "" if the key was
// not projected.
func keyValue(g *benchproc.Group, key string) string {
	for _, f := range g.Key.Schema().Fields() {
		if f.Name == key {
			return g.Key.Get(f)
		}
	}
	return ""
}

// labels returns a legend label for each group, naming only the key
// fields that differ between groups. If all groups agree, the single
// label is def.
func (gs *grouping) labels(def string) []string {
	keys := make([]benchproc.Config, len(gs.groups))
	for i, g := range gs.groups {
		keys[i] = g.Key
	}
	fields := benchproc.NonSingularFields(keys)
	out := make([]string, len(gs.groups))
	for i, g := range gs.groups {
		if len(fields) == 0 {
			out[i] = def
			continue
		}
		vals := make([]string, len(fields))
		for j, f := range fields {
			vals[j] = g.Key.Get(f)
		}
		out[i] = strings.Join(vals, ", ")
	}
	return out
}

// safety labels a use-unsafe flag.
func safety(unsafe string) string {
	if unsafe == "true" {
		return "unsafe"
	}
	return "safe"
}
