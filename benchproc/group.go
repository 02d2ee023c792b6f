// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lsmbench/microbench/benchfmt"
)

// A Point is a single (independent, dependent) observation.
type Point struct {
	X, Y float64

	// Record is the record this point was taken from. It lets
	// callers derive other series from the same records.
	Record *benchfmt.Record
}

// A Group is the sequence of points taken from records that share
// the same key Config, sorted ascending by X.
//
// Points with equal X keep the order in which their records were
// added, so a Group is reproducible for identical input.
type Group struct {
	Key    Config
	Points []Point

	// Warnings reports points with equal X whose records varied
	// in fields outside the key, which usually means a file
	// mixes several experiments.
	Warnings []error
}

// XS returns the X values of g's points.
func (g *Group) XS() []float64 {
	xs := make([]float64, len(g.Points))
	for i, p := range g.Points {
		xs[i] = p.X
	}
	return xs
}

// YS returns the Y values of g's points.
func (g *Group) YS() []float64 {
	ys := make([]float64, len(g.Points))
	for i, p := range g.Points {
		ys[i] = p.Y
	}
	return ys
}

// A Grouper partitions records into Groups.
type Grouper struct {
	by, residue *Schema
	x, y        string

	groups map[Config]*groupBuilder
}

type groupBuilder struct {
	points   []Point
	residues []Config
}

// NewGrouper returns a Grouper that keys records by Schema "by" and
// takes the numeric fields x and y from each record as a point.
// residue may be nil; if it is not, it is used to detect hidden
// variation among points with equal X (see Group.Warnings).
func NewGrouper(by *Schema, x, y string, residue *Schema) *Grouper {
	return &Grouper{
		by: by, residue: residue, x: x, y: y,
		groups: make(map[Config]*groupBuilder),
	}
}

// Add adds rec to its group. It returns an error if rec lacks a key
// field or if x or y is missing or not numeric.
func (g *Grouper) Add(rec *benchfmt.Record) error {
	key, err := g.by.Project(rec)
	if err != nil {
		return err
	}
	x, err := rec.Float(g.x)
	if err != nil {
		return err
	}
	if math.IsNaN(x) {
		return &benchfmt.FieldError{Pos: rec.Pos(), Key: g.x, Msg: "independent variable is NaN"}
	}
	y, err := rec.Float(g.y)
	if err != nil {
		return err
	}

	b := g.groups[key]
	if b == nil {
		b = new(groupBuilder)
		g.groups[key] = b
	}
	b.points = append(b.points, Point{x, y, rec})
	if g.residue != nil {
		res, err := g.residue.Project(rec)
		if err != nil {
			return err
		}
		b.residues = append(b.residues, res)
	}
	return nil
}

// Groups returns the groups built so far, ordered by their key Config.
func (g *Grouper) Groups() []*Group {
	keys := make([]Config, 0, len(g.groups))
	for k := range g.groups {
		keys = append(keys, k)
	}
	SortConfigs(keys)

	out := make([]*Group, 0, len(keys))
	for _, k := range keys {
		b := g.groups[k]
		// Sort an index permutation so residues stay paired
		// with their points.
		perm := make([]int, len(b.points))
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(i, j int) bool {
			return b.points[perm[i]].X < b.points[perm[j]].X
		})
		group := &Group{Key: k, Points: make([]Point, len(perm))}
		for i, pi := range perm {
			group.Points[i] = b.points[pi]
		}
		if b.residues != nil {
			group.Warnings = g.residueWarnings(b, perm)
		}
		out = append(out, group)
	}
	return out
}

func (g *Grouper) residueWarnings(b *groupBuilder, perm []int) []error {
	var warns []error
	for start := 0; start < len(perm); {
		end := start + 1
		x := b.points[perm[start]].X
		for end < len(perm) && b.points[perm[end]].X == x {
			end++
		}
		if end-start > 1 {
			var cfgs []Config
			for _, pi := range perm[start:end] {
				cfgs = append(cfgs, b.residues[pi])
			}
			if nsk := NonSingularFields(cfgs); len(nsk) > 0 {
				names := make([]string, len(nsk))
				for i, f := range nsk {
					names[i] = f.Name
				}
				warns = append(warns, fmt.Errorf("points at %s=%s vary in %s",
					g.x, strconv.FormatFloat(x, 'g', -1, 64), strings.Join(names, ", ")))
			}
		}
		start = end
	}
	return warns
}

// GroupBy filters recs with filter (which may be nil to keep every
// record), partitions the rest by Schema "by", and returns the groups
// with points (x, y) sorted by x. Every record that passes the filter
// lands in exactly one group. The first record that lacks a required
// field aborts grouping.
func GroupBy(recs []*benchfmt.Record, filter *Filter, by *Schema, x, y string) ([]*Group, error) {
	g := NewGrouper(by, x, y, nil)
	for _, rec := range recs {
		if filter != nil && !filter.Match(rec) {
			continue
		}
		if err := g.Add(rec); err != nil {
			return nil, err
		}
	}
	return g.Groups(), nil
}
