// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchseries derives plotted series from grouped records.
//
// A Series is an ordered sequence of (X, Y) points with a name. Series
// are built from benchproc Groups and transformed point-wise with Map,
// or combined pair-wise with PercentDiff. Pair-wise derivations
// require both operands to have the same X sequence; a mismatch is
// reported as a *PreconditionError rather than truncated or padded.
package benchseries

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/lsmbench/microbench/benchproc"
)

// A Point is one (X, Y) observation of a Series.
type Point struct {
	X, Y float64
}

// A Series is a named sequence of points ordered by X.
//
// Series values are never modified in place: every derivation
// returns a new Series.
type Series struct {
	Name   string
	Points []Point
}

// FromGroup returns the (X, Y) points of g as a Series named name.
func FromGroup(name string, g *benchproc.Group) Series {
	s := Series{Name: name, Points: make([]Point, len(g.Points))}
	for i, p := range g.Points {
		s.Points[i] = Point{p.X, p.Y}
	}
	return s
}

// FromField returns a Series with the X values of g and the Y values
// taken from field key of each point's record instead of the group's
// dependent variable. It returns an error if any record lacks key or
// its value is not numeric.
func FromField(name string, g *benchproc.Group, key string) (Series, error) {
	s := Series{Name: name, Points: make([]Point, len(g.Points))}
	for i, p := range g.Points {
		y, err := p.Record.Float(key)
		if err != nil {
			return Series{}, err
		}
		s.Points[i] = Point{p.X, y}
	}
	return s, nil
}

// Len returns the number of points in s.
func (s Series) Len() int {
	return len(s.Points)
}

// XS returns the X values of s.
func (s Series) XS() []float64 {
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
	}
	return xs
}

// YS returns the Y values of s.
func (s Series) YS() []float64 {
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		ys[i] = p.Y
	}
	return ys
}

// Map returns a copy of s with f applied to every Y value.
func (s Series) Map(f func(y float64) float64) Series {
	out := Series{Name: s.Name, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = Point{p.X, f(p.Y)}
	}
	return out
}

// Rename returns a copy of s named name.
func (s Series) Rename(name string) Series {
	return Series{Name: name, Points: append([]Point(nil), s.Points...)}
}

// A PreconditionError reports that the operands of a pair-wise
// derivation cannot be paired.
type PreconditionError struct {
	Op    string // Derivation that failed, such as "percent difference"
	Base  string // Name of the base series
	Other string // Name of the other series
	Msg   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s of %q against %q: %s", e.Op, e.Other, e.Base, e.Msg)
}

// PercentDiff returns the point-wise percent difference of other
// relative to base, 100*(other-base)/base, named after other.
//
// base and other must be non-empty, have the same length, and have
// identical X values at every index. Every base Y value must be
// non-zero. If any of these conditions does not hold, PercentDiff
// returns a *PreconditionError.
func PercentDiff(base, other Series) (Series, error) {
	fail := func(format string, args ...interface{}) (Series, error) {
		return Series{}, &PreconditionError{
			Op: "percent difference", Base: base.Name, Other: other.Name,
			Msg: fmt.Sprintf(format, args...),
		}
	}
	if len(base.Points) == 0 {
		return fail("base series is empty")
	}
	if len(other.Points) == 0 {
		return fail("series is empty")
	}
	if len(base.Points) != len(other.Points) {
		return fail("series have %d and %d points", len(base.Points), len(other.Points))
	}
	out := Series{Name: other.Name, Points: make([]Point, len(base.Points))}
	for i, bp := range base.Points {
		op := other.Points[i]
		if bp.X != op.X {
			return fail("x values differ at index %d: %v != %v", i, bp.X, op.X)
		}
		if bp.Y == 0 {
			return fail("base value is zero at x=%v", bp.X)
		}
		out.Points[i] = Point{bp.X, 100 * (op.Y - bp.Y) / bp.Y}
	}
	return out, nil
}

// A Summary describes the Y values of a Series.
type Summary struct {
	N              int
	Min, Max, Mean float64
	GeoMean        float64
	HasGeoMean     bool
}

// Summarize computes summary statistics of the Y values of s. The
// geometric mean is only defined when every value is positive;
// HasGeoMean reports whether it is.
func Summarize(s Series) Summary {
	sample := stats.Sample{Xs: s.YS()}
	if len(sample.Xs) == 0 {
		return Summary{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN(), GeoMean: math.NaN()}
	}
	min, max := sample.Bounds()
	sum := Summary{N: len(sample.Xs), Min: min, Max: max, Mean: sample.Mean()}
	if min > 0 {
		sum.GeoMean = sample.GeoMean()
		sum.HasGeoMean = !math.IsNaN(sum.GeoMean)
	} else {
		sum.GeoMean = math.NaN()
	}
	return sum
}
