// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchplot renders series of benchmark measurements as SVG
// line charts and heat maps.
//
// A Figure is a grid of Panels. Each Panel plots one or more Lines
// against a pair of axes and may carry a Secondary axis for a second
// quantity over the same X values. Secondary axes are drawn as a
// companion panel directly below the primary one, aligned to it and
// sharing its X range. A Panel may instead hold a Heat, a grid of
// values over two variables.
//
// Rendering takes an explicit Style; there is no package-level
// drawing state.
package benchplot

import (
	"fmt"
	"math"
	"strings"

	"github.com/lsmbench/microbench/benchseries"
	"github.com/pkg/errors"
)

// A Figure is a named grid of panels rendered to a single file.
type Figure struct {
	// Name determines the output file name, Name + ".svg". It
	// must be non-empty and must not contain path separators.
	Name string

	Panels []*Panel

	// Cols is the number of panel columns. If Cols is 0, all
	// panels are laid out in a single row.
	Cols int
}

// A Panel is a single chart within a Figure.
type Panel struct {
	Title string
	X, Y  Axis
	Lines []Line

	// Secondary, if non-nil, plots a second quantity against the
	// same X values.
	Secondary *Secondary

	// Heat, if non-nil, is drawn in place of Lines. The panel's
	// axes then only supply labels.
	Heat *Heat
}

// A Heat is a grid of values drawn as colored cells, each labeled with
// its value. Columns and rows are spaced evenly, in the order given,
// whatever the values of Xs and Ys.
type Heat struct {
	// Label names the quantity shown by color.
	Label string

	Xs, Ys []float64

	// Z[i][j] is the value at Xs[i], Ys[j]. NaN marks a cell with
	// no data.
	Z [][]float64
}

// Range returns the smallest and largest values in h, ignoring
// empty cells.
func (h *Heat) Range() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, col := range h.Z {
		for _, z := range col {
			if !math.IsNaN(z) {
				min, max = math.Min(min, z), math.Max(max, z)
			}
		}
	}
	return min, max
}

// Column returns column i of h as a Series of (Ys[j], Z[i][j])
// points, leaving out empty cells. The Series is named after Xs[i].
func (h *Heat) Column(i int) benchseries.Series {
	s := benchseries.Series{Name: fmt.Sprint(h.Xs[i])}
	for j, z := range h.Z[i] {
		if !math.IsNaN(z) {
			s.Points = append(s.Points, benchseries.Point{X: h.Ys[j], Y: z})
		}
	}
	return s
}

// A Secondary is the second Y axis of a Panel.
type Secondary struct {
	Y     Axis
	Lines []Line
}

// An Axis describes the scale of one panel axis.
type Axis struct {
	Label string

	// Log selects a logarithmic scale. Every plotted value on a
	// log axis must be positive.
	Log bool

	// Min and Max fix the axis range. If Min >= Max, the range
	// is fitted to the data.
	Min, Max float64

	// Inverted draws the axis from Max to Min.
	Inverted bool
}

func (a Axis) fixed() bool {
	return a.Min < a.Max
}

// A Line is one series drawn in a panel.
type Line struct {
	// Label is the legend entry for the line. Lines with no Label
	// are left out of the legend.
	Label string

	Series benchseries.Series

	// Color, Marker, and Dash select the Style's palette color,
	// marker shape, and dash pattern. Dash 0 is a solid line.
	Color, Marker, Dash int

	// NoMarker draws the line without point markers.
	NoMarker bool
}

// FileName returns the name of the file Render writes fig to.
func (fig *Figure) FileName() string {
	return fig.Name + ".svg"
}

// Check reports whether fig can be rendered: it needs a plain file
// name and at least one panel, and every point must be finite and
// fit its axes. Render checks fig itself; callers drawing several
// figures check them all first.
func (fig *Figure) Check() error {
	if fig.Name == "" {
		return errors.New("figure has no name")
	}
	if strings.ContainsAny(fig.Name, `/\`) || fig.Name == "." || fig.Name == ".." {
		return errors.Errorf("figure name %q is not a plain file name", fig.Name)
	}
	if len(fig.Panels) == 0 {
		return errors.Errorf("figure %s has no panels", fig.Name)
	}
	if fig.Cols < 0 {
		return errors.Errorf("figure %s: negative column count %d", fig.Name, fig.Cols)
	}
	for i, p := range fig.Panels {
		if p == nil {
			return errors.Errorf("figure %s: panel %d is nil", fig.Name, i)
		}
		if p.Heat != nil {
			if len(p.Lines) > 0 || p.Secondary != nil {
				return errors.Errorf("figure %s: panel %q has both a heat map and lines", fig.Name, p.Title)
			}
			if err := checkHeat(p.Heat); err != nil {
				return errors.Wrapf(err, "figure %s: panel %q", fig.Name, p.Title)
			}
			continue
		}
		if err := checkLines(p.X, p.Y, p.Lines); err != nil {
			return errors.Wrapf(err, "figure %s: panel %q", fig.Name, p.Title)
		}
		if p.Secondary != nil {
			if err := checkLines(p.X, p.Secondary.Y, p.Secondary.Lines); err != nil {
				return errors.Wrapf(err, "figure %s: panel %q secondary axis", fig.Name, p.Title)
			}
		}
	}
	return nil
}

// checkLines rejects values that cannot be drawn on the given axes.
func checkLines(x, y Axis, lines []Line) error {
	for _, l := range lines {
		for _, pt := range l.Series.Points {
			if !finite(pt.X) || !finite(pt.Y) {
				return errors.Errorf("line %q: point (%v, %v) is not finite", l.Label, pt.X, pt.Y)
			}
			if x.Log && !(pt.X > 0) {
				return errors.Errorf("line %q: x=%v on log axis %q", l.Label, pt.X, x.Label)
			}
			if y.Log && !(pt.Y > 0) {
				return errors.Errorf("line %q: y=%v at x=%v on log axis %q", l.Label, pt.Y, pt.X, y.Label)
			}
		}
	}
	return nil
}

// checkHeat rejects grids whose shape does not match their labels, or
// that hold no value or an infinite one.
func checkHeat(h *Heat) error {
	if len(h.Xs) == 0 || len(h.Ys) == 0 {
		return errors.New("heat map has no cells")
	}
	if len(h.Z) != len(h.Xs) {
		return errors.Errorf("heat map has %d columns of values for %d columns", len(h.Z), len(h.Xs))
	}
	empty := true
	for i, col := range h.Z {
		if len(col) != len(h.Ys) {
			return errors.Errorf("heat map column %v has %d values for %d rows", h.Xs[i], len(col), len(h.Ys))
		}
		for j, z := range col {
			if math.IsInf(z, 0) {
				return errors.Errorf("heat map cell (%v, %v) is not finite", h.Xs[i], h.Ys[j])
			}
			if !math.IsNaN(z) {
				empty = false
			}
		}
	}
	if empty {
		return errors.New("heat map has no values")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
