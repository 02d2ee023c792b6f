// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recipe

import (
	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/benchseries"
)

// A Chart is a single-panel line chart of any two numeric fields.
type Chart struct {
	// Name is the name of the figure.
	Name string

	// X and Y are the record fields plotted on each axis.
	X, Y string

	// Group is a projection that splits records into lines. If it
	// is empty, all records form one line.
	Group string

	// Filter selects the records to plot. If it is empty, all
	// records are plotted.
	Filter string

	LogX, LogY bool
}

// Build builds c's figure from recs.
func (c *Chart) Build(recs []*benchfmt.Record) (*Result, error) {
	gs, err := group(recs, c.Filter, c.Group, c.X, c.Y)
	if err != nil {
		return nil, err
	}
	panel := &benchplot.Panel{
		X: benchplot.Axis{Label: c.X, Log: c.LogX},
		Y: benchplot.Axis{Label: c.Y, Log: c.LogY},
	}
	for i, label := range gs.labels(c.Y) {
		panel.Lines = append(panel.Lines, benchplot.Line{
			Label:  label,
			Series: benchseries.FromGroup(label, gs.groups[i]),
			Color:  i,
			Marker: i,
		})
	}
	return &Result{
		Figure:   &benchplot.Figure{Name: c.Name, Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}
