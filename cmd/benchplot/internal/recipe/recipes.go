// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recipe

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/benchproc"
	"github.com/lsmbench/microbench/benchseries"
	"github.com/lsmbench/microbench/benchunit"
	"github.com/pkg/errors"
)

// Marker and dash indexes into the default Style.
const (
	circle   = 0
	triangle = 1
	square   = 2
	pyramid  = 3
	cross    = 4

	solid   = 0
	dashed  = 1
	dotted  = 2
	dashDot = 3
)

var recipes = []*Recipe{
	{
		Name:    "block_binary_index",
		Family:  "block_bin_index",
		Doc:     "point read latency and block size by restart interval",
		Palette: "PRGn",
		build: func(recs []*benchfmt.Record) (*Result, error) {
			return blockIndex(recs, "item_count:1000", "unsafe", "restart_interval", "Restart interval")
		},
	},
	{
		Name:    "binary_index_3d_speed",
		Family:  "block_bin_index",
		Doc:     "safe point read latency by item count and restart interval",
		Palette: "PRGn",
		build:   binaryIndexHeat,
	},
	{
		Name:    "block_hash_index",
		Family:  "block_hash_index",
		Doc:     "point read latency and block size by hash ratio",
		Palette: "PRGn",
		build: func(recs []*benchfmt.Record) (*Result, error) {
			return blockIndex(recs, "", "use_unsafe", "hash_ratio", "Hash ratio [bytes per KV]")
		},
	},
	{
		Name:    "block_load",
		Family:  "block_load",
		Doc:     "block load latency by block size",
		Palette: "PRGn",
		build:   blockLoad,
	},
	{
		Name:    "bloom_fpr",
		Family:  "bloom_fpr",
		Doc:     "real false positive rate and filter size by target rate",
		Palette: "PRGn",
		build:   bloomFPR,
	},
	{
		Name:    "bloom_speed",
		Family:  "bloom_speed",
		Doc:     "filter lookup latency by false positive rate",
		Palette: "RdBu",
		build:   bloomSpeed,
	},
	{
		Name:    "segment_indexing",
		Family:  "fractional_cascading",
		Doc:     "segment lookup latency with and without fractional cascading",
		Palette: "PRGn",
		build:   segmentIndexing,
	},
	{
		Name:    "hash_fns",
		Family:  "hash_fns",
		Doc:     "hash function throughput by input length",
		Palette: "RdBu",
		build:   hashFns,
	},
}

// blockIndex charts read latency against x, one line per value of the
// boolean unsafeKey, with the block size of the safe build on a
// secondary axis.
func blockIndex(recs []*benchfmt.Record, filter, unsafeKey, x, xLabel string) (*Result, error) {
	gs, err := group(recs, filter, unsafeKey+"@(false true)", x, "rps_ns")
	if err != nil {
		return nil, err
	}

	var lines []benchplot.Line
	for i, g := range gs.groups {
		label := "Read latency (" + safety(keyValue(g, unsafeKey)) + ")"
		lines = append(lines, benchplot.Line{
			Label:  label,
			Series: benchseries.FromGroup(label, g),
			Color:  i,
			Marker: i,
		})
	}

	safe := gs.find(unsafeKey, "false")
	if safe == nil {
		return nil, errors.Errorf("no records with %s:false for the block size", unsafeKey)
	}
	size, err := benchseries.FromField("Block size", safe, "block_size")
	if err != nil {
		return nil, err
	}

	panel := &benchplot.Panel{
		X:     benchplot.Axis{Label: xLabel},
		Y:     benchplot.Axis{Label: "Point read latency [ns]"},
		Lines: lines,
		Secondary: &benchplot.Secondary{
			Y: benchplot.Axis{Label: "Block size [bytes]"},
			Lines: []benchplot.Line{{
				Label:  "Block size",
				Series: size,
				Color:  len(lines),
				Marker: pyramid,
				Dash:   dashed,
			}},
		},
	}
	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}

// binaryIndexHeat maps the read latency of the safe build over item
// count and restart interval. Item counts run from largest to
// smallest. Cells measured more than once show the mean.
func binaryIndexHeat(recs []*benchfmt.Record) (*Result, error) {
	gs, err := group(recs, "", "unsafe@(false true),item_count@num", "restart_interval", "rps_ns")
	if err != nil {
		return nil, err
	}
	var cols []*benchproc.Group
	rows := make(map[float64]int)
	for _, g := range gs.groups {
		if keyValue(g, "unsafe") != "false" {
			continue
		}
		cols = append(cols, g)
		for _, p := range g.Points {
			rows[p.X] = 0
		}
	}
	if len(cols) == 0 {
		return nil, errors.New("no records with unsafe:false")
	}
	slices.Reverse(cols)

	heat := &benchplot.Heat{Label: "Read latency [ns]"}
	for y := range rows {
		heat.Ys = append(heat.Ys, y)
	}
	slices.Sort(heat.Ys)
	for j, y := range heat.Ys {
		rows[y] = j
	}
	for _, g := range cols {
		x, err := strconv.ParseFloat(keyValue(g, "item_count"), 64)
		if err != nil {
			return nil, &benchfmt.FieldError{Pos: g.Points[0].Record.Pos(), Key: "item_count", Msg: "not a number"}
		}
		heat.Xs = append(heat.Xs, x)
		sum := make([]float64, len(heat.Ys))
		n := make([]int, len(heat.Ys))
		for _, p := range g.Points {
			sum[rows[p.X]] += p.Y
			n[rows[p.X]]++
		}
		z := make([]float64, len(heat.Ys))
		for j := range z {
			z[j] = math.NaN()
			if n[j] > 0 {
				z[j] = sum[j] / float64(n[j])
			}
		}
		heat.Z = append(heat.Z, z)
	}

	panel := &benchplot.Panel{
		X:    benchplot.Axis{Label: "# KV tuples"},
		Y:    benchplot.Axis{Label: "Restart interval"},
		Heat: heat,
	}
	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}

func blockLoad(recs []*benchfmt.Record) (*Result, error) {
	gs, err := group(recs, "", "unsafe@(false true)", "block_size", "rps_ns")
	if err != nil {
		return nil, err
	}
	var lines []benchplot.Line
	for i, g := range gs.groups {
		label := safety(keyValue(g, "unsafe"))
		l := benchplot.Line{
			Label:  label,
			Series: benchseries.FromGroup(label, g),
			Color:  i,
			Marker: circle,
		}
		if label == "unsafe" {
			l.Marker, l.Dash = square, dashed
		}
		lines = append(lines, l)
	}
	panel := &benchplot.Panel{
		X:     benchplot.Axis{Label: "Block size [bytes]", Log: true},
		Y:     benchplot.Axis{Label: "Read latency [ns/op]", Log: true},
		Lines: lines,
	}
	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}

func implMarker(impl string) int {
	if impl == "blocked" {
		return triangle
	}
	return circle
}

// bloomFPR charts, per filter implementation, the false positive rate
// actually measured (panel A) and the filter size (panel B) against
// the rate the filter was built for. Panel B also shows how much
// larger the blocked filter is than the standard one.
func bloomFPR(recs []*benchfmt.Record) (*Result, error) {
	fpr, err := group(recs, "", "impl", "target_fpr", "real_fpr")
	if err != nil {
		return nil, err
	}
	size, err := group(recs, "", "impl", "target_fpr", "bytes")
	if err != nil {
		return nil, err
	}

	a := &benchplot.Panel{
		Title: "A",
		X:     benchplot.Axis{Label: "Target false positive rate", Log: true},
		Y:     benchplot.Axis{Label: "Real false positive rate", Log: true},
	}
	for i, g := range fpr.groups {
		impl := keyValue(g, "impl")
		a.Lines = append(a.Lines, benchplot.Line{
			Label:  impl,
			Series: benchseries.FromGroup(impl, g),
			Color:  i,
			Marker: implMarker(impl),
		})
	}

	b := &benchplot.Panel{
		Title: "B",
		X:     benchplot.Axis{Label: "Target false positive rate", Log: true},
		Y:     benchplot.Axis{Label: "Filter size [MiB]"},
	}
	mib := make(map[string]benchseries.Series)
	for i, g := range size.groups {
		impl := keyValue(g, "impl")
		s := benchseries.FromGroup(impl, g).Map(benchunit.MiB)
		mib[impl] = s
		b.Lines = append(b.Lines, benchplot.Line{
			Label:  impl,
			Series: s,
			Color:  i,
			Marker: implMarker(impl),
		})
	}

	std, ok := mib["standard"]
	if !ok {
		return nil, errors.New("no records with impl:standard")
	}
	blocked, ok := mib["blocked"]
	if !ok {
		return nil, errors.New("no records with impl:blocked")
	}
	diff, err := benchseries.PercentDiff(std, blocked)
	if err != nil {
		return nil, err
	}
	b.Secondary = &benchplot.Secondary{
		Y: benchplot.Axis{Label: "Size difference [%]", Min: 0, Max: 33, Inverted: true},
		Lines: []benchplot.Line{{
			Label:  "Diff",
			Series: diff.Rename("Diff"),
			Color:  len(b.Lines),
			Marker: cross,
			Dash:   dotted,
		}},
	}

	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{a, b}, Cols: 2},
		Warnings: append(fpr.warnings, size.warnings...),
	}, nil
}

func bloomSpeed(recs []*benchfmt.Record) (*Result, error) {
	gs, err := group(recs, "", "impl,unsafe", "fpr", "ns")
	if err != nil {
		return nil, err
	}
	var lines []benchplot.Line
	for i, g := range gs.groups {
		impl, unsafe := keyValue(g, "impl"), keyValue(g, "unsafe")
		label := impl + ", " + safety(unsafe)
		l := benchplot.Line{
			Label:  label,
			Series: benchseries.FromGroup(label, g),
			Color:  i,
			Marker: implMarker(impl),
		}
		if unsafe == "true" {
			l.Dash = dashDot
		}
		lines = append(lines, l)
	}
	panel := &benchplot.Panel{
		X:     benchplot.Axis{Label: "False positive rate", Log: true},
		Y:     benchplot.Axis{Label: "Latency [ns]"},
		Lines: lines,
	}
	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}

func segmentIndexing(recs []*benchfmt.Record) (*Result, error) {
	gs, err := group(recs, "", "unsafe,std_partition_point,cascading", "lmax_ssts", "ns")
	if err != nil {
		return nil, err
	}
	var lines []benchplot.Line
	for i, g := range gs.groups {
		label := "No cascading"
		if keyValue(g, "cascading") == "true" {
			label = "Cascading"
		}
		if keyValue(g, "unsafe") == "true" {
			label += " unsafe"
		}
		lines = append(lines, benchplot.Line{
			Label:  label,
			Series: benchseries.FromGroup(label, g),
			Color:  i,
			Marker: i,
		})
	}
	panel := &benchplot.Panel{
		X:     benchplot.Axis{Label: "Segments in last level", Log: true},
		Y:     benchplot.Axis{Label: "lookup latency [ns]"},
		Lines: lines,
	}
	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}

func hashFns(recs []*benchfmt.Record) (*Result, error) {
	gs, err := group(recs, "", "hash", "byte_len", "ns")
	if err != nil {
		return nil, err
	}
	var lines []benchplot.Line
	for i, g := range gs.groups {
		hash := keyValue(g, "hash")
		for _, p := range g.Points {
			if !(p.Y > 0) {
				return nil, &benchfmt.FieldError{Pos: p.Record.Pos(), Key: "ns", Msg: fmt.Sprintf("latency %v has no throughput", p.Y)}
			}
		}
		lines = append(lines, benchplot.Line{
			Label:  hash,
			Series: benchseries.FromGroup(hash, g).Map(benchunit.Throughput),
			Color:  i,
			Marker: i,
		})
	}
	panel := &benchplot.Panel{
		X:     benchplot.Axis{Label: "Input length [bytes]", Log: true},
		Y:     benchplot.Axis{Label: "Throughput [op/s]", Log: true},
		Lines: lines,
	}
	return &Result{
		Figure:   &benchplot.Figure{Panels: []*benchplot.Panel{panel}},
		Warnings: gs.warnings,
	}, nil
}
