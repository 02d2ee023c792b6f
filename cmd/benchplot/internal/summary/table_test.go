// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package summary

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/benchseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(name string, xy ...float64) benchseries.Series {
	s := benchseries.Series{Name: name}
	for i := 0; i < len(xy); i += 2 {
		s.Points = append(s.Points, benchseries.Point{X: xy[i], Y: xy[i+1]})
	}
	return s
}

func hashFigure() *benchplot.Figure {
	return &benchplot.Figure{
		Name: "hash_fns",
		Panels: []*benchplot.Panel{{
			X: benchplot.Axis{Label: "Input length [bytes]"},
			Y: benchplot.Axis{Label: "Throughput [op/s]"},
			Lines: []benchplot.Line{
				{Label: "xxh3", Series: series("xxh3", 8, 100, 64, 400)},
				{Series: series("crc", 8, 0, 64, 50)},
			},
		}},
	}
}

func TestToText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FromFigure(hashFigure()).ToText(&buf))
	assert.Equal(t, `hash_fns: Throughput [op/s]
line     n  min  max  mean  geomean
xxh3     2  100  400  250   200
crc      2  0    50   25    -¹
geomean                     79.06
¹ values must be >0 to compute geomean
`, buf.String())
}

func TestToCSV(t *testing.T) {
	var buf, warnings bytes.Buffer
	require.NoError(t, FromFigure(hashFigure()).ToCSV(&buf, &warnings))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "hash_fns,Throughput [op/s]", lines[0])
	assert.Equal(t, "line,n,min,max,mean,geomean", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "xxh3,2,100,400,250,"), lines[2])
	assert.Equal(t, "crc,2,0,50,25,", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "geomean,,,,,79.05"), lines[4])
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "F4: values must be >0 to compute geomean\n", warnings.String())
}

func TestFromFigureSecondary(t *testing.T) {
	fig := &benchplot.Figure{
		Name: "bloom_fpr",
		Panels: []*benchplot.Panel{
			{
				Title: "A",
				Y:     benchplot.Axis{Label: "Real false positive rate"},
				Lines: []benchplot.Line{{Label: "standard", Series: series("standard", 0.01, 0.011)}},
			},
			{
				Title: "B",
				Y:     benchplot.Axis{Label: "Filter size [MiB]"},
				Lines: []benchplot.Line{
					{Label: "standard", Series: series("standard", 0.01, 1)},
					{Label: "blocked", Series: series("blocked", 0.01, 1.3)},
				},
				Secondary: &benchplot.Secondary{
					Y:     benchplot.Axis{Label: "Size difference [%]"},
					Lines: []benchplot.Line{{Label: "Diff", Series: series("Diff", 0.01, 30)}},
				},
			},
		},
	}
	tabs := FromFigure(fig).Tables
	require.Len(t, tabs, 3)

	var got []string
	for _, tab := range tabs {
		got = append(got, tab.Title+": "+tab.Unit)
	}
	assert.Equal(t, []string{
		"bloom_fpr A: Real false positive rate",
		"bloom_fpr B: Filter size [MiB]",
		"bloom_fpr B: Size difference [%]",
	}, got)

	// Single-line tables have no summary row.
	assert.Nil(t, tabs[0].Summary)
	assert.Nil(t, tabs[2].Summary)
	require.NotNil(t, tabs[1].Summary)
	assert.True(t, tabs[1].Summary.HasSummary)
	assert.InDelta(t, 1.1402, tabs[1].Summary.Summary, 1e-4)
}

func TestFromFigureHeat(t *testing.T) {
	fig := &benchplot.Figure{
		Name: "binary_index_3d_speed",
		Panels: []*benchplot.Panel{{
			X: benchplot.Axis{Label: "# KV tuples"},
			Heat: &benchplot.Heat{
				Label: "Read latency [ns]",
				Xs:    []float64{1000, 100},
				Ys:    []float64{1, 2},
				Z:     [][]float64{{40, 90}, {30, math.NaN()}},
			},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, FromFigure(fig).ToText(&buf))
	assert.Equal(t, `binary_index_3d_speed: Read latency [ns]
line              n  min  max  mean  geomean
# KV tuples=1000  2  40   90   65    60
# KV tuples=100   1  30   30   30    30
geomean                              44.16
`, buf.String())
}

func TestEmptyLine(t *testing.T) {
	fig := hashFigure()
	fig.Panels[0].Lines[1].Series.Points = nil
	tab := FromFigure(fig).Tables[0]
	assert.Empty(t, tab.Rows[1].Warnings)
	require.NotNil(t, tab.Summary)
	assert.True(t, tab.Summary.HasSummary)
	assert.EqualError(t, tab.Summary.Warnings[0], "some lines have no points")
}

func TestSuperscript(t *testing.T) {
	assert.Equal(t, "⁰", superscript(0))
	assert.Equal(t, "¹²", superscript(12))
}
