// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package summary presents the lines of a figure as tables of summary
// statistics.
package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aclements/go-moremath/stats"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/benchseries"
	"github.com/pkg/errors"
)

// A Table summarizes the lines of one panel of a figure.
type Table struct {
	// Title names the figure and panel, such as "bloom_fpr A".
	Title string

	// Unit is the label of the panel's Y axis.
	Unit string

	Rows []*Row

	// Summary is the final row of this table. It is nil if the
	// table has fewer than two rows.
	Summary *TableSummary

	// SummaryLabel is the label for the summary row.
	SummaryLabel string
}

// A Row summarizes the Y values of one line.
type Row struct {
	Label   string
	Summary benchseries.Summary

	// Warnings is a list of warnings for this row.
	Warnings []error
}

// TableSummary summarizes all of the rows of a Table.
type TableSummary struct {
	// HasSummary indicates that Summary is valid.
	HasSummary bool
	// Summary is the geometric mean of the row means.
	Summary float64

	// Warnings is a list of warnings for this summary cell.
	Warnings []error
}

// Tables is a sequence of summary tables.
type Tables struct {
	Tables []*Table
}

// FromFigure returns one Table for each panel of fig, and one more for
// each secondary axis.
func FromFigure(fig *benchplot.Figure) *Tables {
	var out Tables
	for _, p := range fig.Panels {
		title := fig.Name
		if p.Title != "" {
			title += " " + p.Title
		}
		if h := p.Heat; h != nil {
			// One row per column of cells.
			lines := make([]benchplot.Line, len(h.Xs))
			for i := range h.Xs {
				col := h.Column(i)
				lines[i] = benchplot.Line{Label: p.X.Label + "=" + col.Name, Series: col}
			}
			out.Tables = append(out.Tables, newTable(title, h.Label, lines))
			continue
		}
		out.Tables = append(out.Tables, newTable(title, p.Y.Label, p.Lines))
		if p.Secondary != nil {
			out.Tables = append(out.Tables, newTable(title, p.Secondary.Y.Label, p.Secondary.Lines))
		}
	}
	return &out
}

func newTable(title, unit string, lines []benchplot.Line) *Table {
	t := &Table{Title: title, Unit: unit}
	for _, l := range lines {
		label := l.Label
		if label == "" {
			label = l.Series.Name
		}
		r := &Row{Label: label, Summary: benchseries.Summarize(l.Series)}
		if r.Summary.N > 0 && !r.Summary.HasGeoMean {
			r.Warnings = append(r.Warnings, errors.New("values must be >0 to compute geomean"))
		}
		t.Rows = append(t.Rows, r)
	}
	if len(t.Rows) > 1 {
		t.SummaryLabel = "geomean"
		t.Summary = summarizeRows(t.Rows)
	}
	return t
}

func summarizeRows(rows []*Row) *TableSummary {
	var s TableSummary
	var means []float64
	for _, r := range rows {
		if r.Summary.N > 0 {
			means = append(means, r.Summary.Mean)
		}
	}
	if len(means) != len(rows) {
		s.Warnings = append(s.Warnings, errors.New("some lines have no points"))
	}
	gm := stats.GeoMean(means)
	if len(means) == 0 || math.IsNaN(gm) {
		s.Warnings = append(s.Warnings, errors.New("means must be >0 to compute geomean"))
	} else {
		s.HasSummary = true
		s.Summary = gm
	}
	return &s
}

// format formats a summary value with four significant digits.
func format(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// ToText renders t as text, assuming a fixed-width font.
func (t *Table) ToText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s: %s\n", t.Title, t.Unit); err != nil {
		return err
	}

	var warningList []string
	warningSet := make(map[string]int)
	footnotes := func(msgs []error) string {
		var fn []string
		for _, msg := range msgs {
			s := msg.Error()
			i, ok := warningSet[s]
			if !ok {
				i = len(warningList)
				warningSet[s] = i
				warningList = append(warningList, s)
			}
			fn = append(fn, superscript(i+1))
		}
		return strings.Join(fn, "")
	}

	o := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(o, "line\tn\tmin\tmax\tmean\tgeomean\n")
	for _, r := range t.Rows {
		s := r.Summary
		gm := "-"
		if s.HasGeoMean {
			gm = format(s.GeoMean)
		}
		fmt.Fprintf(o, "%s\t%d\t%s\t%s\t%s\t%s\n",
			r.Label, s.N, format(s.Min), format(s.Max), format(s.Mean), gm+footnotes(r.Warnings))
	}
	if t.Summary != nil {
		gm := "-"
		if t.Summary.HasSummary {
			gm = format(t.Summary.Summary)
		}
		fmt.Fprintf(o, "%s\t\t\t\t\t%s\n", t.SummaryLabel, gm+footnotes(t.Summary.Warnings))
	}
	if err := o.Flush(); err != nil {
		return err
	}

	for i, msg := range warningList {
		if _, err := fmt.Fprintf(w, "%s %s\n", superscript(i+1), msg); err != nil {
			return err
		}
	}
	return nil
}

var superDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")

func superscript(i int) string {
	if i == 0 {
		return string(superDigits[0])
	}

	var buf [20]rune
	pos := len(buf)
	for i > 0 && pos > 0 {
		pos--
		buf[pos] = superDigits[i%10]
		i /= 10
	}
	return string(buf[pos:])
}

// ToCSV renders t to CSV format. Warnings are written in text format
// to the "warnings" Writer, and prefixed with spreadsheet-style cell
// references. These references assume the table begins on row
// "startRow".
func (t *Table) ToCSV(o *csv.Writer, startRow int, warnings io.Writer) (rowCount int) {
	var row []string
	emit := func() {
		o.Write(row)
		row = row[:0]
		rowCount++
	}
	warn := func(msgs []error) {
		// Construct a spreadsheet-style cell label.
		colName := make([]byte, 10)
		colNamePos := len(colName)
		for x := len(row); x > 0; {
			colNamePos--
			colName[colNamePos] = 'A' + byte(x%26)
			x /= 26
		}
		if colNamePos == len(colName) {
			colNamePos--
			colName[colNamePos] = 'A'
		}
		colName = colName[colNamePos:]
		for _, msg := range msgs {
			fmt.Fprintf(warnings, "%s%d: %s\n", colName, startRow+rowCount, msg)
		}
	}

	row = append(row, t.Title, t.Unit)
	emit()
	row = append(row, "line", "n", "min", "max", "mean", "geomean")
	emit()

	for _, r := range t.Rows {
		s := r.Summary
		row = append(row, r.Label, strconv.Itoa(s.N), fmt.Sprint(s.Min), fmt.Sprint(s.Max), fmt.Sprint(s.Mean))
		warn(r.Warnings)
		if s.HasGeoMean {
			row = append(row, fmt.Sprint(s.GeoMean))
		} else {
			row = append(row, "")
		}
		emit()
	}

	if t.Summary != nil {
		row = append(row, t.SummaryLabel, "", "", "", "")
		warn(t.Summary.Warnings)
		if t.Summary.HasSummary {
			row = append(row, fmt.Sprint(t.Summary.Summary))
		} else {
			row = append(row, "")
		}
		emit()
	}
	return
}

// ToText renders every table in t, separated by blank lines.
func (t *Tables) ToText(w io.Writer) error {
	for i, table := range t.Tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := table.ToText(w); err != nil {
			return err
		}
	}
	return nil
}

// ToCSV renders t to CSV (comma-separated values) format, with an
// empty record between tables.
//
// Warnings are written to a separate stream so as not to interrupt
// the regular format of the CSV table.
func (t *Tables) ToCSV(w, warnings io.Writer) error {
	o := csv.NewWriter(w)
	row := 1
	for i, table := range t.Tables {
		if i > 0 {
			o.Write([]string{""})
			row++
		}
		row += table.ToCSV(o, row, warnings)
	}
	o.Flush()
	return o.Error()
}
