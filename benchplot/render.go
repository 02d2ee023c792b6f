// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchplot

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Render draws fig with style and writes it as SVG to
// dir/fig.FileName(), returning the path written.
//
// The image is written to a temporary file in dir that is renamed
// into place once it is complete, so on error no file is left at the
// destination (and any previous file there is untouched).
func Render(fig *Figure, style Style, dir string) (string, error) {
	if err := fig.Check(); err != nil {
		return "", err
	}
	grid, err := layout(fig, style)
	if err != nil {
		return "", err
	}

	w, h := style.Size()
	canvas := vgsvg.New(w, h)
	dc := draw.New(canvas)
	tiles := draw.Tiles{
		Rows: len(grid), Cols: len(grid[0]),
		PadTop: vg.Points(4), PadBottom: vg.Points(4),
		PadLeft: vg.Points(4), PadRight: vg.Points(4),
		PadX: vg.Points(16), PadY: vg.Points(8),
	}
	canvases := plot.Align(grid, tiles, dc)
	for j, row := range grid {
		for i, p := range row {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	path := filepath.Join(dir, fig.FileName())
	tmp, err := os.CreateTemp(dir, "."+fig.Name+"-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "creating output")
	}
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if _, err := canvas.WriteTo(tmp); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	ok = true
	return path, nil
}

// layout builds the grid of plots for fig. A panel with a Secondary
// axis occupies two grid rows; other panels leave the lower cell nil.
func layout(fig *Figure, style Style) ([][]*plot.Plot, error) {
	cols := fig.Cols
	if cols == 0 {
		cols = len(fig.Panels)
	}
	hasSecondary := false
	for _, p := range fig.Panels {
		if p.Secondary != nil {
			hasSecondary = true
		}
	}
	rowsPerPanel := 1
	if hasSecondary {
		rowsPerPanel = 2
	}
	panelRows := (len(fig.Panels) + cols - 1) / cols

	grid := make([][]*plot.Plot, panelRows*rowsPerPanel)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
	}
	for i, panel := range fig.Panels {
		row, col := (i/cols)*rowsPerPanel, i%cols
		if panel.Heat != nil {
			p, err := newHeatPlot(panel.Title, panel.X, panel.Y, panel.Heat, style)
			if err != nil {
				return nil, errors.Wrapf(err, "panel %q", panel.Title)
			}
			grid[row][col] = p
			continue
		}
		primary, err := newPlot(panel.Title, panel.X, panel.Y, panel.Lines, style)
		if err != nil {
			return nil, errors.Wrapf(err, "panel %q", panel.Title)
		}
		grid[row][col] = primary
		if panel.Secondary == nil {
			continue
		}
		secondary, err := newPlot("", panel.X, panel.Secondary.Y, panel.Secondary.Lines, style)
		if err != nil {
			return nil, errors.Wrapf(err, "panel %q secondary axis", panel.Title)
		}
		// The companion shares the primary's X range and
		// carries the X label.
		if !panel.X.fixed() {
			min := math.Min(primary.X.Min, secondary.X.Min)
			max := math.Max(primary.X.Max, secondary.X.Max)
			primary.X.Min, secondary.X.Min = min, min
			primary.X.Max, secondary.X.Max = max, max
		}
		primary.X.Label.Text = ""
		grid[row+1][col] = secondary
	}
	return grid, nil
}

func newPlot(title string, x, y Axis, lines []Line, style Style) (*plot.Plot, error) {
	p := plot.New()
	fs := style.FontSize()

	p.Title.Text = title
	p.Title.TextStyle.Font.Size = fs * 6 / 5
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = fs
	setAxis(&p.X, x, fs)
	setAxis(&p.Y, y, fs)

	grid := plotter.NewGrid()
	grid.Vertical.Color = style.GridColor()
	grid.Horizontal.Color = style.GridColor()
	p.Add(grid)

	for _, l := range lines {
		xys := make(plotter.XYs, len(l.Series.Points))
		for i, pt := range l.Series.Points {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "line %q", l.Label)
		}
		line.LineStyle.Color = style.Color(l.Color)
		line.LineStyle.Width = style.lineWidth
		line.LineStyle.Dashes = style.Dash(l.Dash)
		p.Add(line)
		thumbs := []plot.Thumbnailer{line}

		if !l.NoMarker {
			points, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, errors.Wrapf(err, "line %q", l.Label)
			}
			points.GlyphStyle.Color = style.Color(l.Color)
			points.GlyphStyle.Radius = style.glyphRadius
			points.GlyphStyle.Shape = style.Marker(l.Marker)
			p.Add(points)
			thumbs = append(thumbs, points)
		}
		if l.Label != "" {
			p.Legend.Add(l.Label, thumbs...)
		}
	}

	if x.fixed() {
		p.X.Min, p.X.Max = x.Min, x.Max
	}
	if y.fixed() {
		p.Y.Min, p.Y.Max = y.Min, y.Max
	}
	return p, nil
}

// newHeatPlot draws h with cells at integer coordinates and ticks
// labeled with the real column and row values. The axes' scales are
// not used.
func newHeatPlot(title string, x, y Axis, h *Heat, style Style) (*plot.Plot, error) {
	p := plot.New()
	fs := style.FontSize()

	switch {
	case title == "":
		title = h.Label
	case h.Label != "":
		title += ": " + h.Label
	}
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = fs * 6 / 5
	setAxis(&p.X, Axis{Label: x.Label}, fs)
	setAxis(&p.Y, Axis{Label: y.Label}, fs)
	p.X.Tick.Marker = indexTicks(h.Xs)
	p.Y.Tick.Marker = indexTicks(h.Ys)
	p.X.Padding, p.Y.Padding = 0, 0

	pal := style.HeatPalette()
	if len(pal) == 0 {
		return nil, errors.New("style has no heat palette")
	}
	lo, hi := h.Range()
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	hm := plotter.NewHeatMap(heatGrid{h}, heatColors(pal))
	hm.Min, hm.Max = lo, hi
	p.Add(hm)

	var cells plotter.XYLabels
	var fills []color.Color
	for i := range h.Xs {
		for j, z := range h.Z[i] {
			if math.IsNaN(z) {
				continue
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(i), Y: float64(j)})
			cells.Labels = append(cells.Labels, strconv.FormatFloat(z, 'g', 4, 64))
			fills = append(fills, pal[int((z-lo)/(hi-lo)*float64(len(pal)-1)+0.5)])
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return nil, err
	}
	for k := range labels.TextStyle {
		ts := &labels.TextStyle[k]
		ts.Font.Size = fs * 4 / 5
		ts.XAlign, ts.YAlign = text.XCenter, text.YCenter
		ts.Color = color.Black
		if color.GrayModel.Convert(fills[k]).(color.Gray).Y < 0x80 {
			ts.Color = color.White
		}
	}
	p.Add(labels)
	return p, nil
}

// heatGrid places the cells of a Heat at integer coordinates, so that
// every cell is the same size.
type heatGrid struct{ h *Heat }

func (g heatGrid) Dims() (c, r int) { return len(g.h.Xs), len(g.h.Ys) }
func (g heatGrid) Z(c, r int) float64 { return g.h.Z[c][r] }
func (g heatGrid) X(c int) float64 { return float64(c) }
func (g heatGrid) Y(r int) float64 { return float64(r) }

type heatColors []color.Color

func (c heatColors) Colors() []color.Color { return c }

func indexTicks(vals []float64) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(vals))
	for i, v := range vals {
		ticks[i] = plot.Tick{Value: float64(i), Label: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return ticks
}

func setAxis(a *plot.Axis, ax Axis, fs vg.Length) {
	a.Label.Text = ax.Label
	a.Label.TextStyle.Font.Size = fs
	a.Tick.Label.Font.Size = fs * 4 / 5
	var scale plot.Normalizer = plot.LinearScale{}
	if ax.Log {
		scale = plot.LogScale{}
		a.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if ax.Inverted {
		scale = plot.InvertedScale{Normalizer: scale}
	}
	a.Scale = scale
}
