// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchplot

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// A Style describes the visual parameters of rendered figures.
//
// A Style is an immutable value: its accessors return copies and its
// With methods return a modified Style, leaving the receiver
// unchanged. The zero Style is not useful; start from DefaultStyle.
type Style struct {
	palette []color.Color
	heat    []color.Color
	markers []draw.GlyphDrawer
	dashes  [][]vg.Length

	width, height vg.Length
	fontSize      vg.Length
	lineWidth     vg.Length
	glyphRadius   vg.Length
	gridColor     color.Color
}

// DefaultStyle returns a new Style with the qualitative "Set1"
// palette for lines, "YlGnBu" for heat maps, a 10x6 inch figure, and
// 10pt text.
func DefaultStyle() Style {
	s := Style{
		markers: []draw.GlyphDrawer{
			draw.CircleGlyph{},
			draw.TriangleGlyph{},
			draw.SquareGlyph{},
			draw.PyramidGlyph{},
			draw.CrossGlyph{},
			draw.PlusGlyph{},
			draw.RingGlyph{},
			draw.BoxGlyph{},
		},
		dashes: [][]vg.Length{
			nil,
			{vg.Points(6), vg.Points(3)},
			{vg.Points(2), vg.Points(2)},
			{vg.Points(6), vg.Points(2), vg.Points(2), vg.Points(2)},
		},
		width:       10 * vg.Inch,
		height:      6 * vg.Inch,
		fontSize:    vg.Points(10),
		lineWidth:   vg.Points(1.5),
		glyphRadius: vg.Points(3),
		gridColor:   color.Gray{Y: 0xdd},
	}
	s, err := s.WithPalette("Set1")
	if err == nil {
		s, err = s.WithHeatPalette("YlGnBu")
	}
	if err != nil {
		// Both are built-in palettes.
		panic(err)
	}
	return s
}

// WithPalette returns a copy of s that draws lines with the colors of
// the named ColorBrewer palette. A qualitative palette, such as
// "Set1" or "Dark2", is used whole. A diverging palette, such as
// "PRGn" or "RdBu", contributes its six-color variant, taken from
// alternate ends so that neighboring lines contrast.
func (s Style) WithPalette(name string) (Style, error) {
	var colors []color.Color
	if q, ok := brewer.QualitativePalettes[name]; ok {
		p, err := brewer.GetPalette(brewer.TypeQualitative, name, largest(q))
		if err != nil {
			return s, errors.Wrapf(err, "palette %q", name)
		}
		colors = p.Colors()
	} else if _, ok := brewer.DivergingPalettes[name]; ok {
		p, err := brewer.GetPalette(brewer.TypeDiverging, name, 6)
		if err != nil {
			return s, errors.Wrapf(err, "palette %q", name)
		}
		all := p.Colors()
		for lo, hi := 0, len(all)-1; lo <= hi; lo, hi = lo+1, hi-1 {
			colors = append(colors, all[lo])
			if lo != hi {
				colors = append(colors, all[hi])
			}
		}
	} else {
		return s, errors.Errorf("unknown palette %q", name)
	}
	s.palette = append([]color.Color(nil), colors...)
	return s, nil
}

// WithHeatPalette returns a copy of s that colors heat maps with the
// largest variant of the named sequential ColorBrewer palette, such
// as "YlGnBu" or "Greys". Low values get the first, lightest color.
func (s Style) WithHeatPalette(name string) (Style, error) {
	q, ok := brewer.SequentialPalettes[name]
	if !ok {
		return s, errors.Errorf("unknown sequential palette %q", name)
	}
	p, err := brewer.GetPalette(brewer.TypeSequential, name, largest(q))
	if err != nil {
		return s, errors.Wrapf(err, "palette %q", name)
	}
	s.heat = append([]color.Color(nil), p.Colors()...)
	return s, nil
}

// largest returns the largest color count a ColorBrewer palette comes
// in.
func largest[P any](variants map[int]P) int {
	n := 0
	for k := range variants {
		if k > n {
			n = k
		}
	}
	return n
}

// WithSize returns a copy of s whose figures are w by h.
func (s Style) WithSize(w, h vg.Length) Style {
	s.width, s.height = w, h
	return s
}

// WithFontSize returns a copy of s whose body text is size.
func (s Style) WithFontSize(size vg.Length) Style {
	s.fontSize = size
	return s
}

// Size returns the width and height of figures drawn with s.
func (s Style) Size() (w, h vg.Length) {
	return s.width, s.height
}

// FontSize returns the size of body text.
func (s Style) FontSize() vg.Length {
	return s.fontSize
}

// Palette returns a copy of the line colors of s.
func (s Style) Palette() []color.Color {
	return append([]color.Color(nil), s.palette...)
}

// HeatPalette returns a copy of the heat map colors of s, from the
// lowest value to the highest.
func (s Style) HeatPalette() []color.Color {
	return append([]color.Color(nil), s.heat...)
}

// Color returns the i'th palette color, cycling through the palette.
func (s Style) Color(i int) color.Color {
	return s.palette[mod(i, len(s.palette))]
}

// Marker returns the i'th marker shape, cycling through the markers.
func (s Style) Marker(i int) draw.GlyphDrawer {
	return s.markers[mod(i, len(s.markers))]
}

// Dash returns a copy of the i'th dash pattern, cycling through the
// patterns. Pattern 0 is a solid line.
func (s Style) Dash(i int) []vg.Length {
	return append([]vg.Length(nil), s.dashes[mod(i, len(s.dashes))]...)
}

// GridColor returns the color of grid lines.
func (s Style) GridColor() color.Color {
	return s.gridColor
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
