// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recipe

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/benchseries"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRecords(t *testing.T, data string) []*benchfmt.Record {
	t.Helper()
	recs, err := benchfmt.ReadAll(benchfmt.NewReader(strings.NewReader(data), "test"))
	require.NoError(t, err)
	return recs
}

// readFamily reads the shared test records of a benchmark family.
func readFamily(t *testing.T, family string) []*benchfmt.Record {
	t.Helper()
	files := &benchfmt.Files{Paths: []string{filepath.Join("..", "..", "testdata", family, "data.jsonl")}}
	recs, err := benchfmt.ReadAll(files)
	require.NoError(t, err)
	return recs
}

func lineLabels(lines []benchplot.Line) []string {
	var out []string
	for _, l := range lines {
		out = append(out, l.Label)
	}
	return out
}

func TestLookup(t *testing.T) {
	for _, test := range []struct {
		name, want string
	}{
		{"bloom_fpr", "bloom_fpr"},
		{"block_bin_index", "block_binary_index"},
		{"block_binary_index", "block_binary_index"},
		{"fractional_cascading", "segment_indexing"},
		{"segment_indexing", "segment_indexing"},
	} {
		r := Lookup(test.name)
		if assert.NotNil(t, r, test.name) {
			assert.Equal(t, test.want, r.Name)
		}
	}
	assert.Nil(t, Lookup("nope"))
	assert.Len(t, All(), 8)
}

func names(rs []*Recipe) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestSelect(t *testing.T) {
	assert.Equal(t, []string{"block_binary_index", "binary_index_3d_speed"}, names(Select("block_bin_index")))
	assert.Equal(t, []string{"binary_index_3d_speed"}, names(Select("binary_index_3d_speed")))
	assert.Equal(t, []string{"hash_fns"}, names(Select("hash_fns")))
	assert.Nil(t, Select("nope"))
}

func TestForPath(t *testing.T) {
	for path, want := range map[string][]string{
		"microbench/bloom_fpr/data.jsonl":                {"bloom_fpr"},
		"/src/lsm/microbench/hash_fns/data.jsonl.zst":    {"hash_fns"},
		"fractional_cascading/run2/data.jsonl":           {"segment_indexing"},
		filepath.Join("block_load", "data.jsonl"):        {"block_load"},
		"microbench/block_bin_index/archive/data.jsonl":  {"block_binary_index", "binary_index_3d_speed"},
		"microbench/block_hash_index/../bloom_speed/x.j": {"bloom_speed"},
		"charts/binary_index_3d_speed/data.jsonl":        {"binary_index_3d_speed"},
	} {
		assert.Equal(t, want, names(ForPath(path)), path)
	}
	assert.Nil(t, ForPath("data.jsonl"))
	assert.Nil(t, ForPath("/tmp/results/data.jsonl"))
}

func TestBlockBinaryIndex(t *testing.T) {
	res, err := Lookup("block_binary_index").Build(readFamily(t, "block_bin_index"))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	fig := res.Figure
	assert.Equal(t, "block_binary_index", fig.Name)
	require.Len(t, fig.Panels, 1)
	p := fig.Panels[0]
	assert.Equal(t, []string{"Read latency (safe)", "Read latency (unsafe)"}, lineLabels(p.Lines))
	assert.Equal(t, []float64{1, 2, 4, 8, 16}, p.Lines[0].Series.XS())
	// Only the item_count:1000 records are plotted.
	assert.Equal(t, []float64{44.5, 48, 55, 69, 97}, p.Lines[0].Series.YS())

	require.NotNil(t, p.Secondary)
	assert.Equal(t, "Block size [bytes]", p.Secondary.Y.Label)
	require.Len(t, p.Secondary.Lines, 1)
	assert.Equal(t, []float64{4160, 4224, 4352, 4608, 5120}, p.Secondary.Lines[0].Series.YS())
	assert.NotZero(t, p.Secondary.Lines[0].Dash)
}

func TestBinaryIndexHeat(t *testing.T) {
	res, err := Lookup("binary_index_3d_speed").Build(readFamily(t, "block_bin_index"))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	fig := res.Figure
	assert.Equal(t, "binary_index_3d_speed", fig.Name)
	require.Len(t, fig.Panels, 1)
	p := fig.Panels[0]
	assert.Empty(t, p.Lines)
	require.NotNil(t, p.Heat)
	h := p.Heat
	assert.Equal(t, "Read latency [ns]", h.Label)
	// Largest item count first, only safe builds.
	assert.Equal(t, []float64{1000, 100}, h.Xs)
	assert.Equal(t, []float64{1, 2, 4, 8, 16}, h.Ys)
	assert.Equal(t, [][]float64{
		{44.5, 48, 55, 69, 97},
		{43.6, 47.1, 54.1, 68.1, 96.1},
	}, h.Z)
}

func TestBinaryIndexHeatCells(t *testing.T) {
	res, err := Lookup("binary_index_3d_speed").Build(parseRecords(t, `{"item_count":10,"restart_interval":1,"unsafe":false,"block_size":64,"rps_ns":10}
{"item_count":10,"restart_interval":1,"unsafe":false,"block_size":64,"rps_ns":20}
{"item_count":20,"restart_interval":2,"unsafe":false,"block_size":64,"rps_ns":30}
{"item_count":20,"restart_interval":2,"unsafe":true,"block_size":64,"rps_ns":1}
`))
	require.NoError(t, err)
	h := res.Figure.Panels[0].Heat
	assert.Equal(t, []float64{20, 10}, h.Xs)
	assert.Equal(t, []float64{1, 2}, h.Ys)
	// Repeated cells average. Cells never measured are empty.
	require.Len(t, h.Z, 2)
	assert.True(t, math.IsNaN(h.Z[0][0]))
	assert.Equal(t, 30.0, h.Z[0][1])
	assert.Equal(t, 15.0, h.Z[1][0])
	assert.True(t, math.IsNaN(h.Z[1][1]))

	_, err = Lookup("binary_index_3d_speed").Build(parseRecords(t, `{"item_count":10,"restart_interval":1,"unsafe":true,"rps_ns":10}
`))
	assert.EqualError(t, err, "binary_index_3d_speed: no records with unsafe:false")

	_, err = Lookup("binary_index_3d_speed").Build(parseRecords(t, `{"item_count":10,"restart_interval":1,"unsafe":false,"rps_ns":10}
{"restart_interval":2,"unsafe":false,"rps_ns":10}
`))
	assert.EqualError(t, err, `binary_index_3d_speed: test:2: field "item_count": missing`)
}

func TestPalettes(t *testing.T) {
	for _, r := range All() {
		_, err := benchplot.DefaultStyle().WithPalette(r.Palette)
		assert.NoError(t, err, r.Name)
	}
	assert.Equal(t, "RdBu", Lookup("hash_fns").Palette)
	assert.Equal(t, "RdBu", Lookup("bloom_speed").Palette)
	assert.Equal(t, "PRGn", Lookup("bloom_fpr").Palette)
}

func TestBlockIndexNoSafeBuild(t *testing.T) {
	recs := parseRecords(t, `{"hash_ratio":0.5,"use_unsafe":true,"block_size":4096,"rps_ns":70}
`)
	_, err := Lookup("block_hash_index").Build(recs)
	assert.EqualError(t, err, "block_hash_index: no records with use_unsafe:false for the block size")
}

func TestBlockLoad(t *testing.T) {
	res, err := Lookup("block_load").Build(readFamily(t, "block_load"))
	require.NoError(t, err)
	p := res.Figure.Panels[0]
	assert.True(t, p.X.Log)
	assert.True(t, p.Y.Log)
	assert.Equal(t, []string{"safe", "unsafe"}, lineLabels(p.Lines))
	assert.Equal(t, solid, p.Lines[0].Dash)
	assert.Equal(t, dashed, p.Lines[1].Dash)
	assert.Equal(t, square, p.Lines[1].Marker)
}

func TestBadFlag(t *testing.T) {
	// Every record needs a boolean for each flag the recipe groups
	// by, including records a fixed order would otherwise drop.
	for _, test := range []struct {
		recs, want string
	}{
		{`{"block_size":1024,"unsafe":false,"rps_ns":39}
{"block_size":2048,"rps_ns":41}
`, `block_load: test:2: field "unsafe": missing`},
		{`{"block_size":1024,"unsafe":false,"rps_ns":39}
{"block_size":2048,"unsafe":"yes","rps_ns":41}
`, `block_load: test:2: field "unsafe": want bool, have string "yes"`},
	} {
		_, err := Lookup("block_load").Build(parseRecords(t, test.recs))
		assert.EqualError(t, err, test.want)
	}

	// Flags are checked before the recipe's own filter.
	_, err := Lookup("block_binary_index").Build(parseRecords(t, `{"item_count":1000,"restart_interval":1,"unsafe":false,"block_size":4160,"rps_ns":44}
{"item_count":100,"restart_interval":1,"block_size":4160,"rps_ns":44}
`))
	assert.EqualError(t, err, `block_binary_index: test:2: field "unsafe": missing`)
}

func TestBloomFPR(t *testing.T) {
	res, err := Lookup("bloom_fpr").Build(readFamily(t, "bloom_fpr"))
	require.NoError(t, err)
	fig := res.Figure
	require.Len(t, fig.Panels, 2)
	assert.Equal(t, 2, fig.Cols)

	a, b := fig.Panels[0], fig.Panels[1]
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, []string{"standard", "blocked"}, lineLabels(a.Lines))
	assert.Equal(t, circle, a.Lines[0].Marker)
	assert.Equal(t, triangle, a.Lines[1].Marker)
	assert.Equal(t, []float64{0.0001, 0.001, 0.01, 0.1}, a.Lines[0].Series.XS())

	assert.Equal(t, "B", b.Title)
	assert.Equal(t, "Filter size [MiB]", b.Y.Label)
	assert.InDeltaSlice(t, []float64{4.5776, 3.4332, 2.2888, 1.1444}, b.Lines[0].Series.YS(), 1e-4)

	require.NotNil(t, b.Secondary)
	diff := b.Secondary.Lines[0]
	assert.Equal(t, "Diff", diff.Label)
	assert.Equal(t, dotted, diff.Dash)
	assert.InDeltaSlice(t, []float64{25, 25, 25, 25}, diff.Series.YS(), 1e-9)
	y := b.Secondary.Y
	assert.True(t, y.Inverted)
	assert.Equal(t, 0.0, y.Min)
	assert.Equal(t, 33.0, y.Max)
}

func TestBloomFPRMismatch(t *testing.T) {
	recs := parseRecords(t, `{"impl":"standard","target_fpr":0.1,"real_fpr":0.1,"bytes":100}
{"impl":"standard","target_fpr":0.01,"real_fpr":0.01,"bytes":200}
{"impl":"blocked","target_fpr":0.1,"real_fpr":0.12,"bytes":130}
{"impl":"blocked","target_fpr":0.02,"real_fpr":0.021,"bytes":260}
`)
	_, err := Lookup("bloom_fpr").Build(recs)
	require.Error(t, err)
	var pe *benchseries.PreconditionError
	require.True(t, errors.As(err, &pe), "want PreconditionError, got %v", err)
	assert.Contains(t, err.Error(), "x values differ at index 0")

	_, err = Lookup("bloom_fpr").Build(parseRecords(t, `{"impl":"standard","target_fpr":0.1,"real_fpr":0.1,"bytes":100}
`))
	assert.EqualError(t, err, "bloom_fpr: no records with impl:blocked")
}

func TestBloomSpeed(t *testing.T) {
	res, err := Lookup("bloom_speed").Build(readFamily(t, "bloom_speed"))
	require.NoError(t, err)
	p := res.Figure.Panels[0]
	assert.Equal(t, []string{
		"standard, safe",
		"standard, unsafe",
		"blocked, safe",
		"blocked, unsafe",
	}, lineLabels(p.Lines))
	assert.Equal(t, []int{solid, dashDot, solid, dashDot}, []int{p.Lines[0].Dash, p.Lines[1].Dash, p.Lines[2].Dash, p.Lines[3].Dash})
	assert.Equal(t, triangle, p.Lines[2].Marker)
	assert.Equal(t, "False positive rate", p.X.Label)
}

func TestSegmentIndexing(t *testing.T) {
	res, err := Lookup("fractional_cascading").Build(readFamily(t, "fractional_cascading"))
	require.NoError(t, err)
	assert.Equal(t, "segment_indexing", res.Figure.Name)
	p := res.Figure.Panels[0]
	assert.Equal(t, []string{
		"No cascading",
		"Cascading",
		"No cascading unsafe",
		"Cascading unsafe",
	}, lineLabels(p.Lines))
	assert.Equal(t, []float64{10, 100, 1000, 10000}, p.Lines[1].Series.XS())
}

func TestHashFns(t *testing.T) {
	res, err := Lookup("hash_fns").Build(readFamily(t, "hash_fns"))
	require.NoError(t, err)
	p := res.Figure.Panels[0]
	assert.Equal(t, []string{"xxh3", "fxhash", "siphash"}, lineLabels(p.Lines))
	// 3.4ns per hash.
	assert.InDelta(t, 1/3.4e-9, p.Lines[0].Series.Points[0].Y, 1)
	assert.Equal(t, "Throughput [op/s]", p.Y.Label)
}

func TestHashFnsZeroLatency(t *testing.T) {
	recs := parseRecords(t, `{"hash":"xxh3","byte_len":8,"ns":3}
{"hash":"xxh3","byte_len":64,"ns":0}
`)
	_, err := Lookup("hash_fns").Build(recs)
	assert.EqualError(t, err, `hash_fns: test:2: field "ns": latency 0 has no throughput`)
}

func TestMissingField(t *testing.T) {
	recs := parseRecords(t, `{"hash":"xxh3","byte_len":8,"ns":3}
{"hash":"xxh3","byte_len":64}
`)
	_, err := Lookup("hash_fns").Build(recs)
	assert.EqualError(t, err, `hash_fns: test:2: field "ns": missing`)
	var fe *benchfmt.FieldError
	assert.True(t, errors.As(err, &fe))
}

func TestWarnings(t *testing.T) {
	recs := parseRecords(t, `{"hash":"xxh3","byte_len":8,"ns":3,"cpu":"a"}
{"hash":"xxh3","byte_len":8,"ns":4,"cpu":"b"}
`)
	res, err := Lookup("hash_fns").Build(recs)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.EqualError(t, res.Warnings[0], "hash:xxh3: points at byte_len=8 vary in cpu")
}

// TestRenderAll renders every recipe from the shared test records.
func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	for _, r := range All() {
		res, err := r.Build(readFamily(t, r.Family))
		require.NoError(t, err, r.Name)
		path, err := benchplot.Render(res.Figure, benchplot.DefaultStyle(), dir)
		require.NoError(t, err, r.Name)
		assert.Equal(t, filepath.Join(dir, r.Name+".svg"), path)
	}
}

func TestChart(t *testing.T) {
	recs := parseRecords(t, `{"impl":"standard","unsafe":false,"fpr":0.1,"ns":30}
{"impl":"standard","unsafe":true,"fpr":0.1,"ns":28}
{"impl":"standard","unsafe":false,"fpr":0.01,"ns":34}
{"impl":"blocked","unsafe":false,"fpr":0.1,"ns":12}
`)
	c := &Chart{Name: "speed", X: "fpr", Y: "ns", Group: "impl,unsafe", Filter: "unsafe:false", LogX: true}
	res, err := c.Build(recs)
	require.NoError(t, err)
	fig := res.Figure
	assert.Equal(t, "speed", fig.Name)
	p := fig.Panels[0]
	assert.True(t, p.X.Log)
	assert.False(t, p.Y.Log)
	assert.Equal(t, "fpr", p.X.Label)
	// unsafe is the same in every remaining group.
	assert.Equal(t, []string{"standard", "blocked"}, lineLabels(p.Lines))
	assert.Equal(t, []float64{0.01, 0.1}, p.Lines[0].Series.XS())

	c = &Chart{Name: "all", X: "fpr", Y: "ns"}
	res, err = c.Build(recs)
	require.NoError(t, err)
	assert.Equal(t, []string{"ns"}, lineLabels(res.Figure.Panels[0].Lines))
	assert.Len(t, res.Figure.Panels[0].Lines[0].Series.Points, 4)
	// Every point at fpr=0.1 comes from a different build.
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Error(), "points at fpr=0.1 vary in impl, unsafe")

	c = &Chart{Name: "none", X: "fpr", Y: "ns", Filter: "impl:nope"}
	_, err = c.Build(recs)
	assert.EqualError(t, err, "no records match impl:nope")
}
