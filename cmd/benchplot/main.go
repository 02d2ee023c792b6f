// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchplot draws SVG charts from the JSON records written by the
// microbenchmarks.
//
// Usage:
//
//	benchplot [flags] inputs...
//
// Each input is a file of newline-delimited JSON records, one flat
// object per measurement, such as
//
//	{"impl":"blocked","target_fpr":0.01,"real_fpr":0.0138,"bytes":1310720}
//
// Inputs may be compressed with gzip (.gz) or zstd (.zst). The input
// "-" reads standard input.
//
// Every benchmark family has a recipe that knows how its records are
// charted. Run "benchplot --list" to see them. An input can name its
// recipe explicitly, as in
//
//	benchplot bloom_fpr=results/run3.jsonl
//
// or take it from the --recipe flag. Otherwise benchplot uses the
// recipe named by a directory in the input's path, so
//
//	benchplot microbench/*/data.jsonl
//
// draws the charts of every benchmark family. A family directory
// selects all of its recipes, and so does a family name given before
// "=" or to --recipe. Inputs for the same recipe are combined into one
// chart, written to <recipe>.svg in the --out-dir directory.
//
// Each recipe draws with its own ColorBrewer palette. The --palette
// flag, or palette in the configuration file, picks one for every
// chart instead.
//
// Any other chart can be drawn with --x and --y, which plot one record
// field against another, one line per distinct value of the --group
// projection:
//
//	benchplot --x fpr --y ns --group impl,unsafe --logx --name speed data.jsonl
//
// See "go doc github.com/lsmbench/microbench/benchproc/syntax" for the
// syntax of --group and --filter.
//
// Records that lack a field a chart needs are an error, and no chart
// is written. If several records share a line and an X value but
// differ in some other field, benchplot warns about it: the input
// probably mixes separate experiments.
//
// With --summary, benchplot also prints a table of statistics for
// every line it draws.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/lsmbench/microbench/benchfmt"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/cmd/benchplot/internal/recipe"
	"github.com/lsmbench/microbench/cmd/benchplot/internal/summary"
	"github.com/lsmbench/microbench/internal/config"
	"github.com/lsmbench/microbench/internal/logger"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func usage(w io.Writer, flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(w, `Usage: benchplot [flags] inputs...

benchplot draws a chart of each benchmark family in inputs. An input
may be prefixed with "recipe=" to select its chart.

`)
		flags.PrintDefaults()
	}
}

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "benchplot: %s\n", err)
		os.Exit(1)
	}
}

// A job is one chart and the inputs it is drawn from.
type job struct {
	build   func([]*benchfmt.Record) (*recipe.Result, error)
	name    string
	palette string
	paths   []string
}

func run(w, wErr io.Writer, args []string) error {
	flags := pflag.NewFlagSet("benchplot", pflag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = usage(wErr, flags)
	flagConfig := flags.String("config", "", "read defaults from TOML `file`")
	flagRecipe := flags.StringP("recipe", "r", "", "chart every input with `recipe` (default from the input's directory)")
	flagOut := flags.StringP("out-dir", "o", "", "write charts to `directory` (default \".\")")
	flagPalette := flags.String("palette", "", "draw lines with the ColorBrewer `palette` (default per chart)")
	flagX := flags.StringP("x", "x", "", "plot record `field` on the X axis")
	flagY := flags.StringP("y", "y", "", "plot record `field` on the Y axis")
	flagGroup := flags.StringP("group", "g", "", "draw one line per distinct value of `projection`")
	flagFilter := flags.String("filter", "*", "use only records matching `query`")
	flagName := flags.String("name", "chart", "write the --x/--y chart to `name`.svg")
	flagLogX := flags.Bool("logx", false, "use a logarithmic X axis")
	flagLogY := flags.Bool("logy", false, "use a logarithmic Y axis")
	flagSummary := flags.BoolP("summary", "s", false, "print summary statistics of every line")
	flagFormat := flags.String("format", "text", "print summaries in `format`:\n  text - plain text\n  csv  - comma-separated values (warnings will be written to stderr)\n")
	flagList := flags.Bool("list", false, "list the recipes and exit")
	flagVerbose := flags.BoolP("verbose", "v", false, "log debug messages")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *flagList {
		return listRecipes(w)
	}

	var printSummary func(*summary.Tables) error
	switch *flagFormat {
	case "text":
		printSummary = func(t *summary.Tables) error { return t.ToText(w) }
	case "csv":
		printSummary = func(t *summary.Tables) error { return t.ToCSV(w, wErr) }
	default:
		return errors.Errorf("unknown format %q", *flagFormat)
	}

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			return err
		}
	}
	pc := cfg.Plot
	if *flagPalette != "" {
		pc.Palette = *flagPalette
	}
	if *flagOut != "" {
		pc.OutDir = *flagOut
	}
	style, err := pc.Style()
	if err != nil {
		return err
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("no inputs")
	}

	var jobs []*job
	if *flagX != "" || *flagY != "" {
		if *flagX == "" || *flagY == "" {
			return errors.New("--x and --y must be used together")
		}
		chart := &recipe.Chart{
			Name:   *flagName,
			X:      *flagX,
			Y:      *flagY,
			Group:  *flagGroup,
			Filter: *flagFilter,
			LogX:   *flagLogX,
			LogY:   *flagLogY,
		}
		jobs = []*job{{build: chart.Build, name: chart.Name, paths: flags.Args()}}
	} else {
		var def []*recipe.Recipe
		if *flagRecipe != "" {
			if def = recipe.Select(*flagRecipe); def == nil {
				return errors.Errorf("unknown recipe %q (see --list)", *flagRecipe)
			}
		}
		if jobs, err = planRecipes(flags.Args(), def); err != nil {
			return err
		}
	}

	log := logger.New(wErr, *flagVerbose).WithPrefix("benchplot")

	// Build every figure before writing any, so bad input leaves
	// the output directory alone.
	var figs []*benchplot.Figure
	var styles []benchplot.Style
	for _, j := range jobs {
		files := &benchfmt.Files{Paths: j.paths, AllowStdin: true}
		recs, err := benchfmt.ReadAll(files)
		if err != nil {
			return err
		}
		log.Debugf("read %d records for %s from %s", len(recs), j.name, strings.Join(j.paths, ", "))
		res, err := j.build(recs)
		if err != nil {
			return err
		}
		if err := res.Figure.Check(); err != nil {
			return err
		}
		for _, p := range res.Figure.Panels {
			log.Debugf("%s: panel %q has %d lines", res.Figure.Name, p.Title, len(p.Lines))
		}
		for _, warning := range res.Warnings {
			log.Warnf("%s: %v", res.Figure.Name, warning)
		}
		st := style
		if pc.Palette == "" && j.palette != "" {
			if st, err = style.WithPalette(j.palette); err != nil {
				return errors.Wrap(err, j.name)
			}
		}
		figs = append(figs, res.Figure)
		styles = append(styles, st)
	}

	for i, fig := range figs {
		path, err := benchplot.Render(fig, styles[i], pc.OutDir)
		if err != nil {
			return err
		}
		log.Infof("wrote %s", path)

		if *flagSummary {
			if i > 0 && *flagFormat == "text" {
				fmt.Fprintln(w)
			}
			if err := printSummary(summary.FromFigure(fig)); err != nil {
				return err
			}
		}
	}
	return nil
}

// planRecipes assigns each input to its recipes and returns one job
// per recipe, in the order the recipes first appear in paths. An
// input naming a family is drawn by every recipe of that family.
func planRecipes(paths []string, def []*recipe.Recipe) ([]*job, error) {
	var jobs []*job
	byName := make(map[string]*job)
	for _, path := range paths {
		rs := def
		if name, file, ok := strings.Cut(path, "="); ok {
			if rs = recipe.Select(name); rs == nil {
				return nil, errors.Errorf("input %s: unknown recipe %q (see --list)", path, name)
			}
			path = file
		}
		if rs == nil {
			if rs = recipe.ForPath(path); rs == nil {
				return nil, errors.Errorf("cannot tell which recipe charts %s; use --recipe or recipe=%s", path, path)
			}
		}
		for _, r := range rs {
			j := byName[r.Name]
			if j == nil {
				j = &job{build: r.Build, name: r.Name, palette: r.Palette}
				byName[r.Name] = j
				jobs = append(jobs, j)
			}
			j.paths = append(j.paths, path)
		}
	}
	return jobs, nil
}

func listRecipes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "recipe\tfamily\tpalette\tchart\n")
	for _, r := range recipe.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Family, r.Palette, r.Doc)
	}
	return tw.Flush()
}
