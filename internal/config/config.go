// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the optional TOML configuration file shared by
// benchmatrix and benchplot.
//
// A configuration file looks like
//
//	[runner]
//	tool = ["cargo", "run", "-r"]
//	enable_flag = "--features"
//	features = ["cascading", "use_unsafe"]
//	dir = "microbench/fractional_cascading"
//
//	[runner.env]
//	RUSTFLAGS = "-C target-cpu=native"
//
//	[plot]
//	palette = "Dark2"
//	width = 8
//	height = 5
//	font_size = 11
//	out_dir = "charts"
//
// Command-line flags override values from the file.
package config

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/lsmbench/microbench/benchplot"
	"github.com/lsmbench/microbench/matrix"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"
)

// Config is the contents of a configuration file.
type Config struct {
	Runner Runner `toml:"runner"`
	Plot   Plot   `toml:"plot"`
}

// Runner configures benchmatrix.
type Runner struct {
	Tool       []string          `toml:"tool"`
	EnableFlag string            `toml:"enable_flag"`
	Features   []string          `toml:"features"`
	Dir        string            `toml:"dir"`
	Env        map[string]string `toml:"env"`
}

// Plot configures benchplot. Sizes are in inches and font sizes in
// points. An empty Palette leaves each chart its own.
type Plot struct {
	Palette  string  `toml:"palette"`
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	FontSize float64 `toml:"font_size"`
	OutDir   string  `toml:"out_dir"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Runner: Runner{
			EnableFlag: matrix.DefaultEnableFlag,
			Features:   []string{"cascading", "use_unsafe"},
		},
		Plot: Plot{
			Width:    10,
			Height:   6,
			FontSize: 10,
			OutDir:   ".",
		},
	}
}

// Load reads the configuration file at path. Values missing from the
// file keep their Default. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.Errorf("config %s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Check returns an error if cfg holds out-of-range values.
func (cfg *Config) Check() error {
	if err := matrix.Flags(cfg.Runner.Features).Check(); err != nil {
		return errors.Wrap(err, "runner.features")
	}
	p := cfg.Plot
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("plot size %gx%g must be positive", p.Width, p.Height)
	}
	if p.FontSize <= 0 {
		return errors.Errorf("plot.font_size %g must be positive", p.FontSize)
	}
	return nil
}

// EnvList returns the runner environment as sorted "key=value" pairs.
func (r Runner) EnvList() []string {
	env := make([]string, 0, len(r.Env))
	for k, v := range r.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Style returns the chart style described by p.
func (p Plot) Style() (benchplot.Style, error) {
	s := benchplot.DefaultStyle()
	if p.Palette != "" {
		var err error
		if s, err = s.WithPalette(p.Palette); err != nil {
			return s, err
		}
	}
	s = s.WithSize(vg.Length(p.Width)*vg.Inch, vg.Length(p.Height)*vg.Inch)
	return s.WithFontSize(vg.Points(p.FontSize)), nil
}
