// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchmatrix runs a benchmark tool once for every combination of a
// set of optional features.
//
// Usage:
//
//	benchmatrix [flags] [--] tool [args...]
//
// For features "cascading,use_unsafe" and the tool "cargo run -r",
// benchmatrix runs
//
//	cargo run -r --enable-features cascading
//	cargo run -r --enable-features use_unsafe
//	cargo run -r --enable-features cascading,use_unsafe
//	cargo run -r
//
// one after another. Combinations are run smallest first; the tool's
// default configuration, with no features, runs last. The option that
// introduces the feature list is set with --enable-flag (cargo itself
// spells it "--features").
//
// The standard output of every run is copied to benchmatrix's
// standard output (or the --output file), so the JSON records the tool
// prints can be collected into one file for benchplot. A run that
// fails, or a tool that cannot be started, is reported and the
// remaining combinations still run. At the end benchmatrix prints a
// summary of every combination to standard error and exits with
// status 1 if any of them failed.
//
// The tool, its feature list, and its environment can also be set in
// the [runner] section of a --config file. Flags and arguments
// override the file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/lsmbench/microbench/internal/config"
	"github.com/lsmbench/microbench/internal/logger"
	"github.com/lsmbench/microbench/matrix"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// errFailed reports that some combinations failed. The summary has
// already been printed.
var errFailed = errors.New("some feature combinations failed")

func usage(w io.Writer, flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(w, `Usage: benchmatrix [flags] [--] tool [args...]

benchmatrix runs tool once for every combination of the --features,
passing each combination after the --enable-flag option. Standard output of
every run is copied to standard output.

`)
		flags.PrintDefaults()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := benchmatrix(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		if err != errFailed && err != pflag.ErrHelp {
			fmt.Fprintf(os.Stderr, "benchmatrix: %s\n", err)
		}
		if err == pflag.ErrHelp {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func benchmatrix(ctx context.Context, w, wErr io.Writer, args []string) error {
	flags := pflag.NewFlagSet("benchmatrix", pflag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = usage(wErr, flags)
	flags.SetInterspersed(false)
	flagConfig := flags.String("config", "", "read defaults from TOML `file`")
	flagFeatures := flags.StringP("features", "f", "", "comma-separated `list` of features to combine (default \"cascading,use_unsafe\")")
	flagEnable := flags.String("enable-flag", "", "tool `option` that takes the feature list (default \"--enable-features\")")
	flagDir := flags.StringP("dir", "C", "", "run tool in `directory`")
	flagEnv := flags.StringArray("env", nil, "add `key=value` to the tool's environment")
	flagOut := flags.StringP("output", "o", "", "write tool output to `file` instead of standard output")
	flagDryRun := flags.BoolP("dry-run", "n", false, "print the commands without running them")
	flagVerbose := flags.BoolP("verbose", "v", false, "log debug messages")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			return err
		}
	}
	rc := cfg.Runner
	if flags.NArg() > 0 {
		rc.Tool = flags.Args()
	}
	if flags.Changed("features") {
		fs, err := matrix.ParseFlags(*flagFeatures)
		if err != nil {
			return errors.Wrap(err, "parsing --features")
		}
		rc.Features = fs
	}
	if *flagEnable != "" {
		rc.EnableFlag = *flagEnable
	}
	if *flagDir != "" {
		rc.Dir = *flagDir
	}
	env := rc.EnvList()
	for _, kv := range *flagEnv {
		if !strings.Contains(kv, "=") {
			return errors.Errorf("--env %q is not key=value", kv)
		}
		env = append(env, kv)
	}
	if len(rc.Tool) == 0 {
		flags.Usage()
		return errors.New("no tool command")
	}

	log := logger.New(wErr, *flagVerbose).WithPrefix("benchmatrix")
	runner := &matrix.Runner{
		Tool:       rc.Tool,
		EnableFlag: rc.EnableFlag,
		Flags:      matrix.Flags(rc.Features),
		Dir:        rc.Dir,
		Env:        env,
		Stdout:     w,
		Logger:     log,
	}
	if err := runner.Check(); err != nil {
		return err
	}

	if *flagDryRun {
		for _, argv := range runner.Commands() {
			if _, err := fmt.Fprintln(w, strings.Join(argv, " ")); err != nil {
				return err
			}
		}
		return nil
	}

	if *flagOut != "" {
		f, err := os.Create(*flagOut)
		if err != nil {
			return err
		}
		defer f.Close()
		runner.Stdout = f
		log.Infof("writing records to %s", *flagOut)
	}

	report, runErr := runner.Run(ctx)
	if report != nil {
		if err := report.Summary(wErr); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if f, ok := runner.Stdout.(*os.File); ok && *flagOut != "" {
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "writing %s", *flagOut)
		}
	}
	if report.Failed() > 0 {
		return errFailed
	}
	return nil
}
