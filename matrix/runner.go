// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lsmbench/microbench/internal/logger"
	"github.com/pkg/errors"
)

// DefaultEnableFlag is the tool option that takes the list of
// features to enable.
const DefaultEnableFlag = "--enable-features"

// Kind classifies the outcome of one tool invocation.
type Kind int

const (
	// Success means the tool ran and exited with status 0.
	Success Kind = iota
	// ToolMissing means the tool could not be started because it
	// does not exist or is not executable.
	ToolMissing
	// Failed means the tool ran and exited with a nonzero status,
	// or was killed.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "ok"
	case ToolMissing:
		return "MISSING"
	case Failed:
		return "FAIL"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// An Outcome is the result of running the tool for one Subset.
type Outcome struct {
	Subset Subset
	Kind   Kind

	// Args is the full command line that was run.
	Args []string

	// ExitCode is the exit status of a Failed invocation, or -1
	// if the process was killed by a signal.
	ExitCode int

	// Stdout and Stderr are the output of a Failed invocation.
	// The standard output of a successful invocation goes to
	// Runner.Stdout instead.
	Stdout string
	Stderr string

	// Err is the error that classified this outcome, or nil on
	// Success.
	Err error

	Duration time.Duration
}

// A Runner runs a tool for every subset of Flags.
type Runner struct {
	// Tool is the command line of the tool, before the feature
	// arguments. Tool[0] is looked up in PATH if it contains no
	// path separator.
	Tool []string

	// EnableFlag is the option that precedes the feature list.
	// If empty, DefaultEnableFlag is used.
	EnableFlag string

	Flags Flags

	// Dir is the working directory of the tool. If empty, the
	// tool runs in the current directory.
	Dir string

	// Env lists extra "key=value" environment variables for the
	// tool, added to the environment of this process.
	Env []string

	// Stdout receives the standard output of every successful
	// invocation, in order. If nil, output is discarded.
	Stdout io.Writer

	Logger logger.Logger
}

// Check returns an error if r cannot be run.
func (r *Runner) Check() error {
	if len(r.Tool) == 0 || r.Tool[0] == "" {
		return errors.New("no tool command")
	}
	return errors.Wrap(r.Flags.Check(), "bad feature list")
}

// Commands returns the command line of each invocation, in the order
// Run executes them.
func (r *Runner) Commands() [][]string {
	var out [][]string
	for _, s := range Subsets(r.Flags) {
		out = append(out, r.command(s))
	}
	return out
}

func (r *Runner) command(s Subset) []string {
	flag := r.EnableFlag
	if flag == "" {
		flag = DefaultEnableFlag
	}
	argv := append([]string(nil), r.Tool...)
	return append(argv, s.Args(flag)...)
}

// Run runs the tool once for each subset of r.Flags, in the order of
// Subsets. Each invocation starts only after the previous one has
// exited. Invocations that fail or cannot be started are recorded in
// the Report and the run continues.
//
// The output of an invocation is held until it exits, and only the
// output of a successful one is copied to r.Stdout, so a crashed run
// never leaves a partial record behind.
//
// Run returns an error if r fails Check, if writing r.Stdout fails,
// or if ctx is done, in which case the in-flight invocation is
// killed and the Report holds the outcomes up to and including it.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	log := r.Logger
	if log == nil {
		log = logger.NopLogger
	}
	stdout := r.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	subsets := Subsets(r.Flags)
	report := &Report{Outcomes: make([]Outcome, 0, len(subsets))}
	for i, s := range subsets {
		log.Infof("[%d/%d] %s", i+1, len(subsets), strings.Join(r.command(s), " "))
		out, payload := r.runOne(ctx, s)
		report.Outcomes = append(report.Outcomes, out)

		switch out.Kind {
		case Success:
			log.Debugf("%s: ok in %v", s, out.Duration.Round(time.Millisecond))
			if _, err := stdout.Write(payload); err != nil {
				return report, errors.Wrapf(err, "writing output of %s", s)
			}
		case ToolMissing:
			log.Errorf("%s: cannot run tool: %v", s, out.Err)
		case Failed:
			log.Warnf("%s: %v\n%s", s, out.Err, strings.TrimRight(out.Stderr, "\n"))
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}
	return report, nil
}

// runOne runs the tool for s. For a successful invocation it also
// returns the standard output.
func (r *Runner) runOne(ctx context.Context, s Subset) (Outcome, []byte) {
	argv := r.command(s)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Outcome{Subset: s, Args: argv, Duration: time.Since(start), Err: err}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.Kind = Success
		return out, stdout.Bytes()
	case errors.As(err, &exitErr):
		out.Kind = Failed
		out.ExitCode = exitErr.ExitCode()
		out.Stdout = stdout.String()
		out.Stderr = stderr.String()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		out.Kind = ToolMissing
	default:
		// The process started but could not be waited for, or
		// its output could not be copied.
		out.Kind = Failed
		out.ExitCode = -1
		out.Stdout = stdout.String()
		out.Stderr = stderr.String()
	}
	return out, nil
}

// A Report collects the outcome of every invocation of a Run.
type Report struct {
	Outcomes []Outcome
}

// Failed returns the number of invocations that did not succeed.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind != Success {
			n++
		}
	}
	return n
}

// Summary writes a table with one line per subset to w, followed by
// a count of failures.
func (r *Report) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "subset\tresult\tdetail\n")
	for _, o := range r.Outcomes {
		detail := "-"
		switch o.Kind {
		case Failed:
			if o.ExitCode >= 0 {
				detail = fmt.Sprintf("exit status %d", o.ExitCode)
			} else {
				detail = o.Err.Error()
			}
		case ToolMissing:
			detail = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Subset, o.Kind, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d subsets failed\n", r.Failed(), len(r.Outcomes))
	return err
}
