// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matrix runs a benchmark tool once for every combination of
// a set of optional feature flags.
//
// The combinations are the power set of the flags. They are run
// serially, smallest first, with the empty combination (the tool's
// default build) last. A failing combination does not stop the run;
// every outcome is collected in a Report.
package matrix

import (
	"strings"

	"github.com/pkg/errors"
)

// Flags is an ordered set of feature flag names. The order fixes the
// enumeration order of Subsets.
type Flags []string

// Check returns an error if fs contains an empty, duplicate, or
// comma-containing name.
func (fs Flags) Check() error {
	seen := make(map[string]bool, len(fs))
	for _, f := range fs {
		if f == "" {
			return errors.New("empty feature name")
		}
		if strings.ContainsAny(f, ", \t") {
			return errors.Errorf("feature name %q contains a separator", f)
		}
		if seen[f] {
			return errors.Errorf("duplicate feature %q", f)
		}
		seen[f] = true
	}
	return nil
}

// ParseFlags splits a comma-separated list of feature names.
func ParseFlags(list string) (Flags, error) {
	var fs Flags
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fs = append(fs, f)
		}
	}
	return fs, fs.Check()
}

// A Subset is one combination of enabled flags.
type Subset []string

// Arg returns the comma-separated flag list of s, or "" if s is empty.
func (s Subset) Arg() string {
	return strings.Join(s, ",")
}

// Args returns the tool arguments that enable s: enableFlag followed
// by s.Arg(), or no arguments at all if s is empty.
func (s Subset) Args(enableFlag string) []string {
	if len(s) == 0 {
		return nil
	}
	return []string{enableFlag, s.Arg()}
}

// String returns s.Arg(), or "(default)" for the empty subset.
func (s Subset) String() string {
	if len(s) == 0 {
		return "(default)"
	}
	return s.Arg()
}

// Subsets returns all 2^len(fs) subsets of fs, each exactly once.
//
// Subsets are ordered by size. Subsets of the same size are ordered
// lexicographically by the positions of their flags in fs, and each
// subset lists its flags in fs order. The empty subset comes last.
func Subsets(fs Flags) []Subset {
	n := len(fs)
	out := make([]Subset, 0, 1<<n)
	idx := make([]int, 0, n)
	for k := 1; k <= n; k++ {
		// Enumerate k-combinations of indexes in lexicographic
		// order.
		idx = idx[:k]
		for i := range idx {
			idx[i] = i
		}
		for {
			s := make(Subset, k)
			for i, j := range idx {
				s[i] = fs[j]
			}
			out = append(out, s)

			// Advance to the next combination.
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				break
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
	return append(out, Subset{})
}
