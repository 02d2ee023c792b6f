// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit converts measurement values between units.
//
// Benchmarks report latencies in nanoseconds and sizes in bytes.
// Charts usually want coarser units (MiB rather than bytes) or derived
// quantities (operations per second rather than nanoseconds per
// operation).
package benchunit

import (
	"fmt"
	"strings"
)

type unitInfo struct {
	class  string  // quantity measured by the unit
	factor float64 // multiply by factor to convert to the base unit
}

// units maps unit names to their class and base factor. The base unit
// of "bytes" is B and the base unit of "time" is sec.
var units = map[string]unitInfo{
	"B":   {"bytes", 1},
	"KiB": {"bytes", 1 << 10},
	"MiB": {"bytes", 1 << 20},
	"GiB": {"bytes", 1 << 30},
	"KB":  {"bytes", 1e3},
	"MB":  {"bytes", 1e6},
	"GB":  {"bytes", 1e9},

	"ns":  {"time", 1e-9},
	"us":  {"time", 1e-6},
	"µs":  {"time", 1e-6},
	"ms":  {"time", 1e-3},
	"s":   {"time", 1},
	"sec": {"time", 1},
}

// Convert converts value v from unit "from" to unit "to". Both units
// must measure the same quantity.
func Convert(v float64, from, to string) (float64, error) {
	fu, ok := units[from]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", from)
	}
	tu, ok := units[to]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", to)
	}
	if fu.class != tu.class {
		return 0, fmt.Errorf("cannot convert %s (%s) to %s (%s)", from, fu.class, to, tu.class)
	}
	if from == to {
		return v, nil
	}
	return v * fu.factor / tu.factor, nil
}

// MiB converts a byte count to mebibytes.
func MiB(bytes float64) float64 {
	return bytes / 1024 / 1024
}

// KiB converts a byte count to kibibytes.
func KiB(bytes float64) float64 {
	return bytes / 1024
}

// Throughput converts a per-operation latency in nanoseconds to
// operations per second.
//
// A zero latency yields +Inf.
func Throughput(ns float64) float64 {
	return 1 / (ns * 1e-9)
}

// FieldUnit guesses the unit of a record field from its name, using
// the naming conventions of the benchmark binaries: a "ns" or "_ns"
// suffix is a latency in nanoseconds, and "bytes" or a "_size" suffix
// is a size in bytes. It returns "" if the unit is unknown.
func FieldUnit(field string) string {
	switch {
	case field == "ns" || strings.HasSuffix(field, "_ns"):
		return "ns"
	case field == "bytes" || strings.HasSuffix(field, "_bytes") || strings.HasSuffix(field, "_size"):
		return "B"
	}
	return ""
}
