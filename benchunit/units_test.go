// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	check := func(v float64, from, to string, want float64) {
		t.Helper()
		got, err := Convert(v, from, to)
		if err != nil {
			t.Errorf("Convert(%v, %s, %s): unexpected error %v", v, from, to, err)
			return
		}
		if math.Abs(got-want) > 1e-12*math.Abs(want) {
			t.Errorf("Convert(%v, %s, %s) = %v, want %v", v, from, to, got, want)
		}
	}
	check(1048576, "B", "MiB", 1)
	check(1536, "B", "KiB", 1.5)
	check(2, "GiB", "MiB", 2048)
	check(1500, "ns", "us", 1.5)
	check(1, "sec", "ns", 1e9)
	check(3, "MB", "B", 3e6)

	checkErr := func(from, to string) {
		t.Helper()
		if _, err := Convert(1, from, to); err == nil {
			t.Errorf("Convert(1, %s, %s): want error", from, to)
		}
	}
	checkErr("B", "ns")
	checkErr("furlong", "B")
	checkErr("B", "fortnight")
}

func TestDerived(t *testing.T) {
	if got := MiB(3 * 1024 * 1024); got != 3 {
		t.Errorf("MiB = %v, want 3", got)
	}
	if got := KiB(4096); got != 4 {
		t.Errorf("KiB = %v, want 4", got)
	}
	if got := Throughput(2); math.Abs(got-5e8) > 1e-3 {
		t.Errorf("Throughput(2) = %v, want 5e8", got)
	}
	if got := Throughput(0); !math.IsInf(got, 1) {
		t.Errorf("Throughput(0) = %v, want +Inf", got)
	}
}

func TestFieldUnit(t *testing.T) {
	for field, want := range map[string]string{
		"ns":         "ns",
		"rps_ns":     "ns",
		"bytes":      "B",
		"block_size": "B",
		"hash_ratio": "",
		"unsafe":     "",
	} {
		if got := FieldUnit(field); got != want {
			t.Errorf("FieldUnit(%q) = %q, want %q", field, got, want)
		}
	}
}
