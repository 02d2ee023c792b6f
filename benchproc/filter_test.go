// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"testing"
)

func TestFilter(t *testing.T) {
	recs := map[string][]interface{}{
		"std-safe":    {"impl", "standard", "unsafe", false, "key_count", 1000},
		"std-unsafe":  {"impl", "standard", "unsafe", true, "key_count", 1000},
		"blk-safe":    {"impl", "blocked", "unsafe", false, "key_count", 10000},
		"no-impl":     {"unsafe", false, "key_count", 1000},
		"hash-ratio":  {"hash_ratio", "0.1", "use_unsafe", false},
		"hash-ratio2": {"hash_ratio", 0.2, "use_unsafe", true},
	}

	check := func(query string, want ...string) {
		t.Helper()
		f, err := NewFilter(query)
		if err != nil {
			t.Errorf("%s: unexpected error %s", query, err)
			return
		}
		wantSet := make(map[string]bool)
		for _, w := range want {
			wantSet[w] = true
		}
		for name, kv := range recs {
			got := f.Match(r(t, kv...))
			if got != wantSet[name] {
				t.Errorf("%s: record %s: want match=%v, got %v", query, name, wantSet[name], got)
			}
		}
	}

	check("*", "std-safe", "std-unsafe", "blk-safe", "no-impl", "hash-ratio", "hash-ratio2")
	check("key_count:1000", "std-safe", "std-unsafe", "no-impl")
	check("impl:standard unsafe:false", "std-safe")
	check("impl:standard OR impl:blocked", "std-safe", "std-unsafe", "blk-safe")
	check("impl:(standard blocked) -unsafe:true", "std-safe", "blk-safe")
	check("-impl:standard", "blk-safe", "no-impl", "hash-ratio", "hash-ratio2")
	check("impl:/.*/", "std-safe", "std-unsafe", "blk-safe")
	check("hash_ratio:0.1", "hash-ratio")
	check("use_unsafe:true", "hash-ratio2")
	check("key_count:>=5000", "blk-safe")
	check("key_count:<=1000 impl:standard", "std-safe", "std-unsafe")
	check("hash_ratio:<0.15", "hash-ratio")
	check("impl:>0")

	if _, err := NewFilter("impl:"); err == nil {
		t.Errorf("want error for malformed filter")
	}
}
