// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import "slices"

// NonSingularFields returns the fields whose value differs between at
// least two of configs.
//
// For group keys these are the fields a legend needs to show. For the
// residues of records that landed on the same point they are the
// hidden fields that varied.
func NonSingularFields(configs []Config) []Field {
	if len(configs) < 2 {
		return nil
	}
	var out []Field
	for _, f := range commonSchema(configs).Fields() {
		first := configs[0].Get(f)
		if slices.ContainsFunc(configs[1:], func(c Config) bool { return c.Get(f) != first }) {
			out = append(out, f)
		}
	}
	return out
}
