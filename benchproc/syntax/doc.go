// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax documents the filter and projection expressions
// accepted by benchplot's --filter and --group flags and by chart
// recipes.
//
// Both kinds of expression work on measurement records, the flat JSON
// objects the microbenchmarks write one per line:
//
//   {"hash_ratio":0.1,"use_unsafe":false,"rps_ns":120,"block_size":64}
//
// # Keys
//
// A key names what to look at in a record:
//
// - A plain name, such as "hash_ratio", is the value of that record
// field. Values are read in a canonical text form. Numbers are the
// shortest decimal that parses back to the same value, so 0.10 and
// 0.1 are the same value. Booleans are "true" or "false". Strings are
// themselves. A filter on a field never matches a record without it,
// and projecting a record without it is an error.
//
// - ".file" is the name of the input the record came from, or
// "<stdin>".
//
// # Filters
//
// A filter selects records.
//
// "key:value" selects records whose key has exactly that value. Keys
// and values are bare words, or Go double-quoted strings when they
// contain special characters. A value between slashes, such as
// "impl:/block.*/", is a regular expression that must match the whole
// value. "key:(value1 value2 ...)" matches any of the listed values.
// "*" matches every record.
//
// A value that starts with "<", "<=", ">", or ">=" compares the field
// as a number: "target_fpr:<0.01" keeps the runs with a target below
// 1%, and "item_count:>=1000" keeps counts of 1000 and up. Fields
// that aren't numbers never match a comparison. Quote the value, as
// in `note:"<5"`, to match the text itself.
//
// Filters combine with "-" for negation, "AND", "OR", and
// parentheses. Writing two filters side by side means "AND", so
// "impl:blocked unsafe:false" keeps the safe runs of the blocked
// filter.
//
// Grammar:
//
//   expr     = andExpr {"OR" andExpr}
//   andExpr  = match {"AND"? match}
//   match    = "(" expr ")"
//            | "-" match
//            | "*"
//            | key ":" value
//            | key ":" "(" value {value} ")"
//   key      = word
//   value    = word
//            | "/" regexp "/"
//            | ("<" | "<=" | ">" | ">=") number
//
// # Projections
//
// A projection lists the keys that tell groups apart, such as the
// "impl,unsafe" that gives each Bloom filter build its own line. Each
// record is grouped by the values it has for those keys, and the
// groups are ordered key by key.
//
// Keys are separated by commas or spaces. Each may choose an order:
//
// - "key" orders values as they first appear in the input.
//
// - "key@alpha" orders values alphabetically. "key@num" orders them
// numerically and understands SI and IEC prefixes, so "4k" sorts
// before "1Mi". "key@first" is the default order, spelled out.
//
// - "key@(value value ...)" orders values as listed and drops records
// whose value is not listed. Records without the key are still an
// error. A value may appear in the list only once.
//
// Grammar:
//
//   expr     = part {","? part}
//   part     = key
//            | key "@" order
//            | key "@" "(" word {word} ")"
//   key      = word
//   order    = word
//
// # Words
//
// Both kinds of expression share one definition of a word:
//
//   word     = bareWord
//            | double-quoted Go string
//   bareWord = [^-*"():@,][^ ():@,]*
package syntax
