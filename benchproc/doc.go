// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchproc provides tools for filtering, grouping, and
// sorting measurement records.
//
// This package supports a pipeline processing model based around
// domain-specific languages for filtering and projecting records.
// These languages are described in "go doc
// github.com/lsmbench/microbench/benchproc/syntax".
//
// The typical steps for processing a stream of records are:
//
// 1. Read every benchfmt.Record with benchfmt.ReadAll. Reading is
// strict: a malformed line aborts the whole pipeline rather than
// silently dropping a point.
//
// 2. Filter each record according to a user predicate parsed by
// NewFilter.
//
// 3. Project each record according to one or more user projection
// expressions parsed by ProjectionParser. Projecting a record
// extracts a subset of its fields into a Config, which is an
// immutable tuple of strings whose structure is described by a
// Schema. Identical Configs compare == and hence can be used as map
// keys.
//
// 4. Group the records by Config into series of (x, y) points sorted
// by x. GroupBy does steps 2 through 4 in one call; a Grouper does
// the same incrementally and can also report variation in fields a
// projection did not capture.
//
// A projection expression also describes a sort order for the
// Configs it produces, which is the order GroupBy returns groups in.
package benchproc
