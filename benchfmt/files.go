// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// A Files reads records from a sequence of files.
//
// Files whose names end in ".gz" or ".zst" are transparently
// decompressed. If AllowStdin is set, the path "-" reads from
// standard input.
//
// This is a convenience wrapper around Reader with the same Scan API.
// Each file is opened only while it is being read and is closed on
// every exit path, including errors.
type Files struct {
	// Paths is the list of file names to read.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin.
	AllowStdin bool

	stdin io.Reader // for testing; os.Stdin if nil

	inputs  []func() (io.ReadCloser, string, error)
	file    io.ReadCloser
	reader  Reader
	started bool
	err     error
}

// Scan advances the reader to the next record in the sequence of
// files and reports whether a record was read. The caller should use
// the Result method to get the record. If Scan reaches the end of the
// file sequence, or if an I/O error occurs, it returns false, in
// which case the caller should use the Err method to check for
// errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}

	if !f.started {
		f.started = true
		for _, path := range f.Paths {
			path := path
			f.inputs = append(f.inputs, func() (io.ReadCloser, string, error) {
				return f.open(path)
			})
		}
	}

	for {
		if f.file == nil {
			// Open the next file.
			if len(f.inputs) == 0 {
				// We're out of inputs.
				return false
			}
			rc, name, err := f.inputs[0]()
			f.inputs = f.inputs[1:]
			if err != nil {
				f.err = err
				return false
			}
			f.file = rc
			f.reader.Reset(rc, name)
		}

		if f.reader.Scan() {
			return true
		}

		err := f.reader.Err()
		if cerr := f.file.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing input")
		}
		f.file = nil
		if err != nil {
			f.err = err
			return false
		}
	}
}

// Result returns the record that was just read.
//
// This is equivalent to Reader.Result.
func (f *Files) Result() (*Record, error) {
	return f.reader.Result()
}

// Err returns the I/O error that stopped Scan, if any.
// If Scan stopped because it read each file to completion,
// or if Scan has not yet returned false, Err returns nil.
func (f *Files) Err() error {
	return f.err
}

// Close releases the file currently being read, if any. It is only
// necessary if the caller stops calling Scan before it returns false.
func (f *Files) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	f.inputs = nil
	return err
}

func (f *Files) open(path string) (io.ReadCloser, string, error) {
	if f.AllowStdin && path == "-" {
		stdin := f.stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), "<stdin>", nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	rc, err := decompress(file, path)
	if err != nil {
		file.Close()
		return nil, "", errors.Wrapf(err, "%s", path)
	}
	return rc, path, nil
}

// decompress wraps file in a decompressor chosen by the extension of
// path. The returned ReadCloser closes both the decompressor and file.
func decompress(file *os.File, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		return &stackedCloser{zr, []func() error{zr.Close, file.Close}}, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, err
		}
		closeZstd := func() error {
			zr.Close()
			return nil
		}
		return &stackedCloser{zr, []func() error{closeZstd, file.Close}}, nil
	}
	return file, nil
}

type stackedCloser struct {
	io.Reader
	closers []func() error
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
