// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packutil provides helper functions for encoding the records
// that are kept on the data server. Every field is written with a
// varint length or value so that records can be parsed without ambiguity,
// and the parsing side never trusts the lengths it reads.
package packutil // import "sharebox.io/pack/packutil"

import (
	"encoding/binary"

	"sharebox.io/errors"
)

// ErrMalformed is returned when a record cannot be parsed.
var ErrMalformed = errors.Str("malformed record")

// AppendBytes appends the varint-encoded length of src to b, followed by a copy of src.
func AppendBytes(b, src []byte) []byte {
	b = binary.AppendUvarint(b, uint64(len(src)))
	return append(b, src...)
}

// AppendString is AppendBytes for a string.
func AppendString(b []byte, s string) []byte {
	b = binary.AppendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

// AppendUint appends the varint encoding of v to b.
func AppendUint(b []byte, v uint64) []byte {
	return binary.AppendUvarint(b, v)
}

// A Reader decodes fields written by the Append functions, in order.
// After the first failure every method returns a zero value, and Err
// reports the failure.
type Reader struct {
	b   []byte
	err error
}

// NewReader returns a Reader that reads from b.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Bytes returns the next length-prefixed field. The result aliases the
// Reader's input.
func (r *Reader) Bytes() []byte {
	if r.err != nil {
		return nil
	}
	n, vlen := binary.Uvarint(r.b)
	if vlen <= 0 || n > uint64(len(r.b)-vlen) {
		r.err = ErrMalformed
		return nil
	}
	data := r.b[vlen : vlen+int(n)]
	r.b = r.b[vlen+int(n):]
	return data
}

// String returns the next length-prefixed field as a string.
func (r *Reader) String() string {
	return string(r.Bytes())
}

// Uint returns the next varint.
func (r *Reader) Uint() uint64 {
	if r.err != nil {
		return 0
	}
	v, vlen := binary.Uvarint(r.b)
	if vlen <= 0 {
		r.err = ErrMalformed
		return 0
	}
	r.b = r.b[vlen:]
	return v
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Done returns an error if reading failed or if input remains.
func (r *Reader) Done() error {
	if r.err == nil && len(r.b) != 0 {
		r.err = ErrMalformed
	}
	return r.err
}
