// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package record stores the contents of a file on a DataServer.
//
// A file is a header at the file's address followed by an ordered list of
// chunks, each kept at its own random location. Every chunk is encrypted
// and authenticated under the file's current epoch and is bound to the file
// address and to its index, so chunks cannot be reordered or moved between
// files. The header is authenticated under the same epoch and names each
// chunk together with that chunk's tag, so a chunk cannot be replaced by an
// older one either.
package record // import "sharebox.io/record"

import (
	"bytes"

	"sharebox.io/address"
	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/pack/packutil"
	"sharebox.io/pack/symm"
	"sharebox.io/sharebox"
)

// headerFormat is the first field of every encoded header.
const headerFormat = 1

// A ChunkRef names one chunk of a file.
type ChunkRef struct {
	Location sharebox.Location
	Tag      []byte // The chunk's authentication tag.
}

// Header describes the stored state of a file.
type Header struct {
	Epoch     sharebox.EpochID
	Version   uint64 // Incremented by every write.
	Owner     sharebox.UserName
	Name      sharebox.FileName
	RotatedBy sharebox.UserName // The user who minted Epoch.
	Chunks    []ChunkRef
	Tag       []byte
}

// Record is the file stored at one address.
type Record struct {
	store sharebox.DataServer
	addr  sharebox.Location
	owner sharebox.UserName
	name  sharebox.FileName
}

// New returns the record of the owner's file with the given name,
// held at addr on the store. Nothing is read or written.
func New(store sharebox.DataServer, addr sharebox.Location, owner sharebox.UserName, name sharebox.FileName) *Record {
	return &Record{
		store: store,
		addr:  addr,
		owner: owner,
		name:  name,
	}
}

// Header returns the header of the record without verifying it.
// Callers use it to learn which epoch the file is stored under;
// the header must not otherwise be trusted until Verify succeeds.
func (r *Record) Header() (*Header, error) {
	const op errors.Op = "record.Header"
	data, err := r.store.Get(r.addr)
	if err != nil {
		return nil, errors.E(op, r.name, err)
	}
	h, err := unmarshalHeader(data)
	if err != nil {
		return nil, errors.E(op, r.name, err)
	}
	if h.Owner != r.owner || h.Name != r.name {
		return nil, errors.E(op, r.name, errors.Integrity, errors.Str("header names another file"))
	}
	return h, nil
}

// Verify checks the header's tag under the epoch.
func (r *Record) Verify(h *Header, e *sharebox.Epoch) error {
	const op errors.Op = "record.Verify"
	if e == nil || h.Epoch != e.ID {
		return errors.E(op, r.name, errors.Integrity, errors.Str("header is not stored under this epoch"))
	}
	if err := symm.CheckMAC(e, h.Tag, r.headerFields(h)...); err != nil {
		return errors.E(op, r.name, err)
	}
	return nil
}

// Get returns the contents of the record, verifying the header and every
// chunk under the epoch.
func (r *Record) Get(e *sharebox.Epoch) ([]byte, *Header, error) {
	const op errors.Op = "record.Get"
	h, err := r.verifiedHeader(e)
	if err != nil {
		return nil, nil, errors.E(op, err)
	}
	var buf bytes.Buffer
	for i, c := range h.Chunks {
		data, err := r.store.Get(c.Location)
		if errors.Is(errors.NotExist, err) {
			// The header promised this chunk.
			return nil, nil, errors.E(op, r.name, errors.Integrity, err)
		}
		if err != nil {
			return nil, nil, errors.E(op, r.name, err)
		}
		if !bytes.Equal(symm.Tag(data), c.Tag) {
			return nil, nil, errors.E(op, r.name, errors.Integrity, errors.Errorf("chunk %d does not match header", i))
		}
		text, err := symm.Open(e, r.chunkAD(e.ID, i), data)
		if err != nil {
			return nil, nil, errors.E(op, r.name, err)
		}
		buf.Write(text)
	}
	return buf.Bytes(), h, nil
}

// Put replaces the contents of the record with data, stored as a single
// chunk under the epoch. If the record does not yet exist it is created,
// with rotator as the user responsible for the epoch.
// Chunks of the replaced contents are deleted on a best-effort basis.
func (r *Record) Put(e *sharebox.Epoch, data []byte, rotator sharebox.UserName) (*Header, error) {
	const op errors.Op = "record.Put"
	h := &Header{
		Epoch:     e.ID,
		Version:   1,
		Owner:     r.owner,
		Name:      r.name,
		RotatedBy: rotator,
	}
	var old []ChunkRef
	prev, err := r.Header()
	switch {
	case errors.Is(errors.NotExist, err):
		// A new file.
	case err != nil:
		return nil, errors.E(op, err)
	case prev.Epoch > e.ID:
		return nil, errors.E(op, r.name, errors.Integrity, errors.Errorf("file is at epoch %d, key is for epoch %d", prev.Epoch, e.ID))
	case prev.Epoch == e.ID:
		if err := r.Verify(prev, e); err != nil {
			return nil, errors.E(op, err)
		}
		h.Version = prev.Version + 1
		h.RotatedBy = prev.RotatedBy
		old = prev.Chunks
	default:
		// An older file abandoned by its epoch; its chunks cannot
		// be trusted, so they are left alone.
		h.Version = prev.Version + 1
	}
	ref, err := r.putChunk(e, 0, data)
	if err != nil {
		return nil, errors.E(op, err)
	}
	h.Chunks = []ChunkRef{ref}
	if err := r.putHeader(e, h); err != nil {
		return nil, errors.E(op, err)
	}
	r.deleteChunks(old)
	return h, nil
}

// Append adds data to the end of the record as one new chunk. Only the
// header is read; existing chunks are left untouched.
func (r *Record) Append(e *sharebox.Epoch, data []byte) (*Header, error) {
	const op errors.Op = "record.Append"
	h, err := r.verifiedHeader(e)
	if err != nil {
		return nil, errors.E(op, err)
	}
	ref, err := r.putChunk(e, len(h.Chunks), data)
	if err != nil {
		return nil, errors.E(op, err)
	}
	h.Chunks = append(h.Chunks, ref)
	h.Version++
	if err := r.putHeader(e, h); err != nil {
		return nil, errors.E(op, err)
	}
	return h, nil
}

// Rotate re-encrypts the record from the old epoch to the next one,
// collapsing its contents into a single chunk and recording rotator as
// the user who minted the new epoch.
func (r *Record) Rotate(old, next *sharebox.Epoch, rotator sharebox.UserName) (*Header, error) {
	const op errors.Op = "record.Rotate"
	if next.ID <= old.ID {
		return nil, errors.E(op, r.name, errors.Invalid, errors.Errorf("cannot rotate from epoch %d to %d", old.ID, next.ID))
	}
	data, h, err := r.Get(old)
	if err != nil {
		return nil, errors.E(op, err)
	}
	ref, err := r.putChunk(next, 0, data)
	if err != nil {
		return nil, errors.E(op, err)
	}
	superseded := h.Chunks
	h.Epoch = next.ID
	h.Version++
	h.RotatedBy = rotator
	h.Chunks = []ChunkRef{ref}
	if err := r.putHeader(next, h); err != nil {
		return nil, errors.E(op, err)
	}
	r.deleteChunks(superseded)
	return h, nil
}

func (r *Record) verifiedHeader(e *sharebox.Epoch) (*Header, error) {
	h, err := r.Header()
	if err != nil {
		return nil, err
	}
	if err := r.Verify(h, e); err != nil {
		return nil, err
	}
	return h, nil
}

func (r *Record) putChunk(e *sharebox.Epoch, index int, data []byte) (ChunkRef, error) {
	sealed, err := symm.Seal(e, r.chunkAD(e.ID, index), data)
	if err != nil {
		return ChunkRef{}, err
	}
	loc := address.Chunk()
	if err := r.store.Put(loc, sealed); err != nil {
		return ChunkRef{}, err
	}
	return ChunkRef{Location: loc, Tag: symm.Tag(sealed)}, nil
}

func (r *Record) putHeader(e *sharebox.Epoch, h *Header) error {
	h.Tag = symm.MAC(e, r.headerFields(h)...)
	return r.store.Put(r.addr, h.marshal())
}

func (r *Record) deleteChunks(refs []ChunkRef) {
	for _, c := range refs {
		if err := r.store.Delete(c.Location); err != nil {
			log.Debug.Printf("record: deleting chunk of %s: %v", r.name, err)
		}
	}
}

// chunkAD binds a chunk to the epoch, the file and its position.
func (r *Record) chunkAD(id sharebox.EpochID, index int) []byte {
	b := packutil.AppendString(nil, "sharebox chunk")
	b = packutil.AppendUint(b, uint64(id))
	b = packutil.AppendString(b, string(r.addr))
	return packutil.AppendUint(b, uint64(index))
}

// headerFields returns the fields covered by the header's tag.
func (r *Record) headerFields(h *Header) [][]byte {
	fields := [][]byte{
		[]byte("sharebox header"),
		[]byte(r.addr),
		packutil.AppendUint(nil, uint64(h.Epoch)),
		packutil.AppendUint(nil, h.Version),
		[]byte(h.Owner),
		[]byte(h.Name),
		[]byte(h.RotatedBy),
		packutil.AppendUint(nil, uint64(len(h.Chunks))),
	}
	for _, c := range h.Chunks {
		fields = append(fields, []byte(c.Location), c.Tag)
	}
	return fields
}

func (h *Header) marshal() []byte {
	b := packutil.AppendUint(nil, headerFormat)
	b = packutil.AppendUint(b, uint64(h.Epoch))
	b = packutil.AppendUint(b, h.Version)
	b = packutil.AppendString(b, string(h.Owner))
	b = packutil.AppendString(b, string(h.Name))
	b = packutil.AppendString(b, string(h.RotatedBy))
	b = packutil.AppendUint(b, uint64(len(h.Chunks)))
	for _, c := range h.Chunks {
		b = packutil.AppendString(b, string(c.Location))
		b = packutil.AppendBytes(b, c.Tag)
	}
	return packutil.AppendBytes(b, h.Tag)
}

func unmarshalHeader(data []byte) (*Header, error) {
	r := packutil.NewReader(data)
	if f := r.Uint(); r.Err() == nil && f != headerFormat {
		return nil, errors.E(errors.Integrity, errors.Errorf("unknown header format %d", f))
	}
	h := &Header{
		Epoch:     sharebox.EpochID(r.Uint()),
		Version:   r.Uint(),
		Owner:     sharebox.UserName(r.String()),
		Name:      sharebox.FileName(r.String()),
		RotatedBy: sharebox.UserName(r.String()),
	}
	n := r.Uint()
	// Each chunk takes at least two bytes, which bounds n.
	if n > uint64(len(data)) {
		return nil, errors.E(errors.Integrity, packutil.ErrMalformed)
	}
	for i := uint64(0); i < n && r.Err() == nil; i++ {
		c := ChunkRef{
			Location: sharebox.Location(r.String()),
			Tag:      r.Bytes(),
		}
		if r.Err() == nil && !address.IsChunk(c.Location) {
			return nil, errors.E(errors.Integrity, errors.Errorf("bad chunk location %q", c.Location))
		}
		h.Chunks = append(h.Chunks, c)
	}
	h.Tag = r.Bytes()
	if err := r.Done(); err != nil {
		return nil, errors.E(errors.Integrity, err)
	}
	return h, nil
}
