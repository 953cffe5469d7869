// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"sharebox.io/address"
	"sharebox.io/cert"
	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/pack/symm"
	"sharebox.io/record"
	"sharebox.io/sharebox"
	"sharebox.io/sharetree"
)

// A handle is a file opened through a grant: its record, the record's
// verified header, and the epoch the record is stored under.
type handle struct {
	g     *grant
	rec   *record.Record
	h     *record.Header
	epoch *sharebox.Epoch
}

// open opens the named file through the user's grant for it. If the
// file has moved to a newer epoch, the grant is refreshed from the
// certificate left by the user who rotated it and the keychain is saved.
func (s *Session) open(kc keychain, filename sharebox.FileName) (*handle, error) {
	g := kc[filename]
	if g == nil {
		return nil, errors.E(filename, errors.NotExist, errors.Str("no access to file"))
	}
	hd, err := s.openGrant(g, openCurrent)
	if err != nil {
		return nil, err
	}
	if g.epochByID(hd.epoch.ID) == nil {
		g.addEpoch(hd.epoch)
		if err := saveKeychain(s.store, s.f, kc); err != nil {
			return nil, err
		}
	}
	return hd, nil
}

// An openMode says which epochs openGrant accepts beyond the grant's
// newest one.
type openMode int

const (
	// openCurrent accepts a newer epoch only from a reissue.
	openCurrent openMode = iota
	// openOlder also accepts an older epoch the grant still holds.
	openOlder
	// openPending also accepts a newer epoch from a share, for a
	// recipient whose share is pending in the sharing tree.
	openPending
)

// openGrant opens the file the grant refers to without modifying the
// grant.
func (s *Session) openGrant(g *grant, mode openMode) (*handle, error) {
	rec := record.New(s.store, g.fileAddr, g.owner, g.filename)
	h, err := rec.Header()
	if err != nil {
		return nil, err
	}
	e, err := s.epochFor(g, h, mode)
	if err != nil {
		return nil, err
	}
	if err := rec.Verify(h, e); err != nil {
		return nil, err
	}
	if err := s.observe(g.fileAddr, h); err != nil {
		return nil, err
	}
	return &handle{g: g, rec: rec, h: h, epoch: e}, nil
}

// epochFor returns the key for the epoch the (unverified) header claims.
func (s *Session) epochFor(g *grant, h *record.Header, mode openMode) (*sharebox.Epoch, error) {
	cur := g.epoch()
	switch {
	case h.Epoch == cur.ID:
		return cur, nil
	case h.Epoch < cur.ID:
		if e := g.epochByID(h.Epoch); mode == openOlder && e != nil {
			return e, nil
		}
		return nil, errors.E(g.filename, errors.Integrity, errors.Errorf("file is at epoch %d, older than known epoch %d", h.Epoch, cur.ID))
	}
	c, err := cert.Accept(s.f, s.keys, s.store, h.RotatedBy, g.filename)
	if err != nil {
		return nil, err
	}
	if c.Owner != g.owner || c.FileAddress != g.fileAddr {
		return nil, errors.E(g.filename, errors.Permission, errors.Str("certificate is for another file"))
	}
	if !c.Reissue && mode != openPending {
		return nil, errors.E(g.filename, errors.Permission, errors.Errorf("certificate from %s is a share that has not been received", h.RotatedBy))
	}
	if c.Epoch.ID != h.Epoch {
		return nil, errors.E(g.filename, errors.Permission, errors.Errorf("no certificate for epoch %d", h.Epoch))
	}
	log.Debug.Printf("client: %s: %s refreshed to epoch %d from %s", s.f.UserName(), g.filename, h.Epoch, h.RotatedBy)
	return c.Epoch, nil
}

// UploadFile stores data as the contents of the named file, replacing
// what was there. If the user cannot write a file of that name, because
// it has none or its access was revoked, a new file owned by the user
// is created.
func (s *Session) UploadFile(filename sharebox.FileName, data []byte) error {
	const op errors.Op = "client.UploadFile"
	return s.do(op, func() error {
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		g := kc[filename]
		if g == nil {
			return s.create(kc, filename, data)
		}
		hd, err := s.open(kc, filename)
		if err != nil {
			if g.owner == s.f.UserName() || !errors.Is(errors.Permission, err) {
				return err
			}
			log.Debug.Printf("%s: %s: lost access to %s's %s, creating a new file: %v", op, s.f.UserName(), g.owner, filename, err)
			return s.create(kc, filename, data)
		}
		h, err := hd.rec.Put(hd.epoch, data, hd.h.RotatedBy)
		if err != nil {
			return err
		}
		return s.observe(g.fileAddr, h)
	})
}

// create stores data as a new file owned by the user, with a fresh
// epoch and an empty sharing tree.
func (s *Session) create(kc keychain, filename sharebox.FileName, data []byte) error {
	self := s.f.UserName()
	addr := address.File(s.f, filename)
	rec := record.New(s.store, addr, self, filename)
	id := sharebox.EpochID(1)
	switch prev, err := rec.Header(); {
	case err == nil:
		// A file of ours that the keychain has forgotten.
		id = prev.Epoch + 1
	case !errors.Is(errors.NotExist, err):
		return err
	}
	e, err := symm.NewEpoch(id)
	if err != nil {
		return err
	}
	h, err := rec.Put(e, data, self)
	if err != nil {
		return err
	}
	if err := sharetree.New(self, filename).Save(s.store, addr, e); err != nil {
		return err
	}
	kc[filename] = &grant{
		filename: filename,
		owner:    self,
		fileAddr: addr,
		epochs:   []*sharebox.Epoch{e},
	}
	if err := saveKeychain(s.store, s.f, kc); err != nil {
		return err
	}
	return s.observe(addr, h)
}

// DownloadFile returns the contents of the named file.
func (s *Session) DownloadFile(filename sharebox.FileName) ([]byte, error) {
	const op errors.Op = "client.DownloadFile"
	var data []byte
	err := s.do(op, func() error {
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		hd, err := s.open(kc, filename)
		if err != nil {
			return err
		}
		b, h, err := hd.rec.Get(hd.epoch)
		if err != nil {
			return err
		}
		if err := s.observe(hd.g.fileAddr, h); err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// AppendFile adds data to the end of the named file. Its cost depends on
// the size of data, not of the file.
func (s *Session) AppendFile(filename sharebox.FileName, data []byte) error {
	const op errors.Op = "client.AppendFile"
	return s.do(op, func() error {
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		hd, err := s.open(kc, filename)
		if err != nil {
			return err
		}
		h, err := hd.rec.Append(hd.epoch, data)
		if err != nil {
			return err
		}
		return s.observe(hd.g.fileAddr, h)
	})
}

// ListFiles returns the names of the files the user can access, sorted.
func (s *Session) ListFiles() ([]sharebox.FileName, error) {
	const op errors.Op = "client.ListFiles"
	var names []sharebox.FileName
	err := s.do(op, func() error {
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		names = kc.names()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
