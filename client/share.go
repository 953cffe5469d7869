// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"sharebox.io/cert"
	"sharebox.io/errors"
	"sharebox.io/sharebox"
	"sharebox.io/sharetree"
)

// ShareFile lets recipient access the named file. The user must own the
// file or have received it. The recipient must exist, must be neither
// the owner nor the user, and must not have been given the file by
// someone else. The share takes effect when the recipient calls
// ReceiveFile.
func (s *Session) ShareFile(filename sharebox.FileName, recipient sharebox.UserName) error {
	const op errors.Op = "client.ShareFile"
	return s.do(op, func() error {
		self := s.f.UserName()
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		hd, err := s.open(kc, filename)
		if err != nil {
			return err
		}
		t, err := s.loadTree(hd.g, hd.epoch)
		if err != nil {
			return err
		}
		if self != t.Owner {
			if p := t.Parent(self); p == nil || p.State != sharetree.Active {
				return errors.E(filename, errors.Permission, errors.Str("not an active member of the sharing tree"))
			}
		}
		if recipient == self {
			return errors.E(filename, recipient, errors.Invalid, errors.Str("cannot share with oneself"))
		}
		loc, err := cert.Address(s.f, s.keys, self, recipient, filename)
		if err != nil {
			return err
		}
		if _, err := t.Share(self, recipient, loc); err != nil {
			return err
		}
		_, err = cert.Issue(s.f, s.keys, s.store, &cert.Certificate{
			Recipient:   recipient,
			Sharer:      self,
			Owner:       hd.g.owner,
			Filename:    filename,
			FileAddress: hd.g.fileAddr,
			Epoch:       hd.epoch,
		})
		if err != nil {
			return err
		}
		return t.Save(s.store, hd.g.fileAddr, hd.epoch)
	})
}

// ReceiveFile accepts the named file shared with the user by sharer.
// It fails if sharer never shared the file with the user, if the share
// was revoked, or if the user owns a file of the same name.
func (s *Session) ReceiveFile(filename sharebox.FileName, sharer sharebox.UserName) error {
	const op errors.Op = "client.ReceiveFile"
	return s.do(op, func() error {
		self := s.f.UserName()
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		old := kc[filename]
		if old != nil && old.owner == self {
			return errors.E(filename, errors.Exist, errors.Str("user owns a file of this name"))
		}
		c, err := cert.Accept(s.f, s.keys, s.store, sharer, filename)
		if err != nil {
			return err
		}
		if c.Owner == self {
			return errors.E(filename, errors.Invalid, errors.Str("certificate names the user as owner"))
		}
		g := &grant{
			filename: filename,
			owner:    c.Owner,
			sharer:   sharer,
			fileAddr: c.FileAddress,
		}
		if old != nil && old.owner == g.owner && old.fileAddr == g.fileAddr {
			for _, e := range old.epochs {
				g.addEpoch(e)
			}
		}
		g.addEpoch(c.Epoch)

		// The file may have been rotated while the share was pending;
		// openGrant then finds the rotator's certificate. Activate
		// below checks that the share is pending.
		hd, err := s.openGrant(g, openPending)
		if err != nil {
			return err
		}
		t, err := s.loadTree(g, hd.epoch)
		if err != nil {
			return err
		}
		if err := t.Activate(sharer, self); err != nil {
			return err
		}
		if err := t.Save(s.store, g.fileAddr, hd.epoch); err != nil {
			return err
		}
		g.addEpoch(hd.epoch)
		kc[filename] = g
		return saveKeychain(s.store, s.f, kc)
	})
}

// Sharing returns the edges of the named file's sharing tree, including
// revoked ones, in the order they were created.
func (s *Session) Sharing(filename sharebox.FileName) ([]sharetree.Edge, error) {
	const op errors.Op = "client.Sharing"
	var edges []sharetree.Edge
	err := s.do(op, func() error {
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		hd, err := s.open(kc, filename)
		if err != nil {
			return err
		}
		t, err := s.loadTree(hd.g, hd.epoch)
		if err != nil {
			return err
		}
		for _, e := range t.Edges {
			edges = append(edges, *e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// loadTree reads the sharing tree of the grant's file under the first of
// the epochs that opens it.
func (s *Session) loadTree(g *grant, epochs ...*sharebox.Epoch) (*sharetree.Tree, error) {
	err := errors.E(g.filename, errors.Invalid, errors.Str("no epoch to read sharing tree"))
	for _, e := range epochs {
		var t *sharetree.Tree
		t, err = sharetree.Load(s.store, g.fileAddr, e)
		if err != nil {
			if errors.Is(errors.Integrity, err) {
				continue
			}
			return nil, err
		}
		if t.Owner != g.owner || t.Filename != g.filename {
			return nil, errors.E(g.filename, errors.Integrity, errors.Str("sharing tree is for another file"))
		}
		return t, nil
	}
	return nil, err
}
