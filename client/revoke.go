// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"golang.org/x/sync/errgroup"

	"sharebox.io/cert"
	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/pack/symm"
	"sharebox.io/sharebox"
	"sharebox.io/sharetree"
)

// RevokeFile removes access to the named file from child, which the user
// must have shared it with, and from everyone child shared it with in
// turn. The file is re-encrypted under a new epoch whose keys are sent to
// every remaining member of the sharing tree.
//
// RevokeFile is not atomic. If it fails part way it may be called again;
// when child is already revoked only the certificates for the current
// epoch are sent again.
func (s *Session) RevokeFile(filename sharebox.FileName, child sharebox.UserName) error {
	const op errors.Op = "client.RevokeFile"
	return s.do(op, func() error {
		self := s.f.UserName()
		kc, err := loadKeychain(s.store, s.f)
		if err != nil {
			return err
		}
		g := kc[filename]
		if g == nil {
			return errors.E(filename, errors.NotExist, errors.Str("no access to file"))
		}
		// An earlier attempt may have stopped after minting a new
		// epoch but before rotating the file, so accept older epochs.
		hd, err := s.openGrant(g, openOlder)
		if err != nil {
			return err
		}
		if g.epochByID(hd.epoch.ID) == nil {
			g.addEpoch(hd.epoch)
			if err := saveKeychain(s.store, s.f, kc); err != nil {
				return err
			}
		}
		// Likewise the tree may still be under the epoch before the
		// file's.
		epochs := []*sharebox.Epoch{hd.epoch}
		for i := len(g.epochs) - 1; i >= 0; i-- {
			if g.epochs[i].ID < hd.epoch.ID {
				epochs = append(epochs, g.epochs[i])
			}
		}
		t, err := s.loadTree(g, epochs...)
		if err != nil {
			return err
		}
		if !t.IsMember(self) {
			return errors.E(filename, errors.Permission, errors.Str("not a member of the sharing tree"))
		}
		edge := t.Edge(self, child)
		if edge == nil {
			return errors.E(filename, child, errors.Permission, errors.Str("file was not shared with user"))
		}
		if edge.State == sharetree.Revoked {
			log.Debug.Printf("%s: %s: %s already revoked from %s; reissuing epoch %d", op, self, child, filename, hd.epoch.ID)
			return s.reissue(g, t, hd.epoch)
		}

		for _, e := range t.Revoke(child) {
			if err := cert.Destroy(s.store, e.CertAddress); err != nil {
				return err
			}
		}
		id := hd.h.Epoch
		if cur := g.epoch().ID; cur > id {
			id = cur
		}
		next, err := symm.NewEpoch(id + 1)
		if err != nil {
			return err
		}
		// Save the new epoch before using it so that it cannot be lost.
		g.addEpoch(next)
		if err := saveKeychain(s.store, s.f, kc); err != nil {
			return err
		}
		h, err := hd.rec.Rotate(hd.epoch, next, self)
		if err != nil {
			return err
		}
		if err := s.observe(g.fileAddr, h); err != nil {
			return err
		}
		if err := t.Save(s.store, g.fileAddr, next); err != nil {
			return err
		}
		return s.reissue(g, t, next)
	})
}

// reissue sends a certificate for the epoch from the user to every
// remaining member of the tree, owner included. Members whose share is
// still pending get a share certificate, which they can use only by
// receiving the file.
func (s *Session) reissue(g *grant, t *sharetree.Tree, e *sharebox.Epoch) error {
	self := s.f.UserName()
	var eg errgroup.Group
	eg.SetLimit(max(s.cfg.Concurrency(), 1))
	for _, m := range t.Members() {
		if m == self {
			continue
		}
		m := m
		active := m == t.Owner
		if p := t.Parent(m); p != nil && p.State == sharetree.Active {
			active = true
		}
		eg.Go(func() error {
			_, err := cert.Issue(s.f, s.keys, s.store, &cert.Certificate{
				Recipient:   m,
				Sharer:      self,
				Owner:       g.owner,
				Filename:    g.filename,
				FileAddress: g.fileAddr,
				Epoch:       e,
				Reissue:     active,
			})
			return err
		})
	}
	return eg.Wait()
}
