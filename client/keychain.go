// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"sort"

	pb "github.com/golang/protobuf/proto"

	"sharebox.io/address"
	"sharebox.io/errors"
	"sharebox.io/pack/packutil"
	"sharebox.io/pack/symm"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

// maxEpochs is the number of epochs a grant remembers. Older epochs
// are kept so that a revocation interrupted after minting a new epoch
// can still read the file and its tree under the previous one.
const maxEpochs = 4

// A grant is what a user knows about one file it can access.
type grant struct {
	filename sharebox.FileName
	owner    sharebox.UserName
	sharer   sharebox.UserName // Empty for the owner.
	fileAddr sharebox.Location
	epochs   []*sharebox.Epoch // Sorted by ID, newest last.
}

// epoch returns the newest epoch of the grant.
func (g *grant) epoch() *sharebox.Epoch {
	return g.epochs[len(g.epochs)-1]
}

// epochByID returns the epoch with the given ID, or nil.
func (g *grant) epochByID(id sharebox.EpochID) *sharebox.Epoch {
	for _, e := range g.epochs {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// addEpoch adds e to the grant, forgetting the oldest epochs if needed.
func (g *grant) addEpoch(e *sharebox.Epoch) {
	if g.epochByID(e.ID) != nil {
		return
	}
	g.epochs = append(g.epochs, e)
	sort.Slice(g.epochs, func(i, j int) bool { return g.epochs[i].ID < g.epochs[j].ID })
	if n := len(g.epochs); n > maxEpochs {
		g.epochs = g.epochs[n-maxEpochs:]
	}
}

// A keychain maps file names to the user's grants.
type keychain map[sharebox.FileName]*grant

// keychainEpoch returns the keys that seal the user's keychain.
// They are derived from the user's root secret and never stored.
func keychainEpoch(f sharebox.Factotum) *sharebox.Epoch {
	return &sharebox.Epoch{
		EncKey: f.Secret("keychain encryption", sharebox.EncKeyLen),
		MACKey: f.Secret("keychain authentication", sharebox.MACKeyLen),
	}
}

func keychainAD(user sharebox.UserName) []byte {
	b := packutil.AppendString(nil, "sharebox keychain")
	return packutil.AppendString(b, string(user))
}

// loadKeychain reads and decrypts the user's keychain.
func loadKeychain(store sharebox.DataServer, f sharebox.Factotum) (keychain, error) {
	const op errors.Op = "client.loadKeychain"
	data, err := store.Get(address.Keychain(f))
	if err != nil {
		return nil, errors.E(op, err)
	}
	b, err := symm.Open(keychainEpoch(f), keychainAD(f.UserName()), data)
	if err != nil {
		return nil, errors.E(op, err)
	}
	var pk proto.Keychain
	if err := pb.Unmarshal(b, &pk); err != nil {
		return nil, errors.E(op, errors.Integrity, err)
	}
	kc := make(keychain)
	for _, pg := range pk.Grants {
		g := &grant{
			filename: sharebox.FileName(pg.Filename),
			owner:    sharebox.UserName(pg.Owner),
			sharer:   sharebox.UserName(pg.Sharer),
			fileAddr: sharebox.Location(pg.FileAddress),
		}
		for _, pe := range pg.Epochs {
			g.addEpoch(proto.ShareboxEpoch(pe))
		}
		if len(g.epochs) == 0 {
			return nil, errors.E(op, g.filename, errors.Integrity, errors.Str("grant has no epoch"))
		}
		kc[g.filename] = g
	}
	return kc, nil
}

// saveKeychain encrypts and stores the user's keychain.
func saveKeychain(store sharebox.DataServer, f sharebox.Factotum, kc keychain) error {
	const op errors.Op = "client.saveKeychain"
	pk := new(proto.Keychain)
	for _, name := range kc.names() {
		g := kc[name]
		pg := &proto.Grant{
			Filename:    string(g.filename),
			Owner:       string(g.owner),
			Sharer:      string(g.sharer),
			FileAddress: string(g.fileAddr),
		}
		for _, e := range g.epochs {
			pg.Epochs = append(pg.Epochs, proto.EpochProto(e))
		}
		pk.Grants = append(pk.Grants, pg)
	}
	b, err := pb.Marshal(pk)
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}
	sealed, err := symm.Seal(keychainEpoch(f), keychainAD(f.UserName()), b)
	if err != nil {
		return errors.E(op, err)
	}
	if err := store.Put(address.Keychain(f), sealed); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// names returns the file names in the keychain, sorted.
func (kc keychain) names() []sharebox.FileName {
	names := make([]sharebox.FileName, 0, len(kc))
	for name := range kc {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
