// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sharetree maintains the sharing tree of a file: who shared the
// file with whom, and which of those delegations are still in force.
//
// The tree is rooted at the file's owner. Each Edge records one delegation
// from a sharer to a recipient. A recipient has at most one live (pending
// or active) edge leading to it, and edges never form a cycle. Revoked
// edges are kept, so the tree also records who has lost access.
//
// The tree is stored next to the file it describes, encrypted and
// authenticated under the file's current epoch.
package sharetree // import "sharebox.io/sharetree"

import (
	"fmt"

	pb "github.com/golang/protobuf/proto"

	"sharebox.io/address"
	"sharebox.io/errors"
	"sharebox.io/pack/packutil"
	"sharebox.io/pack/symm"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

// State is the state of an edge.
type State int32

// The states of an edge. An edge starts Pending, becomes Active when the
// recipient accepts its certificate, and may be Revoked at any time.
// Revoked is final.
const (
	Pending State = iota + 1
	Active
	Revoked
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Revoked:
		return "revoked"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Live reports whether the edge in this state still confers access.
func (s State) Live() bool {
	return s == Pending || s == Active
}

// Edge is one delegation.
type Edge struct {
	Sharer      sharebox.UserName
	Recipient   sharebox.UserName
	State       State
	CertAddress sharebox.Location // Where the sharer's certificate is kept.
}

// Tree is the sharing tree of one file.
type Tree struct {
	Owner    sharebox.UserName
	Filename sharebox.FileName
	Epoch    sharebox.EpochID // The epoch the tree was last stored under.
	Edges    []*Edge
}

// New returns a tree with no edges.
func New(owner sharebox.UserName, filename sharebox.FileName) *Tree {
	return &Tree{
		Owner:    owner,
		Filename: filename,
	}
}

// Parent returns the live edge leading to the user, or nil if there is none.
func (t *Tree) Parent(user sharebox.UserName) *Edge {
	for i := len(t.Edges) - 1; i >= 0; i-- {
		e := t.Edges[i]
		if e.Recipient == user && e.State.Live() {
			return e
		}
	}
	return nil
}

// Edge returns the most recent edge from sharer to recipient, or nil.
func (t *Tree) Edge(sharer, recipient sharebox.UserName) *Edge {
	for i := len(t.Edges) - 1; i >= 0; i-- {
		e := t.Edges[i]
		if e.Sharer == sharer && e.Recipient == recipient {
			return e
		}
	}
	return nil
}

// IsMember reports whether the user currently has access to the file,
// that is whether it is the owner or the recipient of a live edge.
func (t *Tree) IsMember(user sharebox.UserName) bool {
	return user == t.Owner || t.Parent(user) != nil
}

// Share records that sharer has issued a certificate at certAddr to
// recipient. A live edge between the two is updated in place; otherwise a
// new pending edge is added. It fails if the sharer is not a member, if
// the recipient is the owner or the sharer, or if the recipient already
// has a live edge from someone else. Since every member other than the
// owner has exactly one live parent, the edges cannot form a cycle.
func (t *Tree) Share(sharer, recipient sharebox.UserName, certAddr sharebox.Location) (*Edge, error) {
	const op errors.Op = "sharetree.Share"
	switch {
	case !t.IsMember(sharer):
		return nil, errors.E(op, sharer, errors.Permission, errors.Str("sharer has no access"))
	case recipient == t.Owner:
		return nil, errors.E(op, recipient, errors.Invalid, errors.Str("cannot share with the owner"))
	case recipient == sharer:
		return nil, errors.E(op, recipient, errors.Invalid, errors.Str("cannot share with oneself"))
	}
	if p := t.Parent(recipient); p != nil {
		if p.Sharer != sharer {
			return nil, errors.E(op, recipient, errors.Exist, errors.Errorf("already shared by %s", p.Sharer))
		}
		p.CertAddress = certAddr
		return p, nil
	}
	e := &Edge{
		Sharer:      sharer,
		Recipient:   recipient,
		State:       Pending,
		CertAddress: certAddr,
	}
	t.Edges = append(t.Edges, e)
	return e, nil
}

// Activate marks the live edge from sharer to recipient as active.
// It fails with a Permission error if there is none.
func (t *Tree) Activate(sharer, recipient sharebox.UserName) error {
	const op errors.Op = "sharetree.Activate"
	p := t.Parent(recipient)
	if p == nil || p.Sharer != sharer {
		return errors.E(op, recipient, errors.Permission, errors.Errorf("no live share from %s", sharer))
	}
	p.State = Active
	return nil
}

// Subtree returns the user and every user reachable from it over live
// edges, in breadth-first order.
func (t *Tree) Subtree(root sharebox.UserName) []sharebox.UserName {
	seen := map[sharebox.UserName]bool{root: true}
	nodes := []sharebox.UserName{root}
	for i := 0; i < len(nodes); i++ {
		for _, e := range t.Edges {
			if e.Sharer == nodes[i] && e.State.Live() && !seen[e.Recipient] {
				seen[e.Recipient] = true
				nodes = append(nodes, e.Recipient)
			}
		}
	}
	return nodes
}

// Revoke marks the live edge leading to user, and every live edge below
// it, as revoked. It returns the edges it revoked.
func (t *Tree) Revoke(user sharebox.UserName) []*Edge {
	in := map[sharebox.UserName]bool{}
	for _, u := range t.Subtree(user) {
		in[u] = true
	}
	var revoked []*Edge
	for _, e := range t.Edges {
		if !e.State.Live() {
			continue
		}
		if e.Recipient == user || in[e.Sharer] {
			e.State = Revoked
			revoked = append(revoked, e)
		}
	}
	return revoked
}

// Members returns the owner and the recipients of all live edges.
func (t *Tree) Members() []sharebox.UserName {
	members := []sharebox.UserName{t.Owner}
	for _, e := range t.Edges {
		if e.State.Live() {
			members = append(members, e.Recipient)
		}
	}
	return members
}

// Load reads the tree of the file at fileAddr and decrypts it under the
// epoch. It fails with an Integrity error if the tree is stored under
// another epoch or has been altered.
func Load(store sharebox.DataServer, fileAddr sharebox.Location, e *sharebox.Epoch) (*Tree, error) {
	const op errors.Op = "sharetree.Load"
	data, err := store.Get(address.Tree(fileAddr))
	if err != nil {
		return nil, errors.E(op, err)
	}
	r := packutil.NewReader(data)
	id := sharebox.EpochID(r.Uint())
	sealed := r.Bytes()
	if err := r.Done(); err != nil {
		return nil, errors.E(op, errors.Integrity, err)
	}
	if id != e.ID {
		return nil, errors.E(op, errors.Integrity, errors.Errorf("tree is at epoch %d, key is for epoch %d", id, e.ID))
	}
	b, err := symm.Open(e, treeAD(fileAddr, id), sealed)
	if err != nil {
		return nil, errors.E(op, err)
	}
	var pt proto.Tree
	if err := pb.Unmarshal(b, &pt); err != nil {
		return nil, errors.E(op, errors.Integrity, err)
	}
	if sharebox.EpochID(pt.Epoch) != id {
		return nil, errors.E(op, errors.Integrity, errors.Str("tree epoch mismatch"))
	}
	t := &Tree{
		Owner:    sharebox.UserName(pt.Owner),
		Filename: sharebox.FileName(pt.Filename),
		Epoch:    id,
	}
	for _, pe := range pt.Edges {
		t.Edges = append(t.Edges, &Edge{
			Sharer:      sharebox.UserName(pe.Sharer),
			Recipient:   sharebox.UserName(pe.Recipient),
			State:       State(pe.State),
			CertAddress: sharebox.Location(pe.CertAddress),
		})
	}
	return t, nil
}

// Save stores the tree of the file at fileAddr under the epoch.
func (t *Tree) Save(store sharebox.DataServer, fileAddr sharebox.Location, e *sharebox.Epoch) error {
	const op errors.Op = "sharetree.Save"
	pt := &proto.Tree{
		Owner:    string(t.Owner),
		Filename: string(t.Filename),
		Epoch:    uint64(e.ID),
	}
	for _, edge := range t.Edges {
		pt.Edges = append(pt.Edges, &proto.Edge{
			Sharer:      string(edge.Sharer),
			Recipient:   string(edge.Recipient),
			State:       int32(edge.State),
			CertAddress: string(edge.CertAddress),
		})
	}
	b, err := pb.Marshal(pt)
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}
	sealed, err := symm.Seal(e, treeAD(fileAddr, e.ID), b)
	if err != nil {
		return errors.E(op, err)
	}
	data := packutil.AppendUint(nil, uint64(e.ID))
	data = packutil.AppendBytes(data, sealed)
	if err := store.Put(address.Tree(fileAddr), data); err != nil {
		return errors.E(op, err)
	}
	t.Epoch = e.ID
	return nil
}

func treeAD(fileAddr sharebox.Location, id sharebox.EpochID) []byte {
	b := packutil.AppendString(nil, "sharebox tree")
	b = packutil.AppendString(b, string(fileAddr))
	return packutil.AppendUint(b, uint64(id))
}
