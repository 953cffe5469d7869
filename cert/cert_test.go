// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cert

import (
	"bytes"
	"testing"

	"sharebox.io/errors"
	"sharebox.io/factotum"
	"sharebox.io/key/inprocess"
	"sharebox.io/pack/symm"
	"sharebox.io/sharebox"
	storeinprocess "sharebox.io/store/inprocess"
)

const fileName = sharebox.FileName("plan.txt")

type env struct {
	keys  sharebox.KeyServer
	store sharebox.DataServer
	users map[sharebox.UserName]*factotum.Factotum
}

func setup(t *testing.T, names ...sharebox.UserName) *env {
	t.Helper()
	store, err := storeinprocess.New()
	if err != nil {
		t.Fatal(err)
	}
	e := &env{
		keys:  inprocess.New(),
		store: store,
		users: make(map[sharebox.UserName]*factotum.Factotum),
	}
	for _, name := range names {
		f, err := factotum.Generate(name)
		if err != nil {
			t.Fatal(err)
		}
		err = e.keys.Register(&sharebox.User{
			Name:          name,
			SigningKey:    f.SigningKey(),
			EncryptionKey: f.EncryptionKey(),
		})
		if err != nil {
			t.Fatal(err)
		}
		e.users[name] = f
	}
	return e
}

func (e *env) cert(t *testing.T, sharer, recipient sharebox.UserName) *Certificate {
	t.Helper()
	epoch, err := symm.NewEpoch(3)
	if err != nil {
		t.Fatal(err)
	}
	return &Certificate{
		Recipient:   recipient,
		Sharer:      sharer,
		Owner:       "alice",
		Filename:    fileName,
		FileAddress: "f/abcd",
		Epoch:       epoch,
	}
}

func TestIssueAccept(t *testing.T) {
	e := setup(t, "alice", "bob")
	c := e.cert(t, "alice", "bob")
	loc, err := Issue(e.users["alice"], e.keys, e.store, c)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Accept(e.users["bob"], e.keys, e.store, "alice", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if got.Recipient != "bob" || got.Sharer != "alice" || got.Owner != "alice" || got.Filename != fileName || got.FileAddress != "f/abcd" {
		t.Errorf("Accept = %+v", got)
	}
	if got.Epoch.ID != 3 || !bytes.Equal(got.Epoch.EncKey, c.Epoch.EncKey) || !bytes.Equal(got.Epoch.MACKey, c.Epoch.MACKey) {
		t.Errorf("epoch = %+v, want %+v", got.Epoch, c.Epoch)
	}
	if got.Reissue {
		t.Error("share accepted as a reissue")
	}

	// A reissue replaces the share and says so.
	c.Reissue = true
	if _, err := Issue(e.users["alice"], e.keys, e.store, c); err != nil {
		t.Fatal(err)
	}
	got, err = Accept(e.users["bob"], e.keys, e.store, "alice", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Reissue {
		t.Error("reissue accepted as a share")
	}

	// Both parties compute the same location.
	for _, who := range []sharebox.UserName{"alice", "bob"} {
		addr, err := Address(e.users[who], e.keys, "alice", "bob", fileName)
		if err != nil {
			t.Fatal(err)
		}
		if addr != loc {
			t.Errorf("%s computes %s, want %s", who, addr, loc)
		}
	}
}

func TestAcceptFailures(t *testing.T) {
	e := setup(t, "alice", "bob", "carol", "mallory")
	if _, err := Issue(e.users["alice"], e.keys, e.store, e.cert(t, "alice", "bob")); err != nil {
		t.Fatal(err)
	}
	bob := e.users["bob"]
	tests := []struct {
		name   string
		f      *factotum.Factotum
		issuer sharebox.UserName
		file   sharebox.FileName
	}{
		{"never issued", e.users["carol"], "alice", fileName},
		{"wrong issuer", bob, "carol", fileName},
		{"unknown issuer", bob, "nobody", fileName},
		{"wrong file", bob, "alice", "other.txt"},
	}
	for _, test := range tests {
		if _, err := Accept(test.f, e.keys, e.store, test.issuer, test.file); !errors.Is(errors.Permission, err) {
			t.Errorf("%s: got %v, want Permission", test.name, err)
		}
	}
}

func TestForgery(t *testing.T) {
	e := setup(t, "alice", "bob", "mallory")
	loc, err := Issue(e.users["alice"], e.keys, e.store, e.cert(t, "alice", "bob"))
	if err != nil {
		t.Fatal(err)
	}
	genuine, err := e.store.Get(loc)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one byte anywhere in the stored certificate.
	for _, i := range []int{1, len(genuine) / 2, len(genuine) - 1} {
		bad := append([]byte(nil), genuine...)
		bad[i] ^= 0x40
		e.store.Put(loc, bad)
		if _, err := Accept(e.users["bob"], e.keys, e.store, "alice", fileName); !errors.Is(errors.Permission, err) {
			t.Errorf("byte %d flipped: got %v, want Permission", i, err)
		}
	}

	// Mallory learns the location and writes her own certificate there.
	mloc, err := Issue(e.users["mallory"], e.keys, e.store, e.cert(t, "mallory", "bob"))
	if err != nil {
		t.Fatal(err)
	}
	forged, err := e.store.Get(mloc)
	if err != nil {
		t.Fatal(err)
	}
	e.store.Put(loc, forged)
	if _, err := Accept(e.users["bob"], e.keys, e.store, "alice", fileName); !errors.Is(errors.Permission, err) {
		t.Errorf("forged certificate: got %v, want Permission", err)
	}
}

func TestIssueErrors(t *testing.T) {
	e := setup(t, "alice", "bob")
	if _, err := Issue(e.users["alice"], e.keys, e.store, e.cert(t, "alice", "nobody")); !errors.Is(errors.NotExist, err) {
		t.Errorf("issue to unknown user: got %v, want NotExist", err)
	}
	if _, err := Issue(e.users["alice"], e.keys, e.store, e.cert(t, "bob", "alice")); !errors.Is(errors.Invalid, err) {
		t.Errorf("issue on behalf of another user: got %v, want Invalid", err)
	}
	c := e.cert(t, "alice", "bob")
	c.Epoch = nil
	if _, err := Issue(e.users["alice"], e.keys, e.store, c); !errors.Is(errors.Invalid, err) {
		t.Errorf("issue without epoch: got %v, want Invalid", err)
	}
}

func TestDestroy(t *testing.T) {
	e := setup(t, "alice", "bob")
	loc, err := Issue(e.users["alice"], e.keys, e.store, e.cert(t, "alice", "bob"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := Destroy(e.store, loc); err != nil {
			t.Fatalf("Destroy #%d: %v", i, err)
		}
	}
	if _, err := Accept(e.users["bob"], e.keys, e.store, "alice", fileName); !errors.Is(errors.Permission, err) {
		t.Errorf("Accept after Destroy: got %v, want Permission", err)
	}
}
