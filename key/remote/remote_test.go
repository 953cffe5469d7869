// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"sharebox.io/errors"
	"sharebox.io/factotum"
	"sharebox.io/key/inprocess"
	"sharebox.io/rpc"
	"sharebox.io/rpc/keyserver"
	"sharebox.io/sharebox"
)

func setup(t *testing.T) sharebox.KeyServer {
	t.Helper()
	srv := httptest.NewServer(rpc.Handler(keyserver.New(inprocess.New(), nil, true)))
	t.Cleanup(srv.Close)
	key, err := Dial(sharebox.Endpoint{
		Transport: sharebox.Remote,
		NetAddr:   sharebox.NetAddr(strings.TrimPrefix(srv.URL, "http://")),
	})
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func newUser(t *testing.T, name sharebox.UserName) *sharebox.User {
	t.Helper()
	f, err := factotum.Generate(name)
	if err != nil {
		t.Fatal(err)
	}
	return &sharebox.User{
		Name:          name,
		SigningKey:    f.SigningKey(),
		EncryptionKey: f.EncryptionKey(),
		Salt:          []byte("0123456789abcdef"),
	}
}

func TestRegisterAndLookup(t *testing.T) {
	key := setup(t)
	u := newUser(t, "alice")
	if err := key.Register(u); err != nil {
		t.Fatal(err)
	}
	got, err := key.Lookup("alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != u.Name || got.SigningKey != u.SigningKey || got.EncryptionKey != u.EncryptionKey {
		t.Errorf("Lookup = %+v, want %+v", got, u)
	}
	if !bytes.Equal(got.Salt, u.Salt) {
		t.Errorf("salt = %x, want %x", got.Salt, u.Salt)
	}
}

func TestErrorsCrossTheWire(t *testing.T) {
	key := setup(t)
	_, err := key.Lookup("nobody")
	if !errors.Is(errors.NotExist, err) {
		t.Fatalf("Lookup of unknown user: %v, want NotExist", err)
	}
	u := newUser(t, "bob")
	if err := key.Register(u); err != nil {
		t.Fatal(err)
	}
	if err := key.Register(u); !errors.Is(errors.Exist, err) {
		t.Fatalf("second Register: %v, want Exist", err)
	}
	key.Clear()
	if _, err := key.Lookup("bob"); !errors.Is(errors.NotExist, err) {
		t.Fatalf("Lookup after Clear: %v, want NotExist", err)
	}
}

func TestDialBadTransport(t *testing.T) {
	_, err := Dial(sharebox.Endpoint{Transport: sharebox.InProcess})
	if !errors.Is(errors.Invalid, err) {
		t.Fatalf("Dial(inprocess) = %v, want Invalid", err)
	}
}
