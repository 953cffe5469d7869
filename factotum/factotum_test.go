// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package factotum

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

// Small scrypt cost so tests run quickly.
const testN = 16

func newTestFactotum(t *testing.T, user sharebox.UserName) *Factotum {
	t.Helper()
	f, err := Generate(user)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestSealOpen(t *testing.T) {
	f := newTestFactotum(t, "alice")
	salt, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := f.Seal("secret", salt, testN)
	if err != nil {
		t.Fatal(err)
	}
	g, err := Open("alice", "secret", salt, testN, sealed)
	if err != nil {
		t.Fatal(err)
	}
	if g.SigningKey() != f.SigningKey() || g.EncryptionKey() != f.EncryptionKey() {
		t.Error("public keys differ after Open")
	}
	if !bytes.Equal(g.Secret("x", 32), f.Secret("x", 32)) {
		t.Error("root secret differs after Open")
	}
}

func TestOpenFailures(t *testing.T) {
	f := newTestFactotum(t, "alice")
	salt, _ := NewSalt()
	otherSalt, _ := NewSalt()
	sealed, err := f.Seal("secret", salt, testN)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 1

	tests := []struct {
		name     string
		user     sharebox.UserName
		password string
		salt     []byte
		sealed   []byte
	}{
		{"wrong password", "alice", "Secret", salt, sealed},
		{"wrong user", "bob", "secret", salt, sealed},
		{"wrong salt", "alice", "secret", otherSalt, sealed},
		{"tampered", "alice", "secret", salt, tampered},
		{"truncated", "alice", "secret", salt, sealed[:10]},
	}
	for _, test := range tests {
		_, err := Open(test.user, test.password, test.salt, testN, test.sealed)
		if !errors.Is(errors.Permission, err) {
			t.Errorf("%s: got %v, want Permission error", test.name, err)
		}
	}
}

func TestSignVerify(t *testing.T) {
	alice := newTestFactotum(t, "alice")
	bob := newTestFactotum(t, "bob")
	hash := sha256.Sum256([]byte("hello"))
	sig, err := alice.Sign(hash[:])
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(alice.SigningKey(), hash[:], sig); err != nil {
		t.Errorf("valid signature: %v", err)
	}
	if err := Verify(bob.SigningKey(), hash[:], sig); !errors.Is(errors.Permission, err) {
		t.Errorf("wrong key: got %v, want Permission error", err)
	}
	other := sha256.Sum256([]byte("goodbye"))
	if err := Verify(alice.SigningKey(), other[:], sig); !errors.Is(errors.Permission, err) {
		t.Errorf("wrong hash: got %v, want Permission error", err)
	}
	if err := Verify(alice.SigningKey(), hash[:], sharebox.Signature{}); !errors.Is(errors.Permission, err) {
		t.Errorf("empty signature: got %v, want Permission error", err)
	}
}

func TestECDH(t *testing.T) {
	alice := newTestFactotum(t, "alice")
	bob := newTestFactotum(t, "bob")
	ab, err := alice.ECDH(bob.EncryptionKey())
	if err != nil {
		t.Fatal(err)
	}
	ba, err := bob.ECDH(alice.EncryptionKey())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ab, ba) {
		t.Error("shared secrets differ")
	}
	carol := newTestFactotum(t, "carol")
	ac, err := alice.ECDH(carol.EncryptionKey())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ab, ac) {
		t.Error("shared secrets with different peers are equal")
	}
}

func TestSecret(t *testing.T) {
	f := newTestFactotum(t, "alice")
	if !bytes.Equal(f.Secret("a", 32), f.Secret("a", 32)) {
		t.Error("Secret is not deterministic")
	}
	if bytes.Equal(f.Secret("a", 32), f.Secret("b", 32)) {
		t.Error("different purposes give the same secret")
	}
	g := newTestFactotum(t, "alice")
	if bytes.Equal(f.Secret("a", 32), g.Secret("a", 32)) {
		t.Error("different root secrets give the same secret")
	}
}

func TestParsePublicKey(t *testing.T) {
	f := newTestFactotum(t, "alice")
	if _, typ, err := ParsePublicKey(f.SigningKey()); err != nil || typ != "p256" {
		t.Errorf("ParsePublicKey = %q, %v", typ, err)
	}
	if _, err := ParseECDHKey(f.EncryptionKey()); err != nil {
		t.Error(err)
	}
	bad := []sharebox.PublicKey{
		"",
		"p256\n1\n2",
		"p256\nx\n2\n",
		"p256\n1\ny\n",
		"rsa\n1\n2\n",
		"p256\n1\n2\n", // Not on the curve.
	}
	for _, k := range bad {
		if _, _, err := ParsePublicKey(k); !errors.Is(errors.Invalid, err) {
			t.Errorf("ParsePublicKey(%q): got %v, want Invalid error", k, err)
		}
	}
}
