// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ee implements elliptic-curve end-to-end encryption of small
// payloads, such as access certificates, to a user's public encryption key.
//
// A payload is encrypted with AES-256-GCM under a key derived with HKDF-SHA256
// from the Diffie-Hellman secret of a fresh ephemeral P-256 key and the
// reader's key. The ephemeral public key travels with the ciphertext.
package ee // import "sharebox.io/pack/ee"

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"sharebox.io/errors"
	"sharebox.io/factotum"
	"sharebox.io/pack/packutil"
	"sharebox.io/sharebox"
)

const (
	aesKeyLen = 32 // AES-256
	gcmStd    = 12 // Standard GCM nonce length.
)

var errUnwrap = errors.Str("cannot unwrap")

// Wrap encrypts data so that only the holder of the private half of reader
// can read it. The additional data ad is authenticated but not encrypted,
// and must be presented again to Unwrap.
func Wrap(reader sharebox.PublicKey, data, ad []byte) ([]byte, error) {
	const op errors.Op = "pack/ee.Wrap"
	readerKey, err := factotum.ParseECDHKey(reader)
	if err != nil {
		return nil, errors.E(op, err)
	}
	eph, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	shared, err := eph.ECDH(readerKey)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	ephPub := factotum.EncodeECDHKey(eph.PublicKey())
	aead, err := newAEAD(shared, ephPub, reader)
	if err != nil {
		return nil, errors.E(op, err)
	}
	nonce := make([]byte, gcmStd)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	var b []byte
	b = packutil.AppendString(b, string(ephPub))
	b = packutil.AppendBytes(b, nonce)
	b = packutil.AppendBytes(b, aead.Seal(nil, nonce, data, ad))
	return b, nil
}

// Unwrap reverses Wrap using the encryption key held by f.
// Any failure, including a payload meant for someone else, is reported
// as a Permission error.
func Unwrap(f sharebox.Factotum, wrapped, ad []byte) ([]byte, error) {
	const op errors.Op = "pack/ee.Unwrap"
	r := packutil.NewReader(wrapped)
	ephPub := sharebox.PublicKey(r.String())
	nonce := r.Bytes()
	ct := r.Bytes()
	if err := r.Done(); err != nil || len(nonce) != gcmStd {
		return nil, errors.E(op, f.UserName(), errors.Permission, errUnwrap)
	}
	shared, err := f.ECDH(ephPub)
	if err != nil {
		return nil, errors.E(op, f.UserName(), errors.Permission, err)
	}
	aead, err := newAEAD(shared, ephPub, f.EncryptionKey())
	if err != nil {
		return nil, errors.E(op, err)
	}
	data, err := aead.Open(nil, nonce, ct, ad)
	if err != nil {
		return nil, errors.E(op, f.UserName(), errors.Permission, errUnwrap)
	}
	return data, nil
}

// newAEAD derives the wrapping cipher. Both public keys are bound into
// the derivation so a ciphertext cannot be replayed against another key.
func newAEAD(shared []byte, eph, reader sharebox.PublicKey) (cipher.AEAD, error) {
	var salt []byte
	salt = packutil.AppendString(salt, string(eph))
	salt = packutil.AppendString(salt, string(reader))
	key := make([]byte, aesKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, salt, []byte("sharebox ee")), key); err != nil {
		return nil, errors.E(errors.Internal, err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.E(errors.Internal, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.E(errors.Internal, err)
	}
	return aead, nil
}
