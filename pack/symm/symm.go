// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symm implements the symmetric encryption of file data under
// the keys of an epoch. Data is encrypted with AES-256-CTR under a fresh
// random IV and then authenticated with HMAC-SHA256 over caller-supplied
// additional data, the IV and the ciphertext (encrypt-then-MAC).
package symm // import "sharebox.io/pack/symm"

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"sharebox.io/errors"
	"sharebox.io/pack/packutil"
	"sharebox.io/sharebox"
)

const (
	ivLen  = aes.BlockSize
	tagLen = sha256.Size
)

// Overhead is the number of bytes Seal adds to its input.
const Overhead = ivLen + tagLen

var errTag = errors.Str("authentication tag mismatch")

// Seal encrypts plaintext under the epoch and binds the result to ad.
// The output is iv || ciphertext || tag.
func Seal(e *sharebox.Epoch, ad, plaintext []byte) ([]byte, error) {
	const op errors.Op = "pack/symm.Seal"
	if err := checkEpoch(e); err != nil {
		return nil, errors.E(op, err)
	}
	out := make([]byte, ivLen+len(plaintext), ivLen+len(plaintext)+tagLen)
	iv := out[:ivLen]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	block, err := aes.NewCipher(e.EncKey)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	cipher.NewCTR(block, iv).XORKeyStream(out[ivLen:], plaintext)
	return append(out, sealTag(e, ad, out)...), nil
}

// Open verifies and decrypts the output of Seal. It fails with an
// Integrity error if the data or ad do not match.
func Open(e *sharebox.Epoch, ad, sealed []byte) ([]byte, error) {
	const op errors.Op = "pack/symm.Open"
	if err := checkEpoch(e); err != nil {
		return nil, errors.E(op, err)
	}
	if len(sealed) < Overhead {
		return nil, errors.E(op, errors.Integrity, errors.Str("sealed data too short"))
	}
	body, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]
	if !hmac.Equal(tag, sealTag(e, ad, body)) {
		return nil, errors.E(op, errors.Integrity, errTag)
	}
	block, err := aes.NewCipher(e.EncKey)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	plaintext := make([]byte, len(body)-ivLen)
	cipher.NewCTR(block, body[:ivLen]).XORKeyStream(plaintext, body[ivLen:])
	return plaintext, nil
}

// Tag returns the authentication tag at the end of sealed data,
// or nil if the data is too short to have been produced by Seal.
func Tag(sealed []byte) []byte {
	if len(sealed) < Overhead {
		return nil
	}
	return sealed[len(sealed)-tagLen:]
}

func sealTag(e *sharebox.Epoch, ad, body []byte) []byte {
	return MAC(e, ad, body)
}

// MAC returns the HMAC-SHA256 under the epoch's MAC key of the fields,
// each prefixed by its length.
func MAC(e *sharebox.Epoch, fields ...[]byte) []byte {
	m := hmac.New(sha256.New, e.MACKey)
	var b []byte
	for _, f := range fields {
		b = packutil.AppendBytes(b[:0], f)
		m.Write(b)
	}
	return m.Sum(nil)
}

// CheckMAC reports an Integrity error if tag is not the MAC of the fields.
func CheckMAC(e *sharebox.Epoch, tag []byte, fields ...[]byte) error {
	if !hmac.Equal(tag, MAC(e, fields...)) {
		return errors.E(errors.Op("pack/symm.CheckMAC"), errors.Integrity, errTag)
	}
	return nil
}

// NewEpoch returns an epoch with the given id and fresh random keys.
func NewEpoch(id sharebox.EpochID) (*sharebox.Epoch, error) {
	e := &sharebox.Epoch{
		ID:     id,
		EncKey: make([]byte, sharebox.EncKeyLen),
		MACKey: make([]byte, sharebox.MACKeyLen),
	}
	if _, err := io.ReadFull(rand.Reader, e.EncKey); err != nil {
		return nil, errors.E(errors.Op("pack/symm.NewEpoch"), errors.Internal, err)
	}
	if _, err := io.ReadFull(rand.Reader, e.MACKey); err != nil {
		return nil, errors.E(errors.Op("pack/symm.NewEpoch"), errors.Internal, err)
	}
	return e, nil
}

func checkEpoch(e *sharebox.Epoch) error {
	if e == nil || len(e.EncKey) != sharebox.EncKeyLen || len(e.MACKey) != sharebox.MACKeyLen {
		return errors.E(errors.Invalid, errors.Str("wrong key length for epoch"))
	}
	return nil
}
