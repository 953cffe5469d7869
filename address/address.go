// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package address computes the data server locations at which users
// keep their files, certificates and private state.
//
// Locations of private data are derived from secrets, so the data server
// and other users cannot find or guess them. No location depends on the
// epoch of a file, so a location stays valid across key rotations.
package address // import "sharebox.io/address"

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"sharebox.io/key/sha256key"
	"sharebox.io/sharebox"
)

// Prefixes of the kinds of location.
const (
	filePrefix     = "f/"
	certPrefix     = "c/"
	identityPrefix = "u/"
	keychainPrefix = "k/"
	chunkPrefix    = "b/"
	treeSuffix     = "/tree"
)

const hashLen = 32

// File returns the location of the header of the named file owned by the
// holder of f. It is communicated to delegates inside certificates.
func File(f sharebox.Factotum, filename sharebox.FileName) sharebox.Location {
	purpose := sha256key.OfFields("file", string(f.UserName()), string(filename)).String()
	return sharebox.Location(filePrefix + hex.EncodeToString(f.Secret(purpose, hashLen)))
}

// Cert returns the location of the certificate issued by sharer to recipient
// for the named file. The shared secret is the Diffie-Hellman secret of the
// two users' encryption keys, so both of them, and nobody else, can compute it.
func Cert(shared []byte, sharer, recipient sharebox.UserName, filename sharebox.FileName) sharebox.Location {
	info := sha256key.OfFields("cert", string(sharer), string(recipient), string(filename))
	out := make([]byte, hashLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, info[:]), out); err != nil {
		panic(err) // Cannot happen for this output length.
	}
	return sharebox.Location(certPrefix + hex.EncodeToString(out))
}

// Tree returns the location of the sharing tree of the file at fileAddr.
func Tree(fileAddr sharebox.Location) sharebox.Location {
	return fileAddr + treeSuffix
}

// Identity returns the location of the user's sealed private keys.
// It must be computable from the user name alone, before anything is unsealed.
func Identity(user sharebox.UserName) sharebox.Location {
	h := sha256key.OfFields("identity", string(user))
	return sharebox.Location(identityPrefix + strings.ToLower(h.String()))
}

// Keychain returns the location of the sealed keychain of the holder of f.
func Keychain(f sharebox.Factotum) sharebox.Location {
	purpose := sha256key.OfFields("keychain", string(f.UserName())).String()
	return sharebox.Location(keychainPrefix + hex.EncodeToString(f.Secret(purpose, hashLen)))
}

// Chunk returns a fresh random location for a chunk of file data.
func Chunk() sharebox.Location {
	return sharebox.Location(chunkPrefix + uuid.NewString())
}

// IsChunk reports whether loc was made by Chunk.
func IsChunk(loc sharebox.Location) bool {
	s := string(loc)
	if !strings.HasPrefix(s, chunkPrefix) {
		return false
	}
	_, err := uuid.Parse(s[len(chunkPrefix):])
	return err == nil
}
