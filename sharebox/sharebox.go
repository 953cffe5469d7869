// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sharebox

import (
	"math/big"

	metrics "github.com/rcrowley/go-metrics"
)

// A UserName is just a string representing a user.
// It is given a unique type so the API is clear.
// Example: alice
type UserName string

// A FileName is the name a user gives to one of its files.
// Shared files are known by the same name to every user in their tree.
type FileName string

// A Location is the key under which a blob is kept on a DataServer.
// Locations are computed by the client (see package address) and are
// opaque to the server.
type Location string

// A PublicKey is used when exchanging data with other users.
// It is stored as the curve name followed by the two coordinates
// in decimal, each terminated by a newline:
//	p256
//	12345...
//	67890...
type PublicKey string

// Signature is an ECDSA signature.
type Signature struct {
	R, S *big.Int
}

// User describes the public information the KeyServer holds for a user.
type User struct {
	// Name is the user's name.
	Name UserName

	// SigningKey verifies signatures made by the user.
	SigningKey PublicKey

	// EncryptionKey is used to wrap keys so only the user can unwrap them.
	EncryptionKey PublicKey

	// Salt is the random salt for deriving the user's password key.
	Salt []byte
}

// An EpochID numbers one generation of a file's keys. Epochs of a file
// start at 1 and only ever increase.
type EpochID uint64

// Epoch is the symmetric key material of one generation of a file.
// Epoch values are never modified once minted; rotation mints a new one.
type Epoch struct {
	ID     EpochID
	EncKey []byte // AES-256 key for file contents.
	MACKey []byte // HMAC-SHA256 key for headers and chunks.
}

// Sizes of the keys in an Epoch.
const (
	EncKeyLen = 32
	MACKeyLen = 32
)

// The KeyServer is the public-key directory.
type KeyServer interface {
	// Register records the public information for a new user.
	// It fails with errors.Exist if the user is already registered.
	Register(user *User) error

	// Lookup returns the public information for the named user.
	// It fails with errors.NotExist if the user is unknown.
	Lookup(name UserName) (*User, error)

	// Clear removes all users. It exists for testing.
	Clear()
}

// The DataServer saves and retrieves blobs without interpretation.
// Each Put and Get is atomic with respect to its own Location; there is
// no atomicity across Locations.
type DataServer interface {
	// Put stores data at the location, replacing anything already there.
	Put(loc Location, data []byte) error

	// Get returns the data at the location.
	// It fails with errors.NotExist if nothing is stored there.
	Get(loc Location) ([]byte, error)

	// Delete removes the data at the location.
	// It fails with errors.NotExist if nothing is stored there.
	Delete(loc Location) error

	// Clear removes all data. It exists for testing.
	Clear()
}

// Factotum holds a user's private keys and performs the operations
// that require them. The keys themselves never leave the Factotum.
type Factotum interface {
	// UserName returns the name of the user whose keys these are.
	UserName() UserName

	// SigningKey returns the user's public signing key.
	SigningKey() PublicKey

	// EncryptionKey returns the user's public encryption key.
	EncryptionKey() PublicKey

	// Sign ECDSA-signs the hash with the user's signing key.
	Sign(hash []byte) (Signature, error)

	// ECDH returns the Diffie-Hellman shared secret between the user's
	// encryption key and the peer's public key.
	ECDH(peer PublicKey) ([]byte, error)

	// Secret derives a secret of n bytes, known only to the user,
	// for the given purpose.
	Secret(purpose string, n int) []byte
}

// Config holds the services and parameters a client runs with.
// Config values are immutable; use the setters in package config
// to derive new ones.
type Config interface {
	// KeyServer returns the public-key directory.
	KeyServer() KeyServer

	// DataServer returns the untrusted storage service.
	DataServer() DataServer

	// ScryptN returns the scrypt cost parameter for password keys.
	ScryptN() int

	// Concurrency returns how many certificates may be reissued at
	// once during a revocation.
	Concurrency() int

	// Metrics returns the registry that records client operations.
	Metrics() metrics.Registry
}
