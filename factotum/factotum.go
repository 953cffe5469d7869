// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package factotum encapsulates crypto operations on user's public/private keys.
//
// A user's private material is an ECDSA P-256 signing key, an ECDH P-256
// encryption key and a 32-byte root secret. At rest it is sealed with
// XChaCha20-Poly1305 under a key derived from the user's password by scrypt.
package factotum // import "sharebox.io/factotum"

import (
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/scrypt"

	"sharebox.io/errors"
	"sharebox.io/pack/packutil"
	"sharebox.io/sharebox"
)

// Sizes of the secrets handled here.
const (
	RootSecretLen = 32
	SaltLen       = 16
	keyLen        = 32 // Length of a P-256 scalar.
)

// sealVersion is written as the first field of a sealed bundle.
const sealVersion = 1

var sig0 sharebox.Signature // for returning nil

// Factotum holds one user's private keys. It implements sharebox.Factotum.
type Factotum struct {
	user    sharebox.UserName
	signing *ecdsa.PrivateKey
	sigPub  sharebox.PublicKey
	enc     *ecdh.PrivateKey
	encPub  sharebox.PublicKey
	root    []byte
}

var _ sharebox.Factotum = (*Factotum)(nil)

// Generate returns a Factotum holding freshly generated keys and root
// secret for the user.
func Generate(user sharebox.UserName) (*Factotum, error) {
	const op errors.Op = "factotum.Generate"
	sig, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.E(op, user, errors.Internal, err)
	}
	enc, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.E(op, user, errors.Internal, err)
	}
	root := make([]byte, RootSecretLen)
	if _, err := io.ReadFull(rand.Reader, root); err != nil {
		return nil, errors.E(op, user, errors.Internal, err)
	}
	return newFactotum(user, sig.D.FillBytes(make([]byte, keyLen)), enc.Bytes(), root)
}

// newFactotum builds a Factotum from the raw private scalars and root secret.
func newFactotum(user sharebox.UserName, sigD, encD, root []byte) (*Factotum, error) {
	const op errors.Op = "factotum.New"
	if len(root) != RootSecretLen {
		return nil, errors.E(op, user, errors.Invalid, errors.Str("bad root secret"))
	}
	// Check the signing scalar and recover its public point.
	sk, err := ecdh.P256().NewPrivateKey(sigD)
	if err != nil {
		return nil, errors.E(op, user, errors.Invalid, err)
	}
	x, y := unmarshalPoint(sk.PublicKey().Bytes())
	signing := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y},
		D:         new(big.Int).SetBytes(sigD),
	}
	enc, err := ecdh.P256().NewPrivateKey(encD)
	if err != nil {
		return nil, errors.E(op, user, errors.Invalid, err)
	}
	return &Factotum{
		user:    user,
		signing: signing,
		sigPub:  EncodePublicKey(&signing.PublicKey),
		enc:     enc,
		encPub:  EncodeECDHKey(enc.PublicKey()),
		root:    append([]byte(nil), root...),
	}, nil
}

// UserName implements sharebox.Factotum.
func (f *Factotum) UserName() sharebox.UserName {
	return f.user
}

// SigningKey implements sharebox.Factotum.
func (f *Factotum) SigningKey() sharebox.PublicKey {
	return f.sigPub
}

// EncryptionKey implements sharebox.Factotum.
func (f *Factotum) EncryptionKey() sharebox.PublicKey {
	return f.encPub
}

// Sign implements sharebox.Factotum.
func (f *Factotum) Sign(hash []byte) (sharebox.Signature, error) {
	r, s, err := ecdsa.Sign(rand.Reader, f.signing, hash)
	if err != nil {
		return sig0, errors.E(errors.Op("factotum.Sign"), f.user, errors.Internal, err)
	}
	return sharebox.Signature{R: r, S: s}, nil
}

// ECDH implements sharebox.Factotum.
func (f *Factotum) ECDH(peer sharebox.PublicKey) ([]byte, error) {
	const op errors.Op = "factotum.ECDH"
	pub, err := ParseECDHKey(peer)
	if err != nil {
		return nil, errors.E(op, f.user, err)
	}
	shared, err := f.enc.ECDH(pub)
	if err != nil {
		return nil, errors.E(op, f.user, errors.Invalid, err)
	}
	return shared, nil
}

// Secret implements sharebox.Factotum. The secret is derived from the
// root secret with HKDF-SHA256, so equal purposes give equal secrets.
func (f *Factotum) Secret(purpose string, n int) []byte {
	out := make([]byte, n)
	r := hkdf.New(sha256.New, f.root, nil, []byte("sharebox secret "+purpose))
	if _, err := io.ReadFull(r, out); err != nil {
		// Only possible if n exceeds HKDF's output limit.
		panic(err)
	}
	return out
}

// Seal encrypts the private keys and root secret under a key derived from
// the password and salt with scrypt cost n. The user name is bound into
// the ciphertext, so a bundle cannot be opened under another name.
func (f *Factotum) Seal(password string, salt []byte, n int) ([]byte, error) {
	const op errors.Op = "factotum.Seal"
	aead, err := passwordAEAD(password, salt, n)
	if err != nil {
		return nil, errors.E(op, f.user, err)
	}
	var plain []byte
	plain = packutil.AppendUint(plain, sealVersion)
	plain = packutil.AppendBytes(plain, f.signing.D.FillBytes(make([]byte, keyLen)))
	plain = packutil.AppendBytes(plain, f.enc.Bytes())
	plain = packutil.AppendBytes(plain, f.root)

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.E(op, f.user, errors.Internal, err)
	}
	return aead.Seal(nonce, nonce, plain, sealAD(f.user)), nil
}

// Open reverses Seal. A wrong password, wrong user name or modified
// bundle all give the same Permission error.
func Open(user sharebox.UserName, password string, salt []byte, n int, sealed []byte) (*Factotum, error) {
	const op errors.Op = "factotum.Open"
	aead, err := passwordAEAD(password, salt, n)
	if err != nil {
		return nil, errors.E(op, user, err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.E(op, user, errors.Permission, errors.Str("cannot unseal keys"))
	}
	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, sealAD(user))
	if err != nil {
		return nil, errors.E(op, user, errors.Permission, errors.Str("cannot unseal keys"))
	}
	r := packutil.NewReader(plain)
	version := r.Uint()
	sigD := r.Bytes()
	encD := r.Bytes()
	root := r.Bytes()
	if err := r.Done(); err != nil {
		return nil, errors.E(op, user, errors.Integrity, err)
	}
	if version != sealVersion {
		return nil, errors.E(op, user, errors.Invalid, errors.Errorf("unknown sealed key version %d", version))
	}
	return newFactotum(user, sigD, encD, root)
}

// NewSalt returns a random salt for use with Seal.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.E(errors.Op("factotum.NewSalt"), errors.Internal, err)
	}
	return salt, nil
}

func passwordAEAD(password string, salt []byte, n int) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, n, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.E(errors.Invalid, err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.E(errors.Internal, err)
	}
	return aead, nil
}

func sealAD(user sharebox.UserName) []byte {
	return []byte("sharebox identity " + string(user))
}

// Verify checks that sig is a valid signature of hash by the holder of key.
func Verify(key sharebox.PublicKey, hash []byte, sig sharebox.Signature) error {
	const op errors.Op = "factotum.Verify"
	pub, _, err := ParsePublicKey(key)
	if err != nil {
		return errors.E(op, err)
	}
	if sig.R == nil || sig.S == nil || !ecdsa.Verify(pub, hash, sig.R, sig.S) {
		return errors.E(op, errors.Permission, errors.Str("signature does not verify"))
	}
	return nil
}

// EncodePublicKey returns the text representation of an ECDSA public key.
func EncodePublicKey(pub *ecdsa.PublicKey) sharebox.PublicKey {
	return sharebox.PublicKey(fmt.Sprintf("%s\n%s\n%s\n", curveName(pub.Curve), pub.X.String(), pub.Y.String()))
}

// EncodeECDHKey returns the text representation of a P-256 ECDH public key.
func EncodeECDHKey(pub *ecdh.PublicKey) sharebox.PublicKey {
	x, y := unmarshalPoint(pub.Bytes())
	return EncodePublicKey(&ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y})
}

// unmarshalPoint splits an uncompressed P-256 point into its coordinates.
func unmarshalPoint(b []byte) (x, y *big.Int) {
	// b is 0x04 || X || Y.
	x = new(big.Int).SetBytes(b[1 : 1+keyLen])
	y = new(big.Int).SetBytes(b[1+keyLen:])
	return x, y
}

func curveName(c elliptic.Curve) string {
	switch c {
	case elliptic.P256():
		return "p256"
	case elliptic.P384():
		return "p384"
	case elliptic.P521():
		return "p521"
	}
	return "unknown"
}

// ParsePublicKey takes the text representation of a public key and converts
// it into an ECDSA public key, returning its type.
// The representation uses \n as newline no matter what native OS it runs on.
func ParsePublicKey(public sharebox.PublicKey) (*ecdsa.PublicKey, string, error) {
	const op errors.Op = "factotum.ParsePublicKey"
	fields := strings.Split(string(public), "\n")
	if len(fields) != 4 { // 4 is because string should be terminated by \n, hence fields[3]==""
		return nil, "", errors.E(op, errors.Invalid, errors.Errorf("expected keytype, two big ints and a newline; got %d %v", len(fields), fields))
	}
	keyType := fields[0]
	var x, y big.Int
	_, ok := x.SetString(fields[1], 10)
	if !ok {
		return nil, "", errors.E(op, errors.Invalid, errors.Errorf("%s is not a big int", fields[1]))
	}
	_, ok = y.SetString(fields[2], 10)
	if !ok {
		return nil, "", errors.E(op, errors.Invalid, errors.Errorf("%s is not a big int", fields[2]))
	}

	var curve elliptic.Curve
	switch keyType {
	case "p256":
		curve = elliptic.P256()
	case "p521":
		curve = elliptic.P521()
	case "p384":
		curve = elliptic.P384()
	default:
		return nil, "", errors.E(op, errors.Invalid, errors.Errorf("unknown key type: %q", keyType))
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: &x, Y: &y}
	// ECDH rejects points that are not on the curve.
	if _, err := pub.ECDH(); err != nil {
		return nil, "", errors.E(op, errors.Invalid, err)
	}
	return pub, keyType, nil
}

// ParseECDHKey parses the text representation of a P-256 public key for
// use in key agreement.
func ParseECDHKey(public sharebox.PublicKey) (*ecdh.PublicKey, error) {
	const op errors.Op = "factotum.ParseECDHKey"
	pub, keyType, err := ParsePublicKey(public)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if keyType != "p256" {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("key type %q cannot be used for encryption", keyType))
	}
	k, err := pub.ECDH()
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	return k, nil
}
