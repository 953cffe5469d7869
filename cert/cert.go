// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cert issues and accepts access certificates.
//
// A certificate carries the keys of one epoch of a file from the user who
// issues it to one recipient. Its contents are encrypted to the recipient's
// public encryption key and the whole is signed by the issuer, so only the
// recipient can read it and the recipient can tell who wrote it. It is kept
// on the DataServer at a location that only the two of them can compute.
package cert // import "sharebox.io/cert"

import (
	"crypto/sha256"
	"math/big"

	pb "github.com/golang/protobuf/proto"

	"sharebox.io/address"
	"sharebox.io/errors"
	"sharebox.io/factotum"
	"sharebox.io/pack/ee"
	"sharebox.io/pack/packutil"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

// certFormat is the first field of every stored certificate.
const certFormat = 1

// Certificate grants its recipient the keys to one epoch of a file.
type Certificate struct {
	Recipient   sharebox.UserName
	Sharer      sharebox.UserName // The issuer.
	Owner       sharebox.UserName
	Filename    sharebox.FileName
	FileAddress sharebox.Location
	Epoch       *sharebox.Epoch

	// Reissue is set on a certificate that moves a member who has
	// already received the file to a new epoch. It is clear on a
	// share, which is only honored once the recipient receives it.
	Reissue bool
}

var errBadCert = errors.Str("no valid certificate")

// Address returns the location of the certificate issued by sharer to
// recipient for the file. The holder of f must be one of the two users.
func Address(f sharebox.Factotum, keys sharebox.KeyServer, sharer, recipient sharebox.UserName, filename sharebox.FileName) (sharebox.Location, error) {
	const op errors.Op = "cert.Address"
	peer := sharer
	if peer == f.UserName() {
		peer = recipient
	}
	u, err := keys.Lookup(peer)
	if err != nil {
		return "", errors.E(op, err)
	}
	shared, err := f.ECDH(u.EncryptionKey)
	if err != nil {
		return "", errors.E(op, err)
	}
	return address.Cert(shared, sharer, recipient, filename), nil
}

// Issue writes a certificate from the holder of f to c.Recipient and
// returns its location. An existing certificate between the same users
// for the same file is replaced.
func Issue(f sharebox.Factotum, keys sharebox.KeyServer, store sharebox.DataServer, c *Certificate) (sharebox.Location, error) {
	const op errors.Op = "cert.Issue"
	if c.Sharer != f.UserName() {
		return "", errors.E(op, c.Sharer, errors.Invalid, errors.Str("certificate must be issued by its sharer"))
	}
	if c.Epoch == nil {
		return "", errors.E(op, c.Filename, errors.Invalid, errors.Str("certificate has no epoch"))
	}
	recipient, err := keys.Lookup(c.Recipient)
	if err != nil {
		return "", errors.E(op, err)
	}
	shared, err := f.ECDH(recipient.EncryptionKey)
	if err != nil {
		return "", errors.E(op, err)
	}
	loc := address.Cert(shared, c.Sharer, c.Recipient, c.Filename)

	payload, err := pb.Marshal(&proto.Certificate{
		Recipient:   string(c.Recipient),
		Sharer:      string(c.Sharer),
		Owner:       string(c.Owner),
		Filename:    string(c.Filename),
		FileAddress: string(c.FileAddress),
		Epoch:       proto.EpochProto(c.Epoch),
		Reissue:     c.Reissue,
	})
	if err != nil {
		return "", errors.E(op, errors.Internal, err)
	}
	ad := sealAD(c.Sharer, c.Recipient, c.Filename)
	sealed, err := ee.Wrap(recipient.EncryptionKey, payload, ad)
	if err != nil {
		return "", errors.E(op, err)
	}
	sig, err := f.Sign(signedHash(ad, sealed))
	if err != nil {
		return "", errors.E(op, err)
	}
	b := packutil.AppendUint(nil, certFormat)
	b = packutil.AppendBytes(b, sealed)
	b = packutil.AppendBytes(b, sig.R.Bytes())
	b = packutil.AppendBytes(b, sig.S.Bytes())
	if err := store.Put(loc, b); err != nil {
		return "", errors.E(op, err)
	}
	return loc, nil
}

// Accept reads, verifies and decrypts the certificate issued by issuer to
// the holder of f for the file. It fails with a Permission error if there
// is no such certificate or it is not genuine.
func Accept(f sharebox.Factotum, keys sharebox.KeyServer, store sharebox.DataServer, issuer sharebox.UserName, filename sharebox.FileName) (*Certificate, error) {
	const op errors.Op = "cert.Accept"
	self := f.UserName()
	u, err := keys.Lookup(issuer)
	if err != nil {
		return nil, errors.E(op, issuer, errors.Permission, err)
	}
	shared, err := f.ECDH(u.EncryptionKey)
	if err != nil {
		return nil, errors.E(op, issuer, errors.Permission, err)
	}
	data, err := store.Get(address.Cert(shared, issuer, self, filename))
	if err != nil {
		return nil, errors.E(op, filename, errors.Permission, err)
	}

	r := packutil.NewReader(data)
	format := r.Uint()
	sealed := r.Bytes()
	sig := sharebox.Signature{
		R: new(big.Int).SetBytes(r.Bytes()),
		S: new(big.Int).SetBytes(r.Bytes()),
	}
	if err := r.Done(); err != nil || format != certFormat {
		return nil, errors.E(op, filename, errors.Permission, errBadCert)
	}
	ad := sealAD(issuer, self, filename)
	if err := factotum.Verify(u.SigningKey, signedHash(ad, sealed), sig); err != nil {
		return nil, errors.E(op, filename, errors.Permission, err)
	}
	payload, err := ee.Unwrap(f, sealed, ad)
	if err != nil {
		return nil, errors.E(op, filename, errors.Permission, err)
	}
	var pc proto.Certificate
	if err := pb.Unmarshal(payload, &pc); err != nil {
		return nil, errors.E(op, filename, errors.Permission, err)
	}
	c := &Certificate{
		Recipient:   sharebox.UserName(pc.Recipient),
		Sharer:      sharebox.UserName(pc.Sharer),
		Owner:       sharebox.UserName(pc.Owner),
		Filename:    sharebox.FileName(pc.Filename),
		FileAddress: sharebox.Location(pc.FileAddress),
		Epoch:       proto.ShareboxEpoch(pc.Epoch),
		Reissue:     pc.Reissue,
	}
	if c.Recipient != self || c.Sharer != issuer || c.Filename != filename || c.Owner == "" || c.FileAddress == "" || !validEpoch(c.Epoch) {
		return nil, errors.E(op, filename, errors.Permission, errBadCert)
	}
	return c, nil
}

// Destroy deletes the certificate at loc. It is not an error if there
// is none.
func Destroy(store sharebox.DataServer, loc sharebox.Location) error {
	const op errors.Op = "cert.Destroy"
	if err := store.Delete(loc); err != nil && !errors.Is(errors.NotExist, err) {
		return errors.E(op, err)
	}
	return nil
}

// sealAD binds a certificate to the users and the file it is for.
func sealAD(sharer, recipient sharebox.UserName, filename sharebox.FileName) []byte {
	b := packutil.AppendString(nil, "sharebox cert")
	b = packutil.AppendString(b, string(sharer))
	b = packutil.AppendString(b, string(recipient))
	return packutil.AppendString(b, string(filename))
}

func signedHash(ad, sealed []byte) []byte {
	h := sha256.New()
	h.Write(ad)
	h.Write(packutil.AppendBytes(nil, sealed))
	return h.Sum(nil)
}

func validEpoch(e *sharebox.Epoch) bool {
	return e != nil && e.ID > 0 && len(e.EncKey) == sharebox.EncKeyLen && len(e.MACKey) == sharebox.MACKeyLen
}
