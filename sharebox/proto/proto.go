// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proto contains the protocol buffer messages exchanged between RPC
// servers and clients, and the messages of the records clients keep on the
// data server, mirroring the types in the sharebox package.
//
// The messages are plain structs with protobuf struct tags, encoded with
// github.com/golang/protobuf.
package proto // import "sharebox.io/sharebox/proto"

import (
	"sharebox.io/sharebox"
)

// All these converters are an unfortunate side-effect of not letting protobufs rule our types.

// UserProto converts a sharebox.User to its proto form.
func UserProto(u *sharebox.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		Name:          string(u.Name),
		SigningKey:    string(u.SigningKey),
		EncryptionKey: string(u.EncryptionKey),
		Salt:          u.Salt,
	}
}

// ShareboxUser converts a proto User to a sharebox.User.
func ShareboxUser(u *User) *sharebox.User {
	if u == nil {
		return nil
	}
	return &sharebox.User{
		Name:          sharebox.UserName(u.Name),
		SigningKey:    sharebox.PublicKey(u.SigningKey),
		EncryptionKey: sharebox.PublicKey(u.EncryptionKey),
		Salt:          u.Salt,
	}
}

// EpochProto converts a sharebox.Epoch to its proto form.
func EpochProto(e *sharebox.Epoch) *Epoch {
	if e == nil {
		return nil
	}
	return &Epoch{
		Id:     uint64(e.ID),
		EncKey: e.EncKey,
		MacKey: e.MACKey,
	}
}

// ShareboxEpoch converts a proto Epoch to a sharebox.Epoch.
func ShareboxEpoch(e *Epoch) *sharebox.Epoch {
	if e == nil {
		return nil
	}
	return &sharebox.Epoch{
		ID:     sharebox.EpochID(e.Id),
		EncKey: e.EncKey,
		MACKey: e.MacKey,
	}
}
