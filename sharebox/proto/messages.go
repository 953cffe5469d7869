// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proto

import (
	pb "github.com/golang/protobuf/proto"
)

// User is the public record of a user held by the KeyServer.
type User struct {
	Name          string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	SigningKey    string `protobuf:"bytes,2,opt,name=signing_key,proto3" json:"signing_key,omitempty"`
	EncryptionKey string `protobuf:"bytes,3,opt,name=encryption_key,proto3" json:"encryption_key,omitempty"`
	Salt          []byte `protobuf:"bytes,4,opt,name=salt,proto3" json:"salt,omitempty"`
}

func (m *User) Reset()         { *m = User{} }
func (m *User) String() string { return pb.CompactTextString(m) }
func (*User) ProtoMessage()    {}

type KeyLookupRequest struct {
	Name string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
}

func (m *KeyLookupRequest) Reset()         { *m = KeyLookupRequest{} }
func (m *KeyLookupRequest) String() string { return pb.CompactTextString(m) }
func (*KeyLookupRequest) ProtoMessage()    {}

type KeyLookupResponse struct {
	User  *User  `protobuf:"bytes,1,opt,name=user,proto3" json:"user,omitempty"`
	Error []byte `protobuf:"bytes,2,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *KeyLookupResponse) Reset()         { *m = KeyLookupResponse{} }
func (m *KeyLookupResponse) String() string { return pb.CompactTextString(m) }
func (*KeyLookupResponse) ProtoMessage()    {}

type KeyRegisterRequest struct {
	User *User `protobuf:"bytes,1,opt,name=user,proto3" json:"user,omitempty"`
}

func (m *KeyRegisterRequest) Reset()         { *m = KeyRegisterRequest{} }
func (m *KeyRegisterRequest) String() string { return pb.CompactTextString(m) }
func (*KeyRegisterRequest) ProtoMessage()    {}

type KeyRegisterResponse struct {
	Error []byte `protobuf:"bytes,1,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *KeyRegisterResponse) Reset()         { *m = KeyRegisterResponse{} }
func (m *KeyRegisterResponse) String() string { return pb.CompactTextString(m) }
func (*KeyRegisterResponse) ProtoMessage()    {}

// ClearRequest asks a server to discard all its state.
type ClearRequest struct {
}

func (m *ClearRequest) Reset()         { *m = ClearRequest{} }
func (m *ClearRequest) String() string { return pb.CompactTextString(m) }
func (*ClearRequest) ProtoMessage()    {}

type ClearResponse struct {
	Error []byte `protobuf:"bytes,1,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *ClearResponse) Reset()         { *m = ClearResponse{} }
func (m *ClearResponse) String() string { return pb.CompactTextString(m) }
func (*ClearResponse) ProtoMessage()    {}

type StorePutRequest struct {
	Location string `protobuf:"bytes,1,opt,name=location,proto3" json:"location,omitempty"`
	Data     []byte `protobuf:"bytes,2,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *StorePutRequest) Reset()         { *m = StorePutRequest{} }
func (m *StorePutRequest) String() string { return pb.CompactTextString(m) }
func (*StorePutRequest) ProtoMessage()    {}

type StorePutResponse struct {
	Error []byte `protobuf:"bytes,1,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *StorePutResponse) Reset()         { *m = StorePutResponse{} }
func (m *StorePutResponse) String() string { return pb.CompactTextString(m) }
func (*StorePutResponse) ProtoMessage()    {}

type StoreGetRequest struct {
	Location string `protobuf:"bytes,1,opt,name=location,proto3" json:"location,omitempty"`
}

func (m *StoreGetRequest) Reset()         { *m = StoreGetRequest{} }
func (m *StoreGetRequest) String() string { return pb.CompactTextString(m) }
func (*StoreGetRequest) ProtoMessage()    {}

type StoreGetResponse struct {
	Data  []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
	Error []byte `protobuf:"bytes,2,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *StoreGetResponse) Reset()         { *m = StoreGetResponse{} }
func (m *StoreGetResponse) String() string { return pb.CompactTextString(m) }
func (*StoreGetResponse) ProtoMessage()    {}

type StoreDeleteRequest struct {
	Location string `protobuf:"bytes,1,opt,name=location,proto3" json:"location,omitempty"`
}

func (m *StoreDeleteRequest) Reset()         { *m = StoreDeleteRequest{} }
func (m *StoreDeleteRequest) String() string { return pb.CompactTextString(m) }
func (*StoreDeleteRequest) ProtoMessage()    {}

type StoreDeleteResponse struct {
	Error []byte `protobuf:"bytes,1,opt,name=error,proto3" json:"error,omitempty"`
}

func (m *StoreDeleteResponse) Reset()         { *m = StoreDeleteResponse{} }
func (m *StoreDeleteResponse) String() string { return pb.CompactTextString(m) }
func (*StoreDeleteResponse) ProtoMessage()    {}

// Epoch is the key material of one generation of a file.
type Epoch struct {
	Id     uint64 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	EncKey []byte `protobuf:"bytes,2,opt,name=enc_key,proto3" json:"enc_key,omitempty"`
	MacKey []byte `protobuf:"bytes,3,opt,name=mac_key,proto3" json:"mac_key,omitempty"`
}

func (m *Epoch) Reset()         { *m = Epoch{} }
func (m *Epoch) String() string { return pb.CompactTextString(m) }
func (*Epoch) ProtoMessage()    {}

// Certificate is the plaintext of an access certificate.
type Certificate struct {
	Recipient   string `protobuf:"bytes,1,opt,name=recipient,proto3" json:"recipient,omitempty"`
	Sharer      string `protobuf:"bytes,2,opt,name=sharer,proto3" json:"sharer,omitempty"`
	Owner       string `protobuf:"bytes,3,opt,name=owner,proto3" json:"owner,omitempty"`
	Filename    string `protobuf:"bytes,4,opt,name=filename,proto3" json:"filename,omitempty"`
	FileAddress string `protobuf:"bytes,5,opt,name=file_address,proto3" json:"file_address,omitempty"`
	Epoch       *Epoch `protobuf:"bytes,6,opt,name=epoch,proto3" json:"epoch,omitempty"`
	Reissue     bool   `protobuf:"varint,7,opt,name=reissue,proto3" json:"reissue,omitempty"`
}

func (m *Certificate) Reset()         { *m = Certificate{} }
func (m *Certificate) String() string { return pb.CompactTextString(m) }
func (*Certificate) ProtoMessage()    {}

// Grant is a user's record of its access to one file.
type Grant struct {
	Filename    string   `protobuf:"bytes,1,opt,name=filename,proto3" json:"filename,omitempty"`
	Owner       string   `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
	Sharer      string   `protobuf:"bytes,3,opt,name=sharer,proto3" json:"sharer,omitempty"`
	FileAddress string   `protobuf:"bytes,4,opt,name=file_address,proto3" json:"file_address,omitempty"`
	Epochs      []*Epoch `protobuf:"bytes,5,rep,name=epochs,proto3" json:"epochs,omitempty"`
}

func (m *Grant) Reset()         { *m = Grant{} }
func (m *Grant) String() string { return pb.CompactTextString(m) }
func (*Grant) ProtoMessage()    {}

// Keychain holds all of a user's grants.
type Keychain struct {
	Grants []*Grant `protobuf:"bytes,1,rep,name=grants,proto3" json:"grants,omitempty"`
}

func (m *Keychain) Reset()         { *m = Keychain{} }
func (m *Keychain) String() string { return pb.CompactTextString(m) }
func (*Keychain) ProtoMessage()    {}

// Edge is one delegation in a sharing tree.
type Edge struct {
	Sharer      string `protobuf:"bytes,1,opt,name=sharer,proto3" json:"sharer,omitempty"`
	Recipient   string `protobuf:"bytes,2,opt,name=recipient,proto3" json:"recipient,omitempty"`
	State       int32  `protobuf:"varint,3,opt,name=state,proto3" json:"state,omitempty"`
	CertAddress string `protobuf:"bytes,4,opt,name=cert_address,proto3" json:"cert_address,omitempty"`
}

func (m *Edge) Reset()         { *m = Edge{} }
func (m *Edge) String() string { return pb.CompactTextString(m) }
func (*Edge) ProtoMessage()    {}

// Tree is the sharing tree of a file.
type Tree struct {
	Owner    string  `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	Filename string  `protobuf:"bytes,2,opt,name=filename,proto3" json:"filename,omitempty"`
	Epoch    uint64  `protobuf:"varint,3,opt,name=epoch,proto3" json:"epoch,omitempty"`
	Edges    []*Edge `protobuf:"bytes,4,rep,name=edges,proto3" json:"edges,omitempty"`
}

func (m *Tree) Reset()         { *m = Tree{} }
func (m *Tree) String() string { return pb.CompactTextString(m) }
func (*Tree) ProtoMessage()    {}
