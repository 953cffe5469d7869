// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remote implements a key server that uses RPC to
// connect to a remote key server.
package remote // import "sharebox.io/key/remote"

import (
	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/rpc"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

// remote implements sharebox.KeyServer.
type remote struct {
	rpc.Client // For sending requests.
	endpoint   sharebox.Endpoint
}

var _ sharebox.KeyServer = (*remote)(nil)

// Dial returns a KeyServer that talks to the server at the remote endpoint.
// No connection is made until the first request.
func Dial(e sharebox.Endpoint) (sharebox.KeyServer, error) {
	const op errors.Op = "key/remote.Dial"
	if e.Transport != sharebox.Remote {
		return nil, errors.E(op, errors.Invalid, errors.Str("unrecognized transport"))
	}
	c, err := rpc.NewClient(e.NetAddr)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return &remote{
		Client:   c,
		endpoint: e,
	}, nil
}

// Lookup implements sharebox.KeyServer.
func (r *remote) Lookup(name sharebox.UserName) (*sharebox.User, error) {
	const op errors.Op = "key/remote.Lookup"
	req := &proto.KeyLookupRequest{
		Name: string(name),
	}
	resp := new(proto.KeyLookupResponse)
	if err := r.Invoke("Key/Lookup", req, resp); err != nil {
		return nil, errors.E(op, err)
	}
	if len(resp.Error) != 0 {
		return nil, errors.E(op, errors.UnmarshalError(resp.Error))
	}
	if resp.User == nil {
		return nil, errors.E(op, name, errors.Invalid, errors.Str("empty response"))
	}
	return proto.ShareboxUser(resp.User), nil
}

// Register implements sharebox.KeyServer.
func (r *remote) Register(user *sharebox.User) error {
	const op errors.Op = "key/remote.Register"
	req := &proto.KeyRegisterRequest{
		User: proto.UserProto(user),
	}
	resp := new(proto.KeyRegisterResponse)
	if err := r.Invoke("Key/Register", req, resp); err != nil {
		return errors.E(op, err)
	}
	if len(resp.Error) != 0 {
		return errors.E(op, errors.UnmarshalError(resp.Error))
	}
	return nil
}

// Clear implements sharebox.KeyServer.
func (r *remote) Clear() {
	resp := new(proto.ClearResponse)
	if err := r.Invoke("Key/Clear", &proto.ClearRequest{}, resp); err != nil {
		log.Error.Printf("key/remote.Clear: %s: %v", r.endpoint, err)
	}
}
