// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remote implements a data server that uses RPC to
// connect to a remote data server.
package remote // import "sharebox.io/store/remote"

import (
	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/rpc"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

// remote implements sharebox.DataServer.
type remote struct {
	rpc.Client // For sending requests.
	endpoint   sharebox.Endpoint
}

var _ sharebox.DataServer = (*remote)(nil)

// Dial returns a DataServer that talks to the server at the remote endpoint.
// No connection is made until the first request.
func Dial(e sharebox.Endpoint) (sharebox.DataServer, error) {
	const op errors.Op = "store/remote.Dial"
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

// Get implements sharebox.DataServer.
func (r *remote) Get(loc sharebox.Location) ([]byte, error) {
	const op errors.Op = "store/remote.Get"
	req := &proto.StoreGetRequest{
		Location: string(loc),
	}
	resp := new(proto.StoreGetResponse)
	if err := r.Invoke("Store/Get", req, resp); err != nil {
		return nil, errors.E(op, err)
	}
	if len(resp.Error) != 0 {
		return nil, errors.E(op, errors.UnmarshalError(resp.Error))
	}
	return resp.Data, nil
}

// Put implements sharebox.DataServer.
func (r *remote) Put(loc sharebox.Location, data []byte) error {
	const op errors.Op = "store/remote.Put"
	req := &proto.StorePutRequest{
		Location: string(loc),
		Data:     data,
	}
	resp := new(proto.StorePutResponse)
	if err := r.Invoke("Store/Put", req, resp); err != nil {
		return errors.E(op, err)
	}
	if len(resp.Error) != 0 {
		return errors.E(op, errors.UnmarshalError(resp.Error))
	}
	return nil
}

// Delete implements sharebox.DataServer.
func (r *remote) Delete(loc sharebox.Location) error {
	const op errors.Op = "store/remote.Delete"
	req := &proto.StoreDeleteRequest{
		Location: string(loc),
	}
	resp := new(proto.StoreDeleteResponse)
	if err := r.Invoke("Store/Delete", req, resp); err != nil {
		return errors.E(op, err)
	}
	if len(resp.Error) != 0 {
		return errors.E(op, errors.UnmarshalError(resp.Error))
	}
	return nil
}

// Clear implements sharebox.DataServer.
func (r *remote) Clear() {
	resp := new(proto.ClearResponse)
	if err := r.Invoke("Store/Clear", &proto.ClearRequest{}, resp); err != nil {
		log.Error.Printf("store/remote.Clear: %s: %v", r.endpoint, err)
	}
}
