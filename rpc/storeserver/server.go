// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storeserver is a wrapper for a sharebox.DataServer implementation
// that presents it as an HTTP service.
package storeserver // import "sharebox.io/rpc/storeserver"

import (
	"fmt"
	"net/http"

	pb "github.com/golang/protobuf/proto"
	metrics "github.com/rcrowley/go-metrics"

	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/rpc"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

type server struct {
	// The underlying storage implementation.
	store sharebox.DataServer
}

// New returns a handler serving store as the "Store" service. The Clear
// method, which removes every blob, is served only if allowClear is set.
func New(store sharebox.DataServer, reg metrics.Registry, allowClear bool) http.Handler {
	s := &server{
		store: store,
	}
	methods := map[string]rpc.Method{
		"Get":    s.Get,
		"Put":    s.Put,
		"Delete": s.Delete,
	}
	if allowClear {
		methods["Clear"] = s.Clear
	}
	return rpc.NewServer(reg, rpc.Service{
		Name:    "Store",
		Methods: methods,
	})
}

// Get implements the Store/Get method.
func (s *server) Get(reqBytes []byte) (pb.Message, error) {
	var req proto.StoreGetRequest
	if err := pb.Unmarshal(reqBytes, &req); err != nil {
		return nil, err
	}
	op := logf("Get(%q)", req.Location)

	data, err := s.store.Get(sharebox.Location(req.Location))
	if err != nil {
		op.log(err)
		return &proto.StoreGetResponse{Error: errors.MarshalError(err)}, nil
	}
	return &proto.StoreGetResponse{Data: data}, nil
}

// Put implements the Store/Put method.
func (s *server) Put(reqBytes []byte) (pb.Message, error) {
	var req proto.StorePutRequest
	if err := pb.Unmarshal(reqBytes, &req); err != nil {
		return nil, err
	}
	op := logf("Put(%q) (%d bytes)", req.Location, len(req.Data))

	if err := s.store.Put(sharebox.Location(req.Location), req.Data); err != nil {
		op.log(err)
		return &proto.StorePutResponse{Error: errors.MarshalError(err)}, nil
	}
	return &proto.StorePutResponse{}, nil
}

// Empty struct we can allocate just once.
var deleteResponse proto.StoreDeleteResponse

// Delete implements the Store/Delete method.
func (s *server) Delete(reqBytes []byte) (pb.Message, error) {
	var req proto.StoreDeleteRequest
	if err := pb.Unmarshal(reqBytes, &req); err != nil {
		return nil, err
	}
	op := logf("Delete(%q)", req.Location)

	if err := s.store.Delete(sharebox.Location(req.Location)); err != nil {
		op.log(err)
		return &proto.StoreDeleteResponse{Error: errors.MarshalError(err)}, nil
	}
	return &deleteResponse, nil
}

// Clear implements the Store/Clear method.
func (s *server) Clear(reqBytes []byte) (pb.Message, error) {
	logf("Clear()")
	s.store.Clear()
	return &proto.ClearResponse{}, nil
}

func logf(format string, args ...interface{}) operation {
	s := fmt.Sprintf(format, args...)
	log.Debug.Print("rpc/storeserver: " + s)
	return operation(s)
}

type operation string

func (op operation) log(err error) {
	logf("%v failed: %v", op, err)
}
