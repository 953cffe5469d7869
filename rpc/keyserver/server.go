// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keyserver is a wrapper for a sharebox.KeyServer implementation
// that presents it as an HTTP service.
package keyserver // import "sharebox.io/rpc/keyserver"

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
	// The underlying keyserver implementation.
	key sharebox.KeyServer
}

// New returns a handler serving key as the "Key" service. The Clear
// method, which removes every user, is served only if allowClear is set.
func New(key sharebox.KeyServer, reg metrics.Registry, allowClear bool) http.Handler {
	s := &server{
		key: key,
	}
	methods := map[string]rpc.Method{
		"Lookup":   s.Lookup,
		"Register": s.Register,
	}
	if allowClear {
		methods["Clear"] = s.Clear
	}
	return rpc.NewServer(reg, rpc.Service{
		Name:    "Key",
		Methods: methods,
	})
}

// Lookup implements the Key/Lookup method.
func (s *server) Lookup(reqBytes []byte) (pb.Message, error) {
	var req proto.KeyLookupRequest
	if err := pb.Unmarshal(reqBytes, &req); err != nil {
		return nil, err
	}
	op := logf("Lookup(%q)", req.Name)

	user, err := s.key.Lookup(sharebox.UserName(req.Name))
	if err != nil {
		op.log(err)
		return &proto.KeyLookupResponse{Error: errors.MarshalError(err)}, nil
	}
	return &proto.KeyLookupResponse{User: proto.UserProto(user)}, nil
}

// Register implements the Key/Register method.
func (s *server) Register(reqBytes []byte) (pb.Message, error) {
	var req proto.KeyRegisterRequest
	if err := pb.Unmarshal(reqBytes, &req); err != nil {
		return nil, err
	}
	if req.User == nil {
		return nil, errors.E(errors.Invalid, errors.Str("missing user"))
	}
	op := logf("Register(%q)", req.User.Name)

	if err := s.key.Register(proto.ShareboxUser(req.User)); err != nil {
		op.log(err)
		return &proto.KeyRegisterResponse{Error: errors.MarshalError(err)}, nil
	}
	return &proto.KeyRegisterResponse{}, nil
}

// Clear implements the Key/Clear method.
func (s *server) Clear(reqBytes []byte) (pb.Message, error) {
	logf("Clear()")
	s.key.Clear()
	return &proto.ClearResponse{}, nil
}

func logf(format string, args ...interface{}) operation {
	s := fmt.Sprintf(format, args...)
	log.Debug.Print("rpc/keyserver: " + s)
	return operation(s)
}

type operation string

func (op operation) log(err error) {
	logf("%v failed: %v", op, err)
}
