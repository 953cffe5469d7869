// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inprocess implements a simple non-persistent in-memory data service.
package inprocess // import "sharebox.io/store/inprocess"

import (
	"strconv"
	"strings"
	"sync"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

// service holds blobs by location. It implements sharebox.DataServer.
type service struct {
	// capacity is the maximum number of bytes this service can store.
	capacity int64

	// mu protects the fields below.
	mu   sync.Mutex
	blob map[sharebox.Location][]byte
	// usage is how much this service is currently storing.
	usage int64
}

var _ sharebox.DataServer = (*service)(nil)

var errStoreFull = errors.E(errors.IO, errors.Str("store full"))

// New returns a new, empty data service. The only option is
// "capacity=n", the number of bytes it may hold; the default is 1GB.
func New(options ...string) (sharebox.DataServer, error) {
	const op errors.Op = "store/inprocess.New"
	capacity := int64(1 << 30)
	var err error
	for _, optPair := range options {
		opt := strings.Split(optPair, "=")
		if len(opt) != 2 {
			return nil, errors.E(op, errors.Invalid, errors.Errorf("invalid option format: %q", optPair))
		}
		k, v := opt[0], opt[1]
		switch k {
		case "capacity":
			capacity, err = strconv.ParseInt(v, 10, 64)
			if err != nil || capacity < 0 {
				return nil, errors.E(op, errors.Invalid, errors.Errorf("invalid capacity %q", v))
			}
		default:
			return nil, errors.E(op, errors.Invalid, errors.Errorf("unknown option %q", k))
		}
	}
	return &service{
		capacity: capacity,
		blob:     make(map[sharebox.Location][]byte),
	}, nil
}

func copyOf(in []byte) (out []byte) {
	out = make([]byte, len(in))
	copy(out, in)
	return out
}

// Put implements sharebox.DataServer.
func (s *service) Put(loc sharebox.Location, data []byte) error {
	const op errors.Op = "store/inprocess.Put"
	if loc == "" {
		return errors.E(op, errors.Invalid, errors.Str("empty location"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	usage := s.usage - int64(len(s.blob[loc])) + int64(len(data))
	if usage > s.capacity {
		return errors.E(op, errStoreFull)
	}
	s.blob[loc] = copyOf(data)
	s.usage = usage
	return nil
}

// Get implements sharebox.DataServer.
func (s *service) Get(loc sharebox.Location) ([]byte, error) {
	const op errors.Op = "store/inprocess.Get"
	if loc == "" {
		return nil, errors.E(op, errors.Invalid, errors.Str("empty location"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blob[loc]
	if !ok {
		return nil, errors.E(op, errors.NotExist, errors.Errorf("no such blob: %s", loc))
	}
	return copyOf(data), nil
}

// Delete implements sharebox.DataServer.
func (s *service) Delete(loc sharebox.Location) error {
	const op errors.Op = "store/inprocess.Delete"
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blob[loc]
	if !ok {
		return errors.E(op, errors.NotExist, errors.Errorf("no such blob: %s", loc))
	}
	delete(s.blob, loc)
	s.usage -= int64(len(data))
	return nil
}

// Clear implements sharebox.DataServer.
func (s *service) Clear() {
	s.mu.Lock()
	s.blob = make(map[sharebox.Location][]byte)
	s.usage = 0
	s.mu.Unlock()
}
