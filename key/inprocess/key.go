// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inprocess implements a non-persistent, memory-resident key service.
package inprocess // import "sharebox.io/key/inprocess"

import (
	"sync"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
	"sharebox.io/user"
)

// New returns a new, empty key server.
func New() sharebox.KeyServer {
	return &server{
		users: make(map[sharebox.UserName]*sharebox.User),
	}
}

// server maps user names to their public keys.
// It implements the sharebox.KeyServer interface.
type server struct {
	// mu protects the fields below.
	mu    sync.RWMutex
	users map[sharebox.UserName]*sharebox.User
}

var _ sharebox.KeyServer = (*server)(nil)

// Lookup implements sharebox.KeyServer.
func (s *server) Lookup(name sharebox.UserName) (*sharebox.User, error) {
	const op errors.Op = "key/inprocess.Lookup"
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[name]
	if !ok {
		return nil, errors.E(op, name, errors.NotExist)
	}
	return dup(u), nil
}

// dup creates a copy of the User structure so the caller cannot change our data structures.
func dup(u *sharebox.User) *sharebox.User {
	v := *u
	v.Salt = append([]byte(nil), u.Salt...)
	return &v
}

// Register implements sharebox.KeyServer.
func (s *server) Register(u *sharebox.User) error {
	const op errors.Op = "key/inprocess.Register"
	if err := Valid(u); err != nil {
		return errors.E(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Name]; ok {
		return errors.E(op, u.Name, errors.Exist)
	}
	s.users[u.Name] = dup(u)
	return nil
}

// Clear implements sharebox.KeyServer.
func (s *server) Clear() {
	s.mu.Lock()
	s.users = make(map[sharebox.UserName]*sharebox.User)
	s.mu.Unlock()
}

// Valid checks that a user record is well formed: a clean name and
// both keys present.
func Valid(u *sharebox.User) error {
	if u == nil {
		return errors.E(errors.Invalid, errors.Str("nil user"))
	}
	clean, err := user.Clean(u.Name)
	if err != nil {
		return err
	}
	if clean != u.Name {
		return errors.E(errors.Invalid, u.Name, errors.Str("user name not in canonical form"))
	}
	if u.SigningKey == "" || u.EncryptionKey == "" {
		return errors.E(errors.Invalid, u.Name, errors.Str("missing public key"))
	}
	return nil
}
