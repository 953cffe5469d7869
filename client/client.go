// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package client implements the sharebox client. It creates and
// authenticates users and provides the Session through which an
// authenticated user stores, shares and revokes files.
//
// All cryptography happens here: the KeyServer and DataServer in the
// Config are trusted only to return what was stored, and everything read
// back from them is verified before use.
//
// Session methods report failure with a single error of kind
// errors.Failed, whatever went wrong; the cause is logged at debug level.
package client // import "sharebox.io/client"

import (
	"sync"

	"sharebox.io/address"
	"sharebox.io/errors"
	"sharebox.io/factotum"
	"sharebox.io/key/usercache"
	"sharebox.io/log"
	"sharebox.io/metric"
	"sharebox.io/record"
	"sharebox.io/sharebox"
	"sharebox.io/user"
)

// Session is an authenticated user's connection to the services.
// Its methods may be called concurrently but run one at a time.
type Session struct {
	cfg   sharebox.Config
	f     *factotum.Factotum
	keys  sharebox.KeyServer // Caches lookups in cfg.KeyServer.
	store sharebox.DataServer

	// mu serializes operations and protects seen.
	mu sync.Mutex
	// seen holds, by file address, the newest header this session has
	// verified, so that a store serving an older one is detected.
	seen map[sharebox.Location]version
}

type version struct {
	epoch sharebox.EpochID
	seq   uint64
}

// CreateUser creates the named user with the given password. It generates
// the user's keys, publishes the public halves in the KeyServer, and stores
// the private halves on the DataServer sealed under the password.
// It fails with an Exist error if the name is taken.
func CreateUser(cfg sharebox.Config, name sharebox.UserName, password string) error {
	const op errors.Op = "client.CreateUser"
	m := metric.New(cfg.Metrics(), op)
	err := createUser(cfg, name, password)
	m.Done(err)
	if errors.Is(errors.Exist, err) {
		return errors.E(op, name, errors.Exist)
	}
	if err != nil {
		log.Debug.Printf("%s: %s: %v", op, name, err)
		return errors.E(op, name, errors.Failed)
	}
	return nil
}

func createUser(cfg sharebox.Config, name sharebox.UserName, password string) error {
	clean, err := user.Clean(name)
	if err != nil {
		return err
	}
	if clean != name {
		return errors.E(name, errors.Invalid, errors.Str("user name not in canonical form"))
	}
	keys, store := cfg.KeyServer(), cfg.DataServer()
	_, err = keys.Lookup(name)
	switch {
	case err == nil:
		return errors.E(name, errors.Exist)
	case !errors.Is(errors.NotExist, err):
		return err
	}

	f, err := factotum.Generate(name)
	if err != nil {
		return err
	}
	salt, err := factotum.NewSalt()
	if err != nil {
		return err
	}
	sealed, err := f.Seal(password, salt, cfg.ScryptN())
	if err != nil {
		return err
	}
	// Register first, so that losing a race for the name cannot
	// overwrite the winner's keys.
	err = keys.Register(&sharebox.User{
		Name:          name,
		SigningKey:    f.SigningKey(),
		EncryptionKey: f.EncryptionKey(),
		Salt:          salt,
	})
	if err != nil {
		return err
	}
	if err := store.Put(address.Identity(name), sealed); err != nil {
		return err
	}
	return saveKeychain(store, f, keychain{})
}

// AuthenticateUser returns a Session for the named user. An unknown user
// and a wrong password produce the same error.
func AuthenticateUser(cfg sharebox.Config, name sharebox.UserName, password string) (*Session, error) {
	const op errors.Op = "client.AuthenticateUser"
	m := metric.New(cfg.Metrics(), op)
	s, err := authenticateUser(cfg, name, password)
	m.Done(err)
	if err != nil {
		log.Debug.Printf("%s: %s: %v", op, name, err)
		return nil, errors.E(op, errors.Failed)
	}
	return s, nil
}

func authenticateUser(cfg sharebox.Config, name sharebox.UserName, password string) (*Session, error) {
	keys, store := cfg.KeyServer(), cfg.DataServer()
	u, err := keys.Lookup(name)
	if err != nil {
		wastePassword(cfg, name, password)
		return nil, err
	}
	sealed, err := store.Get(address.Identity(name))
	if err != nil {
		wastePassword(cfg, name, password)
		return nil, err
	}
	f, err := openIdentity(name, password, u.Salt, cfg.ScryptN(), sealed)
	if err != nil {
		return nil, err
	}
	if f.SigningKey() != u.SigningKey || f.EncryptionKey() != u.EncryptionKey {
		return nil, errors.E(name, errors.Integrity, errors.Str("sealed keys do not match published keys"))
	}
	return &Session{
		cfg:   cfg,
		f:     f,
		keys:  usercache.New(keys, usercache.DefaultDuration),
		store: store,
		seen:  make(map[sharebox.Location]version),
	}, nil
}

// openIdentity is factotum.Open; tests replace it to count calls.
var openIdentity = factotum.Open

// wastePassword derives a key from the password as a real login would,
// so that an unknown user takes as long to reject as a wrong password.
func wastePassword(cfg sharebox.Config, name sharebox.UserName, password string) {
	openIdentity(name, password, make([]byte, factotum.SaltLen), cfg.ScryptN(), nil)
}

// UserName returns the name of the session's user.
func (s *Session) UserName() sharebox.UserName {
	return s.f.UserName()
}

// do runs fn as the operation op, holding the session lock, recording a
// metric, and reducing any error to errors.Failed.
func (s *Session) do(op errors.Op, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := metric.New(s.cfg.Metrics(), op)
	err := fn()
	m.Done(err)
	if err != nil {
		log.Debug.Printf("%s: %s: %v", op, s.f.UserName(), err)
		return errors.E(op, s.f.UserName(), errors.Failed)
	}
	return nil
}

// observe checks that a verified header is not older than one this
// session has already seen for the same file, and remembers it.
func (s *Session) observe(addr sharebox.Location, h *record.Header) error {
	v := s.seen[addr]
	if h.Epoch < v.epoch || h.Epoch == v.epoch && h.Version < v.seq {
		return errors.E(h.Name, errors.Integrity, errors.Errorf("file rolled back to epoch %d version %d after epoch %d version %d", h.Epoch, h.Version, v.epoch, v.seq))
	}
	s.seen[addr] = version{epoch: h.Epoch, seq: h.Version}
	return nil
}
