// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filesystem implements a data service that keeps each blob in a
// file under a root directory, so that its contents survive restarts.
package filesystem // import "sharebox.io/store/filesystem"

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/sharebox"
)

type server struct {
	root string
}

var _ sharebox.DataServer = (*server)(nil)

// New returns a data service storing blobs under a directory. The option
// "root=dir" names the directory, which is created if needed; it is
// required.
func New(options ...string) (sharebox.DataServer, error) {
	const op errors.Op = "store/filesystem.New"
	s := &server{}
	for _, opt := range options {
		switch {
		case strings.HasPrefix(opt, "root="):
			s.root = opt[len("root="):]
		default:
			return nil, errors.E(op, errors.Invalid, errors.Errorf("bad option %q", opt))
		}
	}
	if s.root == "" {
		return nil, errors.E(op, errors.Invalid, errors.Str("root option required"))
	}
	if err := os.MkdirAll(s.root, 0700); err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return s, nil
}

// path returns the name of the file holding the blob at loc.
// Locations contain slashes, so they are encoded.
func (s *server) path(loc sharebox.Location) string {
	return filepath.Join(s.root, base64.RawURLEncoding.EncodeToString([]byte(loc)))
}

// Put implements sharebox.DataServer. The blob is written to a temporary
// file and renamed into place, so a reader never sees a partial blob.
func (s *server) Put(loc sharebox.Location, data []byte) error {
	const op errors.Op = "store/filesystem.Put"
	if loc == "" {
		return errors.E(op, errors.Invalid, errors.Str("empty location"))
	}
	f, err := os.CreateTemp(s.root, ".put-*")
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, s.path(loc))
	}
	if err != nil {
		os.Remove(tmp)
		return errors.E(op, errors.IO, err)
	}
	return nil
}

// Get implements sharebox.DataServer.
func (s *server) Get(loc sharebox.Location) ([]byte, error) {
	const op errors.Op = "store/filesystem.Get"
	if loc == "" {
		return nil, errors.E(op, errors.Invalid, errors.Str("empty location"))
	}
	data, err := os.ReadFile(s.path(loc))
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotExist, errors.Errorf("no such blob: %s", loc))
	}
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return data, nil
}

// Delete implements sharebox.DataServer.
func (s *server) Delete(loc sharebox.Location) error {
	const op errors.Op = "store/filesystem.Delete"
	err := os.Remove(s.path(loc))
	if os.IsNotExist(err) {
		return errors.E(op, errors.NotExist, errors.Errorf("no such blob: %s", loc))
	}
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	return nil
}

// Clear implements sharebox.DataServer.
func (s *server) Clear() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		log.Error.Printf("store/filesystem.Clear: %v", err)
		return
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(s.root, e.Name())); err != nil {
			log.Error.Printf("store/filesystem.Clear: %v", err)
		}
	}
}
