// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package usercache provides a caching key server implementation.
// It passes all operations except Lookup to the underlying key server.
package usercache // import "sharebox.io/key/usercache"

import (
	"time"

	"sharebox.io/cache"
	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

// DefaultDuration is how long a looked-up user is remembered.
const DefaultDuration = 15 * time.Minute

const defaultSize = 256

type entry struct {
	expires time.Time // when the information expires.
	user    *sharebox.User
}

type userCacheServer struct {
	// The underlying key server.
	base sharebox.KeyServer

	entries  *cache.LRU[sharebox.UserName, *entry]
	duration time.Duration
	now      func() time.Time
}

var _ sharebox.KeyServer = (*userCacheServer)(nil)

// New returns the key server wrapped in a cache that remembers
// successful lookups for the given duration.
func New(base sharebox.KeyServer, d time.Duration) sharebox.KeyServer {
	return &userCacheServer{
		base:     base,
		entries:  cache.NewLRU[sharebox.UserName, *entry](defaultSize),
		duration: d,
		now:      time.Now,
	}
}

// Lookup implements sharebox.KeyServer.
func (c *userCacheServer) Lookup(name sharebox.UserName) (*sharebox.User, error) {
	const op errors.Op = "key/usercache.Lookup"

	// If we have an unexpired cache entry, use it.
	if e, ok := c.entries.Get(name); ok {
		if !c.now().After(e.expires) {
			return e.user, nil
		}
		c.entries.Remove(name)
	}

	// Not found, look it up.
	u, err := c.base.Lookup(name)
	if err != nil {
		return nil, errors.E(op, err)
	}
	c.entries.Add(name, &entry{
		expires: c.now().Add(c.duration),
		user:    u,
	})
	return u, nil
}

// Register implements sharebox.KeyServer.
func (c *userCacheServer) Register(user *sharebox.User) error {
	const op errors.Op = "key/usercache.Register"
	if err := c.base.Register(user); err != nil {
		return errors.E(op, err)
	}
	c.entries.Remove(user.Name)
	return nil
}

// Clear implements sharebox.KeyServer.
func (c *userCacheServer) Clear() {
	c.entries.Clear()
	c.base.Clear()
}
