// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package usercache

import (
	"testing"
	"time"

	"sharebox.io/errors"
	"sharebox.io/key/inprocess"
	"sharebox.io/sharebox"
)

// service is a KeyServer that counts lookups.
type service struct {
	sharebox.KeyServer
	lookups int
}

func (s *service) Lookup(name sharebox.UserName) (*sharebox.User, error) {
	s.lookups++
	return s.KeyServer.Lookup(name)
}

func setup(t *testing.T, d time.Duration) (*service, *userCacheServer) {
	t.Helper()
	base := &service{KeyServer: inprocess.New()}
	for _, name := range []sharebox.UserName{"a", "b", "c", "d"} {
		err := base.Register(&sharebox.User{
			Name:          name,
			SigningKey:    sharebox.PublicKey("sig " + name),
			EncryptionKey: sharebox.PublicKey("enc " + name),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return base, New(base, d).(*userCacheServer)
}

func TestCache(t *testing.T) {
	base, c := setup(t, time.Minute)
	for i := 0; i < 10; i++ {
		for _, name := range []sharebox.UserName{"a", "b", "c", "d"} {
			u, err := c.Lookup(name)
			if err != nil {
				t.Fatal(err)
			}
			if u.Name != name || u.SigningKey != sharebox.PublicKey("sig "+name) {
				t.Errorf("Lookup(%s) = %+v", name, u)
			}
		}
	}
	if base.lookups != 4 {
		t.Errorf("%d lookups reached the server, want 4", base.lookups)
	}
}

func TestExpiry(t *testing.T) {
	base, c := setup(t, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	if _, err := c.Lookup("a"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Second)
	if _, err := c.Lookup("a"); err != nil {
		t.Fatal(err)
	}
	if base.lookups != 1 {
		t.Fatalf("lookups = %d, want 1", base.lookups)
	}
	now = now.Add(time.Minute)
	if _, err := c.Lookup("a"); err != nil {
		t.Fatal(err)
	}
	if base.lookups != 2 {
		t.Errorf("lookups after expiry = %d, want 2", base.lookups)
	}
}

func TestMissesAreNotCached(t *testing.T) {
	base, c := setup(t, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := c.Lookup("nobody"); !errors.Is(errors.NotExist, err) {
			t.Fatalf("Lookup(nobody) = %v, want NotExist", err)
		}
	}
	if base.lookups != 2 {
		t.Errorf("lookups = %d, want 2", base.lookups)
	}
	err := c.Register(&sharebox.User{Name: "nobody", SigningKey: "s", EncryptionKey: "e"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Lookup("nobody"); err != nil {
		t.Errorf("Lookup after Register: %v", err)
	}
}

func TestClear(t *testing.T) {
	_, c := setup(t, time.Minute)
	if _, err := c.Lookup("a"); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if c.entries.Len() != 0 {
		t.Errorf("cache holds %d entries after Clear", c.entries.Len())
	}
	if _, err := c.Lookup("a"); !errors.Is(errors.NotExist, err) {
		t.Errorf("Lookup after Clear = %v, want NotExist", err)
	}
}
