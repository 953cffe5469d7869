// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache_test

import (
	"testing"

	"sharebox.io/cache"
)

func TestLRU(t *testing.T) {
	c := cache.NewLRU[string, string](2)

	expectMiss := func(k string) {
		t.Helper()
		v, ok := c.Get(k)
		if ok {
			t.Fatalf("expected cache miss on key %q but hit value %v", k, v)
		}
	}

	expectHit := func(k string, ev string) {
		t.Helper()
		v, ok := c.Get(k)
		if !ok {
			t.Fatalf("expected cache(%q)=%v; but missed", k, ev)
		}
		if v != ev {
			t.Fatalf("expected cache(%q)=%v; but got %v", k, ev, v)
		}
	}

	expectMiss("1")
	c.Add("1", "one")
	expectHit("1", "one")

	c.Add("2", "two")
	expectHit("1", "one")
	expectHit("2", "two")

	c.Add("3", "three")
	expectHit("3", "three")
	expectHit("2", "two")
	expectMiss("1")

	// Replacing a value keeps a single entry.
	c.Add("2", "deux")
	expectHit("2", "deux")
	if n := c.Len(); n != 2 {
		t.Fatalf("Len = %d; want 2", n)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := cache.NewLRU[int, []byte](4)
	for i := 0; i < 4; i++ {
		c.Add(i, []byte{byte(i)})
	}
	if !c.Remove(2) {
		t.Fatal("Remove(2) = false; want true")
	}
	if c.Remove(2) {
		t.Fatal("second Remove(2) = true; want false")
	}
	if _, ok := c.Get(2); ok {
		t.Fatal("Get(2) hit after Remove")
	}
	if n := c.Len(); n != 3 {
		t.Fatalf("Len = %d; want 3", n)
	}
	c.Clear()
	if n := c.Len(); n != 0 {
		t.Fatalf("Len after Clear = %d; want 0", n)
	}
	if _, ok := c.Get(0); ok {
		t.Fatal("Get(0) hit after Clear")
	}
}
