// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filesystem

import (
	"bytes"
	"os"
	"testing"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

func TestPutGetDelete(t *testing.T) {
	root := t.TempDir()
	s, err := New("root=" + root)
	if err != nil {
		t.Fatal(err)
	}
	const loc = sharebox.Location("f/0123abcd/tree")
	if _, err := s.Get(loc); !errors.Is(errors.NotExist, err) {
		t.Fatalf("Get before Put: got %v, want NotExist", err)
	}
	if err := s.Put(loc, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(loc, []byte("two")); err != nil {
		t.Fatal(err)
	}

	// A second server on the same directory sees the data.
	s2, err := New("root=" + root)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s2.Get(loc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("two")) {
		t.Errorf("Get = %q, want %q", got, "two")
	}

	if err := s.Delete(loc); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(loc); !errors.Is(errors.NotExist, err) {
		t.Errorf("second Delete: got %v, want NotExist", err)
	}
	if err := s.Put("", nil); !errors.Is(errors.Invalid, err) {
		t.Errorf("Put at empty location: got %v, want Invalid", err)
	}
}

func TestClear(t *testing.T) {
	root := t.TempDir()
	s, err := New("root=" + root)
	if err != nil {
		t.Fatal(err)
	}
	for _, loc := range []sharebox.Location{"a", "b/c", "d"} {
		if err := s.Put(loc, []byte(loc)); err != nil {
			t.Fatal(err)
		}
	}
	s.Clear()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d files left after Clear", len(entries))
	}
	if _, err := s.Get("a"); !errors.Is(errors.NotExist, err) {
		t.Errorf("Get after Clear: got %v, want NotExist", err)
	}
}

func TestOptions(t *testing.T) {
	if _, err := New(); !errors.Is(errors.Invalid, err) {
		t.Errorf("New without root: got %v, want Invalid", err)
	}
	if _, err := New("root="+t.TempDir(), "capacity=10"); !errors.Is(errors.Invalid, err) {
		t.Errorf("New with unknown option: got %v, want Invalid", err)
	}
}
