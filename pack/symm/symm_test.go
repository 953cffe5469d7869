// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symm

import (
	"bytes"
	"testing"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

func newEpoch(t *testing.T, id sharebox.EpochID) *sharebox.Epoch {
	t.Helper()
	e, err := NewEpoch(id)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSealOpen(t *testing.T) {
	e := newEpoch(t, 1)
	for _, text := range []string{"", "x", "The quick brown fox jumps over the lazy dog"} {
		sealed, err := Seal(e, []byte("ad"), []byte(text))
		if err != nil {
			t.Fatal(err)
		}
		if len(sealed) != len(text)+Overhead {
			t.Errorf("len = %d, want %d", len(sealed), len(text)+Overhead)
		}
		got, err := Open(e, []byte("ad"), sealed)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != text {
			t.Errorf("got %q, want %q", got, text)
		}
		if tag := Tag(sealed); !bytes.Equal(tag, sealed[len(sealed)-tagLen:]) {
			t.Errorf("Tag = %x", tag)
		}
	}
}

func TestOpenFailures(t *testing.T) {
	e := newEpoch(t, 1)
	other := newEpoch(t, 2)
	sealed, err := Seal(e, []byte("ad"), []byte("some plain text"))
	if err != nil {
		t.Fatal(err)
	}
	type openTest struct {
		name   string
		epoch  *sharebox.Epoch
		ad     string
		sealed []byte
	}
	tests := []openTest{
		{"wrong epoch", other, "ad", sealed},
		{"wrong ad", e, "da", sealed},
		{"short", e, "ad", sealed[:Overhead-1]},
	}
	// Flip each region in turn: iv, ciphertext, tag.
	for _, i := range []int{0, ivLen + 1, len(sealed) - 1} {
		bad := append([]byte(nil), sealed...)
		bad[i] ^= 1
		tests = append(tests, openTest{"flipped", e, "ad", bad})
	}
	for _, test := range tests {
		_, err := Open(test.epoch, []byte(test.ad), test.sealed)
		if !errors.Is(errors.Integrity, err) {
			t.Errorf("%s: got %v, want Integrity error", test.name, err)
		}
	}
}

func TestTagShort(t *testing.T) {
	if tag := Tag(make([]byte, Overhead-1)); tag != nil {
		t.Errorf("Tag of short data = %x, want nil", tag)
	}
}

func TestMAC(t *testing.T) {
	e := newEpoch(t, 1)
	tag := MAC(e, []byte("ab"), []byte("c"))
	if err := CheckMAC(e, tag, []byte("ab"), []byte("c")); err != nil {
		t.Error(err)
	}
	// Field boundaries matter.
	if err := CheckMAC(e, tag, []byte("a"), []byte("bc")); !errors.Is(errors.Integrity, err) {
		t.Errorf("got %v, want Integrity error", err)
	}
	if bytes.Equal(tag, MAC(newEpoch(t, 1), []byte("ab"), []byte("c"))) {
		t.Error("MACs under different keys are equal")
	}
}

func TestBadEpoch(t *testing.T) {
	e := &sharebox.Epoch{ID: 1, EncKey: []byte("short"), MACKey: make([]byte, sharebox.MACKeyLen)}
	if _, err := Seal(e, nil, []byte("x")); !errors.Is(errors.Invalid, err) {
		t.Errorf("got %v, want Invalid error", err)
	}
}
