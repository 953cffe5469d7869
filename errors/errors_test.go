// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"io"
	"testing"

	"sharebox.io/sharebox"
)

func TestMarshal(t *testing.T) {
	file := sharebox.FileName("notes.txt")
	user := sharebox.UserName("joe")

	// Single error. No user is set, so we will have a zero-length field inside.
	e1 := E(Op("Get"), file, IO, "network unreachable")

	// Nested error.
	e2 := E(Op("Read"), file, user, Other, e1)

	b := MarshalError(e2)
	e3 := UnmarshalError(b)

	in := e2.(*Error)
	out := e3.(*Error)
	// Compare elementwise.
	if in.File != out.File {
		t.Errorf("expected File %q; got %q", in.File, out.File)
	}
	if in.User != out.User {
		t.Errorf("expected User %q; got %q", in.User, out.User)
	}
	if in.Op != out.Op {
		t.Errorf("expected Op %q; got %q", in.Op, out.Op)
	}
	if in.Kind != out.Kind {
		t.Errorf("expected kind %d; got %d", in.Kind, out.Kind)
	}
	// Note that error will have lost type information, so just check its Error string.
	if in.Err.Error() != out.Err.Error() {
		t.Errorf("expected Err %q; got %q", in.Err, out.Err)
	}
}

func TestSeparator(t *testing.T) {
	defer func(prev string) {
		Separator = prev
	}(Separator)
	Separator = ":: "

	file := sharebox.FileName("notes.txt")
	user := sharebox.UserName("joe")

	e1 := E(Op("Get"), file, IO, "network unreachable")
	e2 := E(Op("Read"), file, user, Other, e1)

	want := "Read: notes.txt, user joe: I/O error:: Get: network unreachable"
	if e2.Error() != want {
		t.Errorf("expected %q; got %q", want, e2)
	}
}

func TestDoesNotChangePreviousError(t *testing.T) {
	err := E(Permission)
	err2 := E(Op("I will NOT modify err"), err)

	expected := "I will NOT modify err: permission denied"
	if err2.Error() != expected {
		t.Fatalf("Expected %q, got %q", expected, err2)
	}
	kind := err.(*Error).Kind
	if kind != Permission {
		t.Fatalf("Expected kind %v, got %v", Permission, kind)
	}
}

func TestNoArgs(t *testing.T) {
	defer func() {
		err := recover()
		if err == nil {
			t.Fatal("E() did not panic")
		}
	}()
	_ = E()
}

type matchTest struct {
	err1, err2 error
	matched    bool
}

const (
	file1 = sharebox.FileName("x")
	file2 = sharebox.FileName("y")
	john  = sharebox.UserName("john")
	jane  = sharebox.UserName("jane")
)

const op = Op("Op")
const op1 = Op("Op1")
const op2 = Op("Op2")

var matchTests = []matchTest{
	// Errors not of type *Error fail outright.
	{nil, nil, false},
	{io.EOF, io.EOF, false},
	{E(io.EOF), io.EOF, false},
	{io.EOF, E(io.EOF), false},
	// Success. We can drop fields from the first argument and still match.
	{E(io.EOF), E(io.EOF), true},
	{E(op, Invalid, io.EOF, jane, file1), E(op, Invalid, io.EOF, jane, file1), true},
	{E(op, Invalid, io.EOF, jane), E(op, Invalid, io.EOF, jane, file1), true},
	{E(op, Invalid, io.EOF), E(op, Invalid, io.EOF, jane, file1), true},
	{E(op, Invalid), E(op, Invalid, io.EOF, jane, file1), true},
	{E(op), E(op, Invalid, io.EOF, jane, file1), true},
	// Failure.
	{E(io.EOF), E(io.ErrClosedPipe), false},
	{E(op1), E(op2), false},
	{E(Invalid), E(Permission), false},
	{E(jane), E(john), false},
	{E(file1), E(file2), false},
	{E(op, Invalid, io.EOF, jane, file1), E(op, Invalid, io.EOF, john, file1), false},
	{E(file1, Str("something")), E(file1), false}, // Test nil error on rhs.
}

func TestMatch(t *testing.T) {
	for _, test := range matchTests {
		matched := Match(test.err1, test.err2)
		if matched != test.matched {
			t.Errorf("Match(%q, %q)=%t; want %t", test.err1, test.err2, matched, test.matched)
		}
	}
}

type kindTest struct {
	err  error
	kind Kind
	want bool
}

var kindTests = []kindTest{
	// Non-Error errors.
	{nil, NotExist, false},
	{Str("not an *Error"), NotExist, false},

	// Basic comparisons.
	{E(NotExist), NotExist, true},
	{E(Exist), NotExist, false},
	{E("no kind"), NotExist, false},
	{E("no kind"), Other, false},

	// Nested *Error values.
	{E("Nesting", E(NotExist)), NotExist, true},
	{E("Nesting", E(Exist)), NotExist, false},
	{E("Nesting", E("no kind")), NotExist, false},
	{E("Nesting", E("no kind")), Other, false},

	// A kind on the outer error hides the inner one.
	{E(Failed, E(Integrity)), Failed, true},
	{E(Failed, E(Integrity)), Integrity, false},
}

func TestKind(t *testing.T) {
	for _, test := range kindTests {
		got := Is(test.kind, test.err)
		if got != test.want {
			t.Errorf("Is(%q, %q)=%t; want %t", test.kind, test.err, got, test.want)
		}
	}
}
