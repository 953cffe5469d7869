// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package subcmd

import (
	"bytes"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"
)

func testingUserLookup(who string) (*user.User, error) {
	if who == "ann" {
		return &user.User{
			HomeDir: filepath.Join("/usr", "ann"),
		}, nil
	}
	return nil, fmt.Errorf("no such user")
}

var tildeTests = []struct{ in, out string }{
	{"", ""},
	{"x", "x"},
	{"~", filepath.Join("/usr", "default")},
	{"~/", filepath.Join("/usr", "default")},
	{"~/x", filepath.Join("/usr", "default", "x")},
	{"~ann", filepath.Join("/usr", "ann")},
	{"~ann/", filepath.Join("/usr", "ann")},
	{"~ann/x", filepath.Join("/usr", "ann", "x")},
	{"~xxx", "~xxx"},
	{"~xxx/", "~xxx"},
	{"~xxx/x", filepath.Join("~xxx", "x")},
}

func TestTilde(t *testing.T) {
	userLookup = testingUserLookup
	home = filepath.Join("/usr", "default")
	defer func() {
		userLookup = user.Lookup
		home = ""
	}()
	for _, test := range tildeTests {
		out := Tilde(test.in)
		if out != test.out {
			t.Errorf("Tilde(%q) = %q; expected %q", test.in, out, test.out)
		}
	}
}

func testState(stdin string, env map[string]string) (*State, *bytes.Buffer) {
	s := NewState("test")
	s.Interactive = true
	out := new(bytes.Buffer)
	s.SetIO(strings.NewReader(stdin), out, out)
	s.getenv = func(k string) string { return env[k] }
	return s, out
}

func TestPassword(t *testing.T) {
	s, _ := testState("hunter2\r\nfile contents\n", nil)
	if got := s.Password(); got != "hunter2" {
		t.Errorf("Password() = %q, want hunter2", got)
	}
	// The rest of standard input is left for the command.
	if got := string(s.ReadAll("")); got != "file contents\n" {
		t.Errorf("ReadAll = %q", got)
	}

	s, _ = testState("not this", map[string]string{PasswordEnv: "from env"})
	if got := s.Password(); got != "from env" {
		t.Errorf("Password() = %q, want %q", got, "from env")
	}
}

func TestNoPassword(t *testing.T) {
	s, out := testState("", nil)
	defer func() {
		if recover() == nil {
			t.Fatal("Password with no input did not exit")
		}
		if !strings.Contains(out.String(), PasswordEnv) {
			t.Errorf("message %q does not mention %s", out, PasswordEnv)
		}
	}()
	s.Password()
}

func TestWriteAndReadLocal(t *testing.T) {
	s, out := testState("", nil)
	name := filepath.Join(t.TempDir(), "f")
	s.WriteAll(name, []byte("local data"))
	if got := string(s.ReadAll(name)); got != "local data" {
		t.Errorf("ReadAll = %q", got)
	}
	s.WriteAll("", []byte("to stdout"))
	if out.String() != "to stdout" {
		t.Errorf("stdout = %q", out)
	}
	if _, err := os.Stat(name); err != nil {
		t.Error(err)
	}
}
