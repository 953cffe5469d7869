// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sharebox

import (
	"strings"
	"testing"
)

func TestParseAndString(t *testing.T) {
	tests := []string{
		"remote,localhost:8080",
		"inprocess",
		"unassigned",
	}
	for _, test := range tests {
		ep, err := ParseEndpoint(test)
		if err != nil {
			t.Errorf("parsing %q: %v", test, err)
			continue
		}
		got := ep.String()
		if got != test {
			t.Errorf("got %q, want %q", got, test)
		}
	}
}

func TestErrorCases(t *testing.T) {
	tests := []struct {
		endpoint, error string
	}{
		{"remote", "requires a netaddr"},
		{"remote,", "requires a netaddr"},
		{"supersonic,https://supersonic.com", "unknown transport type"},
	}
	for _, test := range tests {
		_, err := ParseEndpoint(test.endpoint)
		if err == nil {
			t.Errorf("expected error for %q", test.endpoint)
			continue
		}
		if !strings.Contains(err.Error(), test.error) {
			t.Errorf("got error %q, expected %q", err, test.error)
		}
	}
}

func TestErroneousString(t *testing.T) {
	e := Endpoint{Transport: 127, NetAddr: "whatnot"}
	const expect = "unknown transport {transport(127), whatnot}"
	got := e.String()
	if got != expect {
		t.Fatalf("expected %q; got %q", expect, got)
	}
}
