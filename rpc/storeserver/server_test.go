// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storeserver

import (
	"net/http/httptest"
	"strings"
	"testing"

	"sharebox.io/errors"
	"sharebox.io/rpc"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
	"sharebox.io/store/inprocess"
)

func TestClearNeedsPermission(t *testing.T) {
	for _, allow := range []bool{false, true} {
		store, err := inprocess.New()
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Put("b/1", []byte("data")); err != nil {
			t.Fatal(err)
		}
		srv := httptest.NewServer(rpc.Handler(New(store, nil, allow)))
		cli, err := rpc.NewClient(sharebox.NetAddr(strings.TrimPrefix(srv.URL, "http://")))
		if err != nil {
			t.Fatal(err)
		}
		err = cli.Invoke("Store/Clear", &proto.ClearRequest{}, new(proto.ClearResponse))
		cli.Close()
		srv.Close()

		_, getErr := store.Get("b/1")
		if allow {
			if err != nil {
				t.Errorf("Clear with allowClear: %v", err)
			}
			if !errors.Is(errors.NotExist, getErr) {
				t.Errorf("Get after Clear: %v, want NotExist", getErr)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("Clear without allowClear: %v, want 404", err)
		}
		if getErr != nil {
			t.Errorf("blob removed by refused Clear: %v", getErr)
		}
	}
}
