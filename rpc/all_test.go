// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pb "github.com/golang/protobuf/proto"
	metrics "github.com/rcrowley/go-metrics"

	"sharebox.io/errors"
	"sharebox.io/metric"
	"sharebox.io/sharebox"
	"sharebox.io/sharebox/proto"
)

var payloads = []string{
	"The wren",
	"Earns his living",
	"Noiselessly.",
	// - Kobayahsi Issa
}

// echo returns the request location as data. A location of "fail"
// fails the call itself; "error" fails inside the response.
func echo(reqBytes []byte) (pb.Message, error) {
	var req proto.StoreGetRequest
	if err := pb.Unmarshal(reqBytes, &req); err != nil {
		return nil, err
	}
	switch req.Location {
	case "fail":
		return nil, errors.Str("call failed")
	case "error":
		return &proto.StoreGetResponse{Error: errors.MarshalError(errors.E(errors.NotExist, errors.Str("no such thing")))}, nil
	}
	return &proto.StoreGetResponse{Data: []byte(req.Location)}, nil
}

func startServer(t *testing.T, reg metrics.Registry) (*httptest.Server, Client) {
	t.Helper()
	srv := httptest.NewServer(Handler(NewServer(reg, Service{
		Name: "Server",
		Methods: map[string]Method{
			"Echo": echo,
		},
	})))
	t.Cleanup(srv.Close)
	cli, err := NewClient(sharebox.NetAddr(strings.TrimPrefix(srv.URL, "http://")))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cli.Close)
	return srv, cli
}

func TestEcho(t *testing.T) {
	reg := metrics.NewRegistry()
	_, cli := startServer(t, reg)
	for _, p := range payloads {
		var resp proto.StoreGetResponse
		if err := cli.Invoke("Server/Echo", &proto.StoreGetRequest{Location: p}, &resp); err != nil {
			t.Fatal(err)
		}
		if string(resp.Data) != p {
			t.Errorf("got %q, want %q", resp.Data, p)
		}
	}
	// A large response is compressed on the wire and still arrives intact.
	big := strings.Repeat("wren ", 10000)
	var resp proto.StoreGetResponse
	if err := cli.Invoke("Server/Echo", &proto.StoreGetRequest{Location: big}, &resp); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(resp.Data, []byte(big)) {
		t.Errorf("large payload corrupted: %d bytes", len(resp.Data))
	}
	if runs, failures := metric.Count(reg, "rpc/Server.Echo"); runs != int64(len(payloads)+1) || failures != 0 {
		t.Errorf("metrics: runs=%d failures=%d", runs, failures)
	}
	if tm, ok := reg.Get("rpc/Server.Echo/Echo").(metrics.Timer); !ok || tm.Count() != int64(len(payloads)+1) {
		t.Errorf("method span not recorded: %v", reg.Get("rpc/Server.Echo/Echo"))
	}
}

func TestErrors(t *testing.T) {
	reg := metrics.NewRegistry()
	srv, cli := startServer(t, reg)

	// Errors of the service travel inside the response.
	var resp proto.StoreGetResponse
	if err := cli.Invoke("Server/Echo", &proto.StoreGetRequest{Location: "error"}, &resp); err != nil {
		t.Fatal(err)
	}
	if err := errors.UnmarshalError(resp.Error); !errors.Is(errors.NotExist, err) {
		t.Errorf("got %v, want NotExist error", err)
	}

	// Errors of the call are transport errors.
	err := cli.Invoke("Server/Echo", &proto.StoreGetRequest{Location: "fail"}, &resp)
	if !errors.Is(errors.IO, err) || !strings.Contains(err.Error(), "call failed") {
		t.Errorf("got %v, want IO error containing the server's message", err)
	}
	if _, failures := metric.Count(reg, "rpc/Server.Echo"); failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}

	// Unknown methods are not found.
	err = cli.Invoke("Server/Nope", &proto.StoreGetRequest{}, &resp)
	if !errors.Is(errors.IO, err) || !strings.Contains(err.Error(), "404") {
		t.Errorf("got %v, want 404", err)
	}

	// Plain HTTP/1.1 GETs are refused.
	r, err := http.Get(srv.URL + "/api/Server/Echo")
	if err != nil {
		t.Fatal(err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", r.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestBadAddress(t *testing.T) {
	if _, err := NewClient("no-port"); !errors.Is(errors.Invalid, err) {
		t.Errorf("got %v, want Invalid error", err)
	}
}
