// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"io"
	"net/http"
	"strings"

	"github.com/NYTimes/gziphandler"
	pb "github.com/golang/protobuf/proto"
	metrics "github.com/rcrowley/go-metrics"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/metric"
)

// maxRequestSize bounds the body of a request.
const maxRequestSize = 1 << 26 // 64MB

// Service describes an RPC service.
type Service struct {
	// The name of the service, which forms the first path component of any
	// HTTP request.
	Name string

	// The RPC methods to serve.
	Methods map[string]Method
}

// Method describes an RPC method.
type Method func(reqBytes []byte) (pb.Message, error)

// NewServer returns a handler that serves the Service over HTTP,
// recording a metric for each request in reg, which may be nil.
func NewServer(reg metrics.Registry, svc Service) http.Handler {
	return &serverImpl{
		reg: reg,
		svc: svc,
	}
}

// Handler wraps an HTTP handler so that it compresses its responses
// and accepts cleartext HTTP/2 as well as HTTP/1.1.
func Handler(h http.Handler) http.Handler {
	return h2c.NewHandler(gziphandler.GzipHandler(h), &http2.Server{})
}

type serverImpl struct {
	reg metrics.Registry
	svc Service
}

// ServeHTTP exposes the configured Service as an HTTP API.
func (s *serverImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/" + s.svc.Name + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, prefix)
	method := s.svc.Methods[name]
	if method == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m := metric.New(s.reg, errors.Op("rpc/"+s.svc.Name+"."+name))
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	r.Body.Close()
	if err != nil {
		m.Done(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.Done(serveMethod(name, method, w, body, m))
}

func serveMethod(name string, method Method, w http.ResponseWriter, body []byte, m *metric.Metric) error {
	sp := m.StartSpan(errors.Op(name))
	resp, err := method(body)
	sp.End()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}

	payload, err := pb.Marshal(resp)
	if err != nil {
		log.Error.Printf("rpc: error encoding response: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(payload)
	return nil
}
