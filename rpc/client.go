// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	pb "github.com/golang/protobuf/proto"
	"golang.org/x/net/http2"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

// Client is a partial sharebox service that uses HTTP as a transport.
type Client interface {
	// Invoke calls the given RPC method ("Server/Method") with the
	// given request message and decodes the response into the given
	// response message.
	Invoke(method string, req, resp pb.Message) error

	// Close releases the client's idle connections.
	Close()
}

type httpClient struct {
	client    *http.Client
	transport *http2.Transport
	baseURL   string
}

// NewClient returns a new client that speaks to an HTTP server at a net
// address. The address is expected to be a raw network address with port
// number, as in domain.com:5580.
func NewClient(netAddr sharebox.NetAddr) (Client, error) {
	const op errors.Op = "rpc.NewClient"
	if _, _, err := net.SplitHostPort(string(netAddr)); err != nil {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("bad network address %q: %v", netAddr, err))
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	t := &http2.Transport{
		// Cleartext HTTP/2: dial plain TCP where TLS would be.
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		ReadIdleTimeout: 30 * time.Second,
	}
	return &httpClient{
		client:    &http.Client{Transport: t},
		transport: t,
		baseURL:   "http://" + string(netAddr),
	}, nil
}

// Invoke implements Client.
func (c *httpClient) Invoke(method string, req, resp pb.Message) error {
	const op errors.Op = "rpc.Invoke"

	// Encode the payload.
	payload, err := pb.Marshal(req)
	if err != nil {
		return errors.E(op, errors.Invalid, err)
	}

	// Make the HTTP request.
	url := fmt.Sprintf("%s/api/%s", c.baseURL, method)
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return errors.E(op, errors.Invalid, err)
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		httpResp.Body.Close()
		return errors.E(op, errors.IO, errors.Errorf("%s: %s", httpResp.Status, bytes.TrimSpace(msg)))
	}
	return readResponse(op, httpResp.Body, resp)
}

func readResponse(op errors.Op, body io.ReadCloser, resp pb.Message) error {
	respBytes, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return errors.E(op, errors.IO, err)
	}
	if err := pb.Unmarshal(respBytes, resp); err != nil {
		return errors.E(op, errors.Invalid, err)
	}
	return nil
}

// Close implements Client.
func (c *httpClient) Close() {
	c.transport.CloseIdleConnections()
}
