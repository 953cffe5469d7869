// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rpc provides a framework for implementing RPC servers and clients.

RPC wire protocol

The protocol for a particular method is to send an HTTP request with
the appropriate request message to an "api" URL with the server type and
method name; the response will then be returned. Both request and response
are sent as binary protocol buffers, as declared by sharebox.io/sharebox/proto.

For example, to call the Put method of the Store server running at
store.example.com, send to the URL
     http://store.example.com/api/Store/Put
a POST request with, as payload, an encoded StorePutRequest. The response
will be a StorePutResponse. There is such a pair of protocol buffer messages
for each method.

Errors of the underlying service are returned inside the response message,
encoded with errors.MarshalError, so they keep their Kind across the wire.
If an error occurs while processing the request itself, the server returns
a 500 Internal Server Error status code and the response body contains the
error string.

Clients speak HTTP/2 over cleartext TCP with prior knowledge (h2c). Servers
accept both that and HTTP/1.1 when their handler is wrapped by Handler.
*/
package rpc // import "sharebox.io/rpc"
