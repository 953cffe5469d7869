// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bind contains the global binding switch and its methods.
// Transport implementations register a dialer here, and clients ask
// for a service by Endpoint without knowing how it is reached.
package bind // import "sharebox.io/bind"

import (
	"sync"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

// A KeyDialer connects to a KeyServer at an endpoint.
type KeyDialer func(sharebox.Endpoint) (sharebox.KeyServer, error)

// A DataDialer connects to a DataServer at an endpoint.
type DataDialer func(sharebox.Endpoint) (sharebox.DataServer, error)

var (
	mu sync.Mutex // Protects all fields below.

	keyMap  = make(map[sharebox.Transport]KeyDialer)
	dataMap = make(map[sharebox.Transport]DataDialer)

	// Dialed services, so that every config naming the same
	// endpoint talks to the same server.
	keyDialCache  = make(map[sharebox.Endpoint]sharebox.KeyServer)
	dataDialCache = make(map[sharebox.Endpoint]sharebox.DataServer)
)

// RegisterKeyServer registers a KeyServer dialer for the transport.
// It fails if one is already registered.
func RegisterKeyServer(transport sharebox.Transport, d KeyDialer) error {
	const op errors.Op = "bind.RegisterKeyServer"
	mu.Lock()
	defer mu.Unlock()
	if _, ok := keyMap[transport]; ok {
		return errors.E(op, errors.Invalid, errors.Errorf("cannot override KeyServer dialer: %v", transport))
	}
	keyMap[transport] = d
	return nil
}

// RegisterDataServer registers a DataServer dialer for the transport.
// It fails if one is already registered.
func RegisterDataServer(transport sharebox.Transport, d DataDialer) error {
	const op errors.Op = "bind.RegisterDataServer"
	mu.Lock()
	defer mu.Unlock()
	if _, ok := dataMap[transport]; ok {
		return errors.E(op, errors.Invalid, errors.Errorf("cannot override DataServer dialer: %v", transport))
	}
	dataMap[transport] = d
	return nil
}

// KeyServer returns a KeyServer bound to the endpoint.
func KeyServer(e sharebox.Endpoint) (sharebox.KeyServer, error) {
	const op errors.Op = "bind.KeyServer"
	mu.Lock()
	defer mu.Unlock()
	if k, ok := keyDialCache[e]; ok {
		return k, nil
	}
	d, ok := keyMap[e.Transport]
	if !ok {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("KeyServer with transport %q not registered", e.Transport))
	}
	k, err := d(e)
	if err != nil {
		return nil, errors.E(op, err)
	}
	keyDialCache[e] = k
	return k, nil
}

// DataServer returns a DataServer bound to the endpoint.
func DataServer(e sharebox.Endpoint) (sharebox.DataServer, error) {
	const op errors.Op = "bind.DataServer"
	mu.Lock()
	defer mu.Unlock()
	if s, ok := dataDialCache[e]; ok {
		return s, nil
	}
	d, ok := dataMap[e.Transport]
	if !ok {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("DataServer with transport %q not registered", e.Transport))
	}
	s, err := d(e)
	if err != nil {
		return nil, errors.E(op, err)
	}
	dataDialCache[e] = s
	return s, nil
}
