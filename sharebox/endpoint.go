// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sharebox

import (
	"fmt"
	"strings"
)

// Transport identifies how a service is reached.
type Transport uint8

const (
	// Unassigned denotes a service that has not been configured.
	// Every request to it fails.
	Unassigned Transport = iota

	// InProcess indicates that the service runs in the current process,
	// holding its state in memory.
	InProcess

	// Remote indicates a service reached over HTTP at NetAddr.
	Remote
)

func (t Transport) String() string {
	switch t {
	case Unassigned:
		return "unassigned"
	case InProcess:
		return "inprocess"
	case Remote:
		return "remote"
	}
	return fmt.Sprintf("transport(%d)", uint8(t))
}

// A NetAddr is the network address of a service, typically host:port.
type NetAddr string

// An Endpoint identifies an instance of a service, encompassing an address
// and information (the Transport) about how to interpret that address.
type Endpoint struct {
	Transport Transport
	NetAddr   NetAddr
}

// ParseEndpoint parses the string representation of an endpoint,
// such as "inprocess" or "remote,localhost:8080".
func ParseEndpoint(v string) (*Endpoint, error) {
	elems := strings.SplitN(v, ",", 2)
	switch elems[0] {
	case "inprocess":
		return &Endpoint{Transport: InProcess}, nil
	case "remote":
		if len(elems) < 2 || elems[1] == "" {
			return nil, fmt.Errorf("remote endpoint %q requires a netaddr", v)
		}
		return &Endpoint{Transport: Remote, NetAddr: NetAddr(elems[1])}, nil
	case "unassigned":
		return &Endpoint{Transport: Unassigned}, nil
	}
	return nil, fmt.Errorf("unknown transport type in endpoint %q", v)
}

func (ep Endpoint) toString() (string, error) {
	switch ep.Transport {
	case InProcess:
		return "inprocess", nil
	case Remote:
		return fmt.Sprintf("remote,%s", string(ep.NetAddr)), nil
	case Unassigned:
		return "unassigned", nil
	}
	// Note: can't use errors here.
	return "", fmt.Errorf("unknown transport {%v, %v}", ep.Transport, ep.NetAddr)
}

// String converts an endpoint to a string.
func (ep Endpoint) String() string {
	str, err := ep.toString()
	if err != nil {
		return err.Error()
	}
	return str
}
