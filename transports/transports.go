// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transports is a helper package that registers the key and store
// transports with package bind. It is meant to be imported, using an
// "underscore" import, as a convenient way to link with all the transport
// implementations.
package transports // import "sharebox.io/transports"

import (
	"sharebox.io/bind"
	"sharebox.io/errors"
	"sharebox.io/sharebox"

	keyinprocess "sharebox.io/key/inprocess"
	keyremote "sharebox.io/key/remote"
	storeinprocess "sharebox.io/store/inprocess"
	storeremote "sharebox.io/store/remote"
)

func init() {
	must(bind.RegisterKeyServer(sharebox.InProcess, func(sharebox.Endpoint) (sharebox.KeyServer, error) {
		return keyinprocess.New(), nil
	}))
	must(bind.RegisterKeyServer(sharebox.Remote, keyremote.Dial))
	must(bind.RegisterDataServer(sharebox.InProcess, func(sharebox.Endpoint) (sharebox.DataServer, error) {
		return storeinprocess.New()
	}))
	must(bind.RegisterDataServer(sharebox.Remote, storeremote.Dial))
}

func must(err error) {
	if err != nil {
		panic(errors.E(errors.Op("transports.init"), err))
	}
}
