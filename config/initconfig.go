// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config creates a client configuration from various sources.
package config // import "sharebox.io/config"

import (
	"fmt"
	"io"
	"os"
	osuser "os/user"
	"path/filepath"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"sharebox.io/bind"
	"sharebox.io/errors"
	"sharebox.io/log"
	"sharebox.io/sharebox"
)

// Known keys. All others are treated as errors.
const (
	keyserver   = "keyserver"
	storeserver = "storeserver"
	loglevel    = "loglevel"
	scryptN     = "scrypt_n"
	concurrency = "concurrency"
)

// FromFile initializes a config using the given file. If the file cannot
// be opened but the name can be found in $HOME/sharebox, that file is used.
func FromFile(name string) (sharebox.Config, error) {
	f, err := os.Open(name)
	if err != nil && !filepath.IsAbs(name) && os.IsNotExist(err) {
		// It's a local name, so, try adding $HOME/sharebox
		home, errHome := Homedir()
		if errHome == nil {
			f, err = os.Open(filepath.Join(home, "sharebox", name))
		}
	}
	if err != nil {
		const op errors.Op = "config.FromFile"
		if os.IsNotExist(err) {
			return nil, errors.E(op, errors.NotExist, err)
		}
		return nil, errors.E(op, errors.IO, err)
	}
	defer f.Close()
	return InitConfig(f)
}

// InitConfig returns a config generated from a YAML configuration file.
//
// A configuration file should be of the format
//   # lines that begin with a hash are ignored
//   key: value
// where key may be one of keyserver, storeserver, loglevel, scrypt_n,
// or concurrency.
//
// The keyserver and storeserver values are endpoints such as "inprocess"
// or "remote,localhost:8080". An endpoint given without a transport is
// assumed to be the address of a remote endpoint, and a remote address
// without a port is given port 443. Both default to "inprocess".
//
// If loglevel is set, the log level is changed to it as a side effect.
//
// If passed a nil io.Reader, $HOME/sharebox/config is used.
func InitConfig(r io.Reader) (sharebox.Config, error) {
	const op errors.Op = "config.InitConfig"
	vals := map[string]string{
		keyserver:   "inprocess",
		storeserver: "inprocess",
		loglevel:    "",
		scryptN:     strconv.Itoa(DefaultScryptN),
		concurrency: strconv.Itoa(DefaultConcurrency),
	}

	// If the provided reader is nil, try $HOME/sharebox/config.
	if r == nil {
		home, err := Homedir()
		if err != nil {
			return nil, errors.E(op, err)
		}
		f, err := os.Open(filepath.Join(home, "sharebox/config"))
		if err != nil {
			return nil, errors.E(op, errors.IO, err)
		}
		r = f
		defer f.Close()
	}

	// Read the YAML definition.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	if err := valsFromYAML(vals, data); err != nil {
		return nil, errors.E(op, err)
	}

	if l := vals[loglevel]; l != "" {
		if err := log.SetLevel(l); err != nil {
			return nil, errors.E(op, errors.Invalid, err)
		}
	}

	cfg := New()

	n, err := positiveInt(vals, scryptN)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if n&(n-1) != 0 || n < 2 {
		return nil, errors.E(op, errors.Invalid, errors.Errorf("%s must be a power of two greater than one, got %d", scryptN, n))
	}
	cfg = SetScryptN(cfg, n)

	n, err = positiveInt(vals, concurrency)
	if err != nil {
		return nil, errors.E(op, err)
	}
	cfg = SetConcurrency(cfg, n)

	ep, err := parseEndpoint(vals[keyserver])
	if err != nil {
		return nil, errors.E(op, err)
	}
	key, err := bind.KeyServer(ep)
	if err != nil {
		return nil, errors.E(op, err)
	}
	cfg = SetKeyServer(cfg, key)

	ep, err = parseEndpoint(vals[storeserver])
	if err != nil {
		return nil, errors.E(op, err)
	}
	store, err := bind.DataServer(ep)
	if err != nil {
		return nil, errors.E(op, err)
	}
	cfg = SetDataServer(cfg, store)

	return cfg, nil
}

// valsFromYAML parses YAML from the given map and puts the values
// into the provided map. Unrecognized keys generate an error.
func valsFromYAML(vals map[string]string, data []byte) error {
	newVals := map[string]interface{}{}
	if err := yaml.Unmarshal(data, newVals); err != nil {
		return errors.E(errors.Invalid, errors.Errorf("parsing YAML file: %v", err))
	}
	for k, v := range newVals {
		if _, ok := vals[k]; !ok {
			return errors.E(errors.Invalid, errors.Errorf("unrecognized key %q", k))
		}
		s, err := asString(v)
		if err != nil {
			return errors.E(errors.Invalid, errors.Errorf("%q: %v", k, err))
		}
		vals[k] = s
	}
	return nil
}

// asString tries to convert a value back into its original string. This will not
// always be possible but should be for all our expected use cases.
func asString(v interface{}) (string, error) {
	switch vc := v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64, bool:
		return fmt.Sprintf("%v", vc), nil
	case string:
		return vc, nil
	}
	return "", errors.E(errors.Invalid, errors.Errorf("unrecognized value %T", v))
}

func positiveInt(vals map[string]string, key string) (int, error) {
	n, err := strconv.Atoi(vals[key])
	if err != nil || n <= 0 {
		return 0, errors.E(errors.Invalid, errors.Errorf("%s must be a positive integer, got %q", key, vals[key]))
	}
	return n, nil
}

func parseEndpoint(text string) (sharebox.Endpoint, error) {
	ep, err := sharebox.ParseEndpoint(text)
	// If no transport is provided, assume remote transport.
	if err != nil && !strings.Contains(text, ",") {
		if ep2, err2 := sharebox.ParseEndpoint("remote," + text); err2 == nil {
			ep = ep2
			err = nil
		}
	}
	if err != nil {
		return sharebox.Endpoint{}, errors.E(errors.Invalid, errors.Errorf("cannot parse service %q: %v", text, err))
	}

	// If it's a remote and the provided address does not include a port,
	// assume port 443.
	if ep.Transport == sharebox.Remote && !strings.Contains(string(ep.NetAddr), ":") {
		ep.NetAddr += ":443"
	}
	return *ep, nil
}

// Homedir returns the home directory of the OS' logged-in user.
func Homedir() (string, error) {
	u, err := osuser.Current()
	// user.Current may return an error, but we should only handle it if it
	// returns a nil user. This is because os/user is wonky without cgo,
	// but it should work well enough for our purposes.
	if u == nil {
		e := errors.Str("lookup of current user failed")
		if err != nil {
			e = errors.Errorf("%v: %v", e, err)
		}
		return "", e
	}
	h := u.HomeDir
	if h == "" {
		return "", errors.E(errors.NotExist, errors.Str("user home directory not found"))
	}
	fi, err := os.Stat(h)
	if err != nil {
		return "", errors.E(errors.IO, err)
	}
	if !fi.IsDir() {
		return "", errors.E(errors.Invalid, errors.Errorf("%s is not a directory", h))
	}
	return h, nil
}
