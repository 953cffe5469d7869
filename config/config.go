// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	metrics "github.com/rcrowley/go-metrics"

	"sharebox.io/sharebox"
)

// Default values for the tunable parameters.
const (
	DefaultScryptN     = 1 << 15
	DefaultConcurrency = 8
)

// base implements sharebox.Config, returning default values for all operations.
type base struct{}

func (base) KeyServer() sharebox.KeyServer   { return nil }
func (base) DataServer() sharebox.DataServer { return nil }
func (base) ScryptN() int                    { return DefaultScryptN }
func (base) Concurrency() int                { return DefaultConcurrency }
func (base) Metrics() metrics.Registry       { return metrics.DefaultRegistry }

// New returns a config with all fields set as defaults.
// It has no servers; set them with SetKeyServer and SetDataServer.
func New() sharebox.Config {
	return base{}
}

type cfgKeyServer struct {
	sharebox.Config
	key sharebox.KeyServer
}

func (cfg cfgKeyServer) KeyServer() sharebox.KeyServer {
	return cfg.key
}

// SetKeyServer returns a config derived from the given config
// with the given key server.
func SetKeyServer(cfg sharebox.Config, k sharebox.KeyServer) sharebox.Config {
	return cfgKeyServer{
		Config: cfg,
		key:    k,
	}
}

type cfgDataServer struct {
	sharebox.Config
	data sharebox.DataServer
}

func (cfg cfgDataServer) DataServer() sharebox.DataServer {
	return cfg.data
}

// SetDataServer returns a config derived from the given config
// with the given data server.
func SetDataServer(cfg sharebox.Config, d sharebox.DataServer) sharebox.Config {
	return cfgDataServer{
		Config: cfg,
		data:   d,
	}
}

type cfgScryptN struct {
	sharebox.Config
	n int
}

func (cfg cfgScryptN) ScryptN() int {
	return cfg.n
}

// SetScryptN returns a config derived from the given config
// with the given scrypt cost parameter, which must be a power of two.
// Tests use a small value to run quickly.
func SetScryptN(cfg sharebox.Config, n int) sharebox.Config {
	return cfgScryptN{
		Config: cfg,
		n:      n,
	}
}

type cfgConcurrency struct {
	sharebox.Config
	n int
}

func (cfg cfgConcurrency) Concurrency() int {
	return cfg.n
}

// SetConcurrency returns a config derived from the given config
// with the given limit on concurrent certificate reissues.
func SetConcurrency(cfg sharebox.Config, n int) sharebox.Config {
	return cfgConcurrency{
		Config: cfg,
		n:      n,
	}
}

type cfgMetrics struct {
	sharebox.Config
	reg metrics.Registry
}

func (cfg cfgMetrics) Metrics() metrics.Registry {
	return cfg.reg
}

// SetMetrics returns a config derived from the given config
// that records client operations in the given registry.
func SetMetrics(cfg sharebox.Config, reg metrics.Registry) sharebox.Config {
	return cfgMetrics{
		Config: cfg,
		reg:    reg,
	}
}
