// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flags defines command-line flags to make them consistent between binaries.
// Not all flags make sense for all binaries.
package flags // import "sharebox.io/flags"

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sharebox.io/log"
)

// We define the flags in two steps so clients don't have to write *flags.Flag.
// It also makes the documentation easier to read.

var (
	// AllowClear lets clients of a server remove all of its data.
	// It is meant for test servers only.
	AllowClear = false

	// Config names the sharebox configuration file to use.
	Config = defaultConfig

	// HTTPAddr is the network address on which to listen for incoming
	// network connections.
	HTTPAddr = defaultHTTPAddr

	// Log sets the level of logging (implements flag.Value).
	Log logFlag

	// ServerKind is the implementation kind of the data server:
	// "inprocess" or "filesystem".
	ServerKind = "inprocess"

	// StoreOptions holds the options (key=value) for the data server's
	// storage, such as its capacity.
	StoreOptions []string

	// User names the sharebox user to act as.
	User = ""
)

const defaultHTTPAddr = "localhost:8080"

var defaultConfig = filepath.Join(os.Getenv("HOME"), "sharebox", "config")

// None is the set of no flags. It is rarely needed as most programs
// use either the Server or Client set.
var None = []string{}

// Server is the set of flags most useful in servers. It can be passed as the
// primary argument to Parse.
var Server = []string{"allow_clear", "http", "kind", "log", "store_options"}

// Client is the set of flags most useful in clients. It can be passed as the
// primary argument to Parse.
var Client = []string{"config", "log", "user"}

// flags is a map of flag registration functions keyed by flag name,
// used by Parse to register specific (or all) flags.
var flags = map[string]func(){
	"allow_clear": func() {
		flag.BoolVar(&AllowClear, "allow_clear", AllowClear, "serve the Clear methods, which remove all users and data")
	},
	"config": func() {
		flag.StringVar(&Config, "config", Config, "configuration `file`")
	},
	"http": func() {
		flag.StringVar(&HTTPAddr, "http", HTTPAddr, "`address` for incoming network connections")
	},
	"kind": func() {
		flag.StringVar(&ServerKind, "kind", ServerKind, "data server implementation `kind` (inprocess, filesystem)")
	},
	"log": func() {
		Log.Set("info")
		flag.Var(&Log, "log", "`level` of logging: debug, info, error, disabled")
	},
	"store_options": func() {
		flag.Var(stringsValue{&StoreOptions}, "store_options", "comma-separated list of storage options (key=value)")
	},
	"user": func() {
		flag.StringVar(&User, "user", User, "sharebox user `name`")
	},
}

// Parse registers the command-line flags for the given default flags list, plus
// any extra flag names, and calls flag.Parse. Passing no flag names in either
// list registers all flags. Passing an unknown name triggers a panic.
// The Server and Client variables contain useful default sets.
//
// Examples:
//
//	flags.Parse(flags.Client) // Register all client flags.
//	flags.Parse(flags.Server, "user") // Register all server flags plus -user.
//	flags.Parse(nil) // Register all flags.
//	flags.Parse(flags.None, "http") // Register only -http.
func Parse(defaultList []string, extras ...string) {
	Register(defaultList, extras...)
	flag.Parse()
}

// Register registers the command-line flags for the given default flags list,
// plus any extra flag names, without calling flag.Parse. It follows the rules
// of Parse.
func Register(defaultList []string, extras ...string) {
	if len(defaultList) == 0 && len(extras) == 0 {
		for _, f := range flags {
			f()
		}
		return
	}
	for _, n := range append(defaultList[:len(defaultList):len(defaultList)], extras...) {
		f, ok := flags[n]
		if !ok {
			panic(fmt.Sprintf("unknown flag %q", n))
		}
		f()
	}
}

type logFlag string

// String implements flag.Value.
func (f logFlag) String() string {
	return string(f)
}

// Set implements flag.Value.
func (f *logFlag) Set(level string) error {
	if err := log.SetLevel(level); err != nil {
		return err
	}
	*f = logFlag(log.GetLevel())
	return nil
}

// Get implements flag.Getter.
func (logFlag) Get() interface{} {
	return log.GetLevel()
}

// stringsValue is a flag.Value holding a comma-separated list.
type stringsValue struct {
	s *[]string
}

// String implements flag.Value.
func (v stringsValue) String() string {
	if v.s == nil {
		return ""
	}
	return strings.Join(*v.s, ",")
}

// Set implements flag.Value.
func (v stringsValue) Set(s string) error {
	*v.s = nil
	for _, opt := range strings.Split(strings.TrimSpace(s), ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			*v.s = append(*v.s, opt)
		}
	}
	return nil
}

// Get implements flag.Getter.
func (v stringsValue) Get() interface{} {
	return *v.s
}
