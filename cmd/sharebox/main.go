// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sharebox is the command-line client for sharebox. It creates users and
// stores, shares and revokes files as one of them.
package main // import "sharebox.io/cmd/sharebox"

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	metrics "github.com/rcrowley/go-metrics"

	"sharebox.io/config"
	"sharebox.io/flags"
	"sharebox.io/sharebox"
	"sharebox.io/subcmd"

	// Load required transports
	_ "sharebox.io/transports"
)

const intro = `
The sharebox command stores files encrypted on a data server and shares
them with other users. The servers it talks to, named in the
configuration file, see only ciphertext.

Every subcommand except signup acts as the user named by the -user flag
and needs that user's password, taken from $SHAREBOX_PASSWORD or read
as the first line of standard input.

Each subcommand has a -help flag that explains it in more detail.
For instance

	sharebox share -help

explains the purpose and usage of the share subcommand.

For a list of available subcommands and global flags, run

	sharebox -help
`

var commands = map[string]func(*State, ...string){
	"append":  (*State).append,
	"get":     (*State).get,
	"ls":      (*State).ls,
	"put":     (*State).put,
	"receive": (*State).receive,
	"revoke":  (*State).revoke,
	"share":   (*State).share,
	"sharing": (*State).sharing,
	"signup":  (*State).signup,
}

var printMetrics = flag.Bool("metrics", false, "print operation timings to standard error on exit")

type State struct {
	*subcmd.State
}

func main() {
	flag.Usage = usage
	flags.Parse(flags.Client)

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s\n", intro)
		os.Exit(2)
	}
	op := strings.ToLower(flag.Arg(0))
	fn := commands[op]
	if fn == nil {
		fmt.Fprintf(os.Stderr, "sharebox: no such command %q\n", flag.Arg(0))
		printCommands()
		os.Exit(2)
	}

	s := newState(op)
	fn(s, flag.Args()[1:]...)
	s.cleanup()
	s.ExitNow()
}

func newState(op string) *State {
	s := &State{subcmd.NewState(op)}
	cfg, err := config.FromFile(flags.Config)
	if err != nil {
		s.Exit(err)
	}
	s.Init(cfg)
	return s
}

// login authenticates the user named by the -user flag.
func (s *State) login() {
	s.Login(sharebox.UserName(flags.User))
}

func (s *State) cleanup() {
	if *printMetrics {
		metrics.WriteOnce(s.Config.Metrics(), s.Stderr)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage of sharebox:\n")
	fmt.Fprintf(os.Stderr, "\tsharebox [globalflags] <command> [flags] <file>\n")
	printCommands()
	fmt.Fprintf(os.Stderr, "Global flags:\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func printCommands() {
	fmt.Fprintf(os.Stderr, "Sharebox commands:\n")
	var names []string
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "\t%s\n", name)
	}
}
