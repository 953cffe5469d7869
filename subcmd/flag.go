// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Flag helpers.

package subcmd

import (
	"flag"
	"fmt"
)

// ParseFlags parses the flags in the command line arguments,
// according to those set in the flag set.
func (s *State) ParseFlags(fs *flag.FlagSet, args []string, help, usage string) {
	helpFlag := fs.Bool("help", false, "print more information about the command")
	fs.SetOutput(s.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(s.Stderr, "Usage: sharebox %s\n", usage)
		if *helpFlag {
			fmt.Fprintln(s.Stderr, help)
		}
		n := 0
		fs.VisitAll(func(*flag.Flag) { n++ })
		if n > 0 {
			fmt.Fprintf(s.Stderr, "Flags:\n")
			fs.PrintDefaults()
		}
		if s.Interactive {
			panic("exit")
		}
	}
	if err := fs.Parse(args); err != nil {
		s.Exit(err)
	}
	if *helpFlag {
		fs.Usage()
		s.ExitCode = 2
		s.ExitNow()
	}
}

// UsageAndExit prints the usage of the flag set and exits with status 2.
func (s *State) UsageAndExit(fs *flag.FlagSet) {
	fs.Usage()
	s.ExitCode = 2
	s.ExitNow()
}
