// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"text/tabwriter"

	"sharebox.io/sharebox"
)

func (s *State) share(args ...string) {
	const help = `
Share lets another user access the named file. The user must own the
file or have received it. The share takes effect once the recipient
runs the receive command.
`
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	s.ParseFlags(fs, args, help, "share file recipient")
	if fs.NArg() != 2 {
		s.UsageAndExit(fs)
	}
	s.login()
	if err := s.Session.ShareFile(sharebox.FileName(fs.Arg(0)), sharebox.UserName(fs.Arg(1))); err != nil {
		s.Exit(err)
	}
}

func (s *State) receive(args ...string) {
	const help = `
Receive accepts a file another user has shared with this one. Afterwards
the file is listed by ls and can be read, written and shared further.
`
	fs := flag.NewFlagSet("receive", flag.ExitOnError)
	s.ParseFlags(fs, args, help, "receive file sharer")
	if fs.NArg() != 2 {
		s.UsageAndExit(fs)
	}
	s.login()
	if err := s.Session.ReceiveFile(sharebox.FileName(fs.Arg(0)), sharebox.UserName(fs.Arg(1))); err != nil {
		s.Exit(err)
	}
}

func (s *State) revoke(args ...string) {
	const help = `
Revoke removes access to the named file from a user this one shared it
with, and from everyone that user shared it with in turn. The file is
re-encrypted under new keys, which are sent to the remaining users.

If revoke fails part way it may safely be run again.
`
	fs := flag.NewFlagSet("revoke", flag.ExitOnError)
	s.ParseFlags(fs, args, help, "revoke file user")
	if fs.NArg() != 2 {
		s.UsageAndExit(fs)
	}
	s.login()
	if err := s.Session.RevokeFile(sharebox.FileName(fs.Arg(0)), sharebox.UserName(fs.Arg(1))); err != nil {
		s.Exit(err)
	}
}

func (s *State) sharing(args ...string) {
	const help = `
Sharing prints who shared the named file with whom, and the state of
each share: pending until received, active, or revoked.
`
	fs := flag.NewFlagSet("sharing", flag.ExitOnError)
	s.ParseFlags(fs, args, help, "sharing file")
	if fs.NArg() != 1 {
		s.UsageAndExit(fs)
	}
	s.login()
	edges, err := s.Session.Sharing(sharebox.FileName(fs.Arg(0)))
	if err != nil {
		s.Exit(err)
	}
	w := tabwriter.NewWriter(s.Stdout, 0, 4, 2, ' ', 0)
	for _, e := range edges {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Sharer, e.Recipient, e.State)
	}
	w.Flush()
}
