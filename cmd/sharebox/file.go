// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"

	"sharebox.io/client"
	"sharebox.io/sharebox"
)

func (s *State) signup(args ...string) {
	const help = `
Signup creates a new user with the given name. The password is taken
from $SHAREBOX_PASSWORD or read as the first line of standard input.
The user's public keys are registered with the key server and its
private keys are stored on the data server, sealed under the password.
`
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	s.ParseFlags(fs, args, help, "signup username")
	if fs.NArg() != 1 {
		s.UsageAndExit(fs)
	}
	name := sharebox.UserName(fs.Arg(0))
	if err := client.CreateUser(s.Config, name, s.Password()); err != nil {
		s.Exit(err)
	}
	fmt.Fprintf(s.Stdout, "created user %s\n", name)
}

func (s *State) put(args ...string) {
	const help = `
Put writes its input to the named file, replacing its contents. If the
user has no file of that name, or has lost access to the one it had,
a new file owned by the user is created.
`
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	inFile := fs.String("in", "", "input file (default standard input)")
	s.ParseFlags(fs, args, help, "put [-in=inputfile] file")
	if fs.NArg() != 1 {
		s.UsageAndExit(fs)
	}
	s.login()
	data := s.ReadAll(*inFile)
	if err := s.Session.UploadFile(sharebox.FileName(fs.Arg(0)), data); err != nil {
		s.Exit(err)
	}
}

func (s *State) append(args ...string) {
	const help = `
Append adds its input to the end of the named file, which the user must
own or have received.
`
	fs := flag.NewFlagSet("append", flag.ExitOnError)
	inFile := fs.String("in", "", "input file (default standard input)")
	s.ParseFlags(fs, args, help, "append [-in=inputfile] file")
	if fs.NArg() != 1 {
		s.UsageAndExit(fs)
	}
	s.login()
	data := s.ReadAll(*inFile)
	if err := s.Session.AppendFile(sharebox.FileName(fs.Arg(0)), data); err != nil {
		s.Exit(err)
	}
}

func (s *State) get(args ...string) {
	const help = `
Get writes the contents of the named file to standard output.
`
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	outFile := fs.String("out", "", "output file (default standard output)")
	s.ParseFlags(fs, args, help, "get [-out=outputfile] file")
	if fs.NArg() != 1 {
		s.UsageAndExit(fs)
	}
	s.login()
	data, err := s.Session.DownloadFile(sharebox.FileName(fs.Arg(0)))
	if err != nil {
		s.Exit(err)
	}
	s.WriteAll(*outFile, data)
}

func (s *State) ls(args ...string) {
	const help = `
Ls lists the files the user can access, both its own and those it has
received.
`
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	s.ParseFlags(fs, args, help, "ls")
	if fs.NArg() != 0 {
		s.UsageAndExit(fs)
	}
	s.login()
	names, err := s.Session.ListFiles()
	if err != nil {
		s.Exit(err)
	}
	for _, name := range names {
		fmt.Fprintln(s.Stdout, name)
	}
}
