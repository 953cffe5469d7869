// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package subcmd provides the state and helpers shared by the
// subcommands of the sharebox command.
package subcmd // import "sharebox.io/subcmd"

import (
	"fmt"
	"io"
	"os"

	"sharebox.io/client"
	"sharebox.io/sharebox"
	"sharebox.io/shutdown"
)

// PasswordEnv names the environment variable from which the user's
// password is read when it is not typed on standard input.
const PasswordEnv = "SHAREBOX_PASSWORD"

// State describes the state of a subcommand.
// See the comments for Exitf to see how Interactive is used.
type State struct {
	Name        string          // Name of the subcommand we are running.
	Config      sharebox.Config // Config; may be nil.
	Session     *client.Session // Session; nil until Login.
	Interactive bool            // Whether the command is line-by-line.
	Stdin       io.Reader       // Where to read standard input.
	Stdout      io.Writer       // Where to write standard output.
	Stderr      io.Writer       // Where to write error output.
	ExitCode    int             // Exit with non-zero status for minor problems.

	getenv func(string) string
}

// NewState returns a new State for the named subcommand.
func NewState(name string) *State {
	s := &State{Name: name, getenv: os.Getenv}
	s.DefaultIO()
	return s
}

// Init sets the config for the State.
func (s *State) Init(config sharebox.Config) {
	s.Config = config
}

// Login authenticates the named user and sets the State's session,
// or exits on failure.
func (s *State) Login(user sharebox.UserName) *client.Session {
	if user == "" {
		s.Exitf("no user; use the -user flag")
	}
	sess, err := client.AuthenticateUser(s.Config, user, s.Password())
	if err != nil {
		s.Exit(err)
	}
	s.Session = sess
	return sess
}

func (s *State) SetIO(stdin io.Reader, stdout, stderr io.Writer) {
	s.Stdin = stdin
	s.Stdout = stdout
	s.Stderr = stderr
}

func (s *State) DefaultIO() {
	s.SetIO(os.Stdin, os.Stdout, os.Stderr)
}

// Exitf prints the error and exits the program.
// If we are interactive, it calls panic("exit"), which is intended to be recovered
// from by the calling interpreter.
// We don't use log (although the packages we call do) because the errors
// are for regular people.
func (s *State) Exitf(format string, args ...interface{}) {
	format = fmt.Sprintf("sharebox: %s: %s\n", s.Name, format)
	fmt.Fprintf(s.Stderr, format, args...)
	if s.Interactive {
		panic("exit")
	}
	s.ExitCode = 1
	s.ExitNow()
}

// Exit calls s.Exitf with the error.
func (s *State) Exit(err error) {
	s.Exitf("%s", err)
}

// ExitNow terminates the process with the current ExitCode.
func (s *State) ExitNow() {
	shutdown.Now(s.ExitCode)
}

// Failf logs the error and sets the exit code. It does not exit the program.
func (s *State) Failf(format string, args ...interface{}) {
	format = fmt.Sprintf("sharebox: %s: %s\n", s.Name, format)
	fmt.Fprintf(s.Stderr, format, args...)
	s.ExitCode = 1
}

// Fail calls s.Failf with the error.
func (s *State) Fail(err error) {
	s.Failf("%v", err)
}
