// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// I/O helpers.

package subcmd

import (
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"sharebox.io/config"
)

var userLookup = user.Lookup

var home string // Main user's home directory.

func homeDir(who string) string {
	if who == "" {
		if home == "" {
			var err error
			home, err = config.Homedir()
			if err != nil {
				return "~" // What else can we do?
			}
		}
		return home
	}
	u, err := userLookup(who)
	if err != nil {
		return "~" + who // Again, what else can we do?
	}
	return u.HomeDir
}

// Tilde processes a leading tilde, if any, in the local file name.
// If the file name does not begin with a tilde, Tilde returns the argument unchanged.
// This special processing (only) is applied to all local file names passed to
// functions in this package.
// If the target user does not exist, it returns the original string.
func Tilde(file string) string {
	if file == "" || file[0] != '~' {
		return file
	}
	if file == "~" {
		return homeDir("")
	}
	slash := strings.IndexByte(file, '/')
	if slash < 0 {
		return homeDir(file[1:])
	}
	return filepath.Join(homeDir(file[1:slash]), file[slash+1:])
}

// ReadAll reads all contents from a local input file or from stdin if
// the input file name is empty.
func (s *State) ReadAll(fileName string) []byte {
	input := s.Stdin
	if fileName != "" {
		f := s.OpenLocal(fileName)
		defer f.Close()
		input = f
	}
	data, err := io.ReadAll(input)
	if err != nil {
		s.Exit(err)
	}
	return data
}

// WriteAll writes data to a local output file, or to stdout if the
// output file name is empty.
func (s *State) WriteAll(fileName string, data []byte) {
	if fileName == "" {
		if _, err := s.Stdout.Write(data); err != nil {
			s.Exit(err)
		}
		return
	}
	if err := os.WriteFile(Tilde(fileName), data, 0600); err != nil {
		s.Exit(err)
	}
}

// OpenLocal opens a file on local disk.
func (s *State) OpenLocal(path string) *os.File {
	f, err := os.Open(Tilde(path))
	if err != nil {
		s.Exit(err)
	}
	return f
}

// Password returns the user's password, taken from the environment
// variable named by PasswordEnv or, failing that, from the first line of
// standard input. Only that line is consumed.
func (s *State) Password() string {
	if p := s.getenv(PasswordEnv); p != "" {
		return p
	}
	var line []byte
	b := make([]byte, 1)
	for {
		n, err := s.Stdin.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			line = append(line, b[0])
			continue
		}
		if err == io.EOF && len(line) > 0 {
			break
		}
		if err != nil {
			s.Exitf("no password: set $%s or type it on standard input", PasswordEnv)
		}
	}
	return strings.TrimRight(string(line), "\r")
}
