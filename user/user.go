// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package user provides tools for validating user names.
package user // import "sharebox.io/user"

import (
	"strings"

	"golang.org/x/text/secure/precis"

	"sharebox.io/errors"
	"sharebox.io/sharebox"
)

// MaxNameLen is the longest user name accepted, in bytes.
const MaxNameLen = 254

// Clean returns the canonical form of the user name.
//
// User names are PRECIS usernames (RFC 8265) with case preserved:
// width-mapped and NFC-normalized, letters and digits and printable
// ASCII only, no spaces. Two spellings of the same name, such as an
// accented letter written as one code point or as a letter followed
// by a combining accent, clean to the same user. The slash is
// reserved and a name may not start with a period.
func Clean(name sharebox.UserName) (sharebox.UserName, error) {
	const op errors.Op = "user.Clean"
	if name == "" {
		return "", errors.E(op, errors.Invalid, "empty user name")
	}
	s, err := precis.UsernameCasePreserved.String(string(name))
	if err != nil {
		return "", errors.E(op, errors.Invalid, name, err)
	}
	if len(s) > MaxNameLen {
		return "", errors.E(op, errors.Invalid, name, "name too long")
	}
	if strings.ContainsRune(s, '/') {
		return "", errors.E(op, errors.Invalid, name, "bad symbol in user name")
	}
	if strings.HasPrefix(s, ".") {
		return "", errors.E(op, errors.Invalid, name, "user name cannot start with a period")
	}
	return sharebox.UserName(s), nil
}
