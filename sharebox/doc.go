// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sharebox contains global interfaces and other definitions for the
components of the system.

Sharebox stores users' files encrypted on a storage service that is trusted
to keep bytes but not to read them. Files can be shared with other users,
who can share them further; the resulting delegations form a sharing tree
per file, and any user may revoke the subtree hanging below one of its own
delegations. Revocation rotates the file's keys so that revoked users can
no longer decrypt it even though they can still reach the ciphertext.

There are two services defined here.

* The DataServer is a passive key-value store mapping a Location to an
opaque blob. It holds every file, certificate, sharing tree and sealed user
secret, all of them encrypted and authenticated by the client.

* The KeyServer is the public-key directory. It maps a user name to that
user's public signing and encryption keys and to the salt used to derive
the user's password key.

Everything else happens in the client: keys are generated, wrapped, rotated
and verified by the users themselves. A Factotum holds a user's private keys
and performs the operations that need them.
*/
package sharebox
