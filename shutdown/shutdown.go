// Copyright 2017 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shutdown runs registered handlers when the process is asked to
// stop, by a signal or by a call to Now, and then exits.
package shutdown // import "sharebox.io/shutdown"

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sharebox.io/log"
)

// GracePeriod is how long the handlers have, all together, before the
// process exits regardless.
const GracePeriod = 30 * time.Second

// Handle registers fn to be run at shutdown. Handlers run in the reverse
// of the order they were registered. Handle may be called concurrently.
func Handle(fn func()) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.handlers = append(state.handlers, fn)
}

// Now runs the registered handlers and exits with the given status code.
// Only the first call does anything; later calls block until the process
// exits. Now may be called concurrently.
func Now(code int) {
	state.once.Do(func() {
		log.Debug.Printf("shutdown: exiting with status %d", code)

		go func() {
			killSleep(GracePeriod)
			// The log may be flushed already.
			fmt.Fprintf(os.Stderr, "shutdown: handlers still running after %v; exiting\n", GracePeriod)
			os.Exit(1)
		}()

		state.mu.Lock() // Held until exit.
		for i := len(state.handlers) - 1; i >= 0; i-- {
			state.handlers[i]()
		}
		os.Exit(code)
	})
	select {}
}

// For tests.
var killSleep = time.Sleep

var state struct {
	mu       sync.Mutex
	handlers []func()
	once     sync.Once
}

func init() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, os.Interrupt)
	go func() {
		sig := <-c
		log.Info.Printf("shutdown: received %v", sig)
		Now(1)
	}()
}
