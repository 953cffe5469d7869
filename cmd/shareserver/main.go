// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Shareserver serves a key server and a data server over HTTP, for use by
// sharebox clients configured with remote endpoints. The key server is
// held in memory; the data server is in memory or, with -kind=filesystem
// and -store_options=root=dir, kept in a directory. The Clear methods,
// which wipe both servers, are served only with -allow_clear.
package main // import "sharebox.io/cmd/shareserver"

import (
	"context"
	"net/http"
	"time"

	metrics "github.com/rcrowley/go-metrics"

	"sharebox.io/errors"
	"sharebox.io/flags"
	"sharebox.io/key/inprocess"
	"sharebox.io/log"
	"sharebox.io/rpc"
	"sharebox.io/rpc/keyserver"
	"sharebox.io/rpc/storeserver"
	"sharebox.io/sharebox"
	"sharebox.io/shutdown"
	"sharebox.io/store/filesystem"

	storeinprocess "sharebox.io/store/inprocess"
)

func main() {
	flags.Parse(flags.Server)

	var store sharebox.DataServer
	var err error
	switch flags.ServerKind {
	case "inprocess":
		store, err = storeinprocess.New(flags.StoreOptions...)
	case "filesystem":
		store, err = filesystem.New(flags.StoreOptions...)
	default:
		err = errors.Errorf("bad -kind %q", flags.ServerKind)
	}
	if err != nil {
		log.Fatalf("shareserver: setting up data server: %v", err)
	}
	key := inprocess.New()
	reg := metrics.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/api/Key/", keyserver.New(key, reg, flags.AllowClear))
	mux.Handle("/api/Store/", storeserver.New(store, reg, flags.AllowClear))
	mux.HandleFunc("/debug/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		metrics.WriteOnce(reg, w)
	})

	srv := &http.Server{
		Addr:              flags.HTTPAddr,
		Handler:           rpc.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdown.Handle(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdown.GracePeriod/2)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error.Printf("shareserver: shutdown: %v", err)
		}
	})

	log.Info.Printf("shareserver: serving on %s", flags.HTTPAddr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Error.Printf("shareserver: %v", err)
		shutdown.Now(1)
	}
	// Shutdown has begun; it exits the process when done.
	select {}
}
