/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// Named runtime profiles served under /pprof/.
var runtimeProfiles = []string{
	"allocs",
	"block",
	"goroutine",
	"heap",
	"mutex",
	"threadcreate",
}

var profileHandlers = map[string]http.HandlerFunc{
	"cmdline": pprof.Cmdline,
	"profile": pprof.Profile,
	"symbol":  pprof.Symbol,
	"trace":   pprof.Trace,
}

func registerProfileHandlers(cfg *Config, mux *httprouter.Router) {
	base := cfg.prefix + "/pprof/"

	for _, name := range runtimeProfiles {
		mux.Handler(http.MethodGet, base+name, pprof.Handler(name))
	}

	for name, handler := range profileHandlers {
		mux.HandlerFunc(http.MethodGet, base+name, handler)
	}

	logf(cfg, "PROFILE: Serving %d profiles under %s", len(runtimeProfiles)+len(profileHandlers), base)
}
