/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Seednode/radibate/games/debate"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RoomStatus is the body of GET /debate/:code.
type RoomStatus struct {
	Code    string                    `json:"code"`
	Phase   debate.PhaseKind          `json:"phase"`
	Players []debate.LeaderboardEntry `json:"players"`
}

func serveSocket(cfg *Config, gateway *debate.Gateway, idle time.Duration) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.logger.Debug().Err(err).Str("client", realIP(r)).Msg("upgrade failed")

			return
		}

		logf(cfg, "SOCKET: Connection from %s", realIP(r))

		err = gateway.Handle(r.Context(), debate.NewWebSocket(conn, idle))
		if errors.Is(err, debate.ErrHandshake) {
			logf(cfg, "SOCKET: Invalid handshake from %s", realIP(r))
		}
	}
}

func serveQR(cfg *Config, registry *debate.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")
		if _, ok := registry.Lookup(code); !ok {
			http.Error(w, "game not found", http.StatusNotFound)

			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		join := url.URL{
			Scheme:   scheme,
			Host:     r.Host,
			Path:     cfg.prefix + "/",
			RawQuery: url.Values{"code": {code}}.Encode(),
		}

		png, err := qrcode.Encode(join.String(), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func serveRoomStatus(cfg *Config, registry *debate.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := registry.Lookup(ps.ByName("code"))
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)

			return
		}

		status := RoomStatus{
			Code:    room.Code(),
			Phase:   room.Phase(),
			Players: room.Standings(),
		}
		if status.Players == nil {
			status.Players = []debate.LeaderboardEntry{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(status); err != nil {
			errs <- err
		}
	}
}

// registerDebateGame sets up routes so that:
//   - /ws           → WebSocket endpoint for hosts and players
//   - /debate/:code → JSON status of a running game
//   - /debate/:code/qr → PNG QR code pointing players at the game
func registerDebateGame(cfg *Config, registry *debate.Registry, mux *httprouter.Router, errs chan<- error) {
	gateway := debate.NewGateway(registry)

	mux.GET(cfg.prefix+"/ws", serveSocket(cfg, gateway, registry.Settings().IdleTimeout))

	mux.GET(cfg.prefix+"/debate/:code", serveRoomStatus(cfg, registry, errs))

	mux.GET(cfg.prefix+"/debate/:code/qr", serveQR(cfg, registry, errs))
}
