/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Gateway accepts sockets, performs the handshake, and routes each decoded
// request either to the registry or to the room the connection belongs to.
type Gateway struct {
	registry *Registry
	settings Settings
	log      zerolog.Logger
}

func NewGateway(registry *Registry) *Gateway {
	return &Gateway{
		registry: registry,
		settings: registry.Settings(),
		log:      registry.Settings().Logger,
	}
}

// Handle runs a socket from handshake to disconnect.
func (g *Gateway) Handle(ctx context.Context, socket Socket) error {
	conn, err := g.Accept(ctx, socket)
	if err != nil {
		return err
	}

	g.Serve(conn)

	return nil
}

// Accept waits for the handshake frame. On success the returned Conn has its
// write pump running; otherwise the socket has been closed.
func (g *Gateway) Accept(ctx context.Context, socket Socket) (*Conn, error) {
	_ = socket.SetReadDeadline(time.Now().Add(g.settings.HandshakeTimeout))

	data, err := socket.Read()
	if err != nil {
		socket.Close("handshake timed out")

		return nil, fmt.Errorf("reading handshake: %w", err)
	}

	if string(data) != HandshakeHello {
		_ = socket.Write([]byte(HandshakeInvalid))
		socket.Close("invalid handshake")

		return nil, ErrHandshake
	}

	if err := socket.Write([]byte(HandshakeWelcome)); err != nil {
		socket.Close("")

		return nil, fmt.Errorf("writing handshake: %w", err)
	}

	_ = socket.SetReadDeadline(time.Time{})

	conn := newConn(ctx, socket, g.settings)
	go conn.writePump(g.settings.IdleTimeout / 2)

	conn.log.Debug().Msg("handshake complete")

	return conn, nil
}

// Serve reads frames from conn until it fails or is closed, then removes
// conn from its room.
func (g *Gateway) Serve(conn *Conn) {
	defer func() {
		if room := conn.Room(); room != nil {
			room.RemovePlayer(conn)
		}
		conn.Close("")

		conn.log.Debug().Msg("connection closed")
	}()

	for {
		if g.settings.IdleTimeout > 0 {
			_ = conn.socket.SetReadDeadline(time.Now().Add(g.settings.IdleTimeout))
		}

		data, err := conn.socket.Read()
		if err != nil {
			conn.log.Debug().Err(err).Msg("read failed")

			return
		}

		if !conn.limiter.Allow() {
			g.reply(conn, stateError("Too many requests"))

			continue
		}

		msg, err := DecodeInbound(data)
		if err != nil {
			g.reply(conn, err)

			continue
		}
		msg.From = conn

		g.route(msg)
	}
}

func (g *Gateway) route(msg Inbound) {
	conn := msg.From

	if room := conn.Room(); room != nil {
		if err := room.Dispatch(msg); err != nil {
			g.reply(conn, stateError("Game is no longer running"))
		}

		return
	}

	switch msg.Type {
	case CreateGame:
		if _, err := g.registry.CreateRoom(conn); err != nil {
			g.reply(conn, err)
		}

	case ConnectToGame:
		code := normalizeCode(msg.Get("gameCode"))

		room, ok := g.registry.Lookup(code)
		if !ok {
			g.reply(conn, capacityError("Room not found"))

			return
		}

		if _, err := room.AddPlayer(conn, msg.Get("username")); err != nil {
			g.reply(conn, err)

			return
		}
		conn.setRoom(room)

	default:
		g.reply(conn, stateError("Not connected to a game"))
	}
}

func (g *Gateway) reply(conn *Conn, err error) {
	conn.log.Debug().Err(err).Msg("rejected request")

	if sendErr := conn.Send(invalidRequest(reason(err))); sendErr != nil {
		conn.log.Debug().Err(sendErr).Msg("send failed")
	}
}
