/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeWelcome(t *testing.T) {
	g, _ := newTestGateway(t, testSettings())

	c := dial(t, g)
	c.send(RequestStateInfo, nil)
	assert.Equal(t, "Not connected to a game", c.invalid())
}

func TestHandshakeRejected(t *testing.T) {
	for _, greeting := range []string{"HELLO", "hello game", "HELLO GAME ", `{"type":"CreateGame"}`} {
		t.Run(greeting, func(t *testing.T) {
			g, _ := newTestGateway(t, testSettings())

			socket := newFakeSocket()
			socket.inbox <- []byte(greeting)

			err := g.Handle(context.Background(), socket)
			assert.True(t, errors.Is(err, ErrHandshake))

			c := &client{t: t, socket: socket}
			assert.Equal(t, HandshakeInvalid, c.nextRaw())
			c.expectClosed()
		})
	}
}

func TestHandshakeTimesOut(t *testing.T) {
	settings := testSettings()
	settings.HandshakeTimeout = 30 * time.Millisecond
	g, _ := newTestGateway(t, settings)

	socket := newFakeSocket()

	err := g.Handle(context.Background(), socket)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrHandshake))

	c := &client{t: t, socket: socket}
	c.expectClosed()
}

func TestMalformedFramesKeepConnectionOpen(t *testing.T) {
	g, _ := newTestGateway(t, testSettings())

	c := dial(t, g)

	c.raw("not json")
	assert.Equal(t, "Invalid JSON", c.invalid())

	c.raw(`{"content":{"action":"startGame"}}`)
	assert.Equal(t, "Missing type", c.invalid())

	c.raw(`{"type":"JoinAsSpectator"}`)
	assert.Equal(t, `Unknown type "JoinAsSpectator"`, c.invalid())

	c.send(GameAction, map[string]any{"action": ActionStartGame})
	assert.Equal(t, "Not connected to a game", c.invalid())

	c.send(CreateGame, nil)
	c.expect(ConnectedAsHost)
}

func TestJoinUnknownRoom(t *testing.T) {
	g, _ := newTestGateway(t, testSettings())

	c := dial(t, g)
	c.send(ConnectToGame, map[string]any{"gameCode": "999999", "username": "Ada"})
	assert.Equal(t, "Room not found", c.invalid())

	c.send(ConnectToGame, map[string]any{"username": "Ada"})
	assert.Equal(t, "Room not found", c.invalid())
}

func TestJoinAcceptsNumericCode(t *testing.T) {
	settings := testSettings()
	g, registry := newTestGateway(t, settings)

	// A leading zero would not be a valid JSON number.
	host, code := hostGame(t, g)
	for code[0] == '0' {
		host, code = hostGame(t, g)
	}

	player := dial(t, g)
	player.raw(`{"type":"ConnectToGame","content":{"gameCode":` + code + `}}`)

	var greeting PlayerGreeting
	player.expect(ConnectedToGame).decode(t, &greeting)
	assert.Equal(t, code, greeting.Code)
	assert.Equal(t, "Player 1", greeting.Username)

	host.expect(GameUpdate)
	assert.Len(t, lookup(t, registry, code).Standings(), 1)
}

func TestJoinRestoresLeadingZeros(t *testing.T) {
	settings := testSettings()
	settings.Rand = rand.New(constSource{})
	g, registry := newTestGateway(t, settings)

	host, code := hostGame(t, g)
	require.Equal(t, "000000", code)

	player := dial(t, g)
	player.raw(`{"type":"ConnectToGame","content":{"gameCode":0}}`)

	var greeting PlayerGreeting
	player.expect(ConnectedToGame).decode(t, &greeting)
	assert.Equal(t, code, greeting.Code)

	host.expect(GameUpdate)
	assert.Len(t, lookup(t, registry, code).Standings(), 1)
}

func TestConnectedClientsCannotSwitchRooms(t *testing.T) {
	g, _ := newTestGateway(t, testSettings())

	host, code := hostGame(t, g)

	host.send(CreateGame, nil)
	assert.Equal(t, "Already connected to a game", host.invalid())

	host.send(ConnectToGame, map[string]any{"gameCode": code})
	assert.Equal(t, "Already connected to a game", host.invalid())

	player, _ := joinGame(t, g, code, "Ada")
	player.send(ConnectToGame, map[string]any{"gameCode": code})
	assert.Equal(t, "Already connected to a game", player.invalid())
}

func TestRateLimitedFramesAreDropped(t *testing.T) {
	settings := testSettings()
	settings.RateLimit = 1
	settings.RateBurst = 2
	g, _ := newTestGateway(t, settings)

	c := dial(t, g)
	for range 5 {
		c.send(RequestStateInfo, nil)
	}

	var replies []string
	for range 5 {
		replies = append(replies, c.invalid())
	}

	assert.Equal(t, []string{"Not connected to a game", "Not connected to a game"}, replies[:2])
	assert.Contains(t, replies[2:], "Too many requests")
}

func TestIdleConnectionsAreDropped(t *testing.T) {
	settings := testSettings()
	settings.IdleTimeout = 80 * time.Millisecond
	g, _ := newTestGateway(t, settings)

	c := dial(t, g)

	eventually(t, func() bool {
		c.socket.mu.Lock()
		defer c.socket.mu.Unlock()

		return c.socket.pings > 0
	})
	c.expectClosed()
}

func TestSlowClientIsDisconnected(t *testing.T) {
	settings := testSettings()
	settings.SendQueue = 1

	conn := newConn(context.Background(), newFakeSocket(), settings.withDefaults())

	require.NoError(t, conn.Send(invalidRequest("first")))
	assert.ErrorIs(t, conn.Send(invalidRequest("second")), ErrSlowClient)

	select {
	case <-conn.Done():
	default:
		t.Fatal("slow client was not closed")
	}
	assert.Equal(t, "too slow", conn.reason())
	assert.ErrorIs(t, conn.Send(invalidRequest("third")), ErrConnClosed)
}
