/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

var errReadTimeout = errors.New("read deadline exceeded")

// fakeSocket is an in-memory Socket. Tests push client frames into inbox
// and read server frames from outbox.
type fakeSocket struct {
	inbox  chan []byte
	outbox chan []byte

	mu       sync.Mutex
	deadline time.Time
	reason   string
	pings    int

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		inbox:  make(chan []byte, 64),
		outbox: make(chan []byte, 512),
		closed: make(chan struct{}),
	}
}

func (s *fakeSocket) Read() ([]byte, error) {
	s.mu.Lock()
	deadline := s.deadline
	s.mu.Unlock()

	var expired <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case data := <-s.inbox:
		return data, nil
	case <-s.closed:
		return nil, io.EOF
	case <-expired:
		return nil, errReadTimeout
	}
}

func (s *fakeSocket) Write(data []byte) error {
	select {
	case <-s.closed:
		return io.ErrClosedPipe
	default:
	}

	select {
	case s.outbox <- data:
		return nil
	default:
		return errors.New("outbox full")
	}
}

func (s *fakeSocket) Ping() error {
	s.mu.Lock()
	s.pings++
	s.mu.Unlock()

	return nil
}

func (s *fakeSocket) SetReadDeadline(t time.Time) error {
	s.mu.Lock()
	s.deadline = t
	s.mu.Unlock()

	return nil
}

func (s *fakeSocket) Close(reason string) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.closed)
	})
}

func (s *fakeSocket) closeReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reason
}

type frame struct {
	Type    OutboundType    `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (f frame) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(f.Content, v))
}

func (f frame) fields(t *testing.T) map[string]any {
	t.Helper()

	var m map[string]any
	f.decode(t, &m)

	return m
}

// client drives a fakeSocket from the test side.
type client struct {
	t      *testing.T
	socket *fakeSocket
}

func (c *client) raw(data string) {
	c.socket.inbox <- []byte(data)
}

func (c *client) send(typ InboundType, content map[string]any) {
	c.t.Helper()

	msg := map[string]any{"type": typ}
	if content != nil {
		msg["content"] = content
	}

	data, err := json.Marshal(msg)
	require.NoError(c.t, err)

	c.socket.inbox <- data
}

func (c *client) action(action string, content map[string]any) {
	c.t.Helper()

	if content == nil {
		content = map[string]any{}
	}
	content["action"] = action

	c.send(GameAction, content)
}

func (c *client) nextRaw() string {
	c.t.Helper()

	select {
	case data := <-c.socket.outbox:
		return string(data)
	case <-time.After(waitTimeout):
		c.t.Fatal("timed out waiting for a frame")

		return ""
	}
}

func (c *client) next() frame {
	c.t.Helper()

	var f frame
	require.NoError(c.t, json.Unmarshal([]byte(c.nextRaw()), &f))

	return f
}

// expect skips frames until one of type typ arrives.
func (c *client) expect(typ OutboundType) frame {
	c.t.Helper()

	for {
		if f := c.next(); f.Type == typ {
			return f
		}
	}
}

// snapshot skips frames until a snapshot tagged phase arrives.
func (c *client) snapshot(phase string) map[string]any {
	c.t.Helper()

	for {
		f := c.expect(StanceSnapshot)
		if fields := f.fields(c.t); fields["phase"] == phase {
			return fields
		}
	}
}

func (c *client) invalid() string {
	c.t.Helper()

	var n Notice
	c.expect(InvalidRequest).decode(c.t, &n)

	return n.Message
}

func (c *client) expectClosed() {
	c.t.Helper()

	select {
	case <-c.socket.closed:
	case <-time.After(waitTimeout):
		c.t.Fatal("timed out waiting for the socket to close")
	}
}

func (c *client) disconnect() {
	c.socket.Close("")
}

func testSettings() Settings {
	return Settings{
		StanceDuration:     time.Minute,
		DiscussionDuration: time.Minute,
		HandshakeTimeout:   time.Second,
		Rand:               rand.New(rand.NewSource(1)),
		Topics:             TopicList{"Is tea better than coffee?"},
		Logger:             zerolog.Nop(),
	}
}

func newTestGateway(t *testing.T, settings Settings) (*Gateway, *Registry) {
	t.Helper()

	registry := NewRegistry(settings)
	t.Cleanup(registry.Close)

	return NewGateway(registry), registry
}

// dial runs a socket through the gateway and completes the handshake.
func dial(t *testing.T, g *Gateway) *client {
	t.Helper()

	c := &client{t: t, socket: newFakeSocket()}
	t.Cleanup(c.disconnect)

	go func() {
		_ = g.Handle(context.Background(), c.socket)
	}()

	c.raw(HandshakeHello)
	require.Equal(t, HandshakeWelcome, c.nextRaw())

	return c
}

func hostGame(t *testing.T, g *Gateway) (*client, string) {
	t.Helper()

	host := dial(t, g)
	host.send(CreateGame, nil)

	var greeting HostGreeting
	host.expect(ConnectedAsHost).decode(t, &greeting)
	require.Len(t, greeting.Code, codeDigits)

	host.snapshot(tagHostWaitingRoom)

	return host, greeting.Code
}

func joinGame(t *testing.T, g *Gateway, code, username string) (*client, int) {
	t.Helper()

	player := dial(t, g)
	player.send(ConnectToGame, map[string]any{"gameCode": code, "username": username})

	var greeting PlayerGreeting
	player.expect(ConnectedToGame).decode(t, &greeting)
	player.snapshot(tagWaitingRoom)

	return player, greeting.PlayerNumber
}

// table is a host plus joined players indexed by slot.
type table struct {
	host    *client
	code    string
	players map[int]*client
}

func setTable(t *testing.T, g *Gateway, names ...string) *table {
	t.Helper()

	host, code := hostGame(t, g)
	tb := &table{host: host, code: code, players: make(map[int]*client)}

	for _, name := range names {
		player, slot := joinGame(t, g, code, name)
		tb.players[slot] = player
		host.expect(GameUpdate)
	}

	return tb
}

func slotsOf(t *testing.T, v any) []int {
	t.Helper()

	raw, ok := v.([]any)
	require.True(t, ok, "expected a list, got %T", v)

	slots := make([]int, 0, len(raw))
	for _, n := range raw {
		slots = append(slots, int(n.(float64)))
	}

	return slots
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, waitTimeout, 5*time.Millisecond)
}

// snapshotOfType skips frames until a snapshot tagged phase with the given
// view type arrives.
func (c *client) snapshotOfType(phase, view string) map[string]any {
	c.t.Helper()

	for {
		if fields := c.snapshot(phase); fields["type"] == view {
			return fields
		}
	}
}

// debaters waits for the host's stance snapshot and returns the two
// debater slots.
func (tb *table) debaters(t *testing.T) (int, int) {
	t.Helper()

	fields := tb.host.snapshotOfType(tagStanceTaking, viewHost)

	named, ok := fields["debatersWithNames"].([]any)
	require.True(t, ok)
	require.Len(t, named, 2)

	first := int(named[0].(map[string]any)["playerNumber"].(float64))
	second := int(named[1].(map[string]any)["playerNumber"].(float64))
	require.NotEqual(t, first, second)

	return first, second
}

func (tb *table) others(slots ...int) []int {
	var out []int
	for slot := range tb.players {
		if !slices.Contains(slots, slot) {
			out = append(out, slot)
		}
	}
	slices.Sort(out)

	return out
}

// supporting waits for the viewer's discussion snapshot that reports choice.
func (c *client) supporting(choice int) map[string]any {
	c.t.Helper()

	for {
		fields := c.snapshotOfType(tagDiscussion, viewPickingPlayer)
		if fields["supporting"] == float64(choice) {
			return fields
		}
	}
}
