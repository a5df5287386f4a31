/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"math/rand"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Room owns one game. Its state is touched only by the run goroutine; every
// exported method hands a closure to that goroutine and waits for it.
type Room struct {
	code     string
	registry *Registry
	settings Settings
	rng      *rand.Rand
	log      zerolog.Logger

	host    *Conn
	players []*Player
	phase   phase
	round   int
	closed  bool

	lastActive atomic.Int64

	commands chan func()
	quit     chan struct{}
	done     chan struct{}
}

func newRoom(code string, host *Conn, registry *Registry, rng *rand.Rand) *Room {
	r := &Room{
		code:     code,
		registry: registry,
		settings: registry.settings,
		rng:      rng,
		log:      registry.log.With().Str("room", code).Logger(),
		host:     host,
		players:  make([]*Player, 0, registry.settings.MaxPlayers),
		commands: make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.phase = newAwaitingPlayers()
	r.touch()

	return r
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) LastActive() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().UnixNano())
}

func (r *Room) run() {
	defer close(r.done)

	for {
		select {
		case <-r.quit:
			return
		case fn := <-r.commands:
			r.exec(fn)
		case <-r.phase.timeout():
			r.exec(func() {
				r.phase.expire(r)
			})
		}
	}
}

func (r *Room) exec(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Msg("recovered from panic in room command")
		}
	}()

	if r.closed {
		return
	}

	fn()

	r.settle()
}

// settle finishes any phase whose countdown has already resolved, so an
// early cancel takes effect before the next command is applied.
func (r *Room) settle() {
	for !r.closed {
		select {
		case <-r.phase.timeout():
			r.phase.expire(r)
		default:
			return
		}
	}
}

// do runs fn on the room goroutine and waits for it to finish.
func (r *Room) do(fn func()) error {
	finished := make(chan struct{})

	select {
	case r.commands <- func() {
		defer close(finished)
		fn()
	}:
	case <-r.quit:
		return ErrRoomClosed
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) welcomeHost() error {
	return r.do(func() {
		r.send(r.host, Outbound{Type: ConnectedAsHost, Content: HostGreeting{Code: r.code}})
		r.sendSnapshot(nil)
	})
}

// AddPlayer admits conn under the lowest free slot and returns that slot.
func (r *Room) AddPlayer(conn *Conn, name string) (int, error) {
	var (
		slot int
		err  error
	)

	if doErr := r.do(func() {
		slot, err = r.addPlayer(conn, name)
	}); doErr != nil {
		return 0, capacityError("Room not found")
	}

	return slot, err
}

func (r *Room) addPlayer(conn *Conn, name string) (int, error) {
	r.touch()

	if conn == r.host || r.playerFor(conn) != nil {
		return 0, stateError("Already connected to this game")
	}
	if len(r.players) >= r.settings.MaxPlayers {
		return 0, capacityError("Room is full")
	}

	slot := lowestFreeSlot(r.players)
	p := &Player{
		Username: cleanUsername(name, slot),
		Slot:     slot,
		conn:     conn,
	}
	r.players = append(r.players, p)

	r.log.Info().Str("username", p.Username).Int("slot", slot).Int("players", len(r.players)).Msg("player joined")

	r.send(r.host, Outbound{Type: GameUpdate, Content: RosterUpdate{
		Event:        EventPlayerJoin,
		Username:     p.Username,
		PlayerNum:    slot,
		TotalPlayers: len(r.players),
	}})
	r.send(conn, Outbound{Type: ConnectedToGame, Content: PlayerGreeting{
		Code:         r.code,
		PlayerNumber: slot,
		Username:     p.Username,
	}})
	r.sendSnapshot(p)

	return slot, nil
}

// RemovePlayer handles a disconnect. When conn is the host the whole room is
// torn down: every player is closed and the code is released.
func (r *Room) RemovePlayer(conn *Conn) {
	_ = r.do(func() {
		r.removePlayer(conn)
	})
}

func (r *Room) removePlayer(conn *Conn) {
	r.touch()

	if conn == r.host {
		r.log.Info().Msg("host left, closing room")
		r.shutdown("host left", false)

		return
	}

	idx := slices.IndexFunc(r.players, func(p *Player) bool {
		return p.conn == conn
	})
	if idx < 0 {
		return
	}

	p := r.players[idx]
	r.players = slices.Delete(r.players, idx, idx+1)

	r.log.Info().Str("username", p.Username).Int("slot", p.Slot).Int("players", len(r.players)).Msg("player left")

	r.send(r.host, Outbound{Type: GameUpdate, Content: RosterUpdate{
		Event:        EventPlayerLeft,
		Username:     p.Username,
		PlayerNum:    p.Slot,
		TotalPlayers: len(r.players),
	}})
}

// Dispatch applies a request from a connection that belongs to this room.
func (r *Room) Dispatch(msg Inbound) error {
	return r.do(func() {
		r.dispatch(msg)
	})
}

func (r *Room) dispatch(msg Inbound) {
	r.touch()

	sender := r.playerFor(msg.From)
	if sender == nil && msg.From != r.host {
		r.reject(msg.From, stateError("Not connected to this game"))

		return
	}

	switch msg.Type {
	case GameAction:
		if err := r.phase.receive(r, sender, msg); err != nil {
			r.reject(msg.From, err)
		}
	case RequestStateInfo:
		r.sendSnapshot(sender)
	default:
		r.reject(msg.From, stateError("Already connected to a game"))
	}
}

// Close shuts the room down, closing the host and every player.
func (r *Room) Close(reason string) {
	_ = r.do(func() {
		r.shutdown(reason, true)
	})
}

func (r *Room) shutdown(reason string, closeHost bool) {
	if r.closed {
		return
	}
	r.closed = true

	r.phase.exit(r)

	for _, p := range r.players {
		p.conn.Close(reason)
	}
	if closeHost {
		r.host.Close(reason)
	}

	r.registry.release(r)
	close(r.quit)
}

// Phase reports the room's current phase.
func (r *Room) Phase() PhaseKind {
	var kind PhaseKind
	if err := r.do(func() {
		kind = r.phase.kind()
	}); err != nil {
		return PhaseClosed
	}

	return kind
}

// Standings returns the roster in slot order with current scores.
func (r *Room) Standings() []LeaderboardEntry {
	var entries []LeaderboardEntry
	_ = r.do(func() {
		for _, p := range r.players {
			entries = append(entries, LeaderboardEntry{
				PlayerNumber: p.Slot,
				Username:     p.Username,
				Score:        p.Score,
			})
		}
		slices.SortFunc(entries, func(a, b LeaderboardEntry) int {
			return a.PlayerNumber - b.PlayerNumber
		})
	})

	return entries
}

// advance replaces the current phase and broadcasts the new state. A phase
// may redirect from enter, in which case the redirect is entered instead.
func (r *Room) advance(next phase) {
	for next != nil {
		r.phase.exit(r)
		r.phase = next
		r.log.Info().Str("phase", string(next.kind())).Int("round", r.round).Msg("entering phase")
		next = next.enter(r)
	}

	r.broadcastSnapshot()
}

func (r *Room) broadcastSnapshot() {
	r.sendSnapshot(nil)
	for _, p := range r.players {
		r.sendSnapshot(p)
	}
}

// sendSnapshot sends viewer its projection of the current phase. A nil
// viewer is the host.
func (r *Room) sendSnapshot(viewer *Player) {
	conn := r.host
	if viewer != nil {
		conn = viewer.conn
	}

	r.send(conn, Outbound{Type: StanceSnapshot, Content: r.phase.snapshot(r, viewer)})
}

func (r *Room) send(conn *Conn, m Outbound) {
	if err := conn.Send(m); err != nil {
		r.log.Debug().Err(err).Str("conn", conn.ID.String()[:8]).Str("type", string(m.Type)).Msg("send failed")
	}
}

func (r *Room) reject(conn *Conn, err error) {
	r.log.Debug().Err(err).Str("conn", conn.ID.String()[:8]).Msg("rejected request")
	r.send(conn, invalidRequest(reason(err)))
}

func (r *Room) playerFor(conn *Conn) *Player {
	for _, p := range r.players {
		if p.conn == conn {
			return p
		}
	}

	return nil
}
