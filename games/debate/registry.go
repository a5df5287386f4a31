/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	codeDigits      = 6
	codeSpace       = 1_000_000
	maxCodeAttempts = 64
)

// Registry maps room codes to live rooms. It is the only structure shared
// between unrelated rooms.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand

	settings Settings
	log      zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(settings Settings) *Registry {
	settings = settings.withDefaults()

	g := &Registry{
		rooms:    make(map[string]*Room),
		rng:      settings.Rand,
		settings: settings,
		log:      settings.Logger,
		stop:     make(chan struct{}),
	}

	if settings.SessionTimeout > 0 {
		go g.reaperLoop()
	}

	return g
}

func (g *Registry) Settings() Settings {
	return g.settings
}

// CreateRoom opens a room hosted by host under a fresh code and greets the
// host with ConnectedAsHost followed by a snapshot.
func (g *Registry) CreateRoom(host *Conn) (*Room, error) {
	g.mu.Lock()

	code := ""
	for range maxCodeAttempts {
		candidate := fmt.Sprintf("%0*d", codeDigits, g.rng.Intn(codeSpace))
		if _, taken := g.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		g.mu.Unlock()

		return nil, capacityError("No room codes available, try again later")
	}

	room := newRoom(code, host, g, rand.New(rand.NewSource(g.rng.Int63())))
	g.rooms[code] = room
	g.mu.Unlock()

	host.setRoom(room)
	go room.run()

	g.log.Info().Str("room", code).Str("host", host.ID.String()[:8]).Msg("created room")

	if err := room.welcomeHost(); err != nil {
		return nil, err
	}

	return room, nil
}

// normalizeCode trims a client-supplied code and restores leading zeros lost
// when the code was sent as a JSON number.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= codeDigits {
		return code
	}

	for _, c := range code {
		if c < '0' || c > '9' {
			return code
		}
	}

	return strings.Repeat("0", codeDigits-len(code)) + code
}

func (g *Registry) Lookup(code string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[code]

	return room, ok
}

// Remove frees code for reuse. It does not close the room.
func (g *Registry) Remove(code string) {
	g.mu.Lock()
	delete(g.rooms, code)
	g.mu.Unlock()
}

// release removes room only if code still points at it.
func (g *Registry) release(room *Room) {
	g.mu.Lock()
	if g.rooms[room.code] == room {
		delete(g.rooms, room.code)
	}
	g.mu.Unlock()
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.rooms)
}

// Reap closes every room with no activity since cutoff and returns how many
// were closed.
func (g *Registry) Reap(cutoff time.Time) int {
	var stale []*Room

	g.mu.Lock()
	for code, room := range g.rooms {
		if room.LastActive().Before(cutoff) {
			delete(g.rooms, code)
			stale = append(stale, room)
		}
	}
	g.mu.Unlock()

	for _, room := range stale {
		g.log.Info().Str("room", room.code).Msg("reaping idle room")
		go room.Close("session timed out")
	}

	return len(stale)
}

func (g *Registry) reaperLoop() {
	ticker := time.NewTicker(g.settings.SessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Reap(time.Now().Add(-g.settings.SessionTimeout))
		case <-g.stop:
			return
		}
	}
}

// Close stops the reaper and shuts down every room.
func (g *Registry) Close() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})

	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	for _, room := range rooms {
		room.Close("server shutting down")
	}
}
