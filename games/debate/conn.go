/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Socket is the transport under a connection. Read returns one frame.
type Socket interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Ping() error
	SetReadDeadline(t time.Time) error
	Close(reason string)
}

// Conn is the per-connection handle. Rooms and players hold a reference to
// it, but only the gateway that accepted it closes it.
type Conn struct {
	ID uuid.UUID

	socket  Socket
	send    chan []byte
	limiter *rate.Limiter
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	room        *Room
	closeReason string
}

func newConn(ctx context.Context, socket Socket, settings Settings) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.New()

	return &Conn{
		ID:      id,
		socket:  socket,
		send:    make(chan []byte, settings.SendQueue),
		limiter: rate.NewLimiter(settings.RateLimit, settings.RateBurst),
		log:     settings.Logger.With().Str("conn", id.String()[:8]).Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Send queues m for delivery without blocking. A client whose queue is full
// is disconnected rather than allowed to stall the sender.
func (c *Conn) Send(m Outbound) error {
	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", m.Type, err)
	}

	select {
	case <-c.ctx.Done():
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.Close("too slow")

		return ErrSlowClient
	}
}

// Close ends the connection. Messages already queued are flushed before the
// socket is closed with reason.
func (c *Conn) Close(reason string) {
	c.mu.Lock()
	if c.closeReason == "" {
		c.closeReason = reason
	}
	c.mu.Unlock()

	c.cancel()
}

func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Room returns the room this connection has created or joined, if any.
func (c *Conn) Room() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.room
}

func (c *Conn) setRoom(r *Room) {
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
}

func (c *Conn) reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeReason
}

func (c *Conn) writePump(pingInterval time.Duration) {
	var ping <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case data := <-c.send:
			if err := c.socket.Write(data); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				c.cancel()
				c.socket.Close("")

				return
			}

		case <-ping:
			if err := c.socket.Ping(); err != nil {
				c.log.Debug().Err(err).Msg("ping failed")
				c.cancel()
				c.socket.Close("")

				return
			}

		case <-c.ctx.Done():
			c.flush()
			c.socket.Close(c.reason())

			return
		}
	}
}

func (c *Conn) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.socket.Write(data); err != nil {
				return
			}
		default:
			return
		}
	}
}
