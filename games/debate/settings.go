/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxPlayers         = 8
	DefaultMinPlayers         = 3
	DefaultRounds             = 3
	DefaultStanceDuration     = 60 * time.Second
	DefaultDiscussionDuration = 70 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultSendQueue          = 32
	DefaultRateLimit          = 10
	DefaultRateBurst          = 20
)

// Settings configures a Registry and every room it creates. Zero values are
// replaced with the package defaults.
type Settings struct {
	MaxPlayers         int
	MinPlayers         int
	Rounds             int
	StanceDuration     time.Duration
	DiscussionDuration time.Duration

	// HandshakeTimeout bounds the wait for the HELLO GAME frame.
	HandshakeTimeout time.Duration
	// IdleTimeout drops connections that send nothing (not even a pong) for
	// this long. Zero disables keepalive.
	IdleTimeout time.Duration
	// SessionTimeout reaps rooms idle for this long. Zero disables reaping.
	SessionTimeout time.Duration

	SendQueue int
	RateLimit rate.Limit
	RateBurst int

	Topics TopicSource
	Rand   *rand.Rand
	Logger zerolog.Logger
}

// DefaultSettings returns Settings with every tunable at its default.
func DefaultSettings() Settings {
	return Settings{}.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.MinPlayers <= 0 {
		s.MinPlayers = DefaultMinPlayers
	}
	if s.Rounds <= 0 {
		s.Rounds = DefaultRounds
	}
	if s.StanceDuration <= 0 {
		s.StanceDuration = DefaultStanceDuration
	}
	if s.DiscussionDuration <= 0 {
		s.DiscussionDuration = DefaultDiscussionDuration
	}
	if s.HandshakeTimeout <= 0 {
		s.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if s.SendQueue <= 0 {
		s.SendQueue = DefaultSendQueue
	}
	if s.RateLimit <= 0 {
		s.RateLimit = DefaultRateLimit
	}
	if s.RateBurst <= 0 {
		s.RateBurst = DefaultRateBurst
	}
	if s.Topics == nil {
		s.Topics = DefaultTopics()
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return s
}
