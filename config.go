/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Seednode/radibate/games/debate"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type Config struct {
	bind               string
	discussionDuration time.Duration
	handshakeTimeout   time.Duration
	maxPlayers         int
	minPlayers         int
	playerTimeout      time.Duration
	port               int
	prefix             string
	profile            bool
	rateBurst          int
	rateLimit          float64
	rounds             int
	seed               int64
	sessionTimeout     time.Duration
	stanceDuration     time.Duration
	tlsCert            string
	tlsKey             string
	topics             string
	verbose            bool
	version            bool

	logger zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.minPlayers < 2 {
		return fmt.Errorf("invalid minimum player count (must be at least 2): %d", c.minPlayers)
	}
	if c.maxPlayers < c.minPlayers {
		return fmt.Errorf("maximum player count (%d) must not be below minimum (%d)", c.maxPlayers, c.minPlayers)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round count (must be at least 1): %d", c.rounds)
	}
	if c.stanceDuration <= 0 || c.discussionDuration <= 0 || c.handshakeTimeout <= 0 {
		return errors.New("--stance-duration, --discussion-duration and --handshake-timeout must be positive")
	}
	if c.playerTimeout < 0 || c.sessionTimeout < 0 {
		return errors.New("--player-timeout and --session-timeout must not be negative")
	}
	if c.rateLimit <= 0 || c.rateBurst < 1 {
		return errors.New("--rate-limit and --rate-burst must be positive")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// settings translates the command line into engine settings, loading the
// topic file if one was given.
func (c *Config) settings() (debate.Settings, error) {
	topics := debate.DefaultTopics()
	if c.topics != "" {
		loaded, err := debate.LoadTopics(c.topics)
		if err != nil {
			return debate.Settings{}, err
		}
		topics = loaded
	}

	seed := c.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	settings := debate.DefaultSettings()
	settings.MaxPlayers = c.maxPlayers
	settings.MinPlayers = c.minPlayers
	settings.Rounds = c.rounds
	settings.StanceDuration = c.stanceDuration
	settings.DiscussionDuration = c.discussionDuration
	settings.HandshakeTimeout = c.handshakeTimeout
	settings.IdleTimeout = c.playerTimeout
	settings.SessionTimeout = c.sessionTimeout
	settings.RateLimit = rate.Limit(c.rateLimit)
	settings.RateBurst = c.rateBurst
	settings.Topics = topics
	settings.Rand = rand.New(rand.NewSource(seed))
	settings.Logger = c.logger.With().Str("component", "debate").Logger()

	return settings, nil
}

func newCmd(cfg *Config) *cobra.Command {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RADIBATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "radibate",
		Short:         "Real-time backend for a debate party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.logger = newLogger(cfg)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: RADIBATE_BIND)")
	fs.DurationVar(&cfg.discussionDuration, "discussion-duration", debate.DefaultDiscussionDuration, "length of the public discussion stage (env: RADIBATE_DISCUSSION_DURATION)")
	fs.DurationVar(&cfg.handshakeTimeout, "handshake-timeout", debate.DefaultHandshakeTimeout, "time allowed for a client to send its greeting (env: RADIBATE_HANDSHAKE_TIMEOUT)")
	fs.IntVar(&cfg.maxPlayers, "max-players", debate.DefaultMaxPlayers, "maximum players per game (env: RADIBATE_MAX_PLAYERS)")
	fs.IntVar(&cfg.minPlayers, "min-players", debate.DefaultMinPlayers, "players required to start a game (env: RADIBATE_MIN_PLAYERS)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 2*time.Minute, "time before silent connections are dropped, 0 to disable (env: RADIBATE_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: RADIBATE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: RADIBATE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: RADIBATE_PROFILE)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", debate.DefaultRateBurst, "messages a client may send in a burst (env: RADIBATE_RATE_BURST)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", debate.DefaultRateLimit, "sustained messages per second allowed per client (env: RADIBATE_RATE_LIMIT)")
	fs.IntVar(&cfg.rounds, "rounds", debate.DefaultRounds, "debate rounds per game (env: RADIBATE_ROUNDS)")
	fs.Int64Var(&cfg.seed, "seed", 0, "random seed for room codes and debater selection, 0 for time-based (env: RADIBATE_SEED)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are ended, 0 to disable (env: RADIBATE_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.stanceDuration, "stance-duration", debate.DefaultStanceDuration, "length of the stance taking stage (env: RADIBATE_STANCE_DURATION)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: RADIBATE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: RADIBATE_TLS_KEY)")
	fs.StringVar(&cfg.topics, "topics", "", "file of debate questions, one per line (env: RADIBATE_TOPICS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: RADIBATE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: RADIBATE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("radibate v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
