package game

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/randutil"
)

// MatchOption configures a Match during creation.
type MatchOption func(*matchConfig)

// DeckFactory builds the deck for each round.
type DeckFactory func(rng *rand.Rand) *gin.Deck

type matchConfig struct {
	rng            *rand.Rand
	rules          Rules
	logger         *log.Logger
	events         EventBus
	newDeck        DeckFactory
	startingPlayer int
}

// WithRNG sets the random source used for shuffling and the first
// starting player.
func WithRNG(rng *rand.Rand) MatchOption {
	return func(c *matchConfig) {
		c.rng = rng
	}
}

// WithSeed is shorthand for WithRNG(randutil.New(seed)).
func WithSeed(seed int64) MatchOption {
	return func(c *matchConfig) {
		c.rng = randutil.New(seed)
	}
}

// WithRules overrides the default rule set.
func WithRules(rules Rules) MatchOption {
	return func(c *matchConfig) {
		c.rules = rules
	}
}

// WithLogger sets the logger. Matches log nothing by default.
func WithLogger(logger *log.Logger) MatchOption {
	return func(c *matchConfig) {
		c.logger = logger
	}
}

// WithEventBus publishes match events to bus instead of a private one.
func WithEventBus(bus EventBus) MatchOption {
	return func(c *matchConfig) {
		c.events = bus
	}
}

// WithDeckFactory replaces the shuffled 52-card deck, for stacked deals in
// tests. The factory must return all 52 cards.
func WithDeckFactory(f DeckFactory) MatchOption {
	return func(c *matchConfig) {
		c.newDeck = f
	}
}

// WithStartingPlayer fixes who is dealt to and plays first in round one.
func WithStartingPlayer(idx int) MatchOption {
	return func(c *matchConfig) {
		c.startingPlayer = idx
	}
}

func defaultConfig() *matchConfig {
	return &matchConfig{
		rules:          DefaultRules(),
		logger:         log.New(io.Discard),
		startingPlayer: -1,
	}
}
