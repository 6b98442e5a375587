package game

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/randutil"
)

// Match is a two-player gin rummy match: a sequence of rounds played until
// one player's cumulative score reaches the match target.
//
// A Match is driven by one actor at a time and is not safe for concurrent
// use; callers that share it must serialise access.
type Match struct {
	players   [2]*Player
	deck      *gin.Deck
	discard   []gin.Card
	current   int
	starting  int
	phase     Phase
	round     int
	scores    [2]int
	roundsWon [2]int
	over      bool
	last      *RoundResult

	rules   Rules
	rng     *rand.Rand
	newDeck DeckFactory
	logger  *log.Logger
	events  EventBus
}

// NewMatch seats two players and deals the first round. Player names must
// be non-empty and distinct.
//
//	m, err := game.NewMatch("alice", "bob", game.WithSeed(42))
//	card, err := m.DrawCard(false)
//	err = m.DiscardCard(card)
func NewMatch(player1, player2 string, opts ...MatchOption) (*Match, error) {
	player1 = strings.TrimSpace(player1)
	player2 = strings.TrimSpace(player2)
	if player1 == "" || player2 == "" {
		return nil, fmt.Errorf("%w: player names must not be empty", ErrIllegalAction)
	}
	if player1 == player2 {
		return nil, fmt.Errorf("%w: player names must differ (%q)", ErrIllegalAction, player1)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if cfg.rng == nil {
		seed := randutil.TimeSeed()
		cfg.logger.Debug("Seeding match from clock", "seed", seed)
		cfg.rng = randutil.New(seed)
	}
	if cfg.events == nil {
		cfg.events = NewEventBus()
	}

	starting := cfg.startingPlayer
	if starting < 0 || starting > 1 {
		starting = cfg.rng.IntN(2)
	}

	m := &Match{
		players:  [2]*Player{NewPlayer(player1), NewPlayer(player2)},
		starting: starting,
		rules:    cfg.rules,
		rng:      cfg.rng,
		newDeck:  cfg.newDeck,
		logger:   cfg.logger.WithPrefix("match"),
		events:   cfg.events,
	}

	if err := m.deal(); err != nil {
		return nil, err
	}
	return m, nil
}

// deal shuffles the full deck, clears hands and the discard stack, and deals
// HandSize cards to each player alternately from the starting player.
func (m *Match) deal() error {
	switch {
	case m.newDeck != nil:
		m.deck = m.newDeck(m.rng)
	case m.deck != nil:
		m.deck.Reset()
	default:
		m.deck = gin.NewDeck(m.rng)
	}
	m.discard = nil
	for _, p := range m.players {
		p.Hand.Clear()
	}

	for i := 0; i < HandSize; i++ {
		for _, idx := range [2]int{m.starting, 1 - m.starting} {
			card, err := m.deck.Draw()
			if err != nil {
				return fmt.Errorf("%w: deck ran out while dealing: %v", ErrInvariantViolation, err)
			}
			m.players[idx].Hand.Add(card)
		}
	}

	m.current = m.starting
	m.phase = AwaitingDraw
	m.round++
	m.last = nil

	if err := m.checkInvariant(); err != nil {
		return err
	}

	m.logger.Info("Dealt round",
		"round", m.round,
		"starting", m.players[m.starting].Name,
		"deck", m.deck.Len())
	m.events.Publish(RoundStartEvent{Round: m.round, StartingPlayer: m.starting, timestamp: time.Now()})
	return nil
}

// ResetRound abandons the current round without scoring, alternates the
// starting player and redeals. It is rejected once the match is over.
func (m *Match) ResetRound() error {
	if m.over {
		return fmt.Errorf("%w: match is over", ErrIllegalAction)
	}
	m.starting = 1 - m.starting
	return m.deal()
}

// NextRound deals the next round after the current one has been resolved.
func (m *Match) NextRound() error {
	if m.phase != RoundOver {
		return fmt.Errorf("%w: round %d is still in progress", ErrIllegalAction, m.round)
	}
	return m.ResetRound()
}

// finishRound records a resolved round and ends the match if a player has
// reached the target.
func (m *Match) finishRound(result RoundResult) {
	m.scores[result.Winner] += result.Points
	m.roundsWon[result.Winner]++
	m.phase = RoundOver
	m.last = &result

	m.logger.Info("Round over",
		"round", m.round,
		"kind", result.Kind,
		"winner", m.players[result.Winner].Name,
		"points", result.Points,
		"undercut", result.Undercut,
		"scores", m.scores)
	m.events.Publish(RoundEndEvent{Round: m.round, Result: result, Scores: m.scores, timestamp: time.Now()})

	if m.scores[0] >= m.rules.MatchTarget || m.scores[1] >= m.rules.MatchTarget {
		m.over = true
		final := m.FinalScores()
		winner := m.Winner()
		m.logger.Info("Match over", "winner", winner, "final", final)
		m.events.Publish(MatchEndEvent{Winner: winner, FinalScores: final, timestamp: time.Now()})
	}
}

// checkInvariant verifies that deck, discard stack and hands together hold
// each of the 52 cards exactly once.
func (m *Match) checkInvariant() error {
	var seen uint64
	count := 0
	add := func(cards []gin.Card) bool {
		for _, c := range cards {
			bit := uint64(1) << c.Index()
			if !c.Valid() || seen&bit != 0 {
				return false
			}
			seen |= bit
			count++
		}
		return true
	}

	ok := add(m.deck.Cards()) && add(m.discard)
	for _, p := range m.players {
		ok = ok && add(p.Hand.Cards())
	}
	const full = uint64(1)<<52 - 1
	if !ok || count != 52 || seen != full {
		var missing []gin.Card
		for rest := full &^ seen; rest != 0; rest &= rest - 1 {
			missing = append(missing, gin.CardFromIndex(bits.TrailingZeros64(rest)))
		}
		m.logger.Error("Card accounting broken",
			"deck", m.deck.Len(),
			"discard", len(m.discard),
			"hand0", m.players[0].Hand.Len(),
			"hand1", m.players[1].Hand.Len(),
			"distinct", bits.OnesCount64(seen),
			"missing", gin.FormatCards(missing))
		return fmt.Errorf("%w: %d cards accounted, %d distinct, missing [%s]",
			ErrInvariantViolation, count, bits.OnesCount64(seen), gin.FormatCards(missing))
	}
	return nil
}

// Events returns the bus match events are published on.
func (m *Match) Events() EventBus {
	return m.events
}

// Rules returns the match rule set.
func (m *Match) Rules() Rules {
	return m.rules
}

// Phase returns the current state machine phase.
func (m *Match) Phase() Phase {
	return m.phase
}

// CurrentPlayer returns the index of the player to act.
func (m *Match) CurrentPlayer() int {
	return m.current
}

// Round returns the 1-based round number.
func (m *Match) Round() int {
	return m.round
}

// Player returns the player at idx (0 or 1).
func (m *Match) Player(idx int) *Player {
	return m.players[idx]
}

// Scores returns cumulative round scores, without round-win bonuses.
func (m *Match) Scores() [2]int {
	return m.scores
}

// RoundsWon returns the number of rounds each player has won.
func (m *Match) RoundsWon() [2]int {
	return m.roundsWon
}

// IsOver reports whether a player has reached the match target.
func (m *Match) IsOver() bool {
	return m.over
}

// LastResult returns the result of the most recent round in this deal, or
// nil while the round is in progress.
func (m *Match) LastResult() *RoundResult {
	return m.last
}

// FinalScores returns cumulative scores; once the match is over each
// player's round-win bonus is included.
func (m *Match) FinalScores() [2]int {
	final := m.scores
	if m.over {
		for i := range final {
			final[i] += m.roundsWon[i] * m.rules.RoundWinBonus
		}
	}
	return final
}

// Winner returns the index of the player with the higher final score, or -1
// while the match is in progress or tied.
func (m *Match) Winner() int {
	if !m.over {
		return -1
	}
	final := m.FinalScores()
	switch {
	case final[0] > final[1]:
		return 0
	case final[1] > final[0]:
		return 1
	default:
		return -1
	}
}
