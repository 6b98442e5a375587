package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/ginrummy/internal/game"
	"github.com/lox/ginrummy/internal/matchid"
)

// ErrMatchNotFound is returned for unknown or expired match ids
var ErrMatchNotFound = errors.New("server: match not found")

// Session is one match and the WebSocket clients watching it. All match
// calls go through Do, which serialises them.
type Session struct {
	ID      string
	Created time.Time

	mu         sync.Mutex
	match      *game.Match
	lastActive time.Time
	clock      quartz.Clock
	clients    *hub
}

// Do runs fn with exclusive access to the match and marks the session
// active. Events published by fn are broadcast before Do returns.
func (s *Session) Do(fn func(m *game.Match) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.clock.Now()
	return fn(s.match)
}

// OnEvent broadcasts a snapshot to connected clients. It runs on the
// goroutine holding the session lock.
func (s *Session) OnEvent(event game.GameEvent) {
	if s.match == nil {
		return
	}
	s.clients.broadcast(MessageType(event.EventType()), s.match)
}

// LastActive returns when the match was last touched.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) attach(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients.add(c)
	s.clients.send(c, MessageTypeState, s.match)
}

// playerIndex returns the seat of the named player, or -1
func (s *Session) playerIndex(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.PlayerIndex(name)
}

func (s *Session) detach(c *client) {
	s.clients.remove(c)
}

func (s *Session) summary() MatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.match.State()
	return MatchSummary{
		ID:         s.ID,
		Players:    [2]string{st.Players[0].Name, st.Players[1].Name},
		Round:      st.Round,
		Scores:     st.Scores,
		GameOver:   st.GameOver,
		Watchers:   s.clients.len(),
		LastActive: s.lastActive,
	}
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock sets the clock used for activity tracking and the reaper
func WithClock(clock quartz.Clock) StoreOption {
	return func(s *Store) { s.clock = clock }
}

// WithIdleTimeout sets how long an untouched match survives
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTimeout = d }
}

// WithRules sets the rules for new matches
func WithRules(rules game.Rules) StoreOption {
	return func(s *Store) { s.rules = rules }
}

// WithIDGenerator sets the match id source
func WithIDGenerator(g *matchid.Generator) StoreOption {
	return func(s *Store) { s.ids = g }
}

// WithMatchOptions appends options to every match the store creates
func WithMatchOptions(opts ...game.MatchOption) StoreOption {
	return func(s *Store) { s.matchOpts = append(s.matchOpts, opts...) }
}

// WithLogger sets the store logger
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// Store holds live matches keyed by id
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	clock       quartz.Clock
	idleTimeout time.Duration
	rules       game.Rules
	ids         *matchid.Generator
	matchOpts   []game.MatchOption
	logger      *log.Logger
}

// NewStore creates an empty store
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions:    make(map[string]*Session),
		clock:       quartz.NewReal(),
		idleTimeout: 30 * time.Minute,
		rules:       game.DefaultRules(),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("store")
	return s
}

// Create starts a match and registers it under a fresh id. A nil seed
// shuffles from the clock.
func (s *Store) Create(player1, player2 string, seed *int64) (*Session, error) {
	id := s.newID()
	now := s.clock.Now()
	sess := &Session{
		ID:         id,
		Created:    now,
		lastActive: now,
		clock:      s.clock,
		clients:    newHub(s.logger.With("match", id)),
	}

	bus := game.NewEventBus()
	bus.Subscribe(sess)
	opts := []game.MatchOption{
		game.WithRules(s.rules),
		game.WithEventBus(bus),
		game.WithLogger(s.logger.With("match", id)),
	}
	if seed != nil {
		opts = append(opts, game.WithSeed(*seed))
	}
	opts = append(opts, s.matchOpts...)

	m, err := game.NewMatch(player1, player2, opts...)
	if err != nil {
		return nil, err
	}
	sess.match = m

	s.mu.Lock()
	s.sessions[id] = sess
	total := len(s.sessions)
	s.mu.Unlock()

	s.logger.Info("Match created", "match", id, "player1", player1, "player2", player2, "total", total)
	return sess, nil
}

func (s *Store) newID() string {
	if s.ids == nil {
		return matchid.Generate()
	}
	return s.ids.Generate()
}

// canonicalID returns the stored form of a client-supplied id
func canonicalID(id string) (string, error) {
	u, err := matchid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return matchid.Encode(u), nil
}

// Get returns the session for id. Ids are matched case-insensitively.
func (s *Store) Get(id string) (*Session, error) {
	key, err := canonicalID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return sess, nil
}

// Delete removes a match and disconnects its clients
func (s *Store) Delete(id string) error {
	key, err := canonicalID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	sess.clients.closeAll()
	s.logger.Info("Match deleted", "match", key)
	return nil
}

// Len returns the number of live matches
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// List returns a summary of every live match, ordered by id (and so by
// creation time).
func (s *Store) List() []MatchSummary {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	summaries := make([]MatchSummary, len(sessions))
	for i, sess := range sessions {
		summaries[i] = sess.summary()
	}
	slices.SortFunc(summaries, func(a, b MatchSummary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return summaries
}

// Reap removes matches idle for at least the idle timeout and returns how
// many were removed.
func (s *Store) Reap() int {
	now := s.clock.Now()

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActive()) >= s.idleTimeout {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.clients.closeAll()
		s.logger.Info("Match expired", "match", sess.ID, "idle", now.Sub(sess.LastActive()))
	}
	if len(expired) > 0 {
		s.logger.Debug("Reaped idle matches", "removed", len(expired), "remaining", remaining)
	}
	return len(expired)
}

// StartReaper runs Reap every half idle timeout until ctx is cancelled.
// The ticker is registered before StartReaper returns.
func (s *Store) StartReaper(ctx context.Context) quartz.Waiter {
	interval := max(s.idleTimeout/2, time.Second)
	return s.clock.TickerFunc(ctx, interval, func() error {
		s.Reap()
		return nil
	}, "reaper")
}

// Close disconnects every client of every match
func (s *Store) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		sess.clients.closeAll()
	}
}
