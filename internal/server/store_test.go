package server

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/ginrummy/internal/game"
	"github.com/lox/ginrummy/internal/matchid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateGetDelete(t *testing.T) {
	t.Parallel()
	store := NewStore(WithClock(quartz.NewMock(t)), WithLogger(testLogger()))

	sess, err := store.Create("alice", "bob", nil)
	require.NoError(t, err)
	require.NoError(t, matchid.Validate(sess.ID))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	got, err = store.Get(strings.ToUpper(sess.ID))
	require.NoError(t, err, "ids are case-insensitive")
	assert.Same(t, sess, got)

	require.NoError(t, store.Delete(sess.ID))
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.ErrorIs(t, store.Delete(sess.ID), ErrMatchNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStoreCreateRejectsBadPlayers(t *testing.T) {
	t.Parallel()
	store := NewStore(WithClock(quartz.NewMock(t)))

	_, err := store.Create("alice", "alice", nil)
	assert.ErrorIs(t, err, game.ErrIllegalAction)
	assert.Equal(t, 0, store.Len())
}

func TestStoreUsesRulesAndSeed(t *testing.T) {
	t.Parallel()
	rules := game.DefaultRules()
	rules.MatchTarget = 250
	store := NewStore(WithClock(quartz.NewMock(t)), WithRules(rules))

	seed := int64(99)
	a, err := store.Create("alice", "bob", &seed)
	require.NoError(t, err)
	b, err := store.Create("alice", "bob", &seed)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	var stateA, stateB game.State
	require.NoError(t, a.Do(func(m *game.Match) error {
		assert.Equal(t, 250, m.Rules().MatchTarget)
		stateA = m.State()
		return nil
	}))
	require.NoError(t, b.Do(func(m *game.Match) error {
		stateB = m.State()
		return nil
	}))
	assert.Equal(t, stateA, stateB)
}

func TestStoreDeterministicIDs(t *testing.T) {
	t.Parallel()
	gen := matchid.NewGenerator(bytes.NewReader(bytes.Repeat([]byte{0x42}, 64)))
	store := NewStore(WithClock(quartz.NewMock(t)), WithIDGenerator(gen))

	sess, err := store.Create("alice", "bob", nil)
	require.NoError(t, err)
	require.NoError(t, matchid.Validate(sess.ID))
}

func TestStoreList(t *testing.T) {
	t.Parallel()
	store := NewStore(WithClock(quartz.NewMock(t)))

	first, err := store.Create("alice", "bob", nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := store.Create("carol", "dave", nil)
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, [2]string{"carol", "dave"}, list[1].Players)
	assert.Equal(t, 1, list[1].Round)
}

func TestStoreReapIdleMatches(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	store := NewStore(WithClock(mockClock), WithIdleTimeout(2*time.Minute), WithLogger(testLogger()))

	idle, err := store.Create("alice", "bob", nil)
	require.NoError(t, err)
	busy, err := store.Create("carol", "dave", nil)
	require.NoError(t, err)

	reaper := store.StartReaper(ctx)

	// first tick: nothing has been idle long enough
	mockClock.Advance(time.Minute).MustWait(ctx)
	assert.Equal(t, 2, store.Len())

	require.NoError(t, busy.Do(func(m *game.Match) error {
		_, err := m.DrawCard(false)
		return err
	}))

	// second tick: idle has been untouched for two minutes
	mockClock.Advance(time.Minute).MustWait(ctx)
	assert.Equal(t, 1, store.Len())
	_, err = store.Get(idle.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	_, err = store.Get(busy.ID)
	assert.NoError(t, err)

	// busy was touched a minute in, so the next tick expires it
	mockClock.Advance(time.Minute).MustWait(ctx)
	assert.Equal(t, 0, store.Len())

	cancel()
	if err := reaper.Wait(); err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestSessionDoTouchesActivity(t *testing.T) {
	t.Parallel()
	mockClock := quartz.NewMock(t)
	store := NewStore(WithClock(mockClock))

	sess, err := store.Create("alice", "bob", nil)
	require.NoError(t, err)
	created := sess.LastActive()

	mockClock.Advance(10 * time.Second)
	require.NoError(t, sess.Do(func(*game.Match) error { return nil }))
	assert.Equal(t, created.Add(10*time.Second), sess.LastActive())
	assert.Equal(t, created, sess.Created)
}
