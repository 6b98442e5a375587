package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coder/quartz"
	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/game"
	"github.com/lox/ginrummy/internal/matchid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := NewServer(DefaultServerConfig(), testLogger(), quartz.NewMock(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x", ErrMatchNotFound), http.StatusNotFound, "match_not_found"},
		{fmt.Errorf("%w: x", ErrBadRequest), http.StatusBadRequest, "bad_request"},
		{fmt.Errorf("knock: %w", gin.ErrCardNotInHand), http.StatusUnprocessableEntity, "card_not_in_hand"},
		{fmt.Errorf("draw: %w", gin.ErrEmptyDeck), http.StatusConflict, "empty_deck"},
		{fmt.Errorf("%w: x", game.ErrIllegalAction), http.StatusConflict, "illegal_action"},
		{fmt.Errorf("%w: x", game.ErrInvariantViolation), http.StatusInternalServerError, "invariant_violation"},
		{errors.New("other"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestCreateMatch(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t))

	seed := int64(7)
	var resp CreateMatchResponse
	status := ts.do(t, http.MethodPost, "/api/matches", CreateMatchRequest{Player1: "alice", Player2: "bob", Seed: &seed}, &resp)
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, matchid.Validate(resp.ID))
	assert.Equal(t, 1, resp.State.Round)
	assert.Equal(t, game.AwaitingDraw, resp.State.Phase)
	assert.Equal(t, "alice", resp.State.Players[0].Name)
	assert.Len(t, resp.State.Players[0].Hand, game.HandSize)
	assert.Len(t, resp.State.Players[1].Hand, game.HandSize)
	assert.Equal(t, 32, resp.State.DeckSize)
	assert.Equal(t, 1, ts.srv.Store().Len())

	var list []MatchSummary
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/matches", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)
	assert.Equal(t, [2]string{"alice", "bob"}, list[0].Players)
}

func TestCreateMatchRejectsBadInput(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t))

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"player1":`},
		{"unknown field", `{"player1":"a","player2":"b","colour":"red"}`},
		{"duplicate names", CreateMatchRequest{Player1: "alice", Player2: "alice"}},
		{"missing name", CreateMatchRequest{Player1: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp ErrorData
			status := ts.do(t, http.MethodPost, "/api/matches", tt.body, &errResp)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "bad_request", errResp.Code)
			assert.NotEmpty(t, errResp.Message)
		})
	}
	assert.Equal(t, 0, ts.srv.Store().Len())
}

func TestGetMatchViews(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t))
	id := ts.create(t)

	var full game.State
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/matches/"+id, nil, &full))
	assert.Len(t, full.Players[1].Hand, game.HandSize)

	var view game.PlayerView
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/matches/"+id+"?player=1", nil, &view))
	assert.Equal(t, 1, view.Player)
	assert.Equal(t, "bob", view.Name)
	assert.Equal(t, "alice", view.OpponentName)
	assert.Equal(t, full.Players[1].Hand, view.Hand)
	assert.Equal(t, game.HandSize, view.OpponentHandSize)

	var byName game.PlayerView
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/matches/"+id+"?player=bob", nil, &byName))
	assert.Equal(t, view, byName)

	var errResp ErrorData
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/matches/"+id+"?player=carol", nil, &errResp))
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/matches/"+id+"?player=2", nil, &errResp))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/matches/nope", nil, &errResp))
	assert.Equal(t, "match_not_found", errResp.Code)
}

func TestDrawDiscardFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t))
	id := ts.create(t)
	base := "/api/matches/" + id

	var errResp ErrorData
	// discard before drawing
	status := ts.do(t, http.MethodPost, base+"/discard", `{"card":"As"}`, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "illegal_action", errResp.Code)

	// empty body draws from the deck
	var drawn stateResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/draw", nil, &drawn))
	current := drawn.State.CurrentPlayer
	hand := drawn.State.Players[current].Hand
	require.Len(t, hand, game.HandSize+1)
	assert.Contains(t, hand, drawn.Card)
	assert.Equal(t, game.AwaitingDiscard, drawn.State.Phase)

	// a card held by the opponent
	foreign := drawn.State.Players[1-current].Hand[0]
	status = ts.do(t, http.MethodPost, base+"/discard", map[string]any{"card": foreign}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "card_not_in_hand", errResp.Code)

	status = ts.do(t, http.MethodPost, base+"/discard", `{"card":"Zz"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	status = ts.do(t, http.MethodPost, base+"/discard", `{}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	var after game.State
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/discard", map[string]any{"card": drawn.Card}, &after))
	assert.Equal(t, 1-current, after.CurrentPlayer)
	assert.Equal(t, game.AwaitingDraw, after.Phase)
	require.NotNil(t, after.DiscardTop)
	assert.Equal(t, drawn.Card, *after.DiscardTop)

	// recycling needs an empty deck
	status = ts.do(t, http.MethodPost, base+"/recycle", nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)

	// take it back from the discard pile
	var taken stateResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/draw?player=0", `{"fromDiscard":true}`, &taken))
	assert.Equal(t, drawn.Card, taken.Card)
}

func TestKnockAndNextRound(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t), WithMatchOptions(riggedDeal(t, aliceHand, bobHand, "2c")...))
	id := ts.create(t)
	base := "/api/matches/" + id

	var errResp ErrorData
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, base+"/next-round", nil, &errResp))

	var drawn stateResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/draw", `{"fromDiscard":false}`, &drawn))
	assert.Equal(t, gin.NewCard(gin.Two, gin.Clubs), drawn.Card)

	status := ts.do(t, http.MethodPost, base+"/big-gin", nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)

	var knocked stateResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/knock", `{"card":"Kc"}`, &knocked))
	assert.Equal(t, game.ResultKnock, knocked.Result.Kind)
	assert.Equal(t, 49, knocked.Result.Points)
	assert.Equal(t, 0, knocked.Result.Winner)
	assert.Equal(t, game.RoundOver, knocked.State.Phase)
	assert.Equal(t, [2]int{49, 0}, knocked.State.Scores)
	require.NotNil(t, knocked.State.LastResult)

	var next game.State
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/next-round", nil, &next))
	assert.Equal(t, 2, next.Round)
	assert.Equal(t, 1, next.CurrentPlayer)
	assert.Nil(t, next.LastResult)
}

func TestKnockRejectedOverLimit(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t), WithMatchOptions(riggedDeal(t, bobHand, aliceHand, "9h")...))
	id := ts.create(t)
	base := "/api/matches/" + id

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, base+"/draw", nil, nil))

	var errResp ErrorData
	status := ts.do(t, http.MethodPost, base+"/knock", `{"card":"Kd"}`, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "illegal_action", errResp.Code)

	status = ts.do(t, http.MethodPost, base+"/knock", `{"card":"2h"}`, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestDeleteMatch(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, quartz.NewMock(t))
	id := ts.create(t)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/matches/"+id, nil, nil))
	assert.Equal(t, 0, ts.srv.Store().Len())

	var errResp ErrorData
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/matches/"+id, nil, &errResp))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/matches/"+id+"/draw", nil, &errResp))
}
