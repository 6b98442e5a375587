package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/game"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})
}

const (
	// three runs and a king: deadwood 10
	aliceHand = "As 2s 3s 4h 5h 6h 7d 8d 9d Kc"
	// one run and junk: deadwood 51
	bobHand = "Ac 3c 4c 5c 6c Jh Qh Qd Ks Kd"
)

// riggedDeal deals first to seat 0 and second to seat 1, seat 0 plays
// first, then stock is drawn in order.
func riggedDeal(t *testing.T, first, second, stock string) []game.MatchOption {
	t.Helper()
	a, b := gin.MustParseCards(first), gin.MustParseCards(second)

	var order []gin.Card
	for i := range game.HandSize {
		order = append(order, a[i], b[i])
	}
	order = append(order, gin.MustParseCards(stock)...)
	for _, c := range gin.FullDeck() {
		if !slices.Contains(order, c) {
			order = append(order, c)
		}
	}
	require.Len(t, order, 52)
	slices.Reverse(order)

	return []game.MatchOption{
		game.WithStartingPlayer(0),
		game.WithDeckFactory(func(rng *rand.Rand) *gin.Deck {
			return gin.NewStackedDeck(rng, order)
		}),
	}
}

type testServer struct {
	*httptest.Server
	srv *Server
}

// newTestServer starts an HTTP test server. Extra store options are
// applied after the config-derived ones.
func newTestServer(t *testing.T, clock quartz.Clock, opts ...StoreOption) *testServer {
	t.Helper()
	srv := NewServer(DefaultServerConfig(), testLogger(), clock)
	for _, opt := range opts {
		opt(srv.store)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, srv: srv}
}

// do sends a JSON request and decodes the response into out when non-nil
func (ts *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "decoding %s %s", method, path)
	}
	return resp.StatusCode
}

// create starts a match and returns its id
func (ts *testServer) create(t *testing.T) string {
	t.Helper()
	seed := int64(42)
	var resp CreateMatchResponse
	status := ts.do(t, http.MethodPost, "/api/matches", CreateMatchRequest{Player1: "alice", Player2: "bob", Seed: &seed}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

type stateResponse struct {
	Card   gin.Card         `json:"card"`
	Result game.RoundResult `json:"result"`
	State  game.State       `json:"state"`
}
