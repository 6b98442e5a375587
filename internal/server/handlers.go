package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/auth"
	"github.com/lox/ginrummy/internal/game"
)

const maxBodyBytes = 1 << 16

// ErrBadRequest marks malformed request bodies and parameters
var ErrBadRequest = errors.New("server: bad request")

// statusFor maps an error to an HTTP status and error code
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return http.StatusNotFound, "match_not_found"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrUnavailable):
		return http.StatusServiceUnavailable, "auth_unavailable"
	case errors.Is(err, gin.ErrCardNotInHand):
		return http.StatusUnprocessableEntity, "card_not_in_hand"
	case errors.Is(err, gin.ErrEmptyDeck):
		return http.StatusConflict, "empty_deck"
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusConflict, "illegal_action"
	case errors.Is(err, game.ErrInvariantViolation):
		return http.StatusInternalServerError, "invariant_violation"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "code", code, "error", err)
	}
	s.writeJSON(w, status, ErrorData{Code: code, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("Failed to write response", "error", err)
	}
}

// decode reads a JSON body into dst. An empty body is accepted when
// optional is set.
func decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// viewParam parses ?player=N or ?player=<name>; -1 means the full state.
func viewParam(r *http.Request, sess *Session) (int, error) {
	raw := r.URL.Query().Get("player")
	if raw == "" {
		return -1, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > 1 {
			return 0, fmt.Errorf("%w: player must be 0 or 1, got %q", ErrBadRequest, raw)
		}
		return n, nil
	}
	n := sess.playerIndex(raw)
	if n < 0 {
		return 0, fmt.Errorf("%w: no player named %q", ErrBadRequest, raw)
	}
	return n, nil
}

// session resolves the match id and view for a request
func (s *Server) session(r *http.Request) (*Session, int, error) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		return nil, 0, err
	}
	view, err := viewParam(r, sess)
	if err != nil {
		return nil, 0, err
	}
	return sess, view, nil
}

// act runs fn against the match and responds with whatever it builds
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(m *game.Match, view int) (any, error)) {
	sess, view, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var resp any
	err = sess.Do(func(m *game.Match) error {
		var err error
		resp, err = fn(m, view)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := decode(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.store.Create(req.Player1, req.Player2, req.Seed)
	if err != nil {
		if errors.Is(err, game.ErrIllegalAction) {
			err = fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		s.writeError(w, err)
		return
	}

	if id := auth.IdentityFrom(r.Context()); id != nil {
		s.logger.Info("Match created", "match", sess.ID, "by", id.Name)
	}

	var resp CreateMatchResponse
	_ = sess.Do(func(m *game.Match) error {
		resp = CreateMatchResponse{ID: sess.ID, State: m.State()}
		return nil
	})
	w.Header().Set("Location", "/api/matches/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		return snapshot(m, view), nil
	})
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req DrawRequest
	if err := decode(w, r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		card, err := m.DrawCard(req.FromDiscard)
		if err != nil {
			return nil, err
		}
		return DrawResponse{Card: card, State: snapshot(m, view)}, nil
	})
}

// decodeCard reads a CardRequest and rejects a missing or invalid card
func decodeCard(w http.ResponseWriter, r *http.Request) (gin.Card, error) {
	var req CardRequest
	if err := decode(w, r, &req, false); err != nil {
		return gin.Card{}, err
	}
	if req.Card == nil {
		return gin.Card{}, fmt.Errorf("%w: card is required", ErrBadRequest)
	}
	if !req.Card.Valid() {
		return gin.Card{}, fmt.Errorf("%w: invalid card", ErrBadRequest)
	}
	return *req.Card, nil
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	card, err := decodeCard(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		if err := m.DiscardCard(card); err != nil {
			return nil, err
		}
		return snapshot(m, view), nil
	})
}

func (s *Server) handleKnock(w http.ResponseWriter, r *http.Request) {
	card, err := decodeCard(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		result, err := m.Knock(card)
		if err != nil {
			return nil, err
		}
		return ResultResponse{Result: result, State: snapshot(m, view)}, nil
	})
}

func (s *Server) handleBigGin(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		result, err := m.DeclareBigGin()
		if err != nil {
			return nil, err
		}
		return ResultResponse{Result: result, State: snapshot(m, view)}, nil
	})
}

func (s *Server) handleRecycle(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		if err := m.RecycleDiscards(); err != nil {
			return nil, err
		}
		return snapshot(m, view), nil
	})
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(m *game.Match, view int) (any, error) {
		if err := m.NextRound(); err != nil {
			return nil, err
		}
		return snapshot(m, view), nil
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, view, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, view, s.logger.With("match", sess.ID))
	sess.attach(c)
	go c.writePump()
	go func() {
		c.readPump()
		sess.detach(c)
	}()
}
