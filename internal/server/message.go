package server

import (
	"encoding/json"
	"time"

	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/game"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// MessageTypeState carries the snapshot sent when a client connects
	MessageTypeState MessageType = "state"
	// MessageTypeClosed tells clients the match has been deleted or expired
	MessageTypeClosed MessageType = "match_closed"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the WebSocket envelope. Match events use the event type name
// and carry the snapshot taken right after the event.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// ErrorData is the body of every error response
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateMatchRequest starts a match between two named players
type CreateMatchRequest struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Seed    *int64 `json:"seed,omitempty"`
}

// CreateMatchResponse returns the new match id and its opening state
type CreateMatchResponse struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
}

// MatchSummary is one entry in the match listing
type MatchSummary struct {
	ID         string    `json:"id"`
	Players    [2]string `json:"players"`
	Round      int       `json:"round"`
	Scores     [2]int    `json:"scores"`
	GameOver   bool      `json:"gameOver"`
	Watchers   int       `json:"watchers"`
	LastActive time.Time `json:"lastActive"`
}

// DrawRequest selects the pile to draw from
type DrawRequest struct {
	FromDiscard bool `json:"fromDiscard"`
}

// CardRequest names the card to discard or knock with
type CardRequest struct {
	Card *gin.Card `json:"card"`
}

// DrawResponse reports the drawn card
type DrawResponse struct {
	Card  gin.Card `json:"card"`
	State any      `json:"state"`
}

// ResultResponse reports how a round ended
type ResultResponse struct {
	Result game.RoundResult `json:"result"`
	State  any              `json:"state"`
}
