package game

import "github.com/lox/ginrummy/gin"

// PlayerState is one seat in a full State snapshot.
type PlayerState struct {
	Name     string     `json:"name"`
	Hand     []gin.Card `json:"hand"`
	Deadwood int        `json:"deadwood"`
}

// State is a read-only snapshot of the whole match, hands included.
type State struct {
	Round          int            `json:"round"`
	Phase          Phase          `json:"phase"`
	CurrentPlayer  int            `json:"currentPlayer"`
	StartingPlayer int            `json:"startingPlayer"`
	Players        [2]PlayerState `json:"players"`
	DiscardTop     *gin.Card      `json:"discardTop"`
	DiscardSize    int            `json:"discardSize"`
	DeckSize       int            `json:"deckSize"`
	Scores         [2]int         `json:"scores"`
	RoundsWon      [2]int         `json:"roundsWon"`
	FinalScores    [2]int         `json:"finalScores"`
	GameOver       bool           `json:"gameOver"`
	CanKnock       bool           `json:"canKnock"`
	LastResult     *RoundResult   `json:"lastResult,omitempty"`
}

// PlayerView is the snapshot one player is allowed to see: their own hand
// and only the size of the opponent's.
type PlayerView struct {
	Player           int          `json:"player"`
	Name             string       `json:"name"`
	Hand             []gin.Card   `json:"hand"`
	Deadwood         int          `json:"deadwood"`
	OpponentName     string       `json:"opponentName"`
	OpponentHandSize int          `json:"opponentHandSize"`
	DiscardTop       *gin.Card    `json:"discardTop"`
	DeckSize         int          `json:"deckSize"`
	Round            int          `json:"round"`
	Phase            Phase        `json:"phase"`
	CurrentPlayer    int          `json:"currentPlayer"`
	YourTurn         bool         `json:"yourTurn"`
	Scores           [2]int       `json:"scores"`
	RoundsWon        [2]int       `json:"roundsWon"`
	GameOver         bool         `json:"gameOver"`
	CanKnock         bool         `json:"canKnock"`
	LastResult       *RoundResult `json:"lastResult,omitempty"`
}

func (m *Match) discardTop() *gin.Card {
	if len(m.discard) == 0 {
		return nil
	}
	top := m.discard[len(m.discard)-1]
	return &top
}

func (m *Match) lastResultCopy() *RoundResult {
	if m.last == nil {
		return nil
	}
	r := *m.last
	return &r
}

// State returns a full snapshot of the match.
func (m *Match) State() State {
	s := State{
		Round:          m.round,
		Phase:          m.phase,
		CurrentPlayer:  m.current,
		StartingPlayer: m.starting,
		DiscardTop:     m.discardTop(),
		DiscardSize:    len(m.discard),
		DeckSize:       m.deck.Len(),
		Scores:         m.scores,
		RoundsWon:      m.roundsWon,
		FinalScores:    m.FinalScores(),
		GameOver:       m.over,
		CanKnock:       m.CanKnock(),
		LastResult:     m.lastResultCopy(),
	}
	for i, p := range m.players {
		s.Players[i] = PlayerState{
			Name:     p.Name,
			Hand:     p.Hand.Cards(),
			Deadwood: p.Deadwood(),
		}
	}
	return s
}

// View returns the snapshot visible to player idx. CanKnock is only set
// when it is that player's turn.
func (m *Match) View(idx int) PlayerView {
	me, opp := m.players[idx], m.players[1-idx]
	yourTurn := m.current == idx && m.phase != RoundOver && !m.over
	return PlayerView{
		Player:           idx,
		Name:             me.Name,
		Hand:             me.Hand.Cards(),
		Deadwood:         me.Deadwood(),
		OpponentName:     opp.Name,
		OpponentHandSize: opp.Hand.Len(),
		DiscardTop:       m.discardTop(),
		DeckSize:         m.deck.Len(),
		Round:            m.round,
		Phase:            m.phase,
		CurrentPlayer:    m.current,
		YourTurn:         yourTurn,
		Scores:           m.scores,
		RoundsWon:        m.roundsWon,
		GameOver:         m.over,
		CanKnock:         yourTurn && m.CanKnock(),
		LastResult:       m.lastResultCopy(),
	}
}

// PlayerIndex returns the seat of the named player, or -1.
func (m *Match) PlayerIndex(name string) int {
	for i, p := range m.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}
