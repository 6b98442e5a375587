package game

import "github.com/lox/ginrummy/gin"

// Player represents a seated player and their hand
type Player struct {
	Name string
	Hand *gin.Hand
}

// NewPlayer creates a player with an empty hand
func NewPlayer(name string) *Player {
	return &Player{Name: name, Hand: gin.NewHand()}
}

// Deadwood returns the player's current minimum deadwood.
func (p *Player) Deadwood() int {
	return p.Hand.Deadwood()
}
