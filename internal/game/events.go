package game

import (
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/lox/ginrummy/gin"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeCardDrawn    EventType = "card_drawn"
	EventTypeCardDiscard  EventType = "card_discarded"
	EventTypeDeckRecycled EventType = "deck_recycled"
	EventTypeRoundEnd     EventType = "round_end"
	EventTypeMatchEnd     EventType = "match_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a match
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartEvent is published after a round has been dealt
type RoundStartEvent struct {
	Round          int
	StartingPlayer int
	timestamp      time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// CardDrawnEvent is published when a player draws. Card is only meaningful
// to observers allowed to see it when FromDiscard is false.
type CardDrawnEvent struct {
	Player      int
	Card        gin.Card
	FromDiscard bool
	timestamp   time.Time
}

func (e CardDrawnEvent) EventType() EventType { return EventTypeCardDrawn }
func (e CardDrawnEvent) Timestamp() time.Time { return e.timestamp }

// CardDiscardedEvent is published when a card lands on the discard stack,
// including the discard that accompanies a knock
type CardDiscardedEvent struct {
	Player    int
	Card      gin.Card
	Knock     bool
	timestamp time.Time
}

func (e CardDiscardedEvent) EventType() EventType { return EventTypeCardDiscard }
func (e CardDiscardedEvent) Timestamp() time.Time { return e.timestamp }

// DeckRecycledEvent is published when the discard stack is shuffled back
// into the deck
type DeckRecycledEvent struct {
	Cards     int
	timestamp time.Time
}

func (e DeckRecycledEvent) EventType() EventType { return EventTypeDeckRecycled }
func (e DeckRecycledEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published when a knock, gin or big gin resolves a round
type RoundEndEvent struct {
	Round     int
	Result    RoundResult
	Scores    [2]int
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// MatchEndEvent is published once a player reaches the match target
type MatchEndEvent struct {
	Winner      int
	FinalScores [2]int
	timestamp   time.Time
}

func (e MatchEndEvent) EventType() EventType { return EventTypeMatchEnd }
func (e MatchEndEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber. Func values are
// not comparable: Unsubscribe leaves them registered. Use a pointer type
// for subscribers that must be removed.
type EventSubscriberFunc func(event GameEvent)

func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory event bus. Subscribers are called
// synchronously on the publishing goroutine.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Subscribers of an
// uncomparable type, such as EventSubscriberFunc, are never matched.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if t := reflect.TypeOf(subscriber); t == nil || !t.Comparable() {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if t := reflect.TypeOf(sub); t != nil && t.Comparable() && sub == subscriber {
			bus.subscribers = slices.Delete(bus.subscribers, i, i+1)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subscribers := slices.Clone(bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subscribers {
		subscriber.OnEvent(event)
	}
}
