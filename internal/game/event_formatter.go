package game

import (
	"fmt"
	"strings"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowDrawnCards bool // Reveal cards drawn from the deck (for spectators and logs)
	Perspective    int  // Seat whose own deck draws are always shown; -1 for none
}

// EventFormatter provides centralized formatting for match events
type EventFormatter struct {
	names [2]string
	opts  FormattingOptions
}

// NewEventFormatter creates a formatter that labels seats with names
func NewEventFormatter(names [2]string, opts FormattingOptions) *EventFormatter {
	return &EventFormatter{names: names, opts: opts}
}

func (ef *EventFormatter) name(idx int) string {
	if idx < 0 || idx > 1 {
		return "nobody"
	}
	return ef.names[idx]
}

// FormatEvent renders any match event as a single line. Unknown events
// format as their type name.
func (ef *EventFormatter) FormatEvent(event GameEvent) string {
	switch e := event.(type) {
	case RoundStartEvent:
		return fmt.Sprintf("Round %d dealt, %s to play", e.Round, ef.name(e.StartingPlayer))
	case CardDrawnEvent:
		return ef.FormatDraw(e)
	case CardDiscardedEvent:
		if e.Knock {
			return fmt.Sprintf("%s: knocks, discarding %s", ef.name(e.Player), e.Card)
		}
		return fmt.Sprintf("%s: discards %s", ef.name(e.Player), e.Card)
	case DeckRecycledEvent:
		return fmt.Sprintf("Discard stack recycled into the deck (%d cards)", e.Cards)
	case RoundEndEvent:
		return ef.FormatRoundResult(e.Result)
	case MatchEndEvent:
		if e.Winner < 0 {
			return fmt.Sprintf("Match drawn %d-%d", e.FinalScores[0], e.FinalScores[1])
		}
		return fmt.Sprintf("%s wins the match %d-%d", ef.name(e.Winner), e.FinalScores[e.Winner], e.FinalScores[1-e.Winner])
	default:
		return event.EventType().String()
	}
}

// FormatDraw formats a draw. Deck draws are hidden unless the options allow
// the viewer to see them.
func (ef *EventFormatter) FormatDraw(e CardDrawnEvent) string {
	who := ef.name(e.Player)
	if e.FromDiscard {
		return fmt.Sprintf("%s: takes %s from the discard pile", who, e.Card)
	}
	if ef.opts.ShowDrawnCards || ef.opts.Perspective == e.Player {
		return fmt.Sprintf("%s: draws %s", who, e.Card)
	}
	return fmt.Sprintf("%s: draws from the deck", who)
}

// FormatRoundResult summarises how a round was won
func (ef *EventFormatter) FormatRoundResult(r RoundResult) string {
	var sb strings.Builder
	knocker := ef.name(r.Knocker)
	switch r.Kind {
	case ResultBigGin:
		fmt.Fprintf(&sb, "%s: big gin!", knocker)
	case ResultGin:
		fmt.Fprintf(&sb, "%s: gin!", knocker)
	default:
		fmt.Fprintf(&sb, "%s knocks with %d deadwood against %d", knocker, r.KnockerDeadwood, r.OpponentDeadwood)
		if r.Undercut {
			sb.WriteString(", undercut")
		}
	}
	fmt.Fprintf(&sb, " - %s scores %d", ef.name(r.Winner), r.Points)
	return sb.String()
}
