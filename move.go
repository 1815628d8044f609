package sticks

import (
	"fmt"
	"strings"
	"text/template"
)

const (
	MinTake = 1
	MaxTake = 3
)

// Move is a single action of removing sticks from the pile.
type Move struct {
	Actor  Actor `json:"actor"`
	Amount int   `json:"amount"`
}

func (m Move) Validate() error {
	if m.Amount < MinTake || m.Amount > MaxTake {
		return fmt.Errorf("number of sticks to take must be between %d and %d, got %d", MinTake, MaxTake, m.Amount)
	}
	return nil
}

// HistoryEntry is a recorded move together with the pile size after it.
type HistoryEntry struct {
	Move  Move `json:"move"`
	Total int  `json:"total"`
}

type entryParams struct {
	Actor  string
	Amount int
	Suffix string
	Total  int
}

var entryTemplate = template.Must(template.New("entry").Parse(
	"{{.Actor}} took {{.Amount}} stick{{.Suffix}}. The pile now has {{.Total}}"))

// Text renders the entry as shown in the history feed.
func (e HistoryEntry) Text() string {
	p := entryParams{
		Actor:  e.Move.Actor.String(),
		Amount: e.Move.Amount,
		Total:  e.Total,
	}
	if e.Move.Amount > 1 {
		p.Suffix = "s"
	}
	var b strings.Builder
	// the template only formats typed fields, it cannot fail on a strings.Builder
	_ = entryTemplate.Execute(&b, p)
	return b.String()
}

func (e HistoryEntry) Class() string {
	return e.Move.Actor.Class()
}

// TurnOutcome is the opponent's answer to a submitted human move.
type TurnOutcome struct {
	Terminal     bool   `json:"terminal"`
	OpponentMove *Move  `json:"opponentMove,omitempty"`
	Winner       *Actor `json:"winner,omitempty"`
}

// HumanWon reports whether the outcome ends the game in the human's favour.
func (o TurnOutcome) HumanWon() bool {
	return o.Terminal && o.Winner != nil && *o.Winner == Human
}
