package sticks

import "fmt"

// Actor identifies who made a move.
type Actor int

const (
	Human Actor = iota
	Opponent
)

// Names are the display names used in history entries.
var Names = map[Actor]string{
	Human:    "You",
	Opponent: "Computer",
}

func (a Actor) String() string {
	if name, ok := Names[a]; ok {
		return name
	}
	return "Unknown"
}

// Class is the styling class views use to tell the two actors apart.
func (a Actor) Class() string {
	if a == Opponent {
		return "computer"
	}
	return "player"
}

func (a Actor) MarshalText() ([]byte, error) {
	return []byte(a.Class()), nil
}

func (a *Actor) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*a = Human
	case "computer":
		*a = Opponent
	default:
		return fmt.Errorf("unknown actor %q", text)
	}
	return nil
}
