package sticks

import "sync"

// EndGameNotifier shows the game-over modal and waits for its confirmation.
type EndGameNotifier struct {
	modal *Modal
	done  chan struct{}
	once  sync.Once
	emit  func(Effect)
}

func NewEndGameNotifier(emit func(Effect)) *EndGameNotifier {
	return &EndGameNotifier{
		done: make(chan struct{}),
		emit: emit,
	}
}

func (n *EndGameNotifier) Show(youWon, showDetails bool) {
	headline := "You lost the game"
	if youWon {
		headline = "You won the game"
	}
	n.modal = &Modal{
		Headline:    headline,
		YouWon:      youWon,
		ShowDetails: showDetails,
	}
	n.emit(Effect{Kind: EffectModal})
}

// Confirm accepts the modal. It is ignored until the modal is shown.
func (n *EndGameNotifier) Confirm() bool {
	if n.modal == nil {
		return false
	}
	n.once.Do(func() { close(n.done) })
	return true
}

func (n *EndGameNotifier) Modal() *Modal {
	if n.modal == nil {
		return nil
	}
	m := *n.modal
	return &m
}

// Done is closed once the modal has been confirmed.
func (n *EndGameNotifier) Done() <-chan struct{} {
	return n.done
}
