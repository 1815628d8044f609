// Package tui renders the game in a terminal and turns keys and clicks into
// game input.
package tui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"
	sticks "github.com/tkahng/stickpile"
)

type actionKind int

const (
	actionNone actionKind = iota
	actionPress
	actionConfirm
	actionReload
	actionQuit
)

type action struct {
	kind   actionKind
	amount int
}

// UI is a sticks.View drawing on a tcell screen.
type UI struct {
	screen tcell.Screen
	input  sticks.Input
	logger *slog.Logger

	mu    sync.Mutex
	model model
}

var _ sticks.View = (*UI)(nil)

func New(screen tcell.Screen, input sticks.Input, logger *slog.Logger) *UI {
	if logger == nil {
		logger = slog.Default()
	}
	w, h := screen.Size()
	return &UI{
		screen: screen,
		input:  input,
		logger: logger,
		model:  model{width: w, height: h},
	}
}

// Render implements sticks.View.
func (u *UI) Render(f sticks.Frame) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.model.apply(f)
	u.draw()
}

// Run reads terminal events until the user quits or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			u.mu.Lock()
			u.model.width, u.model.height = ev.Size()
			u.draw()
			u.mu.Unlock()
			u.screen.Sync()
		case *tcell.EventKey:
			if u.dispatch(u.keyAction(ev)) {
				return nil
			}
		case *tcell.EventMouse:
			u.dispatch(u.mouseAction(ev))
		}
	}
}

// dispatch forwards a to the input and reports whether the user quit.
func (u *UI) dispatch(a action) bool {
	switch a.kind {
	case actionPress:
		u.input.Press(a.amount)
	case actionConfirm:
		u.input.Confirm()
	case actionReload:
		u.input.Reload()
	case actionQuit:
		u.logger.Info("quit requested")
		return true
	}
	return false
}

func (u *UI) keyAction(ev *tcell.EventKey) action {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return action{kind: actionQuit}
	case tcell.KeyEnter:
		if u.model.state.Modal != nil {
			return action{kind: actionConfirm}
		}
		return action{}
	case tcell.KeyRune:
	default:
		return action{}
	}

	switch r := ev.Rune(); r {
	case 'q', 'Q':
		return action{kind: actionQuit}
	case 'r', 'R':
		return action{kind: actionReload}
	case '1', '2', '3':
		amount := int(r - '0')
		if b, ok := u.model.button(amount); ok && b.Enabled {
			return action{kind: actionPress, amount: amount}
		}
	}
	return action{}
}

func (u *UI) mouseAction(ev *tcell.EventMouse) action {
	if ev.Buttons()&tcell.Button1 == 0 {
		return action{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	x, y := ev.Position()
	if u.model.state.Modal != nil {
		if u.model.modalRect().contains(x, y) {
			return action{kind: actionConfirm}
		}
		return action{}
	}
	if amount, ok := u.model.buttonAt(x, y); ok {
		if b, _ := u.model.button(amount); b.Enabled {
			return action{kind: actionPress, amount: amount}
		}
	}
	return action{}
}

// draw must be called with u.mu held.
func (u *UI) draw() {
	u.screen.Clear()
	for _, s := range u.model.layout() {
		x := s.X
		for _, r := range s.Text {
			u.screen.SetContent(x, s.Y, r, nil, s.Style)
			x++
		}
	}
	u.screen.Show()
}
