package sticks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Remote submits a human move and returns the opponent's answer.
type Remote interface {
	Play(ctx context.Context, m Move) (TurnOutcome, error)
}

type Options struct {
	Session    string
	Start      int
	HistoryCap int
	Remote     Remote
	Out        Emitter
	Logger     *slog.Logger
}

type (
	pressEvent struct {
		amount int
	}
	confirmEvent struct{}
	outcomeEvent struct {
		outcome TurnOutcome
		err     error
	}
)

// Controller runs the turns of one game session. All state is owned by the
// goroutine executing Run; other goroutines talk to it through Press and
// Confirm.
type Controller struct {
	session  string
	phase    Phase
	alert    string
	pile     *PileCounter
	gate     *MoveGate
	history  *HistoryLog
	notifier *EndGameNotifier
	remote   Remote
	out      Emitter
	logger   *slog.Logger
	ready    bool

	events  chan any
	stopped chan struct{}
}

var _ Input = (*Controller)(nil)

func NewController(opts Options) (*Controller, error) {
	if opts.Remote == nil {
		return nil, errors.New("controller needs a remote")
	}
	if opts.Out == nil {
		return nil, errors.New("controller needs an emitter")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		session: opts.Session,
		phase:   PhaseIdle,
		remote:  opts.Remote,
		out:     opts.Out,
		logger:  logger.With(slog.String("session", opts.Session)),
		events:  make(chan any, 16),
		stopped: make(chan struct{}),
	}
	pile, err := NewPileCounter(opts.Start, c.emit)
	if err != nil {
		return nil, fmt.Errorf("invalid start count: %w", err)
	}
	c.pile = pile
	c.gate = NewMoveGate(c.emit)
	c.history = NewHistoryLog(opts.HistoryCap, c.emit)
	c.notifier = NewEndGameNotifier(c.emit)
	c.gate.Refresh(pile.Count())

	c.ready = true
	c.emit(Effect{Kind: EffectReset, Sticks: pile.Count()})
	return c, nil
}

// Run processes events until the end-of-game modal is confirmed or ctx is
// cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.notifier.Done():
			c.logger.Info("end of game confirmed")
			return nil
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

// Press submits a human move. It has no effect unless the controller is
// idle and the button for amount is enabled.
func (c *Controller) Press(amount int) {
	c.post(pressEvent{amount: amount})
}

// Confirm accepts the end-of-game modal.
func (c *Controller) Confirm() {
	c.post(confirmEvent{})
}

// Reload is handled by the session owning the controller.
func (c *Controller) Reload() {}

func (c *Controller) post(ev any) {
	select {
	case c.events <- ev:
	case <-c.stopped:
	}
}

func (c *Controller) handle(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case pressEvent:
		c.handlePress(ctx, ev.amount)
	case outcomeEvent:
		c.handleOutcome(ev)
	case confirmEvent:
		if c.phase == PhaseTerminal {
			c.notifier.Confirm()
		}
	}
}

func (c *Controller) handlePress(ctx context.Context, amount int) {
	if c.phase != PhaseIdle || !c.gate.Allowed(amount) {
		c.logger.Debug("ignoring move", slog.Int("amount", amount), slog.String("phase", string(c.phase)))
		return
	}
	move := Move{Actor: Human, Amount: amount}
	c.phase = PhaseAwaitingResponse
	c.gate.DisableAll()
	if err := c.pile.Decrement(amount); err != nil {
		c.fail(err)
		return
	}
	c.history.Append(HistoryEntry{Move: move, Total: c.pile.Count()})
	c.logger.Info("move submitted", slog.Int("amount", amount), slog.Int("pile", c.pile.Count()))

	go func() {
		outcome, err := c.remote.Play(ctx, move)
		c.post(outcomeEvent{outcome: outcome, err: err})
	}()
}

func (c *Controller) handleOutcome(ev outcomeEvent) {
	if c.phase != PhaseAwaitingResponse {
		return
	}
	if ev.err != nil {
		c.fail(ev.err)
		return
	}
	outcome := ev.outcome
	if !outcome.Terminal {
		if outcome.OpponentMove == nil {
			c.fail(&CommunicationError{Err: errors.New("response carries no opponent move")})
			return
		}
		if err := c.applyOpponent(*outcome.OpponentMove); err != nil {
			c.fail(err)
			return
		}
		c.gate.Refresh(c.pile.Count())
		c.phase = PhaseIdle
		c.gate.EnableAll()
		return
	}

	won := outcome.HumanWon()
	if won && outcome.OpponentMove != nil {
		if err := c.applyOpponent(*outcome.OpponentMove); err != nil {
			c.fail(err)
			return
		}
	}
	c.phase = PhaseTerminal
	c.logger.Info("game over", slog.Bool("won", won), slog.Int("pile", c.pile.Count()))
	c.notifier.Show(won, !won)
}

func (c *Controller) applyOpponent(m Move) error {
	m.Actor = Opponent
	if err := m.Validate(); err != nil {
		return &CommunicationError{Err: err}
	}
	if err := c.pile.Decrement(m.Amount); err != nil {
		return err
	}
	c.history.Append(HistoryEntry{Move: m, Total: c.pile.Count()})
	return nil
}

// fail leaves the session stalled; only a reload recovers.
func (c *Controller) fail(err error) {
	c.alert = AlertText(err)
	c.logger.Error("turn failed", slog.Any("error", err), slog.String("phase", string(c.phase)))
	c.emit(Effect{Kind: EffectAlert})
}

func (c *Controller) emit(e Effect) {
	if !c.ready {
		return
	}
	c.out.Emit(Frame{Effect: e, State: c.snapshot()})
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Session: c.session,
		Phase:   c.phase,
		Pile:    c.pile.Count(),
		Buttons: c.gate.Buttons(),
		History: c.history.Entries(),
		Modal:   c.notifier.Modal(),
		Alert:   c.alert,
	}
}
