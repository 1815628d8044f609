package sticks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Relay forwards input from every input surface to the controller of the
// current session.
type Relay struct {
	mu      sync.RWMutex
	current Input
	reloads chan struct{}
}

var _ Input = (*Relay)(nil)

func NewRelay() *Relay {
	return &Relay{reloads: make(chan struct{}, 1)}
}

func (r *Relay) attach(in Input) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = in
}

func (r *Relay) target() Input {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Relay) Press(amount int) {
	if in := r.target(); in != nil {
		in.Press(amount)
	}
}

func (r *Relay) Confirm() {
	if in := r.target(); in != nil {
		in.Confirm()
	}
}

// Reload asks the session to drop the current game and load a new one.
func (r *Relay) Reload() {
	select {
	case r.reloads <- struct{}{}:
	default:
	}
}

// Loader fetches the starting pile count of a new game.
type Loader interface {
	Start(ctx context.Context) (int, error)
}

type SessionConfig struct {
	HistoryCap int
}

// Session plays games back to back: load, play until the end-of-game modal
// is confirmed or a reload is requested, repeat.
type Session struct {
	loader Loader
	remote Remote
	relay  *Relay
	out    Emitter
	cfg    SessionConfig
	logger *slog.Logger
}

func NewSession(loader Loader, remote Remote, relay *Relay, out Emitter, cfg SessionConfig, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		loader: loader,
		remote: remote,
		relay:  relay,
		out:    out,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Session) Run(ctx context.Context) error {
	for {
		if err := s.play(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Info("reloading session")
	}
}

func (s *Session) play(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := uuid.NewString()
	logger := s.logger.With(slog.String("session", id))

	start, err := s.loader.Start(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Error("failed to load game", slog.Any("error", err))
		s.out.Emit(Frame{
			Effect: Effect{Kind: EffectAlert},
			State:  Snapshot{Session: id, Phase: PhaseIdle, Alert: AlertText(err)},
		})
		s.waitReload(ctx)
		return nil
	}

	ctrl, err := NewController(Options{
		Session:    id,
		Start:      start,
		HistoryCap: s.cfg.HistoryCap,
		Remote:     s.remote,
		Out:        s.out,
		Logger:     s.logger,
	})
	if err != nil {
		logger.Error("failed to start game", slog.Any("error", err))
		s.out.Emit(Frame{
			Effect: Effect{Kind: EffectAlert},
			State:  Snapshot{Session: id, Phase: PhaseIdle, Alert: AlertText(err)},
		})
		s.waitReload(ctx)
		return nil
	}
	logger.Info("game loaded", slog.Int("pile", start))

	s.relay.attach(ctrl)
	defer s.relay.attach(nil)

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			return err
		}
	case <-s.relay.reloads:
		cancel()
		<-done
	}
	return nil
}

func (s *Session) waitReload(ctx context.Context) {
	select {
	case <-s.relay.reloads:
	case <-ctx.Done():
	}
}
