package sticks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultFade is the jQuery "normal" fade speed.
const DefaultFade = 400 * time.Millisecond

type pendingEffect struct {
	due    time.Time
	effect Effect
}

// Animator delivers frames to views in emission order. Effects that start an
// animation get their completion frame once the fade duration has passed;
// completions are delivered in the order their animations started.
type Animator struct {
	fade   time.Duration
	views  []View
	queue  chan Frame
	logger *slog.Logger

	mu     *sync.RWMutex
	latest Frame
	seq    uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

var _ Emitter = (*Animator)(nil)

func NewAnimator(fade time.Duration, logger *slog.Logger, views ...View) *Animator {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		fade:   fade,
		views:  views,
		queue:  make(chan Frame, 256),
		logger: logger,
		mu:     new(sync.RWMutex),
		ctx:    ctx,
		cancel: cancel,
		wg:     new(sync.WaitGroup),
	}
}

// Attach adds a view. It must be called before Start.
func (a *Animator) Attach(v View) {
	a.views = append(a.views, v)
}

func (a *Animator) Start() {
	a.wg.Add(1)
	go a.renderWorker()
	a.logger.Debug("animator started", slog.Int("views", len(a.views)), slog.Duration("fade", a.fade))
}

// Stop halts delivery; pending completions are dropped.
func (a *Animator) Stop() {
	a.cancel()
	a.wg.Wait()
	a.logger.Debug("animator stopped")
}

// Emit queues a frame for rendering and returns without waiting for it.
func (a *Animator) Emit(f Frame) {
	select {
	case a.queue <- f:
	case <-a.ctx.Done():
	}
}

// Latest returns the most recently rendered frame.
func (a *Animator) Latest() (Frame, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest, a.seq > 0
}

func (a *Animator) renderWorker() {
	defer a.wg.Done()

	var pending []pendingEffect
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	var tick <-chan time.Time

	for {
		select {
		case <-a.ctx.Done():
			return

		case f := <-a.queue:
			a.render(f)
			if !f.Effect.Kind.Animated() {
				continue
			}
			done := f.Effect
			done.Kind = done.Kind.Completion()
			if a.fade <= 0 {
				a.render(Frame{Effect: done, State: a.latestState()})
				continue
			}
			pending = append(pending, pendingEffect{due: time.Now().Add(a.fade), effect: done})
			if len(pending) == 1 {
				timer.Reset(a.fade)
				tick = timer.C
			}

		case <-tick:
			now := time.Now()
			for len(pending) > 0 && !pending[0].due.After(now) {
				a.render(Frame{Effect: pending[0].effect, State: a.latestState()})
				pending = pending[1:]
			}
			if len(pending) > 0 {
				timer.Reset(time.Until(pending[0].due))
			} else {
				tick = nil
			}
		}
	}
}

func (a *Animator) latestState() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest.State
}

func (a *Animator) render(f Frame) {
	a.mu.Lock()
	a.seq++
	f.Seq = a.seq
	a.latest = f
	a.mu.Unlock()

	for _, v := range a.views {
		v.Render(f)
	}
}
