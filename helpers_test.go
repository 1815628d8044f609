package sticks

import (
	"context"
	"sync"
)

type recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *recorder) Emit(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) Render(f Frame) {
	r.Emit(f)
}

func (r *recorder) all() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

func (r *recorder) last() Frame {
	frames := r.all()
	if len(frames) == 0 {
		return Frame{}
	}
	return frames[len(frames)-1]
}

func (r *recorder) kinds() []EffectKind {
	var out []EffectKind
	for _, f := range r.all() {
		out = append(out, f.Effect.Kind)
	}
	return out
}

type effects []Effect

func (e *effects) emit(eff Effect) {
	*e = append(*e, eff)
}

type fakeRemote struct {
	mu    sync.Mutex
	moves []Move
	play  func(m Move) (TurnOutcome, error)
}

func (f *fakeRemote) Play(_ context.Context, m Move) (TurnOutcome, error) {
	f.mu.Lock()
	f.moves = append(f.moves, m)
	play := f.play
	f.mu.Unlock()
	if play == nil {
		return TurnOutcome{}, nil
	}
	return play(m)
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

func opponentMove(n int) *Move {
	return &Move{Actor: Opponent, Amount: n}
}

func winner(a Actor) *Actor {
	return &a
}
