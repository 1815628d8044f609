package sticks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimator_OrderAndCompletion(t *testing.T) {
	rec := &recorder{}
	a := NewAnimator(50*time.Millisecond, nil, rec)
	a.Start()
	defer a.Stop()

	first := HistoryEntry{Move: Move{Actor: Human, Amount: 1}, Total: 4}
	second := HistoryEntry{Move: Move{Actor: Opponent, Amount: 2}, Total: 2}
	a.Emit(Frame{Effect: Effect{Kind: EffectReset, Sticks: 5}, State: Snapshot{Pile: 5}})
	a.Emit(Frame{Effect: Effect{Kind: EffectSticksFade, Sticks: 1}, State: Snapshot{Pile: 4}})
	a.Emit(Frame{Effect: Effect{Kind: EffectEntryIn, Entry: &first}, State: Snapshot{Pile: 4}})
	a.Emit(Frame{Effect: Effect{Kind: EffectSticksFade, Sticks: 2}, State: Snapshot{Pile: 2}})
	a.Emit(Frame{Effect: Effect{Kind: EffectEntryOut, Entry: &first}, State: Snapshot{Pile: 2}})
	a.Emit(Frame{Effect: Effect{Kind: EffectEntryIn, Entry: &second}, State: Snapshot{Pile: 2}})

	require.Eventually(t, func() bool { return len(rec.all()) == 9 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []EffectKind{
		EffectReset,
		EffectSticksFade,
		EffectEntryIn,
		EffectSticksFade,
		EffectEntryOut,
		EffectEntryIn,
		EffectSticksGone,
		EffectSticksGone,
		EffectEntryGone,
	}, rec.kinds())

	frames := rec.all()
	for i, f := range frames {
		assert.Equal(t, uint64(i+1), f.Seq)
	}
	assert.Equal(t, 1, frames[6].Effect.Sticks)
	assert.Equal(t, 2, frames[7].Effect.Sticks)
	assert.Equal(t, &first, frames[8].Effect.Entry)
	// completions carry the latest scene
	assert.Equal(t, 2, frames[6].State.Pile)

	latest, ok := a.Latest()
	assert.True(t, ok)
	assert.Equal(t, uint64(9), latest.Seq)
}

func TestAnimator_NoFade(t *testing.T) {
	rec := &recorder{}
	a := NewAnimator(0, nil)
	a.Attach(rec)
	a.Start()
	defer a.Stop()

	_, ok := a.Latest()
	assert.False(t, ok)

	a.Emit(Frame{Effect: Effect{Kind: EffectSticksFade, Sticks: 3}})
	a.Emit(Frame{Effect: Effect{Kind: EffectGate}})

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []EffectKind{EffectSticksFade, EffectSticksGone, EffectGate}, rec.kinds())
}

func TestAnimator_EmitAfterStop(t *testing.T) {
	a := NewAnimator(DefaultFade, nil)
	a.Start()
	a.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			a.Emit(Frame{Effect: Effect{Kind: EffectGate}})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked after Stop")
	}
}
