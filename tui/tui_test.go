package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sticks "github.com/tkahng/stickpile"
)

type fakeInput struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeInput) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, s)
}

func (f *fakeInput) Press(amount int) { f.record("press " + string(rune('0'+amount))) }
func (f *fakeInput) Confirm() { f.record("confirm") }
func (f *fakeInput) Reload() { f.record("reload") }

func (f *fakeInput) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

func buttons(pile int) []sticks.Button {
	var out []sticks.Button
	for a := 1; a <= 3; a++ {
		out = append(out, sticks.Button{Amount: a, Key: rune('0' + a), Enabled: a <= pile})
	}
	return out
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func rowText(s tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestModel_Animations(t *testing.T) {
	entry := sticks.HistoryEntry{Move: sticks.Move{Actor: sticks.Human, Amount: 2}, Total: 5}
	var m model
	m.apply(sticks.Frame{Effect: sticks.Effect{Kind: sticks.EffectReset}, State: sticks.Snapshot{Pile: 7}})
	m.apply(sticks.Frame{Effect: sticks.Effect{Kind: sticks.EffectSticksFade, Sticks: 2}, State: sticks.Snapshot{Pile: 5}})
	m.apply(sticks.Frame{Effect: sticks.Effect{Kind: sticks.EffectEntryOut, Entry: &entry}, State: sticks.Snapshot{Pile: 5}})
	assert.Equal(t, 2, m.fading)
	assert.Len(t, m.leaving, 1)
	assert.Equal(t, 5, m.state.Pile)

	m.apply(sticks.Frame{Effect: sticks.Effect{Kind: sticks.EffectSticksGone, Sticks: 2}, State: sticks.Snapshot{Pile: 5}})
	m.apply(sticks.Frame{Effect: sticks.Effect{Kind: sticks.EffectEntryGone, Entry: &entry}, State: sticks.Snapshot{Pile: 5}})
	assert.Equal(t, 0, m.fading)
	assert.Empty(t, m.leaving)
}

func TestUI_Render(t *testing.T) {
	s := newScreen(t)
	ui := New(s, &fakeInput{}, nil)

	ui.Render(sticks.Frame{
		Effect: sticks.Effect{Kind: sticks.EffectEntryIn},
		State: sticks.Snapshot{
			Pile:    2,
			Buttons: buttons(2),
			History: []sticks.HistoryEntry{
				{Move: sticks.Move{Actor: sticks.Human, Amount: 2}, Total: 5},
				{Move: sticks.Move{Actor: sticks.Opponent, Amount: 3}, Total: 2},
			},
			Alert: "Session expired Try to refresh the page.",
		},
	})

	assert.Equal(t, "Game of Sticks", rowText(s, rowTitle, 80))
	assert.Equal(t, "Sticks left: 2", rowText(s, rowCount, 80))
	assert.Equal(t, "| |", rowText(s, rowSticks, 80))
	assert.Equal(t, "  [ 1 ]   [ 2 ]   [ 3 ]", rowText(s, rowButtons, 80))
	assert.Equal(t, "Session expired Try to refresh the page.", rowText(s, rowAlert, 80))
	assert.Equal(t, "You took 2 sticks. The pile now has 5", rowText(s, rowHistory, 80))
	assert.Equal(t, "Computer took 3 sticks. The pile now has 2", rowText(s, rowHistory+1, 80))

	_, _, style, _ := s.GetContent(buttonX+2*(buttonWidth+buttonGap), rowButtons)
	assert.Equal(t, styleDisabled, style)
	_, _, style, _ = s.GetContent(buttonX, rowButtons)
	assert.Equal(t, styleEnabled, style)
}

func TestUI_KeyAction(t *testing.T) {
	tests := []struct {
		name  string
		state sticks.Snapshot
		ev    *tcell.EventKey
		want  action
	}{
		{
			name:  "enabled button",
			state: sticks.Snapshot{Buttons: buttons(5)},
			ev:    tcell.NewEventKey(tcell.KeyRune, '3', tcell.ModNone),
			want:  action{kind: actionPress, amount: 3},
		},
		{
			name:  "disabled button",
			state: sticks.Snapshot{Buttons: buttons(1)},
			ev:    tcell.NewEventKey(tcell.KeyRune, '2', tcell.ModNone),
			want:  action{},
		},
		{
			name:  "enter without modal",
			state: sticks.Snapshot{Buttons: buttons(5)},
			ev:    tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			want:  action{},
		},
		{
			name:  "enter confirms modal",
			state: sticks.Snapshot{Modal: &sticks.Modal{Headline: "You won the game"}},
			ev:    tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			want:  action{kind: actionConfirm},
		},
		{
			name: "reload",
			ev:   tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone),
			want: action{kind: actionReload},
		},
		{
			name: "quit",
			ev:   tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
			want: action{kind: actionQuit},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := New(newScreen(t), &fakeInput{}, nil)
			ui.model.state = tt.state
			assert.Equal(t, tt.want, ui.keyAction(tt.ev))
		})
	}
}

func TestUI_MouseAction(t *testing.T) {
	ui := New(newScreen(t), &fakeInput{}, nil)
	ui.model.state = sticks.Snapshot{Pile: 2, Buttons: buttons(2)}

	second := ui.model.buttonRect(1)
	third := ui.model.buttonRect(2)
	assert.Equal(t, action{kind: actionPress, amount: 2},
		ui.mouseAction(tcell.NewEventMouse(second.X+1, second.Y, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, action{},
		ui.mouseAction(tcell.NewEventMouse(third.X+1, third.Y, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, action{},
		ui.mouseAction(tcell.NewEventMouse(second.X+1, second.Y, tcell.ButtonNone, tcell.ModNone)))

	ui.model.state.Modal = &sticks.Modal{Headline: "You lost the game", ShowDetails: true}
	box := ui.model.modalRect()
	assert.Equal(t, action{kind: actionConfirm},
		ui.mouseAction(tcell.NewEventMouse(box.X+1, box.Y+1, tcell.Button1, tcell.ModNone)))
}

func TestUI_Run(t *testing.T) {
	s := newScreen(t)
	input := &fakeInput{}
	ui := New(s, input, nil)
	ui.Render(sticks.Frame{State: sticks.Snapshot{Pile: 5, Buttons: buttons(5)}})

	done := make(chan error, 1)
	go func() { done <- ui.Run(context.Background()) }()

	s.InjectKey(tcell.KeyRune, '2', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return on quit")
	}
	assert.Equal(t, []string{"press 2", "reload"}, input.all())
}

func TestUI_RunStopsOnCancel(t *testing.T) {
	ui := New(newScreen(t), &fakeInput{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ui.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return on cancel")
	}
}
