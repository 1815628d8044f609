package sticks

// Phase is the state of the turn controller.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseTerminal         Phase = "terminal"
)

type EffectKind string

const (
	EffectReset      EffectKind = "reset"
	EffectSticksFade EffectKind = "sticks_fade"
	EffectSticksGone EffectKind = "sticks_gone"
	EffectEntryIn    EffectKind = "entry_in"
	EffectEntryOut   EffectKind = "entry_out"
	EffectEntryGone  EffectKind = "entry_gone"
	EffectGate       EffectKind = "gate"
	EffectModal      EffectKind = "modal"
	EffectAlert      EffectKind = "alert"
)

// Animated reports whether the effect starts an animation that a later
// completion frame finishes.
func (k EffectKind) Animated() bool {
	return k == EffectSticksFade || k == EffectEntryOut
}

// Completion returns the kind that ends the animation started by k.
func (k EffectKind) Completion() EffectKind {
	switch k {
	case EffectSticksFade:
		return EffectSticksGone
	case EffectEntryOut:
		return EffectEntryGone
	}
	return k
}

type Effect struct {
	Kind   EffectKind    `json:"kind"`
	Sticks int           `json:"sticks,omitempty"`
	Entry  *HistoryEntry `json:"entry,omitempty"`
}

type Button struct {
	Amount  int  `json:"amount"`
	Key     rune `json:"key"`
	Enabled bool `json:"enabled"`
}

type Modal struct {
	Headline    string `json:"headline"`
	YouWon      bool   `json:"youWon"`
	ShowDetails bool   `json:"showDetails"`
}

// Snapshot is the whole scene as a pure projection of controller state.
type Snapshot struct {
	Session string         `json:"session"`
	Phase   Phase          `json:"phase"`
	Pile    int            `json:"pile"`
	Buttons []Button       `json:"buttons"`
	History []HistoryEntry `json:"history"`
	Modal   *Modal         `json:"modal,omitempty"`
	Alert   string         `json:"alert,omitempty"`
}

// Frame is one ordered render instruction.
type Frame struct {
	Seq    uint64   `json:"seq"`
	Effect Effect   `json:"effect"`
	State  Snapshot `json:"state"`
}

// View renders frames. Render is called from a single goroutine, in order.
type View interface {
	Render(Frame)
}

// Emitter accepts frames without blocking on their animation.
type Emitter interface {
	Emit(Frame)
}

// Input is what every input surface can ask of the running session.
type Input interface {
	Press(amount int)
	Confirm()
	Reload()
}
