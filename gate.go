package sticks

// MoveGate decides which move buttons accept input.
type MoveGate struct {
	buttons [MaxTake]Button
	limit   int
	locked  bool
	emit    func(Effect)
}

func NewMoveGate(emit func(Effect)) *MoveGate {
	g := &MoveGate{emit: emit}
	for i := range g.buttons {
		amount := i + MinTake
		g.buttons[i] = Button{Amount: amount, Key: rune('0' + amount)}
	}
	return g
}

// Refresh recomputes legality: a move of amount a is legal iff a <= pileCount.
func (g *MoveGate) Refresh(pileCount int) {
	g.limit = pileCount
	g.apply()
}

// DisableAll blocks every button while a move is in flight.
func (g *MoveGate) DisableAll() {
	g.locked = true
	g.apply()
}

// EnableAll lifts the block; buttons above the last refreshed count stay disabled.
func (g *MoveGate) EnableAll() {
	g.locked = false
	g.apply()
}

func (g *MoveGate) Allowed(amount int) bool {
	b, ok := g.button(amount)
	return ok && b.Enabled
}

func (g *MoveGate) Buttons() []Button {
	out := make([]Button, len(g.buttons))
	copy(out, g.buttons[:])
	return out
}

func (g *MoveGate) button(amount int) (Button, bool) {
	if amount < MinTake || amount > MaxTake {
		return Button{}, false
	}
	return g.buttons[amount-MinTake], true
}

func (g *MoveGate) apply() {
	for i := range g.buttons {
		g.buttons[i].Enabled = !g.locked && g.buttons[i].Amount <= g.limit
	}
	g.emit(Effect{Kind: EffectGate})
}
