package sticks

// PileCounter holds the pile count and the stick units that render it.
type PileCounter struct {
	count int
	units []int // ids of the live stick units, len(units) == count
	next  int
	emit  func(Effect)
}

func NewPileCounter(count int, emit func(Effect)) (*PileCounter, error) {
	if count < 0 {
		return nil, &InvariantViolation{Count: 0, Amount: -count}
	}
	p := &PileCounter{
		count: count,
		units: make([]int, count),
		emit:  emit,
	}
	for i := range p.units {
		p.units[i] = p.next
		p.next++
	}
	return p, nil
}

func (p *PileCounter) Count() int {
	return p.count
}

// Units returns the number of live stick units.
func (p *PileCounter) Units() int {
	return len(p.units)
}

// Decrement takes amount sticks from the pile. The removed units start
// their exit animation; the count is updated before Decrement returns.
func (p *PileCounter) Decrement(amount int) error {
	if amount <= 0 || p.count-amount < 0 {
		return &InvariantViolation{Count: p.count, Amount: amount}
	}
	p.count -= amount
	p.units = p.units[:p.count]
	p.emit(Effect{Kind: EffectSticksFade, Sticks: amount})
	return nil
}
