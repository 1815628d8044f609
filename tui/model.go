package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	sticks "github.com/tkahng/stickpile"
)

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleStick    = tcell.StyleDefault.Foreground(tcell.ColorSandyBrown)
	styleFading   = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleEnabled  = tcell.StyleDefault.Reverse(true).Bold(true)
	styleDisabled = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleAlert    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleComputer = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleModal    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const (
	rowTitle   = 0
	rowCount   = 2
	rowSticks  = 3
	rowButtons = 5
	rowAlert   = 7
	rowHistory = 9

	buttonX     = 2
	buttonWidth = 5
	buttonGap   = 3

	modalWidth  = 36
	modalHeight = 6
)

// segment is a run of text drawn at a position with one style.
type segment struct {
	X, Y  int
	Text  string
	Style tcell.Style
}

type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// model is the terminal scene: the latest snapshot plus the animations that
// are still running.
type model struct {
	state   sticks.Snapshot
	fading  int
	leaving []sticks.HistoryEntry
	width   int
	height  int
}

func (m *model) apply(f sticks.Frame) {
	switch f.Effect.Kind {
	case sticks.EffectReset:
		m.fading = 0
		m.leaving = nil
	case sticks.EffectSticksFade:
		m.fading += f.Effect.Sticks
	case sticks.EffectSticksGone:
		m.fading = max(0, m.fading-f.Effect.Sticks)
	case sticks.EffectEntryOut:
		if f.Effect.Entry != nil {
			m.leaving = append(m.leaving, *f.Effect.Entry)
		}
	case sticks.EffectEntryGone:
		if len(m.leaving) > 0 {
			m.leaving = m.leaving[1:]
		}
	}
	m.state = f.State
}

func (m *model) button(amount int) (sticks.Button, bool) {
	for _, b := range m.state.Buttons {
		if b.Amount == amount {
			return b, true
		}
	}
	return sticks.Button{}, false
}

func (m *model) buttonRect(i int) rect {
	return rect{X: buttonX + i*(buttonWidth+buttonGap), Y: rowButtons, W: buttonWidth, H: 1}
}

// buttonAt returns the amount of the button at x, y.
func (m *model) buttonAt(x, y int) (int, bool) {
	for i, b := range m.state.Buttons {
		if m.buttonRect(i).contains(x, y) {
			return b.Amount, true
		}
	}
	return 0, false
}

func (m *model) modalRect() rect {
	w := max(m.width, modalWidth)
	h := max(m.height, modalHeight)
	return rect{X: (w - modalWidth) / 2, Y: (h - modalHeight) / 2, W: modalWidth, H: modalHeight}
}

func (m *model) layout() []segment {
	segs := []segment{
		{X: 0, Y: rowTitle, Text: "Game of Sticks", Style: styleTitle},
		{X: 0, Y: rowCount, Text: fmt.Sprintf("Sticks left: %d", m.state.Pile), Style: styleDefault},
		{X: 0, Y: rowSticks, Text: strings.Repeat("| ", m.state.Pile), Style: styleStick},
		{X: 2 * m.state.Pile, Y: rowSticks, Text: strings.Repeat(": ", m.fading), Style: styleFading},
	}

	for i, b := range m.state.Buttons {
		style := styleDisabled
		if b.Enabled {
			style = styleEnabled
		}
		r := m.buttonRect(i)
		segs = append(segs, segment{X: r.X, Y: r.Y, Text: fmt.Sprintf("[ %c ]", b.Key), Style: style})
	}

	if m.state.Alert != "" {
		segs = append(segs, segment{X: 0, Y: rowAlert, Text: m.state.Alert, Style: styleAlert})
	}

	y := rowHistory
	for _, e := range m.leaving {
		segs = append(segs, segment{X: 0, Y: y, Text: e.Text(), Style: styleFading})
		y++
	}
	for _, e := range m.state.History {
		style := stylePlayer
		if e.Move.Actor == sticks.Opponent {
			style = styleComputer
		}
		segs = append(segs, segment{X: 0, Y: y, Text: e.Text(), Style: style})
		y++
	}

	segs = append(segs, segment{X: 0, Y: y + 1, Text: "1-3 take sticks  r reload  q quit", Style: styleHelp})

	if modal := m.state.Modal; modal != nil {
		segs = append(segs, m.modalSegments(modal)...)
	}
	return segs
}

func (m *model) modalSegments(modal *sticks.Modal) []segment {
	r := m.modalRect()
	blank := strings.Repeat(" ", r.W)
	var segs []segment
	for y := r.Y; y < r.Y+r.H; y++ {
		segs = append(segs, segment{X: r.X, Y: y, Text: blank, Style: styleModal})
	}
	segs = append(segs, segment{X: r.X + 2, Y: r.Y + 1, Text: modal.Headline, Style: styleModal.Bold(true)})
	if modal.ShowDetails {
		segs = append(segs, segment{X: r.X + 2, Y: r.Y + 2, Text: "You took the last stick.", Style: styleModal})
	}
	segs = append(segs, segment{X: r.X + 2, Y: r.Y + 4, Text: "[ Enter ] Play again", Style: styleModal.Reverse(true)})
	return segs
}
