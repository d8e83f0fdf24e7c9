package terminal

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/colormatch/game/engine"
)

const (
	boxWidth    = 16
	boxHeight   = 5
	buttonWidth = 12
)

// View is everything drawn in one frame
type View struct {
	State        *engine.GameState
	Instructions []string
	Dimmed       bool
	Status       string
}

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleValue   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleUrgent  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// ColorOf maps a game color to a terminal color
func ColorOf(c engine.Color) tcell.Color {
	switch c {
	case engine.Red:
		return tcell.ColorRed
	case engine.Blue:
		return tcell.ColorBlue
	case engine.Green:
		return tcell.ColorGreen
	case engine.Yellow:
		return tcell.ColorYellow
	default:
		return tcell.ColorGray
	}
}

// dimColor is used for the target box while a pulse is showing
func dimColor(c engine.Color) tcell.Color {
	switch c {
	case engine.Red:
		return tcell.ColorMaroon
	case engine.Blue:
		return tcell.ColorNavy
	case engine.Green:
		return tcell.ColorDarkGreen
	case engine.Yellow:
		return tcell.ColorOlive
	default:
		return tcell.ColorDimGray
	}
}

// Draw renders v onto screen and shows it
func Draw(screen tcell.Screen, v View) {
	screen.Clear()
	width, height := screen.Size()

	drawCentered(screen, width, 1, "COLOR MATCH", styleTitle)

	if v.State == nil {
		drawCentered(screen, width, 3, "waiting for game state...", styleHint)
		screen.Show()
		return
	}

	if !v.State.Started {
		drawInstructions(screen, width, v)
	} else {
		drawGame(screen, width, v)
	}

	if v.Status != "" {
		drawCentered(screen, width, height-2, v.Status, styleUrgent)
	}
	drawCentered(screen, width, height-1, "1-4 / r b g y pick   enter start   x reset   esc quit", styleHint)
	screen.Show()
}

func drawInstructions(screen tcell.Screen, width int, v View) {
	y := 3
	for _, line := range v.Instructions {
		drawCentered(screen, width, y, line, styleDefault)
		y++
	}
	y++
	if v.State.HighScore > 0 {
		drawCentered(screen, width, y, fmt.Sprintf("High score: %d", v.State.HighScore), styleValue)
		y++
	}
	drawCentered(screen, width, y+1, "Press Enter to start", styleTitle)
}

func drawGame(screen tcell.Screen, width int, v View) {
	s := v.State

	stats := fmt.Sprintf("Score: %-4d High score: %-4d", s.Score, s.HighScore)
	drawCentered(screen, width, 3, stats, styleValue)

	timerStyle := styleValue
	if s.Timer <= 1 {
		timerStyle = styleUrgent
	}
	drawCentered(screen, width, 4, fmt.Sprintf("Level: %-4d Time: %ds", s.Level, s.Timer), timerStyle)

	// Target box
	fill := ColorOf(s.CurrentTarget)
	if v.Dimmed {
		fill = dimColor(s.CurrentTarget)
	}
	boxStyle := tcell.StyleDefault.Background(fill)
	left := (width - boxWidth) / 2
	top := 6
	for dy := 0; dy < boxHeight; dy++ {
		for dx := 0; dx < boxWidth; dx++ {
			screen.SetContent(left+dx, top+dy, ' ', nil, boxStyle)
		}
	}

	// Buttons
	colors := engine.Colors()
	total := len(colors)*buttonWidth + (len(colors)-1)*2
	x := (width - total) / 2
	y := top + boxHeight + 2
	for i, c := range colors {
		label := centerText(fmt.Sprintf("%d %s", i+1, strings.ToUpper(string(c))), buttonWidth)
		style := tcell.StyleDefault.Background(ColorOf(c)).Foreground(tcell.ColorBlack)
		drawText(screen, x, y, label, style)
		x += buttonWidth + 2
	}

	if s.Message != "" {
		drawCentered(screen, width, y+2, s.Message, styleLabel)
	}
}

func drawCentered(screen tcell.Screen, width, y int, text string, style tcell.Style) {
	x := (width - len([]rune(text))) / 2
	if x < 0 {
		x = 0
	}
	drawText(screen, x, y, text, style)
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	pad := (width - n) / 2
	return strings.Repeat(" ", pad) + text + strings.Repeat(" ", width-n-pad)
}
