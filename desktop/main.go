package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth   = 480
	screenHeight  = 440
	headerHeight  = 60
	boxX          = 140
	boxY          = 90
	boxWidth      = 200
	boxHeight     = 140
	buttonY       = 300
	buttonWidth   = 100
	buttonHeight  = 60
	buttonGap     = 16
	pulseDuration = 500 * time.Millisecond
)

// palette holds the bright and dimmed shade of every label
var palette = map[string][2]color.RGBA{
	"red":    {{230, 50, 50, 255}, {115, 25, 25, 255}},
	"blue":   {{50, 90, 230, 255}, {25, 45, 115, 255}},
	"green":  {{50, 190, 80, 255}, {25, 95, 40, 255}},
	"yellow": {{240, 220, 60, 255}, {120, 110, 30, 255}},
}

// buttonOrder is the left-to-right order of the answer buttons
var buttonOrder = []string{"red", "blue", "green", "yellow"}

var (
	background = color.RGBA{24, 24, 32, 255}
	neutral    = color.RGBA{90, 90, 100, 255}
)

// Game represents the desktop game client
type Game struct {
	conn *Connection

	mu           sync.RWMutex
	state        *GameState
	instructions []string
	connected    bool
	status       string
	pulseUntil   time.Time
}

// NewGame creates a client bound to server
func NewGame(server string) *Game {
	g := &Game{}
	g.conn = &Connection{
		server:    server,
		onMessage: g.handleMessage,
		onStatus: func(connected bool) {
			g.mu.Lock()
			g.connected = connected
			if !connected {
				g.status = "Reconnecting..."
			} else {
				g.status = ""
			}
			g.mu.Unlock()
		},
	}
	return g
}

// handleMessage applies a server message
func (g *Game) handleMessage(msg WSMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch msg.Event {
	case "state_update":
		if msg.GameState != nil {
			g.state = msg.GameState
		}
	case "pulse":
		g.pulseUntil = time.Now().Add(pulseDuration)
	case "error":
		var text string
		if err := json.Unmarshal(msg.Data, &text); err == nil {
			g.status = text
		}
	}
}

// buttonAt returns the label under the given point, or ""
func buttonAt(x, y int) string {
	if y < buttonY || y >= buttonY+buttonHeight {
		return ""
	}
	for i, label := range buttonOrder {
		left := buttonLeft(i)
		if x >= left && x < left+buttonWidth {
			return label
		}
	}
	return ""
}

func buttonLeft(i int) int {
	total := len(buttonOrder)*buttonWidth + (len(buttonOrder)-1)*buttonGap
	return (screenWidth-total)/2 + i*(buttonWidth+buttonGap)
}

// colorFor returns the shade a label is drawn with
func colorFor(label string, dimmed bool) color.RGBA {
	shades, ok := palette[label]
	if !ok {
		return neutral
	}
	if dimmed {
		return shades[1]
	}
	return shades[0]
}

// keyLabels maps number keys to the buttons
var keyLabels = map[ebiten.Key]string{
	ebiten.Key1: "red",
	ebiten.Key2: "blue",
	ebiten.Key3: "green",
	ebiten.Key4: "yellow",
	ebiten.KeyR: "red",
	ebiten.KeyB: "blue",
	ebiten.KeyG: "green",
	ebiten.KeyY: "yellow",
}

func (g *Game) act(action, label string) {
	if err := g.conn.send(action, label); err != nil {
		g.mu.Lock()
		g.status = err.Error()
		g.mu.Unlock()
	}
}

// Update handles input
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.mu.RLock()
	started := g.state != nil && g.state.Started
	g.mu.RUnlock()

	if !started {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
			inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.act("start", "")
		}
		return nil
	}

	for key, label := range keyLabels {
		if inpututil.IsKeyJustPressed(key) {
			g.act("select", label)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if label := buttonAt(ebiten.CursorPosition()); label != "" {
			g.act("select", label)
		}
	}
	return nil
}

// Draw renders the current snapshot
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	screen.Fill(background)

	if !g.connected && g.state == nil {
		ebitenutil.DebugPrintAt(screen, "Connecting to server...", 20, 20)
		return
	}

	if g.state == nil || !g.state.Started {
		g.drawInstructions(screen)
		return
	}

	s := g.state
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d   Level: %d   Time: %d   Best: %d", s.Score, s.Level, s.Timer, s.HighScore), 20, 16)
	if s.ConfigName != "" {
		ebitenutil.DebugPrintAt(screen, "Preset: "+s.ConfigName, 20, 34)
	}

	dimmed := time.Now().Before(g.pulseUntil)
	vector.DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, colorFor(s.CurrentTarget, dimmed), false)

	for i, label := range buttonOrder {
		x := float32(buttonLeft(i))
		vector.DrawFilledRect(screen, x, buttonY, buttonWidth, buttonHeight, colorFor(label, false), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d %s", i+1, strings.ToUpper(label)), int(x)+8, buttonY+buttonHeight+6)
	}

	footer := s.Message
	if g.status != "" {
		footer = g.status
	}
	ebitenutil.DebugPrintAt(screen, footer, 20, screenHeight-30)
}

func (g *Game) drawInstructions(screen *ebiten.Image) {
	y := headerHeight
	for _, line := range g.instructions {
		ebitenutil.DebugPrintAt(screen, line, 40, y)
		y += 20
	}
	ebitenutil.DebugPrintAt(screen, "Press ENTER or click to start", 40, y+20)
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 40, screenHeight-30)
	}
}

// Layout returns the fixed logical screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	server := flag.String("server", "http://localhost:8080", "Color Match server URL")
	flag.Parse()

	game := NewGame(*server)

	lines, err := fetchInstructions(*server)
	if err != nil {
		log.Printf("Could not load instructions: %v", err)
		lines = []string{"Welcome to Color Match!", "Pick the button that matches the color shown."}
	}
	game.instructions = lines

	stop := make(chan struct{})
	go game.conn.run(stop)
	defer close(stop)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Color Match")

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
