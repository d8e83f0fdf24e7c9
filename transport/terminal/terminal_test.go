package terminal

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
	"github.com/wricardo/colormatch/logging"
)

const waitFor = 2 * time.Second

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(screen tcell.Screen, y int) string {
	width, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(screen tcell.Screen) string {
	_, height := screen.Size()
	var b strings.Builder
	for y := 0; y < height; y++ {
		b.WriteString(rowText(screen, y))
		b.WriteByte('\n')
	}
	return b.String()
}

func boxBackground(screen tcell.Screen) tcell.Color {
	width, _ := screen.Size()
	_, _, style, _ := screen.GetContent((width-boxWidth)/2+1, 7)
	_, bg, _ := style.Decompose()
	return bg
}

func TestDrawInstructions(t *testing.T) {
	screen := newScreen(t)

	Draw(screen, View{
		State:        &engine.GameState{Level: 1, Timer: 3, HighScore: 12, Phase: engine.PhaseInstructions},
		Instructions: engine.DefaultConfig().Messages.Instructions,
	})

	text := screenText(screen)
	for _, want := range []string{"COLOR MATCH", "Welcome to Color Match!", "High score: 12", "Press Enter to start"} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "1 RED", "buttons are hidden until start")
}

func TestDrawGame(t *testing.T) {
	screen := newScreen(t)
	state := &engine.GameState{
		Score: 4, Level: 1, Timer: 2, HighScore: 9,
		CurrentTarget: engine.Green, Started: true, Phase: engine.PhasePlaying,
		Message: "Correct!",
	}

	Draw(screen, View{State: state})

	text := screenText(screen)
	for _, want := range []string{"Score: 4", "High score: 9", "Level: 1", "Time: 2s", "1 RED", "2 BLUE", "3 GREEN", "4 YELLOW", "Correct!"} {
		assert.Contains(t, text, want)
	}
	assert.Equal(t, tcell.ColorGreen, boxBackground(screen))

	Draw(screen, View{State: state, Dimmed: true, Status: "oops"})
	assert.Equal(t, tcell.ColorDarkGreen, boxBackground(screen))
	assert.Contains(t, screenText(screen), "oops")
}

func TestDrawWithoutState(t *testing.T) {
	screen := newScreen(t)
	Draw(screen, View{})
	assert.Contains(t, screenText(screen), "waiting for game state")
}

func TestColorForKey(t *testing.T) {
	tests := []struct {
		key  rune
		want engine.Color
		ok   bool
	}{
		{'1', engine.Red, true},
		{'2', engine.Blue, true},
		{'3', engine.Green, true},
		{'4', engine.Yellow, true},
		{'5', "", false},
		{'r', engine.Red, true},
		{'B', engine.Blue, true},
		{'g', engine.Green, true},
		{'y', engine.Yellow, true},
		{'z', "", false},
	}
	for _, tt := range tests {
		got, ok := colorForKey(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("colorForKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToneLength(t *testing.T) {
	tn := newTone(440, 10*time.Millisecond, 0.5)
	want := sampleRate.N(10 * time.Millisecond)

	buf := make([][2]float64, 128)
	total := 0
	var last [2]float64
	for {
		n, ok := tn.Stream(buf)
		total += n
		for _, s := range buf[:n] {
			require.LessOrEqual(t, s[0], 0.5)
			require.GreaterOrEqual(t, s[0], -0.5)
		}
		if n > 0 {
			last = buf[n-1]
		}
		if !ok {
			break
		}
	}
	assert.Equal(t, want, total)
	assert.InDelta(t, 0, last[0], 0.01, "tone should fade out")
	assert.NoError(t, tn.Err())
}

func TestToneAboveNyquistIsSilent(t *testing.T) {
	tn := newTone(float64(sampleRate), 5*time.Millisecond, 0.5)

	buf := make([][2]float64, 64)
	total := 0
	for {
		n, ok := tn.Stream(buf)
		total += n
		for _, s := range buf[:n] {
			require.Zero(t, s[0])
		}
		if !ok {
			break
		}
	}
	assert.Equal(t, sampleRate.N(5*time.Millisecond), total)
}

// countingSound records the cues the app plays
type countingSound struct {
	mu                    sync.Mutex
	pulses, levels, miss int
}

func (s *countingSound) Pulse()   { s.mu.Lock(); s.pulses++; s.mu.Unlock() }
func (s *countingSound) LevelUp() { s.mu.Lock(); s.levels++; s.mu.Unlock() }
func (s *countingSound) Miss()    { s.mu.Lock(); s.miss++; s.mu.Unlock() }
func (s *countingSound) Close()   {}

func (s *countingSound) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses, s.levels, s.miss
}

// firstColor always targets red
type firstColor struct{}

func (firstColor) Intn(int) int { return 0 }

func TestAppPlaysThroughKeys(t *testing.T) {
	screen := newScreen(t)

	manager := session.NewManager(
		engine.NewEngineWithDefaults(firstColor{}),
		session.NewMemoryStore(nil),
		session.WithClock(clock.NewMock()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)
	<-manager.Loaded()

	appClock := clock.NewMock()
	sound := &countingSound{}
	app := NewApp(screen, service.NewGameService(manager, nil), logging.Discard(),
		WithClock(appClock), WithSound(sound))
	manager.Subscribe(app.Publish)

	errc := make(chan error, 1)
	go func() { errc <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(screenText(screen), "Press Enter to start")
	}, waitFor, 10*time.Millisecond)

	// Answers are ignored on the instructions screen
	screen.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	require.Eventually(t, func() bool {
		return strings.Contains(screenText(screen), "Press Enter to start") && manager.State().Score == 0
	}, waitFor, 10*time.Millisecond)

	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	require.Eventually(t, func() bool { return manager.State().Started }, waitFor, 10*time.Millisecond)

	screen.InjectKey(tcell.KeyRune, '1', tcell.ModNone)
	require.Eventually(t, func() bool {
		// box dims during the pulse
		return strings.Contains(screenText(screen), "Score: 1") && boxBackground(screen) == tcell.ColorMaroon
	}, waitFor, 10*time.Millisecond)

	appClock.Add(PulseDuration + frameRate)
	require.Eventually(t, func() bool {
		return boxBackground(screen) == tcell.ColorRed
	}, waitFor, 10*time.Millisecond)

	screen.InjectKey(tcell.KeyRune, 'b', tcell.ModNone)
	require.Eventually(t, func() bool { return manager.State().Score == 0 }, waitFor, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		pulses, _, miss := sound.counts()
		return pulses == 1 && miss == 1
	}, waitFor, 10*time.Millisecond)
	assert.Equal(t, 1, manager.State().HighScore)

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("app did not quit on escape")
	}
}
