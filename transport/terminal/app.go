package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/inconshreveable/log15"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
)

const (
	// PulseDuration is how long the target box stays dimmed after a point
	PulseDuration = 500 * time.Millisecond

	updateBuffer = 64
	frameRate    = 50 * time.Millisecond
)

// App is the terminal front end. It draws every session update and turns
// key presses into service calls.
type App struct {
	screen tcell.Screen
	game   service.GameService
	sound  Sound
	clock  clock.Clock
	log    log15.Logger

	updates chan session.Update

	state      *engine.GameState
	pulseUntil time.Time
	status     string
}

// Option configures an App
type Option func(*App)

// WithClock replaces the wall clock used for the pulse animation
func WithClock(c clock.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithSound sets the audio cues; Silent is the default
func WithSound(s Sound) Option {
	return func(a *App) { a.sound = s }
}

// NewApp creates a terminal front end on an initialized screen
func NewApp(screen tcell.Screen, game service.GameService, logger log15.Logger, opts ...Option) *App {
	a := &App{
		screen:  screen,
		game:    game,
		sound:   Silent{},
		clock:   clock.New(),
		log:     logger,
		updates: make(chan session.Update, updateBuffer),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Publish queues a session update for drawing. It never blocks and can be
// passed to session.Manager.Subscribe.
func (a *App) Publish(u session.Update) {
	select {
	case a.updates <- u:
	default:
		a.log.Warn("terminal is behind, dropping update")
	}
}

// Run draws and handles input until ctx ends or the player quits
func (a *App) Run(ctx context.Context) error {
	state, err := a.game.GetGameState(ctx)
	if err != nil {
		return err
	}
	a.state = state
	a.redraw(ctx)

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	frames := a.clock.Ticker(frameRate)
	defer frames.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if a.handleEvent(ctx, ev) {
				return nil
			}

		case u := <-a.updates:
			a.apply(u)
			a.redraw(ctx)

		case <-frames.C:
			// end of a pulse
			if !a.pulseUntil.IsZero() && !a.clock.Now().Before(a.pulseUntil) {
				a.pulseUntil = time.Time{}
				a.redraw(ctx)
			}
		}
	}
}

func (a *App) apply(u session.Update) {
	if u.State != nil {
		a.state = u.State
	}
	for _, ev := range u.Events {
		switch ev.Type {
		case engine.EventPulse:
			a.pulseUntil = a.clock.Now().Add(PulseDuration)
			a.sound.Pulse()
		case engine.EventLevelUp:
			a.sound.LevelUp()
		case engine.EventReset:
			if ev.Reason == engine.ResetMismatch || ev.Reason == engine.ResetTimeout {
				a.sound.Miss()
			}
		}
	}
}

// handleEvent reports whether the app should exit
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.redraw(ctx)

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyEnter:
			a.start(ctx)
		case tcell.KeyRune:
			return a.handleRune(ctx, ev.Rune())
		}
	}
	return false
}

func (a *App) handleRune(ctx context.Context, r rune) bool {
	switch r {
	case 'q':
		return true
	case ' ':
		a.start(ctx)
	case 'x':
		a.status = ""
		if _, err := a.game.Reset(ctx); err != nil {
			a.fail(ctx, err)
		}
	default:
		if color, ok := colorForKey(r); ok {
			a.selectColor(ctx, color)
		}
	}
	return false
}

func (a *App) start(ctx context.Context) {
	a.status = ""
	if _, err := a.game.Start(ctx); err != nil {
		a.fail(ctx, err)
	}
}

func (a *App) selectColor(ctx context.Context, color engine.Color) {
	_, err := a.game.Select(ctx, string(color))
	switch {
	case errors.Is(err, service.ErrNotStarted):
		a.status = "Press Enter to start"
		a.redraw(ctx)
	case err != nil:
		a.fail(ctx, err)
	default:
		a.status = ""
	}
}

func (a *App) fail(ctx context.Context, err error) {
	a.log.Warn("action failed", "err", err)
	a.status = err.Error()
	a.redraw(ctx)
}

func (a *App) redraw(ctx context.Context) {
	v := View{
		State:  a.state,
		Dimmed: !a.pulseUntil.IsZero() && a.clock.Now().Before(a.pulseUntil),
		Status: a.status,
	}
	if a.state != nil && !a.state.Started {
		v.Instructions, _ = a.game.GetInstructions(ctx)
	}
	Draw(a.screen, v)
}

// colorForKey maps the number row and the initials to colors
func colorForKey(r rune) (engine.Color, bool) {
	colors := engine.Colors()
	if r >= '1' && r < '1'+rune(len(colors)) {
		return colors[r-'1'], true
	}
	switch r {
	case 'r', 'R':
		return engine.Red, true
	case 'b', 'B':
		return engine.Blue, true
	case 'g', 'G':
		return engine.Green, true
	case 'y', 'Y':
		return engine.Yellow, true
	}
	return "", false
}
