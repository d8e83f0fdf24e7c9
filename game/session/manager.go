package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/inconshreveable/log15"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/logging"
)

var (
	ErrManagerStopped = errors.New("session manager stopped")
	ErrManagerRunning = errors.New("session manager already running")
)

// DefaultPersistTimeout bounds a single high score write
const DefaultPersistTimeout = 5 * time.Second

// Update is delivered to listeners after every transition
type Update struct {
	State  *engine.GameState `json:"state"`
	Events []engine.Event    `json:"events,omitempty"`
}

// HasEvent reports whether the update carries an event of type t
func (u Update) HasEvent(t engine.EventType) bool {
	for _, ev := range u.Events {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// Listener receives updates on the manager loop. It must not block and must
// not call back into the manager synchronously.
type Listener func(Update)

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces the wall clock, mostly for tests
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the logger used for lifecycle and persistence messages
func WithLogger(l log15.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithPersistTimeout bounds each high score write
func WithPersistTimeout(d time.Duration) Option {
	return func(m *Manager) { m.persistTimeout = d }
}

type subscriber struct {
	id int
	fn Listener
}

// Manager owns the game engine and serializes every transition on one loop
type Manager struct {
	engine *engine.GameEngine
	store  HighScoreStore
	clock  clock.Clock
	log    log15.Logger

	actions chan func()
	done    chan struct{}
	loaded  chan struct{}
	state   atomic.Int32

	// owned by the loop
	countdown  *clock.Timer
	generation uint64

	snapshot atomic.Pointer[engine.GameState]
	config   atomic.Pointer[engine.GameConfig]

	subMu  sync.RWMutex
	subs   []subscriber
	nextID int

	persistWG      sync.WaitGroup
	persistMu      sync.Mutex
	persisted      int
	persistTimeout time.Duration
}

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// NewManager creates a manager around an initialized engine. A nil store
// keeps the high score in memory only.
func NewManager(eng *engine.GameEngine, store HighScoreStore, opts ...Option) *Manager {
	if store == nil {
		store = NewMemoryStore(nil)
	}

	m := &Manager{
		engine:         eng,
		store:          store,
		clock:          clock.New(),
		log:            logging.Discard(),
		actions:        make(chan func()),
		done:           make(chan struct{}),
		loaded:         make(chan struct{}),
		persistTimeout: DefaultPersistTimeout,
		persisted:      -1,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.snapshot.Store(eng.GetState())
	m.config.Store(eng.GetConfig())
	return m
}

// Run processes transitions until ctx is cancelled. The stored high score is
// requested when Run begins and applied whenever it arrives.
func (m *Manager) Run(ctx context.Context) error {
	if !m.state.CompareAndSwap(stateIdle, stateRunning) {
		if m.state.Load() == stateStopped {
			return ErrManagerStopped
		}
		return ErrManagerRunning
	}

	m.log.Debug("session loop started", "config", m.engine.GetConfig().Name)
	go m.loadHighScore(ctx)

	defer func() {
		m.stopCountdown()
		m.state.Store(stateStopped)
		close(m.done)
		m.log.Debug("session loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-m.actions:
			fn()
		}
	}
}

// Loaded is closed once the stored high score has been applied or the read
// has failed.
func (m *Manager) Loaded() <-chan struct{} {
	return m.loaded
}

// Done is closed when Run returns
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// State returns the latest published snapshot
func (m *Manager) State() *engine.GameState {
	return m.snapshot.Load().Clone()
}

// Config returns the active preset
func (m *Manager) Config() *engine.GameConfig {
	return m.config.Load()
}

// Subscribe registers a listener and returns a function that removes it
func (m *Manager) Subscribe(l Listener) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: l})

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Start leaves the instructions screen and arms the countdown
func (m *Manager) Start(ctx context.Context) (Update, error) {
	return m.do(ctx, func() Update {
		events := m.engine.Start()
		m.log.Info("game started", "config", m.engine.GetConfig().Name)
		return m.commit(events, true)
	})
}

// Select applies the player's answer
func (m *Manager) Select(ctx context.Context, color engine.Color) (Update, error) {
	return m.do(ctx, func() Update {
		events := m.engine.Select(color)
		return m.commit(events, true)
	})
}

// Reset starts a fresh round without touching the high score
func (m *Manager) Reset(ctx context.Context) (Update, error) {
	return m.do(ctx, func() Update {
		state := m.engine.Reset()
		ev := engine.Event{
			Type:   engine.EventReset,
			Reason: engine.ResetManual,
			Score:  state.Score,
			Level:  state.Level,
			Timer:  state.Timer,
			Color:  state.CurrentTarget,
		}
		return m.commit([]engine.Event{ev}, true)
	})
}

// SetConfig swaps the preset and resets the round
func (m *Manager) SetConfig(ctx context.Context, config *engine.GameConfig) (Update, error) {
	var cfgErr error
	u, err := m.do(ctx, func() Update {
		if cfgErr = m.engine.SetConfig(config); cfgErr != nil {
			return Update{State: m.engine.GetState()}
		}
		m.config.Store(config)
		m.log.Info("config changed", "config", config.Name)
		state := m.engine.GetState()
		ev := engine.Event{
			Type:   engine.EventReset,
			Reason: engine.ResetManual,
			Score:  state.Score,
			Level:  state.Level,
			Timer:  state.Timer,
			Color:  state.CurrentTarget,
		}
		return m.commit([]engine.Event{ev}, true)
	})
	if err != nil {
		return u, err
	}
	return u, cfgErr
}

// Flush waits for in-flight high score writes
func (m *Manager) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.persistWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) do(ctx context.Context, fn func() Update) (Update, error) {
	reply := make(chan Update, 1)
	select {
	case m.actions <- func() { reply <- fn() }:
	case <-m.done:
		return Update{}, ErrManagerStopped
	case <-ctx.Done():
		return Update{}, ctx.Err()
	}
	// the loop runs fn before it can observe cancellation again
	return <-reply, nil
}

func (m *Manager) post(fn func()) bool {
	select {
	case m.actions <- fn:
		return true
	case <-m.done:
		return false
	}
}

// commit publishes the engine state after a transition. While the game is
// started the countdown is replaced so no stale period survives.
func (m *Manager) commit(events []engine.Event, rearm bool) Update {
	if rearm && m.engine.IsStarted() {
		m.armCountdown()
	}

	state := m.engine.GetState()
	m.snapshot.Store(state)

	for _, ev := range events {
		switch ev.Type {
		case engine.EventHighScore:
			m.persistHighScore(state.HighScore)
		case engine.EventLevelUp:
			m.log.Info("level up", "level", ev.Level, "timer", ev.Timer)
		case engine.EventReset:
			if ev.Reason == engine.ResetMismatch || ev.Reason == engine.ResetTimeout {
				m.log.Debug("round lost", "reason", ev.Reason, "rounds", state.Rounds)
			}
		}
	}

	u := Update{State: state, Events: events}
	m.notify(u)
	return u
}

func (m *Manager) notify(u Update) {
	m.subMu.RLock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.subMu.RUnlock()

	for _, s := range subs {
		s.fn(Update{State: u.State.Clone(), Events: u.Events})
	}
}

func (m *Manager) armCountdown() {
	m.stopCountdown()
	m.generation++
	gen := m.generation
	m.countdown = m.clock.AfterFunc(m.engine.GetConfig().TickInterval(), func() {
		m.post(func() { m.tick(gen) })
	})
}

func (m *Manager) stopCountdown() {
	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
}

func (m *Manager) tick(gen uint64) {
	if gen != m.generation || !m.engine.IsStarted() {
		return
	}
	m.commit(m.engine.Tick(), true)
}

func (m *Manager) loadHighScore(ctx context.Context) {
	raw, ok, err := m.store.Get(ctx, engine.HighScoreKey)
	if err != nil {
		m.log.Warn("failed to load high score", "err", err)
	}

	applied := m.post(func() {
		defer close(m.loaded)
		if err != nil || !ok {
			return
		}
		if !m.engine.LoadHighScore(raw) {
			m.log.Warn("ignoring stored high score", "value", raw)
			return
		}
		m.log.Debug("high score loaded", "score", m.engine.GetHighScore())
		m.commit(nil, false)
	})
	if !applied {
		close(m.loaded)
	}
}

// persistHighScore writes in the background. Writes are applied in order of
// value so a slow older write never overwrites a newer score.
func (m *Manager) persistHighScore(score int) {
	m.persistWG.Add(1)
	go func() {
		defer m.persistWG.Done()

		m.persistMu.Lock()
		defer m.persistMu.Unlock()
		if score <= m.persisted {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.persistTimeout)
		defer cancel()

		if err := m.store.Set(ctx, engine.HighScoreKey, strconv.Itoa(score)); err != nil {
			m.log.Warn("failed to save high score", "score", score, "err", err)
			return
		}
		m.persisted = score
		m.log.Debug("high score saved", "score", score)
	}()
}
