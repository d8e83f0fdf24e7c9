package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// RandomSource provides the uniform draws used for target selection.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Initialize() *GameState
	Start() []Event
	Reset() *GameState
	LoadHighScore(raw string) bool

	// Transitions
	Tick() []Event
	Select(color Color) []Event

	// Queries
	GetScore() int
	GetLevel() int
	GetTimer() int
	GetHighScore() int
	GetCurrentTarget() Color
	IsStarted() bool

	// Configuration
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    RandomSource
}

// NewEngine creates a new game engine with the provided configuration and random source
func NewEngine(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}

	engine := &GameEngine{
		config: config,
		rng:    rng,
	}
	engine.Initialize()

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults(rng RandomSource) *GameEngine {
	engine := &GameEngine{
		config: DefaultConfig(),
		rng:    rng,
	}
	engine.Initialize()
	return engine
}

// GetState returns a copy of the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state.Clone()
}

// Initialize puts the engine in its launch state: instructions on screen,
// a fresh countdown, and no known high score yet.
func (e *GameEngine) Initialize() *GameState {
	e.state = &GameState{
		Score:         0,
		Level:         1,
		Timer:         e.config.StartTimer,
		CurrentTarget: e.randomColor(),
		HighScore:     0,
		Started:       false,
		Phase:         PhaseInstructions,
		ConfigName:    e.config.Name,
		BestLevel:     1,
	}
	if len(e.config.Messages.Instructions) > 0 {
		e.state.Message = e.config.Messages.Instructions[0]
	}
	return e.GetState()
}

// LoadHighScore applies a persisted high score. Values that are not a plain
// non-negative base-10 integer are ignored. The loaded value never lowers a
// high score already reached in this process.
func (e *GameEngine) LoadHighScore(raw string) bool {
	value, ok := ParseHighScore(raw)
	if !ok {
		return false
	}
	if value > e.state.HighScore {
		e.state.HighScore = value
	}
	return true
}

// Start leaves the instructions screen and begins a fresh round
func (e *GameEngine) Start() []Event {
	e.state.Started = true
	e.state.Phase = PhasePlaying

	events := []Event{e.event(EventStart, e.config.Messages.Start)}
	events = append(events, e.reset(ResetStart))
	e.state.Message = e.config.Messages.Start
	return events
}

// Reset resets score, level, timer and target. High score, started flag and
// statistics are preserved.
func (e *GameEngine) Reset() *GameState {
	e.reset(ResetManual)
	return e.GetState()
}

// Tick advances the countdown by one period. When the countdown reaches
// zero the round is lost exactly like a wrong answer.
func (e *GameEngine) Tick() []Event {
	if e.state.Timer > 0 {
		e.state.Timer--
	}

	events := []Event{e.event(EventTick, "")}
	if e.state.Timer == 0 {
		e.state.Rounds++
		events = append(events, e.reset(ResetTimeout))
		e.state.Message = e.config.Messages.Timeout
	}
	return events
}

// Select applies the player's answer
func (e *GameEngine) Select(color Color) []Event {
	if color != e.state.CurrentTarget {
		e.state.Rounds++
		ev := e.reset(ResetMismatch)
		e.state.Message = e.config.Messages.Wrong
		return []Event{ev}
	}

	e.state.Score++
	e.state.TotalCorrect++
	e.state.CurrentTarget = e.randomColor()
	e.state.Timer = e.config.StartTimer
	e.state.Message = e.config.Messages.Correct

	events := []Event{e.event(EventCorrect, e.config.Messages.Correct)}

	if e.state.Score%e.config.LevelUpEvery == 0 {
		e.state.Level++
		e.state.Timer = clampMin(e.state.Timer-e.config.TimerPenalty, e.config.MinTimer)
		if e.state.Level > e.state.BestLevel {
			e.state.BestLevel = e.state.Level
		}
		msg := formatMessage(e.config.Messages.LevelUp, e.state.Level)
		e.state.Message = msg
		events = append(events, e.event(EventLevelUp, msg))
	}

	if e.state.Score > e.state.HighScore {
		e.state.HighScore = e.state.Score
		events = append(events, e.event(EventHighScore, formatMessage(e.config.Messages.NewHighScore, e.state.HighScore)))
	}

	events = append(events, e.event(EventPulse, ""))
	return events
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetLevel returns the current level
func (e *GameEngine) GetLevel() int {
	return e.state.Level
}

// GetTimer returns the seconds left on the countdown
func (e *GameEngine) GetTimer() int {
	return e.state.Timer
}

// GetHighScore returns the best score known to this process
func (e *GameEngine) GetHighScore() int {
	return e.state.HighScore
}

// GetCurrentTarget returns the color the player has to match
func (e *GameEngine) GetCurrentTarget() Color {
	return e.state.CurrentTarget
}

// IsStarted returns whether the player has left the instructions screen
func (e *GameEngine) IsStarted() bool {
	return e.state.Started
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig swaps the difficulty preset. The running round is reset so the
// new countdown applies immediately; high score and statistics are kept.
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	e.config = config
	e.state.ConfigName = config.Name
	e.reset(ResetManual)
	return nil
}

func (e *GameEngine) reset(reason ResetReason) Event {
	e.state.Score = 0
	e.state.Level = 1
	e.state.Timer = e.config.StartTimer
	e.state.CurrentTarget = e.randomColor()
	return Event{
		Type:   EventReset,
		Reason: reason,
		Score:  e.state.Score,
		Level:  e.state.Level,
		Timer:  e.state.Timer,
		Color:  e.state.CurrentTarget,
	}
}

func (e *GameEngine) event(t EventType, msg string) Event {
	return Event{
		Type:    t,
		Score:   e.state.Score,
		Level:   e.state.Level,
		Timer:   e.state.Timer,
		Color:   e.state.CurrentTarget,
		Message: msg,
	}
}

func (e *GameEngine) randomColor() Color {
	return colorSet[e.rng.Intn(len(colorSet))]
}

// ParseHighScore parses a persisted high score
func ParseHighScore(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
