package engine

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Messages holds the player-facing texts of a configuration
type Messages struct {
	Instructions []string `json:"instructions" yaml:"instructions"`
	Correct      string   `json:"correct" yaml:"correct"`
	Wrong        string   `json:"wrong" yaml:"wrong"`
	Timeout      string   `json:"timeout" yaml:"timeout"`
	LevelUp      string   `json:"level_up" yaml:"level_up"`
	NewHighScore string   `json:"new_high_score" yaml:"new_high_score"`
	Start        string   `json:"start" yaml:"start"`
}

// GameConfig represents a difficulty preset
type GameConfig struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	StartTimer     int      `json:"start_timer" yaml:"start_timer"`
	LevelUpEvery   int      `json:"level_up_every" yaml:"level_up_every"`
	TimerPenalty   int      `json:"timer_penalty" yaml:"timer_penalty"`
	MinTimer       int      `json:"min_timer" yaml:"min_timer"`
	TickIntervalMs int      `json:"tick_interval_ms" yaml:"tick_interval_ms"`
	Messages       Messages `json:"messages" yaml:"messages"`
}

// TickInterval returns the countdown period as a duration
func (c *GameConfig) TickInterval() time.Duration {
	if c == nil || c.TickIntervalMs <= 0 {
		return DefaultTickIntervalMs * time.Millisecond
	}
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// DefaultConfig returns the classic preset
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Three seconds per color, faster every five points",
		StartTimer:     DefaultStartTimer,
		LevelUpEvery:   DefaultLevelUpEvery,
		TimerPenalty:   DefaultTimerPenalty,
		MinTimer:       DefaultMinTimer,
		TickIntervalMs: DefaultTickIntervalMs,
		Messages: Messages{
			Instructions: []string{
				"Welcome to Color Match!",
				"Tap the button that matches the color shown.",
				"Correct = Score up | Wrong = Reset",
				"Levels increase every 5 points. Timer gets faster!",
			},
			Correct:      "Correct!",
			Wrong:        "Wrong color! Back to zero.",
			Timeout:      "Too slow! Time ran out.",
			LevelUp:      "Level %d!",
			NewHighScore: "New high score: %d",
			Start:        "Go!",
		},
	}
}

// ValidateGameConfig validates a game configuration and reports every problem at once
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config cannot be nil")
	}

	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("config validation: "+format, args...))
	}

	if strings.TrimSpace(config.Name) == "" {
		add("name is required")
	}

	if config.StartTimer < 1 || config.StartTimer > MaxStartTimer {
		add("start_timer must be between 1 and %d, got %d", MaxStartTimer, config.StartTimer)
	}
	if config.MinTimer < 1 {
		add("min_timer must be at least 1, got %d", config.MinTimer)
	}
	if config.MinTimer > config.StartTimer {
		add("min_timer (%d) cannot exceed start_timer (%d)", config.MinTimer, config.StartTimer)
	}
	if config.LevelUpEvery < 1 {
		add("level_up_every must be at least 1, got %d", config.LevelUpEvery)
	}
	if config.TimerPenalty < 0 {
		add("timer_penalty cannot be negative, got %d", config.TimerPenalty)
	}
	if config.TickIntervalMs < MinTickIntervalMs || config.TickIntervalMs > MaxTickIntervalMs {
		add("tick_interval_ms must be between %d and %d, got %d", MinTickIntervalMs, MaxTickIntervalMs, config.TickIntervalMs)
	}

	if len(config.Messages.Instructions) == 0 {
		add("messages.instructions needs at least one line")
	}
	if config.Messages.LevelUp != "" && !hasSingleIntVerb(config.Messages.LevelUp) {
		add("messages.level_up must contain %%d exactly once and no other verbs")
	}
	if config.Messages.NewHighScore != "" && !hasSingleIntVerb(config.Messages.NewHighScore) {
		add("messages.new_high_score must contain %%d exactly once and no other verbs")
	}

	return errs
}
