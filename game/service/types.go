package service

import (
	"github.com/wricardo/colormatch/game/engine"
)

// ActionResult contains the outcome of a player action
type ActionResult struct {
	Correct   bool              `json:"correct"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []engine.Event    `json:"events,omitempty"`
}

// ConfigInfo provides information about a difficulty preset
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to pass to UseConfig
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	StartTimer   int    `json:"start_timer"`
	MinTimer     int    `json:"min_timer"`
	LevelUpEvery int    `json:"level_up_every"`
}
