package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/session"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	runtime SessionRuntime
	configs ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(runtime SessionRuntime, configs ConfigManager) GameService {
	return &gameServiceImpl{
		runtime: runtime,
		configs: configs,
	}
}

// Start leaves the instructions screen. Starting again restarts the round.
func (s *gameServiceImpl) Start(ctx context.Context) (*ActionResult, error) {
	u, err := s.runtime.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return newActionResult(u), nil
}

// Select validates the label and applies the answer
func (s *gameServiceImpl) Select(ctx context.Context, color string) (*ActionResult, error) {
	c, err := engine.ParseColor(color)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}

	if !s.runtime.State().Started {
		return nil, ErrNotStarted
	}

	u, err := s.runtime.Select(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to select color: %w", err)
	}
	return newActionResult(u), nil
}

// Reset starts a fresh round, keeping the high score
func (s *gameServiceImpl) Reset(ctx context.Context) (*ActionResult, error) {
	u, err := s.runtime.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}
	return newActionResult(u), nil
}

// GetGameState returns the latest snapshot
func (s *gameServiceImpl) GetGameState(ctx context.Context) (*engine.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.runtime.State(), nil
}

// GetInstructions returns the instruction lines of the active preset
func (s *gameServiceImpl) GetInstructions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines := s.runtime.Config().Messages.Instructions
	out := make([]string, len(lines))
	copy(out, lines)
	return out, nil
}

// ListColors returns the selectable labels in button order
func (s *gameServiceImpl) ListColors(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	colors := engine.Colors()
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = string(c)
	}
	return out, nil
}

// ListConfigs returns all available presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a preset by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig stores a new or updated preset. A preset without a name is
// named after the file it is saved to.
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if config == nil {
		return fmt.Errorf("failed to save config %q: no config given", configName)
	}
	if strings.TrimSpace(config.Name) == "" {
		config.Name = strings.TrimSuffix(configName, filepath.Ext(configName))
	}
	return s.configs.SaveConfig(configName, config)
}

// UseConfig switches the running session to another preset
func (s *gameServiceImpl) UseConfig(ctx context.Context, configName string) (*ActionResult, error) {
	cfg, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, err
	}

	u, err := s.runtime.SetConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to apply config %q: %w", configName, err)
	}
	return newActionResult(u), nil
}

func newActionResult(u session.Update) *ActionResult {
	result := &ActionResult{
		Correct:   u.HasEvent(engine.EventCorrect),
		GameState: u.State,
		Events:    u.Events,
	}
	if u.State != nil {
		result.Message = u.State.Message
	}
	return result
}
