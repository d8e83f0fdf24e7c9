package service

import (
	"context"
	"errors"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/session"
)

var (
	ErrInvalidColor = errors.New("invalid color")
	ErrNotStarted   = errors.New("game not started")
)

// GameService defines all game-related operations
type GameService interface {
	// Game Operations
	Start(ctx context.Context) (*ActionResult, error)
	Select(ctx context.Context, color string) (*ActionResult, error)
	Reset(ctx context.Context) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context) (*engine.GameState, error)
	GetInstructions(ctx context.Context) ([]string, error)
	ListColors(ctx context.Context) ([]string, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	UseConfig(ctx context.Context, configName string) (*ActionResult, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionRuntime is the running game session
type SessionRuntime interface {
	State() *engine.GameState
	Config() *engine.GameConfig
	Start(ctx context.Context) (session.Update, error)
	Select(ctx context.Context, color engine.Color) (session.Update, error)
	Reset(ctx context.Context) (session.Update, error)
	SetConfig(ctx context.Context, config *engine.GameConfig) (session.Update, error)
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}
