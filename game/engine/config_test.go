package engine

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func createValidConfig() *GameConfig {
	config := DefaultConfig()
	config.Name = "Test Config"
	config.Description = "A valid test configuration"
	return config
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateGameConfig_Fields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "  " }, "name is required"},
		{"zero start timer", func(c *GameConfig) { c.StartTimer = 0 }, "start_timer"},
		{"huge start timer", func(c *GameConfig) { c.StartTimer = MaxStartTimer + 1 }, "start_timer"},
		{"zero min timer", func(c *GameConfig) { c.MinTimer = 0 }, "min_timer must be at least 1"},
		{"min above start", func(c *GameConfig) { c.MinTimer = 5 }, "cannot exceed start_timer"},
		{"zero level up", func(c *GameConfig) { c.LevelUpEvery = 0 }, "level_up_every"},
		{"negative penalty", func(c *GameConfig) { c.TimerPenalty = -1 }, "timer_penalty"},
		{"fast tick", func(c *GameConfig) { c.TickIntervalMs = 10 }, "tick_interval_ms"},
		{"slow tick", func(c *GameConfig) { c.TickIntervalMs = MaxTickIntervalMs + 1 }, "tick_interval_ms"},
		{"no instructions", func(c *GameConfig) { c.Messages.Instructions = nil }, "instructions"},
		{"level up format", func(c *GameConfig) { c.Messages.LevelUp = "Level up!" }, "messages.level_up"},
		{"high score format", func(c *GameConfig) { c.Messages.NewHighScore = "Record!" }, "messages.new_high_score"},
		{"level up second verb", func(c *GameConfig) { c.Messages.LevelUp = "Level %d of %d" }, "messages.level_up"},
		{"level up other verb", func(c *GameConfig) { c.Messages.LevelUp = "Level %s" }, "messages.level_up"},
		{"high score width flag", func(c *GameConfig) { c.Messages.NewHighScore = "Best: %5d" }, "messages.new_high_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)

			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateGameConfig_ReportsAllProblems(t *testing.T) {
	config := createValidConfig()
	config.Name = ""
	config.LevelUpEvery = 0
	config.TickIntervalMs = 0

	err := ValidateGameConfig(config)
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	if got := len(multierr.Errors(err)); got != 3 {
		t.Errorf("Expected 3 aggregated errors, got %d: %v", got, err)
	}
}

func TestDefaultConfigMatchesClassicRules(t *testing.T) {
	config := DefaultConfig()

	if config.StartTimer != 3 || config.LevelUpEvery != 5 || config.TimerPenalty != 1 || config.MinTimer != 1 {
		t.Errorf("Unexpected classic knobs: %+v", config)
	}
	if config.TickInterval() != time.Second {
		t.Errorf("Expected one second ticks, got %v", config.TickInterval())
	}
}

func TestTickIntervalFallback(t *testing.T) {
	var nilConfig *GameConfig
	if nilConfig.TickInterval() != time.Second {
		t.Errorf("Expected default interval for nil config")
	}

	config := createValidConfig()
	config.TickIntervalMs = 250
	if config.TickInterval() != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", config.TickInterval())
	}
}


func TestFormatMessage(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"Level %d!", "Level 4!"},
		{"100%% focus, level %d", "100% focus, level 4"},
		{"Level up!", "Level up!"},
		{"Level %d of %d", "Level %d of %d"},
		{"Level %s", "Level %s"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := formatMessage(tt.format, 4); got != tt.want {
			t.Errorf("formatMessage(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestValidateGameConfig_EscapedPercent(t *testing.T) {
	config := createValidConfig()
	config.Messages.LevelUp = "100%% speed, level %d"
	if err := ValidateGameConfig(config); err != nil {
		t.Errorf("Expected escaped percent to be accepted, got %v", err)
	}
}
