package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
)

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	fast := engine.DefaultConfig()
	fast.Name = "fast"
	fast.StartTimer = 2

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": engine.DefaultConfig(),
			"fast":    fast,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	cfg, ok := m.configs[name]
	if !ok {
		return nil, errors.New("configuration not found")
	}
	return cfg, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var infos []*service.ConfigInfo
	for id, cfg := range m.configs {
		infos = append(infos, &service.ConfigInfo{ConfigID: id, Name: cfg.Name})
	}
	return infos, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

// zeroRand always targets the first color
type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

func createTestService(t *testing.T) service.GameService {
	t.Helper()

	manager := session.NewManager(
		engine.NewEngineWithDefaults(zeroRand{}),
		session.NewMemoryStore(nil),
		session.WithClock(clock.NewMock()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-manager.Done()
	})
	<-manager.Loaded()

	return service.NewGameService(manager, NewMockConfigManager())
}

func TestSelectBeforeStart(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	_, err := svc.Select(ctx, "red")
	if !errors.Is(err, service.ErrNotStarted) {
		t.Fatalf("Expected ErrNotStarted, got %v", err)
	}

	state, _ := svc.GetGameState(ctx)
	if state.Score != 0 || state.Started {
		t.Errorf("Rejected select must not change state: %+v", state)
	}
}

func TestSelectInvalidColor(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for _, label := range []string{"purple", "", "r"} {
		_, err := svc.Select(ctx, label)
		if !errors.Is(err, service.ErrInvalidColor) {
			t.Errorf("Select(%q): expected ErrInvalidColor, got %v", label, err)
		}
	}
}

func TestStartAndSelect(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	result, err := svc.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !result.GameState.Started || result.GameState.Phase != engine.PhasePlaying {
		t.Errorf("Expected playing phase after start, got %+v", result.GameState)
	}

	result, err = svc.Select(ctx, "RED")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !result.Correct {
		t.Error("Expected correct answer")
	}
	if result.GameState.Score != 1 {
		t.Errorf("Expected score 1, got %d", result.GameState.Score)
	}
	if result.Message != "Correct!" {
		t.Errorf("Expected message 'Correct!', got %q", result.Message)
	}

	result, err = svc.Select(ctx, "blue")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if result.Correct {
		t.Error("Expected wrong answer")
	}
	if result.GameState.Score != 0 || result.GameState.HighScore != 1 {
		t.Errorf("Expected score 0 / high 1, got %d / %d", result.GameState.Score, result.GameState.HighScore)
	}
}

func TestLevelProgression(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}

	var result *service.ActionResult
	var err error
	for i := 0; i < 5; i++ {
		result, err = svc.Select(ctx, "red")
		if err != nil {
			t.Fatal(err)
		}
	}

	state := result.GameState
	if state.Score != 5 || state.Level != 2 || state.Timer != 2 {
		t.Errorf("Expected 5/2/2, got %d/%d/%d", state.Score, state.Level, state.Timer)
	}
}

func TestReset(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	svc.Start(ctx)
	svc.Select(ctx, "red")

	result, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if result.GameState.Score != 0 || result.GameState.HighScore != 1 || !result.GameState.Started {
		t.Errorf("Unexpected state after reset: %+v", result.GameState)
	}
	if len(result.Events) != 1 || result.Events[0].Reason != engine.ResetManual {
		t.Errorf("Expected one manual reset event, got %+v", result.Events)
	}
}

func TestInstructionsAndColors(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	lines, err := svc.GetInstructions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 4 || lines[0] != "Welcome to Color Match!" {
		t.Errorf("Unexpected instructions: %v", lines)
	}

	colors, err := svc.ListColors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"red", "blue", "green", "yellow"}
	if len(colors) != len(want) {
		t.Fatalf("Expected %d colors, got %d", len(want), len(colors))
	}
	for i := range want {
		if colors[i] != want[i] {
			t.Errorf("Color %d: expected %s, got %s", i, want[i], colors[i])
		}
	}
}

func TestUseConfig(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	result, err := svc.UseConfig(ctx, "fast")
	if err != nil {
		t.Fatalf("UseConfig failed: %v", err)
	}
	if result.GameState.ConfigName != "fast" || result.GameState.Timer != 2 {
		t.Errorf("Expected fast preset with timer 2, got %+v", result.GameState)
	}

	if _, err := svc.UseConfig(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown config")
	}

	configs, err := svc.ListConfigs(ctx)
	if err != nil || len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d (%v)", len(configs), err)
	}
}

func TestSaveConfig(t *testing.T) {
	svc := createTestService(t)
	ctx := context.Background()

	custom := engine.DefaultConfig()
	custom.Name = ""
	custom.StartTimer = 4
	if err := svc.SaveConfig(ctx, "custom", custom); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := svc.LoadConfig(ctx, "custom")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Name != "custom" || loaded.StartTimer != 4 {
		t.Errorf("Expected saved preset named custom with timer 4, got %+v", loaded)
	}

	result, err := svc.UseConfig(ctx, "custom")
	if err != nil {
		t.Fatalf("UseConfig failed: %v", err)
	}
	if result.GameState.Timer != 4 {
		t.Errorf("Expected timer 4 after switching, got %d", result.GameState.Timer)
	}

	if err := svc.SaveConfig(ctx, "empty", nil); err == nil {
		t.Error("Expected error for nil config")
	}
}
