package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), "GET", "/api/state", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api/state", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got: %v", err)
	}
}

func TestClient_apiCall_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "game not started"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.apiCall(context.Background(), "POST", "/api/select", map[string]string{"color": "red"}, nil)
	if err == nil || err.Error() != "game not started" {
		t.Errorf("Expected envelope message, got: %v", err)
	}
}

func TestClient_gameState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/state" {
			t.Errorf("Expected GET /api/state, got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(engine.GameState{
			Score: 4, Level: 1, Timer: 2, HighScore: 9,
			CurrentTarget: engine.Yellow, Started: true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleGameState(context.Background(), callRequest("game_state", nil))
	if err != nil {
		t.Fatal(err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Target: YELLOW", "Score: 4", "High score: 9", "Timer: 2s"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}
}

func TestClient_selectColor(t *testing.T) {
	var gotColor string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/select" {
			t.Errorf("Expected POST /api/select, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotColor = body["color"]

		json.NewEncoder(w).Encode(service.ActionResult{
			Correct:   true,
			GameState: &engine.GameState{Score: 5, Level: 2, Timer: 2, HighScore: 5, Started: true},
			Events: []engine.Event{
				{Type: engine.EventCorrect},
				{Type: engine.EventLevelUp, Level: 2, Timer: 2},
				{Type: engine.EventHighScore, Score: 5},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSelect(context.Background(), callRequest("select_color", map[string]interface{}{
		"color":  "green",
		"intent": "target is green",
	}))
	if err != nil {
		t.Fatal(err)
	}

	if gotColor != "green" {
		t.Errorf("Expected green forwarded, got %q", gotColor)
	}
	text := resultText(t, result)
	for _, want := range []string{"correct", "Level 2", "New high score: 5"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}
}

func TestClient_selectColorMissingArgument(t *testing.T) {
	client := NewClient("http://unused")
	result, err := client.handleSelect(context.Background(), callRequest("select_color", map[string]interface{}{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("Expected tool error for missing color")
	}
}

func TestClient_selectSequenceStopsOnMiss(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		correct := body["color"] == "red"
		score := calls
		if !correct {
			score = 0
		}
		json.NewEncoder(w).Encode(service.ActionResult{
			Correct:   correct,
			GameState: &engine.GameState{Score: score, Level: 1, Timer: 3, Started: true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSelectSequence(context.Background(), callRequest("select_sequence", map[string]interface{}{
		"colors": []interface{}{"red", "red", "blue", "red"},
	}))
	if err != nil {
		t.Fatal(err)
	}

	if calls != 3 {
		t.Errorf("Expected 3 picks before stopping, got %d", calls)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Executed 3/4 picks") || !strings.Contains(text, "Stopped on pick 3") {
		t.Errorf("Unexpected sequence output: %s", text)
	}
}

func TestClient_useConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/configs/relaxed/use" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "configuration not found"})
			return
		}
		json.NewEncoder(w).Encode(service.ActionResult{GameState: &engine.GameState{ConfigName: "relaxed", Timer: 6}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleUseConfig(ctx, callRequest("use_config", map[string]interface{}{"config_name": "relaxed"}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Preset: relaxed") {
		t.Errorf("Expected preset in output, got: %s", text)
	}

	result, err = client.handleUseConfig(ctx, callRequest("use_config", map[string]interface{}{"config_name": "nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("Expected tool error for unknown preset")
	}
}

func TestClient_listConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]*service.ConfigInfo{
			{ConfigID: "classic", Description: "original", StartTimer: 3, MinTimer: 1, LevelUpEvery: 5},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListConfigs(context.Background(), callRequest("list_configs", nil))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "- classic: original (timer 3s, min 1s, level every 5)") {
		t.Errorf("Unexpected list output: %s", text)
	}
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		CurrentTarget: engine.Red,
		Level:         1,
		Timer:         3,
		Message:       "Welcome to Color Match!",
	}

	result := formatGameState(state)
	for _, field := range []string{"Instructions screen", "Target: RED", "Welcome to Color Match!"} {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}

	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}
