package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
)

// maxSequence bounds the colors accepted by select_sequence
const maxSequence = 50

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Color Match",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Color Match - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
A target color is shown. Pick the matching color before the countdown runs out.
A correct pick scores a point and restarts the countdown. A wrong pick or a
timeout resets score and level. Every few points the level rises and the
countdown gets shorter.

AVAILABLE TOOLS:
- game_state: Get current game state
- start_game: Leave the instructions screen (required before selecting)
- select_color: Answer with one color - requires intent explanation
- select_sequence: Answer several rounds in a row, stopping at the first miss
- reset_game: Start a fresh round (high score is kept)
- list_colors: List the selectable colors
- list_configs: List difficulty presets
- use_config: Switch to another difficulty preset
- game_instructions: Get the game rules

NOTE: The countdown keeps running between calls. Read the state and answer quickly.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	colorEnum := make([]string, 0, 4)
	for _, color := range engine.Colors() {
		colorEnum = append(colorEnum, string(color))
	}

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: target color, score, level, countdown and high score",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Leave the instructions screen and start playing. Calling it again restarts the round.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleStart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_color",
		Description: "Pick a color. Matching the target scores a point; anything else resets the score.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"color": map[string]interface{}{
					"type":        "string",
					"enum":        colorEnum,
					"description": "Color to pick",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why this color (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"color"},
		},
	}, c.handleSelect)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_sequence",
		Description: "Pick several colors in order, one per round. Stops at the first wrong pick.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"colors": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": colorEnum,
					},
					"description": "Colors to pick, in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the plan behind this sequence",
				},
			},
			Required: []string{"colors"},
		},
	}, c.handleSelectSequence)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset score, level and countdown. The high score is kept.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleReset)

	// Reference data
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_colors",
		Description: "List the selectable colors in button order",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListColors)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available difficulty presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "use_config",
		Description: "Switch the game to another difficulty preset. The current round is reset.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Preset id as returned by list_configs",
				},
			},
			Required: []string{"config_name"},
		},
	}, c.handleUseConfig)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules and the active preset's instructions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments, tolerating a missing object
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", "/api/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", "/api/start", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game started.\n\n" + formatGameState(result.GameState)), nil
}

func (c *Client) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	color := strings.TrimSpace(cast.ToString(args["color"]))
	if color == "" {
		return mcp.NewToolResultError("color is required"), nil
	}

	var result service.ActionResult
	body := map[string]string{"color": color}
	if err := c.apiCall(ctx, "POST", "/api/select", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(color, &result)), nil
}

func (c *Client) handleSelectSequence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	colors := cast.ToStringSlice(args["colors"])
	if len(colors) == 0 {
		return mcp.NewToolResultError("colors must be a non-empty array"), nil
	}

	truncated := false
	if len(colors) > maxSequence {
		colors = colors[:maxSequence]
		truncated = true
	}

	var b strings.Builder
	var last *service.ActionResult
	executed := 0

	for i, color := range colors {
		var result service.ActionResult
		if err := c.apiCall(ctx, "POST", "/api/select", map[string]string{"color": color}, &result); err != nil {
			if executed == 0 {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fmt.Fprintf(&b, "Stopped on pick %d (%s): %v\n", i+1, color, err)
			break
		}
		executed++
		last = &result

		mark := "✓"
		if !result.Correct {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s (score %d)\n", i+1, mark, color, result.GameState.Score)

		if !result.Correct {
			fmt.Fprintf(&b, "Stopped on pick %d: wrong color\n", i+1)
			break
		}
	}

	header := fmt.Sprintf("Executed %d/%d picks", executed, len(colors))
	if truncated {
		header += fmt.Sprintf(" (truncated to %d)", maxSequence)
	}

	out := header + "\n" + b.String()
	if last != nil {
		out += "\n" + formatGameState(last.GameState)
	}
	return mcp.NewToolResultText(out), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", "/api/reset", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game reset.\n\n" + formatGameState(resp.State)), nil
}

func (c *Client) handleListColors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Colors []string `json:"colors"`
	}
	if err := c.apiCall(ctx, "GET", "/api/colors", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Colors: " + strings.Join(resp.Colors, ", ")), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available presets:\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (timer %ds, min %ds, level every %d)\n",
			cfg.ConfigID, cfg.Description, cfg.StartTimer, cfg.MinTimer, cfg.LevelUpEvery)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleUseConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name := strings.TrimSpace(cast.ToString(args["config_name"]))
	if name == "" {
		return mcp.NewToolResultError("config_name is required"), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", "/api/configs/"+name+"/use", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Switched to %s.\n\n%s", name, formatGameState(result.GameState))), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Instructions []string `json:"instructions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/instructions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("COLOR MATCH\n\n")
	for _, line := range resp.Instructions {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(`
RULES:
1. Call start_game once to leave the instructions screen.
2. game_state shows the target color; select_color with the same color.
3. Correct: +1 point, new target, countdown restarts.
4. Wrong color or countdown reaching zero: score and level go back to start.
5. The high score survives resets and restarts of the server.
`)
	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	if !state.Started {
		b.WriteString("📋 Instructions screen (call start_game)\n")
	}
	fmt.Fprintf(&b, "Target: %s\n", strings.ToUpper(string(state.CurrentTarget)))
	fmt.Fprintf(&b, "Score: %d | High score: %d\n", state.Score, state.HighScore)
	fmt.Fprintf(&b, "Level: %d | Timer: %ds\n", state.Level, state.Timer)
	if state.ConfigName != "" {
		fmt.Fprintf(&b, "Preset: %s\n", state.ConfigName)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	return b.String()
}

func formatActionResult(color string, result *service.ActionResult) string {
	var b strings.Builder
	if result.Correct {
		fmt.Fprintf(&b, "✅ %s was correct!\n", color)
	} else {
		fmt.Fprintf(&b, "❌ %s was wrong.\n", color)
	}

	for _, ev := range result.Events {
		switch ev.Type {
		case engine.EventLevelUp:
			fmt.Fprintf(&b, "⬆️  Level %d! Timer is now %ds\n", ev.Level, ev.Timer)
		case engine.EventHighScore:
			fmt.Fprintf(&b, "🏆 New high score: %d\n", ev.Score)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}
