// Package mcp provides a Model Context Protocol server for Color Match.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get the target color, score, level and countdown
//   - start_game: Leave the instructions screen
//   - select_color: Pick one color
//   - select_sequence: Pick several colors in order
//   - reset_game: Start a fresh round
//   - list_colors: List the selectable colors
//   - list_configs: List difficulty presets
//   - use_config: Switch difficulty preset
//   - game_instructions: Get the rules
//
// Every tool proxies to the REST API, so the MCP server can run in a
// separate process from the game.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
