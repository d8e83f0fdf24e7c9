// Package service provides the business logic layer for Color Match.
//
// The service package implements:
//   - Input validation for color labels
//   - Guarding the answer buttons until the player has started
//   - Preset discovery and switching
//   - Instructions and color listings for presentation layers
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST, WebSocket, MCP
// and terminal front ends. SessionRuntime is the running session it drives
// (implemented by session.Manager). ConfigManager loads difficulty presets.
//
// Usage:
//
//	configMgr, _ := config.NewManager("configs")
//	manager := session.NewManager(eng, store)
//	go manager.Run(ctx)
//
//	gameService := service.NewGameService(manager, configMgr)
//	result, err := gameService.Select(ctx, "red")
//	if errors.Is(err, service.ErrNotStarted) {
//		// still on the instructions screen
//	}
package service
