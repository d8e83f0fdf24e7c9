// Package api provides HTTP REST API handlers for Color Match.
//
// The api package implements:
//   - RESTful endpoints for the game session
//   - Preset listing and selection
//   - WebSocket upgrade handling
//   - Static file serving for the browser client
//
// Endpoints:
//
// Game Operations:
//   - GET /api/state - Get the current snapshot
//   - POST /api/start - Leave the instructions screen (or restart)
//   - POST /api/select - Answer with {"color": "red"}
//   - POST /api/reset - Start a fresh round
//
// Presentation:
//   - GET /api/colors - Button labels in display order
//   - GET /api/instructions - Instruction lines of the active preset
//
// Configuration:
//   - GET /api/configs - List available presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs/{name}/use - Switch the session to a preset
//
// Usage:
//
//	server := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// An unknown color is 400, selecting before start is 409, an unknown preset
// is 404.
package api
