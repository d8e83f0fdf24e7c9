// Package websocket provides the WebSocket presentation layer for Color Match.
//
// The websocket package implements:
//   - Pushing state snapshots to every connected client
//   - Pushing discrete events (pulse, level_up, high_score, reset)
//   - Forwarding player inputs to the game service
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub goroutine owns the client set. Registration, removal and
// broadcasts all pass through its channels. Each client has a read pump and
// a write pump goroutine.
//
// Message Protocol:
//
// Outgoing messages are JSON objects, one per frame:
//   - {"event":"welcome","client_id":"..."}
//   - {"event":"state_update","game_state":{...}}
//   - {"event":"pulse","data":{...}} and the other event types
//   - {"event":"error","data":"..."}
//
// Incoming messages:
//   - {"action":"start"}
//   - {"action":"select","color":"red"}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	hub.SetInputHandler(gameService)
//	hub.SetSnapshotFunc(manager.State)
//	go hub.Run(ctx)
//
//	manager.Subscribe(hub.Publish)
//	http.HandleFunc("/ws", hub.ServeWS)
package websocket
