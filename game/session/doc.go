// Package session runs the single Color Match game session.
//
// The session package implements:
//   - The session runtime (Manager) that serializes every state transition
//     through one event loop goroutine
//   - The one-second countdown as a cancellable scheduled task that is
//     re-issued after every transition
//   - The high score key-value store (file backed or in memory)
//   - Fire-and-forget persistence of new high scores
//   - Delivery of state snapshots and events to presentation listeners
//
// Core Types:
//
// Manager owns the engine.GameEngine and its countdown handle. HighScoreStore
// is the key-value collaborator; FileStore and MemoryStore implement it.
//
// Concurrency:
//
// Callers may use a Manager from any goroutine. Transitions requested through
// Start, Select, Reset and the countdown are queued to the loop started by Run
// and applied one at a time, so the engine itself needs no locking. State
// returns the latest published snapshot without touching the loop.
//
// Usage:
//
//	store, err := session.NewFileStore("data")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng := engine.NewEngineWithDefaults(rand.New(rand.NewSource(time.Now().UnixNano())))
//	manager := session.NewManager(eng, store)
//	go manager.Run(ctx)
//
//	manager.Subscribe(func(u session.Update) { render(u.State) })
//	manager.Start(ctx)
//	manager.Select(ctx, engine.Red)
//
// Persistence:
//
// The high score is loaded once when Run begins and written whenever the
// score beats it. Writes are never awaited by game logic and their failures
// are only logged; the in-memory value stays authoritative.
package session
