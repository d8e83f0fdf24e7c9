// Package engine provides the core game logic for the Color Match game.
//
// The engine package implements the game mechanics including:
//   - The fixed color set and random target selection
//   - Score, level and countdown timer progression
//   - Reset rules for wrong answers and expired timers
//   - High score tracking
//   - Difficulty configuration and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the complete mutable state of one
// play-through, while GameConfig defines the difficulty knobs and the
// player-facing messages.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(), rand.New(rand.NewSource(1)))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Start()
//	events := gameEngine.Select(gameEngine.GetState().CurrentTarget)
//	state := gameEngine.GetState()
//
// Game Rules:
//
// A target color is shown and the player taps the matching button before the
// countdown runs out. Every correct answer scores a point and restarts the
// countdown; every fifth point raises the level and shortens the countdown.
// A wrong answer or an expired countdown resets score, level and timer. The
// high score survives resets.
//
// The engine is synchronous and holds no goroutines: callers serialize access
// and own the one-second ticker and the high score persistence.
package engine
