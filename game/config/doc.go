// Package config provides difficulty preset management for Color Match.
//
// The config package handles:
//   - Loading presets from JSON and YAML files
//   - Preset validation through engine.ValidateGameConfig
//   - Default preset selection with a built-in classic fallback
//   - Preset discovery, listing and saving
//
// Preset Format:
//
// Presets live in the configs directory as name.json, name.yaml or name.yml.
// Each preset defines:
//   - The starting countdown and its lower bound
//   - How many points make a level and how much faster each level gets
//   - The countdown period in milliseconds
//   - The instruction lines and feedback messages
//
// Fields missing from a file keep the classic values.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific preset
//	gameConfig, err := manager.LoadConfig("relaxed")
//
//	// Get default preset
//	defaultConfig := manager.GetDefault()
//
//	// List available presets
//	configs, err := manager.ListConfigs()
package config
