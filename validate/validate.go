// Command validate provides a small CLI that validates difficulty presets
// (JSON or YAML) in the ../configs directory. It checks:
//   - Document structure, rejecting unknown keys
//   - Timer knobs (start, minimum, penalty, level step, tick interval)
//   - Required player-facing messages and their %d placeholders
//   - Duplicate preset ids across file extensions
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/colormatch/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// decodeStrict parses a preset over the defaults and rejects unknown keys
func decodeStrict(filePath string, data []byte) (*engine.GameConfig, error) {
	config := engine.DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return config, nil
}

// validateConfig loads and validates a single preset file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := decodeStrict(filePath, data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	for _, e := range multierr.Errors(engine.ValidateGameConfig(config)) {
		result.fail("%s", strings.TrimPrefix(e.Error(), "config validation: "))
	}

	// Messages the game shows on every round
	required := map[string]string{
		"correct": config.Messages.Correct,
		"wrong":   config.Messages.Wrong,
		"timeout": config.Messages.Timeout,
		"start":   config.Messages.Start,
	}
	keys := make([]string, 0, len(required))
	for k := range required {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(required[k]) == "" {
			result.fail("Missing required message: %s", k)
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Timer: %d, minimum %d, penalty %d", config.StartTimer, config.MinTimer, config.TimerPenalty))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Level up every %d points", config.LevelUpEvery))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Tick interval: %s", config.TickInterval()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Instructions: %d lines", len(config.Messages.Instructions)))
	}

	return result
}

// presetFiles returns every preset file in dir, sorted
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// duplicateIDs reports preset ids that appear under more than one extension
func duplicateIDs(files []string) []string {
	seen := map[string][]string{}
	for _, f := range files {
		base := filepath.Base(f)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		seen[id] = append(seen[id], base)
	}

	var dups []string
	for id, names := range seen {
		if len(names) > 1 {
			dups = append(dups, fmt.Sprintf("Preset %q is defined more than once: %s", id, strings.Join(names, ", ")))
		}
	}
	sort.Strings(dups)
	return dups
}

// main scans ../configs (or the directory given as first argument) and
// validates each preset, printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := presetFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No presets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	if dups := duplicateIDs(files); len(dups) > 0 {
		allValid = false
		fmt.Println()
		for _, d := range dups {
			fmt.Println("❌ " + d)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
