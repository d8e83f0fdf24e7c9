package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPreset = `{
	"name": "Test Config",
	"description": "Test configuration",
	"start_timer": 3,
	"level_up_every": 5,
	"timer_penalty": 1,
	"min_timer": 1,
	"tick_interval_ms": 1000,
	"messages": {
		"instructions": ["Match the color."],
		"correct": "Correct!",
		"wrong": "Wrong!",
		"timeout": "Too slow!",
		"level_up": "Level %d!",
		"new_high_score": "New high score: %d",
		"start": "Go!"
	}
}`

// writePreset writes content to name inside a fresh temp directory
func writePreset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writePreset(t, "test.json", validPreset)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}
	if !hasError(result, "✓ Name: Test Config") {
		t.Errorf("Expected informational name line, got %v", result.Errors)
	}
}

func TestValidateConfig_ValidYAML(t *testing.T) {
	path := writePreset(t, "test.yaml", `
name: quick
start_timer: 4
level_up_every: 3
timer_penalty: 2
min_timer: 1
tick_interval_ms: 500
`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid YAML preset, got errors: %v", result.Errors)
	}
	if !hasError(result, "✓ Tick interval: 500ms") {
		t.Errorf("Expected tick interval line, got %v", result.Errors)
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected string
	}{
		{
			name:     "bad JSON",
			file:     "bad.json",
			content:  `{"name": "test", invalid json}`,
			expected: "invalid JSON",
		},
		{
			name:     "bad YAML",
			file:     "bad.yaml",
			content:  "name: [unclosed",
			expected: "invalid YAML",
		},
		{
			name:     "unknown JSON key",
			file:     "unknown.json",
			content:  `{"name": "x", "difficulty": "hard"}`,
			expected: "difficulty",
		},
		{
			name:     "unknown YAML key",
			file:     "unknown.yaml",
			content:  "name: x\nlives: 3\n",
			expected: "lives",
		},
		{
			name:     "zero start timer",
			file:     "zero.json",
			content:  `{"name": "x", "start_timer": 0}`,
			expected: "start_timer must be between",
		},
		{
			name:     "minimum above start",
			file:     "min.json",
			content:  `{"name": "x", "start_timer": 2, "min_timer": 3}`,
			expected: "min_timer (3) cannot exceed start_timer (2)",
		},
		{
			name:     "missing name",
			file:     "noname.json",
			content:  `{"name": ""}`,
			expected: "name is required",
		},
		{
			name:     "empty correct message",
			file:     "nomsg.json",
			content:  `{"name": "x", "messages": {"instructions": ["hi"], "correct": "", "wrong": "w", "timeout": "t", "start": "s"}}`,
			expected: "Missing required message: correct",
		},
		{
			name:     "level up without placeholder",
			file:     "levelup.json",
			content:  `{"name": "x", "messages": {"instructions": ["hi"], "correct": "c", "wrong": "w", "timeout": "t", "start": "s", "level_up": "Faster!"}}`,
			expected: "messages.level_up must contain %d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writePreset(t, tt.file, tt.content))
			if result.Valid {
				t.Fatalf("Expected invalid config")
			}
			if !hasError(result, tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, result.Errors)
			}
		})
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	path := writePreset(t, "many.json", `{"name": "", "start_timer": 0, "level_up_every": 0}`)

	result := validateConfig(path)
	if result.Valid {
		t.Fatal("Expected invalid config")
	}
	for _, want := range []string{"name is required", "start_timer", "level_up_every"} {
		if !hasError(result, want) {
			t.Errorf("Expected error containing %q, got %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestPresetFilesAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"classic.json", "classic.yaml", "fast.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := presetFiles(dir)
	if err != nil {
		t.Fatalf("presetFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 preset files, got %v", files)
	}

	dups := duplicateIDs(files)
	if len(dups) != 1 || !strings.Contains(dups[0], `"classic"`) {
		t.Errorf("Expected one duplicate for classic, got %v", dups)
	}
}

func TestRepositoryPresets(t *testing.T) {
	files, err := presetFiles("../configs")
	if err != nil || len(files) == 0 {
		t.Skip("Skipping test - configs directory not found")
	}

	for _, f := range files {
		if result := validateConfig(f); !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
	if dups := duplicateIDs(files); len(dups) > 0 {
		t.Errorf("Duplicate presets: %v", dups)
	}
}
