// Command analyze prints quick, human-readable heuristics about the presets in
// the project's configs directory. For every preset it shows how the countdown
// evolves across levels, how much wall-clock time a player gets per color, and
// flags presets whose difficulty never changes.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/colormatch/game/config"
	"github.com/wricardo/colormatch/game/engine"
)

// levelsShown is how many levels the progression table prints
const levelsShown = 4

// LevelStep is one row of the progression table
type LevelStep struct {
	Level      int
	ScoreFrom  int
	Timer      int
	WindowSecs float64
}

func main() {
	dir := flag.String("config-dir", "configs", "Directory containing difficulty presets")
	flag.Parse()

	manager, err := config.NewManager(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing presets: %v\n", err)
		os.Exit(1)
	}

	for _, info := range infos {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading preset: %v\n", err)
			continue
		}
		analyzeConfig(os.Stdout, cfg)
	}
}

// progression returns the countdown for the first levels of a preset
func progression(cfg *engine.GameConfig, levels int) []LevelStep {
	steps := make([]LevelStep, 0, levels)
	for level := 1; level <= levels; level++ {
		timer := engine.TimerAtLevel(cfg, level)
		steps = append(steps, LevelStep{
			Level:      level,
			ScoreFrom:  (level - 1) * cfg.LevelUpEvery,
			Timer:      timer,
			WindowSecs: float64(timer) * cfg.TickInterval().Seconds(),
		})
	}
	return steps
}

// warnings lists the problems worth pointing out for a preset
func warnings(cfg *engine.GameConfig) []string {
	var out []string
	if engine.TimerAtLevel(cfg, 2) == cfg.StartTimer {
		out = append(out, "difficulty never increases: the countdown is the same on every level")
	}
	if cfg.StartTimer-cfg.TimerPenalty < cfg.MinTimer {
		out = append(out, fmt.Sprintf("timer penalty %d is cut short by the minimum timer %d", cfg.TimerPenalty, cfg.MinTimer))
	}
	if cfg.StartTimer < cfg.MinTimer {
		out = append(out, fmt.Sprintf("start timer %d is below the minimum timer %d and is never clamped up", cfg.StartTimer, cfg.MinTimer))
	}
	return out
}

func analyzeConfig(w io.Writer, cfg *engine.GameConfig) {
	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Start Timer: %d\n", cfg.StartTimer)
	fmt.Fprintf(w, "Level Up Every: %d points\n", cfg.LevelUpEvery)
	fmt.Fprintf(w, "Timer Penalty: %d (minimum %d)\n", cfg.TimerPenalty, cfg.MinTimer)
	fmt.Fprintf(w, "Tick Interval: %s\n", cfg.TickInterval())

	fmt.Fprintf(w, "Level  From score  Timer  Seconds per color\n")
	for _, step := range progression(cfg, levelsShown) {
		fmt.Fprintf(w, "%5d  %10d  %5d  %17.1f\n", step.Level, step.ScoreFrom, step.Timer, step.WindowSecs)
	}

	problems := warnings(cfg)
	if len(problems) == 0 {
		fmt.Fprintf(w, "✅ Countdown shortens after the first level\n")
		return
	}
	for _, p := range problems {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", p)
	}
}
