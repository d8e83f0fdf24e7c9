// Command autoplay plays Color Match against a running server through the
// REST API. It is useful for smoke-testing a deployment and for watching
// the level progression of a preset without a human at the controls.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/colormatch/logging"
)

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play Color Match automatically through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "server base URL",
				Sources: cli.EnvVars("COLORMATCH_SERVER"),
			},
			&cli.IntFlag{
				Name:  "picks",
				Value: 20,
				Usage: "number of answers to give",
			},
			&cli.FloatFlag{
				Name:  "miss-rate",
				Usage: "probability (0-1) of answering with a wrong color",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "pause between reading the target and answering",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "switch the server to this preset before playing",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "random seed for deliberate misses (default: time based)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the summary as JSON",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every pick",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "autoplay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := logging.New(os.Stderr, cmd.Bool("debug"))

	missRate := cmd.Float("miss-rate")
	if missRate < 0 || missRate > 1 {
		return fmt.Errorf("miss-rate must be between 0 and 1, got %v", missRate)
	}

	seed := int64(cmd.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	player := NewPlayer(cmd.String("server"), rand.New(rand.NewSource(seed)), logger)
	player.missRate = missRate
	player.delay = cmd.Duration("delay")

	if preset := cmd.String("preset"); preset != "" {
		path := "/api/configs/" + url.PathEscape(preset) + "/use"
		if err := player.call(ctx, http.MethodPost, path, nil, nil); err != nil {
			return fmt.Errorf("switch to preset %q: %w", preset, err)
		}
		logger.Info("switched preset", "preset", preset)
	}

	stats, err := player.Play(ctx, int(cmd.Int("picks")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Picks: %d (correct %d, missed %d)\n", stats.Picks, stats.Correct, stats.Misses)
	fmt.Printf("Best score: %d, best level: %d, level ups: %d\n", stats.BestScore, stats.BestLevel, stats.LevelUps)
	fmt.Printf("High score: %d (%d new records)\n", stats.HighScore, stats.NewHighScores)
	return nil
}
