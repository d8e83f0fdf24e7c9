// Command colormatch-tui plays Color Match in the terminal. The game runs in
// process with its own session; the high score file is shared with the
// server when both point at the same data directory.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/inconshreveable/log15"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/colormatch/game/config"
	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
	"github.com/wricardo/colormatch/game/session"
	"github.com/wricardo/colormatch/logging"
	"github.com/wricardo/colormatch/transport/terminal"
)

func main() {
	cmd := &cli.Command{
		Name:  "colormatch-tui",
		Usage: "play Color Match in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing difficulty presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "preset to play (default: classic)",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "directory for the high score file",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "keep the high score in memory only",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "disable sound",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to this file (the screen is in use)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "colormatch-tui: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cmd *cli.Command) (log15.Logger, func(), error) {
	path := cmd.String("log-file")
	if path == "" {
		return logging.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, cmd.Bool("debug")), func() { f.Close() }, nil
}

func newStore(cmd *cli.Command) (session.HighScoreStore, error) {
	if cmd.Bool("ephemeral") {
		return session.NewMemoryStore(nil), nil
	}
	return session.NewFileStore(cmd.String("data-dir"))
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger, closeLog, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	if preset := cmd.String("preset"); preset != "" {
		if err := configs.SetDefault(preset); err != nil {
			return err
		}
	}
	gameConfig := configs.GetDefault()

	store, err := newStore(cmd)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(gameConfig, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	manager := session.NewManager(eng, store, session.WithLogger(logger.New("component", "session")))
	game := service.NewGameService(manager, configs)

	var sound terminal.Sound = terminal.Silent{}
	if !cmd.Bool("mute") {
		speaker, err := terminal.NewSpeaker()
		if err != nil {
			logger.Warn("audio unavailable, playing silently", "err", err)
		} else {
			sound = speaker
		}
	}
	defer sound.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	app := terminal.NewApp(screen, game, logger.New("component", "terminal"), terminal.WithSound(sound))
	manager.Subscribe(app.Publish)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	g.Go(func() error {
		return manager.Run(runCtx)
	})
	g.Go(func() error {
		// leaving the app ends the session loop
		defer cancel()
		<-manager.Loaded()
		return app.Run(runCtx)
	})
	err = g.Wait()

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFlush()
	if ferr := manager.Flush(flushCtx); ferr != nil {
		logger.Warn("high score writes still pending at exit", "err", ferr)
	}
	return err
}
