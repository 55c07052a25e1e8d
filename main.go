package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/config"
	"github.com/milk9111/tankgame/logging"
)

func main() {
	cfgPath := flag.String("config", "", "TOML config file (defaults apply when empty)")
	debug := flag.Bool("debug", false, "debug logging and physics debug drawing")
	mapPath := flag.String("map", "", "map file relative to the asset root")
	flag.Parse()

	if err := run(*cfgPath, *debug, *mapPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfgPath string, debug bool, mapPath string) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Physics.DebugDraw = true
	}
	if mapPath != "" {
		cfg.Game.Map = mapPath
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	game, err := NewGame(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := game.Close(); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	log.Info("starting", zap.String("session", game.world.Session()), zap.String("map", cfg.Game.Map))
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
