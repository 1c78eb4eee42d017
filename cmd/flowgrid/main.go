//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"flowgrid/internal/app"
	"flowgrid/internal/core"
	"flowgrid/internal/sims/flow"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log, err := app.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	sim, err := flow.Open(cfg.Sim, cfg.ConfigPath, flow.WithLogger(log))
	if err != nil {
		log.WithField("available", core.SimNames()).Fatal(err)
	}
	if cfg.Seed != 0 {
		sim.Reset(cfg.Seed)
	}

	game := app.New(sim, cfg, log)
	size := sim.Size()

	ebiten.SetWindowTitle("flowgrid - " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Tile+cfg.Panel, size.H*cfg.Tile)

	log.WithField("sim", sim.Name()).Info("starting")
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
