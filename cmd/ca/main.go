//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/hajimehoshi/ebiten/v2"

	"automata/internal/app"
	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/sim"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log.SetHandler(cli.New(os.Stderr))
	level, err := cfg.Level()
	if err != nil {
		log.WithError(err).Fatal("log level")
	}
	log.SetLevel(level)

	simCfg, err := cfg.ToSim()
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	dev, err := device.New(cfg.DeviceOptions())
	if err != nil {
		log.WithError(err).Fatal("device")
	}
	defer dev.Destroy()

	clock := core.NewFrameClock(nil)
	s, err := sim.New(dev, simCfg, sim.WithClock(clock))
	if err != nil {
		log.WithError(err).Fatal("simulation")
	}

	game, err := app.New(dev, s, simCfg, clock, cfg.Scale, log.Log)
	if err != nil {
		log.WithError(err).Fatal("window")
	}
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("automata: " + simCfg.ActiveKernel.String())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.WithError(err).Fatal("run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
}
