//go:build ebiten

package app

import (
	"context"
	"errors"
	"time"

	"github.com/apex/log"
	"github.com/hajimehoshi/ebiten/v2"

	"automata/internal/camera"
	"automata/internal/core"
	"automata/internal/device"
	"automata/internal/render"
	"automata/internal/sim"
	"automata/internal/ui"
)

const (
	maxView  = 1024
	hudWidth = 240
)

// Game adapts a Simulation to the ebiten.Game interface. The grid is drawn
// by the device into a target. At most one readback of the target is in
// flight; Draw blits whichever frame arrived last.
type Game struct {
	sim   *sim.Simulation
	dev   *device.Device
	cfg   sim.Config
	log   log.Interface
	clock *core.FrameClock

	view   camera.Camera
	ctl    camera.Controller
	target *render.Target
	image  *ebiten.Image
	pixels []byte

	readback  <-chan device.ReadResult[uint8]
	readTimer core.Timer

	hud     *ui.HUD
	overlay *ui.Overlay

	stepOnce bool
	err      error
}

// New constructs a Game for s. cfg is the configuration s was built with;
// the HUD edits a private copy of it.
func New(dev *device.Device, s *sim.Simulation, cfg sim.Config, clock *core.FrameClock, scale int, logger log.Interface) (*Game, error) {
	if scale <= 0 {
		scale = 1
	}
	w := min(int(cfg.GridWidth)*scale, maxView)
	h := min(int(cfg.GridHeight)*scale, maxView)
	target, err := render.NewTarget(dev, w, h)
	if err != nil {
		return nil, err
	}
	g := &Game{
		sim:     s,
		dev:     dev,
		cfg:     cfg.Clone(),
		log:     logger,
		clock:   clock,
		view:    camera.New(float64(w) / float64(h)),
		ctl:     camera.Controller{Speed: 1},
		target:  target,
		image:   ebiten.NewImage(w, h),
		overlay: ui.NewOverlay(),
	}
	g.hud = ui.NewHUD(&g.cfg, "Automaton", hudWidth)
	return g, nil
}

// Update handles per-frame logic and submits the next frame.
func (g *Game) Update() error {
	dt := g.clock.Tick()
	k := readKeys()
	if k.quit {
		return ebiten.Termination
	}
	g.ctl.Update(&g.view, dt.Seconds(), k.camera)

	switch g.hud.Update(g.target.W) {
	case ui.ActionReset:
		k.reset = true
	case ui.ActionApply:
		k.apply = true
	}
	g.stepOnce = k.step
	if k.pause {
		g.cfg.Running = !g.cfg.Running
	}
	if k.apply {
		g.apply()
	}
	if k.reset {
		g.report(g.sim.Reset(g.cfg))
	}

	if !errors.Is(g.err, device.ErrDeviceLost) {
		g.frame(dt, readPointer(g.target.W, g.target.H))
	}
	g.collect()

	g.overlay.Update(ui.Stats{
		FPS:        g.clock.FPS(),
		Generation: g.sim.Generation(),
		Kernel:     g.sim.Kernel().Name(),
		Size:       g.sim.Store().Size(),
		Running:    g.cfg.Running,
		RateHz:     g.cfg.UpdateRateHz,
		Limited:    g.cfg.RateLimited,
		Timers:     g.clock.Reported(),
		Err:        g.err,
	})
	return nil
}

func (g *Game) frame(dt time.Duration, in sim.Input) {
	cfg := &g.cfg
	if g.stepOnce && !cfg.Running {
		once := g.cfg
		once.Running, once.RateLimited = true, false
		cfg = &once
	}
	g.stepOnce = false
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := g.sim.Frame(ctx, cfg, in, dt, g.target, g.view); err != nil {
		g.report(err)
		return
	}
	g.err = nil
	if g.readback == nil {
		g.readTimer = g.clock.StartTimer("readback")
		g.readback = device.ReadBufferAsync(g.dev.Queue(), g.target.Pixels)
	}
}

// collect takes the outstanding readback if the queue has delivered it.
func (g *Game) collect() {
	if g.readback == nil {
		return
	}
	select {
	case r := <-g.readback:
		g.readback = nil
		if r.Err != nil {
			g.report(r.Err)
			return
		}
		g.readTimer.End()
		g.clock.Add(g.readTimer)
		g.pixels = r.Data
	default:
	}
}

// apply recreates the grid when its size changed and rebuilds the kernel
// when its id or parameters changed.
func (g *Game) apply() {
	if g.sim.NeedsRecreate(&g.cfg) {
		if err := g.sim.Recreate(g.cfg); err != nil {
			g.report(err)
			return
		}
	}
	if g.sim.NeedsRebuild(&g.cfg) {
		g.report(g.sim.RebuildKernel(g.cfg))
	}
}

func (g *Game) report(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, g.err) {
		g.log.WithError(err).Warn("frame")
	}
	g.err = err
}

// Draw blits the last presented frame and the panels.
func (g *Game) Draw(screen *ebiten.Image) {
	if len(g.pixels) == 4*g.target.W*g.target.H {
		g.image.WritePixels(g.pixels)
	}
	screen.DrawImage(g.image, nil)
	g.hud.Draw(screen, g.target.H)
	g.overlay.Draw(screen)
}

// Layout returns the logical screen size.
func (g *Game) Layout(int, int) (int, int) {
	return g.target.W + hudWidth, g.target.H
}
