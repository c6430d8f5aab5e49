/*
 * Copyright (C) 2023 by Jason Figge
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"

	"raycaster/internal"
	"raycaster/internal/buildinfo"
	"raycaster/internal/host"
	"raycaster/internal/host/ebitenhost"
	"raycaster/internal/host/headless"
	"raycaster/internal/host/sdlhost"
	"raycaster/internal/host/termhost"
	"raycaster/internal/input"
	"raycaster/internal/logger"
	"raycaster/internal/world"
)

const (
	screenWidth  = internal.DefaultWidth
	screenHeight = internal.DefaultHeight
	title        = "Ray Caster"
)

func main() {
	cfg := internal.DefaultConfig()
	backend := flag.String("backend", "sdl", "window backend: sdl, ebiten, term or headless")
	hold := flag.String("hold", "", "comma separated keys held from the start (headless), e.g. up,e")
	flag.IntVar(&cfg.Width, "width", screenWidth, "surface width in pixels")
	flag.IntVar(&cfg.Height, "height", screenHeight, "surface height in pixels")
	flag.IntVar(&cfg.TickRate, "tps", internal.DefaultTickRate, "ticks per second")
	flag.StringVar(&cfg.Map, "map", internal.DefaultMap, "map layout: "+strings.Join(world.LayoutNames(), ", "))
	flag.Float64Var(&cfg.FOV, "fov", 0, "field of view in degrees, 0 keeps the map's")
	flag.IntVar(&cfg.Workers, "workers", 1, "goroutines casting columns")
	flag.BoolVar(&cfg.AlwaysTick, "always-tick", false, "tick and redraw even when no key is held")
	flag.BoolVar(&cfg.Fisheye, "fisheye", cfg.Fisheye, "correct the fisheye distortion")
	flag.Uint64Var(&cfg.MaxTicks, "ticks", 0, "stop ticking after this many; headless exits, windows keep the last frame until closed")
	flag.Parse()

	log := logger.New(os.Stderr)
	entry := log.WithField("backend", *backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *backend, *hold, cfg, entry); err != nil {
		entry.WithError(err).Error("ray caster failed")
		stop()
		os.Exit(1)
	}
	fmt.Println("Game over")
}

func run(ctx context.Context, backend, hold string, cfg internal.Config, log *logrus.Entry) error {
	switch backend {
	case "headless":
		if cfg.MaxTicks > 0 {
			cfg.AlwaysTick = true
		}
	case "ebiten":
		cfg.TickSlack = ebitenhost.TickSlack(cfg.TickRate)
		cfg.Remain = true
	default:
		// a window keeps showing the last frame after -ticks until it is closed
		cfg.Remain = true
	}
	controller, err := internal.NewController(cfg, log.WithField("component", "controller"))
	if err != nil {
		return err
	}
	log.WithFields(buildinfo.Fields()).WithField("map", cfg.Map).Info("starting")

	switch backend {
	case "sdl":
		h, err := sdlhost.Open(buildinfo.Title(title), cfg.Width, cfg.Height, log.WithField("component", "sdl"))
		if err != nil {
			return err
		}
		defer h.Close()
		err = host.Loop(ctx, h, controller, log)
		if err != nil {
			return err
		}
	case "ebiten":
		opts := ebitenhost.Options{
			Title:  buildinfo.Title(title),
			Width:  cfg.Width,
			Height: cfg.Height,
			TPS:    cfg.TickRate,
		}
		if err := ebitenhost.Run(ctx, controller, opts, log.WithField("component", "ebiten")); err != nil {
			return err
		}
	case "term":
		h, err := termhost.Open(log.WithField("component", "term"))
		if err != nil {
			return err
		}
		err = host.Loop(ctx, h, controller, log)
		_ = h.Close()
		if err != nil {
			return err
		}
	case "headless":
		h := headless.New(cfg.Width, cfg.Height)
		for _, name := range strings.Split(hold, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			k, ok := input.ParseKey(name)
			if !ok {
				return fmt.Errorf("-hold: unknown key %q", name)
			}
			h.Push(host.KeyEvent(k, true))
		}
		if err := host.Loop(ctx, h, controller, log); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	p := controller.Pose()
	log.WithFields(logrus.Fields{
		"x":       p.X,
		"y":       p.Y,
		"heading": world.RadiansToDegrees(p.Heading),
		"ticks":   controller.Ticks(),
		"frames":  controller.Frames(),
	}).Info("stopped")
	return nil
}
