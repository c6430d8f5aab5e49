/*
 * Copyright (C) 2023 by Jason Figge
 */

// Package ebitenhost runs a handler inside ebiten's game loop. Ebiten owns the loop, so
// instead of a host.Host this package calls the handler from Update, Draw and Layout.
package ebitenhost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"raycaster/internal/host"
	"raycaster/internal/input"
	"raycaster/internal/scheduler"
)

type Options struct {
	Title  string
	Width  int
	Height int
	// TPS is how often Update runs; the handler's own schedule decides when a tick moves
	// the player.
	TPS int
}

// keys are physical key positions on a US layout.
var keys = []struct {
	key  ebiten.Key
	bind input.Key
}{
	{ebiten.KeyArrowUp, input.KeyUp},
	{ebiten.KeyArrowDown, input.KeyDown},
	{ebiten.KeyArrowLeft, input.KeyLeft},
	{ebiten.KeyArrowRight, input.KeyRight},
	{ebiten.KeyA, input.KeyA},
	{ebiten.KeyE, input.KeyE},
	{ebiten.KeyQ, input.KeyQ},
	{ebiten.KeyS, input.KeyS},
	{ebiten.KeyZ, input.KeyZ},
	{ebiten.KeyD, input.KeyD},
	{ebiten.KeyEscape, input.KeyEscape},
	{ebiten.KeySpace, input.KeySpace},
}

// surface keeps the frame in memory; the ebiten image is made on first use so the
// surface works before the game loop starts.
type surface struct {
	width  int
	height int
	buf    []byte
	img    *ebiten.Image
}

func newSurface(width, height int) *surface {
	s := &surface{}
	_ = s.Resize(width, height)
	return s
}

func (s *surface) Size() (int, int) { return s.width, s.height }
func (s *surface) Buffer() []byte   { return s.buf }

func (s *surface) Present() error {
	s.image().WritePixels(s.buf)
	return nil
}

func (s *surface) image() *ebiten.Image {
	if s.img == nil {
		s.img = ebiten.NewImage(s.width, s.height)
	}
	return s.img
}

func (s *surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("ebiten: invalid size %dx%d", width, height)
	}
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.width, s.height = width, height
	s.buf = make([]byte, width*height*4)
	return nil
}

type game struct {
	ctx     context.Context
	handler host.Handler
	log     *logrus.Entry
	surface *surface
	now     func() time.Time
	closing func() bool
	keyEdge func(ebiten.Key) (pressed, released bool)

	// set by Layout, applied on the next Update
	pendingWidth  int
	pendingHeight int
}

// TickSlack is how early a tick may fire when ebiten runs Update at the tick rate.
// Updates arrive on ebiten's clock with some jitter, so a zero slack would miss about
// every other tick.
func TickSlack(rate int) time.Duration {
	return scheduler.PeriodFromRate(rate) / 4
}

func newGame(ctx context.Context, handler host.Handler, width, height int, log *logrus.Entry) *game {
	return &game{
		ctx:     ctx,
		handler: handler,
		log:     log,
		surface: newSurface(width, height),
		now:     time.Now,
		closing: ebiten.IsWindowBeingClosed,
		keyEdge: func(k ebiten.Key) (bool, bool) {
			return inpututil.IsKeyJustPressed(k), inpututil.IsKeyJustReleased(k)
		},
	}
}

// Run opens the window and blocks until the handler is done or the window is closed.
// The handler should be built with TickSlack(opts.TPS).
func Run(ctx context.Context, handler host.Handler, opts Options, log *logrus.Entry) error {
	g := newGame(ctx, handler, opts.Width, opts.Height, log)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetScreenClearedEveryFrame(false)
	if opts.TPS > 0 {
		ebiten.SetTPS(opts.TPS)
	}

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *game) Update() error {
	if g.ctx.Err() != nil || g.closing() {
		g.handler.HandleEvent(host.CloseEvent())
	}
	if g.pendingWidth > 0 && g.pendingHeight > 0 {
		w, h := g.pendingWidth, g.pendingHeight
		g.pendingWidth, g.pendingHeight = 0, 0
		if err := g.surface.Resize(w, h); err != nil {
			g.log.WithError(err).Errorf("resize to %dx%d", w, h)
		} else {
			g.handler.HandleEvent(host.ResizeEvent(w, h))
		}
	}
	for _, k := range keys {
		pressed, released := g.keyEdge(k.key)
		if pressed {
			g.handler.HandleEvent(host.KeyEvent(k.bind, true))
		}
		if released {
			g.handler.HandleEvent(host.KeyEvent(k.bind, false))
		}
	}
	if !g.handler.Done() {
		g.handler.Idle(g.now())
	}
	if g.handler.Done() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.handler.NeedsRedraw() {
		if err := g.handler.Redraw(g.surface); err != nil {
			g.log.WithError(err).Warn("frame skipped")
		}
	}
	screen.DrawImage(g.surface.image(), nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	if w != g.surface.width || h != g.surface.height {
		g.pendingWidth, g.pendingHeight = w, h
	}
	return w, h
}
