/*
 * Copyright (C) 2023 by Jason Figge
 */

// Package sdlhost shows the frame in an SDL2 window through a streaming texture.
package sdlhost

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"raycaster/internal/host"
	"raycaster/internal/input"
)

func init() {
	// SDL must be driven from the thread that initialised it.
	runtime.LockOSThread()
}

type Host struct {
	log      *logrus.Entry
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int
	height   int
	buf      []byte

	watched context.Context
	unwatch func() bool
}

// Open creates a resizable window with a width x height RGBA surface.
func Open(title string, width, height int, log *logrus.Entry) (*Host, error) {
	if err := sdl.Init(uint32(sdl.INIT_VIDEO)); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	window, err := sdl.CreateWindow(title,
		int32(sdl.WINDOWPOS_CENTERED),
		int32(sdl.WINDOWPOS_CENTERED),
		int32(width), int32(height),
		uint32(sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE))
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		errorTrap(log, window.Destroy())
		sdl.Quit()
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	h := &Host{log: log, window: window, renderer: renderer}
	if err := h.Resize(width, height); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

func (h *Host) Size() (int, int) { return h.width, h.height }
func (h *Host) Buffer() []byte   { return h.buf }

func (h *Host) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("sdl: invalid size %dx%d", width, height)
	}
	texture, err := h.renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		int32(width), int32(height))
	if err != nil {
		return fmt.Errorf("create texture %dx%d: %w", width, height, err)
	}
	if h.texture != nil {
		errorTrap(h.log, h.texture.Destroy())
	}
	h.texture = texture
	h.width, h.height = width, height
	h.buf = make([]byte, width*height*4)
	return nil
}

// Present copies the buffer into the texture row by row, since the texture pitch
// may be wider than the frame.
func (h *Host) Present() error {
	pixels, pitch, err := h.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("lock texture: %w", err)
	}
	row := h.width * 4
	for y := 0; y < h.height; y++ {
		copy(pixels[y*pitch:y*pitch+row], h.buf[y*row:(y+1)*row])
	}
	h.texture.Unlock()

	errorTrap(h.log, h.renderer.Clear())
	if err := h.renderer.Copy(h.texture, nil, nil); err != nil {
		return fmt.Errorf("copy texture: %w", err)
	}
	h.renderer.Present()
	return nil
}

func (h *Host) NextEvent(ctx context.Context, timeout time.Duration) (host.Event, bool) {
	h.watch(ctx)
	for {
		var e sdl.Event
		switch {
		case timeout < 0:
			e = sdl.WaitEvent()
		case timeout == 0:
			e = sdl.PollEvent()
		default:
			e = sdl.WaitEventTimeout(max(1, int(timeout.Milliseconds())))
		}
		if e == nil {
			return host.Event{}, false
		}
		if ev, ok := h.translate(e); ok {
			return ev, true
		}
		if timeout != 0 {
			// mouse and other ignored events still end the wait so timing is re-checked
			return host.Event{}, false
		}
	}
}

// watch turns cancellation of ctx into an SDL quit event, which wakes WaitEvent.
func (h *Host) watch(ctx context.Context) {
	if h.watched == ctx {
		return
	}
	if h.unwatch != nil {
		h.unwatch()
	}
	h.watched = ctx
	h.unwatch = context.AfterFunc(ctx, func() {
		if _, err := sdl.PushEvent(&sdl.QuitEvent{Type: sdl.QUIT}); err != nil {
			h.log.WithError(err).Error("push quit event")
		}
	})
}

func (h *Host) translate(e sdl.Event) (host.Event, bool) {
	switch ev := e.(type) {
	case *sdl.QuitEvent:
		return host.CloseEvent(), true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			return host.ResizeEvent(int(ev.Data1), int(ev.Data2)), true
		case sdl.WINDOWEVENT_EXPOSED:
			return host.Event{Kind: host.EventExpose}, true
		}
	case *sdl.KeyboardEvent:
		return host.Event{
			Kind:    host.EventKey,
			Key:     keyOf(ev.Keysym.Sym),
			Pressed: ev.State == sdl.PRESSED,
			Repeat:  ev.Repeat != 0,
		}, true
	}
	return host.Event{}, false
}

// keyOf maps layout aware key codes, so the letter keys follow the user's keyboard.
func keyOf(sym sdl.Keycode) input.Key {
	switch sym {
	case sdl.K_UP:
		return input.KeyUp
	case sdl.K_DOWN:
		return input.KeyDown
	case sdl.K_LEFT:
		return input.KeyLeft
	case sdl.K_RIGHT:
		return input.KeyRight
	case sdl.K_a:
		return input.KeyA
	case sdl.K_e:
		return input.KeyE
	case sdl.K_q:
		return input.KeyQ
	case sdl.K_s:
		return input.KeyS
	case sdl.K_z:
		return input.KeyZ
	case sdl.K_d:
		return input.KeyD
	case sdl.K_ESCAPE:
		return input.KeyEscape
	case sdl.K_SPACE:
		return input.KeySpace
	}
	return input.KeyUnknown
}

func (h *Host) Close() error {
	if h.unwatch != nil {
		h.unwatch()
	}
	if h.texture != nil {
		errorTrap(h.log, h.texture.Destroy())
	}
	errorTrap(h.log, h.renderer.Destroy())
	errorTrap(h.log, h.window.Destroy())
	sdl.Quit()
	return nil
}

func errorTrap(log *logrus.Entry, err error) {
	if err != nil {
		log.WithError(err).Error("sdl")
	}
}
