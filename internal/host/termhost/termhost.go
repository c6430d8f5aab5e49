/*
 * Copyright (C) 2023 by Jason Figge
 */

// Package termhost draws the frame in a terminal with tcell. Each cell shows two pixels
// stacked with an upper half block, so the surface is twice as tall as the terminal.
package termhost

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"raycaster/internal/host"
	"raycaster/internal/input"
)

const halfBlock = '▀'

type Host struct {
	log    *logrus.Entry
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
	queued []host.Event

	width  int
	height int
	buf    []byte
}

// Open takes over the controlling terminal.
func Open(log *logrus.Entry) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	return newHost(screen, log)
}

func newHost(screen tcell.Screen, log *logrus.Entry) (*Host, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	screen.HideCursor()
	h := &Host{
		log:    log,
		screen: screen,
		events: make(chan tcell.Event, 64),
		quit:   make(chan struct{}),
	}
	cols, rows := screen.Size()
	log.Debugf("terminal %dx%d cells", cols, rows)
	if err := h.Resize(cols, rows*2); err != nil {
		screen.Fini()
		return nil, err
	}
	go screen.ChannelEvents(h.events, h.quit)
	return h, nil
}

func (h *Host) Size() (int, int) { return h.width, h.height }
func (h *Host) Buffer() []byte   { return h.buf }

func (h *Host) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("terminal: invalid size %dx%d", width, height)
	}
	h.width, h.height = width, height
	h.buf = make([]byte, width*height*4)
	h.screen.Clear()
	return nil
}

func (h *Host) Present() error {
	for cy := 0; cy*2 < h.height; cy++ {
		for x := 0; x < h.width; x++ {
			style := tcell.StyleDefault.Foreground(h.color(x, cy*2))
			if cy*2+1 < h.height {
				style = style.Background(h.color(x, cy*2+1))
			}
			h.screen.SetContent(x, cy, halfBlock, nil, style)
		}
	}
	h.screen.Show()
	return nil
}

func (h *Host) color(x, y int) tcell.Color {
	i := (y*h.width + x) * 4
	return tcell.NewRGBColor(int32(h.buf[i]), int32(h.buf[i+1]), int32(h.buf[i+2]))
}

// NextEvent reports every key press as a tap. Terminals send no key release, so the
// release is queued right behind the press and held keys move through auto repeat.
func (h *Host) NextEvent(ctx context.Context, timeout time.Duration) (host.Event, bool) {
	if len(h.queued) > 0 {
		ev := h.queued[0]
		h.queued = h.queued[1:]
		return ev, true
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		var e tcell.Event
		if timeout == 0 {
			select {
			case <-ctx.Done():
				return host.CloseEvent(), true
			case e = <-h.events:
			default:
				return host.Event{}, false
			}
		} else {
			select {
			case <-ctx.Done():
				return host.CloseEvent(), true
			case e = <-h.events:
			case <-expired:
				return host.Event{}, false
			}
		}

		ev, ok := translate(e)
		if !ok {
			continue
		}
		if ev.Kind == host.EventKey && ev.Key != input.KeyUnknown {
			h.queued = append(h.queued, host.KeyEvent(ev.Key, false))
		}
		return ev, true
	}
}

func translate(e tcell.Event) (host.Event, bool) {
	switch ev := e.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return host.CloseEvent(), true
		}
		return host.KeyEvent(keyOf(ev), true), true
	case *tcell.EventResize:
		cols, rows := ev.Size()
		return host.ResizeEvent(cols, rows*2), true
	}
	return host.Event{}, false
}

func keyOf(ev *tcell.EventKey) input.Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.KeyUp
	case tcell.KeyDown:
		return input.KeyDown
	case tcell.KeyLeft:
		return input.KeyLeft
	case tcell.KeyRight:
		return input.KeyRight
	case tcell.KeyEscape:
		return input.KeyEscape
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'a':
			return input.KeyA
		case 'e':
			return input.KeyE
		case 'q':
			return input.KeyQ
		case 's':
			return input.KeyS
		case 'z':
			return input.KeyZ
		case 'd':
			return input.KeyD
		case ' ':
			return input.KeySpace
		}
	}
	return input.KeyUnknown
}

func (h *Host) Close() error {
	close(h.quit)
	h.screen.Fini()
	return nil
}
