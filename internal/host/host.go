/*
 * Copyright (C) 2023 by Jason Figge
 */

// Package host is the boundary with whatever owns the window: a pixel surface to draw
// into and a source of key, resize and close events.
package host

import (
	"context"
	"fmt"
	"time"

	"raycaster/internal/input"
	"raycaster/internal/scheduler"
)

// Forever makes NextEvent block until an event arrives.
const Forever time.Duration = -1

type EventKind uint8

const (
	EventNone EventKind = iota
	EventKey
	EventResize
	EventClose
	// EventExpose asks for the last frame to be drawn again.
	EventExpose
)

func (k EventKind) String() string {
	switch k {
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventClose:
		return "close"
	case EventExpose:
		return "expose"
	}
	return "none"
}

type Event struct {
	Kind    EventKind
	Key     input.Key
	Pressed bool
	Repeat  bool
	Width   int
	Height  int
}

func KeyEvent(k input.Key, pressed bool) Event {
	return Event{Kind: EventKey, Key: k, Pressed: pressed}
}

func ResizeEvent(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

func CloseEvent() Event { return Event{Kind: EventClose} }

func (e Event) String() string {
	switch e.Kind {
	case EventKey:
		state := "up"
		if e.Pressed {
			state = "down"
		}
		return fmt.Sprintf("key %s %s", e.Key, state)
	case EventResize:
		return fmt.Sprintf("resize %dx%d", e.Width, e.Height)
	}
	return e.Kind.String()
}

// Surface is an RGBA8 row-major pixel buffer, index (y*width+x)*4, that can be shown.
type Surface interface {
	Size() (width, height int)
	Buffer() []byte
	Present() error
	Resize(width, height int) error
}

// Host is a surface plus its event source.
type Host interface {
	Surface
	// NextEvent waits up to timeout for an event; Forever blocks and zero polls.
	// ok is false on timeout. A cancelled context is reported as a close event.
	NextEvent(ctx context.Context, timeout time.Duration) (ev Event, ok bool)
	Close() error
}

// Handler is the application side of the boundary.
type Handler interface {
	HandleEvent(ev Event)
	// Idle is called each time the host is about to wait.
	Idle(now time.Time) scheduler.Decision
	NeedsRedraw() bool
	Redraw(s Surface) error
	Done() bool
}
