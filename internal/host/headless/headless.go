/*
 * Copyright (C) 2023 by Jason Figge
 */

// Package headless is a host with no window: frames stay in memory and events are
// pushed by the caller.
package headless

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"raycaster/internal/host"
)

type Host struct {
	mu       sync.Mutex
	width    int
	height   int
	buf      []byte
	last     []byte
	events   chan host.Event
	presents atomic.Int64

	// PresentHook, when set, is called with the buffer on every Present and its
	// error is returned from Present.
	PresentHook func(buf []byte) error
}

func New(width, height int) *Host {
	h := &Host{events: make(chan host.Event, 256)}
	_ = h.Resize(width, height)
	return h
}

// Push queues an event. It never blocks; events past the queue size are dropped.
func (h *Host) Push(ev host.Event) bool {
	select {
	case h.events <- ev:
		return true
	default:
		return false
	}
}

func (h *Host) NextEvent(ctx context.Context, timeout time.Duration) (host.Event, bool) {
	if timeout == 0 {
		select {
		case ev := <-h.events:
			return ev, true
		default:
			return host.Event{}, false
		}
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case ev := <-h.events:
		return ev, true
	case <-expired:
		return host.Event{}, false
	case <-ctx.Done():
		return host.CloseEvent(), true
	}
}

func (h *Host) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Host) Buffer() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf
}

func (h *Host) Present() error {
	if h.PresentHook != nil {
		if err := h.PresentHook(h.Buffer()); err != nil {
			return err
		}
	}
	h.mu.Lock()
	copy(h.last, h.buf)
	h.mu.Unlock()
	h.presents.Add(1)
	return nil
}

func (h *Host) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("headless: size must be positive")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.buf = make([]byte, width*height*4)
	h.last = make([]byte, width*height*4)
	return nil
}

// Presents counts successful presents.
func (h *Host) Presents() int64 { return h.presents.Load() }

// Snapshot copies the last presented frame.
func (h *Host) Snapshot() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.last...)
}

func (h *Host) Close() error { return nil }
