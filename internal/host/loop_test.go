/*
 * Copyright (C) 2023 by Jason Figge
 */

package host_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"raycaster/internal"
	"raycaster/internal/host"
	"raycaster/internal/host/headless"
	"raycaster/internal/input"
)

func runLoop(t *testing.T, ctx context.Context, h host.Host, handler host.Handler) (<-chan error, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	done := make(chan error, 1)
	go func() { done <- host.Loop(ctx, h, handler, logrus.NewEntry(log)) }()
	return done, hook
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Loop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Loop did not return")
	}
}

func newController(t *testing.T, mutate func(*internal.Config)) *internal.Controller {
	t.Helper()
	log, _ := test.NewNullLogger()
	cfg := internal.DefaultConfig()
	cfg.Map = "box"
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := internal.NewController(cfg, logrus.NewEntry(log))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestLoopMovesAndExitsOnEscape(t *testing.T) {
	h := headless.New(40, 30)
	c := newController(t, nil)

	h.Push(host.KeyEvent(input.KeyUp, true))
	done, _ := runLoop(t, context.Background(), h, c)

	waitFor(t, "frames", func() bool { return h.Presents() >= 3 })
	h.Push(host.KeyEvent(input.KeyEscape, true))
	waitDone(t, done)

	if p := c.Pose(); p.X <= 2 {
		t.Fatalf("pose x = %v, want > 2 after holding up", p.X)
	}
	if c.Ticks() < 3 {
		t.Fatalf("Ticks() = %d, want >= 3", c.Ticks())
	}
}

func TestLoopIdlesWithoutInput(t *testing.T) {
	h := headless.New(10, 10)
	c := newController(t, nil)
	done, _ := runLoop(t, context.Background(), h, c)

	waitFor(t, "first frame", func() bool { return h.Presents() >= 1 })
	time.Sleep(50 * time.Millisecond)
	h.Push(host.CloseEvent())
	waitDone(t, done)
	if ticks := c.Ticks(); ticks != 1 {
		t.Fatalf("Ticks() = %d after idling, want 1", ticks)
	}
	if h.Presents() != 1 {
		t.Fatalf("Presents() = %d after idling, want 1", h.Presents())
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	h := headless.New(10, 10)
	c := newController(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done, _ := runLoop(t, ctx, h, c)

	waitFor(t, "first frame", func() bool { return h.Presents() >= 1 })
	cancel()
	waitDone(t, done)
	if !c.Done() {
		t.Fatal("controller not done after cancel")
	}
}

func TestLoopSurvivesPresentFailure(t *testing.T) {
	h := headless.New(10, 10)
	failures := 0
	h.PresentHook = func([]byte) error {
		if failures < 2 {
			failures++
			return errors.New("device lost")
		}
		return nil
	}
	c := newController(t, func(cfg *internal.Config) { cfg.AlwaysTick = true })
	done, hook := runLoop(t, context.Background(), h, c)

	waitFor(t, "a good frame", func() bool { return h.Presents() >= 1 })
	h.Push(host.CloseEvent())
	waitDone(t, done)

	skipped := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "frame skipped" {
			skipped++
		}
	}
	if skipped != 2 {
		t.Fatalf("logged %d skipped frames, want 2", skipped)
	}
}

func TestLoopResizesSurface(t *testing.T) {
	h := headless.New(10, 10)
	c := newController(t, nil)
	h.Push(host.ResizeEvent(20, 5))
	done, _ := runLoop(t, context.Background(), h, c)

	waitFor(t, "resized frame", func() bool { return h.Presents() >= 2 })
	h.Push(host.CloseEvent())
	waitDone(t, done)
	if w, ht := h.Size(); w != 20 || ht != 5 {
		t.Fatalf("Size() = %dx%d, want 20x5", w, ht)
	}
}
