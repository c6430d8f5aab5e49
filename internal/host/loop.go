/*
 * Copyright (C) 2023 by Jason Figge
 */

package host

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"raycaster/internal/scheduler"
)

// Loop drives a handler from a host that can block for events. It redraws when asked,
// lets the handler tick, then sleeps until the next tick or the next event.
// It returns when the handler is done.
func Loop(ctx context.Context, h Host, handler Handler, log *logrus.Entry) error {
	for !handler.Done() {
		if handler.NeedsRedraw() {
			if err := handler.Redraw(h); err != nil {
				log.WithError(err).Warn("frame skipped")
			}
		}

		now := time.Now()
		timeout := Forever
		switch d := handler.Idle(now); d.Action {
		case scheduler.Tick:
			continue
		case scheduler.WaitUntil:
			timeout = max(d.Deadline.Sub(now), 0)
		}

		ev, ok := h.NextEvent(ctx, timeout)
		for ok {
			dispatch(h, handler, ev, log)
			if handler.Done() {
				break
			}
			ev, ok = h.NextEvent(ctx, 0)
		}
	}
	return nil
}

func dispatch(h Host, handler Handler, ev Event, log *logrus.Entry) {
	if ev.Kind == EventResize {
		if err := h.Resize(ev.Width, ev.Height); err != nil {
			log.WithError(err).Errorf("resize to %dx%d", ev.Width, ev.Height)
			return
		}
	}
	handler.HandleEvent(ev)
}
