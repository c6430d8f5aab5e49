/*
 * Copyright (C) 2023 by Jason Figge
 */

// Package scheduler decides, each time the host goes idle, whether a simulation tick
// is due and otherwise how long the host may sleep.
package scheduler

import (
	"fmt"
	"time"
)

type Action uint8

const (
	// Idle means nothing is moving; wait for the next external event.
	Idle Action = iota
	// WaitUntil means a tick will be due at Decision.Deadline.
	WaitUntil
	// Tick means a tick is due now.
	Tick
)

func (a Action) String() string {
	switch a {
	case Idle:
		return "idle"
	case WaitUntil:
		return "wait-until"
	case Tick:
		return "tick"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

type Decision struct {
	Action   Action
	Deadline time.Time
}

type Scheduler struct {
	period     time.Duration
	slack      time.Duration
	last       time.Time
	alwaysTick bool
}

// PeriodFromRate converts ticks per second into a whole number of nanoseconds.
func PeriodFromRate(hz int) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Duration(1.0 / float64(hz) * float64(time.Second))
}

func New(period time.Duration) *Scheduler {
	return &Scheduler{period: period}
}

func FromRate(hz int) (*Scheduler, error) {
	period := PeriodFromRate(hz)
	if period <= 0 {
		return nil, fmt.Errorf("invalid tick rate: %d", hz)
	}
	return New(period), nil
}

func (s *Scheduler) Period() time.Duration { return s.period }

// SetAlwaysTick keeps ticks coming while no keys are held, for apps that animate.
func (s *Scheduler) SetAlwaysTick(v bool) { s.alwaysTick = v }

// SetSlack lets a tick fire up to d early. Hosts that poll on their own fixed clock
// need it, or a poll landing just short of the period pushes the tick a whole frame.
func (s *Scheduler) SetSlack(d time.Duration) { s.slack = min(max(d, 0), s.period/2) }

// Reset makes the next tick due one period after now.
func (s *Scheduler) Reset(now time.Time) { s.last = now }

// Poll is called whenever the host is about to wait. busy reports whether any input
// is held. The first poll always ticks.
func (s *Scheduler) Poll(now time.Time, busy bool) Decision {
	elapsed := now.Sub(s.last)
	due := s.period - s.slack
	if s.last.IsZero() || elapsed >= due {
		s.last = now
		return Decision{Action: Tick}
	}
	if busy || s.alwaysTick {
		return Decision{Action: WaitUntil, Deadline: now.Add(due - elapsed)}
	}
	return Decision{Action: Idle}
}
