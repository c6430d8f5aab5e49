/*
 * Copyright (C) 2023 by Jason Figge
 */

package input

import "slices"

// Tracker holds the keys that are down and the releases seen since the last tick.
// A key released during a tick still counts as held when that tick is drained.
type Tracker struct {
	held    map[Key]struct{}
	pending map[Key]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		held:    make(map[Key]struct{}),
		pending: make(map[Key]struct{}),
	}
}

// KeyDown reports whether the key was accepted. Unknown keys are dropped.
func (t *Tracker) KeyDown(k Key) bool {
	if k == KeyUnknown {
		return false
	}
	t.held[k] = struct{}{}
	// pressed again before the tick saw the release
	delete(t.pending, k)
	return true
}

func (t *Tracker) KeyUp(k Key) {
	if _, ok := t.held[k]; !ok {
		return
	}
	t.pending[k] = struct{}{}
}

// Drain returns the keys held during the tick, lowest key first, then forgets the
// ones released.
func (t *Tracker) Drain() []Key {
	keys := make([]Key, 0, len(t.held))
	for k := range t.held {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for k := range t.pending {
		delete(t.held, k)
	}
	clear(t.pending)
	return keys
}

func (t *Tracker) Busy() bool { return len(t.held) > 0 }

func (t *Tracker) IsHeld(k Key) bool {
	_, ok := t.held[k]
	return ok
}
